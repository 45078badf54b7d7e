// Package metrics holds the domain counters exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "folio"

var (
	publishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "publish_total",
		Help:      "Publish calls by outcome.",
	}, []string{"result"})

	slugReservations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "slug_reservations_total",
		Help:      "Slug reservation attempts by outcome.",
	}, []string{"result"})

	slugLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "slug_lookups_total",
		Help:      "Ingress slug lookups by outcome.",
	}, []string{"result"})

	signIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_ins_total",
		Help:      "Completed sign-ins by outcome.",
	}, []string{"result"})

	storeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_op_seconds",
		Help:      "Key-value store operation latency.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"op"})

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "breaker_open",
		Help:      "1 while the named circuit breaker is open.",
	}, []string{"name"})
)

// Publish outcomes
const (
	PublishFirst   = "first"
	PublishRepeat  = "repeat"
	PublishFailed  = "failed"
	PublishBlocked = "lock_busy"
)

// Slug outcomes
const (
	SlugReserved  = "reserved"
	SlugCollision = "collision"
	SlugExhausted = "exhausted"

	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"
)

// Sign-in outcomes
const (
	SignInNew       = "new"
	SignInReturning = "returning"
	SignInFailed    = "failed"
)

func RecordPublish(result string)         { publishTotal.WithLabelValues(result).Inc() }
func RecordSlugReservation(result string) { slugReservations.WithLabelValues(result).Inc() }
func RecordSlugLookup(result string)      { slugLookups.WithLabelValues(result).Inc() }
func RecordSignIn(result string)          { signIns.WithLabelValues(result).Inc() }

// ObserveStore records the latency of one store operation.
func ObserveStore(op string, d time.Duration) {
	storeLatency.WithLabelValues(op).Observe(d.Seconds())
}

// SetBreakerOpen flips the breaker gauge.
func SetBreakerOpen(name string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	breakerState.WithLabelValues(name).Set(v)
}
