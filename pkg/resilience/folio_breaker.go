// Package resilience wraps outbound calls in a circuit breaker.
package resilience

import (
	"errors"
	"time"

	"folio_server/pkg/logger"
	"folio_server/pkg/metrics"

	"github.com/sony/gobreaker"
)

// ErrUnavailable is returned instead of calling through while the breaker is open.
var ErrUnavailable = errors.New("dependency unavailable: circuit open")

// BreakerConfig holds configuration for a circuit breaker.
type BreakerConfig struct {
	Name         string
	MaxRequests  uint32        // allowed in half-open
	Interval     time.Duration // closed-state counter reset
	Timeout      time.Duration // open -> half-open
	IsSuccessful func(err error) bool
}

// DefaultBreakerConfig returns the settings used for the key-value store.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
	}
}

// Breaker is a thin wrapper over gobreaker with logging and a state gauge.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// 5 consecutive failures, or a 60% failure ratio over at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
			metrics.SetBreakerOpen(name, to == gobreaker.StateOpen)
		},
		IsSuccessful: cfg.IsSuccessful,
	}
	metrics.SetBreakerOpen(cfg.Name, false)
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the breaker.
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrUnavailable
	}
	return err
}

// Open reports whether calls are currently being rejected.
func (b *Breaker) Open() bool {
	return b.cb.State() == gobreaker.StateOpen
}

func (b *Breaker) Name() string {
	return b.cb.Name()
}
