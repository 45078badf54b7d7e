package middleware

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"folio_server/core/domain"
	"folio_server/core/port/out"
	"folio_server/pkg/apperr"
	"folio_server/pkg/logger"
	"folio_server/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// SlugOwnerKey holds the advisory owner found for a slug candidate.
const SlugOwnerKey = "slug_owner"

const (
	DashboardPath = "/dashboard"
	LoginPath     = "/login"
)

// RouteClass is the ingress classification of a request path.
type RouteClass int

const (
	PassThrough RouteClass = iota
	Redirect
	SlugCandidate
)

func (r RouteClass) String() string {
	switch r {
	case Redirect:
		return "redirect"
	case SlugCandidate:
		return "slug_candidate"
	default:
		return "pass_through"
	}
}

// Decision is the result of Classify.
type Decision struct {
	Class    RouteClass
	Location string // Redirect target
	Slug     string // SlugCandidate segment
}

// hasSegmentPrefix matches path against /seg exactly or /seg/...
func hasSegmentPrefix(path, seg string) bool {
	p := "/" + seg
	return path == p || strings.HasPrefix(path, p+"/")
}

// Classify decides how path is routed. The checks run in priority order:
// dashboard without a session, login or root with one, reserved prefixes,
// non-candidate shapes, and finally single-segment slug candidates.
func Classify(path string, authenticated bool) Decision {
	if hasSegmentPrefix(path, "dashboard") && !authenticated {
		return Decision{
			Class:    Redirect,
			Location: LoginPath + "?callbackUrl=" + url.QueryEscape(path),
		}
	}
	if hasSegmentPrefix(path, "login") && authenticated {
		return Decision{Class: Redirect, Location: DashboardPath}
	}
	if path == "/" && authenticated {
		return Decision{Class: Redirect, Location: DashboardPath}
	}

	for _, seg := range domain.ReservedSegments {
		if hasSegmentPrefix(path, seg) {
			return Decision{Class: PassThrough}
		}
	}

	trimmed := strings.Trim(path, "/")
	if trimmed == "" || strings.Contains(trimmed, "/") || strings.HasPrefix(trimmed, ".") {
		return Decision{Class: PassThrough}
	}
	return Decision{Class: SlugCandidate, Slug: trimmed}
}

// SlugLookup resolves a slug to its owner email.
type SlugLookup func(ctx context.Context, slug string) (string, error)

// PathRouter applies Classify to every request. Redirects short-circuit;
// slug candidates get an advisory lookup bounded by timeout that never blocks the request.
func PathRouter(lookup SlugLookup, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d := Classify(c.Path(), SessionFrom(c) != nil)

		switch d.Class {
		case Redirect:
			return c.Redirect(d.Location, fiber.StatusFound)

		case SlugCandidate:
			if lookup == nil {
				break
			}
			ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
			owner, err := lookup(ctx, d.Slug)
			cancel()

			log := logger.WithContext(c.UserContext()).WithField("slug", d.Slug)
			switch {
			case err == nil:
				metrics.RecordSlugLookup(metrics.LookupHit)
				c.Locals(SlugOwnerKey, owner)
				log.Debug("slug candidate resolved")
			case isNotFound(err):
				metrics.RecordSlugLookup(metrics.LookupMiss)
				log.Debug("slug candidate unknown")
			default:
				metrics.RecordSlugLookup(metrics.LookupError)
				log.WithError(err).Warn("slug lookup failed, passing through")
			}
		}

		return c.Next()
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, out.ErrNotFound) || apperr.HasCode(err, apperr.CodeNotFound)
}
