package persistence

import (
	"errors"
	"fmt"
	"strings"

	"folio_server/core/port/out"
	"folio_server/pkg/cache"
)

// Key prefixes
const (
	UserKey       = "user:"
	PortfolioKey  = "portfolio:"
	SlugKey       = "slug:"
	OAuthStateKey = "oauth:state:"
	RevokedKey    = "token:revoked:"
)

func userKey(email string) string      { return UserKey + email }
func portfolioKey(owner string) string { return PortfolioKey + owner }
func slugKey(slug string) string       { return SlugKey + slug }

// ownerFromPortfolioKey strips the portfolio prefix from a scanned key.
func ownerFromPortfolioKey(key string) string {
	return strings.TrimPrefix(key, PortfolioKey)
}

// mapErr turns a cache miss into out.ErrNotFound and wraps everything else with op.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, cache.ErrMiss) {
		return out.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
