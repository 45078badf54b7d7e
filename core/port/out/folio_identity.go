package out

import (
	"context"
	"time"

	"folio_server/core/domain"
)

// IdentityProvider is the external sign-in provider.
type IdentityProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.Identity, error)
}

// StateStore keeps one-time OAuth state values (CSRF protection).
type StateStore interface {
	StoreState(ctx context.Context, state, callbackURL string, ttl time.Duration) error

	// ConsumeState returns the stored callback URL and deletes the state.
	ConsumeState(ctx context.Context, state string) (string, error)
}

// TokenRevoker tracks revoked session token ids.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
