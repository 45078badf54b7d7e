package out

import (
	"context"
	"errors"
	"time"

	"folio_server/core/domain"
)

// ErrNotFound is returned by stores when a key does not exist.
var ErrNotFound = errors.New("not found")

// UserStore persists user:<email> records.
type UserStore interface {
	GetUser(ctx context.Context, email string) (*domain.User, error)

	// CreateUserIfAbsent writes the user only when no record exists.
	// It reports whether this call created it.
	CreateUserIfAbsent(ctx context.Context, user *domain.User) (bool, error)
}

// PortfolioStore persists portfolio:<email> records.
type PortfolioStore interface {
	GetPortfolio(ctx context.Context, owner string) (*domain.Portfolio, error)
	SavePortfolio(ctx context.Context, owner string, p *domain.Portfolio) error

	// CreatePortfolioIfAbsent never overwrites an existing document.
	CreatePortfolioIfAbsent(ctx context.Context, owner string, p *domain.Portfolio) (bool, error)

	// ScanOwners walks every stored portfolio owner in batches of roughly batchSize.
	ScanOwners(ctx context.Context, batchSize int, fn func(owners []string) error) error
}

// SlugStore persists slug:<slug> -> owner email mappings.
type SlugStore interface {
	// ReserveSlug writes the mapping only if the slug is free.
	ReserveSlug(ctx context.Context, slug, owner string) (bool, error)

	// PutSlug writes the mapping unconditionally.
	PutSlug(ctx context.Context, slug, owner string) error

	ResolveSlug(ctx context.Context, slug string) (string, error)
}

// Locker is a best-effort distributed mutex keyed by string.
// Lock returns a holder token on success; Unlock is a no-op unless the
// key still carries that token, so an expired holder cannot free a lock
// someone else has since taken.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// OwnerLockKey is the Locker key that guards every read-modify-write of
// one owner's portfolio document.
func OwnerLockKey(owner string) string {
	return "lock:publish:" + owner
}

// Store is the full key-value surface used by the services.
type Store interface {
	UserStore
	PortfolioStore
	SlugStore
	Locker
}
