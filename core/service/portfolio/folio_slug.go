package portfolio

import (
	"context"

	"folio_server/core/domain"
	"folio_server/core/port/out"
	"folio_server/pkg/apperr"
	"folio_server/pkg/logger"
	"folio_server/pkg/metrics"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// SlugAlphabet is URL safe and needs no escaping in a path segment.
const SlugAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_-"

// SlugGenerator produces slug candidates.
type SlugGenerator func() (string, error)

// NanoidGenerator returns a generator of length-character ids over SlugAlphabet.
func NanoidGenerator(length int) SlugGenerator {
	return func() (string, error) {
		return gonanoid.Generate(SlugAlphabet, length)
	}
}

// SlugAllocator reserves globally unique slugs with a create-if-absent write.
type SlugAllocator struct {
	store       out.SlugStore
	generate    SlugGenerator
	maxAttempts int
}

func NewSlugAllocator(store out.SlugStore, generate SlugGenerator, maxAttempts int) *SlugAllocator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &SlugAllocator{
		store:       store,
		generate:    generate,
		maxAttempts: maxAttempts,
	}
}

// Allocate returns a fresh candidate without reserving it.
func (a *SlugAllocator) Allocate() (string, error) {
	return a.generate()
}

// Reserve allocates a candidate and maps it to owner, retrying on collision.
func (a *SlugAllocator) Reserve(ctx context.Context, owner string) (string, error) {
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		candidate, err := a.Allocate()
		if err != nil {
			return "", apperr.InternalWithError(err)
		}

		if domain.IsReservedSegment(candidate) {
			metrics.RecordSlugReservation(metrics.SlugCollision)
			continue
		}

		ok, err := a.store.ReserveSlug(ctx, candidate, owner)
		if err != nil {
			return "", apperr.PersistenceError("reserve slug", err)
		}
		if ok {
			metrics.RecordSlugReservation(metrics.SlugReserved)
			return candidate, nil
		}

		metrics.RecordSlugReservation(metrics.SlugCollision)
		logger.WithContext(ctx).WithFields(map[string]any{
			"slug":    candidate,
			"attempt": attempt,
		}).Warn("slug collision")
	}

	metrics.RecordSlugReservation(metrics.SlugExhausted)
	return "", apperr.AllocationExhausted(a.maxAttempts)
}
