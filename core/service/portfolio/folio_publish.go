package portfolio

import (
	"context"
	"time"

	"folio_server/core/domain"
	"folio_server/core/port/out"
	"folio_server/pkg/apperr"
	"folio_server/pkg/logger"
	"folio_server/pkg/metrics"
)

// Publish marks the owner's portfolio published, assigning a slug on the first call.
// Calls for one owner are serialized by a store lock; repeated calls keep the slug.
func (s *Service) Publish(ctx context.Context, caller, owner string) (*domain.Portfolio, error) {
	if err := authorize(caller, owner); err != nil {
		return nil, err
	}

	log := logger.WithContext(ctx).WithField("owner", owner)

	var p *domain.Portfolio
	locked := false
	err := s.withOwnerLock(ctx, owner, func() error {
		locked = true
		var err error
		p, err = s.publishLocked(ctx, owner)
		return err
	})
	if err != nil {
		if !locked && apperr.HasCode(err, apperr.CodeConflict) {
			metrics.RecordPublish(metrics.PublishBlocked)
		} else {
			metrics.RecordPublish(metrics.PublishFailed)
		}
		if locked {
			log.WithError(err).Warn("publish failed")
		}
		return nil, err
	}
	return p, nil
}

// withOwnerLock runs fn while holding the owner's document lock.
func (s *Service) withOwnerLock(ctx context.Context, owner string, fn func() error) error {
	key := out.OwnerLockKey(owner)
	token, err := s.acquire(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.store.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			logger.WithContext(ctx).WithError(err).WithField("owner", owner).Warn("owner lock release failed")
		}
	}()
	return fn()
}

func (s *Service) publishLocked(ctx context.Context, owner string) (*domain.Portfolio, error) {
	p, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	first := p.Slug == ""
	if first {
		slug, err := s.slugs.Reserve(ctx, owner)
		if err != nil {
			return nil, err
		}
		p.Slug = slug
	}

	now := s.now()
	p.Published = true
	p.PublishedAt = &now
	p.UpdatedAt = now

	if err := s.store.SavePortfolio(ctx, owner, p); err != nil {
		return nil, storeError("save portfolio", err)
	}

	// The portfolio is authoritative; refresh the index on every publish.
	if err := s.store.PutSlug(ctx, p.Slug, owner); err != nil {
		return nil, apperr.PersistenceError("write slug", err)
	}

	if first {
		metrics.RecordPublish(metrics.PublishFirst)
	} else {
		metrics.RecordPublish(metrics.PublishRepeat)
	}
	logger.WithContext(ctx).WithFields(map[string]any{
		"owner": owner,
		"slug":  p.Slug,
		"first": first,
	}).Info("portfolio published")

	return domain.MigrateLegacyAssets(p), nil
}

func (s *Service) acquire(ctx context.Context, key string) (string, error) {
	for attempt := 1; ; attempt++ {
		token, ok, err := s.store.Lock(ctx, key, s.cfg.LockTTL)
		if err != nil {
			return "", apperr.PersistenceError("acquire portfolio lock", err)
		}
		if ok {
			return token, nil
		}
		if attempt >= s.cfg.LockAttempts {
			return "", apperr.Conflict("another change to this portfolio is in progress")
		}

		t := time.NewTimer(s.cfg.LockWait)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", apperr.Conflict("another change to this portfolio is in progress").WithError(ctx.Err())
		case <-t.C:
		}
	}
}
