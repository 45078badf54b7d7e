package portfolio

import (
	"context"
	"errors"
	"time"

	"folio_server/core/domain"
	"folio_server/core/port/in"
	"folio_server/core/port/out"
	"folio_server/pkg/apperr"
	"folio_server/pkg/logger"
)

// Config tunes the per-owner document lock.
type Config struct {
	LockTTL      time.Duration
	LockAttempts int
	LockWait     time.Duration
}

func DefaultConfig() Config {
	return Config{
		LockTTL:      10 * time.Second,
		LockAttempts: 3,
		LockWait:     150 * time.Millisecond,
	}
}

// Service implements the owner-facing portfolio operations.
type Service struct {
	store out.Store
	slugs *SlugAllocator
	ids   IDGenerator
	cfg   Config
	now   func() time.Time
}

var _ in.PortfolioService = (*Service)(nil)

func NewService(store out.Store, slugs *SlugAllocator, ids IDGenerator, cfg Config) *Service {
	if cfg.LockAttempts < 1 {
		cfg.LockAttempts = 1
	}
	return &Service{
		store: store,
		slugs: slugs,
		ids:   ids,
		cfg:   cfg,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// authorize rejects anonymous callers and callers targeting someone else's document.
func authorize(caller, owner string) error {
	if caller == "" {
		return apperr.Unauthorized("sign in required")
	}
	if owner == "" || caller != owner {
		return apperr.Unauthorized("cannot access another user's portfolio")
	}
	return nil
}

func (s *Service) load(ctx context.Context, owner string) (*domain.Portfolio, error) {
	p, err := s.store.GetPortfolio(ctx, owner)
	if err != nil {
		return nil, storeError("load portfolio", err)
	}
	return p, nil
}

func storeError(op string, err error) error {
	if errors.Is(err, out.ErrNotFound) {
		return apperr.NotFound("portfolio")
	}
	if apperr.IsAppError(err) {
		return err
	}
	return apperr.PersistenceError(op, err)
}

// Get returns the owner's document with legacy assets expanded in memory.
func (s *Service) Get(ctx context.Context, caller, owner string) (*domain.Portfolio, error) {
	if err := authorize(caller, owner); err != nil {
		return nil, err
	}
	p, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return domain.MigrateLegacyAssets(p), nil
}

// Update replaces the supplied top-level fields wholesale.
// Slug and publish state are never touched here. An empty patch returns
// the current document without writing.
func (s *Service) Update(ctx context.Context, caller, owner string, patch domain.PortfolioPatch) (*domain.Portfolio, error) {
	if err := authorize(caller, owner); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.Get(ctx, caller, owner)
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var data *domain.PortfolioData
	if patch.Data != nil {
		d := patch.Data.Clone()
		if err := normalizeData(&d, s.ids); err != nil {
			return nil, err
		}
		data = &d
	}

	var p *domain.Portfolio
	err := s.withOwnerLock(ctx, owner, func() error {
		var err error
		if p, err = s.load(ctx, owner); err != nil {
			return err
		}

		if patch.Template != nil {
			p.Template = *patch.Template
		}
		if data != nil {
			p.Data = *data
		}
		p.UpdatedAt = s.now()

		if err := s.store.SavePortfolio(ctx, owner, p); err != nil {
			return storeError("save portfolio", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).WithFields(map[string]any{
		"template_set": patch.Template != nil,
		"data_set":     data != nil,
	}).Debug("portfolio updated")

	return domain.MigrateLegacyAssets(p), nil
}

// ReorderProjects swaps the projects at positions from and to.
func (s *Service) ReorderProjects(ctx context.Context, caller, owner string, from, to int) (*domain.Portfolio, error) {
	if err := authorize(caller, owner); err != nil {
		return nil, err
	}

	var p *domain.Portfolio
	err := s.withOwnerLock(ctx, owner, func() error {
		var err error
		if p, err = s.load(ctx, owner); err != nil {
			return err
		}

		if err := p.Data.SwapProjects(from, to); err != nil {
			return apperr.InvalidInput("from/to", err.Error()).
				WithDetail("projects", len(p.Data.Projects))
		}
		p.UpdatedAt = s.now()

		if err := s.store.SavePortfolio(ctx, owner, p); err != nil {
			return storeError("save portfolio", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return domain.MigrateLegacyAssets(p), nil
}
