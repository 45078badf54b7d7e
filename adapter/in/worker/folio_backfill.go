package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"folio_server/core/domain"
	"folio_server/core/port/out"

	"github.com/go-pkgz/pool"
	"github.com/rs/zerolog"
)

// BackfillConfig controls the legacy asset backfill.
type BackfillConfig struct {
	Workers   int
	BatchSize int
	DryRun    bool
	LockTTL   time.Duration
}

func DefaultBackfillConfig() BackfillConfig {
	return BackfillConfig{Workers: 4, BatchSize: 100, LockTTL: 10 * time.Second}
}

// BackfillStore is what the backfill needs: portfolio access plus the
// owner lock the live service holds while editing or publishing.
type BackfillStore interface {
	out.PortfolioStore
	out.Locker
}

// BackfillResult counts what a run did.
type BackfillResult struct {
	Scanned  int64
	Migrated int64
	Skipped  int64
	Busy     int64 // owner lock held by a live request; retried on the next run
	Failed   int64
}

// Backfill rewrites stored portfolios that still carry project imageUrl fields
// into the assets form. Reads already migrate in memory; this makes it durable.
type Backfill struct {
	store  BackfillStore
	config BackfillConfig
	log    zerolog.Logger

	scanned  atomic.Int64
	migrated atomic.Int64
	skipped  atomic.Int64
	busy     atomic.Int64
	failed   atomic.Int64
}

func NewBackfill(store BackfillStore, config BackfillConfig, log zerolog.Logger) *Backfill {
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.LockTTL <= 0 {
		config.LockTTL = 10 * time.Second
	}
	return &Backfill{
		store:  store,
		config: config,
		log:    log.With().Str("component", "backfill").Logger(),
	}
}

// ownerWorker implements pool.Worker for one portfolio owner.
type ownerWorker struct {
	b *Backfill
}

func (w *ownerWorker) Do(ctx context.Context, owner string) error {
	return w.b.migrate(ctx, owner)
}

// Run scans every portfolio key and migrates the ones that need it.
func (b *Backfill) Run(ctx context.Context) (BackfillResult, error) {
	start := time.Now()
	b.log.Info().
		Int("workers", b.config.Workers).
		Int("batch_size", b.config.BatchSize).
		Bool("dry_run", b.config.DryRun).
		Msg("backfill started")

	workers := pool.New[string](b.config.Workers, &ownerWorker{b: b}).WithContinueOnError()
	if err := workers.Go(ctx); err != nil {
		return BackfillResult{}, err
	}

	scanErr := b.store.ScanOwners(ctx, b.config.BatchSize, func(owners []string) error {
		for _, owner := range owners {
			if err := ctx.Err(); err != nil {
				return err
			}
			workers.Submit(owner)
		}
		return nil
	})

	// per-owner failures are already counted and logged
	if err := workers.Close(context.WithoutCancel(ctx)); err != nil && b.failed.Load() == 0 {
		b.log.Warn().Err(err).Msg("worker pool close")
	}

	res := b.result()
	ev := b.log.Info()
	if scanErr != nil {
		ev = b.log.Error().Err(scanErr)
	}
	ev.Int64("scanned", res.Scanned).
		Int64("migrated", res.Migrated).
		Int64("skipped", res.Skipped).
		Int64("busy", res.Busy).
		Int64("failed", res.Failed).
		Dur("took", time.Since(start)).
		Msg("backfill finished")

	if scanErr != nil {
		return res, scanErr
	}
	if res.Failed > 0 {
		return res, errors.New("backfill: some portfolios could not be migrated")
	}
	return res, nil
}

func (b *Backfill) migrate(ctx context.Context, owner string) error {
	b.scanned.Add(1)

	key := out.OwnerLockKey(owner)
	token, ok, err := b.store.Lock(ctx, key, b.config.LockTTL)
	if err != nil {
		b.failed.Add(1)
		b.log.Error().Err(err).Str("owner", owner).Msg("lock portfolio")
		return err
	}
	if !ok {
		b.busy.Add(1)
		b.log.Debug().Str("owner", owner).Msg("portfolio busy, leaving for the next run")
		return nil
	}
	defer func() {
		if err := b.store.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			b.log.Warn().Err(err).Str("owner", owner).Msg("unlock portfolio")
		}
	}()

	p, err := b.store.GetPortfolio(ctx, owner)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			// deleted between SCAN and GET
			b.skipped.Add(1)
			return nil
		}
		b.failed.Add(1)
		b.log.Error().Err(err).Str("owner", owner).Msg("load portfolio")
		return err
	}

	if !domain.NeedsAssetMigration(p) {
		b.skipped.Add(1)
		return nil
	}

	if b.config.DryRun {
		b.migrated.Add(1)
		b.log.Info().Str("owner", owner).Int("projects", len(p.Data.Projects)).Msg("would migrate")
		return nil
	}

	if err := b.store.SavePortfolio(ctx, owner, domain.CompactLegacyAssets(p)); err != nil {
		b.failed.Add(1)
		b.log.Error().Err(err).Str("owner", owner).Msg("save portfolio")
		return err
	}
	b.migrated.Add(1)
	b.log.Debug().Str("owner", owner).Msg("migrated")
	return nil
}

func (b *Backfill) result() BackfillResult {
	return BackfillResult{
		Scanned:  b.scanned.Load(),
		Migrated: b.migrated.Load(),
		Skipped:  b.skipped.Load(),
		Busy:     b.busy.Load(),
		Failed:   b.failed.Load(),
	}
}
