package bootstrap

import (
	"context"
	"os"

	"folio_server/adapter/in/worker"
	"folio_server/adapter/out/persistence"
	"folio_server/config"
	"folio_server/infra/database"
	"folio_server/pkg/cache"

	"github.com/rs/zerolog"
)

// RunBackfill rewrites legacy project images into assets once and returns.
func RunBackfill(ctx context.Context, cfg *config.Config) (worker.BackfillResult, error) {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Str("component", "worker").Logger()

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		zlog.Error().Err(err).Msg("redis connect failed")
		return worker.BackfillResult{}, err
	}
	defer redisClient.Close()

	store := persistence.NewRedisStore(cache.NewRedisCache(redisClient, cfg.BreakerTimeout))
	backfill := worker.NewBackfill(store, worker.BackfillConfig{
		Workers:   cfg.BackfillWorkers,
		BatchSize: cfg.BackfillBatchSize,
		DryRun:    cfg.BackfillDryRun,
		LockTTL:   cfg.PublishLockTTL,
	}, zlog)

	return backfill.Run(ctx)
}
