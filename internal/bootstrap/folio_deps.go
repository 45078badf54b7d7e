package bootstrap

import (
	"folio_server/adapter/out/persistence"
	"folio_server/adapter/out/provider"
	"folio_server/config"
	"folio_server/core/port/out"
	"folio_server/core/service/auth"
	"folio_server/core/service/portfolio"
	"folio_server/infra/database"
	"folio_server/pkg/cache"
	"folio_server/pkg/logger"
	"folio_server/pkg/snowflake"

	"github.com/redis/go-redis/v9"
)

type Dependencies struct {
	Config *config.Config
	Redis  *redis.Client
	Cache  *cache.RedisCache

	// Stores
	Store       *persistence.RedisStore
	StateStore  *persistence.RedisOAuthStateStore
	TokenRevoke *persistence.RedisTokenRevoker

	// Providers
	Identity out.IdentityProvider

	// Services
	Sessions         *auth.Sessions
	AuthService      *auth.Service
	PortfolioService *portfolio.Service
	PublicService    *portfolio.PublicService
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Redis (required: it is the only store)
	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	cleanups = append(cleanups, func() { _ = redisClient.Close() })
	deps.Redis = redisClient
	deps.Cache = cache.NewRedisCache(redisClient, cfg.BreakerTimeout)
	logger.Info("Redis connected")

	deps.Store = persistence.NewRedisStore(deps.Cache)
	deps.StateStore = persistence.NewRedisOAuthStateStore(deps.Cache)
	deps.TokenRevoke = persistence.NewRedisTokenRevoker(deps.Cache)

	// Identity provider
	if cfg.GoogleConfigured() {
		deps.Identity = provider.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		logger.Info("Google sign-in enabled")
	} else {
		logger.Warn("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set, sign-in disabled")
	}

	ids, err := snowflake.NewGenerator(int64(cfg.NodeID))
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	// Services
	deps.Sessions = auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL, deps.TokenRevoke)
	deps.AuthService = auth.NewService(deps.Identity, deps.StateStore, deps.Store, deps.Store, deps.Sessions)

	slugs := portfolio.NewSlugAllocator(deps.Store, portfolio.NanoidGenerator(cfg.SlugLength), cfg.SlugMaxAttempts)
	portfolioCfg := portfolio.DefaultConfig()
	if cfg.PublishLockTTL > 0 {
		portfolioCfg.LockTTL = cfg.PublishLockTTL
	}
	deps.PortfolioService = portfolio.NewService(deps.Store, slugs, ids, portfolioCfg)
	deps.PublicService = portfolio.NewPublicService(deps.Store, deps.Store)

	return deps, cleanup, nil
}
