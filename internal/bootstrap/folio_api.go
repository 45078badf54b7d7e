package bootstrap

import (
	"strings"

	"folio_server/adapter/in/http"
	"folio_server/config"
	"folio_server/infra/middleware"
	"folio_server/pkg/logger"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logLevel := logger.ParseLevel(cfg.LogLevel)
	if cfg.IsDevelopment() {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "folio-api",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	return newApp(cfg, deps), cleanup, nil
}

func newApp(cfg *config.Config, deps *Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(http.ErrorPage),
		DisableStartupMessage: cfg.IsProduction(),
		StrictRouting:         false,
		CaseSensitive:         true, // slugs are case sensitive

		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		// portfolio documents are small; this bounds a hostile PUT
		BodyLimit: 1 * 1024 * 1024,

		ServerHeader:       "",
		DisableDefaultDate: true,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())                           // 1. Panic recovery
	app.Use(middleware.RequestID())                         // 2. Request ID
	app.Use(middleware.SecurityHeaders(cfg.IsProduction())) // 3. Security headers
	app.Use(middleware.PreventPathTraversal())              // 4. Path traversal protection
	app.Use(middleware.RequestLogger())                     // 5. Request logging

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// CORS: credentials require explicit origins
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := true
	if allowOrigins == "" || allowOrigins == "*" {
		if cfg.IsProduction() {
			allowOrigins = cfg.BaseURL
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:8080"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID,X-RateLimit-Limit,X-RateLimit-Remaining,X-RateLimit-Reset",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	prometheus := fiberprometheus.New("folio")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Use(middleware.Session(deps.AuthService, cfg.CookieSecure))
	app.Use(middleware.PathRouter(deps.PublicService.Lookup, cfg.SlugLookupTimeout))

	// Health check (no auth required)
	http.NewHealthHandler(deps.Cache).Register(app)

	api := app.Group("/api")
	api.Use(middleware.RateLimit(int64(cfg.RateLimitPerMin)))
	api.Use(middleware.NoCache())

	http.NewAuthHandler(deps.AuthService, deps.Sessions.TTL(), cfg.CookieSecure).Register(api)
	http.NewPortfolioHandler(deps.PortfolioService).Register(api)

	// Unknown /api paths must not fall through to the slug route
	api.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	http.NewPagesHandler(deps.PortfolioService, cfg.BaseURL, cfg.GoogleConfigured()).Register(app)

	// Must stay last: /:slug matches any single segment
	http.NewPublicHandler(deps.PublicService, cfg.PublicCacheMaxAge).Register(app)

	return app
}
