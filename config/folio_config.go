package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	NodeID      int

	// Public origin used to build absolute links (share URLs, OAuth redirect default)
	BaseURL string

	// Redis
	RedisURL string

	// Session
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	// OAuth - Google
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Slugs
	SlugLength        int
	SlugMaxAttempts   int
	SlugLookupTimeout time.Duration

	// Publish
	PublishLockTTL time.Duration

	// Protection
	RateLimitPerMin int
	BreakerTimeout  time.Duration

	// CORS
	AllowedOrigins []string

	// Public pages
	PublicCacheMaxAge time.Duration

	// Backfill worker
	BackfillWorkers   int
	BackfillBatchSize int
	BackfillDryRun    bool
}

func Load() (*Config, error) {
	env := getEnv("ENV", "development")
	baseURL := strings.TrimSuffix(getEnv("BASE_URL", "http://localhost:8080"), "/")

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		NodeID:      getEnvInt("NODE_ID", 1),
		BaseURL:     baseURL,

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 24*30)) * time.Hour,
		CookieSecure:  getEnvBool("COOKIE_SECURE", env == "production"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", baseURL+"/api/auth/callback/google"),

		SlugLength:        getEnvInt("SLUG_LENGTH", 12),
		SlugMaxAttempts:   getEnvInt("SLUG_MAX_ATTEMPTS", 5),
		SlugLookupTimeout: time.Duration(getEnvInt("SLUG_LOOKUP_TIMEOUT_MS", 250)) * time.Millisecond,

		PublishLockTTL: time.Duration(getEnvInt("PUBLISH_LOCK_TTL_SEC", 10)) * time.Second,

		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MIN", 120),
		BreakerTimeout:  time.Duration(getEnvInt("BREAKER_TIMEOUT_SEC", 30)) * time.Second,

		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:8080"}),

		PublicCacheMaxAge: time.Duration(getEnvInt("PUBLIC_CACHE_SEC", 60)) * time.Second,

		BackfillWorkers:   getEnvInt("BACKFILL_WORKERS", 4),
		BackfillBatchSize: getEnvInt("BACKFILL_BATCH_SIZE", 100),
		BackfillDryRun:    getEnvBool("BACKFILL_DRY_RUN", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.IsProduction() && c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required in production")
	}
	if c.SessionSecret == "" {
		// development only
		c.SessionSecret = "folio-dev-secret"
	}
	if c.SlugLength < 8 {
		return errors.New("SLUG_LENGTH must be at least 8")
	}
	if c.SlugMaxAttempts < 1 {
		return errors.New("SLUG_MAX_ATTEMPTS must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GoogleConfigured reports whether sign-in can be offered.
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
