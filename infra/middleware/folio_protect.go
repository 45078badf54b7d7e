package middleware

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"folio_server/pkg/apperr"
	"folio_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// SecurityHeaders adds security headers to all responses.
// Public pages load user-supplied images and video, so media sources are open.
func SecurityHeaders(production bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Content-Security-Policy",
			"default-src 'self'; img-src * data:; media-src *; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'")
		c.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		if production {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		return c.Next()
	}
}

// PreventPathTraversal blocks path traversal attempts
func PreventPathTraversal() fiber.Handler {
	traversalPatterns := []string{
		"..",
		"..%2f",
		"..%5c",
		"%2e%2e",
		"..\\",
	}

	return func(c *fiber.Ctx) error {
		path := strings.ToLower(string(c.Request().URI().PathOriginal()))

		for _, pattern := range traversalPatterns {
			if strings.Contains(path, pattern) {
				return apperr.BadRequest("invalid path").WithDetail("reason", "PATH_TRAVERSAL_BLOCKED")
			}
		}

		return c.Next()
	}
}

// RateLimit limits requests per client IP using an in-memory store.
func RateLimit(perMinute int64) fiber.Handler {
	if perMinute <= 0 {
		perMinute = 120
	}
	instance := limiter.New(memory.NewStore(), limiter.Rate{
		Period: time.Minute,
		Limit:  perMinute,
	})

	return func(c *fiber.Ctx) error {
		ctx, err := instance.Get(c.UserContext(), c.IP())
		if err != nil {
			logger.WithError(err).Warn("rate limiter unavailable")
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))

		if ctx.Reached {
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", max(ctx.Reset-time.Now().Unix(), 1)))
			return apperr.ErrRateLimited
		}
		return c.Next()
	}
}

// NoCache sets no-cache headers for dynamic API responses.
func NoCache() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Set("Pragma", "no-cache")
		c.Set("Expires", "0")
		return c.Next()
	}
}

// PublicCache sets shared cache headers on successful responses.
func PublicCache(maxAge time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		if c.Response().StatusCode() < 400 {
			c.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
		}

		return nil
	}
}
