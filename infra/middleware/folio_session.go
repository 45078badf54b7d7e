package middleware

import (
	"strings"
	"time"

	"folio_server/core/domain"
	"folio_server/core/port/in"
	"folio_server/pkg/apperr"
	"folio_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const (
	SessionCookie = "folio_session"
	sessionKey    = "session"
)

// SessionFrom returns the authenticated session, or nil.
func SessionFrom(c *fiber.Ctx) *domain.Session {
	s, _ := c.Locals(sessionKey).(*domain.Session)
	return s
}

// CallerEmail is the authenticated email, or "" for anonymous requests.
func CallerEmail(c *fiber.Ctx) string {
	if s := SessionFrom(c); s != nil {
		return s.Email
	}
	return ""
}

// SessionToken reads the bearer token, falling back to the session cookie.
func SessionToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies(SessionCookie)
}

// Session attaches the caller's session when a valid token is present.
// It never rejects a request; RequireSession does that.
func Session(auth in.AuthService, secureCookie bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		token := SessionToken(c)
		if token == "" {
			return c.Next()
		}

		session, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			logger.WithContext(c.UserContext()).WithError(err).Debug("session rejected")
			if c.Cookies(SessionCookie) != "" {
				ClearSessionCookie(c, secureCookie)
			}
			return c.Next()
		}

		c.Locals(sessionKey, session)
		c.SetUserContext(logger.ContextWithOwner(c.UserContext(), session.Email))
		return c.Next()
	}
}

// RequireSession rejects anonymous requests with 401.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if SessionFrom(c) == nil {
			return apperr.Unauthorized("sign in required")
		}
		return c.Next()
	}
}

func SetSessionCookie(c *fiber.Ctx, token string, ttl time.Duration, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func ClearSessionCookie(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
