package http

import (
	"time"

	"folio_server/core/port/in"
	"folio_server/infra/middleware"
	"folio_server/pkg/apperr"
	"folio_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler serves the sign-in flow under /api/auth.
type AuthHandler struct {
	auth         in.AuthService
	sessionTTL   time.Duration
	secureCookie bool
}

func NewAuthHandler(auth in.AuthService, sessionTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: auth, sessionTTL: sessionTTL, secureCookie: secureCookie}
}

func (h *AuthHandler) Register(router fiber.Router) {
	auth := router.Group("/auth")
	auth.Get("/signin/google", h.SignIn)
	auth.Get("/callback/google", h.Callback)
	auth.Get("/session", h.Session)
	auth.Post("/signout", h.SignOut)
}

// SignIn stores a state and sends the browser to the provider.
// GET /api/auth/signin/google?callbackUrl=
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	authURL, err := h.auth.BeginSignIn(c.UserContext(), c.Query("callbackUrl"))
	if err != nil {
		return err
	}
	return c.Redirect(authURL, fiber.StatusFound)
}

// Callback finishes sign-in, sets the session cookie and returns to the callback URL.
// GET /api/auth/callback/google?state=&code=
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	if e := c.Query("error"); e != "" {
		logger.WithContext(c.UserContext()).WithField("provider_error", e).Warn("sign-in cancelled at provider")
		return c.Redirect(middleware.LoginPath, fiber.StatusFound)
	}

	result, err := h.auth.CompleteSignIn(c.UserContext(), c.Query("state"), c.Query("code"))
	if err != nil {
		return err
	}

	middleware.SetSessionCookie(c, result.Token, h.sessionTTL, h.secureCookie)
	return c.Redirect(result.CallbackURL, fiber.StatusFound)
}

type sessionResponse struct {
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Image   string    `json:"image,omitempty"`
	Expires time.Time `json:"expires"`
}

// Session returns the current session.
// GET /api/auth/session
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	s := middleware.SessionFrom(c)
	if s == nil {
		return apperr.Unauthorized("no active session")
	}
	return c.JSON(sessionResponse{
		Email:   s.Email,
		Name:    s.Name,
		Image:   s.Image,
		Expires: s.ExpiresAt,
	})
}

// SignOut revokes the session token and clears the cookie.
// POST /api/auth/signout
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	if s := middleware.SessionFrom(c); s != nil {
		if err := h.auth.SignOut(c.UserContext(), s); err != nil {
			return err
		}
	}
	middleware.ClearSessionCookie(c, h.secureCookie)

	if wantsHTML(c) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.JSON(fiber.Map{"success": true})
}
