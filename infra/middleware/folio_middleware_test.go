package middleware

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"folio_server/core/domain"
	"folio_server/core/port/in"
	"folio_server/pkg/apperr"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct{}

func (stubAuth) BeginSignIn(context.Context, string) (string, error) { return "", nil }
func (stubAuth) CompleteSignIn(context.Context, string, string) (*in.SignInResult, error) {
	return nil, nil
}
func (stubAuth) Authenticate(_ context.Context, token string) (*domain.Session, error) {
	if token == "good" {
		return &domain.Session{Email: "a@x.com", Name: "Ann"}, nil
	}
	return nil, apperr.InvalidToken("bad")
}
func (stubAuth) SignOut(context.Context, *domain.Session) error { return nil }

func TestErrorHandler_JSONForAPI(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(func(c *fiber.Ctx, status int, msg string) error {
		return c.SendString("page:" + msg)
	})})
	app.Use(RequestID())
	app.Get("/api/x", func(c *fiber.Ctx) error { return apperr.NotFound("portfolio") })
	app.Get("/x", func(c *fiber.Ctx) error { return apperr.NotFound("portfolio") })
	app.Get("/api/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/api/x", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, apperr.CodeNotFound, body.Error.Code)
	assert.NotEmpty(t, body.RequestID)

	resp, err = app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "page:portfolio not found", string(raw))

	resp, err = app.Test(httptest.NewRequest("GET", "/api/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestRecover(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	app.Use(Recover())
	app.Get("/api/panic", func(c *fiber.Ctx) error { panic("nope") })

	resp, err := app.Test(httptest.NewRequest("GET", "/api/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestSessionMiddleware(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	app.Use(Session(stubAuth{}, false))
	app.Get("/who", func(c *fiber.Ctx) error { return c.SendString(CallerEmail(c)) })
	app.Get("/private", RequireSession(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"anonymous", "", "", ""},
		{"bearer", "Bearer good", "", "a@x.com"},
		{"cookie", "", "good", "a@x.com"},
		{"bad token", "Bearer bad", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/who", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.Header.Set("Cookie", SessionCookie+"="+tt.cookie)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.want, string(body))
		})
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	app.Use(RateLimit(2))
	app.Get("/api/x", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/x", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Remaining"))
	}
	resp, err := app.Test(httptest.NewRequest("GET", "/api/x", nil))
	require.NoError(t, err)
	assert.Equal(t, 429, resp.StatusCode)
}

func TestPreventPathTraversal(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	app.Use(PreventPathTraversal())
	app.Get("/*", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/%2e%2e/etc/passwd", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestSecurityHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(SecurityHeaders(true))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "media-src *")
	assert.NotEmpty(t, resp.Header.Get("Strict-Transport-Security"))
}
