package http

import (
	"strings"

	"folio_server/infra/middleware"
	"folio_server/internal/render"
	"folio_server/pkg/apperr"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
)

// renderHTML writes a templ component as the response body.
func renderHTML(c *fiber.Ctx, status int, component templ.Component) error {
	c.Status(status)
	c.Type("html", "utf-8")
	return component.Render(c.UserContext(), c.Response().BodyWriter())
}

// ErrorPage is the HTML error page used by middleware.ErrorHandler.
func ErrorPage(c *fiber.Ctx, status int, message string) error {
	if status == fiber.StatusNotFound {
		return renderHTML(c, status, render.NotFound())
	}
	return renderHTML(c, status, render.ErrorPage(status, message))
}

var _ middleware.HTMLErrorPage = ErrorPage

// parseBody decodes a JSON body, mapping decode failures to a 400.
func parseBody(c *fiber.Ctx, dest any) error {
	if len(c.Body()) == 0 {
		return apperr.ValidationFailed("request body is required")
	}
	if err := c.BodyParser(dest); err != nil {
		return apperr.ValidationFailed("invalid request body").WithError(err)
	}
	return nil
}

// requireCaller returns the signed-in email, or a 401 for anonymous requests.
func requireCaller(c *fiber.Ctx) (string, error) {
	caller := middleware.CallerEmail(c)
	if caller == "" {
		return "", apperr.Unauthorized("sign in required")
	}
	return caller, nil
}

func requireEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperr.MissingField("email")
	}
	return email, nil
}

// wantsHTML reports whether the caller is a browser form rather than a fetch client.
func wantsHTML(c *fiber.Ctx) bool {
	ct := c.Get(fiber.HeaderContentType)
	return strings.HasPrefix(ct, fiber.MIMEApplicationForm) || strings.HasPrefix(ct, fiber.MIMEMultipartForm)
}
