package http

import (
	"time"

	"folio_server/core/port/in"
	"folio_server/infra/middleware"
	"folio_server/internal/render"
	"folio_server/pkg/apperr"
	"folio_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// PublicHandler renders published portfolios.
type PublicHandler struct {
	service in.PublicPortfolioService
	maxAge  time.Duration
}

func NewPublicHandler(service in.PublicPortfolioService, maxAge time.Duration) *PublicHandler {
	return &PublicHandler{service: service, maxAge: maxAge}
}

// Register must run after every other route: /:slug matches any single segment.
func (h *PublicHandler) Register(app fiber.Router) {
	cache := middleware.PublicCache(h.maxAge)
	app.Get("/p/:slug", cache, h.Show)
	app.Get("/:slug", cache, h.Show)
}

// Show renders the template for a published slug, or the not-found page.
// Any resolution failure, store outages included, is shown as not found.
// GET /:slug, /p/:slug
func (h *PublicHandler) Show(c *fiber.Ctx) error {
	slug := c.Params("slug")
	p, err := h.service.Resolve(c.UserContext(), slug)
	if err != nil {
		if !apperr.HasCode(err, apperr.CodeNotFound) {
			logger.WithContext(c.UserContext()).WithError(err).WithField("slug", slug).Warn("public page resolution failed")
		}
		return renderHTML(c, fiber.StatusNotFound, render.NotFound())
	}
	return renderHTML(c, fiber.StatusOK, render.Portfolio(p))
}
