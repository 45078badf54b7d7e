package http

import (
	"folio_server/core/domain"
	"folio_server/core/port/in"
	"folio_server/infra/middleware"
	"folio_server/internal/render"
	"folio_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// PagesHandler serves the shell pages. The path router has already
// redirected anonymous dashboard visits and signed-in login visits.
type PagesHandler struct {
	portfolios      in.PortfolioService
	baseURL         string
	providerEnabled bool
}

func NewPagesHandler(portfolios in.PortfolioService, baseURL string, providerEnabled bool) *PagesHandler {
	return &PagesHandler{portfolios: portfolios, baseURL: baseURL, providerEnabled: providerEnabled}
}

func (h *PagesHandler) Register(app fiber.Router) {
	app.Get("/", h.Landing)
	app.Get("/login", h.Login)
	app.Get("/dashboard", middleware.RequireSession(), h.Dashboard)
}

func (h *PagesHandler) Landing(c *fiber.Ctx) error {
	return renderHTML(c, fiber.StatusOK, render.Landing())
}

func (h *PagesHandler) Login(c *fiber.Ctx) error {
	return renderHTML(c, fiber.StatusOK, render.Login(c.Query("callbackUrl"), h.providerEnabled))
}

func (h *PagesHandler) Dashboard(c *fiber.Ctx) error {
	s := middleware.SessionFrom(c)
	view := render.DashboardView{Session: s}

	p, err := h.portfolios.Get(c.UserContext(), s.Email, s.Email)
	if err != nil {
		// the shell still renders; the editor surfaces the failure
		logger.WithContext(c.UserContext()).WithError(err).Warn("dashboard portfolio load failed")
	} else {
		view.Portfolio = p
		view.ShareURL = h.shareURL(p)
	}
	return renderHTML(c, fiber.StatusOK, render.Dashboard(view))
}

func (h *PagesHandler) shareURL(p *domain.Portfolio) string {
	if p == nil || p.Slug == "" {
		return ""
	}
	return h.baseURL + "/" + p.Slug
}
