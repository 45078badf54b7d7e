package http

import (
	"folio_server/core/domain"
	"folio_server/core/port/in"
	"folio_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// PortfolioHandler serves the owner-facing JSON API.
type PortfolioHandler struct {
	service in.PortfolioService
}

func NewPortfolioHandler(service in.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{service: service}
}

func (h *PortfolioHandler) Register(router fiber.Router) {
	portfolio := router.Group("/portfolio")
	portfolio.Get("/", h.Get)
	portfolio.Put("/", h.Update)
	portfolio.Post("/publish", h.Publish)
	portfolio.Post("/projects/reorder", h.Reorder)
}

type updateRequest struct {
	Email    string                `json:"email"`
	Template *domain.Template      `json:"template"`
	Data     *domain.PortfolioData `json:"data"`
}

type publishRequest struct {
	Email string `json:"email"`
}

type reorderRequest struct {
	Email string `json:"email"`
	From  *int   `json:"from"`
	To    *int   `json:"to"`
}

// Get returns the owner's draft.
// GET /api/portfolio?email=
func (h *PortfolioHandler) Get(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	email, err := requireEmail(c.Query("email"))
	if err != nil {
		return err
	}
	p, err := h.service.Get(c.UserContext(), caller, email)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// Update replaces template and/or data.
// PUT /api/portfolio
func (h *PortfolioHandler) Update(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req updateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	email, err := requireEmail(req.Email)
	if err != nil {
		return err
	}

	patch := domain.PortfolioPatch{Template: req.Template, Data: req.Data}
	p, err := h.service.Update(c.UserContext(), caller, email, patch)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// Publish makes the portfolio public, allocating a slug the first time.
// POST /api/portfolio/publish
func (h *PortfolioHandler) Publish(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req publishRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	email, err := requireEmail(req.Email)
	if err != nil {
		return err
	}
	p, err := h.service.Publish(c.UserContext(), caller, email)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// Reorder swaps two projects.
// POST /api/portfolio/projects/reorder
func (h *PortfolioHandler) Reorder(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req reorderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	email, err := requireEmail(req.Email)
	if err != nil {
		return err
	}
	if req.From == nil || req.To == nil {
		return apperr.MissingField("from/to")
	}
	p, err := h.service.ReorderProjects(c.UserContext(), caller, email, *req.From, *req.To)
	if err != nil {
		return err
	}
	return c.JSON(p)
}
