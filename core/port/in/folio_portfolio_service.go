package in

import (
	"context"

	"folio_server/core/domain"
)

// PortfolioService is the owner-facing portfolio API.
// caller is the authenticated email; owner is the email the request targets.
type PortfolioService interface {
	Get(ctx context.Context, caller, owner string) (*domain.Portfolio, error)
	Update(ctx context.Context, caller, owner string, patch domain.PortfolioPatch) (*domain.Portfolio, error)
	ReorderProjects(ctx context.Context, caller, owner string, from, to int) (*domain.Portfolio, error)
	Publish(ctx context.Context, caller, owner string) (*domain.Portfolio, error)
}

// PublicPortfolioService resolves published pages by slug.
type PublicPortfolioService interface {
	// Resolve returns the published portfolio for slug or a NotFound error.
	Resolve(ctx context.Context, slug string) (*domain.Portfolio, error)

	// Lookup returns the owner mapped to slug without loading the document.
	Lookup(ctx context.Context, slug string) (string, error)
}
