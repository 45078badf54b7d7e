package portfolio

import (
	"context"
	"errors"

	"folio_server/core/domain"
	"folio_server/core/port/in"
	"folio_server/core/port/out"
	"folio_server/pkg/apperr"
)

// PublicService resolves public pages. It never authorizes; it only serves published documents.
type PublicService struct {
	slugs      out.SlugStore
	portfolios out.PortfolioStore
}

var _ in.PublicPortfolioService = (*PublicService)(nil)

func NewPublicService(slugs out.SlugStore, portfolios out.PortfolioStore) *PublicService {
	return &PublicService{slugs: slugs, portfolios: portfolios}
}

// Lookup returns the owner mapped to slug.
func (s *PublicService) Lookup(ctx context.Context, slug string) (string, error) {
	if slug == "" {
		return "", apperr.NotFound("portfolio")
	}
	owner, err := s.slugs.ResolveSlug(ctx, slug)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return "", apperr.NotFound("portfolio")
		}
		return "", apperr.PersistenceError("resolve slug", err)
	}
	return owner, nil
}

// Resolve loads the published portfolio behind slug.
// A reservation whose portfolio is unpublished, or carries a different slug, is not found.
func (s *PublicService) Resolve(ctx context.Context, slug string) (*domain.Portfolio, error) {
	owner, err := s.Lookup(ctx, slug)
	if err != nil {
		return nil, err
	}

	p, err := s.portfolios.GetPortfolio(ctx, owner)
	if err != nil {
		return nil, storeError("load portfolio", err)
	}
	if !p.Published || p.Slug != slug {
		return nil, apperr.NotFound("portfolio")
	}
	return domain.MigrateLegacyAssets(p), nil
}
