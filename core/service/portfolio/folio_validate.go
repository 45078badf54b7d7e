package portfolio

import (
	"fmt"
	"strings"

	"folio_server/core/domain"
	"folio_server/pkg/apperr"
)

// IDGenerator issues ids for projects saved without one.
type IDGenerator interface {
	NextString() (string, error)
}

func validatePatch(patch domain.PortfolioPatch) error {
	if patch.Template != nil && !patch.Template.Valid() {
		return apperr.InvalidInput("template", fmt.Sprintf("must be one of %v", domain.Templates))
	}
	return nil
}

// normalizeData fills missing ids, converts legacy images and rejects
// malformed assets. It edits data in place.
func normalizeData(data *domain.PortfolioData, ids IDGenerator) error {
	data.Name = strings.TrimSpace(data.Name)
	data.Title = strings.TrimSpace(data.Title)
	data.NormalizeSkills()

	if data.Projects == nil {
		data.Projects = []domain.Project{}
	}

	seen := make(map[string]struct{}, len(data.Projects))
	for i := range data.Projects {
		proj := &data.Projects[i]

		if proj.ID == "" {
			id, err := ids.NextString()
			if err != nil {
				return apperr.InternalWithError(err)
			}
			proj.ID = id
		}
		if _, dup := seen[proj.ID]; dup {
			return apperr.InvalidInput("data.projects", "duplicate project id "+proj.ID)
		}
		seen[proj.ID] = struct{}{}

		*proj = domain.MigrateProject(*proj)
		proj.ImageURL = ""

		for j := range proj.Assets {
			asset := &proj.Assets[j]
			if !asset.Type.Valid() {
				return apperr.InvalidInput(
					fmt.Sprintf("data.projects[%d].assets[%d].type", i, j),
					"must be image or video",
				)
			}
			if strings.TrimSpace(asset.URL) == "" {
				return apperr.InvalidInput(fmt.Sprintf("data.projects[%d].assets[%d].url", i, j), "required")
			}
			if asset.ID == "" {
				asset.ID = fmt.Sprintf("%s-asset-%d", proj.ID, j+1)
			}
		}
	}
	return nil
}
