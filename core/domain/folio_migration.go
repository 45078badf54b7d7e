package domain

// MigrateLegacyAssets returns a copy of p in which every project carries an assets slice.
// A project with a legacy imageUrl and no assets gets a single image asset built from it.
// p itself is not modified and the result is stable under repeated application.
func MigrateLegacyAssets(p *Portfolio) *Portfolio {
	if p == nil {
		return nil
	}
	out := p.Clone()
	for i := range out.Data.Projects {
		out.Data.Projects[i] = MigrateProject(out.Data.Projects[i])
	}
	return out
}

// MigrateProject applies the legacy asset rule to a single project value.
func MigrateProject(p Project) Project {
	if p.ImageURL != "" && len(p.Assets) == 0 {
		p.Assets = []Asset{{
			ID:   p.ID + "-image-1",
			URL:  p.ImageURL,
			Type: AssetImage,
		}}
		return p
	}
	if p.Assets == nil {
		p.Assets = []Asset{}
	}
	return p
}

// NeedsAssetMigration reports whether a stored document still has legacy project fields.
func NeedsAssetMigration(p *Portfolio) bool {
	for _, proj := range p.Data.Projects {
		if proj.ImageURL != "" || proj.Assets == nil {
			return true
		}
	}
	return false
}

// CompactLegacyAssets migrates p and drops the legacy imageUrl fields.
// It is the form written back by an explicit backfill.
func CompactLegacyAssets(p *Portfolio) *Portfolio {
	out := MigrateLegacyAssets(p)
	for i := range out.Data.Projects {
		out.Data.Projects[i].ImageURL = ""
	}
	return out
}
