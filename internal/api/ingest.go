package api

import (
	"context"

	"github.com/A-Ariannejad/KayaScraper/internal/models"
)

// IngestOnce triggers a single out-of-band ingestion cycle.
func (a *API) IngestOnce(ctx context.Context) (int, error) {
	return a.ing.IngestOnce(ctx)
}

// QueryRecent returns the latest stored listings.
func (a *API) QueryRecent(ctx context.Context, limit, offset int) ([]models.ListingRecord, error) {
	return a.ing.QueryRecent(ctx, limit, offset)
}

// QueryBySkill returns stored listings carrying the given skill.
func (a *API) QueryBySkill(ctx context.Context, skillID int) ([]models.ListingRecord, error) {
	return a.ing.QueryBySkill(ctx, skillID)
}
