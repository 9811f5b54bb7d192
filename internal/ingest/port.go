package ingest

import (
	"context"
	"time"

	"github.com/A-Ariannejad/KayaScraper/internal/models"
)

type FetcherPort interface {
	ForEachListing(ctx context.Context, skillID int, fn func(models.Listing) error) error
}

type StorePort interface {
	// UpsertListing writes one record keyed by project id and reports
	// whether a new row was created. The listing's skill association set is
	// replaced wholesale on every call.
	UpsertListing(ctx context.Context, rec models.ListingRecord) (bool, error)
	UpsertJob(ctx context.Context, job models.Job) (bool, error)
	QueryRecent(ctx context.Context, limit, offset int) ([]models.ListingRecord, error)
	QueryBySkill(ctx context.Context, skillID int) ([]models.ListingRecord, error)
}

type SettingsPort interface {
	// Load returns the current polling configuration. It is re-invoked every
	// cycle; callers must not cache the result across cycles.
	Load(ctx context.Context) (models.Settings, error)
	// KnownSkillIDs is the full skill universe, the fallback when no
	// explicit selection exists.
	KnownSkillIDs(ctx context.Context) ([]int, error)
	RecordCycleRun(ctx context.Context, at time.Time) error
}
