package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/A-Ariannejad/KayaScraper/internal/ingest" // import ONLY for the interfaces
	"github.com/A-Ariannejad/KayaScraper/internal/models" // import ONLY for the types
)

type PGStore struct{ pool *pgxpool.Pool }

// Ensure PGStore satisfies both sides of the ingest boundary.
var (
	_ ingest.StorePort    = (*PGStore)(nil)
	_ ingest.SettingsPort = (*PGStore)(nil)
)

func New(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	_, err = pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS jobs (
  external_id INT PRIMARY KEY,
  name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS listings (
  project_id BIGINT PRIMARY KEY,
  submit_date TIMESTAMPTZ NOT NULL,
  is_hourly BOOLEAN NOT NULL,
  currency_code TEXT NOT NULL,
  payment_verified BOOLEAN NOT NULL,
  ingested_at TIMESTAMPTZ NOT NULL,
  doc JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_listings_submit_date ON listings(submit_date);
CREATE INDEX IF NOT EXISTS idx_listings_doc_gin ON listings USING GIN (doc);
CREATE TABLE IF NOT EXISTS listing_jobs (
  project_id BIGINT NOT NULL REFERENCES listings(project_id) ON DELETE CASCADE,
  job_id INT NOT NULL REFERENCES jobs(external_id) ON DELETE CASCADE,
  PRIMARY KEY (project_id, job_id)
);
CREATE TABLE IF NOT EXISTS settings (
  id INT PRIMARY KEY CHECK (id = 1),
  interval_minutes INT NOT NULL DEFAULT 10,
  last_run_at TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS settings_jobs (
  settings_id INT NOT NULL REFERENCES settings(id) ON DELETE CASCADE,
  job_id INT NOT NULL REFERENCES jobs(external_id) ON DELETE CASCADE,
  PRIMARY KEY (settings_id, job_id)
);
`)
	if err != nil {
		return nil, err
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Close() { s.pool.Close() }

// UpsertListing writes the listing and replaces its full skill association
// set in one transaction. The empty set clears all associations.
func (s *PGStore) UpsertListing(ctx context.Context, rec models.ListingRecord) (bool, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("encode listing %d: %w", rec.ProjectID, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var created bool
	err = tx.QueryRow(ctx, `
INSERT INTO listings (project_id, submit_date, is_hourly, currency_code, payment_verified, ingested_at, doc)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (project_id) DO UPDATE SET
  submit_date=EXCLUDED.submit_date, is_hourly=EXCLUDED.is_hourly,
  currency_code=EXCLUDED.currency_code, payment_verified=EXCLUDED.payment_verified,
  ingested_at=EXCLUDED.ingested_at, doc=EXCLUDED.doc
RETURNING (xmax = 0)`,
		rec.ProjectID, rec.SubmitDate, rec.IsHourly, rec.CurrencyCode, rec.PaymentVerified, rec.IngestedAt, raw,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("upsert listing %d: %w", rec.ProjectID, err)
	}

	for _, j := range rec.Jobs {
		if _, err := tx.Exec(ctx, `
INSERT INTO jobs (external_id, name) VALUES ($1,$2)
ON CONFLICT (external_id) DO UPDATE SET name=EXCLUDED.name`, j.ExternalID, j.Name); err != nil {
			return false, fmt.Errorf("upsert job %d: %w", j.ExternalID, err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM listing_jobs WHERE project_id=$1`, rec.ProjectID); err != nil {
		return false, fmt.Errorf("clear associations %d: %w", rec.ProjectID, err)
	}
	for _, j := range rec.Jobs {
		if _, err := tx.Exec(ctx, `
INSERT INTO listing_jobs (project_id, job_id) VALUES ($1,$2)
ON CONFLICT DO NOTHING`, rec.ProjectID, j.ExternalID); err != nil {
			return false, fmt.Errorf("associate %d with %d: %w", rec.ProjectID, j.ExternalID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return created, nil
}

func (s *PGStore) UpsertJob(ctx context.Context, job models.Job) (bool, error) {
	var created bool
	err := s.pool.QueryRow(ctx, `
INSERT INTO jobs (external_id, name) VALUES ($1,$2)
ON CONFLICT (external_id) DO UPDATE SET name=EXCLUDED.name
RETURNING (xmax = 0)`, job.ExternalID, job.Name).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("upsert job %d: %w", job.ExternalID, err)
	}
	return created, nil
}

func (s *PGStore) QueryRecent(ctx context.Context, limit, offset int) ([]models.ListingRecord, error) {
	// sane limits
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.pool.Query(ctx, `
SELECT doc
FROM listings
ORDER BY submit_date DESC, project_id DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDocs(rows)
}

func (s *PGStore) QueryBySkill(ctx context.Context, skillID int) ([]models.ListingRecord, error) {
	rows, err := s.pool.Query(ctx, `
SELECT l.doc
FROM listings l
JOIN listing_jobs lj ON lj.project_id = l.project_id
WHERE lj.job_id = $1
ORDER BY l.submit_date DESC
`, skillID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDocs(rows)
}

type docRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanDocs(rows docRows) ([]models.ListingRecord, error) {
	var out []models.ListingRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var rec models.ListingRecord
		if err := json.Unmarshal(raw, &rec); err == nil {
			out = append(out, rec)
		}
	}
	return out, rows.Err()
}
