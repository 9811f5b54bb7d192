package store

import (
	"context"
	"time"

	"github.com/A-Ariannejad/KayaScraper/internal/models"
)

const minIntervalMinutes = 10

// Load reads the singleton settings row, creating it with defaults on first
// use. The interval is clamped to the minimum rather than rejected; the skill
// selection comes from the settings_jobs join, ordered so cycles traverse
// skills in a stable order.
func (s *PGStore) Load(ctx context.Context) (models.Settings, error) {
	if _, err := s.pool.Exec(ctx, `
INSERT INTO settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING`); err != nil {
		return models.Settings{}, err
	}

	var set models.Settings
	if err := s.pool.QueryRow(ctx, `
SELECT interval_minutes FROM settings WHERE id = 1`).Scan(&set.IntervalMinutes); err != nil {
		return models.Settings{}, err
	}
	if set.IntervalMinutes < minIntervalMinutes {
		set.IntervalMinutes = minIntervalMinutes
	}

	rows, err := s.pool.Query(ctx, `
SELECT job_id FROM settings_jobs WHERE settings_id = 1 ORDER BY job_id`)
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return models.Settings{}, err
		}
		set.SkillIDs = append(set.SkillIDs, id)
	}
	return set, rows.Err()
}

// KnownSkillIDs returns every skill on record, the fallback universe when no
// explicit selection exists.
func (s *PGStore) KnownSkillIDs(ctx context.Context) ([]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT external_id FROM jobs ORDER BY external_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecordCycleRun stamps the settings row with the completion time of the
// latest cycle.
func (s *PGStore) RecordCycleRun(ctx context.Context, at time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE settings SET last_run_at=$1 WHERE id=1`, at.UTC())
	return err
}
