package ingest

import (
	"context"
	"log"
	"time"

	"github.com/A-Ariannejad/KayaScraper/internal/models"
)

const defaultIntervalMinutes = 10

// minCycleSleep is a hard floor: a misconfigured interval can slow polling
// down but never speed it past one cycle per ten minutes.
const minCycleSleep = 600 * time.Second

// Service runs the poll loop: load settings, fetch every selected skill,
// upsert de-duplicated listings, sleep, repeat. Skill and record failures are
// contained; only context cancellation ends the loop.
type Service struct {
	store    StorePort
	fetcher  FetcherPort
	settings SettingsPort
	override []int // skill selection from env/CLI, wins over settings
	now      func() time.Time
}

func New(store StorePort, fetcher FetcherPort, settings SettingsPort, override []int, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, fetcher: fetcher, settings: settings, override: override, now: now}
}

// CycleStats aggregates the counters of one cycle.
type CycleStats struct {
	Skills       int
	SkillsFailed int
	Fetched      int
	Created      int
	Updated      int
	Duplicates   int
	Failed       int
	Duration     time.Duration
}

// Processed is the number of listings actually written this cycle.
func (c CycleStats) Processed() int { return c.Created + c.Updated }

// loadSettings never fails: a broken settings source degrades to the default
// interval, a missing skill selection degrades to the full known universe.
func (s *Service) loadSettings(ctx context.Context) models.Settings {
	set, err := s.settings.Load(ctx)
	if err != nil {
		log.Printf("settings load failed, using defaults: %v", err)
		set = models.Settings{IntervalMinutes: defaultIntervalMinutes}
	}
	if set.IntervalMinutes < defaultIntervalMinutes {
		set.IntervalMinutes = defaultIntervalMinutes
	}

	if len(s.override) > 0 {
		set.SkillIDs = s.override
		return set
	}
	if len(set.SkillIDs) == 0 {
		ids, err := s.settings.KnownSkillIDs(ctx)
		if err != nil {
			log.Printf("skill universe load failed: %v", err)
		} else {
			set.SkillIDs = ids
		}
	}
	return set
}

// RunCycle fetches and upserts every selected skill once. A fresh seen set
// scopes deduplication to this call.
func (s *Service) RunCycle(ctx context.Context, skills []int) CycleStats {
	start := s.now()
	stats := CycleStats{Skills: len(skills)}
	seen := NewSeenSet()

	for _, skill := range skills {
		if ctx.Err() != nil {
			break
		}
		var fetched, created, updated, dups, failed int
		err := s.fetcher.ForEachListing(ctx, skill, func(l models.Listing) error {
			fetched++
			if l.ProjectID == 0 {
				failed++
				log.Printf("listing without project_id skill=%d, skipped", skill)
				return nil
			}
			if !seen.MarkSeen(l.ProjectID) {
				dups++
				return nil
			}
			isNew, err := s.store.UpsertListing(ctx, Normalize(l, s.now))
			if err != nil {
				failed++
				log.Printf("upsert failed project_id=%d skill=%d: %v", l.ProjectID, skill, err)
				return nil
			}
			if isNew {
				created++
			} else {
				updated++
			}
			return nil
		})
		if err != nil {
			stats.SkillsFailed++
			log.Printf("fetch failed skill=%d: %v", skill, err)
		}
		log.Printf("skill=%d fetched=%d created=%d updated=%d duplicates=%d failed=%d", skill, fetched, created, updated, dups, failed)

		stats.Fetched += fetched
		stats.Created += created
		stats.Updated += updated
		stats.Duplicates += dups
		stats.Failed += failed
	}

	stats.Duration = s.now().Sub(start)
	return stats
}

// IngestOnce runs a single out-of-band cycle and reports how many listings
// were written.
func (s *Service) IngestOnce(ctx context.Context) (int, error) {
	set := s.loadSettings(ctx)
	if len(set.SkillIDs) == 0 {
		return 0, nil
	}
	stats := s.RunCycle(ctx, set.SkillIDs)
	return stats.Processed(), nil
}

// Run is the poll loop. It returns only when ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	for cycle := 1; ; cycle++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		set := s.loadSettings(ctx)
		if len(set.SkillIDs) == 0 {
			log.Printf("cycle=%d no skills selected, nothing to fetch", cycle)
		} else {
			stats := s.RunCycle(ctx, set.SkillIDs)
			log.Printf("cycle=%d skills=%d skills_failed=%d fetched=%d created=%d updated=%d duplicates=%d failed=%d duration=%s",
				cycle, stats.Skills, stats.SkillsFailed, stats.Fetched, stats.Created, stats.Updated, stats.Duplicates, stats.Failed, stats.Duration.Round(time.Millisecond))
		}

		if err := s.settings.RecordCycleRun(ctx, s.now()); err != nil {
			log.Printf("cycle=%d record run failed: %v", cycle, err)
		}

		select {
		case <-time.After(effectiveSleep(set.IntervalMinutes)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// effectiveSleep honors the configured interval only above the hard floor.
func effectiveSleep(intervalMinutes int) time.Duration {
	d := time.Duration(intervalMinutes) * time.Minute
	if d < minCycleSleep {
		return minCycleSleep
	}
	return d
}

// QueryRecent retrieves the latest stored listings.
func (s *Service) QueryRecent(ctx context.Context, limit, offset int) ([]models.ListingRecord, error) {
	return s.store.QueryRecent(ctx, limit, offset)
}

// QueryBySkill retrieves stored listings associated with one skill.
func (s *Service) QueryBySkill(ctx context.Context, skillID int) ([]models.ListingRecord, error) {
	return s.store.QueryBySkill(ctx, skillID)
}
