package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/A-Ariannejad/KayaScraper/internal/models"
)

type fakeFetcher struct {
	pages map[int][]models.Listing
	fail  map[int]error
}

func (f *fakeFetcher) ForEachListing(ctx context.Context, skillID int, fn func(models.Listing) error) error {
	if err := f.fail[skillID]; err != nil {
		return err
	}
	for _, l := range f.pages[skillID] {
		if err := fn(l); err != nil {
			return err
		}
	}
	return nil
}

type fakeStore struct {
	records map[int64]models.ListingRecord
	order   []int64
	jobs    map[int]models.Job
	failIDs map[int64]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: map[int64]models.ListingRecord{},
		jobs:    map[int]models.Job{},
		failIDs: map[int64]error{},
	}
}

func (f *fakeStore) UpsertListing(ctx context.Context, rec models.ListingRecord) (bool, error) {
	if err := f.failIDs[rec.ProjectID]; err != nil {
		return false, err
	}
	_, exists := f.records[rec.ProjectID]
	f.records[rec.ProjectID] = rec
	f.order = append(f.order, rec.ProjectID)
	return !exists, nil
}

func (f *fakeStore) UpsertJob(ctx context.Context, job models.Job) (bool, error) {
	_, exists := f.jobs[job.ExternalID]
	f.jobs[job.ExternalID] = job
	return !exists, nil
}

func (f *fakeStore) QueryRecent(ctx context.Context, limit, offset int) ([]models.ListingRecord, error) {
	return nil, nil
}

func (f *fakeStore) QueryBySkill(ctx context.Context, skillID int) ([]models.ListingRecord, error) {
	return nil, nil
}

type fakeSettings struct {
	set         models.Settings
	loadErr     error
	universe    []int
	universeErr error
	runs        []time.Time
}

func (f *fakeSettings) Load(ctx context.Context) (models.Settings, error) {
	if f.loadErr != nil {
		return models.Settings{}, f.loadErr
	}
	return f.set, nil
}

func (f *fakeSettings) KnownSkillIDs(ctx context.Context) ([]int, error) {
	return f.universe, f.universeErr
}

func (f *fakeSettings) RecordCycleRun(ctx context.Context, at time.Time) error {
	f.runs = append(f.runs, at)
	return nil
}

func listing(pid int64) models.Listing {
	return models.Listing{ProjectID: pid, SubmitDate: 1_700_000_000, Title: "t"}
}

func TestRunCycle_DedupsAcrossSkills(t *testing.T) {
	// skill 17 yields 100, 101; skill 42 yields 100 again plus 200:
	// exactly three upserts, in traversal order.
	store := newFakeStore()
	fetcher := &fakeFetcher{pages: map[int][]models.Listing{
		17: {listing(100), listing(101)},
		42: {listing(100), listing(200)},
	}}
	svc := New(store, fetcher, &fakeSettings{}, nil, nil)

	stats := svc.RunCycle(context.Background(), []int{17, 42})

	want := []int64{100, 101, 200}
	if len(store.order) != len(want) {
		t.Fatalf("expected %d upserts, got %v", len(want), store.order)
	}
	for i, pid := range want {
		if store.order[i] != pid {
			t.Fatalf("upsert order: want %v got %v", want, store.order)
		}
	}
	if stats.Fetched != 4 || stats.Duplicates != 1 || stats.Created != 3 || stats.Failed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRunCycle_SkillFailureIsIsolated(t *testing.T) {
	store := newFakeStore()
	fetcher := &fakeFetcher{
		pages: map[int][]models.Listing{
			2: {listing(20)},
			3: {listing(30)},
		},
		fail: map[int]error{1: errors.New("upstream down")},
	}
	svc := New(store, fetcher, &fakeSettings{}, nil, nil)

	stats := svc.RunCycle(context.Background(), []int{1, 2, 3})

	if stats.SkillsFailed != 1 {
		t.Fatalf("expected one failed skill, got %+v", stats)
	}
	if len(store.records) != 2 {
		t.Fatalf("sibling skills must still be ingested, got %v", store.order)
	}
}

func TestRunCycle_UpsertFailureIsIsolated(t *testing.T) {
	store := newFakeStore()
	store.failIDs[101] = errors.New("constraint violation")
	fetcher := &fakeFetcher{pages: map[int][]models.Listing{
		17: {listing(100), listing(101), listing(102)},
	}}
	svc := New(store, fetcher, &fakeSettings{}, nil, nil)

	stats := svc.RunCycle(context.Background(), []int{17})

	if stats.Failed != 1 || stats.Created != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(store.records) != 2 {
		t.Fatalf("records 100 and 102 must survive the failure of 101, got %v", store.order)
	}
}

func TestRunCycle_MissingProjectIDSkipsPayloadOnly(t *testing.T) {
	store := newFakeStore()
	fetcher := &fakeFetcher{pages: map[int][]models.Listing{
		17: {{Title: "no id"}, listing(100)},
	}}
	svc := New(store, fetcher, &fakeSettings{}, nil, nil)

	stats := svc.RunCycle(context.Background(), []int{17})

	if stats.Failed != 1 || len(store.records) != 1 {
		t.Fatalf("expected the bad payload skipped and 100 stored, got %+v order=%v", stats, store.order)
	}
}

func TestRunCycle_RepeatedCyclesUpdateNotDuplicate(t *testing.T) {
	store := newFakeStore()
	fetcher := &fakeFetcher{pages: map[int][]models.Listing{
		17: {listing(100)},
	}}
	svc := New(store, fetcher, &fakeSettings{}, nil, nil)

	first := svc.RunCycle(context.Background(), []int{17})
	fetcher.pages[17][0].Title = "renamed"
	second := svc.RunCycle(context.Background(), []int{17})

	if first.Created != 1 || second.Created != 0 || second.Updated != 1 {
		t.Fatalf("expected create then update, got %+v / %+v", first, second)
	}
	if len(store.records) != 1 || store.records[100].Title != "renamed" {
		t.Fatalf("expected one record with the latest fields, got %+v", store.records)
	}
}

func TestLoadSettings_FallbackOnError(t *testing.T) {
	settings := &fakeSettings{loadErr: errors.New("settings table gone"), universe: []int{5, 6}}
	svc := New(newFakeStore(), &fakeFetcher{}, settings, nil, nil)

	set := svc.loadSettings(context.Background())

	if set.IntervalMinutes != 10 {
		t.Fatalf("expected default interval 10, got %d", set.IntervalMinutes)
	}
	if len(set.SkillIDs) != 2 {
		t.Fatalf("expected the known universe as fallback, got %v", set.SkillIDs)
	}
}

func TestLoadSettings_UniverseFallbackWhenSelectionEmpty(t *testing.T) {
	settings := &fakeSettings{set: models.Settings{IntervalMinutes: 15}, universe: []int{7}}
	svc := New(newFakeStore(), &fakeFetcher{}, settings, nil, nil)

	set := svc.loadSettings(context.Background())
	if set.IntervalMinutes != 15 || len(set.SkillIDs) != 1 || set.SkillIDs[0] != 7 {
		t.Fatalf("unexpected settings: %+v", set)
	}
}

func TestLoadSettings_OverrideWins(t *testing.T) {
	settings := &fakeSettings{set: models.Settings{IntervalMinutes: 20, SkillIDs: []int{1, 2}}}
	svc := New(newFakeStore(), &fakeFetcher{}, settings, []int{99}, nil)

	set := svc.loadSettings(context.Background())
	if len(set.SkillIDs) != 1 || set.SkillIDs[0] != 99 {
		t.Fatalf("override must replace the settings selection, got %v", set.SkillIDs)
	}
	if set.IntervalMinutes != 20 {
		t.Fatalf("override must not touch the interval, got %d", set.IntervalMinutes)
	}
}

func TestLoadSettings_IntervalClamped(t *testing.T) {
	settings := &fakeSettings{set: models.Settings{IntervalMinutes: 3, SkillIDs: []int{1}}}
	svc := New(newFakeStore(), &fakeFetcher{}, settings, nil, nil)

	if set := svc.loadSettings(context.Background()); set.IntervalMinutes != 10 {
		t.Fatalf("interval below the floor must be clamped, got %d", set.IntervalMinutes)
	}
}

func TestEffectiveSleep_Floor(t *testing.T) {
	if d := effectiveSleep(3); d != 600*time.Second {
		t.Fatalf("interval 3 must sleep exactly 600s, got %s", d)
	}
	if d := effectiveSleep(30); d != 30*time.Minute {
		t.Fatalf("interval 30 must be honored, got %s", d)
	}
}

func TestIngestOnce_ReportsProcessed(t *testing.T) {
	store := newFakeStore()
	fetcher := &fakeFetcher{pages: map[int][]models.Listing{
		17: {listing(100), listing(101)},
	}}
	settings := &fakeSettings{set: models.Settings{IntervalMinutes: 10, SkillIDs: []int{17}}}
	svc := New(store, fetcher, settings, nil, nil)

	n, err := svc.IngestOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 processed, got %d", n)
	}
}

func TestRun_ExitsOnCancel(t *testing.T) {
	settings := &fakeSettings{set: models.Settings{IntervalMinutes: 10, SkillIDs: []int{17}}}
	fetcher := &fakeFetcher{pages: map[int][]models.Listing{17: {listing(1)}}}
	svc := New(newFakeStore(), fetcher, settings, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	// let the first cycle finish and the loop park in its sleep
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancellation")
	}

	if len(settings.runs) != 1 {
		t.Fatalf("expected one recorded cycle run, got %d", len(settings.runs))
	}
}
