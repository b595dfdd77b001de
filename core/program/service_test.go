package program_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/program"
	cachesvc "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/services/cache"
)

type testLogger struct{}

func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type stubRepo struct {
	modules []program.Module
	queries int
}

func (r *stubRepo) QueryModules(_ context.Context, _ uuid.UUID) ([]program.Module, error) {
	r.queries++
	mods := make([]program.Module, len(r.modules))
	copy(mods, r.modules)
	return mods, nil
}

func (r *stubRepo) GetModule(_ context.Context, _ uuid.UUID, number int) (program.Module, error) {
	for _, m := range r.modules {
		if m.Number == number {
			return m, nil
		}
	}
	return program.Module{}, program.ErrNotFound
}

type stubCompletions struct {
	completed map[int]bool
}

func (s *stubCompletions) CompletedModules(context.Context, uuid.UUID, uuid.UUID) (map[int]bool, error) {
	return s.completed, nil
}

func Test_service_Calendar(t *testing.T) {
	lsID := uuid.New()
	userID := uuid.New()
	today := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	repo := &stubRepo{modules: []program.Module{
		{Number: 1, LevelSubjectID: lsID, StartDate: today.AddDate(0, 0, -20), EndDate: today.AddDate(0, 0, -2)},
		{Number: 2, LevelSubjectID: lsID, StartDate: today.AddDate(0, 0, -1), EndDate: today.AddDate(0, 0, 27)},
	}}
	completions := &stubCompletions{completed: map[int]bool{1: true}}
	cache := cachesvc.NewMemoryCache()

	svc := program.NewServiceAt(repo, completions, cache, testLogger{}, func() time.Time { return today })

	cal, err := svc.Calendar(context.Background(), userID, lsID)
	if err != nil {
		t.Fatalf("Calendar() failed: %v", err)
	}
	if cal.Summary.Completed != 1 || cal.Summary.Available != 1 {
		t.Errorf("unexpected summary: %+v", cal.Summary)
	}

	// second read is served from cache
	cal2, err := svc.Calendar(context.Background(), userID, lsID)
	if err != nil {
		t.Fatalf("Calendar() failed on cached read: %v", err)
	}
	if repo.queries != 1 {
		t.Errorf("repo queried %d times, want 1", repo.queries)
	}
	if len(cal2.Modules) != len(cal.Modules) {
		t.Errorf("cached calendar has %d modules, want %d", len(cal2.Modules), len(cal.Modules))
	}

	// invalidating the track prefix forces a rebuild
	if err := cache.DeletePrefix(context.Background(), core.CalendarCacheKey(lsID.String())); err != nil {
		t.Fatalf("DeletePrefix() failed: %v", err)
	}
	if _, err := svc.Calendar(context.Background(), userID, lsID); err != nil {
		t.Fatalf("Calendar() failed after invalidation: %v", err)
	}
	if repo.queries != 2 {
		t.Errorf("repo queried %d times after invalidation, want 2", repo.queries)
	}
}
