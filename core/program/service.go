package program

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core"
)

const calendarCacheTTL = 5 * time.Minute

type (
	Repository interface {
		QueryModules(ctx context.Context, levelSubjectID uuid.UUID) ([]Module, error)
		GetModule(ctx context.Context, levelSubjectID uuid.UUID, number int) (Module, error)
	}

	// CompletionSource reports which modules of a track a student has fully
	// completed (both evaluation slots). Implemented by the evaluation domain.
	CompletionSource interface {
		CompletedModules(ctx context.Context, userID, levelSubjectID uuid.UUID) (map[int]bool, error)
	}

	ServiceInterface interface {
		Calendar(ctx context.Context, userID, levelSubjectID uuid.UUID) (Calendar, error)
	}

	service struct {
		repo        Repository
		completions CompletionSource
		cache       core.Cache
		logger      core.Logger
		now         func() time.Time
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, completions CompletionSource, cache core.Cache, logger core.Logger) ServiceInterface {
	return &service{
		repo:        repo,
		completions: completions,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
	}
}

// NewServiceAt is NewService with an injectable clock.
func NewServiceAt(repo Repository, completions CompletionSource, cache core.Cache, logger core.Logger, now func() time.Time) ServiceInterface {
	return &service{repo: repo, completions: completions, cache: cache, logger: logger, now: now}
}

// Calendar returns the student's module schedule for a level-subject track,
// with per-module derived status and summary counts. The result is cached
// per user; completion mutations invalidate the whole track prefix.
func (svc *service) Calendar(ctx context.Context, userID, levelSubjectID uuid.UUID) (Calendar, error) {
	key := core.CalendarCacheKey(levelSubjectID.String()) + ":" + userID.String()
	if data, err := svc.cache.Get(ctx, key); err == nil {
		var cal Calendar
		if err = json.Unmarshal(data, &cal); err == nil {
			return cal, nil
		}
		// a corrupt entry is dropped, not served
		_ = svc.cache.Delete(ctx, key)
	}

	modules, err := svc.repo.QueryModules(ctx, levelSubjectID)
	if err != nil {
		return Calendar{}, errors.Wrap(err, "querying modules")
	}
	completed, err := svc.completions.CompletedModules(ctx, userID, levelSubjectID)
	if err != nil {
		return Calendar{}, errors.Wrap(err, "querying module completions")
	}

	cal := BuildCalendar(levelSubjectID, modules, completed, svc.now())

	if data, err := json.Marshal(cal); err == nil {
		if err = svc.cache.Set(ctx, key, data, calendarCacheTTL); err != nil {
			svc.logger.Warn("caching calendar: " + err.Error())
		}
	}
	return cal, nil
}

// BuildCalendar derives the full calendar from raw facts. Pure; exported for
// reuse by tests and offline tooling.
func BuildCalendar(levelSubjectID uuid.UUID, modules []Module, completed map[int]bool, today time.Time) Calendar {
	sort.Slice(modules, func(i, j int) bool { return modules[i].Number < modules[j].Number })

	cal := Calendar{
		LevelSubjectID: levelSubjectID,
		Modules:        make([]ModuleSchedule, 0, len(modules)),
		Summary:        CalendarSummary{TotalModules: len(modules)},
	}

	// the first module has no predecessor to gate on
	previousCompleted := true
	for _, m := range modules {
		sched := Schedule(m, today, completed[m.Number], previousCompleted)
		cal.Modules = append(cal.Modules, sched)

		switch sched.Status {
		case StatusCompleted:
			cal.Summary.Completed++
		case StatusAvailable, StatusInProgress:
			cal.Summary.Available++
		case StatusLocked:
			cal.Summary.Locked++
		}
		previousCompleted = completed[m.Number]
	}
	return cal
}
