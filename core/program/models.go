package program

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("module not found")

// ModuleStatus is derived, never stored.
type ModuleStatus string

const (
	StatusLocked     ModuleStatus = "locked"
	StatusAvailable  ModuleStatus = "available"
	StatusInProgress ModuleStatus = "in_progress"
	StatusCompleted  ModuleStatus = "completed"
)

type (
	// Objective is the learning objective attached to a module.
	Objective struct {
		ID          uuid.UUID `json:"id"`
		Code        string    `json:"code"`
		Title       string    `json:"title"`
		Description string    `json:"description,omitempty"`
	}

	// Module is a fixed-duration curricular unit. Immutable once scheduled;
	// belongs to one level-subject track.
	Module struct {
		Number         int        `json:"moduleNumber"`
		LevelSubjectID uuid.UUID  `json:"levelSubjectId"`
		StartDate      time.Time  `json:"startDate"`
		EndDate        time.Time  `json:"endDate"`
		Objective      *Objective `json:"objective,omitempty"`
	}

	// ModuleSchedule is the presentation-ready shape of a Module: the raw
	// facts plus everything the calendar view derives from them.
	ModuleSchedule struct {
		Module
		Status           ModuleStatus `json:"status"`
		Completed        bool         `json:"completed"`
		DaysUntilStart   int          `json:"daysUntilStart"`
		StartDateDisplay string       `json:"startDateDisplay"`
		EndDateDisplay   string       `json:"endDateDisplay"`
	}

	CalendarSummary struct {
		TotalModules int `json:"totalModules"`
		Completed    int `json:"completed"`
		Available    int `json:"available"`
		Locked       int `json:"locked"`
	}

	Calendar struct {
		LevelSubjectID uuid.UUID        `json:"levelSubjectId"`
		Modules        []ModuleSchedule `json:"modules"`
		Summary        CalendarSummary  `json:"summary"`
	}
)
