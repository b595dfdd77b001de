package program

import (
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/es_CL"
)

// clDates renders long-form dates for the es-CL audience. Formatting is
// display-only and plays no part in the gating decision.
var clDates locales.Translator = es_CL.New()

// ComputeStatus derives a module's status from today's date, the module's own
// completion and the preceding module's completion:
//   - completed if both of the module's evaluation slots are completed,
//     regardless of date;
//   - locked before the start date, or once started while the preceding
//     module is still incomplete (advancement requires the previous module's
//     pass, not just the date);
//   - available otherwise, including past the end date without completion:
//     late access stays open, there is no hard deadline lockout.
//
// No explicit start event is persisted, so in_progress is never derived here;
// it is kept in the status set for hosts that do track one.
func ComputeStatus(m Module, today time.Time, completed, previousCompleted bool) ModuleStatus {
	if completed {
		return StatusCompleted
	}
	if today.Before(startOfDay(m.StartDate)) {
		return StatusLocked
	}
	if !previousCompleted {
		return StatusLocked
	}
	return StatusAvailable
}

// DaysUntilStart reports whole days from today until the module opens;
// 0 once the start date is reached.
func DaysUntilStart(m Module, today time.Time) int {
	start := startOfDay(m.StartDate)
	day := startOfDay(today)
	if !day.Before(start) {
		return 0
	}
	return int(start.Sub(day).Hours() / 24)
}

// FormatDateLong renders t as a long-form es-CL date string,
// e.g. "2 de marzo de 2026".
func FormatDateLong(t time.Time) string {
	return clDates.FmtDateLong(t)
}

// Schedule assembles the presentation-ready view of a module.
func Schedule(m Module, today time.Time, completed, previousCompleted bool) ModuleSchedule {
	return ModuleSchedule{
		Module:           m,
		Status:           ComputeStatus(m, today, completed, previousCompleted),
		Completed:        completed,
		DaysUntilStart:   DaysUntilStart(m, today),
		StartDateDisplay: FormatDateLong(m.StartDate),
		EndDateDisplay:   FormatDateLong(m.EndDate),
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
