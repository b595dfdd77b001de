package evaluation

import (
	"time"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/program"
)

// View derives a slot's date-gate state. Release and completion are
// independent axes: slot 2 releasing says nothing about slot 1's completion.
func View(s Slot, today time.Time) SlotView {
	return SlotView{
		Slot:                 s,
		IsReleased:           !today.Before(s.ReleaseDate),
		ReleaseDateFormatted: program.FormatDateLong(s.ReleaseDate),
	}
}

// CanAdvance reports whether a module's pair of slots permits advancement:
// true iff both slots are completed. There is no partial credit and no score
// threshold at this layer; scoring already happened when each slot was marked.
func CanAdvance(slots []Slot) bool {
	if len(slots) < 2 {
		return false
	}
	for _, s := range slots {
		if !s.Completed {
			return false
		}
	}
	return true
}
