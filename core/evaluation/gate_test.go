package evaluation

import (
	"testing"
	"time"
)

func Test_View(t *testing.T) {
	release := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	slot := Slot{Number: 1, Title: "Evaluación 1", ReleaseDate: release}

	tests := []struct {
		name         string
		today        time.Time
		wantReleased bool
	}{
		{name: "before release", today: release.AddDate(0, 0, -1), wantReleased: false},
		{name: "on release date", today: release, wantReleased: true},
		{name: "after release", today: release.AddDate(0, 0, 10), wantReleased: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := View(slot, tt.today)
			if view.IsReleased != tt.wantReleased {
				t.Errorf("IsReleased = %v, want %v", view.IsReleased, tt.wantReleased)
			}
		})
	}

	t.Run("release is independent of completion", func(t *testing.T) {
		incomplete := slot
		incomplete.Completed = false
		view := View(incomplete, release.AddDate(0, 0, 1))
		if !view.IsReleased {
			t.Error("an incomplete slot past its release date must still be released")
		}
	})

	t.Run("formatted release date", func(t *testing.T) {
		view := View(slot, release)
		if view.ReleaseDateFormatted != "16 de marzo de 2026" {
			t.Errorf("ReleaseDateFormatted = %q", view.ReleaseDateFormatted)
		}
	})
}

func Test_CanAdvance(t *testing.T) {
	tests := []struct {
		name  string
		slots []Slot
		want  bool
	}{
		{name: "no slots", slots: nil, want: false},
		{name: "single slot completed", slots: []Slot{{Completed: true}}, want: false},
		{name: "one of two completed", slots: []Slot{{Completed: true}, {Completed: false}}, want: false},
		{name: "both completed", slots: []Slot{{Completed: true}, {Completed: true}}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAdvance(tt.slots); got != tt.want {
				t.Errorf("CanAdvance() = %v, want %v", got, tt.want)
			}
		})
	}
}
