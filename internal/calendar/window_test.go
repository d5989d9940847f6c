package calendar

import (
	"testing"
	"time"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func TestWindowCalculatorResolve(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)

	// 2025-01-26T15:00Z is already Monday 2025-01-27 in JST.
	mondayMidnight := time.Date(2025, 1, 26, 15, 0, 0, 0, time.UTC)
	// 2025-01-27T15:00Z is Tuesday 2025-01-28 in JST.
	tuesday := time.Date(2025, 1, 27, 15, 0, 0, 0, time.UTC)
	// Sunday 2025-02-02 in JST.
	sunday := time.Date(2025, 2, 2, 9, 0, 0, 0, time.UTC)
	// Mid December, to cross the year boundary.
	december := time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		shortcut Shortcut
		want     Window
	}{
		{"today on a monday", mondayMidnight, Today, Window{"2025-01-27", "2025-01-27"}},
		{"today shifts with the zone", time.Date(2025, 1, 26, 14, 59, 0, 0, time.UTC), Today, Window{"2025-01-26", "2025-01-26"}},
		{"this week from monday", mondayMidnight, ThisWeek, Window{"2025-01-27", "2025-02-02"}},
		{"this week from tuesday", tuesday, ThisWeek, Window{"2025-01-27", "2025-02-02"}},
		{"this week from sunday", sunday, ThisWeek, Window{"2025-01-27", "2025-02-02"}},
		{"this month", mondayMidnight, ThisMonth, Window{"2025-01-01", "2025-01-31"}},
		{"this month in december", december, ThisMonth, Window{"2024-12-01", "2024-12-31"}},
		{"next week from monday", mondayMidnight, NextWeek, Window{"2025-02-03", "2025-02-09"}},
		{"next week from tuesday", tuesday, NextWeek, Window{"2025-02-03", "2025-02-09"}},
		{"next week from sunday", sunday, NextWeek, Window{"2025-02-03", "2025-02-09"}},
		{"next week across the year boundary", time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), NextWeek, Window{"2025-01-06", "2025-01-12"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewWindowCalculator(fixedClock{tt.now}, jst)
			if got := calc.Resolve(tt.shortcut); got != tt.want {
				t.Errorf("Resolve(%v) = %+v, want %+v", tt.shortcut, got, tt.want)
			}
		})
	}
}

func TestWindowCalculatorFebruary(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want Window
	}{
		{"non leap year", time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC), Window{"2025-02-01", "2025-02-28"}},
		{"leap year", time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC), Window{"2024-02-01", "2024-02-29"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewWindowCalculator(fixedClock{tt.now}, time.UTC)
			if got := calc.Resolve(ThisMonth); got != tt.want {
				t.Errorf("Resolve(ThisMonth) = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWindowCalculatorDefaultClock(t *testing.T) {
	calc := NewWindowCalculator(nil, time.UTC)
	w := calc.Resolve(Today)
	if w.Since == "" || w.Since != w.Until {
		t.Errorf("Resolve(Today) = %+v, want a single real day", w)
	}
}
