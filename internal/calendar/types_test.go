package calendar

import (
	"reflect"
	"testing"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

func TestSummaryOf(t *testing.T) {
	if got := summaryOf(&calendar.Event{Summary: "Standup"}); got != "Standup" {
		t.Errorf("summaryOf() = %q", got)
	}
	if got := summaryOf(&calendar.Event{}); got != "(no summary)" {
		t.Errorf("summaryOf() = %q, want (no summary)", got)
	}
}

func TestIsAllDay(t *testing.T) {
	tests := []struct {
		name  string
		event *calendar.Event
		want  bool
	}{
		{"date only", allDay("Trip", "2025-01-04", "2025-01-07"), true},
		{"date time", timed("Standup", "", "", "2025-01-10T09:00:00Z", "2025-01-10T09:15:00Z"), false},
		{"no start", &calendar.Event{Summary: "Broken"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAllDay(tt.event); got != tt.want {
				t.Errorf("isAllDay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStartInstant(t *testing.T) {
	ev := timed("Standup", "", "", "2025-01-10T09:00:00+09:00", "2025-01-10T09:15:00+09:00")
	got, ok := startInstant(ev)
	if !ok {
		t.Fatal("startInstant() not ok for a timed event")
	}
	if want := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("startInstant() = %v, want %v", got, want)
	}

	for _, ev := range []*calendar.Event{
		{Summary: "No start"},
		allDay("Trip", "2025-01-04", "2025-01-07"),
		{Start: &calendar.EventDateTime{DateTime: "not a timestamp"}},
	} {
		if _, ok := startInstant(ev); ok {
			t.Errorf("startInstant(%+v) should not be ok", ev)
		}
	}
}

func TestSortInstant(t *testing.T) {
	tests := []struct {
		name  string
		event *calendar.Event
		want  time.Time
	}{
		{
			name:  "timed",
			event: timed("Standup", "", "", "2025-01-10T09:00:00+09:00", "2025-01-10T09:15:00+09:00"),
			want:  time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "all day",
			event: allDay("Trip", "2025-01-04", "2025-01-07"),
			want:  time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "no start",
			event: &calendar.Event{Summary: "Broken"},
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sortInstant(tt.event); !got.Equal(tt.want) {
				t.Errorf("sortInstant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAttendeeEmails(t *testing.T) {
	ev := &calendar.Event{
		Attendees: []*calendar.EventAttendee{
			{Email: "alice@example.com", ResponseStatus: "accepted"},
			nil,
			{DisplayName: "Room"},
			{Email: "bob@example.com"},
		},
	}
	if got, want := attendeeEmails(ev), []string{"alice@example.com", "bob@example.com"}; !reflect.DeepEqual(got, want) {
		t.Errorf("attendeeEmails() = %v, want %v", got, want)
	}

	got := attendeeEmails(&calendar.Event{})
	if got == nil || len(got) != 0 {
		t.Errorf("attendeeEmails() = %#v, want an empty non-nil slice", got)
	}
}
