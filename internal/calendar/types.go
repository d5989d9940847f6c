package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

const (
	dateLayout     = "2006-01-02"
	clockLayout    = "15:04"
	dateTimeLayout = "2006-01-02 15:04"
)

// Event is one rendered calendar entry. For timed events Start and End
// hold zone-local HH:MM strings; for all-day events they hold the
// original, un-clipped YYYY-MM-DD dates, so a multi-day event shows its
// full span on every day it touches.
type Event struct {
	Summary     string   `json:"summary"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
	Attendees   []string `json:"attendees"`
	HTMLLink    string   `json:"html_link,omitempty"`
	AllDay      bool     `json:"all_day"`
}

// Day groups the events of one calendar date in the display zone.
// All-day entries always precede timed entries.
type Day struct {
	Date         string  `json:"date"`
	AllDayEvents []Event `json:"all_day_events"`
	TimedEvents  []Event `json:"timed_events"`
}

const noSummary = "(no summary)"

func summaryOf(ev *calendar.Event) string {
	if ev.Summary == "" {
		return noSummary
	}
	return ev.Summary
}

// attendeeEmails extracts attendee addresses best-effort; attendees
// without an email are skipped.
func attendeeEmails(ev *calendar.Event) []string {
	emails := []string{}
	for _, at := range ev.Attendees {
		if at != nil && at.Email != "" {
			emails = append(emails, at.Email)
		}
	}
	return emails
}

// isAllDay reports whether the event carries a date-only start.
func isAllDay(ev *calendar.Event) bool {
	return ev.Start != nil && ev.Start.Date != ""
}

// startInstant returns the UTC start of a timed event. All-day events and
// events without a parsable start have no instant.
func startInstant(ev *calendar.Event) (time.Time, bool) {
	if ev.Start == nil || ev.Start.DateTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, ev.Start.DateTime)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// sortInstant is the merge-ordering key: the start instant for timed
// events, UTC midnight of the start date for all-day events, and the
// zero time for anything unparsable.
func sortInstant(ev *calendar.Event) time.Time {
	if t, ok := startInstant(ev); ok {
		return t
	}
	if ev.Start != nil && ev.Start.Date != "" {
		if t, err := time.Parse(dateLayout, ev.Start.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

func endInstant(ev *calendar.Event) (time.Time, bool) {
	if ev.End == nil || ev.End.DateTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, ev.End.DateTime)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
