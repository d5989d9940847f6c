package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/cal2prompt/internal/logging"
)

// ErrNoCalendarID reports that an account has no calendar ID configured
// to insert events into.
var ErrNoCalendarID = errors.New("no calendar ID configured for account")

// ErrInvalidTime reports a date or time argument that does not match the
// expected layout. Callers use it to distinguish caller mistakes from
// backend failures.
var ErrInvalidTime = errors.New("invalid time value")

// API is the Calendar client surface the Aggregator consumes.
type API interface {
	Account() string
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error)
	InsertEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error)
}

// Source pairs an authenticated client with the calendar IDs to query,
// in configured order.
type Source struct {
	Client      API
	CalendarIDs []string
}

// CreateEventInput carries the fields of a new timed event. Start and End
// are naive local date-times in the aggregator's zone, formatted as
// "2006-01-02 15:04".
type CreateEventInput struct {
	Summary     string
	Description string
	Start       string
	End         string
}

// Aggregator fetches events across accounts and calendars and buckets
// them into day-keyed timelines in a single display time zone.
type Aggregator struct {
	loc    *time.Location
	logger *slog.Logger
}

// NewAggregator creates an Aggregator rendering into the given zone.
func NewAggregator(loc *time.Location, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{loc: loc, logger: logger}
}

// FetchDays fetches every (account, calendar) pair of the sources
// concurrently, merges the results, and buckets them into days. since and
// until are inclusive YYYY-MM-DD dates in the display zone. A failing
// calendar is logged and excluded from the merge; it does not fail the
// aggregation.
func (a *Aggregator) FetchDays(ctx context.Context, sources []Source, since, until string) ([]Day, error) {
	start, end, err := a.parseRange(since, until)
	if err != nil {
		return nil, err
	}

	// The API wants a half-open UTC window covering local midnight of
	// since up to local midnight of the day after until.
	timeMin := start.UTC()
	timeMax := end.AddDate(0, 0, 1).UTC()

	type target struct {
		client     API
		calendarID string
	}
	var targets []target
	for _, src := range sources {
		for _, id := range src.CalendarIDs {
			targets = append(targets, target{client: src.Client, calendarID: id})
		}
	}

	fetched := make([][]*calendar.Event, len(targets))
	errs := make([]error, len(targets))

	var wg sync.WaitGroup
	for i, tg := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fetched[i], errs[i] = tg.client.ListEvents(ctx, tg.calendarID, timeMin, timeMax)
		}()
	}
	wg.Wait()

	var all []*calendar.Event
	for i, tg := range targets {
		if errs[i] != nil {
			a.logger.Error("failed to fetch calendar events",
				logging.Account(tg.client.Account()),
				logging.Calendar(tg.calendarID),
				logging.Err(errs[i]))
			continue
		}
		all = append(all, fetched[i]...)
	}

	return a.bucket(all, start, end), nil
}

// CreateEvent inserts a timed event into the source's first configured
// calendar. Start and End are interpreted in the aggregator's zone.
func (a *Aggregator) CreateEvent(ctx context.Context, src Source, input CreateEventInput) (*calendar.Event, error) {
	if len(src.CalendarIDs) == 0 {
		return nil, fmt.Errorf("%w %q", ErrNoCalendarID, src.Client.Account())
	}

	start, err := time.ParseInLocation(dateTimeLayout, input.Start, a.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: start must be YYYY-MM-DD HH:MM, got %q", ErrInvalidTime, input.Start)
	}
	end, err := time.ParseInLocation(dateTimeLayout, input.End, a.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: end must be YYYY-MM-DD HH:MM, got %q", ErrInvalidTime, input.End)
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: a.loc.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: a.loc.String(),
		},
	}

	created, err := src.Client.InsertEvent(ctx, src.CalendarIDs[0], event)
	if err != nil {
		return nil, err
	}
	a.logger.Info("event created",
		logging.Account(src.Client.Account()),
		logging.Calendar(src.CalendarIDs[0]))
	return created, nil
}

func (a *Aggregator) parseRange(since, until string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dateLayout, since, a.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: since must be YYYY-MM-DD, got %q", ErrInvalidTime, since)
	}
	end, err := time.ParseInLocation(dateLayout, until, a.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: until must be YYYY-MM-DD, got %q", ErrInvalidTime, until)
	}
	return start, end, nil
}

type dayGroup struct {
	allDay []Event
	timed  []Event
}

// bucket sorts events by UTC start instant and groups them under the
// local calendar date they belong to. since and until are local midnights
// bounding the inclusive window.
func (a *Aggregator) bucket(events []*calendar.Event, since, until time.Time) []Day {
	// Date-only events order at UTC midnight of their start date; the
	// stable sort keeps the fetch order for ties.
	sort.SliceStable(events, func(i, j int) bool {
		return sortInstant(events[i]).Before(sortInstant(events[j]))
	})

	groups := make(map[string]*dayGroup)
	for _, ev := range events {
		if isAllDay(ev) {
			a.bucketAllDay(groups, ev, since, until)
		} else {
			a.bucketTimed(groups, ev)
		}
	}

	dates := make([]string, 0, len(groups))
	for date := range groups {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	days := make([]Day, 0, len(dates))
	for _, date := range dates {
		g := groups[date]
		days = append(days, Day{
			Date:         date,
			AllDayEvents: g.allDay,
			TimedEvents:  g.timed,
		})
	}
	return days
}

// bucketAllDay expands a date-only event over every window day it covers.
// The provider's end date is exclusive but is intersected as-is, and each
// emitted entry displays the original un-clipped dates.
func (a *Aggregator) bucketAllDay(groups map[string]*dayGroup, ev *calendar.Event, since, until time.Time) {
	if ev.End == nil || ev.End.Date == "" {
		return
	}
	evStart, err := time.ParseInLocation(dateLayout, ev.Start.Date, a.loc)
	if err != nil {
		return
	}
	evEnd, err := time.ParseInLocation(dateLayout, ev.End.Date, a.loc)
	if err != nil {
		return
	}

	first := evStart
	if since.After(first) {
		first = since
	}
	last := evEnd
	if until.Before(last) {
		last = until
	}

	// Empty intersection: the event contributes no days.
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		g := ensureGroup(groups, d.Format(dateLayout))
		g.allDay = append(g.allDay, Event{
			Summary:     summaryOf(ev),
			Start:       ev.Start.Date,
			End:         ev.End.Date,
			Location:    ev.Location,
			Description: ev.Description,
			Attendees:   attendeeEmails(ev),
			HTMLLink:    ev.HtmlLink,
			AllDay:      true,
		})
	}
}

// bucketTimed places an event under the local date of its start instant.
// Events without a parsable start or end are dropped.
func (a *Aggregator) bucketTimed(groups map[string]*dayGroup, ev *calendar.Event) {
	startUTC, ok := startInstant(ev)
	if !ok {
		return
	}
	endUTC, ok := endInstant(ev)
	if !ok {
		return
	}

	local := startUTC.In(a.loc)
	g := ensureGroup(groups, local.Format(dateLayout))
	g.timed = append(g.timed, Event{
		Summary:     summaryOf(ev),
		Start:       local.Format(clockLayout),
		End:         endUTC.In(a.loc).Format(clockLayout),
		Location:    ev.Location,
		Description: ev.Description,
		Attendees:   attendeeEmails(ev),
		HTMLLink:    ev.HtmlLink,
		AllDay:      false,
	})
}

func ensureGroup(groups map[string]*dayGroup, date string) *dayGroup {
	g, ok := groups[date]
	if !ok {
		g = &dayGroup{allDay: []Event{}, timed: []Event{}}
		groups[date] = g
	}
	return g
}
