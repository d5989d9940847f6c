package calendar

import "time"

// Clock supplies the current instant so window math stays testable.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Shortcut names the relative date ranges the CLI offers.
type Shortcut int

const (
	Today Shortcut = iota
	ThisWeek
	ThisMonth
	NextWeek
)

// Window is an inclusive since/until date range, formatted YYYY-MM-DD in
// the display zone.
type Window struct {
	Since string
	Until string
}

// WindowCalculator resolves shortcuts against a clock and display zone.
// Weeks run Monday through Sunday.
type WindowCalculator struct {
	clock Clock
	loc   *time.Location
}

// NewWindowCalculator creates a calculator; a nil clock means the system
// clock.
func NewWindowCalculator(clock Clock, loc *time.Location) *WindowCalculator {
	if clock == nil {
		clock = RealClock{}
	}
	return &WindowCalculator{clock: clock, loc: loc}
}

// Resolve returns the date window the shortcut names, relative to today
// in the display zone.
func (c *WindowCalculator) Resolve(s Shortcut) Window {
	now := c.clock.Now().In(c.loc)
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, c.loc)

	switch s {
	case ThisWeek:
		monday := day.AddDate(0, 0, -daysFromMonday(day))
		return newWindow(monday, monday.AddDate(0, 0, 6))
	case ThisMonth:
		first := time.Date(y, m, 1, 0, 0, 0, 0, c.loc)
		last := first.AddDate(0, 1, 0).AddDate(0, 0, -1)
		return newWindow(first, last)
	case NextWeek:
		monday := day.AddDate(0, 0, 7-daysFromMonday(day))
		return newWindow(monday, monday.AddDate(0, 0, 6))
	}
	return newWindow(day, day)
}

// daysFromMonday counts days since the most recent Monday; time.Weekday
// puts Sunday at 0.
func daysFromMonday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func newWindow(since, until time.Time) Window {
	return Window{
		Since: since.Format(dateLayout),
		Until: until.Format(dateLayout),
	}
}
