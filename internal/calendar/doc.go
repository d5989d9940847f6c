// Package calendar fetches Google Calendar events and buckets them into
// day-keyed timelines.
//
// The Client wraps the Calendar API for one account. The Aggregator fans
// out over every configured (account, calendar) pair concurrently, merges
// the results, and groups them into Days in a single display time zone:
// timed events land under the local date of their start instant, while
// date-only events are expanded over every window day they cover. The
// WindowCalculator resolves relative ranges such as "this week" into
// since/until dates.
package calendar
