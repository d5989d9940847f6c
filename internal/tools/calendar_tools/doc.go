// Package calendar_tools provides MCP (Model Context Protocol) tools for
// Google Calendar operations.
//
// Two tools are exposed: list_calendar_events returns a day-bucketed
// JSON timeline for a date range, and insert_calendar_event creates an
// event in the target account's first configured calendar. Both resolve
// their account from the request arguments and acquire credentials
// lazily on first use.
package calendar_tools
