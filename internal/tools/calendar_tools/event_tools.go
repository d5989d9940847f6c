package calendar_tools

import (
	"context"
	"encoding/json"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/cal2prompt/internal/calendar"
	"github.com/teemow/cal2prompt/internal/mcp"
	"github.com/teemow/cal2prompt/internal/tools/common"
)

// RegisterEventTools registers event-related tools with the MCP server
func RegisterEventTools(s *mcp.Server, backend Backend) error {
	s.AddTool(listEventsTool(), func(ctx context.Context, request mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		return handleListEvents(ctx, request, backend)
	})

	s.AddTool(insertEventTool(), func(ctx context.Context, request mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		return handleInsertEvent(ctx, request, backend)
	})

	return nil
}

func listEventsTool() mcpgo.Tool {
	return mcpgo.NewTool("list_calendar_events",
		mcpgo.WithDescription("List Google Calendar events within a date range, grouped by day"),
		mcpgo.WithString("since",
			mcpgo.Required(),
			mcpgo.Description("Start date of the range (YYYY-MM-DD format, e.g., '2025-01-06')"),
		),
		mcpgo.WithString("until",
			mcpgo.Required(),
			mcpgo.Description("End date of the range, inclusive (YYYY-MM-DD format, e.g., '2025-01-07')"),
		),
		mcpgo.WithString("account",
			mcpgo.Description("Account name (default: the configured default account). Used to manage multiple Google accounts."),
		),
	)
}

func insertEventTool() mcpgo.Tool {
	return mcpgo.NewTool("insert_calendar_event",
		mcpgo.WithDescription("Insert a new event into Google Calendar"),
		mcpgo.WithString("summary",
			mcpgo.Required(),
			mcpgo.Description("Event title/summary"),
		),
		mcpgo.WithString("description",
			mcpgo.Description("Event description"),
		),
		mcpgo.WithString("start",
			mcpgo.Required(),
			mcpgo.Description("Start time (YYYY-MM-DD HH:MM format in the configured time zone, e.g., '2025-01-15 14:00')"),
		),
		mcpgo.WithString("end",
			mcpgo.Required(),
			mcpgo.Description("End time (YYYY-MM-DD HH:MM format in the configured time zone, e.g., '2025-01-15 15:00')"),
		),
		mcpgo.WithString("account",
			mcpgo.Description("Account name (default: the configured default account). Used to manage multiple Google accounts."),
		),
	)
}

type listEventsResult struct {
	Days []calendar.Day `json:"days"`
}

func handleListEvents(ctx context.Context, request mcpgo.CallToolRequest, backend Backend) (*mcpgo.CallToolResult, error) {
	args := request.GetArguments()

	since, ok := args["since"].(string)
	if !ok || since == "" {
		return nil, mcp.Errorf(mcp.CodeInvalidParams, "since is required")
	}

	until, ok := args["until"].(string)
	if !ok || until == "" {
		return nil, mcp.Errorf(mcp.CodeInvalidParams, "until is required")
	}

	acc, err := common.ResolveAccount(backend.Config(), args)
	if err != nil {
		return nil, err
	}

	src, err := backend.SourceForAccount(ctx, acc)
	if err != nil {
		return nil, err
	}

	days, err := backend.Aggregator().FetchDays(ctx, []calendar.Source{src}, since, until)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(listEventsResult{Days: days})
	if err != nil {
		return nil, fmt.Errorf("failed to encode events: %w", err)
	}

	return mcpgo.NewToolResultText(string(payload)), nil
}

func handleInsertEvent(ctx context.Context, request mcpgo.CallToolRequest, backend Backend) (*mcpgo.CallToolResult, error) {
	args := request.GetArguments()

	summary, ok := args["summary"].(string)
	if !ok || summary == "" {
		return nil, mcp.Errorf(mcp.CodeInvalidParams, "summary is required")
	}

	start, ok := args["start"].(string)
	if !ok || start == "" {
		return nil, mcp.Errorf(mcp.CodeInvalidParams, "start is required")
	}

	end, ok := args["end"].(string)
	if !ok || end == "" {
		return nil, mcp.Errorf(mcp.CodeInvalidParams, "end is required")
	}

	description, _ := args["description"].(string)

	acc, err := common.ResolveAccount(backend.Config(), args)
	if err != nil {
		return nil, err
	}

	src, err := backend.SourceForAccount(ctx, acc)
	if err != nil {
		return nil, err
	}

	created, err := backend.Aggregator().CreateEvent(ctx, src, calendar.CreateEventInput{
		Summary:     summary,
		Description: description,
		Start:       start,
		End:         end,
	})
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(created)
	if err != nil {
		return nil, fmt.Errorf("failed to encode created event: %w", err)
	}

	return mcpgo.NewToolResultText(string(payload)), nil
}
