package calendar_tools

import (
	"context"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/cal2prompt/internal/calendar"
	"github.com/teemow/cal2prompt/internal/config"
	"github.com/teemow/cal2prompt/internal/mcp"
)

// Backend is the slice of the server runtime the calendar tools use:
// the configuration, the event aggregator, and an authorized source per
// account. *server.ServerContext satisfies it; tests substitute fakes.
type Backend interface {
	Config() *config.Config
	Aggregator() *calendar.Aggregator
	SourceForAccount(ctx context.Context, acc *config.Account) (calendar.Source, error)
}

// RegisterCalendarTools registers all Calendar-related tools with the MCP server
func RegisterCalendarTools(s *mcp.Server, backend Backend) error {
	if err := RegisterEventTools(s, backend); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}
	return nil
}

// Tools returns the tool definitions in catalog order without a server,
// for documentation generation.
func Tools() []mcpgo.Tool {
	return []mcpgo.Tool{listEventsTool(), insertEventTool()}
}
