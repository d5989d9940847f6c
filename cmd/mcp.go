package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/cal2prompt/internal/mcp"
	"github.com/teemow/cal2prompt/internal/server"
	"github.com/teemow/cal2prompt/internal/tools/calendar_tools"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Launch cal2prompt as an MCP server (experimental)",
		Long: `Launch cal2prompt as a Model Context Protocol (MCP) server speaking
JSON-RPC 2.0 over stdio.

The server exposes Google Calendar tools for AI assistants. Credentials
are not acquired at startup: the OAuth flow runs lazily when a tool call
first needs an account, so a fresh install can be wired into an MCP
client before any browser round-trip.`,
		RunE: runMCP,
	}

	return cmd
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc := server.NewServerContext(ctx, cfg, logger)
	defer func() {
		_ = sc.Shutdown()
	}()

	srv := mcp.NewServer("cal2prompt", version, cfg, logger)
	if err := calendar_tools.RegisterCalendarTools(srv, sc); err != nil {
		return fmt.Errorf("failed to register Calendar tools: %w", err)
	}

	logger.Info("starting MCP server on stdio")

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := srv.Serve(ctx); err != nil {
			serverDone <- err
		}
	}()

	if err := <-serverDone; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
