// Package cmd implements the command-line interface for cal2prompt.
//
// This package provides the following commands:
//   - (root): Fetch calendar events and print the rendered LLM prompt
//   - mcp: Start the MCP server on stdio to provide tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// Running without a subcommand is CLI mode; it fetches today's events
// unless a window flag says otherwise.
package cmd
