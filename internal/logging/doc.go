// Package logging provides structured logging utilities for the cal2prompt application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// All output goes to stderr: in MCP mode stdout carries the JSON-RPC wire, and
// in CLI mode stdout carries the rendered prompt.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithAccount(slog.Default(), account)
//	logger.Info("fetched events",
//	    logging.Calendar(calendarID))
//
// Sanitize sensitive data before logging:
//
//	logger.Debug("token loaded",
//	    slog.String("token", logging.SanitizeToken(tok.AccessToken)))
package logging
