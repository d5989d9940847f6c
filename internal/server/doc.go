// Package server provides the shared context for the cal2prompt MCP server
// and CLI.
//
// ServerContext manages per-account Calendar clients with lazy initialization
// and caching. Credentials are kept valid by the google.Manager, so a tool
// call against an account that was never authorized triggers the browser
// OAuth flow on demand, and a client built before a token refresh is rebuilt
// with the fresh token on next use.
package server
