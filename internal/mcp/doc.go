// Package mcp implements the Model Context Protocol server side over
// newline-delimited JSON-RPC 2.0 on stdio.
//
// The server handles initialize, tools/list and tools/call. Every other
// request gets a method-not-found error, and any request before
// initialize is rejected. Notifications and stray response messages are
// logged and dropped, as are lines that do not parse; a bad message
// never terminates the session.
package mcp
