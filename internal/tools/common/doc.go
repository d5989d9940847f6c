// Package common provides shared helpers for MCP tool implementations,
// such as resolving which configured account a request targets.
package common
