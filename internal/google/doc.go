// Package google implements the OAuth2 authorization flow and credential
// storage for the Google Calendar API.
//
// Credentials are cached per account as JSON files on disk. The Manager
// keeps them valid: expired tokens are refreshed silently when a refresh
// token is available, otherwise the interactive browser flow runs again.
// Concurrent requests for the same account never start a second flow.
package google
