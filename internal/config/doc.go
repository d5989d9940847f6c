// Package config loads and validates the cal2prompt configuration file.
//
// The configuration is a YAML document, by default at
// ~/.config/cal2prompt/config.yaml (overridable via the CAL2PROMPT_CONFIG
// environment variable or the --config flag). It declares the Google OAuth2
// client, the set of named accounts with their calendar IDs and credential
// file paths, the display time zone, and an optional prompt template.
//
// Secret-bearing fields (client_id, client_secret) support ${VAR} expansion
// so credentials can live in the environment or a .env file instead of the
// config file itself.
//
// Validation failures are fatal at startup: the caller prints the error and
// exits non-zero.
package config
