package common

import (
	"github.com/teemow/cal2prompt/internal/config"
	"github.com/teemow/cal2prompt/internal/mcp"
)

// ResolveAccount picks the account a tool call operates on.
//
// Priority order:
//  1. Explicit "account" argument in the request
//  2. The configured default_account
//  3. The first configured account
//
// An explicit name that matches no configured account is a caller
// mistake and is reported with the unknown-account error code.
func ResolveAccount(cfg *config.Config, args map[string]any) (*config.Account, error) {
	if name, ok := args["account"].(string); ok && name != "" {
		acc, err := cfg.Account(name)
		if err != nil {
			return nil, mcp.Errorf(mcp.CodeUnknownAccount, "Account '%s' not found", name)
		}
		return acc, nil
	}
	return cfg.DefaultAccountConfig(), nil
}
