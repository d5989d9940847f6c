package google

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

// Token is the on-disk credential format, one JSON object per account file.
//
// ExpiresAt holds the expiry as Unix seconds. A zero value means the token
// never expires. RefreshToken is empty when Google did not issue one.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

// IsExpired reports whether the token is expired at the given instant.
// Tokens without an expiry never expire.
func (t *Token) IsExpired(now time.Time) bool {
	if t.ExpiresAt == 0 {
		return false
	}
	return t.ExpiresAt <= now.Unix()
}

func fromOAuth2Token(t *oauth2.Token) *Token {
	tok := &Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}
	if !t.Expiry.IsZero() {
		tok.ExpiresAt = t.Expiry.Unix()
	}
	return tok
}

// LoadToken reads a credential file written by SaveToken. A missing file
// is reported with an error satisfying os.IsNotExist.
func LoadToken(path string) (*Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse credential file %s: %w", path, err)
	}
	return &tok, nil
}

// SaveToken writes the token to path as indented JSON, creating parent
// directories on demand. The file is written with mode 0600.
func SaveToken(path string, tok *Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credential file %s: %w", path, err)
	}
	return nil
}
