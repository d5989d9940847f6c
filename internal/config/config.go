package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultRedirectURL is the loopback endpoint the OAuth2 authorization
	// flow listens on when the config does not override it.
	DefaultRedirectURL = "http://127.0.0.1:9004"

	// DefaultScope grants read/write access to calendar events.
	DefaultScope = "https://www.googleapis.com/auth/calendar.events"

	// DefaultTimeZone is used when the config does not set one.
	DefaultTimeZone = "UTC"

	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "CAL2PROMPT_CONFIG"
)

// ErrUnknownAccount is returned when an account name does not match any
// configured account.
var ErrUnknownAccount = errors.New("unknown account")

// Account is one named credential/calendar grouping. Accounts keep their
// configured order; the first account is the fallback default.
type Account struct {
	Name             string   `yaml:"name"`
	AuthorizeAccount string   `yaml:"authorize_account"`
	CalendarIDs      []string `yaml:"calendar_ids"`
	CredentialPath   string   `yaml:"credential_path"`
}

// OAuth holds the Google OAuth2 client settings shared by all accounts.
type OAuth struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

// Port returns the TCP port of the redirect URL, or 0 if it cannot be
// determined.
func (o OAuth) Port() int {
	u, err := url.Parse(o.RedirectURL)
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		return 0
	}
	return port
}

// Config is the validated application configuration.
type Config struct {
	TimeZone       string    `yaml:"time_zone"`
	DefaultAccount string    `yaml:"default_account"`
	OAuth          OAuth     `yaml:"oauth"`
	Accounts       []Account `yaml:"accounts"`
	Template       string    `yaml:"template"`

	// Location is TimeZone resolved at load time.
	Location *time.Location `yaml:"-"`
}

// DefaultPath returns the config file path: $CAL2PROMPT_CONFIG if set,
// otherwise $XDG_CONFIG_HOME/cal2prompt/config.yaml, otherwise
// ~/.config/cal2prompt/config.yaml.
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "cal2prompt", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "cal2prompt", "config.yaml")
	}
	return filepath.Join(home, ".config", "cal2prompt", "config.yaml")
}

// Load reads, expands, defaults and validates the config file at path.
func Load(path string) (*Config, error) {
	path = ExpandTilde(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", ContractTilde(path))
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", ContractTilde(path), err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", ContractTilde(path), err)
	}

	cfg.expand()
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time_zone %q: %w", cfg.TimeZone, err)
	}
	cfg.Location = loc

	return &cfg, nil
}

// expand resolves ${VAR} references in the secret-bearing fields.
func (c *Config) expand() {
	c.OAuth.ClientID = os.ExpandEnv(c.OAuth.ClientID)
	c.OAuth.ClientSecret = os.ExpandEnv(c.OAuth.ClientSecret)
}

func (c *Config) applyDefaults() error {
	if c.TimeZone == "" {
		c.TimeZone = DefaultTimeZone
	}
	if c.OAuth.RedirectURL == "" {
		c.OAuth.RedirectURL = DefaultRedirectURL
	}
	if len(c.OAuth.Scopes) == 0 {
		c.OAuth.Scopes = []string{DefaultScope}
	}
	if c.Template == "" {
		c.Template = StandardTemplate
	}

	for i := range c.Accounts {
		acc := &c.Accounts[i]
		if acc.CredentialPath == "" {
			dir, err := dataDir()
			if err != nil {
				return fmt.Errorf("cannot derive credential path for account %q: %w", acc.Name, err)
			}
			acc.CredentialPath = filepath.Join(dir, "cal2prompt", acc.Name+".json")
		} else {
			acc.CredentialPath = ExpandTilde(acc.CredentialPath)
		}
	}

	return nil
}

func (c *Config) validate(path string) error {
	contracted := ContractTilde(path)

	if c.OAuth.ClientID == "" {
		return fmt.Errorf("%s: required field %q is missing", contracted, "oauth.client_id")
	}
	if c.OAuth.ClientSecret == "" {
		return fmt.Errorf("%s: required field %q is missing", contracted, "oauth.client_secret")
	}
	if len(c.Accounts) == 0 {
		return fmt.Errorf("%s: at least one account must be configured", contracted)
	}

	seen := make(map[string]bool, len(c.Accounts))
	for i, acc := range c.Accounts {
		if acc.Name == "" {
			return fmt.Errorf("%s: required field %q is missing", contracted, fmt.Sprintf("accounts[%d].name", i))
		}
		if acc.AuthorizeAccount == "" {
			return fmt.Errorf("%s: required field %q is missing", contracted, fmt.Sprintf("accounts[%d].authorize_account", i))
		}
		if seen[acc.Name] {
			return fmt.Errorf("%s: duplicate account name %q", contracted, acc.Name)
		}
		seen[acc.Name] = true
	}

	if c.DefaultAccount != "" && !seen[c.DefaultAccount] {
		return fmt.Errorf("%s: default_account %q does not match any configured account", contracted, c.DefaultAccount)
	}

	// Catch a broken custom template at startup instead of on the first
	// render.
	if _, err := template.New("prompt").Parse(c.Template); err != nil {
		return fmt.Errorf("%s: invalid template: %w", contracted, err)
	}

	return nil
}

// Account returns the configured account with the given name.
func (c *Config) Account(name string) (*Account, error) {
	for i := range c.Accounts {
		if c.Accounts[i].Name == name {
			return &c.Accounts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAccount, name)
}

// DefaultAccountConfig returns the named default account, or the first
// configured account when no default is set.
func (c *Config) DefaultAccountConfig() *Account {
	if c.DefaultAccount != "" {
		if acc, err := c.Account(c.DefaultAccount); err == nil {
			return acc
		}
	}
	return &c.Accounts[0]
}

func dataDir() (string, error) {
	if base := os.Getenv("XDG_DATA_HOME"); base != "" {
		return base, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}
