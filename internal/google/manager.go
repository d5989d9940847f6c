package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/teemow/cal2prompt/internal/config"
	"github.com/teemow/cal2prompt/internal/logging"
)

// authorizer abstracts the interactive flow and refresh grant so tests can
// substitute a fake.
type authorizer interface {
	Authorize(ctx context.Context, loginHint string) (*Token, error)
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
}

// Manager is the credential store, keyed by account name.
//
// EnsureValid is serialized per account: when several callers need the
// same account at once, one runs the refresh or browser flow and the rest
// wait for its result. Different accounts proceed independently.
type Manager struct {
	auth   authorizer
	logger *slog.Logger

	mu       sync.RWMutex
	accounts map[string]*accountState
}

type accountState struct {
	mu        sync.Mutex
	name      string
	loginHint string
	path      string
	token     *Token
}

// NewManager builds a Manager holding an entry for every configured
// account.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	accounts := make(map[string]*accountState, len(cfg.Accounts))
	for _, acc := range cfg.Accounts {
		accounts[acc.Name] = &accountState{
			name:      acc.Name,
			loginHint: acc.AuthorizeAccount,
			path:      acc.CredentialPath,
		}
	}
	return &Manager{
		auth:     NewAuthenticator(cfg.OAuth, logger),
		logger:   logger,
		accounts: accounts,
	}
}

// EnsureValid returns a valid token for the named account. It prefers the
// in-memory credential, falls back to the persisted file, refreshes an
// expired token when a refresh token is present, and otherwise runs the
// browser flow. New credentials are persisted before being returned.
func (m *Manager) EnsureValid(ctx context.Context, account string) (*Token, error) {
	m.mu.RLock()
	st, ok := m.accounts[account]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownAccount, account)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	log := logging.WithAccount(m.logger, st.name)

	tok := st.token
	if tok == nil {
		stored, err := LoadToken(st.path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.Warn("stored credential unreadable, re-authorizing", logging.Err(err))
			}
			return m.runFlow(ctx, st, log)
		}
		tok = stored
	}

	if !tok.IsExpired(time.Now()) {
		st.token = tok
		return tok, nil
	}

	if tok.RefreshToken != "" {
		log.Debug("credential expired, refreshing")
		fresh, err := m.auth.Refresh(ctx, tok.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", st.name, err)
		}
		return m.store(st, fresh, log)
	}

	log.Debug("credential expired and has no refresh token")
	return m.runFlow(ctx, st, log)
}

func (m *Manager) runFlow(ctx context.Context, st *accountState, log *slog.Logger) (*Token, error) {
	log.Info("starting authorization flow")
	tok, err := m.auth.Authorize(ctx, st.loginHint)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", st.name, err)
	}
	return m.store(st, tok, log)
}

func (m *Manager) store(st *accountState, tok *Token, log *slog.Logger) (*Token, error) {
	if err := SaveToken(st.path, tok); err != nil {
		return nil, fmt.Errorf("account %s: %w", st.name, err)
	}
	st.token = tok
	log.Debug("credential persisted",
		slog.String("path", st.path),
		slog.String("token", logging.SanitizeToken(tok.AccessToken)))
	return tok, nil
}
