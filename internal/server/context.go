package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/cal2prompt/internal/calendar"
	"github.com/teemow/cal2prompt/internal/config"
	"github.com/teemow/cal2prompt/internal/google"
)

// ServerContext wires together what a running cal2prompt process needs: the
// validated config, the credential manager and one Calendar client per
// account. Clients are created lazily on first use and cached, so the MCP
// server only touches Google for accounts a tool call actually names.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	tokens *google.Manager
	agg    *calendar.Aggregator

	mu       sync.RWMutex
	clients  map[string]cachedClient
	shutdown bool
}

// cachedClient remembers the access token a client was built with. After a
// refresh the token changes and the client has to be rebuilt, otherwise it
// would keep sending the stale token.
type cachedClient struct {
	accessToken string
	client      *calendar.Client
}

// NewServerContext creates a server context from a loaded config.
func NewServerContext(ctx context.Context, cfg *config.Config, logger *slog.Logger) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		cfg:     cfg,
		tokens:  google.NewManager(cfg, logger),
		agg:     calendar.NewAggregator(cfg.Location, logger),
		clients: make(map[string]cachedClient),
	}
}

// Context returns the server context. It is cancelled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the loaded configuration.
func (sc *ServerContext) Config() *config.Config {
	return sc.cfg
}

// Aggregator returns the event aggregator bound to the configured time zone.
func (sc *ServerContext) Aggregator() *calendar.Aggregator {
	return sc.agg
}

// SourceForAccount returns a fetch/insert source for the given account,
// making sure its credential is valid first. This is where the OAuth flow
// runs for an account that has never been authorized.
func (sc *ServerContext) SourceForAccount(ctx context.Context, acc *config.Account) (calendar.Source, error) {
	tok, err := sc.tokens.EnsureValid(ctx, acc.Name)
	if err != nil {
		return calendar.Source{}, err
	}

	client, err := sc.clientFor(acc.Name, tok.AccessToken)
	if err != nil {
		return calendar.Source{}, err
	}

	return calendar.Source{Client: client, CalendarIDs: acc.CalendarIDs}, nil
}

// AllSources returns one source per configured account, in config order.
func (sc *ServerContext) AllSources(ctx context.Context) ([]calendar.Source, error) {
	sources := make([]calendar.Source, 0, len(sc.cfg.Accounts))
	for i := range sc.cfg.Accounts {
		src, err := sc.SourceForAccount(ctx, &sc.cfg.Accounts[i])
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func (sc *ServerContext) clientFor(account, accessToken string) (*calendar.Client, error) {
	sc.mu.RLock()
	cached, ok := sc.clients[account]
	sc.mu.RUnlock()
	if ok && cached.accessToken == accessToken {
		return cached.client, nil
	}

	// Clients are built on the server context, not the request context, so
	// they stay usable across requests.
	client, err := calendar.NewClient(sc.ctx, account, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar client for account %s: %w", account, err)
	}

	sc.mu.Lock()
	sc.clients[account] = cachedClient{accessToken: accessToken, client: client}
	sc.mu.Unlock()

	return client, nil
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
