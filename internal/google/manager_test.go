package google

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/teemow/cal2prompt/internal/config"
)

type fakeAuthorizer struct {
	authorized atomic.Int32
	refreshed  atomic.Int32

	mu    sync.Mutex
	hints []string

	authorizeToken *Token
	refreshToken   *Token
	authorizeErr   error
	refreshErr     error
}

func (f *fakeAuthorizer) Authorize(ctx context.Context, loginHint string) (*Token, error) {
	f.authorized.Add(1)
	f.mu.Lock()
	f.hints = append(f.hints, loginHint)
	f.mu.Unlock()
	if f.authorizeErr != nil {
		return nil, f.authorizeErr
	}
	return f.authorizeToken, nil
}

func (f *fakeAuthorizer) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	f.refreshed.Add(1)
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshToken, nil
}

func testManager(t *testing.T, fake *fakeAuthorizer) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		OAuth: config.OAuth{
			ClientID:     "id",
			ClientSecret: "secret",
			RedirectURL:  config.DefaultRedirectURL,
		},
		Accounts: []config.Account{
			{
				Name:             "work",
				AuthorizeAccount: "work@example.com",
				CalendarIDs:      []string{"primary"},
				CredentialPath:   filepath.Join(dir, "work.json"),
			},
			{
				Name:             "private",
				AuthorizeAccount: "private@example.com",
				CalendarIDs:      []string{"primary"},
				CredentialPath:   filepath.Join(dir, "private.json"),
			},
		},
	}
	m := NewManager(cfg, nil)
	m.auth = fake
	return m, dir
}

func validToken(access string) *Token {
	return &Token{
		AccessToken:  access,
		RefreshToken: "refresh-" + access,
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
	}
}

func TestEnsureValidUnknownAccount(t *testing.T) {
	m, _ := testManager(t, &fakeAuthorizer{})

	_, err := m.EnsureValid(context.Background(), "nope")
	if !errors.Is(err, config.ErrUnknownAccount) {
		t.Errorf("EnsureValid() error = %v, want ErrUnknownAccount", err)
	}
}

func TestEnsureValidRunsFlowWhenNoCredential(t *testing.T) {
	fake := &fakeAuthorizer{authorizeToken: validToken("new")}
	m, dir := testManager(t, fake)

	tok, err := m.EnsureValid(context.Background(), "work")
	if err != nil {
		t.Fatalf("EnsureValid() error = %v", err)
	}
	if tok.AccessToken != "new" {
		t.Errorf("AccessToken = %q, want new", tok.AccessToken)
	}
	if got := fake.authorized.Load(); got != 1 {
		t.Errorf("authorization flow ran %d times, want 1", got)
	}
	if got := fake.hints; len(got) != 1 || got[0] != "work@example.com" {
		t.Errorf("login hints = %v, want [work@example.com]", got)
	}

	persisted, err := LoadToken(filepath.Join(dir, "work.json"))
	if err != nil {
		t.Fatalf("credential was not persisted: %v", err)
	}
	if persisted.AccessToken != "new" {
		t.Errorf("persisted AccessToken = %q, want new", persisted.AccessToken)
	}
}

func TestEnsureValidUsesStoredCredential(t *testing.T) {
	fake := &fakeAuthorizer{}
	m, dir := testManager(t, fake)

	stored := validToken("stored")
	if err := SaveToken(filepath.Join(dir, "work.json"), stored); err != nil {
		t.Fatal(err)
	}

	tok, err := m.EnsureValid(context.Background(), "work")
	if err != nil {
		t.Fatalf("EnsureValid() error = %v", err)
	}
	if tok.AccessToken != "stored" {
		t.Errorf("AccessToken = %q, want stored", tok.AccessToken)
	}
	if got := fake.authorized.Load(); got != 0 {
		t.Errorf("authorization flow ran %d times, want 0", got)
	}
	if got := fake.refreshed.Load(); got != 0 {
		t.Errorf("refresh ran %d times, want 0", got)
	}
}

func TestEnsureValidRefreshesExpiredCredential(t *testing.T) {
	fake := &fakeAuthorizer{refreshToken: validToken("refreshed")}
	m, dir := testManager(t, fake)

	expired := &Token{
		AccessToken:  "old",
		RefreshToken: "still-good",
		ExpiresAt:    time.Now().Add(-time.Minute).Unix(),
	}
	if err := SaveToken(filepath.Join(dir, "work.json"), expired); err != nil {
		t.Fatal(err)
	}

	tok, err := m.EnsureValid(context.Background(), "work")
	if err != nil {
		t.Fatalf("EnsureValid() error = %v", err)
	}
	if tok.AccessToken != "refreshed" {
		t.Errorf("AccessToken = %q, want refreshed", tok.AccessToken)
	}
	if got := fake.refreshed.Load(); got != 1 {
		t.Errorf("refresh ran %d times, want 1", got)
	}
	if got := fake.authorized.Load(); got != 0 {
		t.Errorf("authorization flow ran %d times, want 0", got)
	}

	persisted, err := LoadToken(filepath.Join(dir, "work.json"))
	if err != nil {
		t.Fatal(err)
	}
	if persisted.AccessToken != "refreshed" {
		t.Errorf("persisted AccessToken = %q, want refreshed", persisted.AccessToken)
	}
}

func TestEnsureValidReauthorizesWithoutRefreshToken(t *testing.T) {
	fake := &fakeAuthorizer{authorizeToken: validToken("new")}
	m, dir := testManager(t, fake)

	expired := &Token{
		AccessToken: "old",
		ExpiresAt:   time.Now().Add(-time.Minute).Unix(),
	}
	if err := SaveToken(filepath.Join(dir, "work.json"), expired); err != nil {
		t.Fatal(err)
	}

	tok, err := m.EnsureValid(context.Background(), "work")
	if err != nil {
		t.Fatalf("EnsureValid() error = %v", err)
	}
	if tok.AccessToken != "new" {
		t.Errorf("AccessToken = %q, want new", tok.AccessToken)
	}
	if got := fake.authorized.Load(); got != 1 {
		t.Errorf("authorization flow ran %d times, want 1", got)
	}
}

func TestEnsureValidReauthorizesOnUnreadableFile(t *testing.T) {
	fake := &fakeAuthorizer{authorizeToken: validToken("new")}
	m, dir := testManager(t, fake)

	if err := os.WriteFile(filepath.Join(dir, "work.json"), []byte("garbage"), 0600); err != nil {
		t.Fatal(err)
	}

	tok, err := m.EnsureValid(context.Background(), "work")
	if err != nil {
		t.Fatalf("EnsureValid() error = %v", err)
	}
	if tok.AccessToken != "new" {
		t.Errorf("AccessToken = %q, want new", tok.AccessToken)
	}
	if got := fake.authorized.Load(); got != 1 {
		t.Errorf("authorization flow ran %d times, want 1", got)
	}
}

func TestEnsureValidCachesInMemory(t *testing.T) {
	fake := &fakeAuthorizer{authorizeToken: validToken("new")}
	m, dir := testManager(t, fake)

	if _, err := m.EnsureValid(context.Background(), "work"); err != nil {
		t.Fatalf("EnsureValid() error = %v", err)
	}

	// Remove the file: the second call must be served from memory.
	if err := os.Remove(filepath.Join(dir, "work.json")); err != nil {
		t.Fatal(err)
	}

	tok, err := m.EnsureValid(context.Background(), "work")
	if err != nil {
		t.Fatalf("EnsureValid() error = %v", err)
	}
	if tok.AccessToken != "new" {
		t.Errorf("AccessToken = %q, want new", tok.AccessToken)
	}
	if got := fake.authorized.Load(); got != 1 {
		t.Errorf("authorization flow ran %d times, want 1", got)
	}
}

func TestEnsureValidRefreshFailurePropagates(t *testing.T) {
	refreshErr := errors.New("refresh grant rejected")
	fake := &fakeAuthorizer{refreshErr: refreshErr}
	m, dir := testManager(t, fake)

	expired := &Token{
		AccessToken:  "old",
		RefreshToken: "revoked",
		ExpiresAt:    time.Now().Add(-time.Minute).Unix(),
	}
	if err := SaveToken(filepath.Join(dir, "work.json"), expired); err != nil {
		t.Fatal(err)
	}

	_, err := m.EnsureValid(context.Background(), "work")
	if !errors.Is(err, refreshErr) {
		t.Errorf("EnsureValid() error = %v, want the refresh failure", err)
	}
	if got := fake.authorized.Load(); got != 0 {
		t.Errorf("authorization flow ran %d times, want 0", got)
	}
}

func TestEnsureValidSingleFlightPerAccount(t *testing.T) {
	fake := &fakeAuthorizer{authorizeToken: validToken("new")}
	m, _ := testManager(t, fake)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.EnsureValid(context.Background(), "work"); err != nil {
				t.Errorf("EnsureValid() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := fake.authorized.Load(); got != 1 {
		t.Errorf("authorization flow ran %d times, want 1", got)
	}
}

func TestEnsureValidAccountsAreIndependent(t *testing.T) {
	fake := &fakeAuthorizer{authorizeToken: validToken("new")}
	m, _ := testManager(t, fake)

	var wg sync.WaitGroup
	for _, account := range []string{"work", "private"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.EnsureValid(context.Background(), account); err != nil {
				t.Errorf("EnsureValid(%q) error = %v", account, err)
			}
		}()
	}
	wg.Wait()

	if got := fake.authorized.Load(); got != 2 {
		t.Errorf("authorization flow ran %d times, want 2", got)
	}

	fake.mu.Lock()
	hints := append([]string(nil), fake.hints...)
	fake.mu.Unlock()
	seen := map[string]bool{}
	for _, h := range hints {
		seen[h] = true
	}
	if !seen["work@example.com"] || !seen["private@example.com"] {
		t.Errorf("login hints = %v, want both accounts", hints)
	}
}
