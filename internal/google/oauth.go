package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/cal2prompt/internal/config"
	"github.com/teemow/cal2prompt/internal/logging"
)

// ErrPortInUse reports that the OAuth redirect listener could not bind,
// usually because another instance already holds the port.
var ErrPortInUse = errors.New("redirect port already in use")

// Authenticator runs the OAuth2 authorization code flow with PKCE against
// Google's endpoints and exchanges refresh tokens.
type Authenticator struct {
	conf        *oauth2.Config
	logger      *slog.Logger
	openBrowser func(url string) error
}

// NewAuthenticator creates an Authenticator from the OAuth section of the
// configuration.
func NewAuthenticator(oc config.OAuth, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		conf: &oauth2.Config{
			ClientID:     oc.ClientID,
			ClientSecret: oc.ClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  oc.RedirectURL,
			Scopes:       oc.Scopes,
		},
		logger:      logger,
		openBrowser: openBrowser,
	}
}

type callbackResult struct {
	code string
	err  error
}

// Authorize runs the interactive browser flow and returns the granted
// token. The redirect listener is bound before the browser opens so a
// second instance fails fast with ErrPortInUse instead of stealing the
// callback. loginHint preselects the Google account on the consent screen
// and may be empty. The call blocks until the redirect arrives or ctx is
// cancelled.
func (a *Authenticator) Authorize(ctx context.Context, loginHint string) (*Token, error) {
	redirect, err := url.Parse(a.conf.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URL %q: %w", a.conf.RedirectURL, err)
	}

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPortInUse, redirect.Host, err)
	}
	defer ln.Close()

	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()

	opts := []oauth2.AuthCodeOption{
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	}
	if loginHint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", loginHint))
	}
	authURL := a.conf.AuthCodeURL(state, opts...)

	results := make(chan callbackResult, 1)
	srv := &http.Server{Handler: callbackHandler(state, results)}
	go srv.Serve(ln)
	defer srv.Close()

	if err := a.openBrowser(authURL); err != nil {
		a.logger.Warn("could not open browser, visit the URL to authorize",
			logging.Err(err), slog.String("url", authURL))
	} else {
		a.logger.Info("waiting for authorization in browser")
	}

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := a.conf.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return fromOAuth2Token(tok), nil
}

// Refresh exchanges a refresh token for a fresh access token. The refresh
// token is carried over when Google omits one from the response.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	src := a.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return fromOAuth2Token(tok), nil
}

// callbackHandler answers the single OAuth redirect. Requests without a
// code or error parameter (such as favicon fetches) are ignored, and only
// the first meaningful result is delivered.
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("code") == "" && q.Get("error") == "" {
			http.NotFound(w, r)
			return
		}

		var res callbackResult
		switch {
		case q.Get("error") != "":
			http.Error(w, "Authorization failed.", http.StatusBadRequest)
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("state") != state:
			http.Error(w, "Invalid state.", http.StatusBadRequest)
			res.err = errors.New("state mismatch in authorization callback")
		default:
			fmt.Fprint(w, "Go back to your terminal :)")
			res.code = q.Get("code")
		}

		select {
		case results <- res:
		default:
		}
	})
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
