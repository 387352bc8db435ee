package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	slogctx "github.com/veqryn/slog-context"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/blogger/v3"
)

// NewOAuthConfig builds the installed-app client configuration for Blogger
func NewOAuthConfig(settings OAuthSettings) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{blogger.BloggerScope},
	}
}

// LocalServerAuthorizer runs the loopback redirect flow: it listens on an
// ephemeral local port, asks the user to open the consent URL and exchanges
// the returned code.
type LocalServerAuthorizer struct {
	Config *oauth2.Config
	Host   string
	// OpenURL presents the consent URL to the user
	OpenURL func(ctx context.Context, url string) error
}

type callbackResult struct {
	code string
	err  error
}

// Authorize implements Authorizer
func (a *LocalServerAuthorizer) Authorize(ctx context.Context) (*oauth2.Token, error) {
	host := a.Host
	if host == "" {
		host = "127.0.0.1"
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return nil, fmt.Errorf("binding callback listener: %w", err)
	}

	conf := *a.Config
	conf.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr().String())

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	results := make(chan callbackResult, 1)
	server := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveDone := make(chan struct{})
	go func() {
		defer close(serveDone)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case results <- callbackResult{err: fmt.Errorf("callback server: %w", err)}:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		<-serveDone
	}()

	openURL := a.OpenURL
	if openURL == nil {
		openURL = printAuthURL
	}
	if err := openURL(ctx, authURL); err != nil {
		return nil, fmt.Errorf("presenting consent URL: %w", err)
	}

	var result callbackResult
	select {
	case result = <-results:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if result.err != nil {
		return nil, result.err
	}

	token, err := conf.Exchange(ctx, result.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return token, nil
}

// callbackHandler accepts the first redirect carrying a code or an error and ignores
// anything else (favicon requests and the like).
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		var result callbackResult
		switch {
		case query.Get("error") != "":
			result.err = fmt.Errorf("authorization denied: %s", query.Get("error"))
		case query.Get("code") == "":
			http.NotFound(w, r)
			return
		case query.Get("state") != state:
			result.err = errors.New("authorization state mismatch")
		default:
			result.code = query.Get("code")
		}

		if result.err != nil {
			http.Error(w, "Authorization failed. You may close this window.", http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Authorization complete. You may close this window.")
		}

		select {
		case results <- result:
		default:
		}
	})
}

func printAuthURL(ctx context.Context, url string) error {
	slogctx.FromCtx(ctx).InfoContext(ctx, "open this URL in a browser to authorize Blogger access", slog.String("URL", url))
	return nil
}
