package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	slogctx "github.com/veqryn/slog-context"
	"golang.org/x/oauth2"
)

// CredentialState is a state of the credential lifecycle
type CredentialState int

const (
	StateNoToken CredentialState = iota
	StateTokenLoadedValid
	StateTokenLoadedExpired
	StateRefreshed
	StateAuthorizing
	StateAuthorized
	StateFailed
)

func (s CredentialState) String() string {
	switch s {
	case StateNoToken:
		return "NO_TOKEN"
	case StateTokenLoadedValid:
		return "TOKEN_LOADED_VALID"
	case StateTokenLoadedExpired:
		return "TOKEN_LOADED_EXPIRED"
	case StateRefreshed:
		return "REFRESHED"
	case StateAuthorizing:
		return "AUTHORIZING"
	case StateAuthorized:
		return "AUTHORIZED"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("CredentialState(%d)", int(s))
	}
}

func (s CredentialState) terminal() bool {
	switch s {
	case StateTokenLoadedValid, StateRefreshed, StateAuthorized, StateFailed:
		return true
	}
	return false
}

// persists reports whether reaching this state writes the token back to the store
func (s CredentialState) persists() bool {
	return s == StateRefreshed || s == StateAuthorized
}

// Credential is the access token chosen for this run
type Credential struct {
	Token *oauth2.Token
	State CredentialState
}

// TokenSource returns a static token source for API clients
func (c *Credential) TokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(c.Token)
}

// CredentialProvider produces the credential used to publish
type CredentialProvider interface {
	Acquire(ctx context.Context) (*Credential, error)
}

// TokenRefresher exchanges a refresh token for a new access token
type TokenRefresher interface {
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}

// Authorizer runs the interactive authorization flow
type Authorizer interface {
	Authorize(ctx context.Context) (*oauth2.Token, error)
}

// OAuthRefresher refreshes tokens against the provider token endpoint
type OAuthRefresher struct {
	Config *oauth2.Config
}

// Refresh implements TokenRefresher
func (r *OAuthRefresher) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	expired := &oauth2.Token{RefreshToken: token.RefreshToken}
	refreshed, err := r.Config.TokenSource(ctx, expired).Token()
	if err != nil {
		return nil, err
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = token.RefreshToken
	}
	return refreshed, nil
}

// credentialStep is the result of one transition: the next state plus the
// token and error carried into it.
type credentialStep struct {
	state CredentialState
	token *oauth2.Token
	err   error
}

// CredentialManager drives the load, refresh, authorize and persist lifecycle
type CredentialManager struct {
	store      TokenStore
	refresher  TokenRefresher
	authorizer Authorizer

	history []CredentialState
}

// NewCredentialManager creates a manager from its three collaborators
func NewCredentialManager(store TokenStore, refresher TokenRefresher, authorizer Authorizer) *CredentialManager {
	return &CredentialManager{
		store:      store,
		refresher:  refresher,
		authorizer: authorizer,
	}
}

// History returns the states visited by the last Acquire call, in order
func (m *CredentialManager) History() []CredentialState {
	return append([]CredentialState(nil), m.history...)
}

// Acquire returns a usable credential or an AuthError. It refreshes at most
// once and authorizes at most once.
func (m *CredentialManager) Acquire(ctx context.Context) (*Credential, error) {
	logger := slogctx.FromCtx(ctx)
	m.history = m.history[:0]

	step := m.load(ctx)
	refreshed, authorized := false, false

	for {
		m.history = append(m.history, step.state)
		logger.DebugContext(ctx, "credential state", slog.String("State", step.state.String()))

		if step.state.terminal() {
			break
		}

		switch step.state {
		case StateTokenLoadedExpired:
			if refreshed {
				step = credentialStep{state: StateNoToken}
				continue
			}
			refreshed = true
			step = m.refresh(ctx, step.token)
		case StateNoToken:
			step = credentialStep{state: StateAuthorizing}
		case StateAuthorizing:
			if authorized {
				step = credentialStep{state: StateFailed, err: errors.New("authorization already attempted in this run")}
				continue
			}
			authorized = true
			step = m.authorize(ctx)
		default:
			step = credentialStep{state: StateFailed, err: fmt.Errorf("unexpected credential state %s", step.state)}
		}
	}

	if step.state == StateFailed {
		return nil, newRunError(AuthError, "acquiring credential", step.err)
	}

	if step.state.persists() {
		m.persist(ctx, step.token)
	}

	logger.InfoContext(ctx, "Blogger credentials obtained", slog.String("State", step.state.String()))
	return &Credential{Token: step.token, State: step.state}, nil
}

func (m *CredentialManager) load(ctx context.Context) credentialStep {
	logger := slogctx.FromCtx(ctx)

	token, err := m.store.Load()
	if err != nil {
		logger.InfoContext(ctx, "no usable token file, authorization required", slog.Any("Error", err))
		return credentialStep{state: StateNoToken}
	}

	if token.Valid() {
		return credentialStep{state: StateTokenLoadedValid, token: token}
	}

	if token.RefreshToken != "" {
		logger.InfoContext(ctx, "credentials expired, attempting to refresh")
		return credentialStep{state: StateTokenLoadedExpired, token: token}
	}

	logger.InfoContext(ctx, "stored token is invalid and has no refresh token")
	return credentialStep{state: StateNoToken}
}

func (m *CredentialManager) refresh(ctx context.Context, token *oauth2.Token) credentialStep {
	refreshed, err := m.refresher.Refresh(ctx, token)
	if err != nil {
		slogctx.FromCtx(ctx).WarnContext(ctx, "refreshing token failed, need to re-authenticate", slog.Any("Error", err))
		return credentialStep{state: StateNoToken}
	}
	return credentialStep{state: StateRefreshed, token: refreshed}
}

func (m *CredentialManager) authorize(ctx context.Context) credentialStep {
	slogctx.FromCtx(ctx).InfoContext(ctx, "no valid credentials, initiating OAuth flow")

	token, err := m.authorizer.Authorize(ctx)
	if err != nil {
		return credentialStep{state: StateFailed, err: fmt.Errorf("oauth flow: %w", err)}
	}
	if token == nil || token.AccessToken == "" {
		return credentialStep{state: StateFailed, err: errors.New("oauth flow returned no access token")}
	}
	return credentialStep{state: StateAuthorized, token: token}
}

// persist failures are logged only; the in-memory token stays valid for this run
func (m *CredentialManager) persist(ctx context.Context, token *oauth2.Token) {
	logger := slogctx.FromCtx(ctx)
	if err := m.store.Save(token); err != nil {
		logger.ErrorContext(ctx, "saving token file failed", slog.Any("Error", err))
		return
	}
	logger.InfoContext(ctx, "credentials saved")
}
