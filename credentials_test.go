package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/onsi/gomega"
	"golang.org/x/oauth2"
)

type fakeTokenStore struct {
	token   *oauth2.Token
	loadErr error
	saveErr error
	saved   []*oauth2.Token
}

func (s *fakeTokenStore) Load() (*oauth2.Token, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.token, nil
}

func (s *fakeTokenStore) Save(token *oauth2.Token) error {
	s.saved = append(s.saved, token)
	return s.saveErr
}

type fakeRefresher struct {
	token *oauth2.Token
	err   error
	calls int
}

func (r *fakeRefresher) Refresh(_ context.Context, _ *oauth2.Token) (*oauth2.Token, error) {
	r.calls++
	return r.token, r.err
}

type fakeAuthorizer struct {
	token *oauth2.Token
	err   error
	calls int
}

func (a *fakeAuthorizer) Authorize(context.Context) (*oauth2.Token, error) {
	a.calls++
	return a.token, a.err
}

func validToken(access string) *oauth2.Token {
	return &oauth2.Token{AccessToken: access, RefreshToken: "refresh", Expiry: time.Now().Add(time.Hour)}
}

func expiredToken() *oauth2.Token {
	return &oauth2.Token{AccessToken: "stale", RefreshToken: "refresh", Expiry: time.Now().Add(-time.Hour)}
}

func TestCredentialManagerAcquire(t *testing.T) {
	tests := []struct {
		name       string
		store      *fakeTokenStore
		refresher  *fakeRefresher
		authorizer *fakeAuthorizer
		history    []CredentialState
		access     string
		refreshes  int
		authorizes int
		saves      int
		wantErr    bool
	}{
		{
			name:       "valid stored token",
			store:      &fakeTokenStore{token: validToken("stored")},
			refresher:  &fakeRefresher{},
			authorizer: &fakeAuthorizer{},
			history:    []CredentialState{StateTokenLoadedValid},
			access:     "stored",
		},
		{
			name:       "expired token refreshed",
			store:      &fakeTokenStore{token: expiredToken()},
			refresher:  &fakeRefresher{token: validToken("refreshed")},
			authorizer: &fakeAuthorizer{},
			history:    []CredentialState{StateTokenLoadedExpired, StateRefreshed},
			access:     "refreshed",
			refreshes:  1,
			saves:      1,
		},
		{
			name:       "refresh failure falls back to authorization",
			store:      &fakeTokenStore{token: expiredToken()},
			refresher:  &fakeRefresher{err: errors.New("invalid_grant")},
			authorizer: &fakeAuthorizer{token: validToken("authorized")},
			history:    []CredentialState{StateTokenLoadedExpired, StateNoToken, StateAuthorizing, StateAuthorized},
			access:     "authorized",
			refreshes:  1,
			authorizes: 1,
			saves:      1,
		},
		{
			name:       "missing token file",
			store:      &fakeTokenStore{loadErr: os.ErrNotExist},
			refresher:  &fakeRefresher{},
			authorizer: &fakeAuthorizer{token: validToken("authorized")},
			history:    []CredentialState{StateNoToken, StateAuthorizing, StateAuthorized},
			access:     "authorized",
			authorizes: 1,
			saves:      1,
		},
		{
			name:       "expired token without refresh token",
			store:      &fakeTokenStore{token: &oauth2.Token{AccessToken: "stale", Expiry: time.Now().Add(-time.Hour)}},
			refresher:  &fakeRefresher{},
			authorizer: &fakeAuthorizer{token: validToken("authorized")},
			history:    []CredentialState{StateNoToken, StateAuthorizing, StateAuthorized},
			access:     "authorized",
			authorizes: 1,
			saves:      1,
		},
		{
			name:       "authorization failure",
			store:      &fakeTokenStore{loadErr: os.ErrNotExist},
			refresher:  &fakeRefresher{},
			authorizer: &fakeAuthorizer{err: errors.New("access_denied")},
			history:    []CredentialState{StateNoToken, StateAuthorizing, StateFailed},
			authorizes: 1,
			wantErr:    true,
		},
		{
			name:       "authorization returns empty token",
			store:      &fakeTokenStore{loadErr: os.ErrNotExist},
			refresher:  &fakeRefresher{},
			authorizer: &fakeAuthorizer{token: &oauth2.Token{}},
			history:    []CredentialState{StateNoToken, StateAuthorizing, StateFailed},
			authorizes: 1,
			wantErr:    true,
		},
		{
			name:       "refresh and authorization both fail",
			store:      &fakeTokenStore{token: expiredToken()},
			refresher:  &fakeRefresher{err: errors.New("invalid_grant")},
			authorizer: &fakeAuthorizer{err: errors.New("access_denied")},
			history:    []CredentialState{StateTokenLoadedExpired, StateNoToken, StateAuthorizing, StateFailed},
			refreshes:  1,
			authorizes: 1,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gomega.NewWithT(t)
			ctx, _ := testContext()

			manager := NewCredentialManager(tt.store, tt.refresher, tt.authorizer)
			cred, err := manager.Acquire(ctx)

			g.Expect(manager.History()).To(gomega.Equal(tt.history))
			g.Expect(tt.refresher.calls).To(gomega.Equal(tt.refreshes))
			g.Expect(tt.authorizer.calls).To(gomega.Equal(tt.authorizes))
			g.Expect(tt.store.saved).To(gomega.HaveLen(tt.saves))

			if tt.wantErr {
				g.Expect(err).To(gomega.HaveOccurred())
				g.Expect(IsKind(err, AuthError)).To(gomega.BeTrue())
				g.Expect(cred).To(gomega.BeNil())
				return
			}

			g.Expect(err).NotTo(gomega.HaveOccurred())
			g.Expect(cred.Token.AccessToken).To(gomega.Equal(tt.access))
			g.Expect(cred.State).To(gomega.Equal(tt.history[len(tt.history)-1]))
			if tt.saves > 0 {
				g.Expect(tt.store.saved[0]).To(gomega.BeIdenticalTo(cred.Token))
			}
		})
	}
}

func TestCredentialManagerSaveFailureKeepsToken(t *testing.T) {
	g := gomega.NewWithT(t)
	ctx, logs := testContext()

	store := &fakeTokenStore{loadErr: os.ErrNotExist, saveErr: errors.New("read-only filesystem")}
	manager := NewCredentialManager(store, &fakeRefresher{}, &fakeAuthorizer{token: validToken("authorized")})

	cred, err := manager.Acquire(ctx)

	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(cred.Token.AccessToken).To(gomega.Equal("authorized"))
	g.Expect(cred.State).To(gomega.Equal(StateAuthorized))
	g.Expect(logs.String()).To(gomega.ContainSubstring("saving token file failed"))
}

func TestCredentialManagerHistoryResetsBetweenCalls(t *testing.T) {
	g := gomega.NewWithT(t)
	ctx, _ := testContext()

	store := &fakeTokenStore{loadErr: os.ErrNotExist}
	manager := NewCredentialManager(store, &fakeRefresher{}, &fakeAuthorizer{token: validToken("authorized")})

	_, err := manager.Acquire(ctx)
	g.Expect(err).NotTo(gomega.HaveOccurred())

	store.loadErr = nil
	store.token = validToken("stored")
	_, err = manager.Acquire(ctx)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(manager.History()).To(gomega.Equal([]CredentialState{StateTokenLoadedValid}))
}

func TestCredentialStateString(t *testing.T) {
	tests := []struct {
		state    CredentialState
		expected string
	}{
		{StateNoToken, "NO_TOKEN"},
		{StateTokenLoadedValid, "TOKEN_LOADED_VALID"},
		{StateTokenLoadedExpired, "TOKEN_LOADED_EXPIRED"},
		{StateRefreshed, "REFRESHED"},
		{StateAuthorizing, "AUTHORIZING"},
		{StateAuthorized, "AUTHORIZED"},
		{StateFailed, "FAILED"},
		{CredentialState(42), "CredentialState(42)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}

func TestOAuthRefresher(t *testing.T) {
	g := gomega.NewWithT(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("grant_type") != "refresh_token" || r.PostForm.Get("refresh_token") != "refresh" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`)
	}))
	defer server.Close()

	refresher := &OAuthRefresher{Config: &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint:     oauth2.Endpoint{TokenURL: server.URL, AuthStyle: oauth2.AuthStyleInParams},
	}}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, server.Client())
	token, err := refresher.Refresh(ctx, expiredToken())

	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(token.AccessToken).To(gomega.Equal("fresh"))
	g.Expect(token.RefreshToken).To(gomega.Equal("refresh"))
	g.Expect(token.Valid()).To(gomega.BeTrue())
}

func TestOAuthRefresherRejected(t *testing.T) {
	g := gomega.NewWithT(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Token has been revoked."}`)
	}))
	defer server.Close()

	refresher := &OAuthRefresher{Config: &oauth2.Config{
		ClientID: "client-id",
		Endpoint: oauth2.Endpoint{TokenURL: server.URL, AuthStyle: oauth2.AuthStyleInParams},
	}}

	_, err := refresher.Refresh(context.Background(), expiredToken())

	var retrieveErr *oauth2.RetrieveError
	g.Expect(errors.As(err, &retrieveErr)).To(gomega.BeTrue())
	g.Expect(retrieveErr.ErrorCode).To(gomega.Equal("invalid_grant"))
}
