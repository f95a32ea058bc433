package google

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

func newTestAuthenticator(t *testing.T, ts *tokenServer, flow AuthFlow) (*Authenticator, *FileTokenStore) {
	t.Helper()
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
	auth, err := NewAuthenticator(AuthenticatorConfig{
		OAuthConfig: ts.config(),
		Store:       store,
		Flow:        flow,
	})
	require.NoError(t, err)
	return auth, store
}

func TestNewAuthenticator_Validation(t *testing.T) {
	conf := &oauth2.Config{}
	store := NewFileTokenStore("token.json")
	flow := &fakeFlow{}

	tests := []struct {
		name string
		cfg  AuthenticatorConfig
	}{
		{"missing config", AuthenticatorConfig{Store: store, Flow: flow}},
		{"missing store", AuthenticatorConfig{OAuthConfig: conf, Flow: flow}},
		{"missing flow", AuthenticatorConfig{OAuthConfig: conf, Store: store}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAuthenticator(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestAuthenticator_Token_UsesValidCachedToken(t *testing.T) {
	ts := newTokenServer(t)
	flow := &fakeFlow{}
	auth, store := newTestAuthenticator(t, ts, flow)

	require.NoError(t, store.Save(&oauth2.Token{
		AccessToken:  "cached",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}))

	token, err := auth.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached", token.AccessToken)
	assert.Zero(t, flow.calls)
	assert.Zero(t, ts.calls.Load())
}

func TestAuthenticator_Token_LoginWhenMissing(t *testing.T) {
	ts := newTokenServer(t)
	flow := &fakeFlow{token: &oauth2.Token{AccessToken: "fresh", RefreshToken: "r"}}
	auth, store := newTestAuthenticator(t, ts, flow)

	token, err := auth.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token.AccessToken)
	assert.Equal(t, 1, flow.calls)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh", saved.AccessToken)
}

func TestAuthenticator_Token_RefreshesExpiredToken(t *testing.T) {
	ts := newTokenServer(t)
	flow := &fakeFlow{}
	auth, store := newTestAuthenticator(t, ts, flow)

	require.NoError(t, store.Save(&oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	token, err := auth.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "issued-1", token.AccessToken)
	assert.Zero(t, flow.calls)
	assert.Equal(t, "refresh_token", ts.lastForm()["grant_type"])
	assert.Equal(t, "refresh", ts.lastForm()["refresh_token"])

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "issued-1", saved.AccessToken)
}

func TestAuthenticator_Token_LoginWhenExpiredWithoutRefreshToken(t *testing.T) {
	ts := newTokenServer(t)
	flow := &fakeFlow{token: &oauth2.Token{AccessToken: "fresh"}}
	auth, store := newTestAuthenticator(t, ts, flow)

	require.NoError(t, store.Save(&oauth2.Token{
		AccessToken: "stale",
		Expiry:      time.Now().Add(-time.Hour),
	}))

	token, err := auth.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token.AccessToken)
	assert.Equal(t, 1, flow.calls)
	assert.Zero(t, ts.calls.Load())
}

func TestAuthenticator_Token_LoginWhenCacheCorrupt(t *testing.T) {
	ts := newTokenServer(t)
	flow := &fakeFlow{token: &oauth2.Token{AccessToken: "fresh"}}
	auth, store := newTestAuthenticator(t, ts, flow)

	require.NoError(t, os.WriteFile(store.Path(), []byte("not a token"), 0600))

	token, err := auth.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token.AccessToken)
	assert.Equal(t, 1, flow.calls)
}

func TestAuthenticator_Token_LoginWhenRefreshTokenRejected(t *testing.T) {
	ts := newTokenServer(t)
	ts.errorCode = "invalid_grant"
	flow := &fakeFlow{token: &oauth2.Token{AccessToken: "fresh", RefreshToken: "new-refresh"}}
	auth, store := newTestAuthenticator(t, ts, flow)

	require.NoError(t, store.Save(&oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "revoked",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	token, err := auth.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token.AccessToken)
	assert.Equal(t, int32(1), ts.calls.Load())
	assert.Equal(t, 1, flow.calls)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh", saved.AccessToken)
}

func TestAuthenticator_Token_RefreshFailures(t *testing.T) {
	tests := []struct {
		name      string
		errorCode string
		tokenURL  func(ts *tokenServer) string
	}{
		{
			name:     "token endpoint unreachable",
			tokenURL: func(*tokenServer) string { return "http://127.0.0.1:1/token" },
		},
		{
			name:      "server error",
			errorCode: "server_error",
			tokenURL:  func(ts *tokenServer) string { return ts.URL + "/token" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTokenServer(t)
			ts.errorCode = tt.errorCode
			conf := ts.config()
			conf.Endpoint.TokenURL = tt.tokenURL(ts)

			flow := &fakeFlow{token: &oauth2.Token{AccessToken: "fresh"}}
			store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
			auth, err := NewAuthenticator(AuthenticatorConfig{OAuthConfig: conf, Store: store, Flow: flow})
			require.NoError(t, err)

			require.NoError(t, store.Save(&oauth2.Token{
				AccessToken:  "stale",
				RefreshToken: "refresh",
				Expiry:       time.Now().Add(-time.Hour),
			}))

			_, err = auth.Token(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to refresh token")
			assert.Zero(t, flow.calls, "a refresh failure must not start the interactive flow")

			saved, err := store.Load()
			require.NoError(t, err)
			assert.Equal(t, "stale", saved.AccessToken)
		})
	}
}

func TestAuthenticator_Token_UnreadableCache(t *testing.T) {
	ts := newTokenServer(t)
	flow := &fakeFlow{token: &oauth2.Token{AccessToken: "fresh"}}
	auth, store := newTestAuthenticator(t, ts, flow)

	// A directory where the token file should be cannot be read
	require.NoError(t, os.MkdirAll(store.Path(), 0700))

	_, err := auth.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read token file")
	assert.Zero(t, flow.calls)
}

func TestAuthenticator_Login_ReplacesCachedToken(t *testing.T) {
	ts := newTokenServer(t)
	flow := &fakeFlow{token: &oauth2.Token{AccessToken: "second", RefreshToken: "r2"}}
	auth, store := newTestAuthenticator(t, ts, flow)

	require.NoError(t, store.Save(&oauth2.Token{AccessToken: "first", RefreshToken: "r1"}))

	_, err := auth.Login(context.Background())
	require.NoError(t, err)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", saved.AccessToken)
	assert.Equal(t, "r2", saved.RefreshToken)
}

func TestAuthenticator_Login_FlowError(t *testing.T) {
	ts := newTokenServer(t)
	flow := &fakeFlow{err: errors.New("user closed the browser")}
	auth, store := newTestAuthenticator(t, ts, flow)

	_, err := auth.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user closed the browser")
	assert.False(t, store.Exists())
}

func TestPersistingTokenSource_SavesChangedToken(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))

	src := &persistingTokenSource{
		base:    oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "rotated"}),
		store:   store,
		last:    "original",
		metrics: newNoopMetrics(),
		logger:  discardLogger(),
	}

	token, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "rotated", token.AccessToken)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "rotated", saved.AccessToken)
}

func TestPersistingTokenSource_SkipsUnchangedToken(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))

	src := &persistingTokenSource{
		base:    oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "same"}),
		store:   store,
		last:    "same",
		metrics: newNoopMetrics(),
		logger:  discardLogger(),
	}

	_, err := src.Token()
	require.NoError(t, err)
	assert.False(t, store.Exists())
}

func TestLoadClientConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	secrets := `{"installed":{"client_id":"id.apps.googleusercontent.com","client_secret":"secret",` +
		`"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token",` +
		`"redirect_uris":["http://localhost"]}}`
	require.NoError(t, os.WriteFile(path, []byte(secrets), 0600))

	conf, err := LoadClientConfig(path, DefaultOAuthScopes...)
	require.NoError(t, err)
	assert.Equal(t, "id.apps.googleusercontent.com", conf.ClientID)
	assert.Equal(t, "secret", conf.ClientSecret)
	assert.Equal(t, DefaultOAuthScopes, conf.Scopes)

	_, err = LoadClientConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{}"), 0600))
	_, err = LoadClientConfig(bad)
	assert.Error(t, err)
}

func TestNewHTTPClient_TracedTransport(t *testing.T) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "access"})
	client := NewHTTPClient(context.Background(), ts)

	transport, ok := client.Transport.(*oauth2.Transport)
	require.True(t, ok)
	assert.IsType(t, &otelhttp.Transport{}, transport.Base)
}
