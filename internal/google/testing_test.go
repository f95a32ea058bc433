package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/oauth2"

	"github.com/teemow/freerooms/internal/instrumentation"
)

// tokenServer is a fake OAuth token endpoint that issues numbered access tokens
type tokenServer struct {
	*httptest.Server
	calls atomic.Int32

	// errorCode, when set, makes every request fail with this OAuth error
	errorCode string

	mu   sync.Mutex
	last map[string]string
}

func newTokenServer(t *testing.T) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ts.mu.Lock()
		ts.last = map[string]string{}
		for k := range r.PostForm {
			ts.last[k] = r.PostForm.Get(k)
		}
		ts.mu.Unlock()

		n := ts.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if ts.errorCode != "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             ts.errorCode,
				"error_description": "Token has been expired or revoked.",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  fmt.Sprintf("issued-%d", n),
			"token_type":    "Bearer",
			"refresh_token": "issued-refresh",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *tokenServer) lastForm() map[string]string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.last
}

func (ts *tokenServer) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:   ts.URL + "/auth",
			TokenURL:  ts.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: DefaultOAuthScopes,
	}
}

// fakeFlow hands out a fixed token and counts how often it was asked
type fakeFlow struct {
	token *oauth2.Token
	err   error
	calls int
}

func (f *fakeFlow) Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	f.calls++
	return f.token, f.err
}

func newNoopMetrics() *instrumentation.Metrics {
	return &instrumentation.Metrics{}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
