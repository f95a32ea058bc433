package google

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redirectBack simulates the browser returning to the loopback listener
func redirectBack(t *testing.T, query func(state string) url.Values) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		params := u.Query()

		assert.Equal(t, "offline", params.Get("access_type"))
		assert.Equal(t, "S256", params.Get("code_challenge_method"))
		assert.NotEmpty(t, params.Get("code_challenge"))

		resp, err := http.Get(params.Get("redirect_uri") + "?" + query(params.Get("state")).Encode())
		if err != nil {
			return err
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Body.Close()
	}
}

func TestLocalServerFlow_Authorize(t *testing.T) {
	ts := newTokenServer(t)
	var out bytes.Buffer

	flow := &LocalServerFlow{
		Out: &out,
		OpenURL: redirectBack(t, func(state string) url.Values {
			return url.Values{"code": {"auth-code"}, "state": {state}}
		}),
		Timeout: 10 * time.Second,
	}

	token, err := flow.Authorize(context.Background(), ts.config())
	require.NoError(t, err)
	assert.Equal(t, "issued-1", token.AccessToken)
	assert.Equal(t, "issued-refresh", token.RefreshToken)

	form := ts.lastForm()
	assert.Equal(t, "authorization_code", form["grant_type"])
	assert.Equal(t, "auth-code", form["code"])
	assert.NotEmpty(t, form["code_verifier"])
	assert.Contains(t, form["redirect_uri"], "http://127.0.0.1:")

	assert.Contains(t, out.String(), ts.URL+"/auth")
}

func TestLocalServerFlow_StateMismatch(t *testing.T) {
	ts := newTokenServer(t)

	flow := &LocalServerFlow{
		Out: io.Discard,
		OpenURL: redirectBack(t, func(string) url.Values {
			return url.Values{"code": {"auth-code"}, "state": {"forged"}}
		}),
		Timeout: 10 * time.Second,
	}

	_, err := flow.Authorize(context.Background(), ts.config())
	assert.ErrorIs(t, err, ErrStateMismatch)
	assert.Zero(t, ts.calls.Load())
}

func TestLocalServerFlow_Denied(t *testing.T) {
	ts := newTokenServer(t)

	flow := &LocalServerFlow{
		Out: io.Discard,
		OpenURL: redirectBack(t, func(string) url.Values {
			return url.Values{"error": {"access_denied"}}
		}),
		Timeout: 10 * time.Second,
	}

	_, err := flow.Authorize(context.Background(), ts.config())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
}

func TestLocalServerFlow_Timeout(t *testing.T) {
	ts := newTokenServer(t)

	flow := &LocalServerFlow{
		Out:     io.Discard,
		Timeout: 50 * time.Millisecond,
	}

	_, err := flow.Authorize(context.Background(), ts.config())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestCallbackHandler_IgnoresOtherPaths(t *testing.T) {
	results := make(chan callbackResult, 1)
	handler := callbackHandler("state", results)

	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1/favicon.ico", nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, results)
}
