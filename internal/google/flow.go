package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// ErrStateMismatch is returned when the authorization redirect carries a
// state value other than the one that was sent
var ErrStateMismatch = errors.New("OAuth state mismatch")

// DefaultAuthTimeout bounds how long the local flow waits for the user.
const DefaultAuthTimeout = 5 * time.Minute

// LocalServerFlow implements the installed-app flow: it listens on a loopback
// address, asks the user to open the consent page, and exchanges the code the
// browser is redirected back with.
type LocalServerFlow struct {
	// Port is the loopback port to listen on; 0 picks a free port
	Port int

	// Out receives the consent URL (default: os.Stderr)
	Out io.Writer

	// OpenURL, when set, is called with the consent URL (e.g. to launch a browser)
	OpenURL func(url string) error

	// Timeout limits the wait for the redirect (default: DefaultAuthTimeout)
	Timeout time.Duration
}

type callbackResult struct {
	code string
	err  error
}

// Authorize runs the flow and returns the token issued for the user
func (f *LocalServerFlow) Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	out := f.Out
	if out == nil {
		out = os.Stderr
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultAuthTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", f.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen for OAuth redirect: %w", err)
	}

	redirectConf := *conf
	redirectConf.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := redirectConf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Debug("OAuth redirect listener stopped", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(out, "Open the following URL in your browser to authorize access to your calendars:\n\n%s\n\n", authURL)
	if f.OpenURL != nil {
		if err := f.OpenURL(authURL); err != nil {
			slog.Warn("failed to open browser", "error", err)
		}
	}

	var result callbackResult
	select {
	case result = <-results:
	case <-ctx.Done():
		return nil, fmt.Errorf("timed out waiting for authorization: %w", ctx.Err())
	}
	if result.err != nil {
		return nil, result.err
	}

	token, err := redirectConf.Exchange(ctx, result.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}

	return token, nil
}

// callbackHandler accepts the first redirect to "/" and reports its outcome
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		q := r.URL.Query()
		var result callbackResult
		switch {
		case q.Get("error") != "":
			result.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("state") != state:
			result.err = ErrStateMismatch
		case q.Get("code") == "":
			result.err = fmt.Errorf("authorization redirect is missing the code")
		default:
			result.code = q.Get("code")
		}

		if result.err != nil {
			http.Error(w, result.err.Error(), http.StatusBadRequest)
		} else {
			_, _ = io.WriteString(w, "Authorization complete. You may close this window.\n")
		}

		select {
		case results <- result:
		default:
		}
	})
}
