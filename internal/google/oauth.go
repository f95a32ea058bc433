package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/freerooms/internal/instrumentation"
	"github.com/teemow/freerooms/internal/logging"
)

// LoadClientConfig reads the client application secrets downloaded from the
// Google Cloud console and returns the OAuth2 configuration for the given scopes
func LoadClientConfig(path string, scopes ...string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client secrets file: %w", err)
	}

	conf, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secrets file %s: %w", path, err)
	}

	return conf, nil
}

// AuthFlow obtains a fresh token from the user
type AuthFlow interface {
	Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)
}

// AuthenticatorConfig holds the dependencies of an Authenticator
type AuthenticatorConfig struct {
	// OAuthConfig is the client application configuration (required)
	OAuthConfig *oauth2.Config

	// Store caches the user's token between runs (required)
	Store TokenStore

	// Flow runs the interactive login when no usable token exists (required)
	Flow AuthFlow

	// Metrics records OAuth outcomes (optional)
	Metrics *instrumentation.Metrics

	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

// Authenticator provides valid Google OAuth tokens, logging in or refreshing
// as needed and persisting every token it obtains
type Authenticator struct {
	config  *oauth2.Config
	store   TokenStore
	flow    AuthFlow
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// NewAuthenticator creates an Authenticator from the given configuration
func NewAuthenticator(cfg AuthenticatorConfig) (*Authenticator, error) {
	if cfg.OAuthConfig == nil {
		return nil, fmt.Errorf("OAuth config cannot be nil")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("token store cannot be nil")
	}
	if cfg.Flow == nil {
		return nil, fmt.Errorf("auth flow cannot be nil")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &instrumentation.Metrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Authenticator{
		config:  cfg.OAuthConfig,
		store:   cfg.Store,
		flow:    cfg.Flow,
		metrics: cfg.Metrics,
		logger:  logging.WithService(cfg.Logger, "oauth"),
	}, nil
}

// Token returns a valid token for the user.
//
// The cached token is used when still valid. An expired token with a refresh
// token is refreshed; the interactive flow only starts when there is no usable
// cached token or Google rejects the refresh token. Other failures, such as an
// unreachable token endpoint or an unreadable token file, are returned.
// New and refreshed tokens are saved to the store.
func (a *Authenticator) Token(ctx context.Context) (*oauth2.Token, error) {
	cached, err := a.store.Load()
	switch {
	case errors.Is(err, ErrTokenNotFound):
		a.logger.Debug("no cached token, starting login")
		return a.Login(ctx)
	case errors.Is(err, ErrInvalidToken):
		a.logger.Warn("cached token unusable, starting login", logging.Err(err))
		return a.Login(ctx)
	case err != nil:
		return nil, err
	}

	if cached.Valid() {
		return cached, nil
	}

	if cached.RefreshToken == "" {
		a.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultExpired)
		a.logger.Info("cached token expired without refresh token, starting login")
		return a.Login(ctx)
	}

	refreshed, err := a.refresh(ctx, cached)
	if err != nil {
		if !refreshRejected(err) {
			return nil, err
		}
		a.logger.Warn("refresh token rejected, starting login", logging.Err(err))
		return a.Login(ctx)
	}

	return refreshed, nil
}

// refreshRejected reports whether the token endpoint refused the refresh
// token itself (revoked or expired grant)
func refreshRejected(err error) bool {
	var re *oauth2.RetrieveError
	return errors.As(err, &re) && re.ErrorCode == "invalid_grant"
}

// Login runs the interactive flow unconditionally and saves the new token
func (a *Authenticator) Login(ctx context.Context) (*oauth2.Token, error) {
	token, err := a.flow.Authorize(ctx, a.config)
	if err != nil {
		a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)

	replaced := a.store.Exists()
	if err := a.store.Save(token); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}

	a.logger.Info("authorization complete",
		slog.Bool("replaced_cached_token", replaced),
		slog.String("access_token", logging.SanitizeToken(token.AccessToken)))
	return token, nil
}

// TokenSource returns a token source that starts from a valid token and
// writes every later refresh back to the store
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	token, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}

	return &persistingTokenSource{
		base:    a.config.TokenSource(ctx, token),
		store:   a.store,
		last:    token.AccessToken,
		metrics: a.metrics,
		logger:  a.logger,
	}, nil
}

func (a *Authenticator) refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	// Hand the oauth2 package an already-expired copy so it always refreshes
	expired := *token
	expired.AccessToken = ""

	refreshed, err := a.config.TokenSource(ctx, &expired).Token()
	if err != nil {
		a.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultFailure)
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	a.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultSuccess)

	if err := a.store.Save(refreshed); err != nil {
		return nil, fmt.Errorf("failed to save refreshed token: %w", err)
	}

	a.logger.Debug("token refreshed", slog.String("access_token", logging.SanitizeToken(refreshed.AccessToken)))
	return refreshed, nil
}

// persistingTokenSource saves the token whenever the wrapped source hands out
// a different access token
type persistingTokenSource struct {
	mu      sync.Mutex
	base    oauth2.TokenSource
	store   TokenStore
	last    string
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.base.Token()
	if err != nil {
		s.metrics.RecordOAuthTokenRefresh(context.Background(), instrumentation.OAuthResultFailure)
		return nil, err
	}

	if token.AccessToken != s.last {
		s.metrics.RecordOAuthTokenRefresh(context.Background(), instrumentation.OAuthResultSuccess)
		if err := s.store.Save(token); err != nil {
			// The token is still usable for this run
			s.logger.Warn("failed to save refreshed token", logging.Err(err))
		} else {
			s.last = token.AccessToken
		}
	}

	return token, nil
}

// NewHTTPClient returns an HTTP client authenticated with the given token source.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors,
// and every request is traced as an HTTP client span
func NewHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()
	baseTransport.ForceAttemptHTTP2 = false
	transport.Base = otelhttp.NewTransport(baseTransport)

	return client
}
