package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/teemow/freerooms/internal/calendar"
	"github.com/teemow/freerooms/internal/google"
	"github.com/teemow/freerooms/internal/instrumentation"
	"github.com/teemow/freerooms/internal/rooms"
)

// newAuthenticator wires the client secrets, token cache and login flow
func newAuthenticator(metrics *instrumentation.Metrics) (*google.Authenticator, error) {
	conf, err := google.LoadClientConfig(globals.credentialsFile, google.DefaultOAuthScopes...)
	if err != nil {
		return nil, err
	}

	return google.NewAuthenticator(google.AuthenticatorConfig{
		OAuthConfig: conf,
		Store:       google.NewFileTokenStore(globals.tokenFile),
		Flow: &google.LocalServerFlow{
			Port: globals.authPort,
			Out:  os.Stderr,
		},
		Metrics: metrics,
		Logger:  slog.Default(),
	})
}

// newCalendarClient authenticates and returns a Calendar API client
func newCalendarClient(ctx context.Context, metrics *instrumentation.Metrics) (*calendar.Client, error) {
	auth, err := newAuthenticator(metrics)
	if err != nil {
		return nil, err
	}

	ts, err := auth.TokenSource(ctx)
	if err != nil {
		return nil, err
	}

	return calendar.NewClient(ctx, ts, metrics)
}

// newChecker builds a room checker on top of an authenticated client
func newChecker(ctx context.Context, metrics *instrumentation.Metrics) (*rooms.Checker, error) {
	client, err := newCalendarClient(ctx, metrics)
	if err != nil {
		return nil, err
	}

	return rooms.NewChecker(rooms.CheckerConfig{
		Service:  client,
		Marker:   globals.marker,
		TimeZone: globals.timeZone,
		Metrics:  metrics,
		Logger:   slog.Default(),
	})
}

// newInstrumentation creates the telemetry provider from the environment
func newInstrumentation(ctx context.Context, configure func(*instrumentation.Config)) (*instrumentation.Provider, error) {
	config := instrumentation.DefaultConfig()
	config.ServiceVersion = version
	if configure != nil {
		configure(&config)
	}

	provider, err := instrumentation.NewProvider(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	return provider, nil
}

// shutdownInstrumentation flushes pending telemetry
func shutdownInstrumentation(ctx context.Context, provider *instrumentation.Provider) {
	if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
		slog.Warn("error during instrumentation shutdown", "error", err)
	}
}
