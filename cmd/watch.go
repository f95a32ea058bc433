package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/freerooms/internal/instrumentation"
	"github.com/teemow/freerooms/internal/rooms"
	"github.com/teemow/freerooms/internal/server"
)

func newWatchCmd() *cobra.Command {
	var (
		schedule    string
		metricsAddr string
		showBusy    bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Check the rooms on a schedule and expose metrics",
		Long: `Runs the room check immediately and then on a cron schedule until
interrupted. Each run prints the same report as "check".

While running, a metrics server exposes:
  /metrics           Prometheus metrics (requires METRICS_EXPORTER=prometheus)
  /healthz           liveness
  /readyz            ready once the first check succeeded
  /healthz/detailed  last check time and error

Schedules use cron syntax, e.g. "*/10 9-18 * * MON-FRI" or "@every 5m".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), cmd.OutOrStdout(), schedule, metricsAddr, showBusy)
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", getEnvOrDefault("FREEROOMS_SCHEDULE", rooms.DefaultSchedule), "Cron schedule of the checks. Can also use FREEROOMS_SCHEDULE env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", getEnvOrDefault("METRICS_ADDR", server.DefaultMetricsAddr), "Metrics server address. Can also use METRICS_ADDR env var.")
	cmd.Flags().BoolVar(&showBusy, "show-busy", false, "Also print busy rooms and when they become free")

	return cmd
}

func runWatch(ctx context.Context, out io.Writer, schedule, metricsAddr string, showBusy bool) error {
	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// A long-running watcher always records metrics
	provider, err := newInstrumentation(ctx, func(c *instrumentation.Config) {
		c.Enabled = true
	})
	if err != nil {
		return err
	}
	defer shutdownInstrumentation(ctx, provider)

	health := server.NewHealthChecker()

	var metricsServer *server.MetricsServer
	serverErr := make(chan error, 1)
	if provider.PrometheusEnabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsAddr,
			InstrumentationProvider: provider,
			Health:                  health,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil {
				serverErr <- err
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Warn("error during metrics server shutdown", "error", err)
			}
		}()
	} else {
		slog.Warn("metrics server disabled: it requires the prometheus metrics exporter",
			"exporter", provider.Config().MetricsExporter)
	}

	checker, err := newChecker(ctx, provider.Metrics())
	if err != nil {
		return err
	}

	scheduler, err := rooms.NewScheduler(checker, schedule, newReportHandler(out, showBusy, health), slog.Default())
	if err != nil {
		return err
	}

	scheduler.Start(ctx)
	health.SetReady(true)

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err = <-serverErr:
		err = fmt.Errorf("metrics server stopped with error: %w", err)
	}

	health.SetShuttingDown()
	health.SetReady(false)
	scheduler.Stop()

	return err
}

// newReportHandler prints each scheduled result and feeds the health checker
func newReportHandler(out io.Writer, showBusy bool, health *server.HealthChecker) rooms.ResultHandler {
	var mu sync.Mutex
	reporter := rooms.NewReporter(out, showBusy)

	return func(_ context.Context, result *rooms.Result, err error) {
		if err != nil {
			health.RecordCheck(time.Now(), err)
			slog.Error("room check failed", "error", err)
			return
		}
		// Rooms that could not be checked fail readiness as well
		health.RecordCheck(result.CheckedAt, result.Err())

		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "# %s\n", result.CheckedAt.Format(rooms.TimestampLayout))
		if err := reporter.Report(result.Rooms); err != nil {
			slog.Warn("failed to write report", "error", err)
		}
	}
}
