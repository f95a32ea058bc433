package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/freerooms/internal/instrumentation"
	"github.com/teemow/freerooms/internal/rooms"
)

func newCheckCmd() *cobra.Command {
	var (
		showBusy       bool
		pushgatewayURL string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Print the meeting rooms that are free right now",
		Long: `Lists your calendars, keeps the ones whose name contains the room marker
and looks up the next event of each room. Rooms that are free are printed with
the time their next booking starts, e.g.

  БЦ Риальто - Room A, is free till 2024-01-01 10:00:00

Rooms that could not be checked are logged and make the command exit non-zero
after all other rooms have been reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), showBusy, pushgatewayURL)
		},
	}

	cmd.Flags().BoolVar(&showBusy, "show-busy", false, "Also print busy rooms and when they become free")
	cmd.Flags().StringVar(&pushgatewayURL, "pushgateway-url", "", "Push the run's metrics to this Prometheus Pushgateway. Can also use PROMETHEUS_PUSHGATEWAY_URL env var.")

	return cmd
}

func runCheck(ctx context.Context, out io.Writer, showBusy bool, pushgatewayURL string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := newInstrumentation(ctx, func(c *instrumentation.Config) {
		if pushgatewayURL != "" {
			c.PushgatewayURL = pushgatewayURL
			c.Enabled = true
		}
	})
	if err != nil {
		return err
	}
	defer shutdownInstrumentation(ctx, provider)

	checker, err := newChecker(ctx, provider.Metrics())
	if err != nil {
		return err
	}

	result, checkErr := executeCheck(ctx, out, checker, showBusy)

	// Push whatever was recorded, including failed runs
	if provider.PushEnabled() {
		if err := provider.Push(ctx); err != nil {
			slog.Warn("failed to push metrics", "error", err)
		}
	}

	if checkErr != nil {
		return checkErr
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("some rooms could not be checked: %w", err)
	}
	return nil
}

// executeCheck runs one check and writes the report
func executeCheck(ctx context.Context, out io.Writer, checker *rooms.Checker, showBusy bool) (*rooms.Result, error) {
	result, err := checker.Check(ctx)
	if err != nil {
		return nil, fmt.Errorf("room check failed: %w", err)
	}

	if err := rooms.NewReporter(out, showBusy).Report(result.Rooms); err != nil {
		return result, fmt.Errorf("failed to write report: %w", err)
	}

	return result, nil
}
