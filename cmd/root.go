package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/freerooms/internal/logging"
	"github.com/teemow/freerooms/internal/rooms"
)

// rootCmd represents the base command for the freerooms application
var rootCmd = &cobra.Command{
	Use:   "freerooms",
	Short: "Shows which meeting rooms are free right now",
	Long: `freerooms reads the Google Calendar resource calendars of your office's
meeting rooms and prints the rooms that are free right now, together with the
time their next booking starts.

It can run as:
  - A one-shot check (default)
  - A scheduler that repeats the check and exposes Prometheus metrics`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger, err := logging.NewLogger(cmd.ErrOrStderr(), globals.debug, globals.logFormat)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

// globalFlags holds the settings shared by all commands
type globalFlags struct {
	credentialsFile string
	tokenFile       string
	marker          string
	timeZone        string
	authPort        int
	debug           bool
	logFormat       string
}

var globals globalFlags

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "freerooms version %s\n" .Version}}`)

	// If no subcommand is provided, run the check command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "check")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.credentialsFile, "credentials", getEnvOrDefault("FREEROOMS_CREDENTIALS_FILE", "credentials.json"), "Path to the OAuth client secrets downloaded from Google Cloud. Can also use FREEROOMS_CREDENTIALS_FILE env var.")
	flags.StringVar(&globals.tokenFile, "token-file", getEnvOrDefault("FREEROOMS_TOKEN_FILE", "token.json"), "Path of the cached OAuth token. Can also use FREEROOMS_TOKEN_FILE env var.")
	flags.StringVar(&globals.marker, "marker", getEnvOrDefault("FREEROOMS_MARKER", rooms.DefaultMarker), "Text that room calendar names contain; empty selects every calendar. Can also use FREEROOMS_MARKER env var.")
	flags.StringVar(&globals.timeZone, "time-zone", getEnvOrDefault("FREEROOMS_TIME_ZONE", rooms.DefaultTimeZone), "IANA time zone events are requested in and all-day events are read in. Can also use FREEROOMS_TIME_ZONE env var.")
	flags.IntVar(&globals.authPort, "auth-port", 0, "Loopback port for the OAuth redirect during login (0 picks a free port)")
	flags.BoolVar(&globals.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&globals.logFormat, "log-format", logging.FormatText, "Log format: text or json")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newCalendarsCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newVersionCmd())
}
