// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"
	"time"

	"fjacquet/stmt-insight/internal/config"
	"fjacquet/stmt-insight/internal/container"
	"fjacquet/stmt-insight/internal/dateutils"
	"fjacquet/stmt-insight/internal/history"
	"fjacquet/stmt-insight/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input        string
	Output       string
	ConfigFile   string
	Organization string
	AsOf         string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.OrDefault(nil)

	// AppConfig is loaded before any subcommand runs
	AppConfig *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "stmt-insight",
		Short: "Extract transactions from bank statements and analyze them.",
		Long: `stmt-insight extracts transactions from PDF, CSV, CAMT.053 and pasted
statement text, categorizes them, and flags anomalies and recurring payments
against an organization's transaction history.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to stmt-insight!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv(Log)
			cfg, err := config.InitializeConfigFromFile(SharedFlags.ConfigFile)
			if err != nil {
				return err
			}
			AppConfig = cfg
			Log = config.ConfigureLogging(cfg)
			return nil
		},
	}

	// SharedFlags are accessible to all commands
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file (default: stdout)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default: search for config.yaml)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.Organization, "org", "", "Organization whose history is analyzed")
	Cmd.PersistentFlags().StringVar(&SharedFlags.AsOf, "as-of", "", "Reference date for history windows (default: today)")
}

// NewContainer builds the application container from the loaded config.
func NewContainer(ctx context.Context, provider history.Provider) (*container.Container, error) {
	if AppConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return container.NewContainer(ctx, AppConfig, provider)
}

// Clock returns the reference time selected with --as-of.
func Clock() (func() time.Time, error) {
	if SharedFlags.AsOf == "" {
		return time.Now, nil
	}
	asOf, ok := dateutils.NormalizeDate(SharedFlags.AsOf)
	if !ok {
		return nil, fmt.Errorf("invalid --as-of date: %s", SharedFlags.AsOf)
	}
	// end of day so records dated on asOf stay inside the window
	asOf = asOf.Add(24*time.Hour - time.Nanosecond)
	return func() time.Time { return asOf }, nil
}
