// Package cli is the activityhub command line: serve (default), migrate,
// seed and stats.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"activityhub/internal/adapters/storage/hub"
	"activityhub/internal/config"
)

// RootOptions holds global flags for all commands. Non-empty flags override
// the environment.
type RootOptions struct {
	EnvFile string
	DBPath  string
	Driver  string

	// Config is populated before any subcommand runs.
	Config config.Config
}

// NewRootCommand creates the root command. Running it without a
// subcommand starts the server.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{}
	serve := NewServeCommand(opts, version)

	cmd := &cobra.Command{
		Use:           "activityhub",
		Short:         "Campus activities hub API server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		RunE: serve.RunE,
	}
	cmd.Flags().AddFlagSet(serve.Flags())

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "SQLite database path (overrides ACTIVITIES_DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "store driver: sqlite, sqlite3 or memory (overrides ACTIVITIES_DB_DRIVER)")

	cmd.AddCommand(serve)
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

func (o *RootOptions) load() error {
	cfg, err := config.Load(o.EnvFile)
	if err != nil {
		return err
	}
	if o.DBPath != "" {
		cfg.DBPath = o.DBPath
	}
	if o.Driver != "" {
		switch o.Driver {
		case hub.DriverModernc, hub.DriverMattn, hub.DriverMemory:
		default:
			return fmt.Errorf("--driver must be sqlite, sqlite3 or memory, got %q", o.Driver)
		}
		cfg.DBDriver = o.Driver
	}
	o.Config = cfg
	slog.SetDefault(cfg.NewLogger(os.Stderr))
	return nil
}
