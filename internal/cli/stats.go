package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"activityhub/internal/adapters/storage/hub"
	"activityhub/internal/adapters/storage/seed"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print collection counts as JSON",
		Long: `Open the configured store the same way serve does (including the
in-memory fallback) and print totalStudents, totalActivities and
totalParticipations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			fixtures, err := seed.Load(cfg.SeedFile)
			if err != nil {
				return err
			}
			opened := hub.Open(cmd.Context(), hub.Options{Driver: cfg.DBDriver, Path: cfg.DBPath, Seeds: fixtures})
			defer opened.Store.Close()

			stats, err := opened.Store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(stats)
		},
	}
}
