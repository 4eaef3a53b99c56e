package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"activityhub/internal/adapters/storage/hub"
	"activityhub/internal/adapters/storage/seed"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert seed students and activities into empty tables",
		Long: `Insert the seed roster. Each table is filled only when it is empty, so
running seed twice does not duplicate rows.

Example:
  activityhub seed --db ./database.sqlite --file ./fixtures/club_fair.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			if cfg.DBDriver == hub.DriverMemory {
				return fmt.Errorf("seed needs a relational driver, got %q", cfg.DBDriver)
			}
			if file == "" {
				file = cfg.SeedFile
			}
			fixtures, err := seed.Load(file)
			if err != nil {
				return err
			}

			st, err := hub.OpenSQLite(cmd.Context(), hub.Options{Driver: cfg.DBDriver, Path: cfg.DBPath})
			if err != nil {
				return err
			}
			defer st.Close()

			students, activities, err := st.Seed(cmd.Context(), fixtures)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d students and %d activities\n", students, activities)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML seed file (default: ACTIVITIES_SEED_FILE or the built-in roster)")
	return cmd
}
