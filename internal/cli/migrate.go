package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"activityhub/internal/adapters/storage/hub"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Long: `Create the students, activities and participation tables and their
indexes. Safe to run repeatedly. Fails if the relational backend cannot be
opened; there is no fallback here.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			if cfg.DBDriver == hub.DriverMemory {
				return fmt.Errorf("migrate needs a relational driver, got %q", cfg.DBDriver)
			}
			st, err := hub.OpenSQLite(cmd.Context(), hub.Options{Driver: cfg.DBDriver, Path: cfg.DBPath})
			if err != nil {
				return err
			}
			defer st.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready at %s\n", cfg.DBPath)
			return nil
		},
	}
}
