package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/support-desk/internal/persistence"
)

func newMigrateCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.requirePostgres(); err != nil {
				return err
			}
			if err := persistence.RunMigrations(cmd.Context(), env.pg.PoolHandle(), env.logger); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			names, err := persistence.MigrationNames()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "  ✓ %s\n", name)
			}
			return nil
		},
	}
}
