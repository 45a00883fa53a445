package main

import (
	"fmt"

	"github.com/Leopold1975/familysite/internal/pkg/pgtools"
	"github.com/spf13/cobra"
)

func newMigrateCommand(load configLoader) *cobra.Command {
	var reload bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations up to the configured version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			if reload {
				cfg.PostgresDB.Reload = true
			}

			if err := pgtools.ApplyMigration(cfg.PostgresDB); err != nil {
				return fmt.Errorf("migrate error: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", cfg.PostgresDB.Version)

			return nil
		},
	}

	cmd.Flags().BoolVar(&reload, "reload", false, "roll every migration back before applying")

	return cmd
}
