package main

import (
	"fmt"

	"github.com/Leopold1975/familysite/internal/familysite/app"
	"github.com/spf13/cobra"
)

func newServeCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			a, err := app.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("app initializing error: %w", err)
			}

			a.Run(ctx)

			return nil
		},
	}
}
