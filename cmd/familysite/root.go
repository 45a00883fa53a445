package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Leopold1975/familysite/internal/pkg/config"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "familysite",
		Short:         "Family website server and admin tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file")

	load := func() (config.Config, error) {
		return config.New(configPath)
	}

	rootCmd.AddCommand(newServeCommand(load))
	rootCmd.AddCommand(newMigrateCommand(load))
	rootCmd.AddCommand(newUserCommand(load))

	return rootCmd
}

type configLoader func() (config.Config, error)

// signalContext stops on the same signals the server treats as shutdown.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	interruptSignals := []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP}

	return signal.NotifyContext(parent, interruptSignals...)
}
