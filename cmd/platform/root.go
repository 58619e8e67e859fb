package main

import (
	"github.com/spf13/cobra"

	"github.com/bizdesk/platform/pkg/config"
)

func newRootCmd() *cobra.Command {
	var envFiles []string

	cmd := &cobra.Command{
		Use:           "platform",
		Short:         "Multi-tenant business platform server and tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if len(envFiles) == 0 {
				return nil
			}
			return config.LoadEnv(envFiles...)
		},
	}
	cmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Load environment from these .env files before reading config")

	cmd.AddCommand(newServeCmd(), newMigrateCmd(), newResolveCmd())
	return cmd
}
