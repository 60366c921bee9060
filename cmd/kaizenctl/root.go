package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "kaizenctl",
		Short:        "Operational tools for the Kaizen portal",
		SilenceUsage: true,
	}
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newIDCmd())
	cmd.AddCommand(newApprovalLevelCmd())
	return cmd
}
