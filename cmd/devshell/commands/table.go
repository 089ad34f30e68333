package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Resolve every supported platform and print the environment table as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Table(cmd.Context(), cmd.OutOrStdout(), manifestOptions(cmd))
		},
	}
}
