package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newSystemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "systems",
		Short: "List the platforms the manifest supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Systems(cmd.Context(), cmd.OutOrStdout(), manifestOptions(cmd))
		},
	}
}
