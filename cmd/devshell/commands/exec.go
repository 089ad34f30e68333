package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/devshell/internal/app"
)

func (c *CLI) newExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec [--system S] [--] command [args...]",
		Short: "Run a command inside the environment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			system, _ := cmd.Flags().GetString("system")
			return c.app.Exec(cmd.Context(), args, streams(cmd), app.ExecOptions{
				ManifestOptions: manifestOptions(cmd),
				System:          system,
			})
		},
	}
	cmd.Flags().StringP("system", "s", "", "Platform to activate (default: the host platform)")
	// Flags after the command belong to the command.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func (c *CLI) newEnterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enter",
		Short: "Start an interactive shell inside the environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			system, _ := cmd.Flags().GetString("system")
			return c.app.Enter(cmd.Context(), streams(cmd), app.ExecOptions{
				ManifestOptions: manifestOptions(cmd),
				System:          system,
			})
		},
	}
	cmd.Flags().StringP("system", "s", "", "Platform to activate (default: the host platform)")
	return cmd
}
