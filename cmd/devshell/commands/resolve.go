package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/devshell/internal/adapters/render"
	"go.trai.ch/devshell/internal/app"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	formats := make([]string, len(render.Formats))
	for i, f := range render.Formats {
		formats[i] = string(f)
	}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the environment of one platform and render it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			system, _ := cmd.Flags().GetString("system")
			format, _ := cmd.Flags().GetString("format")
			return c.app.Resolve(cmd.Context(), cmd.OutOrStdout(), app.ResolveOptions{
				ManifestOptions: manifestOptions(cmd),
				System:          system,
				Format:          format,
			})
		},
	}
	cmd.Flags().StringP("system", "s", "", "Platform to resolve (default: the host platform)")
	cmd.Flags().StringP("format", "f", string(render.FormatShell), "Output format ("+strings.Join(formats, ", ")+")")
	return cmd
}
