// Package commands implements the CLI commands for devshell.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/devshell/internal/app"
	"go.trai.ch/devshell/internal/build"
	"go.trai.ch/devshell/internal/core/ports"
)

// CLI represents the command line interface for devshell.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Systems(ctx context.Context, w io.Writer, opts app.ManifestOptions) error
	Resolve(ctx context.Context, w io.Writer, opts app.ResolveOptions) error
	Table(ctx context.Context, w io.Writer, opts app.ManifestOptions) error
	Exec(ctx context.Context, argv []string, streams ports.Streams, opts app.ExecOptions) error
	Enter(ctx context.Context, streams ports.Streams, opts app.ExecOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "devshell",
		Short:         "Reproducible development environments for every platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("manifest", "m", "", "Path to the manifest (default: discover devshell.yaml)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newSystemsCmd())
	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newTableCmd())
	rootCmd.AddCommand(c.newExecCmd())
	rootCmd.AddCommand(c.newEnterCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// SetInput sets the input stream handed to activated shells.
func (c *CLI) SetInput(in io.Reader) {
	c.rootCmd.SetIn(in)
}

// SetJSONLogsHook sets up a PersistentPreRun function that reports the
// --json-logs flag to fn before any command runs.
func (c *CLI) SetJSONLogsHook(fn func(enabled bool)) {
	c.rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		enabled, err := cmd.Flags().GetBool("json-logs")
		if err != nil {
			return err
		}
		fn(enabled)
		return nil
	}
}

func manifestOptions(cmd *cobra.Command) app.ManifestOptions {
	path, _ := cmd.Flags().GetString("manifest")
	return app.ManifestOptions{Path: path}
}

func streams(cmd *cobra.Command) ports.Streams {
	return ports.Streams{
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}
}
