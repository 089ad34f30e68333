// Package shell activates resolved environments in real shell processes.
package shell

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/devshell/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// defaultShell runs hooks and is the interactive fallback.
	defaultShell = "/bin/sh"

	// execScript sources the hook given as $1 and replaces itself with the command.
	execScript = `. "$1"; shift; exec "$@"`
)

// Activator implements ports.Activator with os/exec.
type Activator struct {
	logger      ports.Logger
	shell       string
	interactive string
	environ     func() []string
}

// Option configures an Activator.
type Option func(*Activator)

// WithInteractiveShell sets the shell Enter starts. The default is $SHELL, then /bin/sh.
func WithInteractiveShell(path string) Option {
	return func(a *Activator) {
		a.interactive = path
	}
}

// WithEnviron replaces the source of the inherited system environment.
func WithEnviron(environ func() []string) Option {
	return func(a *Activator) {
		a.environ = environ
	}
}

// NewActivator creates a new Activator.
func NewActivator(logger ports.Logger, opts ...Option) *Activator {
	a := &Activator{
		logger:  logger,
		shell:   defaultShell,
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.interactive == "" {
		a.interactive = os.Getenv("SHELL")
	}
	if a.interactive == "" {
		a.interactive = defaultShell
	}
	return a
}

// Exec runs argv inside the environment. The hook runs once, after PATH is set and
// before argv starts. The child's exit code is attached as "exit_code".
func (a *Activator) Exec(
	ctx context.Context,
	desc domain.EnvironmentDescriptor,
	argv []string,
	streams ports.Streams,
) error {
	if len(argv) == 0 {
		return domain.ErrNoCommand
	}

	env := resolveEnvironment(a.environ(), desc)

	var cmd *exec.Cmd
	if desc.Hook() == "" {
		executable := argv[0]
		if !filepath.IsAbs(executable) {
			if lp, err := lookPath(executable, env); err == nil {
				executable = lp
			}
		}
		cmd = exec.CommandContext(ctx, executable, argv[1:]...) //nolint:gosec // user provided command
		cmd.Args[0] = argv[0]
	} else {
		hookPath, cleanup, err := writeHook(desc.Hook())
		if err != nil {
			return err
		}
		defer cleanup()

		args := append([]string{"-c", execScript, "devshell", hookPath}, argv...)
		cmd = exec.CommandContext(ctx, a.shell, args...) //nolint:gosec // user provided command
	}

	a.logger.Debug("activating environment",
		"platform", desc.Platform().String(), "command", strings.Join(argv, " "))

	return run(cmd, env, streams)
}

// Enter starts an interactive shell whose startup file runs the hook once.
func (a *Activator) Enter(ctx context.Context, desc domain.EnvironmentDescriptor, streams ports.Streams) error {
	env := resolveEnvironment(a.environ(), desc)

	rcPath, cleanup, err := writeHook(desc.Hook())
	if err != nil {
		return err
	}
	defer cleanup()

	l, cleanupLaunch, err := a.interactiveLaunch(rcPath)
	if err != nil {
		return err
	}
	defer cleanupLaunch()

	cmd := exec.CommandContext(ctx, l.shell, l.args...) //nolint:gosec // user shell
	env = append(env, l.env...)

	a.logger.Debug("entering environment", "platform", desc.Platform().String(), "shell", l.shell)

	return run(cmd, env, streams)
}

// launch is how an interactive shell is started so that it sources the hook once.
type launch struct {
	shell string
	args  []string
	env   []string
}

// interactiveLaunch picks the startup mechanism of the configured shell. Shells
// with no known way to source a file at startup are replaced by /bin/sh.
func (a *Activator) interactiveLaunch(rcPath string) (launch, func(), error) {
	noop := func() {}

	switch filepath.Base(a.interactive) {
	case "bash":
		return launch{
			shell: a.interactive,
			args:  []string{"--noprofile", "--rcfile", rcPath, "-i"},
		}, noop, nil
	case "zsh":
		// zsh ignores $ENV outside sh emulation; it reads $ZDOTDIR/.zshrc instead.
		dir, err := os.MkdirTemp("", "devshell-zdotdir-*")
		if err != nil {
			return launch{}, nil, zerr.Wrap(err, "failed to create zsh startup directory")
		}
		cleanup := func() { _ = os.RemoveAll(dir) }

		rc := ". " + quote(rcPath) + "\n"
		if err := os.WriteFile(filepath.Join(dir, ".zshrc"), []byte(rc), domain.FilePerm); err != nil {
			cleanup()
			return launch{}, nil, zerr.Wrap(err, "failed to write zsh startup file")
		}
		return launch{
			shell: a.interactive,
			args:  []string{"-i"},
			env:   []string{"ZDOTDIR=" + dir},
		}, cleanup, nil
	case "sh", "dash", "ash", "ksh", "mksh", "yash", "posh":
		// POSIX shells read $ENV when interactive.
		return launch{
			shell: a.interactive,
			args:  []string{"-i"},
			env:   []string{"ENV=" + rcPath},
		}, noop, nil
	default:
		a.logger.Warn("shell cannot run the hook at startup, using "+defaultShell, "shell", a.interactive)
		return launch{
			shell: defaultShell,
			args:  []string{"-i"},
			env:   []string{"ENV=" + rcPath},
		}, noop, nil
	}
}

// quote wraps s in single quotes for POSIX shells.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func run(cmd *exec.Cmd, env []string, streams ports.Streams) error {
	cmd.Env = env
	cmd.Stdin = streams.Stdin
	cmd.Stdout = streams.Stdout
	cmd.Stderr = streams.Stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.Wrap(err, domain.ErrActivationFailed.Error()), "exit_code", exitCode)
	}

	return nil
}

// writeHook stores the hook in a private temporary file and returns a cleanup func.
func writeHook(hook string) (string, func(), error) {
	f, err := os.CreateTemp("", "devshell-hook-*.sh")
	if err != nil {
		return "", nil, zerr.Wrap(err, "failed to create hook file")
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }

	if _, err := f.WriteString(hook + "\n"); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, zerr.Wrap(err, "failed to write hook file")
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, zerr.Wrap(err, "failed to write hook file")
	}

	return path, cleanup, nil
}
