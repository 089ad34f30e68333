package ports

import (
	"context"
	"io"

	"go.trai.ch/devshell/internal/core/domain"
)

// Streams bundles the standard streams of an activated process.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Activator makes a resolved environment live in a real process.
//
//go:generate go run go.uber.org/mock/mockgen -source=activator.go -destination=mocks/mock_activator.go -package=mocks
type Activator interface {
	// Exec runs argv inside the environment. The hook runs once, after the
	// search path is established and before argv starts.
	Exec(ctx context.Context, desc domain.EnvironmentDescriptor, argv []string, streams Streams) error

	// Enter starts an interactive shell inside the environment and returns when it exits.
	Enter(ctx context.Context, desc domain.EnvironmentDescriptor, streams Streams) error
}
