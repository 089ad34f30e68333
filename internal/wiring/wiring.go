// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/devshell/internal/adapters/catalog"
	_ "go.trai.ch/devshell/internal/adapters/config"
	_ "go.trai.ch/devshell/internal/adapters/logger"
	_ "go.trai.ch/devshell/internal/adapters/nixhub"
	_ "go.trai.ch/devshell/internal/adapters/shell"
	_ "go.trai.ch/devshell/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/devshell/internal/app"
	_ "go.trai.ch/devshell/internal/engine/driver"
)
