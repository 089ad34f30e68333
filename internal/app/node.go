package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/devshell/internal/adapters/catalog" //nolint:depguard // Wired in app layer
	"go.trai.ch/devshell/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/devshell/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/devshell/internal/adapters/shell"   //nolint:depguard // Wired in app layer
	"go.trai.ch/devshell/internal/core/ports"
	"go.trai.ch/devshell/internal/engine/driver"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
type Components struct {
	App      *App
	Logger   ports.Logger
	Settings *config.Settings
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			catalog.SelectorNodeID,
			driver.NodeID,
			shell.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ManifestLoader](ctx)
			if err != nil {
				return nil, err
			}

			selector, err := graft.Dep[ports.CatalogSelector](ctx)
			if err != nil {
				return nil, err
			}

			drv, err := graft.Dep[*driver.Driver](ctx)
			if err != nil {
				return nil, err
			}

			activator, err := graft.Dep[ports.Activator](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, selector, drv, activator, log), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.SettingsNodeID,
		},
		Run: runComponentsNode,
	})
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	settings, err := graft.Dep[*config.Settings](ctx)
	if err != nil {
		return nil, err
	}

	ApplySettings(log, settings)

	return &Components{
		App:      app,
		Logger:   log,
		Settings: settings,
	}, nil
}

// ApplySettings configures the logger format and level from settings.
// Loggers other than the slog adapter are left untouched.
func ApplySettings(log ports.Logger, settings *config.Settings) {
	l, ok := log.(*logger.Logger)
	if !ok || settings == nil {
		return
	}
	l.SetJSON(settings.JSONLogs())
	l.SetLevel(logger.ParseLevel(settings.Log.Level))
}
