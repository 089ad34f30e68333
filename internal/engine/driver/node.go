package driver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/devshell/internal/adapters/config"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/devshell/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/devshell/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/devshell/internal/core/ports"
)

// NodeID is the unique identifier for the driver Graft node.
const NodeID graft.ID = "engine.driver"

func init() {
	graft.Register(graft.Node[*Driver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			telemetry.TracerNodeID,
			logger.NodeID,
			config.SettingsNodeID,
		},
		Run: func(ctx context.Context) (*Driver, error) {
			tracer, err := graft.Dep[ports.Tracer](ctx)
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

			policy, err := settings.FailurePolicy()
			if err != nil {
				return nil, err
			}

			return New(
				tracer,
				log,
				WithPolicy(policy),
				WithParallelism(settings.Build.Parallelism),
			), nil
		},
	})
}
