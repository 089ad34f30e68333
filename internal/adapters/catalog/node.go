package catalog

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/devshell/internal/adapters/nixhub"
	"go.trai.ch/devshell/internal/core/ports"
)

// SelectorNodeID is the unique identifier for the catalog selector Graft node.
const SelectorNodeID graft.ID = "adapter.catalog_selector"

func init() {
	graft.Register(graft.Node[ports.CatalogSelector]{
		ID:        SelectorNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{nixhub.NodeID},
		Run: func(ctx context.Context) (ports.CatalogSelector, error) {
			remote, err := graft.Dep[*nixhub.Provider](ctx)
			if err != nil {
				return nil, err
			}
			return NewSelector(remote), nil
		},
	})
}
