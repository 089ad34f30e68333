// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/devshell/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=catalog.go -destination=mocks/mock_catalog.go -package=mocks

// Catalog is a read-only package snapshot for a single platform.
//
// Implementations must be safe for concurrent use: one catalog may be shared by
// concurrent resolutions.
type Catalog interface {
	// Lookup returns the artifact published under name.
	//
	// found is false when the snapshot has no such package. A non-nil error means the
	// catalog could not answer at all and wraps domain.ErrCatalogUnavailable.
	Lookup(ctx context.Context, name string) (artifact domain.Artifact, found bool, err error)
}

// CatalogProvider hands out the catalog slice for a platform.
type CatalogProvider interface {
	// Catalog returns the snapshot for platform.
	// It returns an error wrapping domain.ErrCatalogUnavailable if the platform cannot be served.
	Catalog(ctx context.Context, platform domain.PlatformID) (Catalog, error)
}

// CatalogSelector opens the provider a manifest's catalog section binds to.
type CatalogSelector interface {
	// Provider returns the provider for spec.
	Provider(spec domain.CatalogSpec) (CatalogProvider, error)
}

// Prefetcher is implemented by providers that can warm lookups before resolution starts.
type Prefetcher interface {
	// Prefetch loads names ahead of time. Unknown names are not an error.
	Prefetch(ctx context.Context, names []string) error
}
