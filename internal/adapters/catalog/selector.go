package catalog

import (
	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/devshell/internal/core/ports"
	"go.trai.ch/zerr"
)

// Selector opens the catalog provider a manifest binds to.
type Selector struct {
	remote ports.CatalogProvider
}

// NewSelector creates a Selector. remote serves manifests with source "nixhub".
func NewSelector(remote ports.CatalogProvider) *Selector {
	return &Selector{remote: remote}
}

// Provider returns the provider for spec.
func (s *Selector) Provider(spec domain.CatalogSpec) (ports.CatalogProvider, error) {
	switch spec.Source {
	case domain.CatalogSourceSnapshot, "":
		provider, err := LoadSnapshot(spec.Path)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case domain.CatalogSourceNixHub:
		if s.remote == nil {
			return nil, zerr.With(domain.ErrCatalogUnavailable, "source", string(spec.Source))
		}
		return NewMemo(s.remote), nil
	default:
		return nil, zerr.With(domain.ErrInvalidCatalogSource, "source", string(spec.Source))
	}
}
