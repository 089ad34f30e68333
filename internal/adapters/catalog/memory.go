// Package catalog implements package catalog providers backed by memory and snapshot files.
package catalog

import (
	"context"
	"maps"
	"slices"

	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/devshell/internal/core/ports"
	"go.trai.ch/zerr"
)

// Memory is an immutable in-memory catalog for a single platform.
type Memory struct {
	entries map[string]domain.Artifact
}

// NewMemory creates a catalog from name -> artifact entries. The map is copied.
func NewMemory(entries map[string]domain.Artifact) *Memory {
	copied := make(map[string]domain.Artifact, len(entries))
	for name, a := range entries {
		if a.Name == "" {
			a.Name = name
		}
		copied[name] = a.Clone()
	}
	return &Memory{entries: copied}
}

// Lookup implements ports.Catalog.
func (m *Memory) Lookup(_ context.Context, name string) (domain.Artifact, bool, error) {
	a, ok := m.entries[name]
	if !ok {
		return domain.Artifact{}, false, nil
	}
	return a.Clone(), true, nil
}

// Len returns the number of packages in the catalog.
func (m *Memory) Len() int {
	return len(m.entries)
}

// MemoryProvider serves one Memory catalog per platform.
type MemoryProvider struct {
	catalogs map[domain.PlatformID]*Memory
}

// NewMemoryProvider creates a provider from per-platform entries.
func NewMemoryProvider(bySystem map[domain.PlatformID]map[string]domain.Artifact) *MemoryProvider {
	catalogs := make(map[domain.PlatformID]*Memory, len(bySystem))
	for platform, entries := range bySystem {
		catalogs[platform] = NewMemory(entries)
	}
	return &MemoryProvider{catalogs: catalogs}
}

// Catalog implements ports.CatalogProvider.
// A platform the provider holds no slice for is unavailable.
func (p *MemoryProvider) Catalog(_ context.Context, platform domain.PlatformID) (ports.Catalog, error) {
	c, ok := p.catalogs[platform]
	if !ok {
		return nil, zerr.With(domain.ErrCatalogUnavailable, "platform", platform.String())
	}
	return c, nil
}

// Platforms returns the platforms the provider holds slices for, sorted.
func (p *MemoryProvider) Platforms() []domain.PlatformID {
	return slices.Sorted(maps.Keys(p.catalogs))
}
