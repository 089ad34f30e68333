package catalog

import (
	"context"
	"sync"

	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/devshell/internal/core/ports"
	"golang.org/x/sync/singleflight"
)

// Memo decorates a provider so that each platform slice is fetched once and each
// package lookup hits the underlying catalog once. Concurrent identical requests
// are collapsed. Failures are not memoized.
type Memo struct {
	next ports.CatalogProvider

	group    singleflight.Group
	mu       sync.Mutex
	catalogs map[domain.PlatformID]*memoCatalog
}

// NewMemo wraps next.
func NewMemo(next ports.CatalogProvider) *Memo {
	return &Memo{
		next:     next,
		catalogs: make(map[domain.PlatformID]*memoCatalog),
	}
}

// Catalog implements ports.CatalogProvider.
func (m *Memo) Catalog(ctx context.Context, platform domain.PlatformID) (ports.Catalog, error) {
	m.mu.Lock()
	if c, ok := m.catalogs[platform]; ok {
		m.mu.Unlock()
		return c, nil
	}
	m.mu.Unlock()

	result, err, _ := m.group.Do(platform.String(), func() (any, error) {
		m.mu.Lock()
		if c, ok := m.catalogs[platform]; ok {
			m.mu.Unlock()
			return c, nil
		}
		m.mu.Unlock()

		inner, err := m.next.Catalog(ctx, platform)
		if err != nil {
			return nil, err
		}

		c := &memoCatalog{
			next:    inner,
			results: make(map[string]lookupResult),
		}

		m.mu.Lock()
		m.catalogs[platform] = c
		m.mu.Unlock()

		return c, nil
	})
	if err != nil {
		return nil, err
	}

	//nolint:forcetypeassert // singleflight returns what the closure stored
	return result.(*memoCatalog), nil
}

type lookupResult struct {
	artifact domain.Artifact
	found    bool
}

// memoCatalog caches lookups of one platform slice.
type memoCatalog struct {
	next ports.Catalog

	group   singleflight.Group
	mu      sync.RWMutex
	results map[string]lookupResult
}

// Lookup implements ports.Catalog.
func (c *memoCatalog) Lookup(ctx context.Context, name string) (domain.Artifact, bool, error) {
	c.mu.RLock()
	r, ok := c.results[name]
	c.mu.RUnlock()
	if ok {
		return r.artifact.Clone(), r.found, nil
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.results[name]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		artifact, found, err := c.next.Lookup(ctx, name)
		if err != nil {
			return nil, err
		}

		r := lookupResult{artifact: artifact, found: found}
		c.mu.Lock()
		c.results[name] = r
		c.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return domain.Artifact{}, false, err
	}

	//nolint:forcetypeassert // singleflight returns what the closure stored
	r = v.(lookupResult)
	return r.artifact.Clone(), r.found, nil
}

// Prefetch implements ports.Prefetcher by delegating to the wrapped provider when it supports it.
func (m *Memo) Prefetch(ctx context.Context, names []string) error {
	if p, ok := m.next.(ports.Prefetcher); ok {
		return p.Prefetch(ctx, names)
	}
	return nil
}
