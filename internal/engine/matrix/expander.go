// Package matrix expands the declared platform set into the per-platform work list.
package matrix

import (
	"slices"

	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/zerr"
)

// Expand returns every declared platform exactly once, in sorted order.
// Processing order does not affect the result; sorting only keeps logs and spans stable.
func Expand(platforms []domain.PlatformID) ([]domain.PlatformID, error) {
	if len(platforms) == 0 {
		return nil, domain.ErrNoPlatforms
	}

	out := make([]domain.PlatformID, 0, len(platforms))
	for _, p := range platforms {
		if !p.Valid() {
			return nil, zerr.With(domain.ErrInvalidPlatform, "platform", string(p))
		}
		out = append(out, p)
	}

	slices.Sort(out)
	return slices.Compact(out), nil
}
