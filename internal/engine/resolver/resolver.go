// Package resolver maps a requirement set onto one platform's catalog snapshot.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/devshell/internal/core/ports"
	"go.trai.ch/zerr"
)

// Resolve looks up every requirement in catalog and returns the matched artifacts,
// deduplicated by ID and sorted by name then ID.
//
// All misses are collected and reported together as a *domain.ResolutionError in
// requirement order. A catalog that cannot answer aborts the resolution immediately
// with an error wrapping domain.ErrCatalogUnavailable.
func Resolve(
	ctx context.Context,
	platform domain.PlatformID,
	requirements domain.RequirementSet,
	catalog ports.Catalog,
) ([]domain.Artifact, error) {
	if requirements.IsEmpty() {
		return nil, domain.ErrEmptyRequirements
	}

	refs := requirements.Refs()
	artifacts := make([]domain.Artifact, 0, len(refs))
	var missing []string

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := ref.Name.String()
		artifact, found, err := catalog.Lookup(ctx, name)
		if err != nil {
			return nil, catalogFailure(err, platform, name)
		}
		if !found {
			if !slices.Contains(missing, name) {
				missing = append(missing, name)
			}
			continue
		}

		if artifact.Name == "" {
			artifact.Name = name
		}
		artifacts = append(artifacts, artifact)
	}

	if len(missing) > 0 {
		return nil, &domain.ResolutionError{Platform: platform, Missing: missing}
	}

	return domain.DedupArtifacts(artifacts), nil
}

// catalogFailure makes sure a lookup failure is reported as ErrCatalogUnavailable.
func catalogFailure(err error, platform domain.PlatformID, name string) error {
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		err = fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}
	wrapped := zerr.Wrap(err, "catalog lookup failed")
	wrapped = zerr.With(wrapped, "platform", string(platform))
	return zerr.With(wrapped, "package", name)
}
