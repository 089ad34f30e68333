// Package assembler packages resolved artifacts and a hook into an environment descriptor.
package assembler

import (
	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/zerr"
)

// Assemble builds the descriptor for platform. It is pure: the inputs are copied,
// deduplicated by artifact ID and never modified. An empty hook means no startup action.
func Assemble(platform domain.PlatformID, artifacts []domain.Artifact, hook string) (domain.EnvironmentDescriptor, error) {
	if !platform.Valid() {
		return domain.EnvironmentDescriptor{}, zerr.With(domain.ErrInvalidPlatform, "platform", string(platform))
	}

	for i, a := range artifacts {
		if a.ID == "" {
			err := zerr.With(domain.ErrInvalidArtifact, "name", a.Name)
			return domain.EnvironmentDescriptor{}, zerr.With(err, "index", i)
		}
	}

	return domain.NewEnvironmentDescriptor(platform, artifacts, hook), nil
}
