package ports

import "go.trai.ch/devshell/internal/core/domain"

// ManifestLoader defines the interface for loading the environment manifest.
//
//go:generate go run go.uber.org/mock/mockgen -source=manifest_loader.go -destination=mocks/mock_manifest_loader.go -package=mocks
type ManifestLoader interface {
	// Load finds the manifest starting at cwd and walking up, and returns it validated.
	Load(cwd string) (*domain.Manifest, error)

	// LoadFile reads the manifest at path.
	LoadFile(path string) (*domain.Manifest, error)
}
