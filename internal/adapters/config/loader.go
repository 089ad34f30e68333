// Package config provides the manifest loader and runtime settings for devshell.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/devshell/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// supportedVersion is the manifest schema version this loader understands.
const supportedVersion = "1"

// Loader implements ports.ManifestLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds the manifest in cwd or the nearest parent directory and loads it.
func (l *Loader) Load(cwd string) (*domain.Manifest, error) {
	path, err := findManifest(cwd)
	if err != nil {
		return nil, err
	}
	return l.LoadFile(path)
}

// LoadFile reads and validates the manifest at path.
func (l *Loader) LoadFile(path string) (*domain.Manifest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", path)
	}

	var file ManifestFile
	if err := readAndUnmarshalYAML(absPath, &file); err != nil {
		return nil, zerr.With(err, "path", absPath)
	}

	if file.Version != "" && file.Version != supportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares unknown version %q, reading it as version %s",
			domain.ManifestFileName, file.Version, supportedVersion))
	}

	manifest, err := buildManifest(filepath.Dir(absPath), &file)
	if err != nil {
		return nil, zerr.With(err, "path", absPath)
	}
	return manifest, nil
}

// findManifest walks from cwd up to the filesystem root looking for the manifest.
func findManifest(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrManifestNotFound.Error()), "cwd", cwd)
	}

	for {
		candidate := filepath.Join(currentDir, domain.ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.ErrManifestNotFound, "cwd", cwd)
}

func buildManifest(root string, file *ManifestFile) (*domain.Manifest, error) {
	systems := domain.DefaultSystems
	if len(file.Systems) > 0 {
		systems = domain.NewPlatformIDs(file.Systems)
	}
	for _, system := range systems {
		if !system.Valid() {
			return nil, zerr.With(domain.ErrInvalidPlatform, "platform", system.String())
		}
	}

	requirements, err := buildRequirements(file.Packages)
	if err != nil {
		return nil, err
	}

	catalog, err := buildCatalogSpec(root, file.Catalog)
	if err != nil {
		return nil, err
	}

	return &domain.Manifest{
		Root:         root,
		Systems:      slices.Clone(systems),
		Requirements: requirements,
		Hook:         file.Hook,
		Catalog:      catalog,
	}, nil
}

// buildRequirements flattens the packages section. Subsets are visited in sorted
// order; package order within a subset is kept as written.
func buildRequirements(packages map[string][]string) (domain.RequirementSet, error) {
	subsets := make([]string, 0, len(packages))
	for subset := range packages {
		subsets = append(subsets, subset)
	}
	slices.Sort(subsets)

	var refs []domain.PackageRef
	for _, subset := range subsets {
		for _, name := range packages[subset] {
			refs = append(refs, domain.NewPackageRef(domain.Subset(subset), name))
		}
	}

	return domain.NewRequirementSet(refs...)
}

func buildCatalogSpec(root string, dto CatalogDTO) (domain.CatalogSpec, error) {
	source := domain.CatalogSource(dto.Source)

	switch source {
	case "", domain.CatalogSourceSnapshot:
		path := dto.Path
		if path == "" {
			path = domain.DefaultSnapshotFileName
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		return domain.CatalogSpec{Source: domain.CatalogSourceSnapshot, Path: path}, nil
	case domain.CatalogSourceNixHub:
		return domain.CatalogSpec{Source: domain.CatalogSourceNixHub}, nil
	default:
		return domain.CatalogSpec{}, zerr.With(domain.ErrInvalidCatalogSource, "source", dto.Source)
	}
}

func readAndUnmarshalYAML[T any](path string, target *T) error {
	// #nosec G304 -- path is the discovered or user supplied manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return zerr.Wrap(err, domain.ErrManifestReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(data, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrManifestParseFailed.Error())
	}

	return nil
}
