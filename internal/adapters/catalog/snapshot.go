package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// snapshotFile is the on-disk layout: platform -> package name -> artifact.
type snapshotFile map[string]map[string]domain.Artifact

// LoadSnapshot reads a snapshot file. Files ending in .yaml or .yml are parsed as YAML,
// anything else as JSON with comments and trailing commas allowed.
func LoadSnapshot(path string) (*MemoryProvider, error) {
	//nolint:gosec // path comes from the manifest the user points us at
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSnapshotReadFailed.Error()), "path", path)
	}

	provider, err := ParseSnapshot(data, isYAML(path))
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return provider, nil
}

// ParseSnapshot decodes snapshot content.
func ParseSnapshot(data []byte, asYAML bool) (*MemoryProvider, error) {
	var file snapshotFile

	if asYAML {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, zerr.Wrap(err, domain.ErrSnapshotParseFailed.Error())
		}
	} else {
		if err := json.Unmarshal(jsonc.ToJSON(data), &file); err != nil {
			return nil, zerr.Wrap(err, domain.ErrSnapshotParseFailed.Error())
		}
	}

	bySystem := make(map[domain.PlatformID]map[string]domain.Artifact, len(file))
	for system, entries := range file {
		platform := domain.PlatformID(system)
		if !platform.Valid() {
			return nil, zerr.With(domain.ErrSnapshotParseFailed, "platform", system)
		}

		normalized := make(map[string]domain.Artifact, len(entries))
		for name, a := range entries {
			if a.Name == "" {
				a.Name = name
			}
			if a.ID == "" && len(a.Outputs) > 0 {
				a.ID = a.Outputs[0]
			}
			if a.ID == "" {
				err := zerr.With(domain.ErrSnapshotParseFailed, "platform", system)
				return nil, zerr.With(err, "package", name)
			}
			normalized[name] = a
		}
		bySystem[platform] = normalized
	}

	return NewMemoryProvider(bySystem), nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
