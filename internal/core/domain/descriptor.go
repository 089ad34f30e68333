package domain

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// EnvironmentDescriptor is the resolved, ready-to-activate bundle for one platform.
// It is immutable once constructed; accessors return copies.
type EnvironmentDescriptor struct {
	platform  PlatformID
	artifacts []Artifact
	hook      string
}

// NewEnvironmentDescriptor builds a descriptor. Artifacts are deduplicated by ID.
func NewEnvironmentDescriptor(platform PlatformID, artifacts []Artifact, hook string) EnvironmentDescriptor {
	return EnvironmentDescriptor{
		platform:  platform,
		artifacts: DedupArtifacts(artifacts),
		hook:      hook,
	}
}

// Platform returns the platform the descriptor was resolved for.
func (d EnvironmentDescriptor) Platform() PlatformID {
	return d.platform
}

// Artifacts returns a copy of the resolved artifacts, sorted by name then ID.
func (d EnvironmentDescriptor) Artifacts() []Artifact {
	out := make([]Artifact, len(d.artifacts))
	for i, a := range d.artifacts {
		out[i] = a.Clone()
	}
	return out
}

// Hook returns the startup shell text. Empty means no startup action.
func (d EnvironmentDescriptor) Hook() string {
	return d.hook
}

// SearchPath returns every artifact's bin directories in artifact order, without duplicates.
func (d EnvironmentDescriptor) SearchPath() []string {
	var dirs []string
	for _, a := range d.artifacts {
		for _, dir := range a.BinDirs() {
			if !slices.Contains(dirs, dir) {
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs
}

// Fingerprint returns a stable hash of the descriptor's observable content.
func (d EnvironmentDescriptor) Fingerprint() string {
	hasher := xxhash.New()

	_, _ = hasher.WriteString(string(d.platform))
	_, _ = hasher.Write([]byte{0})

	for _, a := range d.artifacts {
		_, _ = hasher.WriteString(a.ID)
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.WriteString(a.Name)
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.WriteString(a.Version)
		_, _ = hasher.Write([]byte{0})
		for _, out := range a.Outputs {
			_, _ = hasher.WriteString(out)
			_, _ = hasher.Write([]byte{0})
		}
		_, _ = hasher.Write([]byte{0}) // Section separator
	}

	_, _ = hasher.WriteString(d.hook)

	return fmt.Sprintf("%016x", hasher.Sum64())
}

type descriptorJSON struct {
	Platform    PlatformID `json:"platform"`
	Fingerprint string     `json:"fingerprint"`
	Artifacts   []Artifact `json:"artifacts"`
	SearchPath  []string   `json:"search_path"`
	Hook        string     `json:"hook"`
}

// MarshalJSON implements json.Marshaler.
func (d EnvironmentDescriptor) MarshalJSON() ([]byte, error) {
	artifacts := d.Artifacts()
	searchPath := d.SearchPath()
	if searchPath == nil {
		searchPath = []string{}
	}
	return json.Marshal(descriptorJSON{
		Platform:    d.platform,
		Fingerprint: d.Fingerprint(),
		Artifacts:   artifacts,
		SearchPath:  searchPath,
		Hook:        d.hook,
	})
}

// EnvironmentTable maps every supported platform to its descriptor.
type EnvironmentTable map[PlatformID]EnvironmentDescriptor

// Platforms returns the table's platforms in sorted order.
func (t EnvironmentTable) Platforms() []PlatformID {
	platforms := make([]PlatformID, 0, len(t))
	for p := range t {
		platforms = append(platforms, p)
	}
	slices.Sort(platforms)
	return platforms
}

// Get returns the descriptor for platform.
func (t EnvironmentTable) Get(platform PlatformID) (EnvironmentDescriptor, error) {
	d, ok := t[platform]
	if !ok {
		return EnvironmentDescriptor{}, zerr.With(ErrPlatformNotInTable, "platform", string(platform))
	}
	return d, nil
}
