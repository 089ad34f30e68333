package domain

import (
	"path"
	"slices"
	"strings"
)

// Artifact is an opaque handle to an installable unit in a catalog snapshot.
// Two artifacts are the same unit when their IDs are equal.
type Artifact struct {
	// ID identifies the artifact within its snapshot (e.g. a store path).
	ID string `json:"id" yaml:"id"`

	// Name is the canonical package name.
	Name string `json:"name" yaml:"name"`

	// Version is the version the snapshot carries for this package.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// AttrPath is the attribute path inside the package set (e.g. "python312Packages.pyyaml").
	AttrPath string `json:"attr_path,omitempty" yaml:"attr_path,omitempty"`

	// Rev pins the package set revision the artifact was taken from.
	Rev string `json:"rev,omitempty" yaml:"rev,omitempty"`

	// Outputs are the installed output paths of the artifact.
	Outputs []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// BinDirs returns the executable search-path contribution of the artifact.
func (a Artifact) BinDirs() []string {
	dirs := make([]string, 0, len(a.Outputs))
	for _, out := range a.Outputs {
		if out == "" {
			continue
		}
		dirs = append(dirs, path.Join(strings.TrimSuffix(out, "/"), "bin"))
	}
	return dirs
}

// Clone returns a deep copy of the artifact.
func (a Artifact) Clone() Artifact {
	a.Outputs = slices.Clone(a.Outputs)
	return a
}

// compareArtifacts orders artifacts by name, then identity.
func compareArtifacts(a, b Artifact) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// DedupArtifacts returns the artifacts with duplicate IDs removed, sorted by name then ID.
// The result does not depend on the input order.
func DedupArtifacts(artifacts []Artifact) []Artifact {
	sorted := make([]Artifact, len(artifacts))
	for i, a := range artifacts {
		sorted[i] = a.Clone()
	}
	slices.SortFunc(sorted, func(a, b Artifact) int {
		if c := strings.Compare(a.ID, b.ID); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	out := slices.CompactFunc(sorted, func(a, b Artifact) bool {
		return a.ID == b.ID
	})
	slices.SortFunc(out, compareArtifacts)
	return out
}
