package domain

import (
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Subset tags a group of requirements that belong together.
type Subset string

const (
	// SubsetPythonPackage groups interpreter libraries.
	SubsetPythonPackage Subset = "python-package"
	// SubsetNativeTool groups toolchain binaries.
	SubsetNativeTool Subset = "native-tool"
)

var validSubsetRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// PackageRef is a symbolic, version-less reference to a catalog package.
type PackageRef struct {
	Name   InternedString
	Subset Subset
}

// NewPackageRef creates a PackageRef from plain strings.
func NewPackageRef(subset Subset, name string) PackageRef {
	return PackageRef{Name: NewInternedString(name), Subset: subset}
}

// String renders the reference as "subset/name", or just the name when untagged.
func (r PackageRef) String() string {
	if r.Subset == "" {
		return r.Name.String()
	}
	return string(r.Subset) + "/" + r.Name.String()
}

// RequirementSet is the authored, immutable list of packages an environment must contain.
// Insertion order is kept for reproducible listing only; resolution treats it as a set.
type RequirementSet struct {
	refs []PackageRef
}

// NewRequirementSet validates refs and returns a RequirementSet.
// A name may appear in several subsets but only once within a subset.
func NewRequirementSet(refs ...PackageRef) (RequirementSet, error) {
	if len(refs) == 0 {
		return RequirementSet{}, ErrEmptyRequirements
	}

	type key struct {
		subset Subset
		name   InternedString
	}
	seen := make(map[key]struct{}, len(refs))

	for _, ref := range refs {
		name := ref.Name.String()
		if name == "" || strings.ContainsAny(name, " \t\n") {
			return RequirementSet{}, zerr.With(ErrInvalidPackageName, "package", name)
		}
		if ref.Subset != "" && !validSubsetRegex.MatchString(string(ref.Subset)) {
			return RequirementSet{}, zerr.With(ErrInvalidSubset, "subset", string(ref.Subset))
		}

		k := key{subset: ref.Subset, name: ref.Name}
		if _, dup := seen[k]; dup {
			err := zerr.With(ErrDuplicatePackage, "package", name)
			return RequirementSet{}, zerr.With(err, "subset", string(ref.Subset))
		}
		seen[k] = struct{}{}
	}

	return RequirementSet{refs: slices.Clone(refs)}, nil
}

// MustRequirementSet is like NewRequirementSet but panics on error.
// It is intended for statically authored requirement sets.
func MustRequirementSet(refs ...PackageRef) RequirementSet {
	rs, err := NewRequirementSet(refs...)
	if err != nil {
		panic(err)
	}
	return rs
}

// Len returns the number of references.
func (rs RequirementSet) Len() int {
	return len(rs.refs)
}

// IsEmpty reports whether the set has no references.
func (rs RequirementSet) IsEmpty() bool {
	return len(rs.refs) == 0
}

// Refs returns a copy of the references in insertion order.
func (rs RequirementSet) Refs() []PackageRef {
	return slices.Clone(rs.refs)
}

// Subsets returns the distinct subset tags in sorted order.
func (rs RequirementSet) Subsets() []Subset {
	subsets := make([]Subset, 0)
	for _, ref := range rs.refs {
		if !slices.Contains(subsets, ref.Subset) {
			subsets = append(subsets, ref.Subset)
		}
	}
	slices.Sort(subsets)
	return subsets
}

// Subset returns the package names of one subset in insertion order.
func (rs RequirementSet) Subset(subset Subset) []string {
	var names []string
	for _, ref := range rs.refs {
		if ref.Subset == subset {
			names = append(names, ref.Name.String())
		}
	}
	return names
}

// Names returns every distinct package name in first-seen order.
func (rs RequirementSet) Names() []string {
	names := make([]string, 0, len(rs.refs))
	for _, ref := range rs.refs {
		if name := ref.Name.String(); !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}
