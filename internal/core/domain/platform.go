package domain

import (
	"runtime"
	"strings"
)

// PlatformID identifies an OS/architecture pair in Nix system notation (e.g. "x86_64-linux").
type PlatformID string

// Well-known platform identifiers.
const (
	PlatformX8664Linux    PlatformID = "x86_64-linux"
	PlatformAarch64Linux  PlatformID = "aarch64-linux"
	PlatformX8664Darwin   PlatformID = "x86_64-darwin"
	PlatformAarch64Darwin PlatformID = "aarch64-darwin"
)

// DefaultSystems is the conventional default systems tuple: linux/macOS x x86_64/aarch64.
var DefaultSystems = []PlatformID{
	PlatformAarch64Linux,
	PlatformAarch64Darwin,
	PlatformX8664Darwin,
	PlatformX8664Linux,
}

// String returns the identifier as a string.
func (p PlatformID) String() string {
	return string(p)
}

// Valid reports whether the identifier has the form "<arch>-<os>".
func (p PlatformID) Valid() bool {
	arch, osName, ok := strings.Cut(string(p), "-")
	if !ok || arch == "" || osName == "" {
		return false
	}
	return !strings.ContainsAny(string(p), " \t\n/")
}

// NewPlatformIDs converts a slice of strings to platform identifiers.
func NewPlatformIDs(ids []string) []PlatformID {
	out := make([]PlatformID, len(ids))
	for i, id := range ids {
		out[i] = PlatformID(id)
	}
	return out
}

// CurrentPlatform returns the platform identifier of the running host.
// The boolean is false when the host has no Nix system equivalent.
func CurrentPlatform() (PlatformID, bool) {
	return platformFor(runtime.GOOS, runtime.GOARCH)
}

func platformFor(goos, goarch string) (PlatformID, bool) {
	switch {
	case goos == "darwin" && goarch == "amd64":
		return PlatformX8664Darwin, true
	case goos == "darwin" && goarch == "arm64":
		return PlatformAarch64Darwin, true
	case goos == "linux" && goarch == "amd64":
		return PlatformX8664Linux, true
	case goos == "linux" && goarch == "arm64":
		return PlatformAarch64Linux, true
	default:
		return "", false
	}
}
