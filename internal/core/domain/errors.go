package domain

import (
	"fmt"
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrConfiguration is the root of every manifest or platform-set error.
	// It is reported before any resolution is attempted.
	ErrConfiguration = zerr.New("invalid configuration")

	// ErrNoPlatforms is returned when the supported platform set is empty.
	ErrNoPlatforms = zerr.Wrap(ErrConfiguration, "no supported platforms declared")

	// ErrInvalidPlatform is returned when a platform identifier is blank or malformed.
	ErrInvalidPlatform = zerr.Wrap(ErrConfiguration, "invalid platform identifier")

	// ErrEmptyRequirements is returned when the requirement set names no packages.
	ErrEmptyRequirements = zerr.Wrap(ErrConfiguration, "requirement set is empty")

	// ErrDuplicatePackage is returned when a package name repeats within one subset.
	ErrDuplicatePackage = zerr.Wrap(ErrConfiguration, "duplicate package in subset")

	// ErrInvalidPackageName is returned when a package name is blank or contains whitespace.
	ErrInvalidPackageName = zerr.Wrap(ErrConfiguration, "invalid package name")

	// ErrInvalidSubset is returned when a subset tag is not a valid identifier.
	ErrInvalidSubset = zerr.Wrap(ErrConfiguration, "invalid subset name")

	// ErrInvalidPolicy is returned when the failure policy is not 'abort' or 'omit'.
	ErrInvalidPolicy = zerr.Wrap(ErrConfiguration, "invalid failure policy, expected 'abort' or 'omit'")

	// ErrInvalidCatalogSource is returned when the manifest names an unknown catalog source.
	ErrInvalidCatalogSource = zerr.Wrap(ErrConfiguration, "invalid catalog source, expected 'snapshot' or 'nixhub'")

	// ErrManifestNotFound is returned when no manifest exists in the directory tree.
	ErrManifestNotFound = zerr.Wrap(ErrConfiguration, "could not find "+ManifestFileName)

	// ErrManifestReadFailed is returned when the manifest cannot be read.
	ErrManifestReadFailed = zerr.Wrap(ErrConfiguration, "failed to read manifest")

	// ErrManifestParseFailed is returned when the manifest cannot be parsed.
	ErrManifestParseFailed = zerr.Wrap(ErrConfiguration, "failed to parse manifest")

	// ErrSettingsLoadFailed is returned when the settings file or environment cannot be decoded.
	ErrSettingsLoadFailed = zerr.Wrap(ErrConfiguration, "failed to load settings")

	// ErrInvalidArtifact is returned when an artifact handed to the assembler has no identity.
	ErrInvalidArtifact = zerr.New("artifact has no identity")

	// ErrPackageNotFound is returned when a package is absent from a platform catalog.
	ErrPackageNotFound = zerr.New("package not found in catalog")

	// ErrCatalogUnavailable is returned when a catalog provider cannot answer for a platform.
	ErrCatalogUnavailable = zerr.New("catalog unavailable")

	// ErrSnapshotReadFailed is returned when a catalog snapshot file cannot be read.
	ErrSnapshotReadFailed = zerr.New("failed to read catalog snapshot")

	// ErrSnapshotParseFailed is returned when a catalog snapshot file cannot be parsed.
	ErrSnapshotParseFailed = zerr.New("failed to parse catalog snapshot")

	// ErrNixCacheCreateFailed is returned when the NixHub cache directory cannot be created.
	ErrNixCacheCreateFailed = zerr.New("failed to create NixHub cache directory")

	// ErrNixCacheReadFailed is returned when reading from the NixHub cache fails.
	ErrNixCacheReadFailed = zerr.New("failed to read from NixHub cache")

	// ErrNixCacheWriteFailed is returned when writing to the NixHub cache fails.
	ErrNixCacheWriteFailed = zerr.New("failed to write to NixHub cache")

	// ErrNixAPIRequestFailed is returned when a NixHub API request fails.
	ErrNixAPIRequestFailed = zerr.New("failed to make NixHub API request")

	// ErrNixAPIParseFailed is returned when parsing a NixHub API response fails.
	ErrNixAPIParseFailed = zerr.New("failed to parse NixHub API response")

	// ErrInvalidFormat is returned when an unknown output format is requested.
	ErrInvalidFormat = zerr.New("invalid output format, expected 'shell', 'json' or 'nix'")

	// ErrUnrenderableArtifact is returned when an artifact carries no nixpkgs revision or attribute path.
	ErrUnrenderableArtifact = zerr.New("artifact cannot be expressed as a nixpkgs attribute")

	// ErrPlatformNotInTable is returned when a descriptor is requested for a platform the table lacks.
	ErrPlatformNotInTable = zerr.New("platform not present in environment table")

	// ErrUnsupportedHost is returned when the running host maps to no known platform.
	ErrUnsupportedHost = zerr.New("host platform is not supported")

	// ErrNoCommand is returned when exec is invoked without a command.
	ErrNoCommand = zerr.New("no command specified")

	// ErrActivationFailed is returned when the activated shell process fails.
	ErrActivationFailed = zerr.New("environment activation failed")

	// ErrBuildFailed is returned when at least one platform failed to resolve.
	ErrBuildFailed = zerr.New("environment build failed")
)

// ResolutionError reports the packages that could not be found for one platform.
// Missing is ordered by the requirement set so the message is deterministic.
type ResolutionError struct {
	Platform PlatformID
	Missing  []string
}

// Name returns the first missing package.
func (e *ResolutionError) Name() string {
	if len(e.Missing) == 0 {
		return ""
	}
	return e.Missing[0]
}

// Error implements error.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: platform %s is missing %s",
		ErrPackageNotFound.Error(), e.Platform, strings.Join(e.Missing, ", "))
}

// Unwrap allows errors.Is(err, ErrPackageNotFound).
func (e *ResolutionError) Unwrap() error {
	return ErrPackageNotFound
}
