package domain

import "path/filepath"

const (
	// DevshellDirName is the name of the internal workspace directory.
	DevshellDirName = ".devshell"

	// CacheDirName is the name of the cache directory.
	CacheDirName = "cache"

	// NixHubDirName is the name of the NixHub cache directory.
	NixHubDirName = "nixhub"

	// ManifestFileName is the name of the manifest file.
	ManifestFileName = "devshell.yaml"

	// SettingsFileName is the name of the optional settings file inside DevshellDirName.
	SettingsFileName = "config.yaml"

	// DefaultSnapshotFileName is the snapshot file used when the manifest names none.
	DefaultSnapshotFileName = "catalog.jsonc"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultCachePath returns the default cache root.
// It joins .devshell and cache.
func DefaultCachePath() string {
	return filepath.Join(DevshellDirName, CacheDirName)
}

// NixHubCachePath returns the NixHub cache directory below a cache root.
func NixHubCachePath(cacheRoot string) string {
	return filepath.Join(cacheRoot, NixHubDirName)
}

// DefaultSettingsPath returns the default settings file path.
func DefaultSettingsPath() string {
	return filepath.Join(DevshellDirName, SettingsFileName)
}
