package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/devshell/internal/adapters/config"
	"go.trai.ch/devshell/internal/adapters/logger"
	"go.trai.ch/devshell/internal/core/domain"
)

const seal5Manifest = `
version: "1"
systems: [x86_64-linux, aarch64-darwin]
packages:
  python-package: [gitpython, pyyaml]
  native-tool: [cmake, ninja, git]
hook: |
  echo "devshell ready"
`

func createFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), domain.PrivateFilePerm))
	return path
}

func newLoader(t *testing.T) (*config.Loader, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	buf := &bytes.Buffer{}
	return config.NewLoader(logger.NewWithWriter(buf)), buf
}

func TestLoader_LoadFile(t *testing.T) {
	loader, _ := newLoader(t)
	dir := t.TempDir()
	path := createFile(t, dir, domain.ManifestFileName, seal5Manifest)

	m, err := loader.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, dir, m.Root)
	assert.Equal(t, []domain.PlatformID{domain.PlatformX8664Linux, domain.PlatformAarch64Darwin}, m.Systems)
	assert.Equal(t, "echo \"devshell ready\"\n", m.Hook)

	// Subsets are sorted; order within a subset is preserved.
	require.Equal(t, 5, m.Requirements.Len())
	assert.Equal(t, []domain.Subset{domain.SubsetNativeTool, domain.SubsetPythonPackage}, m.Requirements.Subsets())
	assert.Equal(t, []string{"cmake", "ninja", "git"}, m.Requirements.Subset(domain.SubsetNativeTool))
	assert.Equal(t, []string{"gitpython", "pyyaml"}, m.Requirements.Subset(domain.SubsetPythonPackage))

	assert.Equal(t, domain.CatalogSpec{
		Source: domain.CatalogSourceSnapshot,
		Path:   filepath.Join(dir, domain.DefaultSnapshotFileName),
	}, m.Catalog)
}

func TestLoader_LoadFile_Defaults(t *testing.T) {
	loader, _ := newLoader(t)
	path := createFile(t, t.TempDir(), domain.ManifestFileName, `
packages:
  native-tool: [git]
`)

	m, err := loader.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultSystems, m.Systems)
	assert.Empty(t, m.Hook)
}

func TestLoader_LoadFile_CatalogSection(t *testing.T) {
	tests := []struct {
		name    string
		catalog string
		check   func(t *testing.T, dir string, spec domain.CatalogSpec)
	}{
		{
			name:    "relative snapshot path",
			catalog: "catalog:\n  source: snapshot\n  path: pins/catalog.yaml\n",
			check: func(t *testing.T, dir string, spec domain.CatalogSpec) {
				t.Helper()
				assert.Equal(t, filepath.Join(dir, "pins", "catalog.yaml"), spec.Path)
			},
		},
		{
			name:    "absolute snapshot path",
			catalog: "catalog:\n  path: /srv/catalog.jsonc\n",
			check: func(t *testing.T, _ string, spec domain.CatalogSpec) {
				t.Helper()
				assert.Equal(t, "/srv/catalog.jsonc", spec.Path)
			},
		},
		{
			name:    "nixhub",
			catalog: "catalog:\n  source: nixhub\n",
			check: func(t *testing.T, _ string, spec domain.CatalogSpec) {
				t.Helper()
				assert.Equal(t, domain.CatalogSourceNixHub, spec.Source)
				assert.Empty(t, spec.Path)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _ := newLoader(t)
			dir := t.TempDir()
			path := createFile(t, dir, domain.ManifestFileName, "packages:\n  native-tool: [git]\n"+tt.catalog)

			m, err := loader.LoadFile(path)
			require.NoError(t, err)
			tt.check(t, dir, m.Catalog)
		})
	}
}

func TestLoader_LoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "malformed yaml",
			content: "packages: [",
			wantErr: domain.ErrManifestParseFailed,
		},
		{
			name:    "no packages",
			content: "systems: [x86_64-linux]\n",
			wantErr: domain.ErrEmptyRequirements,
		},
		{
			name:    "duplicate package in subset",
			content: "packages:\n  native-tool: [git, git]\n",
			wantErr: domain.ErrDuplicatePackage,
		},
		{
			name:    "blank package name",
			content: "packages:\n  native-tool: [\"\"]\n",
			wantErr: domain.ErrInvalidPackageName,
		},
		{
			name:    "invalid subset",
			content: "packages:\n  \"native tool\": [git]\n",
			wantErr: domain.ErrInvalidSubset,
		},
		{
			name:    "invalid platform",
			content: "systems: [linux]\npackages:\n  native-tool: [git]\n",
			wantErr: domain.ErrInvalidPlatform,
		},
		{
			name:    "unknown catalog source",
			content: "packages:\n  native-tool: [git]\ncatalog:\n  source: ftp\n",
			wantErr: domain.ErrInvalidCatalogSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _ := newLoader(t)
			path := createFile(t, t.TempDir(), domain.ManifestFileName, tt.content)

			_, err := loader.LoadFile(path)
			require.Error(t, err)
			require.ErrorContains(t, err, tt.wantErr.Error())
			require.ErrorContains(t, err, domain.ErrConfiguration.Error())
		})
	}
}

func TestLoader_LoadFile_SameNameInTwoSubsets(t *testing.T) {
	loader, _ := newLoader(t)
	path := createFile(t, t.TempDir(), domain.ManifestFileName, `
packages:
  native-tool: [python3]
  python-package: [python3]
`)

	m, err := loader.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Requirements.Len())
}

func TestLoader_LoadFile_UnknownVersionWarns(t *testing.T) {
	loader, buf := newLoader(t)
	path := createFile(t, t.TempDir(), domain.ManifestFileName, "version: \"7\"\npackages:\n  native-tool: [git]\n")

	_, err := loader.LoadFile(path)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "unknown version")
}

func TestLoader_Load_Discovery(t *testing.T) {
	loader, _ := newLoader(t)
	root := t.TempDir()
	createFile(t, root, domain.ManifestFileName, seal5Manifest)

	nested := filepath.Join(root, "src", "pkg")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	m, err := loader.Load(nested)
	require.NoError(t, err)
	assert.Equal(t, root, m.Root)
}

func TestLoader_Load_NotFound(t *testing.T) {
	loader, _ := newLoader(t)

	_, err := loader.Load(t.TempDir())
	require.Error(t, err)
	require.ErrorContains(t, err, domain.ErrManifestNotFound.Error())
}

func TestLoader_LoadFile_Missing(t *testing.T) {
	loader, _ := newLoader(t)

	_, err := loader.LoadFile(filepath.Join(t.TempDir(), domain.ManifestFileName))
	require.ErrorContains(t, err, domain.ErrManifestReadFailed.Error())
}
