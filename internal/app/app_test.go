package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/devshell/internal/adapters/catalog"
	"go.trai.ch/devshell/internal/adapters/config"
	"go.trai.ch/devshell/internal/adapters/logger"
	"go.trai.ch/devshell/internal/adapters/telemetry"
	"go.trai.ch/devshell/internal/app"
	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/devshell/internal/core/ports"
	"go.trai.ch/devshell/internal/core/ports/mocks"
	"go.trai.ch/devshell/internal/engine/driver"
	"go.uber.org/mock/gomock"
)

const workDir = "/work/project"

type fixture struct {
	loader    *mocks.MockManifestLoader
	selector  *mocks.MockCatalogSelector
	activator *mocks.MockActivator
	logs      *bytes.Buffer
	app       *app.App
}

func newFixture(t *testing.T, opts ...driver.Option) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	logs := new(bytes.Buffer)
	log := logger.NewWithWriter(logs)

	f := &fixture{
		loader:    mocks.NewMockManifestLoader(ctrl),
		selector:  mocks.NewMockCatalogSelector(ctrl),
		activator: mocks.NewMockActivator(ctrl),
		logs:      logs,
	}
	drv := driver.New(telemetry.NewNoOpTracer(), log, opts...)
	f.app = app.New(f.loader, f.selector, drv, f.activator, log).
		WithWorkingDir(workDir).
		WithHostPlatform(domain.PlatformX8664Linux)
	return f
}

func testManifest() *domain.Manifest {
	return &domain.Manifest{
		Root:    workDir,
		Systems: []domain.PlatformID{domain.PlatformX8664Linux, domain.PlatformAarch64Darwin},
		Requirements: domain.MustRequirementSet(
			domain.NewPackageRef(domain.SubsetNativeTool, "cmake"),
			domain.NewPackageRef(domain.SubsetNativeTool, "git"),
		),
		Hook:    "echo ready",
		Catalog: domain.CatalogSpec{Source: domain.CatalogSourceSnapshot, Path: workDir + "/catalog.jsonc"},
	}
}

func artifact(platform domain.PlatformID, name string) domain.Artifact {
	out := "/nix/store/" + platform.String() + "-" + name
	return domain.Artifact{ID: out, Name: name, Outputs: []string{out}}
}

func testProvider(skipDarwinGit bool) *catalog.MemoryProvider {
	darwin := map[string]domain.Artifact{
		"cmake": artifact(domain.PlatformAarch64Darwin, "cmake"),
	}
	if !skipDarwinGit {
		darwin["git"] = artifact(domain.PlatformAarch64Darwin, "git")
	}
	return catalog.NewMemoryProvider(map[domain.PlatformID]map[string]domain.Artifact{
		domain.PlatformX8664Linux: {
			"cmake": artifact(domain.PlatformX8664Linux, "cmake"),
			"git":   artifact(domain.PlatformX8664Linux, "git"),
		},
		domain.PlatformAarch64Darwin: darwin,
	})
}

// prefetchingProvider records the names it was asked to warm.
type prefetchingProvider struct {
	ports.CatalogProvider
	names []string
	err   error
}

func (p *prefetchingProvider) Prefetch(_ context.Context, names []string) error {
	p.names = names
	return p.err
}

func TestApp_Systems(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(workDir).Return(testManifest(), nil)

	var out bytes.Buffer
	require.NoError(t, f.app.Systems(context.Background(), &out, app.ManifestOptions{}))
	assert.Equal(t, "aarch64-darwin\nx86_64-linux\n", out.String())
}

func TestApp_SystemsExplicitManifest(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().LoadFile("/elsewhere/devshell.yaml").Return(testManifest(), nil)

	var out bytes.Buffer
	err := f.app.Systems(context.Background(), &out, app.ManifestOptions{Path: "/elsewhere/devshell.yaml"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "x86_64-linux")
}

func TestApp_SystemsLoaderError(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(workDir).Return(nil, domain.ErrManifestNotFound)

	err := f.app.Systems(context.Background(), io.Discard, app.ManifestOptions{})
	require.ErrorContains(t, err, "failed to load manifest")
	require.ErrorContains(t, err, domain.ErrManifestNotFound.Error())
}

func TestApp_ResolveShell(t *testing.T) {
	f := newFixture(t)
	manifest := testManifest()
	f.loader.EXPECT().Load(workDir).Return(manifest, nil)
	f.selector.EXPECT().Provider(manifest.Catalog).Return(testProvider(false), nil)

	var out bytes.Buffer
	require.NoError(t, f.app.Resolve(context.Background(), &out, app.ResolveOptions{}))

	script := out.String()
	assert.Contains(t, script, "# devshell environment for x86_64-linux")
	assert.Contains(t, script, "/nix/store/x86_64-linux-cmake/bin")
	assert.Contains(t, script, "echo ready\n")
}

func TestApp_ResolveJSONForRequestedSystem(t *testing.T) {
	f := newFixture(t)
	manifest := testManifest()
	f.loader.EXPECT().Load(workDir).Return(manifest, nil)
	f.selector.EXPECT().Provider(manifest.Catalog).Return(testProvider(false), nil)

	var out bytes.Buffer
	err := f.app.Resolve(context.Background(), &out, app.ResolveOptions{System: "aarch64-darwin", Format: "json"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "aarch64-darwin", decoded["platform"])
}

func TestApp_ResolveRejectsBadInputBeforeLoading(t *testing.T) {
	f := newFixture(t)

	err := f.app.Resolve(context.Background(), io.Discard, app.ResolveOptions{Format: "yaml"})
	require.ErrorContains(t, err, domain.ErrInvalidFormat.Error())

	err = f.app.Resolve(context.Background(), io.Discard, app.ResolveOptions{System: "linux"})
	require.ErrorContains(t, err, domain.ErrInvalidPlatform.Error())
}

func TestApp_ResolveMissingPackage(t *testing.T) {
	f := newFixture(t)
	manifest := testManifest()
	f.loader.EXPECT().Load(workDir).Return(manifest, nil)
	f.selector.EXPECT().Provider(manifest.Catalog).Return(testProvider(true), nil)

	err := f.app.Resolve(context.Background(), io.Discard, app.ResolveOptions{System: "aarch64-darwin"})
	require.Error(t, err)

	var resErr *domain.ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "git", resErr.Name())
}

func TestApp_ResolvePrefetches(t *testing.T) {
	f := newFixture(t)
	manifest := testManifest()
	provider := &prefetchingProvider{CatalogProvider: testProvider(false), err: errors.New("offline")}
	f.loader.EXPECT().Load(workDir).Return(manifest, nil)
	f.selector.EXPECT().Provider(manifest.Catalog).Return(provider, nil)

	require.NoError(t, f.app.Resolve(context.Background(), io.Discard, app.ResolveOptions{}))
	assert.Equal(t, []string{"cmake", "git"}, provider.names)
	assert.Contains(t, f.logs.String(), "catalog prefetch failed")
}

func TestApp_ResolveSelectorError(t *testing.T) {
	f := newFixture(t)
	manifest := testManifest()
	f.loader.EXPECT().Load(workDir).Return(manifest, nil)
	f.selector.EXPECT().Provider(manifest.Catalog).Return(nil, domain.ErrSnapshotReadFailed)

	err := f.app.Resolve(context.Background(), io.Discard, app.ResolveOptions{})
	require.ErrorContains(t, err, "failed to open catalog")
}

func TestApp_Table(t *testing.T) {
	f := newFixture(t)
	manifest := testManifest()
	f.loader.EXPECT().Load(workDir).Return(manifest, nil)
	f.selector.EXPECT().Provider(manifest.Catalog).Return(testProvider(false), nil)

	var out bytes.Buffer
	require.NoError(t, f.app.Table(context.Background(), &out, app.ManifestOptions{}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Len(t, decoded, 2)
}

func TestApp_TableAbortWritesNothing(t *testing.T) {
	f := newFixture(t)
	manifest := testManifest()
	f.loader.EXPECT().Load(workDir).Return(manifest, nil)
	f.selector.EXPECT().Provider(manifest.Catalog).Return(testProvider(true), nil)

	var out bytes.Buffer
	err := f.app.Table(context.Background(), &out, app.ManifestOptions{})
	require.ErrorIs(t, err, domain.ErrBuildFailed)
	assert.Empty(t, out.String())
}

func TestApp_TableOmitWritesPartialTable(t *testing.T) {
	f := newFixture(t, driver.WithPolicy(domain.PolicyOmit))
	manifest := testManifest()
	f.loader.EXPECT().Load(workDir).Return(manifest, nil)
	f.selector.EXPECT().Provider(manifest.Catalog).Return(testProvider(true), nil)

	var out bytes.Buffer
	err := f.app.Table(context.Background(), &out, app.ManifestOptions{})
	require.ErrorIs(t, err, domain.ErrBuildFailed)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Contains(t, decoded, "x86_64-linux")
	assert.NotContains(t, decoded, "aarch64-darwin")
}

func TestApp_Exec(t *testing.T) {
	f := newFixture(t)
	manifest := testManifest()
	f.loader.EXPECT().Load(workDir).Return(manifest, nil)
	f.selector.EXPECT().Provider(manifest.Catalog).Return(testProvider(false), nil)

	argv := []string{"cmake", "--version"}
	f.activator.EXPECT().Exec(gomock.Any(), gomock.Any(), argv, gomock.Any()).DoAndReturn(
		func(_ context.Context, desc domain.EnvironmentDescriptor, _ []string, _ ports.Streams) error {
			assert.Equal(t, domain.PlatformX8664Linux, desc.Platform())
			assert.Equal(t, "echo ready", desc.Hook())
			assert.Len(t, desc.Artifacts(), 2)
			return nil
		},
	)

	require.NoError(t, f.app.Exec(context.Background(), argv, ports.Streams{}, app.ExecOptions{}))
}

func TestApp_ExecNoCommand(t *testing.T) {
	f := newFixture(t)

	err := f.app.Exec(context.Background(), nil, ports.Streams{}, app.ExecOptions{})
	require.ErrorContains(t, err, domain.ErrNoCommand.Error())
}

func TestApp_Enter(t *testing.T) {
	f := newFixture(t)
	manifest := testManifest()
	f.loader.EXPECT().Load(workDir).Return(manifest, nil)
	f.selector.EXPECT().Provider(manifest.Catalog).Return(testProvider(false), nil)
	f.activator.EXPECT().Enter(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	err := f.app.Enter(context.Background(), ports.Streams{}, app.ExecOptions{System: "aarch64-darwin"})
	require.NoError(t, err)
	assert.Contains(t, f.logs.String(), "entering aarch64-darwin environment")
}

func TestApplySettings(t *testing.T) {
	buf := new(bytes.Buffer)
	log := logger.NewWithWriter(buf)

	app.ApplySettings(log, &config.Settings{
		Log: config.LogSettings{Level: "warn", Format: "json"},
	})

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
