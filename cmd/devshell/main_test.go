package main

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/devshell/internal/adapters/logger"
	"go.trai.ch/devshell/internal/adapters/telemetry"
	"go.trai.ch/devshell/internal/app"
	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/devshell/internal/core/ports/mocks"
	"go.trai.ch/devshell/internal/engine/driver"
	"go.uber.org/mock/gomock"
)

type testMocks struct {
	loader    *mocks.MockManifestLoader
	selector  *mocks.MockCatalogSelector
	activator *mocks.MockActivator
}

func newProvider(t *testing.T) (ComponentProvider, *testMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := &testMocks{
		loader:    mocks.NewMockManifestLoader(ctrl),
		selector:  mocks.NewMockCatalogSelector(ctrl),
		activator: mocks.NewMockActivator(ctrl),
	}

	log := logger.NewWithWriter(new(bytes.Buffer))
	application := app.New(
		m.loader,
		m.selector,
		driver.New(telemetry.NewNoOpTracer(), log),
		m.activator,
		log,
	).WithWorkingDir(t.TempDir()).WithHostPlatform(domain.PlatformX8664Linux)

	return func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: log}, func() {}, nil
	}, m
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	provider, _ := newProvider(t)

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stdout, stderr, provider)

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "devshell version dev")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 and logs the error when the command fails.
func TestRun_ExecutionError(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	provider, m := newProvider(t)
	m.loader.EXPECT().Load(gomock.Any()).Return(nil, errors.New("load failed"))

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"systems"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "failed to load manifest")
	assert.Contains(t, stderr.String(), "load failed")
}

// TestRun_JSONLogs verifies that --json-logs switches the error report to JSON.
func TestRun_JSONLogs(t *testing.T) {
	provider, m := newProvider(t)
	m.loader.EXPECT().Load(gomock.Any()).Return(nil, errors.New("load failed"))

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"--json-logs", "systems"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), `"msg":"operation failed"`)
}

// TestRun_ExecPropagatesExitCode verifies that the exit status of the executed command is returned.
func TestRun_ExecPropagatesExitCode(t *testing.T) {
	exitErr := exec.Command("sh", "-c", "exit 7").Run()
	var ee *exec.ExitError
	require.True(t, errors.As(exitErr, &ee), "sh must be available")

	provider, m := newProvider(t)
	manifest := &domain.Manifest{
		Systems:      []domain.PlatformID{domain.PlatformX8664Linux},
		Requirements: domain.MustRequirementSet(domain.NewPackageRef(domain.SubsetNativeTool, "git")),
	}
	m.loader.EXPECT().LoadFile("devshell.yaml").Return(manifest, nil)
	m.selector.EXPECT().Provider(gomock.Any()).Return(newGitProvider(), nil)
	m.activator.EXPECT().Exec(gomock.Any(), gomock.Any(), []string{"false"}, gomock.Any()).Return(exitErr)

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"-m", "devshell.yaml", "exec", "false"},
		new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 7, exitCode)
	assert.Empty(t, stderr.String())
}

// TestRun_Canceled verifies that a canceled context aborts the command.
func TestRun_Canceled(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	provider, m := newProvider(t)
	manifest := &domain.Manifest{
		Systems:      []domain.PlatformID{domain.PlatformX8664Linux},
		Requirements: domain.MustRequirementSet(domain.NewPackageRef(domain.SubsetNativeTool, "git")),
	}
	m.loader.EXPECT().Load(gomock.Any()).Return(manifest, nil)
	m.selector.EXPECT().Provider(gomock.Any()).Return(newGitProvider(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exitCode := run(ctx, []string{"table"}, new(bytes.Buffer), new(bytes.Buffer), provider)
	assert.Equal(t, 1, exitCode)
}
