package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/devshell/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger writing to a buffer with colors disabled.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.NewWithWriter(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("some message")

	g := goldie.New(t)
	g.Assert(t, "info_basic", buf.Bytes())
}

func TestLogger_InfoAttrs(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("resolved", "platform", "x86_64-linux", "packages", 3)

	g := goldie.New(t)
	g.Assert(t, "info_attrs", buf.Bytes())
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Warn("catalog is slow")

	g := goldie.New(t)
	g.Assert(t, "warn_basic", buf.Bytes())
}

func TestLogger_Debug(t *testing.T) {
	t.Run("suppressed at info level", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.Debug("fetching catalog", "platform", "aarch64-darwin")

		assert.Empty(t, buf.String())
	})

	t.Run("written at debug level", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.SetLevel(slog.LevelDebug)
		lg.Debug("fetching catalog", "platform", "aarch64-darwin")

		g := goldie.New(t)
		g.Assert(t, "debug_enabled", buf.Bytes())
	})
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name:       "standard error",
			err:        errors.New("simple error"),
			goldenName: "error_single",
		},
		{
			name:       "two level zerr chain",
			err:        zerr.Wrap(errors.New("underlying cause"), "wrapped message"),
			goldenName: "error_chain_zerr_two",
		},
		{
			name: "three level zerr chain",
			err: zerr.Wrap(
				zerr.Wrap(
					errors.New("catalog request failed"),
					"failed to resolve platform",
				),
				"failed to build environments",
			),
			goldenName: "error_chain_zerr_three",
		},
		{
			name: "stdlib chain",
			err: fmt.Errorf("failed to initialize: %w",
				fmt.Errorf("failed to connect: %w", errors.New("connection refused"))),
			goldenName: "error_chain_stdlib",
		},
		{
			name:       "multiline message",
			err:        errors.New("first line\nsecond line"),
			goldenName: "error_multiline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)

	assert.Empty(t, buf.String(), "Expected no output for nil error")
}

func TestLogger_SetJSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Info("resolved", "platform", "x86_64-linux")
	lg.Error(errors.New("boom"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var info map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &info))
	assert.Equal(t, "INFO", info["level"])
	assert.Equal(t, "resolved", info["msg"])
	assert.Equal(t, "x86_64-linux", info["platform"])

	var failure map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &failure))
	assert.Equal(t, "ERROR", failure["level"])
	assert.Equal(t, "boom", failure["error"])
}

func TestLogger_SetOutputPreservesMode(t *testing.T) {
	lg, _ := newTestLogger(t)
	lg.SetJSON(true)

	buf := &bytes.Buffer{}
	lg.SetOutput(buf)
	lg.Info("hello")

	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for name, want := range tests {
		assert.Equal(t, want, logger.ParseLevel(name), "level %q", name)
	}
}

func TestCollectErrorEntries(t *testing.T) {
	err := zerr.Wrap(zerr.Wrap(errors.New("root cause"), "middle layer"), "outer layer")

	messages, _ := logger.CollectErrorEntries(err)
	assert.Equal(t, []string{"outer layer", "middle layer", "root cause"}, messages)
}

func TestCollectErrorEntries_Joined(t *testing.T) {
	sentinel := zerr.New("environment build failed")
	cause := zerr.Wrap(errors.New("platform x86_64-linux is missing git"), "failed to build environment")

	messages, _ := logger.CollectErrorEntries(fmt.Errorf("%w: %w", sentinel, cause))
	assert.Equal(t, []string{
		"environment build failed",
		"failed to build environment",
		"platform x86_64-linux is missing git",
	}, messages)

	messages, _ = logger.CollectErrorEntries(errors.Join(sentinel, errors.New("a"), errors.New("b")))
	assert.Equal(t, []string{"environment build failed", "a", "b"}, messages)
}

func TestFormatErrorEntries(t *testing.T) {
	got := logger.FormatErrorEntries(
		[]string{"resolution failed"},
		map[string]any{"platform": "x86_64-linux", "attempt": 2},
	)

	want := "Error: resolution failed\n\n  Context:\n    attempt: 2\n    platform: x86_64-linux"
	assert.Equal(t, want, got)
}
