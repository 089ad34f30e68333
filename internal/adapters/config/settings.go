package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// EnvPrefix is the prefix of environment variables that override settings.
const EnvPrefix = "DEVSHELL"

// Settings holds the runtime settings that are not part of the manifest.
type Settings struct {
	Log    LogSettings    `mapstructure:"log"`
	Cache  CacheSettings  `mapstructure:"cache"`
	NixHub NixHubSettings `mapstructure:"nixhub"`
	Build  BuildSettings  `mapstructure:"build"`
}

// LogSettings holds logging configuration.
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CacheSettings holds the cache location.
type CacheSettings struct {
	Dir string `mapstructure:"dir"`
}

// NixHubSettings holds the NixHub client configuration.
type NixHubSettings struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// BuildSettings holds environment table build configuration.
type BuildSettings struct {
	// Policy is "abort" or "omit".
	Policy      string `mapstructure:"policy"`
	Parallelism int    `mapstructure:"parallelism"`
}

// JSONLogs reports whether logs should be written as JSON.
// The "auto" format selects JSON when stderr is not a terminal or CI is set.
func (s *Settings) JSONLogs() bool {
	switch strings.ToLower(s.Log.Format) {
	case "json":
		return true
	case "auto":
		return !interactive()
	default:
		return false
	}
}

func interactive() bool {
	ci := os.Getenv("CI")
	if ci == "true" || ci == "1" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// FailurePolicy returns the parsed build failure policy.
func (s *Settings) FailurePolicy() (domain.FailurePolicy, error) {
	return domain.ParseFailurePolicy(s.Build.Policy)
}

// LoadSettings loads settings from the optional file at path and from DEVSHELL_*
// environment variables. A missing file is not an error.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "pretty")
	v.SetDefault("cache.dir", defaultCacheDir())
	v.SetDefault("nixhub.url", "https://search.devbox.sh/v2/resolve")
	v.SetDefault("nixhub.timeout", "30s")
	v.SetDefault("build.policy", string(domain.PolicyAbort))
	v.SetDefault("build.parallelism", 0)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrSettingsLoadFailed.Error()), "path", path)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrSettingsLoadFailed.Error()), "path", path)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, zerr.Wrap(err, domain.ErrSettingsLoadFailed.Error())
	}

	if _, err := settings.FailurePolicy(); err != nil {
		return nil, err
	}

	return &settings, nil
}

// defaultCacheDir prefers the user cache directory and falls back to the workspace-local one.
func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "devshell")
	}
	return domain.DefaultCachePath()
}
