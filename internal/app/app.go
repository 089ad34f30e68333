// Package app implements the application layer for devshell.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.trai.ch/devshell/internal/adapters/render" //nolint:depguard // Output encoding is chosen by the app layer
	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/devshell/internal/core/ports"
	"go.trai.ch/devshell/internal/engine/driver"
	"go.trai.ch/devshell/internal/engine/matrix"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	loader    ports.ManifestLoader
	selector  ports.CatalogSelector
	driver    *driver.Driver
	activator ports.Activator
	logger    ports.Logger
	getwd     func() (string, error)
	host      func() (domain.PlatformID, bool)
}

// New creates a new App instance.
func New(
	loader ports.ManifestLoader,
	selector ports.CatalogSelector,
	drv *driver.Driver,
	activator ports.Activator,
	log ports.Logger,
) *App {
	return &App{
		loader:    loader,
		selector:  selector,
		driver:    drv,
		activator: activator,
		logger:    log,
		getwd:     os.Getwd,
		host:      domain.CurrentPlatform,
	}
}

// WithWorkingDir makes manifest discovery start at dir instead of the process working directory.
func (a *App) WithWorkingDir(dir string) *App {
	a.getwd = func() (string, error) { return dir, nil }
	return a
}

// WithHostPlatform overrides the platform used when no system is requested.
func (a *App) WithHostPlatform(platform domain.PlatformID) *App {
	a.host = func() (domain.PlatformID, bool) { return platform, true }
	return a
}

// ManifestOptions selects the manifest a command operates on.
type ManifestOptions struct {
	// Path is an explicit manifest file. When empty the manifest is discovered
	// by walking up from the working directory.
	Path string
}

// ResolveOptions configuration for the Resolve method.
type ResolveOptions struct {
	ManifestOptions
	System string
	Format string
}

// ExecOptions configuration for the Exec and Enter methods.
type ExecOptions struct {
	ManifestOptions
	System string
}

// Systems writes the expanded platform list of the manifest, one per line.
func (a *App) Systems(_ context.Context, w io.Writer, opts ManifestOptions) error {
	manifest, err := a.loadManifest(opts)
	if err != nil {
		return err
	}

	platforms, err := matrix.Expand(manifest.Systems)
	if err != nil {
		return err
	}

	for _, p := range platforms {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return zerr.Wrap(err, "failed to write systems")
		}
	}
	return nil
}

// Resolve builds the descriptor for one platform and writes it in the requested format.
func (a *App) Resolve(ctx context.Context, w io.Writer, opts ResolveOptions) error {
	format, err := render.ParseFormat(opts.Format)
	if err != nil {
		return err
	}

	desc, err := a.descriptor(ctx, opts.ManifestOptions, opts.System)
	if err != nil {
		return err
	}

	return render.Descriptor(w, desc, format)
}

// Table builds the full environment table and writes it as JSON. Under the omit
// policy the partial table is written before the build error is returned.
func (a *App) Table(ctx context.Context, w io.Writer, opts ManifestOptions) error {
	manifest, provider, err := a.prepare(ctx, opts)
	if err != nil {
		return err
	}

	table, buildErr := a.driver.Build(ctx, manifest, provider)
	if table == nil {
		return buildErr
	}

	if err := render.Table(w, table); err != nil {
		return errors.Join(buildErr, err)
	}
	return buildErr
}

// Exec runs argv inside the environment of one platform.
func (a *App) Exec(ctx context.Context, argv []string, streams ports.Streams, opts ExecOptions) error {
	if len(argv) == 0 {
		return domain.ErrNoCommand
	}

	desc, err := a.descriptor(ctx, opts.ManifestOptions, opts.System)
	if err != nil {
		return err
	}

	return a.activator.Exec(ctx, desc, argv, streams)
}

// Enter starts an interactive shell inside the environment of one platform.
func (a *App) Enter(ctx context.Context, streams ports.Streams, opts ExecOptions) error {
	desc, err := a.descriptor(ctx, opts.ManifestOptions, opts.System)
	if err != nil {
		return err
	}

	a.logger.Info(fmt.Sprintf("entering %s environment (%s)", desc.Platform(), desc.Fingerprint()))
	return a.activator.Enter(ctx, desc, streams)
}

func (a *App) descriptor(ctx context.Context, opts ManifestOptions, system string) (domain.EnvironmentDescriptor, error) {
	platform, err := a.platform(system)
	if err != nil {
		return domain.EnvironmentDescriptor{}, err
	}

	manifest, provider, err := a.prepare(ctx, opts)
	if err != nil {
		return domain.EnvironmentDescriptor{}, err
	}

	return a.driver.BuildPlatform(ctx, manifest, provider, platform)
}

// prepare loads the manifest and selects its catalog provider, warming the
// provider when it supports prefetching.
func (a *App) prepare(ctx context.Context, opts ManifestOptions) (*domain.Manifest, ports.CatalogProvider, error) {
	manifest, err := a.loadManifest(opts)
	if err != nil {
		return nil, nil, err
	}

	provider, err := a.selector.Provider(manifest.Catalog)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to open catalog")
	}

	if p, ok := provider.(ports.Prefetcher); ok {
		if err := p.Prefetch(ctx, manifest.Requirements.Names()); err != nil {
			a.logger.Warn("catalog prefetch failed", "error", err.Error())
		}
	}

	return manifest, provider, nil
}

func (a *App) loadManifest(opts ManifestOptions) (*domain.Manifest, error) {
	if opts.Path != "" {
		manifest, err := a.loader.LoadFile(opts.Path)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to load manifest")
		}
		return manifest, nil
	}

	cwd, err := a.getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to get working directory")
	}

	manifest, err := a.loader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load manifest")
	}
	return manifest, nil
}

func (a *App) platform(system string) (domain.PlatformID, error) {
	if system != "" {
		p := domain.PlatformID(system)
		if !p.Valid() {
			return "", zerr.With(domain.ErrInvalidPlatform, "platform", system)
		}
		return p, nil
	}

	p, ok := a.host()
	if !ok {
		return "", domain.ErrUnsupportedHost
	}
	return p, nil
}
