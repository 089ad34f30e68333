// Package driver builds the environment table for every supported platform.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/google/uuid"
	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/devshell/internal/core/ports"
	"go.trai.ch/devshell/internal/engine/assembler"
	"go.trai.ch/devshell/internal/engine/matrix"
	"go.trai.ch/devshell/internal/engine/resolver"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Driver resolves a manifest against a catalog provider, one platform at a time.
type Driver struct {
	tracer      ports.Tracer
	logger      ports.Logger
	policy      domain.FailurePolicy
	parallelism int
}

// Option configures a Driver.
type Option func(*Driver)

// WithPolicy sets the failure policy. The default is domain.PolicyAbort.
func WithPolicy(policy domain.FailurePolicy) Option {
	return func(d *Driver) {
		d.policy = policy
	}
}

// WithParallelism bounds the number of platforms resolved concurrently.
// Values below one select runtime.NumCPU().
func WithParallelism(n int) Option {
	return func(d *Driver) {
		d.parallelism = n
	}
}

// New creates a new Driver.
func New(tracer ports.Tracer, logger ports.Logger, opts ...Option) *Driver {
	d := &Driver{
		tracer:      tracer,
		logger:      logger,
		policy:      domain.PolicyAbort,
		parallelism: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.parallelism < 1 {
		d.parallelism = runtime.NumCPU()
	}
	return d
}

// Policy returns the failure policy in effect.
func (d *Driver) Policy() domain.FailurePolicy {
	return d.policy
}

// platformResult is the slot one platform writes its outcome into.
type platformResult struct {
	desc domain.EnvironmentDescriptor
	err  error
}

// Build resolves and assembles a descriptor for every platform the manifest supports.
//
// With PolicyAbort any single failure cancels the remaining platforms and no table
// is returned. With PolicyOmit failed platforms are left out and the partial table
// is returned together with an error naming each omitted platform.
func (d *Driver) Build(
	ctx context.Context,
	manifest *domain.Manifest,
	catalogs ports.CatalogProvider,
) (domain.EnvironmentTable, error) {
	platforms, err := validate(manifest)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()

	ctx, span := d.tracer.Start(ctx, "build")
	defer span.End()
	span.SetAttribute("run_id", runID)
	span.SetAttribute("platforms", len(platforms))
	span.SetAttribute("policy", string(d.policy))

	d.logger.Debug("building environments",
		"run_id", runID, "platforms", len(platforms), "packages", manifest.Requirements.Len())

	results := make([]platformResult, len(platforms))

	// A failure only cancels platforms that sort after it, so the first failure in
	// platform order always runs to completion and is the one reported.
	ctxs := make([]context.Context, len(platforms))
	cancels := make([]context.CancelFunc, len(platforms))
	for i := range platforms {
		ctxs[i], cancels[i] = context.WithCancel(ctx)
	}
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	var g errgroup.Group
	g.SetLimit(d.parallelism)

	for i, platform := range platforms {
		g.Go(func() error {
			desc, err := d.buildPlatform(ctxs[i], manifest, catalogs, platform)
			results[i] = platformResult{desc: desc, err: err}
			if err != nil && d.policy == domain.PolicyAbort {
				for _, cancel := range cancels[i+1:] {
					cancel()
				}
			}
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if d.policy == domain.PolicyAbort {
		for _, result := range results {
			if result.err != nil {
				span.RecordError(result.err)
				return nil, fmt.Errorf("%w: %w", domain.ErrBuildFailed, result.err)
			}
		}
	}

	table := make(domain.EnvironmentTable, len(platforms))
	var failures []error
	for i, platform := range platforms {
		if results[i].err != nil {
			failures = append(failures, results[i].err)
			d.logger.Warn("omitting platform", "platform", platform.String())
			continue
		}
		table[platform] = results[i].desc
	}

	if len(failures) > 0 {
		err := errors.Join(append([]error{domain.ErrBuildFailed}, failures...)...)
		span.RecordError(err)
		return table, err
	}

	d.logger.Debug("environments built", "run_id", runID, "platforms", len(table))
	return table, nil
}

// BuildPlatform resolves and assembles the descriptor for a single supported platform.
func (d *Driver) BuildPlatform(
	ctx context.Context,
	manifest *domain.Manifest,
	catalogs ports.CatalogProvider,
	platform domain.PlatformID,
) (domain.EnvironmentDescriptor, error) {
	platforms, err := validate(manifest)
	if err != nil {
		return domain.EnvironmentDescriptor{}, err
	}
	if !slices.Contains(platforms, platform) {
		return domain.EnvironmentDescriptor{}, zerr.With(domain.ErrPlatformNotInTable, "platform", string(platform))
	}

	return d.buildPlatform(ctx, manifest, catalogs, platform)
}

func (d *Driver) buildPlatform(
	ctx context.Context,
	manifest *domain.Manifest,
	catalogs ports.CatalogProvider,
	platform domain.PlatformID,
) (domain.EnvironmentDescriptor, error) {
	ctx, span := d.tracer.Start(ctx, "resolve "+platform.String())
	defer span.End()
	span.SetAttribute("platform", platform.String())

	desc, err := d.resolvePlatform(ctx, manifest, catalogs, platform)
	if err != nil {
		span.RecordError(err)
		wrapped := zerr.Wrap(err, "failed to build environment")
		return domain.EnvironmentDescriptor{}, zerr.With(wrapped, "platform", platform.String())
	}

	span.SetAttribute("artifacts", len(desc.Artifacts()))
	span.SetAttribute("fingerprint", desc.Fingerprint())
	d.logger.Debug("platform resolved",
		"platform", platform.String(), "artifacts", len(desc.Artifacts()), "fingerprint", desc.Fingerprint())

	return desc, nil
}

func (d *Driver) resolvePlatform(
	ctx context.Context,
	manifest *domain.Manifest,
	catalogs ports.CatalogProvider,
	platform domain.PlatformID,
) (domain.EnvironmentDescriptor, error) {
	catalog, err := catalogs.Catalog(ctx, platform)
	if err != nil {
		if !errors.Is(err, domain.ErrCatalogUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
		}
		return domain.EnvironmentDescriptor{}, err
	}

	artifacts, err := resolver.Resolve(ctx, platform, manifest.Requirements, catalog)
	if err != nil {
		return domain.EnvironmentDescriptor{}, err
	}

	return assembler.Assemble(platform, artifacts, manifest.Hook)
}

// validate checks the manifest before any resolution is attempted and returns
// the expanded platform list.
func validate(manifest *domain.Manifest) ([]domain.PlatformID, error) {
	if manifest == nil {
		return nil, zerr.Wrap(domain.ErrConfiguration, "manifest is required")
	}
	if manifest.Requirements.IsEmpty() {
		return nil, domain.ErrEmptyRequirements
	}
	return matrix.Expand(manifest.Systems)
}
