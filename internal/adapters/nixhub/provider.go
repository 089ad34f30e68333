// Package nixhub implements a package catalog backed by the NixHub resolve API.
package nixhub

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/devshell/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is the public NixHub resolve endpoint.
	DefaultBaseURL = "https://search.devbox.sh/v2/resolve"
	// DefaultTimeout bounds a single API request.
	DefaultTimeout = 30 * time.Second

	latestVersion = "latest"
)

var supportedSystems = map[domain.PlatformID]struct{}{
	domain.PlatformX8664Linux:    {},
	domain.PlatformAarch64Linux:  {},
	domain.PlatformX8664Darwin:   {},
	domain.PlatformAarch64Darwin: {},
}

// errNotPublished marks a package NixHub does not know.
var errNotPublished = errors.New("package not published")

// Provider implements ports.CatalogProvider on top of NixHub with a local response cache.
// One response covers every system, so a package is fetched once for all platforms.
type Provider struct {
	baseURL    string
	cacheDir   string
	httpClient *http.Client
	logger     ports.Logger

	requestGroup singleflight.Group
}

// New creates a Provider caching responses under cacheDir.
// The directory is created on the first write.
func New(cacheDir, baseURL string, timeout time.Duration, logger ports.Logger) *Provider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewWithClient(cacheDir, baseURL, &http.Client{Timeout: timeout}, logger)
}

// NewWithClient creates a Provider with a custom HTTP client.
func NewWithClient(cacheDir, baseURL string, client *http.Client, logger ports.Logger) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Provider{
		baseURL:    baseURL,
		cacheDir:   filepath.Clean(cacheDir),
		httpClient: client,
		logger:     logger,
	}
}

// Catalog implements ports.CatalogProvider.
func (p *Provider) Catalog(_ context.Context, platform domain.PlatformID) (ports.Catalog, error) {
	if _, ok := supportedSystems[platform]; !ok {
		return nil, zerr.With(domain.ErrCatalogUnavailable, "platform", platform.String())
	}
	return &platformCatalog{provider: p, platform: platform}, nil
}

// Prefetch resolves names concurrently so later lookups are served from the cache.
// Packages NixHub does not publish are not an error here.
func (p *Provider) Prefetch(ctx context.Context, names []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, name := range names {
		g.Go(func() error {
			_, err := p.response(ctx, name)
			if errors.Is(err, errNotPublished) {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}

// platformCatalog is the view of the provider for one platform.
type platformCatalog struct {
	provider *Provider
	platform domain.PlatformID
}

// Lookup implements ports.Catalog.
func (c *platformCatalog) Lookup(ctx context.Context, name string) (domain.Artifact, bool, error) {
	entry, err := c.provider.response(ctx, name)
	if errors.Is(err, errNotPublished) {
		return domain.Artifact{}, false, nil
	}
	if err != nil {
		wrapped := zerr.Wrap(fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err), "NixHub lookup failed")
		return domain.Artifact{}, false, zerr.With(wrapped, "package", name)
	}

	system, ok := entry.Systems[c.platform.String()]
	if !ok {
		return domain.Artifact{}, false, nil
	}

	return toArtifact(name, entry.Version, system), true, nil
}

// toArtifact converts a per-system entry into a catalog artifact.
// Default outputs form the search path; without defaults every output is used.
func toArtifact(name, version string, system SystemCache) domain.Artifact {
	var outputs []string
	for _, out := range system.Outputs {
		if out.Default && out.Path != "" {
			outputs = append(outputs, out.Path)
		}
	}
	if len(outputs) == 0 {
		for _, out := range system.Outputs {
			if out.Path != "" {
				outputs = append(outputs, out.Path)
			}
		}
	}

	rev := system.FlakeInstallable.Ref.Rev
	attrPath := system.FlakeInstallable.AttrPath

	id := "github:NixOS/nixpkgs/" + rev + "#" + attrPath
	if len(outputs) > 0 {
		id = outputs[0]
	}

	return domain.Artifact{
		ID:       id,
		Name:     name,
		Version:  version,
		AttrPath: attrPath,
		Rev:      rev,
		Outputs:  outputs,
	}
}

// response returns the cached entry for name, querying NixHub on a cache miss.
// Concurrent requests for the same name share one query.
func (p *Provider) response(ctx context.Context, name string) (*cacheEntry, error) {
	v, err, _ := p.requestGroup.Do(name, func() (any, error) {
		cachePath := p.getCachePath(name)
		if entry, err := p.loadFromCache(cachePath); err == nil {
			return entry, nil
		}

		apiResponse, err := p.queryNixHub(ctx, name)
		if err != nil {
			return nil, err
		}

		entry := newCacheEntry(name, apiResponse)
		if err := p.saveToCache(cachePath, entry); err != nil && p.logger != nil {
			p.logger.Warn("failed to cache NixHub response", "package", name, "error", err.Error())
		}

		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	//nolint:forcetypeassert // singleflight returns what the closure stored
	return v.(*cacheEntry), nil
}

// getHash generates a SHA-256 hash from a package name and the requested version.
func getHash(name, version string) string {
	input := name + "@" + version
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

// getCachePath returns the file path for the cache entry.
func (p *Provider) getCachePath(name string) string {
	return filepath.Join(p.cacheDir, getHash(name, latestVersion)+".json")
}

// loadFromCache attempts to load a cached response.
func (p *Provider) loadFromCache(path string) (*cacheEntry, error) {
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNixCacheReadFailed
		}
		return nil, zerr.Wrap(err, domain.ErrNixCacheReadFailed.Error())
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, zerr.Wrap(err, domain.ErrNixCacheReadFailed.Error())
	}

	return &entry, nil
}

func newCacheEntry(name string, resp *Response) *cacheEntry {
	systems := make(map[string]SystemCache)
	for sysName, sysData := range resp.Systems {
		if _, supported := supportedSystems[domain.PlatformID(sysName)]; !supported {
			continue
		}
		systems[sysName] = SystemCache{
			FlakeInstallable: sysData.FlakeInstallable,
			Outputs:          sysData.Outputs,
		}
	}

	return &cacheEntry{
		Name:      name,
		Version:   resp.Version,
		Systems:   systems,
		Timestamp: time.Now(),
	}
}

// saveToCache writes an entry to the cache.
func (p *Provider) saveToCache(path string, entry *cacheEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrNixCacheWriteFailed.Error())
	}

	if err := os.MkdirAll(p.cacheDir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrNixCacheCreateFailed.Error()), "path", p.cacheDir)
	}

	if err := atomicWriteFile(path, data); err != nil {
		return zerr.Wrap(err, domain.ErrNixCacheWriteFailed.Error())
	}

	return nil
}

// atomicWriteFile writes data to a file atomically by writing to a temp file and renaming it.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, "nixhub-cache-*.json")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// queryNixHub queries the NixHub API for the latest version of a package.
func (p *Provider) queryNixHub(ctx context.Context, name string) (*Response, error) {
	query := url.Values{}
	query.Set("name", name)
	query.Set("version", latestVersion)
	endpoint := p.baseURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrNixAPIRequestFailed.Error())
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrNixAPIRequestFailed.Error())
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotPublished
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := zerr.With(domain.ErrNixAPIRequestFailed, "status_code", resp.StatusCode)
		return nil, zerr.With(apiErr, "package", name)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrNixAPIRequestFailed.Error())
	}

	var apiResp Response
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, zerr.Wrap(err, domain.ErrNixAPIParseFailed.Error())
	}

	if len(apiResp.Systems) == 0 {
		return nil, errNotPublished
	}

	return &apiResp, nil
}
