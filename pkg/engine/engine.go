// Package engine ties discovery, registry reconciliation, bundles and the package
// manager executor together into the plugin lifecycle operations.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/glorpus-work/hbpm/internal/logger"
	"github.com/glorpus-work/hbpm/pkg/errors"
	"github.com/glorpus-work/hbpm/pkg/hostconfig"
	"github.com/glorpus-work/hbpm/pkg/manifest"
	"github.com/glorpus-work/hbpm/pkg/model"
	"github.com/glorpus-work/hbpm/pkg/registry"
	"github.com/glorpus-work/hbpm/pkg/scanner"
)

// changelogFiles are tried in order inside a package directory.
var changelogFiles = []string{"CHANGELOG.md", "changelog.md", "Changelog.md", "CHANGELOG.MD", "CHANGELOG"}

// Engine is the plugin lifecycle engine.
type Engine struct {
	opts Options

	snapshot        atomic.Pointer[[]model.PackageRecord]
	restartRequired atomic.Bool

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Registry == nil || opts.Scanner == nil || opts.Runner == nil {
		return nil, fmt.Errorf("%w: registry, scanner and runner are required", errors.ErrInvalidInput)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	// Paths are compared against cleaned scanner paths and fed to filepath.Dir.
	opts.CustomPath = cleanPath(opts.CustomPath)
	opts.SelfInstallPath = cleanPath(opts.SelfInstallPath)
	paths := make([]string, 0, len(opts.SearchPaths))
	for _, p := range opts.SearchPaths {
		paths = append(paths, cleanPath(p))
	}
	opts.SearchPaths = paths
	return &Engine{opts: opts, inFlight: make(map[string]struct{})}, nil
}

func cleanPath(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

// SearchPaths returns the directories scanned for installed packages.
func (e *Engine) SearchPaths() []string {
	return append([]string(nil), e.opts.SearchPaths...)
}

// RestartRequired reports whether a mutation succeeded since the flag was last cleared.
func (e *Engine) RestartRequired() bool {
	return e.restartRequired.Load()
}

// ClearRestartRequired resets the restart-required flag.
func (e *Engine) ClearRestartRequired() {
	e.restartRequired.Store(false)
}

// Snapshot returns the result of the last ListInstalled call, or nil.
func (e *Engine) Snapshot() []model.PackageRecord {
	p := e.snapshot.Load()
	if p == nil {
		return nil
	}
	return append([]model.PackageRecord(nil), (*p)...)
}

// ListInstalled discovers installed plugins, reconciles them against the registry and
// enriches them with verified and disabled state. The result replaces the snapshot.
func (e *Engine) ListInstalled(ctx context.Context) ([]model.PackageRecord, error) {
	records, err := e.opts.Scanner.Scan(ctx, e.opts.SearchPaths)
	if err != nil {
		return nil, err
	}

	disabled := map[string]bool{}
	if doc, err := hostconfig.Read(e.opts.HostConfigPath); err != nil {
		logger.Warnf("Could not read disabled plugins: %v", err)
	} else {
		disabled = doc.Disabled()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for i := range records {
		rec := &records[i]
		rec.Disabled = disabled[rec.Name]
		g.Go(func() error {
			e.reconcile(gctx, rec)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scanner.Sort(records)
	e.snapshot.Store(&records)
	return append([]model.PackageRecord(nil), records...), nil
}

func (e *Engine) reconcile(ctx context.Context, rec *model.PackageRecord) {
	if err := e.opts.Registry.Reconcile(ctx, rec); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			logger.Debugf("%s is not published on the registry", rec.Name)
		} else {
			logger.WarnfWithFields(logger.Fields{"plugin": rec.Name}, "Failed to check for updates: %v", err)
		}
	}
	e.applyVerified(rec)
}

func (e *Engine) applyVerified(rec *model.PackageRecord) {
	if e.opts.Verified == nil {
		rec.Funding = nil
		return
	}
	rec.Verified = e.opts.Verified.IsVerified(rec.Name)
	if icon := e.opts.Verified.Icon(rec.Name); icon != "" {
		rec.Icon = icon
	}
	// funding links are only shown for verified plugins
	if !rec.Verified {
		rec.Funding = nil
	}
}

// installed returns the installed record for name from the snapshot, scanning the
// filesystem when the snapshot does not know it.
func (e *Engine) installed(ctx context.Context, name string) (*model.PackageRecord, error) {
	if p := e.snapshot.Load(); p != nil {
		for _, rec := range *p {
			if rec.Name == name && rec.Installed() {
				return &rec, nil
			}
		}
	}
	records, err := e.opts.Scanner.Scan(ctx, e.opts.SearchPaths)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.Name == name && rec.Installed() {
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, errors.ErrNotInstalled)
}

func (e *Engine) installedIndex(ctx context.Context) map[string]model.PackageRecord {
	var records []model.PackageRecord
	if p := e.snapshot.Load(); p != nil {
		records = *p
	} else {
		var err error
		if records, err = e.opts.Scanner.Scan(ctx, e.opts.SearchPaths); err != nil {
			logger.Warnf("Failed to scan installed plugins: %v", err)
		}
	}
	index := make(map[string]model.PackageRecord, len(records))
	for _, rec := range records {
		index[rec.Name] = rec
	}
	return index
}

func validateName(name string) error {
	if name == "" {
		return errors.ErrMissingName
	}
	if !model.ValidPluginName(name) {
		return errors.ErrInvalidNameWithDetails(name)
	}
	return nil
}

// Search queries the registry. An exact plugin name missing from the results is looked
// up directly. Installed plugins carry their installed state.
func (e *Engine) Search(ctx context.Context, query string) ([]model.PackageRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", errors.ErrInvalidInput)
	}
	results, err := e.opts.Registry.Search(ctx, query, registry.DefaultSearchSize)
	if err != nil {
		return nil, err
	}

	if model.ValidPluginName(query) && !containsName(results, query) {
		if rec, err := e.Lookup(ctx, query); err == nil {
			results = append([]model.PackageRecord{*rec}, results...)
		} else if !errors.Is(err, errors.ErrNotFound) && !errors.Is(err, errors.ErrValidation) {
			logger.Debugf("Direct lookup of %s failed: %v", query, err)
		}
	}

	index := e.installedIndex(ctx)
	for i := range results {
		mergeInstalled(&results[i], index)
		e.applyVerified(&results[i])
	}
	return results, nil
}

func containsName(records []model.PackageRecord, name string) bool {
	for _, r := range records {
		if r.Name == name {
			return true
		}
	}
	return false
}

func mergeInstalled(rec *model.PackageRecord, index map[string]model.PackageRecord) {
	inst, ok := index[rec.Name]
	if !ok {
		return
	}
	rec.InstalledVersion = inst.InstalledVersion
	rec.InstallPath = inst.InstallPath
	rec.PackagePath = inst.PackagePath
	rec.GlobalInstall = inst.GlobalInstall
	rec.SettingsSchema = inst.SettingsSchema
	rec.Disabled = inst.Disabled
	rec.UpdateAvailable = inst.UpdateAvailable
	rec.BetaVersion = inst.BetaVersion
	rec.BetaUpdateAvailable = inst.BetaUpdateAvailable
}

// Lookup returns the registry record for a single plugin.
func (e *Engine) Lookup(ctx context.Context, name string) (*model.PackageRecord, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	p, err := e.opts.Registry.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	latest := p.DistTags["latest"]
	keywords := p.Keywords
	if v, ok := p.Versions[latest]; ok && len(v.Keywords) > 0 {
		keywords = v.Keywords
	}
	if !model.IsSelf(name) && !hasKeyword(keywords, model.PluginKeyword) {
		return nil, fmt.Errorf("%w: %s is not a homebridge plugin", errors.ErrValidation, name)
	}

	rec := &model.PackageRecord{
		Name:        name,
		Description: strings.TrimSpace(p.Description),
		Links: model.Links{
			Registry: model.RegistryLink(name),
			Homepage: p.Homepage,
			Bugs:     p.Bugs.URL,
		},
		Author: p.Author.Name,
	}
	if v, ok := p.Versions[latest]; ok {
		rec.Engines = v.Engines
		rec.Funding = v.Funding
	}
	if inst, ok := e.installedIndex(ctx)[name]; ok {
		rec.InstalledVersion = inst.InstalledVersion
		rec.InstallPath = inst.InstallPath
		rec.PackagePath = inst.PackagePath
		rec.GlobalInstall = inst.GlobalInstall
		rec.SettingsSchema = inst.SettingsSchema
		rec.Disabled = inst.Disabled
	}
	registry.ApplyPackument(rec, p)
	e.applyVerified(rec)
	return rec, nil
}

func hasKeyword(keywords []string, want string) bool {
	for _, k := range keywords {
		if k == want {
			return true
		}
	}
	return false
}

// AvailableVersions returns the published versions and dist-tags of a plugin.
func (e *Engine) AvailableVersions(ctx context.Context, name string) (*registry.Versions, error) {
	if err := validateName(name); err != nil && name != model.HostPackage {
		return nil, err
	}
	return e.opts.Registry.Versions(ctx, name)
}

// AliasAndType returns the registration alias and type of an installed plugin.
func (e *Engine) AliasAndType(ctx context.Context, name string) (model.AliasInfo, error) {
	if err := validateName(name); err != nil {
		return model.AliasInfo{}, err
	}
	if e.opts.Aliases == nil {
		return model.AliasInfo{}, nil
	}
	rec, err := e.installed(ctx, name)
	if err != nil {
		return model.AliasInfo{}, err
	}
	return e.opts.Aliases.Get(ctx, *rec)
}

// Changelog returns the changelog shipped with an installed plugin.
func (e *Engine) Changelog(ctx context.Context, name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	rec, err := e.installed(ctx, name)
	if err != nil {
		return "", err
	}
	for _, file := range changelogFiles {
		data, err := os.ReadFile(filepath.Join(rec.PackagePath, file))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", errors.Wrapf(err, "failed to read changelog of %s", name)
		}
	}
	return "", errors.ErrNotFoundWithName("changelog for", name)
}

// LatestRelease returns the latest GitHub release of a plugin's repository. The
// repository comes from the installed manifest, or from the registry otherwise.
func (e *Engine) LatestRelease(ctx context.Context, name string) (*model.Release, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	repo := ""
	if rec, err := e.installed(ctx, name); err == nil {
		if pkg, err := manifest.ReadPackageJSON(rec.PackagePath); err == nil {
			repo = pkg.RepositoryURL()
		}
	}
	if repo == "" {
		p, err := e.opts.Registry.Lookup(ctx, name)
		if err != nil {
			return nil, err
		}
		repo = (&manifest.PackageJSON{Repository: p.Repository}).RepositoryURL()
	}
	if repo == "" {
		return nil, errors.ErrNotFoundWithName("repository for", name)
	}
	return e.opts.Registry.LatestRelease(ctx, repo)
}

// hostRecord locates the host bridge package on the search paths.
func (e *Engine) hostRecord() (*model.PackageRecord, error) {
	roots := append([]string(nil), e.opts.SearchPaths...)
	if e.opts.SelfInstallPath != "" {
		roots = append(roots, e.opts.SelfInstallPath)
	}
	for _, root := range roots {
		dir := filepath.Join(root, model.HostPackage)
		pkg, err := manifest.ReadPackageJSON(dir)
		if err != nil {
			continue
		}
		rec := scanner.FromManifest(pkg, model.HostPackage)
		rec.InstallPath = root
		rec.PackagePath = dir
		rec.GlobalInstall = root != e.opts.CustomPath
		return rec, nil
	}
	return nil, errors.ErrNotFoundWithName("package", model.HostPackage)
}

// HostPackageInfo describes the installed host bridge package and the node runtime.
func (e *Engine) HostPackageInfo(ctx context.Context) (*model.HostPackageInfo, error) {
	rec, err := e.hostRecord()
	if err != nil {
		return nil, err
	}
	if err := e.opts.Registry.Reconcile(ctx, rec); err != nil {
		logger.Warnf("Failed to check %s for updates: %v", model.HostPackage, err)
	}
	info := &model.HostPackageInfo{PackageRecord: *rec}
	if e.opts.NodeVersion != nil {
		if v, err := e.opts.NodeVersion(ctx); err == nil {
			info.NodeVersion = v
		} else {
			logger.Debugf("Could not determine node version: %v", err)
		}
	}
	return info, nil
}
