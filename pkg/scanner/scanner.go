// Package scanner discovers installed plugins across the resolved search paths.
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/glorpus-work/hbpm/internal/logger"
	"github.com/glorpus-work/hbpm/pkg/errors"
	"github.com/glorpus-work/hbpm/pkg/manifest"
	"github.com/glorpus-work/hbpm/pkg/model"
)

// Scanner lists package directories and builds PackageRecords from their manifests.
type Scanner struct {
	customPath   string
	selfFallback string
	limit        int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithSelfFallback sets the directory that contains the self package when it is not
// found on any search path.
func WithSelfFallback(dir string) Option {
	return func(s *Scanner) { s.selfFallback = dir }
}

// WithConcurrency bounds the number of manifests parsed in parallel.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.limit = n
		}
	}
}

// New creates a Scanner. customPath is the configured custom plugin directory, used to
// classify installs as global or not.
func New(customPath string, opts ...Option) *Scanner {
	s := &Scanner{
		customPath: filepath.Clean(customPath),
		limit:      runtime.NumCPU(),
	}
	if customPath == "" {
		s.customPath = ""
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type candidate struct {
	name        string
	installPath string
	packagePath string
}

// Scan returns one record per installed package name. Directories that are not plugins,
// lack a manifest or fail to parse are skipped.
func (s *Scanner) Scan(ctx context.Context, searchPaths []string) ([]model.PackageRecord, error) {
	candidates := s.listCandidates(searchPaths)

	parsed := make([]*model.PackageRecord, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := s.parse(c)
			if err != nil {
				fields := logger.Fields{"path": c.packagePath}
				if errors.Is(err, errors.ErrNotFound) || errors.Is(err, errNotPlugin) {
					logger.DebugfWithFields(fields, "Skipping %s: %v", c.name, err)
				} else {
					logger.WarnfWithFields(fields, "Skipping %s: %v", c.name, err)
				}
				return nil
			}
			parsed[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := merge(parsed)
	if !containsSelf(records) {
		records = append(records, s.selfRecord())
	}
	return records, nil
}

// listCandidates walks each search path one level deep, expanding @scope directories.
func (s *Scanner) listCandidates(searchPaths []string) []candidate {
	var out []candidate
	for _, root := range searchPaths {
		entries, err := os.ReadDir(root)
		if err != nil {
			logger.Debugf("Cannot read search path %s: %v", root, err)
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, "@") {
				scoped, err := os.ReadDir(filepath.Join(root, name))
				if err != nil {
					continue
				}
				for _, se := range scoped {
					full := name + "/" + se.Name()
					if isPluginDirName(se.Name()) {
						out = append(out, candidate{name: full, installPath: root, packagePath: filepath.Join(root, name, se.Name())})
					}
				}
				continue
			}
			if isPluginDirName(name) {
				out = append(out, candidate{name: name, installPath: root, packagePath: filepath.Join(root, name)})
			}
		}
	}
	return out
}

func isPluginDirName(name string) bool {
	return strings.HasPrefix(name, "homebridge-") && len(name) > len("homebridge-")
}

func (s *Scanner) parse(c candidate) (*model.PackageRecord, error) {
	pkg, err := manifest.ReadPackageJSON(c.packagePath)
	if err != nil {
		return nil, err
	}
	if !pkg.HasKeyword(model.PluginKeyword) && !model.IsSelf(c.name) {
		return nil, errNotPlugin
	}
	rec := FromManifest(pkg, c.name)
	rec.InstallPath = c.installPath
	rec.PackagePath = c.packagePath
	rec.GlobalInstall = c.installPath != s.customPath
	rec.SettingsSchema = manifest.HasConfigSchema(c.packagePath)
	return rec, nil
}

// FromManifest builds the manifest-derived part of a record.
func FromManifest(pkg *manifest.PackageJSON, fallbackName string) *model.PackageRecord {
	name := pkg.Name
	if name == "" {
		name = fallbackName
	}
	return &model.PackageRecord{
		Name:             name,
		Private:          pkg.Private,
		DisplayName:      pkg.DisplayName,
		Description:      strings.TrimSpace(pkg.Description),
		InstalledVersion: pkg.Version,
		Links: model.Links{
			Registry: model.RegistryLink(name),
			Homepage: pkg.Homepage,
			Bugs:     pkg.Bugs.URL,
		},
		Author:  pkg.Author.Name,
		Funding: pkg.Funding,
		Engines: pkg.Engines,
	}
}

// merge keeps the first record per name, except that a non-global install replaces a
// global one found earlier.
func merge(parsed []*model.PackageRecord) []model.PackageRecord {
	index := make(map[string]int)
	var out []model.PackageRecord
	for _, rec := range parsed {
		if rec == nil {
			continue
		}
		if i, ok := index[rec.Name]; ok {
			if out[i].GlobalInstall && !rec.GlobalInstall {
				out[i] = *rec
			}
			continue
		}
		index[rec.Name] = len(out)
		out = append(out, *rec)
	}
	return out
}

func containsSelf(records []model.PackageRecord) bool {
	for _, r := range records {
		if model.IsSelf(r.Name) {
			return true
		}
	}
	return false
}

func (s *Scanner) selfRecord() model.PackageRecord {
	dir := filepath.Join(s.selfFallback, model.SelfPackage)
	if s.selfFallback != "" {
		if pkg, err := manifest.ReadPackageJSON(dir); err == nil {
			rec := FromManifest(pkg, model.SelfPackage)
			rec.InstallPath = s.selfFallback
			rec.PackagePath = dir
			rec.GlobalInstall = s.selfFallback != s.customPath
			rec.SettingsSchema = manifest.HasConfigSchema(dir)
			return *rec
		}
	}
	logger.Debugf("Self package not found on search paths, using fallback %s", dir)
	return model.PackageRecord{
		Name:          model.SelfPackage,
		InstallPath:   s.selfFallback,
		PackagePath:   dir,
		GlobalInstall: true,
		Links:         model.Links{Registry: model.RegistryLink(model.SelfPackage)},
	}
}

// Sort orders records: self first, then pending updates, then pending beta updates, then by name.
func Sort(records []model.PackageRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if sa, sb := model.IsSelf(a.Name), model.IsSelf(b.Name); sa != sb {
			return sa
		}
		if a.UpdateAvailable != b.UpdateAvailable {
			return a.UpdateAvailable
		}
		if a.BetaUpdateAvailable != b.BetaUpdateAvailable {
			return a.BetaUpdateAvailable
		}
		return a.Name < b.Name
	})
}
