//go:generate mockgen -destination=./mocks/engine.go . Registry,Scanner,VerifiedList,AliasResolver,BundleChecker,BundleInstaller,Runner,HookRunner

package engine

import (
	"context"
	"io"

	"github.com/glorpus-work/hbpm/pkg/executor"
	"github.com/glorpus-work/hbpm/pkg/hooks"
	"github.com/glorpus-work/hbpm/pkg/model"
	"github.com/glorpus-work/hbpm/pkg/registry"
)

// Registry is the subset of the registry client used by the engine.
type Registry interface {
	Lookup(ctx context.Context, name string) (*registry.Packument, error)
	LookupLatestVersion(ctx context.Context, name string) (string, error)
	Versions(ctx context.Context, name string) (*registry.Versions, error)
	Search(ctx context.Context, query string, size int) ([]model.PackageRecord, error)
	Reconcile(ctx context.Context, rec *model.PackageRecord) error
	LatestRelease(ctx context.Context, repoURL string) (*model.Release, error)
}

// Scanner discovers installed packages on the search paths.
type Scanner interface {
	Scan(ctx context.Context, searchPaths []string) ([]model.PackageRecord, error)
}

// VerifiedList answers verified-plugin queries.
type VerifiedList interface {
	IsVerified(name string) bool
	Icon(name string) string
}

// AliasResolver resolves the registration alias of an installed plugin.
type AliasResolver interface {
	Get(ctx context.Context, rec model.PackageRecord) (model.AliasInfo, error)
}

// BundleChecker reports prebuilt bundle availability.
type BundleChecker interface {
	PluginBundle(ctx context.Context, name, version string) (string, bool)
	SelfBundle(ctx context.Context, version, installRoot string) (string, bool)
}

// BundleInstaller installs a prebuilt bundle.
type BundleInstaller interface {
	Install(ctx context.Context, url, name, targetDir string, out io.Writer) error
}

// Runner executes package manager jobs.
type Runner interface {
	Run(ctx context.Context, job executor.Job, out io.Writer) error
}

// HookRunner runs operation hooks.
type HookRunner interface {
	Execute(ctx context.Context, hookType hooks.HookType, hc hooks.HookContext) error
}

// Options wire an Engine. Registry, Scanner and Runner are required.
type Options struct {
	Registry        Registry
	Scanner         Scanner
	Verified        VerifiedList
	Aliases         AliasResolver
	Bundles         BundleChecker
	BundleInstaller BundleInstaller
	Runner          Runner
	Hooks           HookRunner

	SearchPaths       []string
	CustomPath        string // custom plugin directory; empty installs globally
	SelfInstallPath   string // install root used when no other location is known
	HostConfigPath    string // host config.json for the disabled list
	OfflineSelfUpdate bool
	Concurrency       int
	NodeVersion       func(ctx context.Context) (string, error)
}
