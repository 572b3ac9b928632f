package cli

import (
	"context"
	"path/filepath"

	"github.com/glorpus-work/hbpm/internal/logger"
	"github.com/glorpus-work/hbpm/pkg/alias"
	"github.com/glorpus-work/hbpm/pkg/archive"
	"github.com/glorpus-work/hbpm/pkg/auth"
	"github.com/glorpus-work/hbpm/pkg/bundle"
	"github.com/glorpus-work/hbpm/pkg/cache"
	"github.com/glorpus-work/hbpm/pkg/clock"
	"github.com/glorpus-work/hbpm/pkg/config"
	"github.com/glorpus-work/hbpm/pkg/download"
	"github.com/glorpus-work/hbpm/pkg/engine"
	"github.com/glorpus-work/hbpm/pkg/executor"
	"github.com/glorpus-work/hbpm/pkg/hooks"
	hbhttp "github.com/glorpus-work/hbpm/pkg/http"
	"github.com/glorpus-work/hbpm/pkg/model"
	"github.com/glorpus-work/hbpm/pkg/platform"
	"github.com/glorpus-work/hbpm/pkg/registry"
	"github.com/glorpus-work/hbpm/pkg/scanner"
	"github.com/glorpus-work/hbpm/pkg/searchpath"
	"github.com/glorpus-work/hbpm/pkg/verified"
)

// runtime holds the wired engine and the collaborators commands touch directly.
type runtime struct {
	cfg      *config.Config
	engine   *engine.Engine
	verified *verified.Cache
}

// newRuntime wires every engine component from an immutable configuration snapshot.
func newRuntime(cfg *config.Config) (*runtime, error) {
	s := cfg.Settings
	clk := clock.New()

	paths := searchpath.Resolve(searchpath.FromEnvironment(searchpath.Options{
		CustomPath:   s.CustomPluginPath,
		Strict:       s.StrictPluginResolution,
		GlobalPrefix: s.NpmGlobalPrefix,
	}))
	logger.Debug("Resolved search paths", logger.Fields{"paths": paths})

	selfRoot := selfInstallRoot(s, paths)
	credentials, err := credentialHosts(s)
	if err != nil {
		return nil, err
	}
	httpClient := hbhttp.NewClient(s.RegistryTimeout).WithAuth(credentials)

	reg := registry.New(registry.Options{
		RegistryURL: s.RegistryURL,
		GitHubURL:   s.GitHubAPIURL,
		Timeout:     s.RegistryTimeout,
		CacheTTL:    s.RegistryCacheTTL,
		Clock:       clk,
		Auth:        credentials,
	})
	verifiedList := verified.New(httpClient, s.VerifiedPluginsURL, s.PluginIconsURL, clk)

	overrides := make(map[string]model.AliasInfo, len(cfg.AliasOverrides))
	for name, o := range cfg.AliasOverrides {
		overrides[name] = model.AliasInfo{Alias: o.Alias, Type: o.Type}
	}
	aliases := alias.New(alias.Options{
		NodePath:  s.NodePath,
		CacheTTL:  s.AliasCacheTTL,
		Overrides: overrides,
		Clock:     clk,
	})

	runner := executor.New(executor.Options{
		NpmPath: s.NpmPath,
		Sudo:    s.Sudo,
		Timeout: s.OperationTimeout,
		Clock:   clk,
	})

	cacheDir := cache.NewDir(s.CacheDir)
	checker := bundle.NewChecker(httpClient, bundle.CheckerOptions{
		BaseURL:     s.BundleBaseURL,
		SelfBaseURL: s.SelfBundleBaseURL,
		Enabled:     s.PluginBundles,
		CustomPath:  s.CustomPluginPath,
		Strict:      s.StrictPluginResolution,
	})
	installer := bundle.NewInstaller(download.NewManager(httpClient), archive.NewManager(), cacheDir, runner.Rebuild)

	hookRunner := hooks.NewTengoExecutor()
	loaded, err := hooks.LoadDir(hookRunner, s.HooksDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded hook scripts", logger.Fields{"count": len(loaded), "dir": s.HooksDir})

	eng, err := engine.New(engine.Options{
		Registry:          reg,
		Scanner:           scanner.New(s.CustomPluginPath, scanner.WithSelfFallback(selfRoot)),
		Verified:          verifiedList,
		Aliases:           aliases,
		Bundles:           checker,
		BundleInstaller:   installer,
		Runner:            runner,
		Hooks:             hookRunner,
		SearchPaths:       paths,
		CustomPath:        s.CustomPluginPath,
		SelfInstallPath:   selfRoot,
		HostConfigPath:    s.HomebridgeConfigPath,
		OfflineSelfUpdate: s.OfflineSelfUpdate,
		NodeVersion: func(ctx context.Context) (string, error) {
			return executor.NodeVersion(ctx, s.NodePath)
		},
	})
	if err != nil {
		return nil, err
	}

	return &runtime{cfg: cfg, engine: eng, verified: verifiedList}, nil
}

// credentialHosts scopes each configured token to the host of its endpoint.
func credentialHosts(s config.Settings) (*auth.Hosts, error) {
	hosts := auth.NewHosts()
	if err := hosts.Add(s.RegistryURL, auth.FromToken(s.RegistryToken)); err != nil {
		return nil, err
	}
	if err := hosts.Add(s.GitHubAPIURL, auth.FromToken(s.GitHubToken)); err != nil {
		return nil, err
	}
	return hosts, nil
}

// selfInstallRoot is the configured self install path, else the first OS global path.
func selfInstallRoot(s config.Settings, searchPaths []string) string {
	if s.SelfInstallPath != "" {
		return filepath.Clean(s.SelfInstallPath)
	}
	defaults := platform.DefaultGlobalPaths(goos(), s.NpmGlobalPrefix, appData())
	for _, p := range searchPaths {
		for _, d := range defaults {
			if p == filepath.Clean(d) {
				return p
			}
		}
	}
	if len(defaults) > 0 {
		return filepath.Clean(defaults[0])
	}
	return ""
}

// loadVerified refreshes the verified list once; failures only cost the verified badges.
func (r *runtime) loadVerified(ctx context.Context) {
	if err := r.verified.Refresh(ctx); err != nil {
		logger.Warnf("Could not load the verified plugin list: %v", err)
	}
}
