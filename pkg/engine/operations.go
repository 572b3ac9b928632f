package engine

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/hbpm/internal/logger"
	"github.com/glorpus-work/hbpm/pkg/errors"
	"github.com/glorpus-work/hbpm/pkg/executor"
	"github.com/glorpus-work/hbpm/pkg/fsutil"
	"github.com/glorpus-work/hbpm/pkg/hooks"
	"github.com/glorpus-work/hbpm/pkg/model"
)

// lock claims name for a mutation. A second claim fails until release is called.
func (e *Engine) lock(name string) (release func(), err error) {
	key := strings.ToLower(name)
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inFlight[key]; busy {
		return nil, fmt.Errorf("%s: %w", name, errors.ErrOperationInProgress)
	}
	e.inFlight[key] = struct{}{}
	return func() {
		e.mu.Lock()
		delete(e.inFlight, key)
		e.mu.Unlock()
	}, nil
}

// target is where and how a package operation runs.
type target struct {
	installPath string // node_modules directory holding the package
	global      bool
}

// resolveTarget picks the install location: the existing install, else the custom
// plugin path, else the self install root as a global install.
func (e *Engine) resolveTarget(ctx context.Context, name string) target {
	if name == model.HostPackage {
		if rec, err := e.hostRecord(); err == nil {
			return target{installPath: rec.InstallPath, global: rec.GlobalInstall}
		}
	} else if rec, err := e.installed(ctx, name); err == nil {
		return target{installPath: rec.InstallPath, global: rec.GlobalInstall}
	}
	if e.opts.CustomPath != "" {
		return target{installPath: e.opts.CustomPath, global: false}
	}
	return target{installPath: e.opts.SelfInstallPath, global: true}
}

// flags derives the npm flags for t. A custom path whose parent holds a package.json is
// managed through --save.
func (e *Engine) flags(t target, name string) executor.Flags {
	f := executor.Flags{Global: t.global}
	if !t.global && t.installPath == e.opts.CustomPath &&
		fsutil.Exists(filepath.Join(filepath.Dir(t.installPath), "package.json")) {
		f.Save = true
	}
	f.PreferOffline = model.IsSelf(name) && e.opts.OfflineSelfUpdate
	return f
}

// Install installs a plugin and returns the concrete version installed.
func (e *Engine) Install(ctx context.Context, req model.OperationRequest, out io.Writer) (string, error) {
	req.Action = model.ActionInstall
	if err := validateName(req.Name); err != nil {
		return "", err
	}
	return e.installOrUpdate(ctx, req, out)
}

// Update updates a plugin and returns the concrete version installed.
func (e *Engine) Update(ctx context.Context, req model.OperationRequest, out io.Writer) (string, error) {
	req.Action = model.ActionUpdate
	if err := validateName(req.Name); err != nil {
		return "", err
	}
	return e.installOrUpdate(ctx, req, out)
}

// UpdateHostPackage updates the host bridge package itself.
func (e *Engine) UpdateHostPackage(ctx context.Context, req model.OperationRequest, out io.Writer) (string, error) {
	req.Action = model.ActionUpdate
	req.Name = model.HostPackage
	return e.installOrUpdate(ctx, req, out)
}

func (e *Engine) installOrUpdate(ctx context.Context, req model.OperationRequest, out io.Writer) (string, error) {
	req = req.WithDefaults()
	release, err := e.lock(req.Name)
	if err != nil {
		return "", err
	}
	defer release()

	if req.Version == model.VersionLatest {
		latest, err := e.opts.Registry.LookupLatestVersion(ctx, req.Name)
		if err != nil {
			return "", errors.Wrapf(err, "failed to resolve latest version of %s", req.Name)
		}
		req.Version = latest
	}
	fields := logger.Fields{"plugin": req.Name, "version": req.Version, "action": req.Action}

	t := e.resolveTarget(ctx, req.Name)
	pre, post := hooks.ForAction(req.Action)
	hc := hooks.HookContext{
		PluginName:  req.Name,
		Version:     req.Version,
		Action:      req.Action,
		InstallPath: filepath.Join(t.installPath, req.Name),
	}
	if err := e.runHook(ctx, pre, hc); err != nil {
		return "", err
	}

	logger.InfofWithFields(fields, "Starting %s", req.Action)
	if !e.installBundle(ctx, req, t, out) {
		job := executor.Job{
			Name: req.Name,
			Args: executor.PackageArgs(req.Action, req.Target(), e.flags(t, req.Name)),
			Dir:  filepath.Dir(t.installPath),
			Cols: req.Cols,
			Rows: req.Rows,
		}
		if err := e.opts.Runner.Run(ctx, job, out); err != nil {
			logger.ErrorfWithFields(fields, "%s failed: %v", req.Action, err)
			return "", err
		}
	}

	e.afterMutation(ctx, post, hc)
	logger.Success(fmt.Sprintf("%s %s@%s", actionPastTense(req.Action), req.Name, req.Version), fields)
	return req.Version, nil
}

// installBundle tries the self bundle, then a third-party bundle. Failures are reported
// on out and leave the package manager as fallback.
func (e *Engine) installBundle(ctx context.Context, req model.OperationRequest, t target, out io.Writer) bool {
	if e.opts.Bundles == nil || e.opts.BundleInstaller == nil || req.Name == model.HostPackage {
		return false
	}

	var (
		url string
		ok  bool
	)
	if model.IsSelf(req.Name) {
		url, ok = e.opts.Bundles.SelfBundle(ctx, req.Version, t.installPath)
	} else {
		url, ok = e.opts.Bundles.PluginBundle(ctx, req.Name, req.Version)
	}
	if !ok {
		return false
	}

	targetDir := filepath.Join(t.installPath, req.Name)
	if err := e.opts.BundleInstaller.Install(ctx, url, req.Name, targetDir, out); err != nil {
		logger.WarnfWithFields(logger.Fields{"plugin": req.Name, "bundle": url}, "Bundle install failed: %v", err)
		fmt.Fprintf(out, "\r\nBundle install failed (%v), falling back to npm.\r\n\r\n", err)
		return false
	}
	return true
}

// Uninstall removes a plugin. The plugin manager itself can never be removed.
func (e *Engine) Uninstall(ctx context.Context, req model.OperationRequest, out io.Writer) error {
	req.Action = model.ActionUninstall
	if model.IsSelf(req.Name) {
		return fmt.Errorf("%s: %w", req.Name, errors.ErrSelfUninstall)
	}
	if err := validateName(req.Name); err != nil {
		return err
	}
	req = req.WithDefaults()

	release, err := e.lock(req.Name)
	if err != nil {
		return err
	}
	defer release()

	rec, err := e.installed(ctx, req.Name)
	if err != nil {
		return err
	}
	t := target{installPath: rec.InstallPath, global: rec.GlobalInstall}

	pre, post := hooks.ForAction(req.Action)
	hc := hooks.HookContext{
		PluginName:  req.Name,
		Version:     rec.InstalledVersion,
		Action:      req.Action,
		InstallPath: rec.PackagePath,
	}
	if err := e.runHook(ctx, pre, hc); err != nil {
		return err
	}

	job := executor.Job{
		Name: req.Name,
		Args: executor.PackageArgs(req.Action, req.Name, e.flags(t, req.Name)),
		Dir:  filepath.Dir(t.installPath),
		Cols: req.Cols,
		Rows: req.Rows,
	}
	if err := e.opts.Runner.Run(ctx, job, out); err != nil {
		return err
	}

	e.afterMutation(ctx, post, hc)
	logger.Success("Uninstalled "+req.Name, logger.Fields{"plugin": req.Name})
	return nil
}

// afterMutation recreates the custom plugin directory, runs the post hook, flags a
// restart and refreshes the snapshot.
func (e *Engine) afterMutation(ctx context.Context, post hooks.HookType, hc hooks.HookContext) {
	if e.opts.CustomPath != "" {
		if created, err := fsutil.EnsureDir(e.opts.CustomPath); err != nil {
			logger.Warnf("Failed to recreate %s: %v", e.opts.CustomPath, err)
		} else if created {
			logger.Debugf("Recreated custom plugin path %s", e.opts.CustomPath)
		}
	}
	if err := e.runHook(ctx, post, hc); err != nil {
		logger.WarnfWithFields(logger.Fields{"plugin": hc.PluginName}, "%v", err)
	}
	e.restartRequired.Store(true)
	if _, err := e.ListInstalled(ctx); err != nil {
		logger.Warnf("Failed to refresh installed plugins: %v", err)
	}
}

func (e *Engine) runHook(ctx context.Context, hookType hooks.HookType, hc hooks.HookContext) error {
	if e.opts.Hooks == nil {
		return nil
	}
	return e.opts.Hooks.Execute(ctx, hookType, hc)
}

func actionPastTense(a model.Action) string {
	switch a {
	case model.ActionInstall:
		return "Installed"
	case model.ActionUpdate:
		return "Updated"
	default:
		return "Uninstalled"
	}
}
