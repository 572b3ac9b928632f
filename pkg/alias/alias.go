// Package alias determines the registration alias and type of an installed plugin.
package alias

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"os"
	"os/exec"
	"time"

	"github.com/glorpus-work/hbpm/internal/logger"
	"github.com/glorpus-work/hbpm/pkg/cache"
	"github.com/glorpus-work/hbpm/pkg/clock"
	"github.com/glorpus-work/hbpm/pkg/errors"
	"github.com/glorpus-work/hbpm/pkg/manifest"
	"github.com/glorpus-work/hbpm/pkg/model"
)

//go:embed extractor.js
var extractorScript string

// ExtractTimeout bounds a single extractor run.
const ExtractTimeout = 15 * time.Second

// RunFunc runs name with args in dir with the given environment and returns stdout.
type RunFunc func(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error)

// Options configure an Extractor.
type Options struct {
	NodePath  string
	CacheTTL  time.Duration
	Overrides map[string]model.AliasInfo
	Clock     clock.Clock
	Run       RunFunc
}

// Extractor resolves alias/type with a schema → sandboxed probe → override table chain.
type Extractor struct {
	nodePath  string
	overrides map[string]model.AliasInfo
	cache     *cache.TTL[string, model.AliasInfo]
	run       RunFunc
}

// New creates an Extractor. Configured overrides take precedence over built-in ones.
func New(opts Options) *Extractor {
	overrides := make(map[string]model.AliasInfo, len(builtinOverrides)+len(opts.Overrides))
	for k, v := range builtinOverrides {
		overrides[k] = v
	}
	for k, v := range opts.Overrides {
		overrides[k] = v
	}
	nodePath := opts.NodePath
	if nodePath == "" {
		nodePath = "node"
	}
	run := opts.Run
	if run == nil {
		run = execRun
	}
	return &Extractor{
		nodePath:  nodePath,
		overrides: overrides,
		cache:     cache.NewTTL[string, model.AliasInfo](opts.CacheTTL, opts.Clock),
		run:       run,
	}
}

// Get returns the alias and type of rec. The result is cached per name and tagged with the
// installed version, so an upgrade invalidates it.
func (e *Extractor) Get(ctx context.Context, rec model.PackageRecord) (model.AliasInfo, error) {
	if !rec.Installed() || rec.PackagePath == "" {
		return model.AliasInfo{}, errors.ErrNotFoundWithName("installed plugin", rec.Name)
	}
	if info, ok := e.cache.GetTagged(rec.Name, rec.InstalledVersion); ok {
		return info, nil
	}

	info := e.resolve(ctx, rec)
	e.cache.SetTagged(rec.Name, rec.InstalledVersion, info)
	return info, nil
}

func (e *Extractor) resolve(ctx context.Context, rec model.PackageRecord) model.AliasInfo {
	if manifest.HasConfigSchema(rec.PackagePath) {
		schema, err := manifest.ReadConfigSchema(rec.PackagePath)
		if err == nil {
			return model.AliasInfo{Alias: schema.PluginAlias, Type: schema.PluginType}
		}
		logger.Warnf("Ignoring settings schema of %s: %v", rec.Name, err)
	}

	if info, err := e.extract(ctx, rec.PackagePath); err == nil && info.Alias != "" {
		return info
	} else if err != nil {
		logger.DebugfWithFields(logger.Fields{"plugin": rec.Name}, "Alias extractor failed: %v", err)
	}

	if info, ok := e.overrides[rec.Name]; ok {
		return info
	}
	return model.AliasInfo{}
}

// extract loads the plugin in a throwaway node process and captures its registration call.
func (e *Extractor) extract(ctx context.Context, packagePath string) (model.AliasInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, ExtractTimeout)
	defer cancel()

	sandbox, err := os.MkdirTemp("", "hbpm-alias-*")
	if err != nil {
		return model.AliasInfo{}, errors.Wrap(err, "failed to create sandbox directory")
	}
	defer func() { _ = os.RemoveAll(sandbox) }()

	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + sandbox,
		"NODE_ENV=production",
	}
	out, err := e.run(ctx, sandbox, env, e.nodePath, "-e", extractorScript, packagePath)
	if err != nil {
		return model.AliasInfo{}, err
	}
	return parseExtractorOutput(out)
}

// parseExtractorOutput takes the last JSON line printed by the extractor.
func parseExtractorOutput(out []byte) (model.AliasInfo, error) {
	var last []byte
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) > 0 && line[0] == '{' {
			last = append(last[:0], line...)
		}
	}
	if last == nil {
		return model.AliasInfo{}, errors.Wrap(errors.ErrNotFound, "extractor printed no result")
	}
	var info model.AliasInfo
	if err := json.Unmarshal(last, &info); err != nil {
		return model.AliasInfo{}, errors.Wrap(err, "invalid extractor output")
	}
	return info, nil
}

func execRun(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = env
	return cmd.Output()
}
