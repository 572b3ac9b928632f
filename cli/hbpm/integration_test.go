//go:build integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/hbpm/pkg/errors"
	"github.com/glorpus-work/hbpm/pkg/model"
)

type env struct {
	root       string
	cfgPath    string
	customPath string
	cacheDir   string
	hooksDir   string
}

func newEnv(t *testing.T, registryURL string) *env {
	t.Helper()
	root := t.TempDir()
	e := &env{
		root:       root,
		cfgPath:    filepath.Join(root, "config.yaml"),
		customPath: filepath.Join(root, "plugins", "node_modules"),
		cacheDir:   filepath.Join(root, "cache"),
		hooksDir:   filepath.Join(root, "hooks"),
	}
	require.NoError(t, os.MkdirAll(e.customPath, 0o755))

	yamlContent := `settings:
  custom_plugin_path: ` + e.customPath + `
  strict_plugin_resolution: true
  self_install_path: ` + filepath.Join(root, "global") + `
  homebridge_config_path: ` + filepath.Join(root, "config.json") + `
  registry_url: ` + registryURL + `
  github_api_url: ` + registryURL + `
  verified_plugins_url: ` + registryURL + `/verified.json
  plugin_icons_url: ` + registryURL + `/icons.json
  plugin_bundles: false
  cache_dir: ` + e.cacheDir + `
  hooks_dir: ` + e.hooksDir + `
  registry_timeout: 5s
`
	require.NoError(t, os.WriteFile(e.cfgPath, []byte(yamlContent), 0o600))
	return e
}

func (e *env) writePlugin(t *testing.T, name, version string) {
	t.Helper()
	dir := filepath.Join(e.customPath, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	pkg := map[string]any{
		"name":        name,
		"version":     version,
		"description": "test plugin",
		"keywords":    []string{model.PluginKeyword},
	}
	data, err := json.Marshal(pkg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), data, 0o644))
}

// run executes the root command and returns what it wrote to stdout.
func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", e.cfgPath}, args...))

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	runErr := cmd.ExecuteContext(context.Background())

	_ = w.Close()
	os.Stdout = oldStdout
	return <-done, runErr
}

func registryServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/verified.json":
			_, _ = io.WriteString(w, `["homebridge-dummy"]`)
		case "/icons.json":
			_, _ = io.WriteString(w, `{}`)
		case "/homebridge-dummy":
			_, _ = io.WriteString(w, `{
				"name": "homebridge-dummy",
				"dist-tags": {"latest": "1.2.0"},
				"versions": {
					"1.0.0": {"name": "homebridge-dummy", "version": "1.0.0"},
					"1.2.0": {"name": "homebridge-dummy", "version": "1.2.0", "keywords": ["homebridge-plugin"]}
				},
				"keywords": ["homebridge-plugin"]
			}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVersionCommand(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")
	out, err := e.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "hbpm 0.1.0")
}

func TestConfig_InitSetGet(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")
	require.NoError(t, os.Remove(e.cfgPath))

	_, err := e.run(t, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, e.cfgPath)

	_, err = e.run(t, "config", "init")
	require.ErrorIs(t, err, errors.ErrConfigFileExists)

	_, err = e.run(t, "config", "set", "sudo", "true")
	require.NoError(t, err)

	out, err := e.run(t, "config", "get", "sudo")
	require.NoError(t, err)
	assert.Equal(t, "true", strings.TrimSpace(out))

	_, err = e.run(t, "config", "get", "no_such_key")
	require.Error(t, err)
}

func TestConfig_AliasOverrideAndMasking(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")

	_, err := e.run(t, "config", "alias", "homebridge-dummy", "DummyPlatform", "Platform")
	require.NoError(t, err)
	_, err = e.run(t, "config", "alias", "homebridge-dummy", "Dummy", "switch")
	require.ErrorIs(t, err, errors.ErrInvalidInput)
	_, err = e.run(t, "config", "set", "github_token", "ghp_secret")
	require.NoError(t, err)

	out, err := e.run(t, "--output", "json", "config", "show")
	require.NoError(t, err)
	var shown struct {
		Settings       map[string]string `json:"settings"`
		AliasOverrides map[string]struct {
			Alias string
			Type  string
		} `json:"alias_overrides"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "********", shown.Settings["github_token"])
	assert.Equal(t, "DummyPlatform", shown.AliasOverrides["homebridge-dummy"].Alias)
	assert.Equal(t, "platform", shown.AliasOverrides["homebridge-dummy"].Type)

	_, err = e.run(t, "config", "alias", "--remove", "homebridge-dummy")
	require.NoError(t, err)
	out, err = e.run(t, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "DummyPlatform")
}

func TestCache_InfoAndDir(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")
	bundles := filepath.Join(e.cacheDir, "bundles")
	require.NoError(t, os.MkdirAll(bundles, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bundles, "a.tar.gz"), []byte("data"), 0o644))

	out, err := e.run(t, "cache", "dir")
	require.NoError(t, err)
	assert.Equal(t, e.cacheDir, strings.TrimSpace(out))

	out, err = e.run(t, "cache", "info")
	require.NoError(t, err)
	assert.Contains(t, out, "Bundle Cache: 4 B (1 files)")

	_, err = e.run(t, "cache", "clean")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(bundles, "a.tar.gz"))
}

func TestList_JSON(t *testing.T) {
	srv := registryServer(t)
	e := newEnv(t, srv.URL)
	e.writePlugin(t, "homebridge-dummy", "1.0.0")

	out, err := e.run(t, "--output", "json", "list")
	require.NoError(t, err)

	var records []model.PackageRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))

	var found *model.PackageRecord
	for i := range records {
		if records[i].Name == "homebridge-dummy" {
			found = &records[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "1.0.0", found.InstalledVersion)
	assert.Equal(t, "1.2.0", found.LatestVersion)
	assert.True(t, found.UpdateAvailable)
	assert.True(t, found.Verified)
	assert.False(t, found.GlobalInstall)
}

func TestPaths_IncludesCustomPath(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")
	out, err := e.run(t, "paths")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, e.customPath, lines[0])
}

func TestInstall_RejectsInvalidName(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")
	_, err := e.run(t, "install", "left-pad")
	require.ErrorIs(t, err, errors.ErrInvalidName)
}

func TestUninstall_RejectsSelf(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")
	_, err := e.run(t, "uninstall", model.SelfPackage)
	require.ErrorIs(t, err, errors.ErrSelfUninstall)
}

func TestHooks_InitAndList(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")

	out, err := e.run(t, "hooks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No hooks configured")

	_, err = e.run(t, "hooks", "init", "post-install")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(e.hooksDir, "post-install.tengo"))

	_, err = e.run(t, "hooks", "init", "post-install")
	require.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = e.run(t, "hooks", "init", "sometimes")
	require.ErrorIs(t, err, errors.ErrInvalidInput)

	out, err = e.run(t, "hooks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "post-install")
}
