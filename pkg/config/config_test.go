package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/hbpm/pkg/errors"
	"github.com/glorpus-work/hbpm/pkg/fsutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, "npm", cfg.Settings.NpmPath)
	assert.Equal(t, 300*time.Second, cfg.Settings.OperationTimeout)
	assert.Equal(t, 15*time.Second, cfg.Settings.RegistryTimeout)
	assert.Equal(t, 60*time.Second, cfg.Settings.RegistryCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.Settings.AliasCacheTTL)
	assert.Equal(t, DefaultRegistryURL, cfg.Settings.RegistryURL)
	assert.False(t, cfg.Settings.PluginBundles)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `settings:
  custom_plugin_path: /var/lib/homebridge/node_modules
  strict_plugin_resolution: true
  sudo: true
  plugin_bundles: true
  operation_timeout: 10m
  log_level: debug
alias_overrides:
  homebridge-legacy:
    alias: Legacy
    type: accessory`

	require.NoError(t, os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/homebridge/node_modules", cfg.Settings.CustomPluginPath)
	assert.True(t, cfg.Settings.StrictPluginResolution)
	assert.True(t, cfg.Settings.Sudo)
	assert.True(t, cfg.Settings.PluginBundles)
	assert.Equal(t, 10*time.Minute, cfg.Settings.OperationTimeout)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, AliasOverride{Alias: "Legacy", Type: "accessory"}, cfg.AliasOverrides["homebridge-legacy"])

	// defaults filled in
	assert.Equal(t, DefaultRegistryURL, cfg.Settings.RegistryURL)
	assert.Equal(t, DefaultRegistryCacheTTL, cfg.Settings.RegistryCacheTTL)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Settings.RegistryURL, cfg.Settings.RegistryURL)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)
}

func TestLoadConfigFromReader_ParseError(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader("settings: [unclosed"))
	assert.ErrorIs(t, err, errors.ErrConfigParse)
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.CustomPluginPath = "/opt/plugins/node_modules"
	cfg.Settings.LogLevel = "warn"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.SaveConfig(path))
	assert.NoFileExists(t, path+".tmp")

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/plugins/node_modules", loaded.Settings.CustomPluginPath)
	assert.Equal(t, "warn", loaded.Settings.LogLevel)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative timeout", func(c *Config) { c.Settings.OperationTimeout = -time.Second }, true},
		{"negative alias ttl", func(c *Config) { c.Settings.AliasCacheTTL = -time.Hour }, true},
		{"relative custom path", func(c *Config) { c.Settings.CustomPluginPath = "plugins" }, true},
		{"bad output format", func(c *Config) { c.Settings.OutputFormat = "xml" }, true},
		{"bad log level", func(c *Config) { c.Settings.LogLevel = "trace" }, true},
		{"override without alias", func(c *Config) {
			c.AliasOverrides = map[string]AliasOverride{"homebridge-x": {Type: "platform"}}
		}, true},
		{"override with bad type", func(c *Config) {
			c.AliasOverrides = map[string]AliasOverride{"homebridge-x": {Alias: "X", Type: "bridge"}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrConfigValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyEnv_CleansPaths(t *testing.T) {
	env := map[string]string{
		EnvCustomPluginPath:     "/var/lib/homebridge/node_modules/",
		EnvHomebridgeConfigPath: "/var/lib/homebridge//config.json",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	cfg.Settings.HooksDir = "/etc/hbpm/hooks/"
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, filepath.Clean("/var/lib/homebridge/node_modules"), cfg.Settings.CustomPluginPath)
	assert.Equal(t, filepath.Clean("/var/lib/homebridge/config.json"), cfg.Settings.HomebridgeConfigPath)
	assert.Equal(t, filepath.Clean("/etc/hbpm/hooks"), cfg.Settings.HooksDir)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvCustomPluginPath:       "/srv/hb/node_modules",
		EnvStrictPluginResolution: "true",
		EnvSudo:                   "1",
		EnvGitHubToken:            "ghp_test",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "/srv/hb/node_modules", cfg.Settings.CustomPluginPath)
	assert.True(t, cfg.Settings.StrictPluginResolution)
	assert.True(t, cfg.Settings.Sudo)
	assert.Equal(t, "ghp_test", cfg.Settings.GitHubToken)
	assert.Empty(t, cfg.Settings.RegistryToken)

	env[EnvSudo] = "sometimes"
	assert.Error(t, DefaultConfig().ApplyEnv(lookup))
}

func TestSetAndGetValue(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.SetValue("plugin_bundles", "true"))
	assert.True(t, cfg.Settings.PluginBundles)

	require.NoError(t, cfg.SetValue("registry_cache_ttl", "90s"))
	v, err := cfg.GetValue("registry_cache_ttl")
	require.NoError(t, err)
	assert.Equal(t, "1m30s", v)

	require.NoError(t, cfg.SetValue("npm_path", "/usr/bin/npm"))
	v, err = cfg.GetValue("npm_path")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/npm", v)

	assert.Error(t, cfg.SetValue("sudo", "maybe"))
	assert.Error(t, cfg.SetValue("operation_timeout", "soon"))
	assert.Error(t, cfg.SetValue("log_level", "verbose"))

	_, err = cfg.GetValue("no_such_key")
	assert.ErrorIs(t, err, errors.ErrUnknownConfigKey)
	assert.ErrorIs(t, cfg.SetValue("no_such_key", "x"), errors.ErrUnknownConfigKey)
}

func TestToMapAndKeys(t *testing.T) {
	cfg := DefaultConfig()
	m := cfg.ToMap()
	assert.Equal(t, "false", m["sudo"])
	assert.Equal(t, "5m0s", m["operation_timeout"])
	assert.Contains(t, cfg.Keys(), "custom_plugin_path")
	assert.Len(t, cfg.Keys(), len(m))
}
