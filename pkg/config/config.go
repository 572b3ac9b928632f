// Package config provides configuration management for hbpm.
// It handles loading, validating and saving the engine settings: plugin search
// behaviour, npm invocation, remote endpoints, cache lifetimes and output options.
// Settings are stored as YAML and may be overridden from the environment.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/hbpm/pkg/errors"
	"github.com/glorpus-work/hbpm/pkg/fsutil"
)

// Config represents the application configuration.
type Config struct {
	// General settings
	Settings Settings `yaml:"settings"`

	// AliasOverrides maps a plugin name to its alias when neither the schema
	// nor the extractor can determine it.
	AliasOverrides map[string]AliasOverride `yaml:"alias_overrides,omitempty"`
}

// AliasOverride is a manual alias/type entry.
type AliasOverride struct {
	Alias string `yaml:"alias"`
	Type  string `yaml:"type"` // platform or accessory
}

// Settings represents general application settings.
type Settings struct {
	// Plugin resolution
	CustomPluginPath       string `yaml:"custom_plugin_path,omitempty"`
	StrictPluginResolution bool   `yaml:"strict_plugin_resolution"`
	SelfInstallPath        string `yaml:"self_install_path,omitempty"`
	HomebridgeConfigPath   string `yaml:"homebridge_config_path,omitempty"`

	// npm invocation
	Sudo              bool          `yaml:"sudo"`
	NpmPath           string        `yaml:"npm_path"`
	NodePath          string        `yaml:"node_path"`
	NpmGlobalPrefix   string        `yaml:"npm_global_prefix,omitempty"`
	OperationTimeout  time.Duration `yaml:"operation_timeout"`
	OfflineSelfUpdate bool          `yaml:"offline_self_update"`

	// Remote endpoints
	RegistryURL        string `yaml:"registry_url"`
	GitHubAPIURL       string `yaml:"github_api_url"`
	VerifiedPluginsURL string `yaml:"verified_plugins_url"`
	PluginIconsURL     string `yaml:"plugin_icons_url"`
	BundleBaseURL      string `yaml:"bundle_base_url"`
	SelfBundleBaseURL  string `yaml:"self_bundle_base_url"`
	PluginBundles      bool   `yaml:"plugin_bundles"`

	// Credentials: "user:password" for Basic, anything else is sent as a Bearer token
	RegistryToken string `yaml:"registry_token,omitempty"`
	GitHubToken   string `yaml:"github_token,omitempty"`

	// Cache settings
	CacheDir         string        `yaml:"cache_dir,omitempty"`
	RegistryTimeout  time.Duration `yaml:"registry_timeout"`
	RegistryCacheTTL time.Duration `yaml:"registry_cache_ttl"`
	AliasCacheTTL    time.Duration `yaml:"alias_cache_ttl"`

	// Hooks
	HooksDir string `yaml:"hooks_dir,omitempty"`

	// Output settings
	OutputFormat string `yaml:"output_format"` // text, json
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
}

// Default configuration values.
const (
	DefaultOperationTimeout = 300 * time.Second
	DefaultRegistryTimeout  = 15 * time.Second
	DefaultRegistryCacheTTL = 60 * time.Second
	DefaultAliasCacheTTL    = 24 * time.Hour

	DefaultRegistryURL        = "https://registry.npmjs.org"
	DefaultGitHubAPIURL       = "https://api.github.com"
	DefaultVerifiedPluginsURL = "https://raw.githubusercontent.com/homebridge/verified/latest/verified-plugins.json"
	DefaultPluginIconsURL     = "https://raw.githubusercontent.com/homebridge/verified/latest/plugin-icons.json"
	DefaultBundleBaseURL      = "https://github.com/homebridge/plugin-repo/releases/download/v1"
	DefaultSelfBundleBaseURL  = "https://github.com/homebridge/homebridge-config-ui-x/releases/download"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// Environment variables that override the configuration file.
const (
	EnvCustomPluginPath       = "UIX_CUSTOM_PLUGIN_PATH"
	EnvStrictPluginResolution = "UIX_STRICT_PLUGIN_RESOLUTION"
	EnvSudo                   = "UIX_SUDO"
	EnvHomebridgeConfigPath   = "UIX_CONFIG_PATH"
	EnvRegistryToken          = "NPM_TOKEN"
	EnvGitHubToken            = "GITHUB_TOKEN"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		cacheDir = filepath.Join(os.TempDir(), fsutil.AppName)
	}

	hbConfig := ""
	if home, err := os.UserHomeDir(); err == nil {
		hbConfig = filepath.Join(home, ".homebridge", "config.json")
	}

	return &Config{
		Settings: Settings{
			HomebridgeConfigPath: hbConfig,
			NpmPath:              "npm",
			NodePath:             "node",
			OperationTimeout:     DefaultOperationTimeout,
			RegistryURL:          DefaultRegistryURL,
			GitHubAPIURL:         DefaultGitHubAPIURL,
			VerifiedPluginsURL:   DefaultVerifiedPluginsURL,
			PluginIconsURL:       DefaultPluginIconsURL,
			BundleBaseURL:        DefaultBundleBaseURL,
			SelfBundleBaseURL:    DefaultSelfBundleBaseURL,
			CacheDir:             cacheDir,
			RegistryTimeout:      DefaultRegistryTimeout,
			RegistryCacheTTL:     DefaultRegistryCacheTTL,
			AliasCacheTTL:        DefaultAliasCacheTTL,
			OutputFormat:         "text",
			LogLevel:             "info",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveConfig writes the configuration to path atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := fsutil.CreateFilePerm(tempPath, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigMarshal, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateSettings(c.Settings); err != nil {
		return err
	}
	for name, o := range c.AliasOverrides {
		if o.Alias == "" {
			return fmt.Errorf("%w: alias override for %s has no alias", errors.ErrConfigValidation, name)
		}
		switch o.Type {
		case "", "platform", "accessory":
		default:
			return fmt.Errorf("%w: alias override for %s has invalid type %q", errors.ErrConfigValidation, name, o.Type)
		}
	}
	return nil
}

func validateSettings(s Settings) error {
	durations := []struct {
		key string
		val time.Duration
	}{
		{"operation_timeout", s.OperationTimeout},
		{"registry_timeout", s.RegistryTimeout},
		{"registry_cache_ttl", s.RegistryCacheTTL},
		{"alias_cache_ttl", s.AliasCacheTTL},
	}
	for _, d := range durations {
		if d.val < 0 {
			return errors.ErrNegativeDurationWithKey(d.key)
		}
	}
	if s.CustomPluginPath != "" && !filepath.IsAbs(s.CustomPluginPath) {
		return fmt.Errorf("%w: custom_plugin_path must be absolute", errors.ErrConfigValidation)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.OutputFormat] {
		return errors.ErrInvalidOutputFormatWithDetails(s.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// ApplyEnv overrides settings from environment variables. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvCustomPluginPath); ok && v != "" {
		c.Settings.CustomPluginPath = v
	}
	if v, ok := lookup(EnvHomebridgeConfigPath); ok && v != "" {
		c.Settings.HomebridgeConfigPath = v
	}
	if v, ok := lookup(EnvRegistryToken); ok && v != "" {
		c.Settings.RegistryToken = v
	}
	if v, ok := lookup(EnvGitHubToken); ok && v != "" {
		c.Settings.GitHubToken = v
	}
	if v, ok := lookup(EnvStrictPluginResolution); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", errors.ErrConfigValidation, EnvStrictPluginResolution, v)
		}
		c.Settings.StrictPluginResolution = b
	}
	if v, ok := lookup(EnvSudo); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", errors.ErrConfigValidation, EnvSudo, v)
		}
		c.Settings.Sudo = b
	}
	c.Settings.normalizePaths()
	return c.Validate()
}

// normalizePaths cleans directory settings so trailing separators never change which
// directory the package manager runs in.
func (s *Settings) normalizePaths() {
	for _, p := range []*string{&s.CustomPluginPath, &s.SelfInstallPath, &s.HomebridgeConfigPath, &s.CacheDir, &s.HooksDir} {
		if *p != "" {
			*p = filepath.Clean(*p)
		}
	}
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	d := DefaultConfig().Settings
	s := &c.Settings

	setString := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	setDuration := func(dst *time.Duration, def time.Duration) {
		if *dst == 0 {
			*dst = def
		}
	}

	setString(&s.HomebridgeConfigPath, d.HomebridgeConfigPath)
	setString(&s.NpmPath, d.NpmPath)
	setString(&s.NodePath, d.NodePath)
	setString(&s.RegistryURL, d.RegistryURL)
	setString(&s.GitHubAPIURL, d.GitHubAPIURL)
	setString(&s.VerifiedPluginsURL, d.VerifiedPluginsURL)
	setString(&s.PluginIconsURL, d.PluginIconsURL)
	setString(&s.BundleBaseURL, d.BundleBaseURL)
	setString(&s.SelfBundleBaseURL, d.SelfBundleBaseURL)
	setString(&s.CacheDir, d.CacheDir)
	setString(&s.OutputFormat, d.OutputFormat)
	setString(&s.LogLevel, d.LogLevel)

	setDuration(&s.OperationTimeout, d.OperationTimeout)
	setDuration(&s.RegistryTimeout, d.RegistryTimeout)
	setDuration(&s.RegistryCacheTTL, d.RegistryCacheTTL)
	setDuration(&s.AliasCacheTTL, d.AliasCacheTTL)

	s.normalizePaths()
}
