package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/glorpus-work/hbpm/internal/logger"
	"github.com/glorpus-work/hbpm/pkg/config"
)

// These variables will be set by the main package
var (
	ConfigPath   *string
	EnvFile      *string
	Verbose      *bool
	OutputFormat *string
)

// loadConfig loads the .env file, the configuration file and the environment overrides,
// then applies command line flags and initialises logging.
func loadConfig() (*config.Config, error) {
	loadEnvFile()

	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if OutputFormat != nil && *OutputFormat != "" {
		cfg.Settings.OutputFormat = *OutputFormat
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.InitLogger(cfg.Settings.LogLevel, logger.OutputFormat(cfg.Settings.OutputFormat))
	return cfg, nil
}

// loadEnvFile loads KEY=VALUE pairs without overriding variables already set.
func loadEnvFile() {
	path := ".env"
	explicit := false
	if EnvFile != nil && *EnvFile != "" {
		path = *EnvFile
		explicit = true
	}
	if err := godotenv.Load(path); err != nil && (explicit || !os.IsNotExist(err)) {
		logger.Warn("Failed to load environment file", logger.Fields{"path": path, "error": err})
	}
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

func jsonOutput(cfg *config.Config) bool {
	return cfg.Settings.OutputFormat == string(logger.FormatJSON)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// splitTarget splits NAME[@VERSION]; the leading @ of a scope is not a separator.
func splitTarget(arg string) (name, version string) {
	if i := strings.LastIndex(arg, "@"); i > 0 {
		return arg[:i], arg[i+1:]
	}
	return arg, ""
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
