package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/hbpm/internal/logger"
	"github.com/glorpus-work/hbpm/pkg/config"
	"github.com/glorpus-work/hbpm/pkg/errors"
)

const maskedValue = "********"

// NewConfigCmd creates the config command with subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  "View and modify hbpm configuration settings",
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
		newConfigAliasCmd(),
		newConfigInitCmd(),
		newConfigPathCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective settings, including environment overrides; credentials are masked",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			settings := maskedSettings(cfg)
			if jsonOutput(cfg) {
				return printJSON(map[string]any{
					"settings":        settings,
					"alias_overrides": cfg.AliasOverrides,
				})
			}
			printSettings(cfg, settings)
			return nil
		},
	}
}

func maskedSettings(cfg *config.Config) map[string]string {
	settings := cfg.ToMap()
	for key, value := range settings {
		if strings.HasSuffix(key, "_token") && value != "" {
			settings[key] = maskedValue
		}
	}
	return settings
}

func printSettings(cfg *config.Config, settings map[string]string) {
	tabWriter := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "SETTING\tVALUE")
	_, _ = fmt.Fprintln(tabWriter, "-------\t-----")
	for _, key := range cfg.Keys() {
		_, _ = fmt.Fprintf(tabWriter, "%s\t%s\n", key, settings[key])
	}
	_ = tabWriter.Flush()

	if len(cfg.AliasOverrides) == 0 {
		return
	}
	fmt.Printf("\nAlias overrides (%d):\n", len(cfg.AliasOverrides))
	for _, name := range sortedKeys(cfg.AliasOverrides) {
		o := cfg.AliasOverrides[name]
		fmt.Printf("  %s: %s (%s)\n", name, o.Alias, o.Type)
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			value, err := cfg.GetValue(args[0])
			if err != nil {
				return fmt.Errorf("failed to get configuration value: %w", err)
			}
			fmt.Println(value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			err := updateConfigFile(func(cfg *config.Config) error {
				return cfg.SetValue(key, value)
			})
			if err != nil {
				return err
			}

			shown := value
			if strings.HasSuffix(key, "_token") {
				shown = maskedValue
			}
			logger.Success("Configuration updated", logger.Fields{"key": key, "value": shown})
			return nil
		},
	}
}

func newConfigAliasCmd() *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "alias NAME [ALIAS TYPE]",
		Short: "Set the alias override of a plugin",
		Long: "Record the registration alias and type (platform or accessory) of a plugin whose " +
			"schema does not declare them, or drop the override with --remove",
		Args: func(cmd *cobra.Command, args []string) error {
			if remove {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(3)(cmd, args)
		},
		RunE: func(_ *cobra.Command, args []string) error {
			name := args[0]
			err := updateConfigFile(func(cfg *config.Config) error {
				if remove {
					delete(cfg.AliasOverrides, name)
					return nil
				}
				pluginType := strings.ToLower(args[2])
				if pluginType != "platform" && pluginType != "accessory" {
					return fmt.Errorf("%w: type must be platform or accessory, got %q", errors.ErrInvalidInput, args[2])
				}
				if cfg.AliasOverrides == nil {
					cfg.AliasOverrides = make(map[string]config.AliasOverride)
				}
				cfg.AliasOverrides[name] = config.AliasOverride{Alias: args[1], Type: pluginType}
				return nil
			})
			if err != nil {
				return err
			}
			logger.Success("Alias override updated", logger.Fields{"plugin": name, "removed": remove})
			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the override")

	return cmd
}

// updateConfigFile applies fn to the configuration file as written, without environment
// overrides, and saves it.
func updateConfigFile(fn func(*config.Config) error) error {
	configPath := getConfigPath()
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	if err := cfg.SaveConfig(configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		Long:  "Write a configuration file holding the default settings",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			configPath := getConfigPath()
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s (use --force to overwrite): %w", configPath, errors.ErrConfigFileExists)
			}
			if err := config.DefaultConfig().SaveConfig(configPath); err != nil {
				return fmt.Errorf("failed to save default configuration: %w", err)
			}
			logger.Success("Configuration file created", logger.Fields{"path": configPath})
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration file")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Println(getConfigPath())
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
