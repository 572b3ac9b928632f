package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/hbpm/internal/cli"
)

var (
	configPath   string
	envFile      string
	verbose      bool
	outputFormat string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hbpm",
		Short: "Homebridge plugin manager",
		Long: `hbpm manages Homebridge plugins:
- discover installed plugins and compare them with the npm registry
- install, update and uninstall plugins through npm or prebuilt bundles
- inspect plugin aliases, changelogs and releases`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "environment file to load (default: .env when present)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format (text, json)")

	cli.ConfigPath = &configPath
	cli.EnvFile = &envFile
	cli.Verbose = &verbose
	cli.OutputFormat = &outputFormat

	cmd.AddCommand(
		cli.NewListCmd(),
		cli.NewSearchCmd(),
		cli.NewInfoCmd(),
		cli.NewVersionsCmd(),
		cli.NewInstallCmd(),
		cli.NewUpdateCmd(),
		cli.NewUninstallCmd(),
		cli.NewAliasCmd(),
		cli.NewChangelogCmd(),
		cli.NewReleaseCmd(),
		cli.NewHostCmd(),
		cli.NewPathsCmd(),
		cli.NewHooksCmd(),
		cli.NewConfigCmd(),
		cli.NewCacheCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
