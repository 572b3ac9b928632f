package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/glorpus-work/hbpm/internal/logger"
	"github.com/glorpus-work/hbpm/pkg/cache"
)

// NewCacheCmd creates the cache command with subcommands
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the bundle cache",
		Long:  "Clean, show information about, and locate downloaded plugin bundles",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
		newCacheDirCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Clean the bundle cache",
		Long:  "Remove downloaded bundles and leftover extraction directories",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return runCacheClean()
		},
	}
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display the size of the bundle cache",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return runCacheInfo()
		},
	}
}

func newCacheDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Show cache directory path",
		Long:  "Display the path to the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			dir, err := cacheDir()
			if err != nil {
				return err
			}
			fmt.Println(dir.Directory())
			return nil
		},
	}
}

func cacheDir() (*cache.Dir, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Settings.CacheDir == "" {
		return cache.NewDefaultDir()
	}
	return cache.NewDir(cfg.Settings.CacheDir), nil
}

func runCacheClean() error {
	dir, err := cacheDir()
	if err != nil {
		return err
	}

	result, err := dir.Clean()
	if err != nil {
		return err
	}

	if result.BundleFreed > 0 {
		logger.Info("Cleaned downloaded bundles", logger.Fields{"size": humanize.Bytes(uint64(result.BundleFreed))})
	}
	if result.StagingFreed > 0 {
		logger.Info("Cleaned extraction staging", logger.Fields{"size": humanize.Bytes(uint64(result.StagingFreed))})
	}

	logger.Success("Cache cleaning completed", logger.Fields{"total_freed": humanize.Bytes(uint64(result.TotalFreed))})
	return nil
}

func runCacheInfo() error {
	dir, err := cacheDir()
	if err != nil {
		return err
	}

	info, err := dir.GetInfo()
	if err != nil {
		return err
	}

	fmt.Printf("Cache Directory: %s\n", info.Directory)
	fmt.Printf("Total Size: %s\n", humanize.Bytes(uint64(info.TotalSize)))
	fmt.Printf("Bundle Cache: %s (%d files)\n", humanize.Bytes(uint64(info.BundleSize)), info.BundleFiles)
	fmt.Printf("Staging: %s (%d files)\n", humanize.Bytes(uint64(info.StagingSize)), info.StagingFiles)

	return nil
}
