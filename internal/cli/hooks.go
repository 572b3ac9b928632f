package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/hbpm/internal/logger"
	"github.com/glorpus-work/hbpm/pkg/errors"
	"github.com/glorpus-work/hbpm/pkg/fsutil"
	"github.com/glorpus-work/hbpm/pkg/hooks"
)

// NewHooksCmd creates the hooks command with subcommands.
func NewHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage lifecycle hook scripts",
		Long:  "List and scaffold the Tengo scripts run around plugin installs and uninstalls",
	}

	cmd.AddCommand(
		newHooksListCmd(),
		newHooksInitCmd(),
	)

	return cmd
}

func newHooksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List loaded hook scripts",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			loaded, err := hooks.LoadDir(hooks.NewTengoExecutor(), cfg.Settings.HooksDir)
			if err != nil {
				return err
			}
			if len(loaded) == 0 {
				fmt.Println("No hooks configured")
				return nil
			}

			tabWriter := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
			_, _ = fmt.Fprintln(tabWriter, "HOOK\tPATH")
			_, _ = fmt.Fprintln(tabWriter, "----\t----")
			for _, h := range loaded {
				_, _ = fmt.Fprintf(tabWriter, "%s\t%s\n", h.Type, h.Path)
			}
			_ = tabWriter.Flush()
			return nil
		},
	}
}

func newHooksInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init HOOK",
		Short: "Write a template script for a hook type",
		Long:  "Write a template script for pre-install, post-install, pre-uninstall or post-uninstall into hooks_dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			hookType := hooks.HookType(args[0])
			if !hookType.Valid() {
				return fmt.Errorf("unknown hook type %q: %w", args[0], errors.ErrInvalidInput)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Settings.HooksDir == "" {
				return fmt.Errorf("hooks_dir is not set: %w", errors.ErrInvalidInput)
			}

			path := filepath.Join(cfg.Settings.HooksDir, string(hookType)+hooks.FileExtension)
			if fsutil.Exists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite): %w", path, errors.ErrInvalidInput)
			}
			if _, err := fsutil.EnsureDir(cfg.Settings.HooksDir); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(hooks.HookTemplate(hookType)), fsutil.FileModeDefault); err != nil {
				return errors.Wrapf(err, "failed to write %s", path)
			}
			logger.Success("Hook template created", logger.Fields{"path": path})
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing script")

	return cmd
}
