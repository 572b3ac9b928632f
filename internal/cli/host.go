package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/hbpm/internal/logger"
	"github.com/glorpus-work/hbpm/pkg/model"
)

// NewHostCmd creates the host command with subcommands.
func NewHostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Inspect and update the Homebridge package",
	}

	cmd.AddCommand(
		newHostInfoCmd(),
		newHostUpdateCmd(),
	)

	return cmd
}

func newHostInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the installed Homebridge version and Node.js runtime",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rt, err := newRuntime(cfg)
			if err != nil {
				return err
			}

			info, err := rt.engine.HostPackageInfo(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput(cfg) {
				return printJSON(info)
			}
			printRecord(&info.PackageRecord)
			if info.NodeVersion != "" {
				fmt.Printf("Node.js:\t%s\n", info.NodeVersion)
			}
			return nil
		},
	}
}

func newHostUpdateCmd() *cobra.Command {
	var term terminalFlags

	cmd := &cobra.Command{
		Use:   "update [VERSION]",
		Short: "Install a Homebridge version",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rt, err := newRuntime(cfg)
			if err != nil {
				return err
			}

			req := term.request(model.ActionUpdate, model.HostPackage)
			if len(args) == 1 {
				req.Version = args[0]
			}
			version, err := rt.engine.UpdateHostPackage(cmd.Context(), req, os.Stdout)
			if err != nil {
				return err
			}
			logger.Info("Restart Homebridge to run the new version", logger.Fields{"version": version})
			return nil
		},
	}
	term.register(cmd)

	return cmd
}

// NewPathsCmd creates the paths command.
func NewPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show the directories searched for installed plugins",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rt, err := newRuntime(cfg)
			if err != nil {
				return err
			}

			paths := rt.engine.SearchPaths()
			if jsonOutput(cfg) {
				return printJSON(paths)
			}
			for _, p := range paths {
				fmt.Println(p)
			}
			return nil
		},
	}
}
