package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/hbpm/internal/logger"
	"github.com/glorpus-work/hbpm/pkg/engine"
	"github.com/glorpus-work/hbpm/pkg/model"
)

type terminalFlags struct {
	cols int
	rows int
}

func (t *terminalFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&t.cols, "cols", model.DefaultCols, "Terminal columns reported to npm")
	cmd.Flags().IntVar(&t.rows, "rows", model.DefaultRows, "Terminal rows reported to npm")
}

func (t *terminalFlags) request(action model.Action, arg string) model.OperationRequest {
	name, version := splitTarget(arg)
	return model.OperationRequest{Action: action, Name: name, Version: version, Cols: t.cols, Rows: t.rows}
}

type mutation func(ctx context.Context, eng *engine.Engine, req model.OperationRequest, out io.Writer) error

// runMutation runs fn for each target in order and stops at the first failure.
func runMutation(cmd *cobra.Command, action model.Action, term *terminalFlags, args []string, fn mutation) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}

	for _, arg := range args {
		if err := fn(cmd.Context(), rt.engine, term.request(action, arg), os.Stdout); err != nil {
			return err
		}
	}

	if rt.engine.RestartRequired() {
		logger.Info("Restart Homebridge to apply the changes")
	}
	return nil
}

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	var term terminalFlags

	cmd := &cobra.Command{
		Use:   "install NAME[@VERSION]...",
		Short: "Install plugins",
		Long:  "Install Homebridge plugins from a prebuilt bundle when available, otherwise through npm",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, model.ActionInstall, &term, args,
				func(ctx context.Context, eng *engine.Engine, req model.OperationRequest, out io.Writer) error {
					_, err := eng.Install(ctx, req, out)
					return err
				})
		},
	}
	term.register(cmd)

	return cmd
}

// NewUpdateCmd creates the update command.
func NewUpdateCmd() *cobra.Command {
	var (
		term terminalFlags
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "update [NAME[@VERSION]...]",
		Short: "Update plugins",
		Long:  "Update the given plugins, or every plugin with an update available when --all is set",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				names, err := outdated(cmd.Context())
				if err != nil {
					return err
				}
				if len(names) == 0 {
					logger.Info("All plugins are up to date")
					return nil
				}
				args = append(args, names...)
			}
			if len(args) == 0 {
				return cmd.Usage()
			}
			return runMutation(cmd, model.ActionUpdate, &term, args,
				func(ctx context.Context, eng *engine.Engine, req model.OperationRequest, out io.Writer) error {
					_, err := eng.Update(ctx, req, out)
					return err
				})
		},
	}
	term.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "Update every plugin with an update available")

	return cmd
}

func outdated(ctx context.Context) ([]string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	rt, err := newRuntime(cfg)
	if err != nil {
		return nil, err
	}
	records, err := rt.engine.ListInstalled(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, r := range withUpdates(records) {
		if r.UpdateAvailable {
			names = append(names, r.Name)
		}
	}
	return names, nil
}

// NewUninstallCmd creates the uninstall command.
func NewUninstallCmd() *cobra.Command {
	var term terminalFlags

	cmd := &cobra.Command{
		Use:   "uninstall NAME...",
		Short: "Uninstall plugins",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, model.ActionUninstall, &term, args,
				func(ctx context.Context, eng *engine.Engine, req model.OperationRequest, out io.Writer) error {
					return eng.Uninstall(ctx, req, out)
				})
		},
	}
	term.register(cmd)

	return cmd
}
