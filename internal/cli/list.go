package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/hbpm/pkg/model"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	var updatesOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed plugins",
		Long:  "List installed Homebridge plugins with their latest registry versions",
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
			rt.loadVerified(cmd.Context())

			records, err := rt.engine.ListInstalled(cmd.Context())
			if err != nil {
				return err
			}
			if updatesOnly {
				records = withUpdates(records)
			}
			if jsonOutput(cfg) {
				return printJSON(records)
			}
			printRecords(records, true)
			return nil
		},
	}

	cmd.Flags().BoolVar(&updatesOnly, "updates", false, "Only show plugins with an update available")

	return cmd
}

func withUpdates(records []model.PackageRecord) []model.PackageRecord {
	var out []model.PackageRecord
	for _, r := range records {
		if r.UpdateAvailable || r.BetaUpdateAvailable {
			out = append(out, r)
		}
	}
	return out
}

func printRecords(records []model.PackageRecord, installedView bool) {
	if len(records) == 0 {
		fmt.Println("No plugins found")
		return
	}

	tabWriter := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
	if installedView {
		_, _ = fmt.Fprintln(tabWriter, "NAME\tINSTALLED\tLATEST\tSTATUS\tDESCRIPTION")
		_, _ = fmt.Fprintln(tabWriter, "----\t---------\t------\t------\t-----------")
	} else {
		_, _ = fmt.Fprintln(tabWriter, "NAME\tLATEST\tINSTALLED\tVERIFIED\tDESCRIPTION")
		_, _ = fmt.Fprintln(tabWriter, "----\t------\t---------\t--------\t-----------")
	}

	for _, r := range records {
		if installedView {
			_, _ = fmt.Fprintf(tabWriter, "%s\t%s\t%s\t%s\t%s\n",
				r.Name, r.InstalledVersion, orDash(r.LatestVersion), status(r),
				truncate(r.Description, MaxDescriptionLength))
			continue
		}
		verified := ""
		if r.Verified {
			verified = "yes"
		}
		_, _ = fmt.Fprintf(tabWriter, "%s\t%s\t%s\t%s\t%s\n",
			r.Name, orDash(r.LatestVersion), orDash(r.InstalledVersion), verified,
			truncate(r.Description, MaxSearchDescriptionLength))
	}
	_ = tabWriter.Flush()
}

func status(r model.PackageRecord) string {
	switch {
	case r.Disabled:
		return "disabled"
	case r.UpdateAvailable:
		return "update"
	case r.BetaUpdateAvailable:
		return "beta " + r.BetaVersion
	default:
		return "ok"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
