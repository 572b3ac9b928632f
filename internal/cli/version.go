package cli

import (
	"fmt"
	goruntime "runtime"

	"github.com/spf13/cobra"
)

// Build information, overridden with -ldflags at release time.
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			if short {
				fmt.Println(Version)
				return
			}
			fmt.Printf("hbpm %s (commit %s, built %s, %s/%s)\n",
				Version, GitCommit, BuildDate, goruntime.GOOS, goruntime.GOARCH)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")

	return cmd
}
