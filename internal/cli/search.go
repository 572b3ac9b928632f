package cli

import (
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Search the registry for plugins",
		Long:  "Search the npm registry for Homebridge plugins; an exact plugin name is always shown first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rt, err := newRuntime(cfg)
			if err != nil {
				return err
			}
			rt.loadVerified(cmd.Context())

			results, err := rt.engine.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput(cfg) {
				return printJSON(results)
			}
			printRecords(results, false)
			return nil
		},
	}
}
