package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/hbpm/pkg/model"
)

// NewInfoCmd creates the info command.
func NewInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info NAME",
		Short: "Show registry details for a plugin",
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

			rec, err := rt.engine.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput(cfg) {
				return printJSON(rec)
			}
			printRecord(rec)
			return nil
		},
	}
}

func printRecord(r *model.PackageRecord) {
	tabWriter := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
	row := func(k, v string) {
		if v != "" {
			_, _ = fmt.Fprintf(tabWriter, "%s:\t%s\n", k, v)
		}
	}
	row("Name", r.Name)
	row("Display name", r.DisplayName)
	row("Description", strings.TrimSpace(r.Description))
	row("Author", r.Author)
	row("Latest", r.LatestVersion)
	row("Beta", r.BetaVersion)
	row("Installed", r.InstalledVersion)
	row("Install path", r.InstallPath)
	if r.Verified {
		row("Verified", "yes")
	}
	if r.LastUpdated != nil {
		row("Last updated", r.LastUpdated.Format("2006-01-02"))
	}
	row("Registry", r.Links.Registry)
	row("Homepage", r.Links.Homepage)
	row("Bugs", r.Links.Bugs)
	for engine, rng := range r.Engines {
		row("Engine "+engine, rng)
	}
	_ = tabWriter.Flush()
}

// NewVersionsCmd creates the versions command.
func NewVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions NAME",
		Short: "List published versions of a plugin",
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

			versions, err := rt.engine.AvailableVersions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput(cfg) {
				return printJSON(versions)
			}

			tags := make(map[string][]string)
			for tag, v := range versions.Tags {
				tags[v] = append(tags[v], tag)
			}
			for _, v := range versions.Versions {
				if t := tags[v]; len(t) > 0 {
					fmt.Printf("%s (%s)\n", v, strings.Join(t, ", "))
					continue
				}
				fmt.Println(v)
			}
			return nil
		},
	}
}

// NewAliasCmd creates the alias command.
func NewAliasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alias NAME",
		Short: "Show the registration alias and type of an installed plugin",
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

			info, err := rt.engine.AliasAndType(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput(cfg) {
				return printJSON(info)
			}
			if info.Empty() {
				fmt.Println("No alias could be determined")
				return nil
			}
			fmt.Printf("Alias: %s\nType: %s\n", orDash(info.Alias), orDash(info.Type))
			return nil
		},
	}
}

// NewChangelogCmd creates the changelog command.
func NewChangelogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "changelog NAME",
		Short: "Print the changelog shipped with an installed plugin",
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

			text, err := rt.engine.Changelog(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Print(text)
			return nil
		},
	}
}

// NewReleaseCmd creates the release command.
func NewReleaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release NAME",
		Short: "Show the latest GitHub release of a plugin",
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

			rel, err := rt.engine.LatestRelease(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput(cfg) {
				return printJSON(rel)
			}
			fmt.Printf("%s (%s)\n%s\n\n%s\n", orDash(rel.Name), rel.TagName, rel.HTMLURL, strings.TrimSpace(rel.Body))
			return nil
		},
	}
}
