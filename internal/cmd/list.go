package cmd

import (
	"fmt"
	"path/filepath"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	appconfig "github.com/Iron-Ham/tourguide/internal/config"
	"github.com/Iron-Ham/tourguide/internal/definition"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tours in the tours directory",
	Long: `List every tour declared in the tours directory with its step count,
number of fallback steps and the file it was declared in.

Tours named in tours.disabled are marked; they never become eligible.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listDir string

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listDir, "dir", "d", "", "Tours directory (default: tours.dir)")
}

// loadConfig loads and validates the configuration, applying a tours
// directory override when dir is set.
func loadConfig(dir string) (*appconfig.Config, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if dir != "" {
		cfg.Tours.Dir = dir
	}
	return cfg, nil
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(listDir)
	if err != nil {
		return err
	}

	dir := cfg.Tours.ResolveToursDir()
	catalog, err := definition.LoadDir(dir, definition.NewActions(nil))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if catalog.Len() == 0 {
		fmt.Fprintf(out, "No tours found in %s\n", dir)
		return nil
	}

	tw := tabwriter.NewWriter(out, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "ID\tTITLE\tSTEPS\tFALLBACK\tFILE\n")
	for _, t := range catalog.Tours() {
		id := t.ID
		if slices.Contains(cfg.Tours.Disabled, t.ID) {
			id += " (disabled)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			id, t.DisplayTitle(), len(t.Steps), t.FallbackCount(), filepath.Base(catalog.Source(t.ID)))
	}
	return tw.Flush()
}
