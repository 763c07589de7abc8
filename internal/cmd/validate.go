package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/tourguide/internal/definition"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check tour definition files",
	Long: `Parse and validate tour definition files.

Without arguments, every definition file in the tours directory is checked.
Each file is checked on its own, then all files together so that tour ids
declared twice across files are reported. Hook actions must name a known
action (delay, log or noop).

Examples:
  tourguide validate
  tourguide validate tours/welcome.yaml tours/editor.yaml`,
	RunE: runValidate,
}

// errInvalidDefinitions is returned when at least one file failed to validate.
var errInvalidDefinitions = errors.New("invalid tour definitions")

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		cfg, err := loadConfig("")
		if err != nil {
			return err
		}
		paths, err = definitionFiles(cfg.Tours.ResolveToursDir())
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if len(paths) == 0 {
		fmt.Fprintln(out, "No definition files found.")
		return nil
	}

	actions := definition.NewActions(nil)
	failed := false
	for _, path := range paths {
		catalog, err := definition.LoadFiles([]string{path}, actions)
		if err != nil {
			fmt.Fprintf(out, "FAIL %s\n     %v\n", path, err)
			failed = true
			continue
		}
		fmt.Fprintf(out, "ok   %s (%d tours)\n", path, catalog.Len())
	}

	if !failed && len(paths) > 1 {
		if _, err := definition.LoadFiles(paths, actions); err != nil {
			fmt.Fprintf(out, "FAIL %v\n", err)
			failed = true
		}
	}

	if failed {
		return errInvalidDefinitions
	}
	return nil
}

// definitionFiles lists the definition files LoadDir would read from dir.
func definitionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading tours directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !definition.IsDefinitionFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}
