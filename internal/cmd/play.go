package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/tourguide/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play [tour-id...]",
	Short: "Play tours over the demo screen",
	Long: `Mount tours over a demo host screen and play them interactively.

Tours are subscribed in the order given; without arguments every tour in the
tours directory is mounted. With tours.exclusive set, only one tour is shown
at a time and the next queued tour starts when it closes.

Keys:
  n, →, enter   next step
  p, ←          previous step
  esc, x        close the tour
  r             run the focused tour again
  tab           focus the next tour
  ?             toggle help
  q, ctrl+c     quit`,
	RunE: runPlay,
}

var (
	playDir    string
	playPolicy string
	playTheme  string
)

// errNotTerminal is returned when play is started without a terminal.
var errNotTerminal = errors.New("play needs an interactive terminal")

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringVarP(&playDir, "dir", "d", "", "Tours directory (default: tours.dir)")
	playCmd.Flags().StringVar(&playPolicy, "fallback-policy", "", "Fallback policy: jump or on_close (default: tours.fallback_policy)")
	playCmd.Flags().StringVar(&playTheme, "theme", "", "Color theme (default: tui.theme)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}

	cfg, err := loadConfig(playDir)
	if err != nil {
		return err
	}
	if playPolicy != "" {
		cfg.Tours.FallbackPolicy = playPolicy
	}
	if playTheme != "" {
		cfg.TUI.Theme = playTheme
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	env, err := newEnvironment(ctx, cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	if env.catalog.Len() == 0 {
		return fmt.Errorf("no tours found in %s", cfg.Tours.ResolveToursDir())
	}

	if width, height, err := term.GetSize(int(os.Stdout.Fd())); err != nil {
		env.logger.Info("terminal size detection failed", "error", err.Error())
	} else {
		env.logger.Debug("terminal size", "width", width, "height", height)
	}

	app, err := tui.New(ctx, tui.Config{
		Catalog:     env.catalog,
		TourIDs:     args,
		Coordinator: env.registry,
		Policy:      env.policy,
		Styles:      env.styles,
		Renderer:    env.renderer,
		Logger:      env.logger,
		Bus:         env.bus,
		Reload:      env.Catalog,
	})
	if err != nil {
		return err
	}
	return app.Run()
}
