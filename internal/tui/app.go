package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
)

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   Model
}

// New creates a new tour player application
func New(ctx context.Context, cfg Config) (*App, error) {
	model, err := NewModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &App{model: model}, nil
}

// Run starts the player and blocks until the user quits. Every tour is
// unmounted when it returns.
func (a *App) Run() error {
	defer a.model.Shutdown()

	a.program = tea.NewProgram(
		a.model,
		tea.WithAltScreen(),
		tea.WithContext(a.model.ctx),
	)

	// Quit cleanly on termination signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		a.program.Send(tea.Quit())
	}()

	_, err := a.program.Run()
	return err
}
