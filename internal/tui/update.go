package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	tgerrors "github.com/Iron-Ham/tourguide/internal/errors"
	"github.com/Iron-Ham/tourguide/internal/tour"
	"github.com/Iron-Ham/tourguide/internal/tui/keymap"
	"github.com/Iron-Ham/tourguide/internal/tui/msg"
)

// runFailedMsg reports a Mount or Run call that failed before the tour's
// worker took over. Worker failures arrive as msg.ErrMsg through the relay.
type runFailedMsg struct {
	tourID string
	err    error
}

// Init mounts every tour in order and starts listening for notifications.
func (m Model) Init() tea.Cmd {
	mounts := make([]tea.Cmd, 0, len(m.mounts))
	for _, mt := range m.mounts {
		mounts = append(mounts, m.mountCmd(mt.seq))
	}
	return tea.Batch(m.relay.Listen(), tea.Sequence(mounts...))
}

// Update handles messages
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.help.Width = message.Width
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeypress(message)

	case msg.StateChangedMsg:
		m.applySnapshot(message.Snapshot)
		return m, m.relay.Listen()

	case msg.ErrMsg:
		m.errorMessage = errorText(message.TourID, message.Err)
		return m, m.relay.Listen()

	case msg.TourShownMsg:
		if mt := m.mountFor(message.TourID); mt != nil {
			mt.shown = true
		}
		m.status = fmt.Sprintf("Tour %q completed", message.TourID)
		return m, m.relay.Listen()

	case msg.CatalogReloadedMsg:
		m.applyReload(message)
		return m, m.relay.Listen()

	case runFailedMsg:
		m.errorMessage = errorText(message.tourID, message.err)
		return m, nil
	}

	return m, nil
}

// handleKeypress maps a key to a tour action.
func (m Model) handleKeypress(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.Lookup(k) {
	case keymap.ActionQuit:
		m.quitting = true
		m.Shutdown()
		return m, tea.Quit

	case keymap.ActionHelp:
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp

	case keymap.ActionCycle:
		if len(m.mounts) > 0 {
			m.focus = (m.focus + 1) % len(m.mounts)
		}

	case keymap.ActionNext:
		if mt := m.visible(); mt != nil {
			m.errorMessage = ""
			mt.seq.Controls().Next()
		}

	case keymap.ActionPrev:
		if mt := m.visible(); mt != nil {
			m.errorMessage = ""
			mt.seq.Controls().Prev()
		}

	case keymap.ActionClose:
		if mt := m.visible(); mt != nil {
			m.errorMessage = ""
			mt.seq.Controls().Close()
		}

	case keymap.ActionRun:
		return m.restartFocused()
	}

	return m, nil
}

// restartFocused runs the focused tour again, rebuilding it first when the
// catalog changed since it was mounted.
func (m Model) restartFocused() (tea.Model, tea.Cmd) {
	mt := m.focused()
	if mt == nil {
		return m, nil
	}
	m.errorMessage = ""

	if mt.stale && !mt.snap.Running() && !mt.snap.Subscribed {
		fresh, err := m.newMount(m.catalog, mt.seq.TourID())
		if err != nil {
			m.errorMessage = errorText(mt.seq.TourID(), err)
			return m, nil
		}
		old := mt.seq
		m.mounts[m.focus] = fresh
		return m, tea.Sequence(
			func() tea.Msg { old.Unmount(); return nil },
			m.runCmd(fresh.seq),
		)
	}

	mt.shown = false
	return m, m.runCmd(mt.seq)
}

// applySnapshot records a sequencer snapshot. Snapshots of replaced mounts
// are dropped. A tour that starts running takes the focus.
func (m *Model) applySnapshot(s tour.Snapshot) {
	for i, mt := range m.mounts {
		if mt.seq.MountID() != s.MountID {
			continue
		}
		started := s.Running() && !mt.snap.Running()
		mt.snap = s
		if started {
			m.focus = i
		}
		return
	}
}

// applyReload swaps in the reloaded catalog. Mounted tours keep their steps
// and are marked stale so a restart picks up the new definition.
func (m *Model) applyReload(r msg.CatalogReloadedMsg) {
	if r.Err != nil {
		m.errorMessage = "Reload failed: " + r.Err.Error()
		return
	}
	if m.reload != nil {
		if c := m.reload(); c != nil {
			m.catalog = c
		}
	}
	for _, mt := range m.mounts {
		mt.stale = true
	}
	m.errorMessage = ""
	m.status = fmt.Sprintf("Reloaded %d tours", r.Tours)
}

func (m Model) mountCmd(seq *tour.Sequencer) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return failure(seq.TourID(), seq.Mount(ctx))
	}
}

func (m Model) runCmd(seq *tour.Sequencer) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return failure(seq.TourID(), seq.Run(ctx))
	}
}

// failure converts a Mount or Run error into a message. Hook failures are
// skipped: the sequencer's error handler already reported them.
func failure(tourID string, err error) tea.Msg {
	var hookErr *tgerrors.HookError
	if err == nil || errors.As(err, &hookErr) || errors.Is(err, context.Canceled) {
		return nil
	}
	return runFailedMsg{tourID: tourID, err: err}
}

func errorText(tourID string, err error) string {
	if tourID == "" {
		return err.Error()
	}
	return fmt.Sprintf("%s: %v", tourID, err)
}
