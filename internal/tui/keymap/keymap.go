// Package keymap defines the key bindings of the tour player.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines all key bindings of the tour player. It implements
// help.KeyMap.
type KeyMap struct {
	// Tour navigation
	Next  key.Binding
	Prev  key.Binding
	Close key.Binding
	Run   key.Binding // Restart the selected tour

	// Tour selection when several tours are loaded
	Cycle key.Binding

	Help key.Binding
	Quit key.Binding
}

// Default is the built-in key binding set.
func Default() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("n", "right", "enter"),
			key.WithHelp("n/→", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p/←", "back"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "x"),
			key.WithHelp("esc", "close tour"),
		),
		Run: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart tour"),
		),
		Cycle: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch tour"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the one-line help.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Close, k.Help, k.Quit}
}

// FullHelp returns the bindings shown in the expanded help.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Close},
		{k.Run, k.Cycle},
		{k.Help, k.Quit},
	}
}

// Action is what a key press asks the player to do.
type Action int

const (
	ActionNone Action = iota
	ActionNext
	ActionPrev
	ActionClose
	ActionRun
	ActionCycle
	ActionHelp
	ActionQuit
)

// Lookup maps a key press to an Action.
func (k KeyMap) Lookup(msg tea.KeyMsg) Action {
	switch {
	case key.Matches(msg, k.Quit):
		return ActionQuit
	case key.Matches(msg, k.Next):
		return ActionNext
	case key.Matches(msg, k.Prev):
		return ActionPrev
	case key.Matches(msg, k.Close):
		return ActionClose
	case key.Matches(msg, k.Run):
		return ActionRun
	case key.Matches(msg, k.Cycle):
		return ActionCycle
	case key.Matches(msg, k.Help):
		return ActionHelp
	default:
		return ActionNone
	}
}
