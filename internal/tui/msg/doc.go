// Package msg defines the message types used by the tour player's Bubbletea
// event loop.
//
// Sequencer workers, the registry and the definition watcher run on their own
// goroutines. They hand their notifications to a [Relay], and [Relay.Listen]
// turns the next one into a [tea.Msg] for the program.
package msg
