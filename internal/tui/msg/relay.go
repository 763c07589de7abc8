package msg

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Relay moves messages from background goroutines into the Bubbletea loop.
// Send blocks while the buffer is full so no transition is lost, and
// returns immediately once the relay is closed.
type Relay struct {
	ch        chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
}

// NewRelay creates a relay buffering up to size messages.
func NewRelay(size int) *Relay {
	return &Relay{
		ch:   make(chan tea.Msg, size),
		done: make(chan struct{}),
	}
}

// Send queues m for the program.
func (r *Relay) Send(m tea.Msg) {
	select {
	case r.ch <- m:
	case <-r.done:
	}
}

// Close releases blocked senders. Safe to call more than once.
func (r *Relay) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

// Listen returns a command delivering the next relayed message. Re-issue
// it after each delivery. It returns nil once the relay is closed.
func (r *Relay) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case m := <-r.ch:
			return m
		case <-r.done:
			return nil
		}
	}
}

