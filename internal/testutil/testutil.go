// Package testutil provides testing utilities for tourguide tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// WriteDefinitions writes tour definition files into a fresh temporary
// directory and returns it. The files map contains relative paths to file
// contents.
func WriteDefinitions(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for path, content := range files {
		WriteFile(t, dir, path, content)
	}
	return dir
}

// WriteFile creates or replaces dir/path with content, creating parent
// directories as needed. Returns the full path.
func WriteFile(t *testing.T, dir, path, content string) string {
	t.Helper()

	fullPath := filepath.Join(dir, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return fullPath
}

// WelcomeTour is a small two-tour definition file used across packages.
const WelcomeTour = `tours:
  - id: welcome
    title: Welcome
    steps:
      - title: Sessions
        body: Your sessions live here.
        target: sidebar
      - title: Output
        body: Output of the selected session.
        target: main
        before: ["noop"]
      - title: Skip
        body: Reopen this tour any time with r.
        fallback: true
  - id: shortcuts
    title: Shortcuts
    steps:
      - title: Help
        body: Press ? for help.
        target: status
`

// Coordinator is the registry surface RecordingCoordinator wraps.
type Coordinator interface {
	Subscribe(tourID string, onReady func()) error
	Unsubscribe(tourID string)
	NotifyShown(tourID string)
}

// RecordingCoordinator records every call made to a coordinator as
// "subscribe:<id>", "unsubscribe:<id>" or "shown:<id>" before forwarding it
// to Inner. With a nil Inner, Subscribe invokes onReady immediately.
type RecordingCoordinator struct {
	Inner Coordinator

	mu    sync.Mutex
	calls []string
}

// Subscribe records and forwards the call.
func (c *RecordingCoordinator) Subscribe(tourID string, onReady func()) error {
	c.record("subscribe:" + tourID)
	if c.Inner == nil {
		onReady()
		return nil
	}
	return c.Inner.Subscribe(tourID, onReady)
}

// Unsubscribe records and forwards the call.
func (c *RecordingCoordinator) Unsubscribe(tourID string) {
	c.record("unsubscribe:" + tourID)
	if c.Inner != nil {
		c.Inner.Unsubscribe(tourID)
	}
}

// NotifyShown records and forwards the call.
func (c *RecordingCoordinator) NotifyShown(tourID string) {
	c.record("shown:" + tourID)
	if c.Inner != nil {
		c.Inner.NotifyShown(tourID)
	}
}

// Calls returns a copy of the recorded calls in order.
func (c *RecordingCoordinator) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// Count returns how many recorded calls start with prefix.
func (c *RecordingCoordinator) Count(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, call := range c.calls {
		if strings.HasPrefix(call, prefix) {
			n++
		}
	}
	return n
}

func (c *RecordingCoordinator) record(call string) {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()
}

// CallLog is a goroutine-safe ordered log of strings, used to assert hook
// ordering.
type CallLog struct {
	mu      sync.Mutex
	entries []string
}

// Add appends an entry.
func (l *CallLog) Add(entry string) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns a copy of the log.
func (l *CallLog) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}
