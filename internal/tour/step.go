package tour

import "context"

// NotRunning is the active index of a tour that is not showing any step.
const NotRunning = -1

// Hook is a step lifecycle callback. It may block; the sequencer waits for it
// to return before doing anything else for the same tour. The context is
// never cancelled by later transitions.
type Hook func(ctx context.Context) error

// RenderFunc produces the presentation of a step. The returned string is
// opaque to the sequencer.
type RenderFunc func(c Controls) string

// Controls are the transition triggers handed to a step's RenderFunc. The
// triggers enqueue the transition and return immediately, like a button
// click; failures are reported through the sequencer's error handler.
type Controls struct {
	Index int // Active step index
	Count int // Number of steps in the tour

	Next  func()
	Prev  func()
	Close func()
}

// Step describes one step of a tour. Its identity is its position in the
// sequence handed to NewSequencer.
type Step struct {
	Render   RenderFunc
	OnBefore Hook // Runs before the step becomes active
	OnAfter  Hook // Runs after the step stops being active

	// Fallback marks a terminal step. See FallbackPolicy for how forward
	// navigation and Close treat fallback steps.
	Fallback bool
}

// Handle is the imperative surface a host keeps to restart a tour.
type Handle interface {
	Run(ctx context.Context) error
}

// Coordinator is the registry side of a tour instance. *Registry implements it.
type Coordinator interface {
	// Subscribe registers tourID; onReady is invoked once the tour may show.
	Subscribe(tourID string, onReady func()) error
	// Unsubscribe removes tourID. Unknown ids are ignored.
	Unsubscribe(tourID string)
	// NotifyShown reports a completed tour run.
	NotifyShown(tourID string)
}
