// Package event defines the events tourguide components publish on a Bus.
package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "tour.started", "step.changed").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeTourSubscribed   = "tour.subscribed"
	TypeTourReady        = "tour.ready"
	TypeTourUnsubscribed = "tour.unsubscribed"
	TypeTourStarted      = "tour.started"
	TypeStepChanged      = "step.changed"
	TypeTourClosed       = "tour.closed"
	TypeTourShown        = "tour.shown"
	TypeHookFinished     = "hook.finished"
	TypeHookFailed       = "hook.failed"
	TypeCatalogReloaded  = "catalog.reloaded"
)

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// -----------------------------------------------------------------------------
// Registry Events
// -----------------------------------------------------------------------------

// TourSubscribedEvent is emitted when a tour registers with the registry.
type TourSubscribedEvent struct {
	baseEvent
	TourID   string
	Eligible bool // Predicate result
	Queued   bool // Eligible but waiting for another tour to finish
}

// NewTourSubscribedEvent creates a TourSubscribedEvent.
func NewTourSubscribedEvent(tourID string, eligible, queued bool) TourSubscribedEvent {
	return TourSubscribedEvent{
		baseEvent: newBaseEvent(TypeTourSubscribed),
		TourID:    tourID,
		Eligible:  eligible,
		Queued:    queued,
	}
}

// TourReadyEvent is emitted right before the registry invokes a tour's
// ready callback.
type TourReadyEvent struct {
	baseEvent
	TourID string
}

// NewTourReadyEvent creates a TourReadyEvent.
func NewTourReadyEvent(tourID string) TourReadyEvent {
	return TourReadyEvent{baseEvent: newBaseEvent(TypeTourReady), TourID: tourID}
}

// TourUnsubscribedEvent is emitted when a subscription is removed.
type TourUnsubscribedEvent struct {
	baseEvent
	TourID string
}

// NewTourUnsubscribedEvent creates a TourUnsubscribedEvent.
func NewTourUnsubscribedEvent(tourID string) TourUnsubscribedEvent {
	return TourUnsubscribedEvent{baseEvent: newBaseEvent(TypeTourUnsubscribed), TourID: tourID}
}

// TourShownEvent is emitted once per completed tour run.
type TourShownEvent struct {
	baseEvent
	TourID string
}

// NewTourShownEvent creates a TourShownEvent.
func NewTourShownEvent(tourID string) TourShownEvent {
	return TourShownEvent{baseEvent: newBaseEvent(TypeTourShown), TourID: tourID}
}

// -----------------------------------------------------------------------------
// Sequencer Events
// -----------------------------------------------------------------------------

// TourStartedEvent is emitted when a sequencer shows its first step.
type TourStartedEvent struct {
	baseEvent
	TourID  string
	MountID string
	Steps   int
}

// NewTourStartedEvent creates a TourStartedEvent.
func NewTourStartedEvent(tourID, mountID string, steps int) TourStartedEvent {
	return TourStartedEvent{
		baseEvent: newBaseEvent(TypeTourStarted),
		TourID:    tourID,
		MountID:   mountID,
		Steps:     steps,
	}
}

// Direction describes a step change.
type Direction string

const (
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
	DirectionFallback Direction = "fallback" // Close diverted to a fallback step
)

// StepChangedEvent is emitted after the active step index changed between
// two shown steps.
type StepChangedEvent struct {
	baseEvent
	TourID    string
	MountID   string
	From      int
	To        int
	Direction Direction
}

// NewStepChangedEvent creates a StepChangedEvent.
func NewStepChangedEvent(tourID, mountID string, from, to int, dir Direction) StepChangedEvent {
	return StepChangedEvent{
		baseEvent: newBaseEvent(TypeStepChanged),
		TourID:    tourID,
		MountID:   mountID,
		From:      from,
		To:        to,
		Direction: dir,
	}
}

// TourClosedEvent is emitted when a running tour stops, either closed
// explicitly or by advancing past its last step.
type TourClosedEvent struct {
	baseEvent
	TourID   string
	MountID  string
	LastStep int
}

// NewTourClosedEvent creates a TourClosedEvent.
func NewTourClosedEvent(tourID, mountID string, lastStep int) TourClosedEvent {
	return TourClosedEvent{
		baseEvent: newBaseEvent(TypeTourClosed),
		TourID:    tourID,
		MountID:   mountID,
		LastStep:  lastStep,
	}
}

// HookFinishedEvent is emitted after a step hook returned, successfully or not.
type HookFinishedEvent struct {
	baseEvent
	TourID   string
	Step     int
	Phase    string // "before" or "after"
	Duration time.Duration
	Err      error
}

// NewHookFinishedEvent creates a HookFinishedEvent.
func NewHookFinishedEvent(tourID string, step int, phase string, d time.Duration, err error) HookFinishedEvent {
	return HookFinishedEvent{
		baseEvent: newBaseEvent(TypeHookFinished),
		TourID:    tourID,
		Step:      step,
		Phase:     phase,
		Duration:  d,
		Err:       err,
	}
}

// HookFailedEvent is emitted when a hook error aborted a transition.
type HookFailedEvent struct {
	baseEvent
	TourID string
	Step   int
	Phase  string
	Err    error
}

// NewHookFailedEvent creates a HookFailedEvent.
func NewHookFailedEvent(tourID string, step int, phase string, err error) HookFailedEvent {
	return HookFailedEvent{
		baseEvent: newBaseEvent(TypeHookFailed),
		TourID:    tourID,
		Step:      step,
		Phase:     phase,
		Err:       err,
	}
}

// -----------------------------------------------------------------------------
// Definition Events
// -----------------------------------------------------------------------------

// CatalogReloadedEvent is emitted when tour definition files were reloaded.
type CatalogReloadedEvent struct {
	baseEvent
	Dir   string
	Tours int
	Err   error // Non-nil when the reload failed and the previous catalog was kept
}

// NewCatalogReloadedEvent creates a CatalogReloadedEvent.
func NewCatalogReloadedEvent(dir string, tours int, err error) CatalogReloadedEvent {
	return CatalogReloadedEvent{
		baseEvent: newBaseEvent(TypeCatalogReloaded),
		Dir:       dir,
		Tours:     tours,
		Err:       err,
	}
}
