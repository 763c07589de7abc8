// Package event provides a pub-sub event bus for decoupled communication
// between tourguide components.
//
// The tour registry and every mounted sequencer publish lifecycle events; the
// metrics collector and the TUI subscribe to them. Publishing never requires
// knowing who listens.
//
// # Main Types
//
//   - [Event]: interface with EventType() and Timestamp()
//   - [Bus]: synchronous dispatcher, safe for concurrent use
//   - [Handler]: func(Event)
//
// # Event Categories
//
// Registry: [TourSubscribedEvent], [TourReadyEvent], [TourUnsubscribedEvent],
// [TourShownEvent].
//
// Sequencer: [TourStartedEvent], [StepChangedEvent], [TourClosedEvent],
// [HookFinishedEvent], [HookFailedEvent].
//
// Definitions: [CatalogReloadedEvent].
//
// # Usage
//
//	bus := event.NewBus(logger)
//	bus.Subscribe(event.TypeTourShown, func(e event.Event) {
//	    shown := e.(event.TourShownEvent)
//	    fmt.Println("finished", shown.TourID)
//	})
//
// Handlers run synchronously on the publishing goroutine; for a sequencer
// that is its worker, so handlers must not call back into the same
// sequencer's blocking methods.
package event
