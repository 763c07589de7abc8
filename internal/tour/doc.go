// Package tour implements the step sequencing core of product tours.
//
// A [Registry] decides which subscribed tours may show and reports completed
// tours to the host. A [Sequencer] drives one mounted tour through its
// [Step] list, running each step's OnBefore and OnAfter hooks in order and
// only then changing the active step.
//
// # Lifecycle
//
//	reg := tour.NewRegistry(tour.AllowAll, markSeen, tour.WithExclusive(true))
//	seq := tour.NewSequencer("welcome", steps, reg)
//	defer seq.Unmount()
//
//	if err := seq.Mount(ctx); err != nil { ... } // step 0 showing when eligible
//	_ = seq.Next(ctx)                             // OnAfter(0), OnBefore(1)
//	_ = seq.Close(ctx)                            // OnAfter(1), Unsubscribe, NotifyShown
//	_ = seq.Run(ctx)                              // restart at step 0
//
// Unmount only unsubscribes; the tour is never reported shown unless it was
// closed or navigated past its last step.
//
// # Fallback steps
//
// Steps flagged Fallback are terminal targets. [FallbackJump] (the default)
// walks ordinary steps one by one and, once a fallback step is showing, only
// moves on to later fallback steps. [FallbackOnClose] hides fallback steps
// from forward navigation and shows the first one when an ordinary step is
// closed.
//
// # Concurrency
//
// Each sequencer owns a worker goroutine that applies transition requests one
// at a time in arrival order. Hooks may block; nothing cancels a running
// hook, and a hook that never returns stalls its tour.
package tour
