package msg

import "github.com/Iron-Ham/tourguide/internal/tour"

// StateChangedMsg carries a sequencer snapshot taken after a transition.
type StateChangedMsg struct {
	Snapshot tour.Snapshot
}

// ErrMsg wraps an error to be displayed in the status line.
type ErrMsg struct {
	TourID string
	Err    error
}

// TourShownMsg signals that the registry reported a tour completed.
type TourShownMsg struct {
	TourID string
}

// CatalogReloadedMsg signals that the definition files were reloaded. On
// failure Err is set and the previous catalog stays in use.
type CatalogReloadedMsg struct {
	Tours int
	Err   error
}
