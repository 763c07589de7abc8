package tour

import (
	"fmt"
	"slices"
	"sync"

	tgerrors "github.com/Iron-Ham/tourguide/internal/errors"
	"github.com/Iron-Ham/tourguide/internal/event"
	"github.com/Iron-Ham/tourguide/internal/logging"
)

// Predicate decides whether a tour may run. An error is returned to the
// caller of Subscribe and nothing is retried.
type Predicate func(tourID string) (bool, error)

// AllowAll is a Predicate accepting every tour.
func AllowAll(string) (bool, error) { return true, nil }

// DenyList returns a Predicate rejecting the given tour ids.
func DenyList(ids ...string) Predicate {
	denied := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		denied[id] = struct{}{}
	}
	return func(tourID string) (bool, error) {
		_, ok := denied[tourID]
		return !ok, nil
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithExclusive makes the registry show at most one tour at a time. Eligible
// tours subscribing while another is shown wait, in subscription order, until
// the shown tour unsubscribes.
func WithExclusive(exclusive bool) RegistryOption {
	return func(r *Registry) { r.exclusive = exclusive }
}

// WithRegistryLogger sets the registry logger.
func WithRegistryLogger(l *logging.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// WithRegistryBus publishes registry events on b.
func WithRegistryBus(b *event.Bus) RegistryOption {
	return func(r *Registry) { r.bus = b }
}

type subscription struct {
	onReady  func()
	seq      uint64
	eligible bool
	ready    bool // onReady has been invoked for this subscription
}

// Registry decides, per tour id, whether a subscribed tour may show and
// reports completed tours to the host. It is safe for concurrent use;
// callbacks run outside its lock.
type Registry struct {
	predicate Predicate
	onShown   func(tourID string)
	exclusive bool
	logger    *logging.Logger
	bus       *event.Bus

	mu      sync.Mutex
	subs    map[string]*subscription
	current string // Shown tour in exclusive mode
	nextSeq uint64
}

// NewRegistry creates a Registry. A nil predicate allows every tour; onShown
// may be nil.
func NewRegistry(predicate Predicate, onShown func(tourID string), opts ...RegistryOption) *Registry {
	if predicate == nil {
		predicate = AllowAll
	}
	r := &Registry{
		predicate: predicate,
		onShown:   onShown,
		subs:      make(map[string]*subscription),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NopLogger()
	}
	return r
}

// Subscribe registers tourID. When the predicate accepts it (and, in
// exclusive mode, no other tour is shown) onReady is invoked synchronously
// before Subscribe returns. A second Subscribe for the same id replaces the
// first.
func (r *Registry) Subscribe(tourID string, onReady func()) error {
	if tourID == "" {
		return tgerrors.NewValidationError("tour id must not be empty").WithField("tour_id")
	}
	if onReady == nil {
		return tgerrors.NewValidationError("ready callback must not be nil").WithField("on_ready").WithValue(tourID)
	}

	eligible, err := r.predicate(tourID)
	if err != nil {
		r.logger.Warn("eligibility predicate failed", "tour_id", tourID, "error", err.Error())
		return tgerrors.NewTourError("subscribe failed", fmt.Errorf("%w: %w", tgerrors.ErrPredicateFailed, err)).
			WithTourID(tourID)
	}

	r.mu.Lock()
	r.nextSeq++
	sub := &subscription{onReady: onReady, seq: r.nextSeq, eligible: eligible}
	r.subs[tourID] = sub

	var promoted []string
	switch {
	case !eligible:
		if r.exclusive && r.current == tourID {
			r.current = ""
			promoted = r.promoteLocked()
		}
	case !r.exclusive:
		sub.ready = true
	case r.current == "" || r.current == tourID:
		r.current = tourID
		sub.ready = true
	}
	queued := eligible && !sub.ready
	callbacks := r.readyCallbacksLocked(append([]string{tourID}, promoted...))
	r.mu.Unlock()

	r.logger.Debug("tour subscribed", "tour_id", tourID, "eligible", eligible, "queued", queued)
	r.publish(event.NewTourSubscribedEvent(tourID, eligible, queued))
	r.fire(callbacks)
	return nil
}

// Unsubscribe removes tourID. Unknown or already removed ids are a no-op.
// In exclusive mode the next waiting tour is made ready.
func (r *Registry) Unsubscribe(tourID string) {
	r.mu.Lock()
	if _, ok := r.subs[tourID]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.subs, tourID)

	var promoted []string
	if r.exclusive && r.current == tourID {
		r.current = ""
		promoted = r.promoteLocked()
	}
	callbacks := r.readyCallbacksLocked(promoted)
	r.mu.Unlock()

	r.logger.Debug("tour unsubscribed", "tour_id", tourID)
	r.publish(event.NewTourUnsubscribedEvent(tourID))
	r.fire(callbacks)
}

// NotifyShown reports that tourID completed a run.
func (r *Registry) NotifyShown(tourID string) {
	r.logger.Info("tour shown", "tour_id", tourID)
	r.publish(event.NewTourShownEvent(tourID))
	if r.onShown != nil {
		r.onShown(tourID)
	}
}

// Subscribed reports whether tourID currently holds a subscription.
func (r *Registry) Subscribed(tourID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs[tourID]
	return ok
}

// Shown returns the ids whose ready callback fired and which are still
// subscribed, sorted.
func (r *Registry) Shown() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for id, sub := range r.subs {
		if sub.ready {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Pending returns eligible ids waiting for the shown tour, in the order they
// will be made ready.
func (r *Registry) Pending() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pendingLocked()
}

func (r *Registry) pendingLocked() []string {
	var ids []string
	for id, sub := range r.subs {
		if sub.eligible && !sub.ready {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, func(a, b string) int {
		return int(r.subs[a].seq) - int(r.subs[b].seq)
	})
	return ids
}

// promoteLocked hands the free exclusive slot to the oldest waiting tour.
func (r *Registry) promoteLocked() []string {
	pending := r.pendingLocked()
	if len(pending) == 0 {
		return nil
	}
	next := pending[0]
	r.current = next
	r.subs[next].ready = true
	return []string{next}
}

type readyCallback struct {
	tourID  string
	onReady func()
}

// readyCallbacksLocked collects the callbacks of ids that just became ready.
func (r *Registry) readyCallbacksLocked(ids []string) []readyCallback {
	var cbs []readyCallback
	for _, id := range ids {
		if sub, ok := r.subs[id]; ok && sub.ready {
			cbs = append(cbs, readyCallback{tourID: id, onReady: sub.onReady})
		}
	}
	return cbs
}

func (r *Registry) fire(cbs []readyCallback) {
	for _, cb := range cbs {
		r.logger.Debug("tour ready", "tour_id", cb.tourID)
		r.publish(event.NewTourReadyEvent(cb.tourID))
		cb.onReady()
	}
}

func (r *Registry) publish(e event.Event) {
	if r.bus != nil {
		r.bus.Publish(e)
	}
}
