package tour

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	tgerrors "github.com/Iron-Ham/tourguide/internal/errors"
	"github.com/Iron-Ham/tourguide/internal/event"
	"github.com/Iron-Ham/tourguide/internal/logging"
)

// Snapshot is a point-in-time view of a sequencer.
type Snapshot struct {
	TourID        string
	MountID       string
	Active        int // NotRunning when no step is showing
	Count         int
	Transitioning bool // A hook chain is in flight
	Subscribed    bool
}

// Running reports whether a step is showing.
func (s Snapshot) Running() bool { return s.Active != NotRunning }

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithFallbackPolicy selects how fallback steps are navigated.
func WithFallbackPolicy(p FallbackPolicy) Option {
	return func(s *Sequencer) { s.policy = p }
}

// WithLogger sets the sequencer logger. Tour and mount ids are attached.
func WithLogger(l *logging.Logger) Option {
	return func(s *Sequencer) { s.logger = l }
}

// WithBus publishes sequencer events on b.
func WithBus(b *event.Bus) Option {
	return func(s *Sequencer) { s.bus = b }
}

// WithOnChange registers fn to be called from the worker after every
// processed transition request and after Unmount.
func WithOnChange(fn func(Snapshot)) Option {
	return func(s *Sequencer) { s.onChange = fn }
}

// WithErrorHandler registers fn to receive transition failures, including
// those triggered through Controls where no caller is waiting.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Sequencer) { s.onError = fn }
}

// WithMountID overrides the generated mount id.
func WithMountID(id string) Option {
	return func(s *Sequencer) { s.mountID = id }
}

type opKind int

const (
	opStart opKind = iota
	opNext
	opPrev
	opClose
)

func (o opKind) String() string {
	switch o {
	case opStart:
		return "start"
	case opNext:
		return "next"
	case opPrev:
		return "prev"
	case opClose:
		return "close"
	default:
		return "unknown"
	}
}

type request struct {
	op   opKind
	ctx  context.Context
	done chan error // Buffered; the worker never blocks on it
}

// Sequencer is the state machine of one mounted tour. Transition requests are
// queued and applied one at a time by a worker goroutine, so the hooks of
// consecutive transitions never overlap and requests issued while a hook is
// running take effect, in order, once it returns.
//
// Hooks and bus handlers run on the worker and must not call the blocking
// methods of the same sequencer; they may use Controls.
type Sequencer struct {
	tourID  string
	mountID string
	steps   []Step
	coord   Coordinator
	policy  FallbackPolicy
	logger  *logging.Logger
	bus     *event.Bus

	onChange func(Snapshot)
	onError  func(error)

	mu            sync.Mutex
	active        int
	transitioning bool
	subscribed    bool
	stopped       bool
	baseCtx       context.Context
	queue         []*request
	inSubscribe   bool
	pendingStart  *request

	wake chan struct{}
	done chan struct{}
}

var _ Handle = (*Sequencer)(nil)

// NewSequencer creates the sequencer for one mount of tourID and starts its
// worker. steps is copied; the sequence is fixed for the lifetime of the
// sequencer. Call Unmount to release it.
func NewSequencer(tourID string, steps []Step, coord Coordinator, opts ...Option) *Sequencer {
	s := &Sequencer{
		tourID:  tourID,
		mountID: uuid.NewString(),
		steps:   append([]Step(nil), steps...),
		coord:   coord,
		active:  NotRunning,
		baseCtx: context.Background(),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NopLogger()
	}
	s.logger = s.logger.WithTour(tourID).WithMount(s.mountID)

	go s.loop()
	return s
}

// TourID returns the id the sequencer subscribes under.
func (s *Sequencer) TourID() string { return s.tourID }

// MountID returns the unique id of this mount.
func (s *Sequencer) MountID() string { return s.mountID }

// State returns a snapshot of the sequencer.
func (s *Sequencer) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Sequencer) snapshotLocked() Snapshot {
	return Snapshot{
		TourID:        s.tourID,
		MountID:       s.mountID,
		Active:        s.active,
		Count:         len(s.steps),
		Transitioning: s.transitioning,
		Subscribed:    s.subscribed,
	}
}

// Mount subscribes the tour to its coordinator. When the coordinator makes
// the tour ready during the call, Mount returns once step 0 is showing (or
// its OnBefore hook failed).
func (s *Sequencer) Mount(ctx context.Context) error {
	return s.subscribe(ctx)
}

// Run restarts a stopped tour: it re-subscribes and, once ready, shows step 0.
// It is a no-op while the tour is running, closing or waiting to be made
// ready, and for a tour without steps.
func (s *Sequencer) Run(ctx context.Context) error {
	return s.subscribe(ctx)
}

// Next advances according to the fallback policy, closing the tour when
// there is no further step. It is a no-op on a stopped tour.
func (s *Sequencer) Next(ctx context.Context) error { return s.do(ctx, opNext) }

// Prev moves back one step. It is a no-op on step 0 and on a stopped tour.
func (s *Sequencer) Prev(ctx context.Context) error { return s.do(ctx, opPrev) }

// Close stops the tour: OnAfter of the active step runs, then the tour
// unsubscribes and reports itself shown. Under FallbackOnClose, closing an
// ordinary step shows the fallback step instead. Closing a stopped tour is a
// no-op.
func (s *Sequencer) Close(ctx context.Context) error { return s.do(ctx, opClose) }

// Unmount stops the sequencer and unsubscribes without reporting the tour
// shown. Queued requests fail with ErrSequencerStopped; a hook already
// running completes but its transition is discarded.
func (s *Sequencer) Unmount() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.subscribed = false
	close(s.done)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.coord.Unsubscribe(s.tourID)
	s.logger.Debug("tour unmounted")
	if s.onChange != nil {
		s.onChange(snap)
	}
}

// Controls returns fire-and-forget triggers bound to this sequencer.
func (s *Sequencer) Controls() Controls {
	s.mu.Lock()
	idx := s.active
	s.mu.Unlock()

	return Controls{
		Index: idx,
		Count: len(s.steps),
		Next:  func() { s.enqueue(context.Background(), opNext) },
		Prev:  func() { s.enqueue(context.Background(), opPrev) },
		Close: func() { s.enqueue(context.Background(), opClose) },
	}
}

// Render renders the active step, or returns "" when no step is showing.
func (s *Sequencer) Render() string {
	s.mu.Lock()
	idx := s.active
	s.mu.Unlock()

	if idx == NotRunning || s.steps[idx].Render == nil {
		return ""
	}
	return s.steps[idx].Render(s.Controls())
}

// subscribe registers with the coordinator unless already subscribed or
// running, and waits for a start granted during the call.
func (s *Sequencer) subscribe(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return s.tourError("subscribe failed", tgerrors.ErrSequencerStopped)
	}
	if s.subscribed || s.active != NotRunning {
		s.mu.Unlock()
		return nil
	}
	if len(s.steps) == 0 {
		s.mu.Unlock()
		s.logger.Debug("tour has no steps, not subscribing")
		return nil
	}
	s.subscribed = true
	s.baseCtx = context.WithoutCancel(ctx)
	s.inSubscribe = true
	s.mu.Unlock()

	err := s.coord.Subscribe(s.tourID, s.ready)

	s.mu.Lock()
	s.inSubscribe = false
	start := s.pendingStart
	s.pendingStart = nil
	if err != nil {
		s.subscribed = false
	}
	s.mu.Unlock()

	if err != nil {
		return s.tourError("subscribe failed", err)
	}
	if start == nil {
		return nil
	}
	select {
	case err := <-start.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ready is the callback handed to the coordinator.
func (s *Sequencer) ready() {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()

	req := s.enqueue(ctx, opStart)

	s.mu.Lock()
	if s.inSubscribe {
		s.pendingStart = req
	}
	s.mu.Unlock()
}

func (s *Sequencer) do(ctx context.Context, op opKind) error {
	req := s.enqueue(ctx, op)
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sequencer) enqueue(ctx context.Context, op opKind) *request {
	req := &request{op: op, ctx: context.WithoutCancel(ctx), done: make(chan error, 1)}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		req.done <- s.tourError(op.String()+" rejected", tgerrors.ErrSequencerStopped)
		return req
	}
	s.queue = append(s.queue, req)
	s.transitioning = true
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return req
}

func (s *Sequencer) loop() {
	for {
		select {
		case <-s.done:
			s.drain()
			return
		case <-s.wake:
		}

		for {
			req := s.pop()
			if req == nil {
				break
			}
			s.process(req)
		}
	}
}

// pop returns the next queued request, or nil when the queue is empty or
// the sequencer stopped.
func (s *Sequencer) pop() *request {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || len(s.queue) == 0 {
		s.transitioning = false
		return nil
	}
	req := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return req
}

func (s *Sequencer) drain() {
	s.mu.Lock()
	queued := s.queue
	s.queue = nil
	s.transitioning = false
	s.mu.Unlock()

	for _, req := range queued {
		req.done <- s.tourError(req.op.String()+" rejected", tgerrors.ErrSequencerStopped)
	}
}

func (s *Sequencer) process(req *request) {
	var err error
	switch req.op {
	case opStart:
		err = s.start(req.ctx)
	case opNext:
		err = s.next(req.ctx)
	case opPrev:
		err = s.prev(req.ctx)
	case opClose:
		err = s.close(req.ctx)
	}
	req.done <- err

	if err != nil && s.onError != nil {
		s.onError(err)
	}
	if s.onChange != nil {
		s.mu.Lock()
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.onChange(snap)
	}
}

func (s *Sequencer) current() (active int, subscribed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.subscribed
}

// commit applies fn under the lock unless the sequencer was unmounted while
// hooks were running.
func (s *Sequencer) commit(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return s.tourError("transition discarded", tgerrors.ErrSequencerStopped)
	}
	fn()
	return nil
}

func (s *Sequencer) start(ctx context.Context) error {
	active, subscribed := s.current()
	if active != NotRunning || !subscribed {
		return nil
	}

	if err := s.runHook(ctx, 0, tgerrors.PhaseBefore); err != nil {
		s.mu.Lock()
		release := s.subscribed && !s.stopped
		s.mu.Unlock()
		if release {
			s.release()
		}
		return err
	}

	if err := s.commit(func() { s.active = 0 }); err != nil {
		return err
	}
	s.logger.Info("tour started", "steps", len(s.steps))
	s.publish(event.NewTourStartedEvent(s.tourID, s.mountID, len(s.steps)))
	return nil
}

func (s *Sequencer) next(ctx context.Context) error {
	i, _ := s.current()
	if i == NotRunning {
		s.logger.Debug("next ignored, tour not running")
		return nil
	}
	j := s.policy.nextTarget(s.steps, i)
	if j == NotRunning {
		return s.finish(ctx, i)
	}
	return s.move(ctx, i, j, event.DirectionForward)
}

func (s *Sequencer) prev(ctx context.Context) error {
	i, _ := s.current()
	if i == NotRunning || i == 0 {
		s.logger.Debug("prev ignored", "active", i)
		return nil
	}
	return s.move(ctx, i, i-1, event.DirectionBackward)
}

func (s *Sequencer) close(ctx context.Context) error {
	i, _ := s.current()
	if i == NotRunning {
		s.logger.Debug("close ignored, tour not running")
		return nil
	}
	if j := s.policy.closeTarget(s.steps, i); j != NotRunning {
		return s.move(ctx, i, j, event.DirectionFallback)
	}
	return s.finish(ctx, i)
}

// move runs OnAfter(from) then OnBefore(to) and only then activates to.
func (s *Sequencer) move(ctx context.Context, from, to int, dir event.Direction) error {
	if err := s.runHook(ctx, from, tgerrors.PhaseAfter); err != nil {
		return err
	}
	if err := s.runHook(ctx, to, tgerrors.PhaseBefore); err != nil {
		return err
	}
	if err := s.commit(func() { s.active = to }); err != nil {
		return err
	}

	s.logger.Debug("step changed", "from", from, "to", to, "direction", string(dir))
	s.publish(event.NewStepChangedEvent(s.tourID, s.mountID, from, to, dir))
	return nil
}

// finish runs OnAfter(last), stops the tour, unsubscribes and reports it shown.
func (s *Sequencer) finish(ctx context.Context, last int) error {
	if err := s.runHook(ctx, last, tgerrors.PhaseAfter); err != nil {
		return err
	}
	if err := s.commit(func() { s.active = NotRunning }); err != nil {
		return err
	}

	s.release()
	s.coord.NotifyShown(s.tourID)

	s.logger.Info("tour closed", "last_step", last)
	s.publish(event.NewTourClosedEvent(s.tourID, s.mountID, last))
	return nil
}

// release unsubscribes from the coordinator, then clears the subscribed
// flag. A Run arriving before the flag clears is ignored.
func (s *Sequencer) release() {
	s.coord.Unsubscribe(s.tourID)
	s.mu.Lock()
	s.subscribed = false
	s.mu.Unlock()
}

func (s *Sequencer) runHook(ctx context.Context, idx int, phase tgerrors.HookPhase) error {
	hook := s.steps[idx].OnBefore
	if phase == tgerrors.PhaseAfter {
		hook = s.steps[idx].OnAfter
	}
	if hook == nil {
		return nil
	}

	began := time.Now()
	err := callHook(ctx, hook)
	s.publish(event.NewHookFinishedEvent(s.tourID, idx, string(phase), time.Since(began), err))
	if err == nil {
		return nil
	}

	hookErr := tgerrors.NewHookError(phase, idx, err).WithTourID(s.tourID)
	s.logger.WithStep(idx).Warn("hook failed, transition aborted", "phase", string(phase), "error", err.Error())
	s.publish(event.NewHookFailedEvent(s.tourID, idx, string(phase), hookErr))
	return hookErr
}

// callHook converts a panicking hook into an error so the worker survives.
func callHook(ctx context.Context, hook Hook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panicked: %v", r)
		}
	}()
	return hook(ctx)
}

func (s *Sequencer) tourError(message string, cause error) error {
	return tgerrors.NewTourError(message, cause).WithTourID(s.tourID).WithMountID(s.mountID)
}

func (s *Sequencer) publish(e event.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
