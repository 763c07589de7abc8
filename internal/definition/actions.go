package definition

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	tgerrors "github.com/Iron-Ham/tourguide/internal/errors"
	"github.com/Iron-Ham/tourguide/internal/logging"
	"github.com/Iron-Ham/tourguide/internal/tour"
)

// StepInfo identifies the step an action runs for.
type StepInfo struct {
	TourID string
	Index  int
	Title  string
	Target string
	Phase  tgerrors.HookPhase
}

// Action is a named hook body referenced from definition files.
type Action func(ctx context.Context, step StepInfo) error

// ActionFactory builds an Action from the argument after the colon in
// "name:arg". arg is empty when the reference has no colon.
type ActionFactory func(arg string) (Action, error)

// Actions resolves action references like "delay:300ms" to Actions.
// It is safe for concurrent use.
type Actions struct {
	mu        sync.RWMutex
	factories map[string]ActionFactory
	logger    *logging.Logger
}

// NewActions returns a registry holding the built-in actions:
//
//   - delay:<duration>  waits, or returns early with the context error
//   - log               logs the step at INFO
//   - noop              does nothing
func NewActions(logger *logging.Logger) *Actions {
	if logger == nil {
		logger = logging.NopLogger()
	}
	a := &Actions{
		factories: make(map[string]ActionFactory),
		logger:    logger,
	}
	a.factories["delay"] = delayAction
	a.factories["log"] = a.logAction
	a.factories["noop"] = func(string) (Action, error) {
		return func(context.Context, StepInfo) error { return nil }, nil
	}
	return a
}

// Register adds or replaces an action.
func (a *Actions) Register(name string, factory ActionFactory) error {
	if name == "" || strings.ContainsAny(name, ": ") {
		return tgerrors.NewValidationError("action name must be non-empty without ':' or spaces").
			WithField("name").WithValue(name)
	}
	if factory == nil {
		return tgerrors.NewValidationError("action factory must not be nil").WithField("factory").WithValue(name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.factories[name] = factory
	return nil
}

// Names returns the registered action names, sorted.
func (a *Actions) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.factories))
	for name := range a.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve turns a reference ("name" or "name:arg") into an Action.
func (a *Actions) Resolve(ref string) (Action, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(ref), ":")

	a.mu.RLock()
	factory, ok := a.factories[name]
	a.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", tgerrors.ErrUnknownAction, name)
	}
	action, err := factory(arg)
	if err != nil {
		return nil, fmt.Errorf("action %q: %w", ref, err)
	}
	return action, nil
}

// Check resolves every action referenced by t.
func (a *Actions) Check(t *Tour) error {
	for i, s := range t.Steps {
		for _, ref := range slices.Concat(s.Before, s.After) {
			if _, err := a.Resolve(ref); err != nil {
				return tgerrors.NewDefinitionError(fmt.Sprintf("step %d", i), err).WithTourID(t.ID)
			}
		}
	}
	return nil
}

// Hook compiles refs into a hook running the actions in order and stopping
// at the first failure. It returns nil for an empty list so the sequencer
// skips the phase.
func (a *Actions) Hook(refs []string, info StepInfo) (tour.Hook, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	actions := make([]Action, 0, len(refs))
	for _, ref := range refs {
		action, err := a.Resolve(ref)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	return func(ctx context.Context) error {
		for i, action := range actions {
			if err := action(ctx, info); err != nil {
				return fmt.Errorf("%s: %w", refs[i], err)
			}
		}
		return nil
	}, nil
}

func delayAction(arg string) (Action, error) {
	d, err := time.ParseDuration(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid delay: %w", err)
	}
	if d < 0 {
		return nil, fmt.Errorf("negative delay %s", d)
	}
	return func(ctx context.Context, _ StepInfo) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}, nil
}

func (a *Actions) logAction(arg string) (Action, error) {
	return func(_ context.Context, step StepInfo) error {
		a.logger.WithTour(step.TourID).WithStep(step.Index).Info("tour step hook",
			"phase", string(step.Phase),
			"title", step.Title,
			"target", step.Target,
			"note", arg,
		)
		return nil
	}, nil
}
