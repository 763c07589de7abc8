package tour

import (
	"errors"
	"slices"
	"testing"

	tgerrors "github.com/Iron-Ham/tourguide/internal/errors"
	"github.com/Iron-Ham/tourguide/internal/event"
)

func TestRegistry_SubscribeEligible(t *testing.T) {
	r := NewRegistry(AllowAll, nil)

	calls := 0
	if err := r.Subscribe("welcome", func() { calls++ }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	// onReady runs synchronously for a synchronous predicate
	if calls != 1 {
		t.Errorf("onReady calls = %d, want 1", calls)
	}
	if !r.Subscribed("welcome") {
		t.Error("welcome should be subscribed")
	}
	if got := r.Shown(); !slices.Equal(got, []string{"welcome"}) {
		t.Errorf("Shown() = %v, want [welcome]", got)
	}
}

func TestRegistry_SubscribeIneligible(t *testing.T) {
	r := NewRegistry(DenyList("welcome"), nil)

	calls := 0
	if err := r.Subscribe("welcome", func() { calls++ }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if calls != 0 {
		t.Errorf("onReady calls = %d, want 0", calls)
	}
	if !r.Subscribed("welcome") {
		t.Error("ineligible tours are still stored")
	}
	if len(r.Shown()) != 0 || len(r.Pending()) != 0 {
		t.Errorf("ineligible tour should be neither shown nor pending: %v %v", r.Shown(), r.Pending())
	}
}

func TestRegistry_PredicateError(t *testing.T) {
	boom := errors.New("flag service down")
	r := NewRegistry(func(string) (bool, error) { return false, boom }, nil)

	calls := 0
	err := r.Subscribe("welcome", func() { calls++ })
	if err == nil {
		t.Fatal("Subscribe() should return the predicate error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error should wrap the predicate error: %v", err)
	}
	if !errors.Is(err, tgerrors.ErrPredicateFailed) {
		t.Errorf("error should match ErrPredicateFailed: %v", err)
	}
	if calls != 0 {
		t.Errorf("onReady calls = %d, want 0", calls)
	}
	if r.Subscribed("welcome") {
		t.Error("nothing should be stored when the predicate fails")
	}
}

func TestRegistry_SubscribeValidation(t *testing.T) {
	r := NewRegistry(nil, nil)

	tests := []struct {
		name    string
		id      string
		onReady func()
	}{
		{"empty id", "", func() {}},
		{"nil callback", "welcome", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Subscribe(tt.id, tt.onReady)
			if !errors.Is(err, tgerrors.ErrInvalidInput) {
				t.Errorf("Subscribe() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRegistry_UnsubscribeIdempotent(t *testing.T) {
	bus := event.NewBus(nil)
	unsubscribed := 0
	bus.Subscribe(event.TypeTourUnsubscribed, func(event.Event) { unsubscribed++ })

	r := NewRegistry(AllowAll, nil, WithRegistryBus(bus))
	r.Unsubscribe("unknown")

	if err := r.Subscribe("welcome", func() {}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	r.Unsubscribe("welcome")
	r.Unsubscribe("welcome")

	if r.Subscribed("welcome") {
		t.Error("welcome should be unsubscribed")
	}
	if unsubscribed != 1 {
		t.Errorf("unsubscribed events = %d, want 1", unsubscribed)
	}
}

func TestRegistry_NotifyShown(t *testing.T) {
	var shown []string
	r := NewRegistry(AllowAll, func(id string) { shown = append(shown, id) })

	r.NotifyShown("welcome")
	r.NotifyShown("shortcuts")

	if !slices.Equal(shown, []string{"welcome", "shortcuts"}) {
		t.Errorf("onShown calls = %v", shown)
	}

	// A nil callback is allowed
	NewRegistry(AllowAll, nil).NotifyShown("welcome")
}

func TestRegistry_Exclusive(t *testing.T) {
	r := NewRegistry(AllowAll, nil, WithExclusive(true))

	var ready []string
	subscribe := func(id string) {
		t.Helper()
		if err := r.Subscribe(id, func() { ready = append(ready, id) }); err != nil {
			t.Fatalf("Subscribe(%s) error = %v", id, err)
		}
	}

	subscribe("a")
	subscribe("b")
	subscribe("c")

	if !slices.Equal(ready, []string{"a"}) {
		t.Fatalf("ready = %v, want [a]", ready)
	}
	if got := r.Pending(); !slices.Equal(got, []string{"b", "c"}) {
		t.Fatalf("Pending() = %v, want [b c]", got)
	}

	// Unsubscribing a waiting tour does not promote anyone
	r.Unsubscribe("c")
	if !slices.Equal(ready, []string{"a"}) {
		t.Fatalf("ready = %v, want [a]", ready)
	}

	r.Unsubscribe("a")
	if !slices.Equal(ready, []string{"a", "b"}) {
		t.Fatalf("ready = %v, want [a b]", ready)
	}
	if got := r.Shown(); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Shown() = %v, want [b]", got)
	}
	if len(r.Pending()) != 0 {
		t.Errorf("Pending() = %v, want empty", r.Pending())
	}
}

func TestRegistry_ExclusiveResubscribeIneligible(t *testing.T) {
	eligible := map[string]bool{"a": true, "b": true}
	r := NewRegistry(func(id string) (bool, error) { return eligible[id], nil }, nil, WithExclusive(true))

	var ready []string
	_ = r.Subscribe("a", func() { ready = append(ready, "a") })
	_ = r.Subscribe("b", func() { ready = append(ready, "b") })

	// a turns ineligible while holding the slot; b takes over
	eligible["a"] = false
	_ = r.Subscribe("a", func() { ready = append(ready, "a") })

	if !slices.Equal(ready, []string{"a", "b"}) {
		t.Errorf("ready = %v, want [a b]", ready)
	}
}

func TestRegistry_NonExclusiveShowsAll(t *testing.T) {
	r := NewRegistry(AllowAll, nil)

	n := 0
	_ = r.Subscribe("a", func() { n++ })
	_ = r.Subscribe("b", func() { n++ })

	if n != 2 {
		t.Errorf("onReady calls = %d, want 2", n)
	}
	if got := r.Shown(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Shown() = %v", got)
	}
}

func TestRegistry_Events(t *testing.T) {
	bus := event.NewBus(nil)
	var types []string
	bus.SubscribeAll(func(e event.Event) { types = append(types, e.EventType()) })

	r := NewRegistry(AllowAll, nil, WithRegistryBus(bus))
	_ = r.Subscribe("welcome", func() {})
	r.Unsubscribe("welcome")
	r.NotifyShown("welcome")

	want := []string{
		event.TypeTourSubscribed,
		event.TypeTourReady,
		event.TypeTourUnsubscribed,
		event.TypeTourShown,
	}
	if !slices.Equal(types, want) {
		t.Errorf("events = %v, want %v", types, want)
	}
}

func TestDenyList(t *testing.T) {
	p := DenyList("a", "b")

	for id, want := range map[string]bool{"a": false, "b": false, "c": true} {
		got, err := p(id)
		if err != nil {
			t.Fatalf("DenyList(%s) error = %v", id, err)
		}
		if got != want {
			t.Errorf("DenyList(%s) = %v, want %v", id, got, want)
		}
	}
}
