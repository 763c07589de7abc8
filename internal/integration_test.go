// Package internal contains integration tests that verify the packages work
// together: definitions feed sequencers, sequencers share a registry, and
// every transition reaches the event bus and the metrics collector.
package internal

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/tourguide/internal/definition"
	"github.com/Iron-Ham/tourguide/internal/event"
	"github.com/Iron-Ham/tourguide/internal/metrics"
	"github.com/Iron-Ham/tourguide/internal/testutil"
	"github.com/Iron-Ham/tourguide/internal/tour"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// recorder collects event types published on a bus.
type recorder struct {
	mu    sync.Mutex
	types []string
}

func (r *recorder) record(e event.Event) {
	r.mu.Lock()
	r.types = append(r.types, e.EventType())
	r.mu.Unlock()
}

func (r *recorder) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.types {
		if t == eventType {
			n++
		}
	}
	return n
}

// counterSum sums every series of a counter family.
func counterSum(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)

	var sum float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}

// TestTourLifecycleIntegration mounts two tours from a definition directory
// on one exclusive registry and walks the first to completion, which hands
// the screen over to the second.
func TestTourLifecycleIntegration(t *testing.T) {
	dir := testutil.WriteDefinitions(t, map[string]string{"welcome.yaml": testutil.WelcomeTour})
	catalog, err := definition.LoadDir(dir, definition.NewActions(nil))
	require.NoError(t, err)

	bus := event.NewBus(nil)
	rec := &recorder{}
	bus.SubscribeAll(rec.record)

	collector := metrics.NewCollector(nil)
	collector.Attach(bus)
	defer collector.Detach()

	var shownMu sync.Mutex
	var shown []string
	registry := tour.NewRegistry(tour.AllowAll, func(id string) {
		shownMu.Lock()
		shown = append(shown, id)
		shownMu.Unlock()
	}, tour.WithExclusive(true), tour.WithRegistryBus(bus))

	render := func(def *definition.Tour, index int) tour.RenderFunc {
		title := def.Steps[index].Title
		return func(tour.Controls) string { return title }
	}

	seqs := make(map[string]*tour.Sequencer)
	for _, id := range catalog.IDs() {
		steps, err := catalog.Build(id, render)
		require.NoError(t, err)
		seq := tour.NewSequencer(id, steps, registry, tour.WithBus(bus))
		t.Cleanup(seq.Unmount)
		seqs[id] = seq
	}

	ctx := context.Background()
	welcome, shortcuts := seqs["welcome"], seqs["shortcuts"]

	require.NoError(t, welcome.Mount(ctx))
	require.NoError(t, shortcuts.Mount(ctx))

	require.Equal(t, 0, welcome.State().Active)
	require.Equal(t, "Sessions", welcome.Render())
	require.False(t, shortcuts.State().Running(), "exclusive registry should queue the second tour")
	require.Equal(t, []string{"shortcuts"}, registry.Pending())

	require.NoError(t, welcome.Next(ctx))
	require.Equal(t, "Output", welcome.Render())
	require.NoError(t, welcome.Close(ctx))
	require.False(t, welcome.State().Running())

	require.Eventually(t, func() bool {
		return shortcuts.State().Running()
	}, waitFor, tick, "closing the first tour should start the queued one")
	require.Equal(t, "Help", shortcuts.Render())
	require.NoError(t, shortcuts.Close(ctx))

	shownMu.Lock()
	require.Equal(t, []string{"welcome", "shortcuts"}, shown)
	shownMu.Unlock()

	require.Equal(t, 2, rec.count(event.TypeTourStarted))
	require.Equal(t, 1, rec.count(event.TypeStepChanged))
	require.Equal(t, 2, rec.count(event.TypeTourClosed))
	require.Equal(t, 2, rec.count(event.TypeTourShown))

	require.Equal(t, 2.0, counterSum(t, collector.Registry(), "tourguide_tours_started_total"))
	require.Equal(t, 2.0, counterSum(t, collector.Registry(), "tourguide_tours_completed_total"))
	require.Equal(t, 1.0, counterSum(t, collector.Registry(), "tourguide_step_transitions_total"))
}

// TestCatalogReloadIntegration edits a watched definition directory while a
// tour is mounted: the mounted sequencer keeps its steps and new builds see
// the new catalog.
func TestCatalogReloadIntegration(t *testing.T) {
	dir := testutil.WriteDefinitions(t, map[string]string{"welcome.yaml": testutil.WelcomeTour})

	bus := event.NewBus(nil)
	reloaded := make(chan event.CatalogReloadedEvent, 4)
	bus.Subscribe(event.TypeCatalogReloaded, func(e event.Event) {
		if ev, ok := e.(event.CatalogReloadedEvent); ok {
			reloaded <- ev
		}
	})

	w, err := definition.NewWatcher(dir, nil,
		definition.WithWatcherBus(bus),
		definition.WithDebounce(10*time.Millisecond),
	)
	require.NoError(t, err)
	defer w.Stop()

	steps, err := w.Catalog().Build("shortcuts", nil)
	require.NoError(t, err)
	registry := tour.NewRegistry(tour.AllowAll, nil)
	seq := tour.NewSequencer("shortcuts", steps, registry)
	defer seq.Unmount()
	require.NoError(t, seq.Mount(context.Background()))

	testutil.WriteFile(t, dir, "extra.yaml", `tours:
  - id: editor
    steps:
      - title: Editor
      - title: Save
`)

	select {
	case ev := <-reloaded:
		require.NoError(t, ev.Err)
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for catalog reload")
	}

	require.Eventually(t, func() bool {
		return slices.Contains(w.Catalog().IDs(), "editor")
	}, waitFor, tick)
	require.Equal(t, 1, seq.State().Count, "mounted tours keep the steps they were built with")
	require.True(t, seq.State().Running())
}
