package definition

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/tourguide/internal/event"
	"github.com/Iron-Ham/tourguide/internal/testutil"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := testutil.WriteDefinitions(t, map[string]string{
		"a.yaml": testutil.WelcomeTour,
	})

	bus := event.NewBus(nil)
	reloaded := make(chan event.CatalogReloadedEvent, 8)
	bus.Subscribe(event.TypeCatalogReloaded, func(e event.Event) {
		reloaded <- e.(event.CatalogReloadedEvent)
	})

	w, err := NewWatcher(dir, nil, WithWatcherBus(bus), WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()
	require.Equal(t, 2, w.Catalog().Len())

	testutil.WriteFile(t, dir, "b.yaml", "tours:\n  - id: extra\n    steps:\n      - title: One\n")

	require.Eventually(t, func() bool {
		return slices.Contains(w.Catalog().IDs(), "extra")
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case e := <-reloaded:
		require.NoError(t, e.Err)
		require.Equal(t, dir, e.Dir)
	case <-time.After(2 * time.Second):
		t.Fatal("no catalog.reloaded event")
	}
}

func TestWatcher_KeepsCatalogOnError(t *testing.T) {
	dir := testutil.WriteDefinitions(t, map[string]string{
		"a.yaml": testutil.WelcomeTour,
	})

	failures := make(chan error, 8)
	bus := event.NewBus(nil)
	bus.Subscribe(event.TypeCatalogReloaded, func(e event.Event) {
		if err := e.(event.CatalogReloadedEvent).Err; err != nil {
			failures <- err
		}
	})

	w, err := NewWatcher(dir, nil, WithWatcherBus(bus), WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()

	testutil.WriteFile(t, dir, "broken.yaml", "tours: [")

	select {
	case err := <-failures:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("failed reload not reported")
	}
	require.Equal(t, []string{"welcome", "shortcuts"}, w.Catalog().IDs())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := testutil.WriteDefinitions(t, map[string]string{
		"a.yaml": testutil.WelcomeTour,
	})

	calls := make(chan *Catalog, 8)
	w, err := NewWatcher(dir, nil,
		WithDebounce(10*time.Millisecond),
		WithReloadCallback(func(c *Catalog) { calls <- c }),
	)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi"), 0644))

	select {
	case <-calls:
		t.Fatal("non-definition file triggered a reload")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, os.Remove(filepath.Join(dir, "a.yaml")))
	select {
	case c := <-calls:
		require.Zero(t, c.Len())
	case <-time.After(2 * time.Second):
		t.Fatal("removing a definition file did not reload")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), nil)
	require.NoError(t, err)

	w.Stop()
	w.Stop()
}

func TestNewWatcher_InvalidDefinitions(t *testing.T) {
	dir := testutil.WriteDefinitions(t, map[string]string{"a.yaml": "tours: ["})

	_, err := NewWatcher(dir, nil)
	require.Error(t, err)
}
