package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/tourguide/internal/definition"
	tgerrors "github.com/Iron-Ham/tourguide/internal/errors"
	"github.com/Iron-Ham/tourguide/internal/event"
	"github.com/Iron-Ham/tourguide/internal/logging"
	"github.com/Iron-Ham/tourguide/internal/testutil"
	"github.com/Iron-Ham/tourguide/internal/tour"
	"github.com/Iron-Ham/tourguide/internal/tui/msg"
	"github.com/Iron-Ham/tourguide/internal/tui/styles"
	"github.com/Iron-Ham/tourguide/internal/tui/tooltip"
)

const waitFor = 2 * time.Second

type fixture struct {
	model    Model
	registry *tour.Registry
	coord    *testutil.RecordingCoordinator
	bus      *event.Bus
}

func newFixture(t *testing.T, definitions string, ids ...string) *fixture {
	t.Helper()

	actions := definition.NewActions(logging.NopLogger())
	require.NoError(t, actions.Register("fail", func(string) (definition.Action, error) {
		return func(context.Context, definition.StepInfo) error {
			return errors.New("target missing")
		}, nil
	}))

	dir := testutil.WriteDefinitions(t, map[string]string{"tours.yaml": definitions})
	catalog, err := definition.LoadDir(dir, actions)
	require.NoError(t, err)

	bus := event.NewBus(logging.NopLogger())
	registry := tour.NewRegistry(nil, nil, tour.WithExclusive(true), tour.WithRegistryBus(bus))
	coord := &testutil.RecordingCoordinator{Inner: registry}

	st := styles.New(nil)
	m, err := NewModel(context.Background(), Config{
		Catalog:     catalog,
		TourIDs:     ids,
		Coordinator: coord,
		Styles:      st,
		Renderer:    tooltip.Renderer{Styles: st, Width: 40},
		Bus:         bus,
	})
	require.NoError(t, err)
	t.Cleanup(m.Shutdown)

	return &fixture{model: m, registry: registry, coord: coord, bus: bus}
}

// mountAll mounts the tours in order, as Init does.
func (f *fixture) mountAll(t *testing.T) {
	t.Helper()
	for _, mt := range f.model.mounts {
		require.Nil(t, f.model.mountCmd(mt.seq)())
	}
}

func (f *fixture) update(t *testing.T, message tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := f.model.Update(message)
	f.model = next.(Model)
	return cmd
}

func (f *fixture) press(t *testing.T, k tea.KeyMsg) tea.Cmd {
	t.Helper()
	return f.update(t, k)
}

// pumpUntil feeds relayed messages to the model until cond holds.
func (f *fixture) pumpUntil(t *testing.T, cond func(Model) bool) {
	t.Helper()

	deadline := time.After(waitFor)
	for !cond(f.model) {
		got := make(chan tea.Msg, 1)
		go func() { got <- f.model.relay.Listen()() }()

		select {
		case message := <-got:
			f.update(t, message)
		case <-deadline:
			t.Fatalf("condition not reached; status=%q error=%q", f.model.status, f.model.errorMessage)
		}
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func activeStep(id string) func(Model) bool {
	return func(m Model) bool {
		mt := m.mountFor(id)
		return mt != nil && mt.snap.Running()
	}
}

func TestNewModel_Validation(t *testing.T) {
	_, err := NewModel(context.Background(), Config{})
	require.Error(t, err)

	catalog, err := definition.LoadDir(t.TempDir(), definition.NewActions(nil))
	require.NoError(t, err)
	_, err = NewModel(context.Background(), Config{Catalog: catalog})
	require.Error(t, err)
}

func TestNewModel_UnknownTour(t *testing.T) {
	dir := testutil.WriteDefinitions(t, map[string]string{"tours.yaml": testutil.WelcomeTour})
	catalog, err := definition.LoadDir(dir, definition.NewActions(nil))
	require.NoError(t, err)

	_, err = NewModel(context.Background(), Config{
		Catalog:     catalog,
		TourIDs:     []string{"missing"},
		Coordinator: tour.NewRegistry(nil, nil),
	})
	require.ErrorIs(t, err, tgerrors.ErrTourNotFound)
}

func TestNewModel_MountsEveryTourOnce(t *testing.T) {
	f := newFixture(t, testutil.WelcomeTour, "shortcuts", "welcome", "shortcuts")
	require.Len(t, f.model.mounts, 2)
	require.Equal(t, "shortcuts", f.model.mounts[0].seq.TourID())

	all := newFixture(t, testutil.WelcomeTour)
	require.Len(t, all.model.mounts, 2)
}

func TestModel_ViewBeforeSize(t *testing.T) {
	f := newFixture(t, testutil.WelcomeTour)
	require.Equal(t, "Loading tours...", f.model.View())
}

func TestModel_ShowsFirstStepAndQueuesOthers(t *testing.T) {
	f := newFixture(t, testutil.WelcomeTour)
	f.update(t, tea.WindowSizeMsg{Width: 100, Height: 30})
	f.mountAll(t)
	f.pumpUntil(t, activeStep("welcome"))

	require.Equal(t, "waiting", f.model.mountFor("shortcuts").stateLabel())
	require.Equal(t, []string{"shortcuts"}, f.registry.Pending())

	view := ansi.Strip(f.model.View())
	require.Contains(t, view, "Sessions")
	require.Contains(t, view, "Your sessions live here.")
	require.Contains(t, view, "step 1 of 3")
}

func TestModel_NavigateAndHandOver(t *testing.T) {
	f := newFixture(t, testutil.WelcomeTour)
	f.update(t, tea.WindowSizeMsg{Width: 100, Height: 30})
	f.mountAll(t)
	f.pumpUntil(t, activeStep("welcome"))

	f.press(t, runes("n"))
	f.pumpUntil(t, func(m Model) bool { return m.mountFor("welcome").snap.Active == 1 })
	require.Contains(t, ansi.Strip(f.model.View()), "Output of the selected session.")

	f.press(t, tea.KeyMsg{Type: tea.KeyLeft})
	f.pumpUntil(t, func(m Model) bool { return m.mountFor("welcome").snap.Active == 0 })

	f.press(t, tea.KeyMsg{Type: tea.KeyEsc})
	f.pumpUntil(t, func(m Model) bool {
		return m.mountFor("welcome").shown && activeStep("shortcuts")(m)
	})

	require.Equal(t, "done", f.model.mountFor("welcome").stateLabel())
	require.Equal(t, 1, f.coord.Count("shown:welcome"))
	require.Equal(t, "shortcuts", f.model.focused().seq.TourID())
	require.Contains(t, f.model.status, "welcome")
}

func TestModel_HookFailureShowsError(t *testing.T) {
	const defs = `tours:
  - id: broken
    steps:
      - title: First
      - title: Second
        before: ["fail"]
`
	f := newFixture(t, defs)
	f.update(t, tea.WindowSizeMsg{Width: 100, Height: 30})
	f.mountAll(t)
	f.pumpUntil(t, activeStep("broken"))

	f.press(t, runes("n"))
	f.pumpUntil(t, func(m Model) bool { return m.errorMessage != "" })

	require.Contains(t, f.model.errorMessage, "target missing")
	require.Equal(t, 0, f.model.mountFor("broken").snap.Active)
	require.Contains(t, ansi.Strip(f.model.View()), "target missing")
}

func TestModel_RestartAfterClose(t *testing.T) {
	f := newFixture(t, testutil.WelcomeTour, "shortcuts")
	f.update(t, tea.WindowSizeMsg{Width: 100, Height: 30})
	f.mountAll(t)
	f.pumpUntil(t, activeStep("shortcuts"))

	f.press(t, runes("x"))
	f.pumpUntil(t, func(m Model) bool {
		mt := m.mountFor("shortcuts")
		return mt.shown && !mt.snap.Running()
	})

	cmd := f.press(t, runes("r"))
	require.NotNil(t, cmd)
	require.Nil(t, cmd())
	f.pumpUntil(t, activeStep("shortcuts"))
	require.Equal(t, 2, f.coord.Count("subscribe:shortcuts"))
}

func TestModel_RestartRebuildsAfterReload(t *testing.T) {
	f := newFixture(t, testutil.WelcomeTour, "shortcuts")
	f.update(t, tea.WindowSizeMsg{Width: 100, Height: 30})

	const updated = `tours:
  - id: shortcuts
    steps:
      - title: Help
      - title: Quit
`
	dir := testutil.WriteDefinitions(t, map[string]string{"tours.yaml": updated})
	reloaded, err := definition.LoadDir(dir, definition.NewActions(nil))
	require.NoError(t, err)
	f.model.reload = func() *definition.Catalog { return reloaded }

	old := f.model.mounts[0].seq
	f.update(t, msg.CatalogReloadedMsg{Tours: 1})
	require.True(t, f.model.mounts[0].stale)
	require.Equal(t, "Reloaded 1 tours", f.model.status)

	cmd := f.press(t, runes("r"))
	require.NotNil(t, cmd)
	require.NotSame(t, old, f.model.mounts[0].seq)
	require.Len(t, f.model.mounts[0].def.Steps, 2)
	old.Unmount()
}

func TestModel_ReloadFailure(t *testing.T) {
	f := newFixture(t, testutil.WelcomeTour)
	f.update(t, msg.CatalogReloadedMsg{Err: errors.New("bad yaml")})
	require.Equal(t, "Reload failed: bad yaml", f.model.errorMessage)
	require.False(t, f.model.mounts[0].stale)
}

func TestModel_CycleAndHelp(t *testing.T) {
	f := newFixture(t, testutil.WelcomeTour)
	require.Equal(t, 0, f.model.focus)

	f.press(t, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, 1, f.model.focus)
	f.press(t, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, 0, f.model.focus)

	f.press(t, runes("?"))
	require.True(t, f.model.showHelp)
	require.True(t, f.model.help.ShowAll)
}

func TestModel_Quit(t *testing.T) {
	f := newFixture(t, testutil.WelcomeTour)
	f.mountAll(t)

	cmd := f.press(t, runes("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.True(t, f.model.quitting)
	require.Empty(t, f.model.View())

	require.Equal(t, 2, f.coord.Count("unsubscribe:"))
	require.Zero(t, f.coord.Count("shown:"))
	require.Zero(t, f.bus.SubscriptionCount())
}

func TestModel_StaleSnapshotIgnored(t *testing.T) {
	f := newFixture(t, testutil.WelcomeTour)
	f.update(t, msg.StateChangedMsg{Snapshot: tour.Snapshot{TourID: "welcome", MountID: "other", Active: 2}})
	require.False(t, f.model.mountFor("welcome").snap.Running())
}

func TestFailure(t *testing.T) {
	require.Nil(t, failure("a", nil))
	require.Nil(t, failure("a", context.Canceled))
	require.Nil(t, failure("a", tgerrors.NewHookError(tgerrors.PhaseBefore, 0, errors.New("x"))))

	got, ok := failure("a", errors.New("denied")).(runFailedMsg)
	require.True(t, ok)
	require.Equal(t, "a", got.tourID)
}

func TestView_PanelsClipToWidth(t *testing.T) {
	f := newFixture(t, testutil.WelcomeTour)
	f.update(t, tea.WindowSizeMsg{Width: 90, Height: 20})

	for _, line := range strings.Split(f.model.View(), "\n") {
		require.LessOrEqual(t, ansi.StringWidth(line), 90, ansi.Strip(line))
	}
}
