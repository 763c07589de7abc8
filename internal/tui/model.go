package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"

	"github.com/Iron-Ham/tourguide/internal/definition"
	"github.com/Iron-Ham/tourguide/internal/event"
	"github.com/Iron-Ham/tourguide/internal/logging"
	"github.com/Iron-Ham/tourguide/internal/tour"
	"github.com/Iron-Ham/tourguide/internal/tui/keymap"
	"github.com/Iron-Ham/tourguide/internal/tui/msg"
	"github.com/Iron-Ham/tourguide/internal/tui/styles"
	"github.com/Iron-Ham/tourguide/internal/tui/tooltip"
)

// relayBuffer is the number of background notifications buffered for the
// event loop.
const relayBuffer = 64

// Config holds the dependencies of the tour player.
type Config struct {
	Catalog     *definition.Catalog
	TourIDs     []string // Tours to mount, in subscription order; empty mounts every tour
	Coordinator tour.Coordinator
	Policy      tour.FallbackPolicy
	Styles      styles.Styles
	Renderer    tooltip.Renderer
	Logger      *logging.Logger

	// Bus, when set, feeds completed-tour and catalog-reload events to the
	// player. It must be the bus the registry and watcher publish on.
	Bus *event.Bus

	// Reload returns the current catalog after a reload. Tours restarted
	// after a reload are rebuilt from it.
	Reload func() *definition.Catalog
}

// mount is one tour mounted on the host screen. Its steps are fixed for the
// lifetime of the sequencer.
type mount struct {
	seq   *tour.Sequencer
	def   *definition.Tour
	snap  tour.Snapshot
	shown bool
	stale bool // The catalog changed since this mount was built
}

// Model holds the TUI application state
type Model struct {
	// Core components
	ctx      context.Context
	catalog  *definition.Catalog
	reload   func() *definition.Catalog
	coord    tour.Coordinator
	policy   tour.FallbackPolicy
	renderer tooltip.Renderer
	logger   *logging.Logger
	bus      *event.Bus
	busSubs  []string
	relay    *msg.Relay

	mounts []*mount
	focus  int

	// UI state
	keys         keymap.KeyMap
	help         help.Model
	styles       styles.Styles
	width        int
	height       int
	ready        bool
	quitting     bool
	showHelp     bool
	status       string
	errorMessage string
}

// NewModel builds a sequencer for every configured tour. Nothing is
// subscribed until the program starts.
func NewModel(ctx context.Context, cfg Config) (Model, error) {
	if cfg.Catalog == nil {
		return Model{}, fmt.Errorf("tour catalog is required")
	}
	if cfg.Coordinator == nil {
		return Model{}, fmt.Errorf("tour coordinator is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NopLogger()
	}

	h := help.New()
	h.Styles.ShortKey = cfg.Styles.Help
	h.Styles.ShortDesc = cfg.Styles.Help
	h.Styles.FullKey = cfg.Styles.Help
	h.Styles.FullDesc = cfg.Styles.Help

	m := Model{
		ctx:      ctx,
		catalog:  cfg.Catalog,
		reload:   cfg.Reload,
		coord:    cfg.Coordinator,
		policy:   cfg.Policy,
		renderer: cfg.Renderer,
		logger:   cfg.Logger,
		bus:      cfg.Bus,
		relay:    msg.NewRelay(relayBuffer),
		keys:     keymap.Default(),
		help:     h,
		styles:   cfg.Styles,
	}

	ids := cfg.TourIDs
	if len(ids) == 0 {
		ids = cfg.Catalog.IDs()
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		mt, err := m.newMount(cfg.Catalog, id)
		if err != nil {
			m.Shutdown()
			return Model{}, err
		}
		m.mounts = append(m.mounts, mt)
	}

	if m.bus != nil {
		m.busSubs = append(m.busSubs,
			m.bus.Subscribe(event.TypeTourShown, func(e event.Event) {
				if ev, ok := e.(event.TourShownEvent); ok {
					m.relay.Send(msg.TourShownMsg{TourID: ev.TourID})
				}
			}),
			m.bus.Subscribe(event.TypeCatalogReloaded, func(e event.Event) {
				if ev, ok := e.(event.CatalogReloadedEvent); ok {
					m.relay.Send(msg.CatalogReloadedMsg{Tours: ev.Tours, Err: ev.Err})
				}
			}),
		)
	}

	return m, nil
}

// newMount builds a sequencer for tour id from catalog.
func (m Model) newMount(catalog *definition.Catalog, id string) (*mount, error) {
	def, err := catalog.Tour(id)
	if err != nil {
		return nil, err
	}
	steps, err := catalog.Build(id, m.renderer.Factory())
	if err != nil {
		return nil, err
	}

	relay := m.relay
	seq := tour.NewSequencer(id, steps, m.coord,
		tour.WithFallbackPolicy(m.policy),
		tour.WithLogger(m.logger),
		tour.WithBus(m.bus),
		tour.WithOnChange(func(s tour.Snapshot) {
			relay.Send(msg.StateChangedMsg{Snapshot: s})
		}),
		tour.WithErrorHandler(func(err error) {
			relay.Send(msg.ErrMsg{TourID: id, Err: err})
		}),
	)
	return &mount{seq: seq, def: def, snap: seq.State()}, nil
}

// Shutdown unmounts every tour and detaches from the bus. Safe to call more
// than once.
func (m Model) Shutdown() {
	m.relay.Close()
	if m.bus != nil {
		for _, id := range m.busSubs {
			m.bus.Unsubscribe(id)
		}
	}
	for _, mt := range m.mounts {
		mt.seq.Unmount()
	}
}

// mountFor returns the mount of tourID, or nil.
func (m Model) mountFor(tourID string) *mount {
	for _, mt := range m.mounts {
		if mt.seq.TourID() == tourID {
			return mt
		}
	}
	return nil
}

// focused returns the mount keys apply to.
func (m Model) focused() *mount {
	if m.focus < 0 || m.focus >= len(m.mounts) {
		return nil
	}
	return m.mounts[m.focus]
}

// visible returns the mount whose tooltip is drawn: the focused tour when it
// is running, otherwise the first running tour.
func (m Model) visible() *mount {
	if mt := m.focused(); mt != nil && mt.snap.Running() {
		return mt
	}
	for _, mt := range m.mounts {
		if mt.snap.Running() {
			return mt
		}
	}
	return nil
}

// target returns the panel the active step of mt points at.
func (mt *mount) target() string {
	if mt == nil || !mt.snap.Running() || mt.snap.Active >= len(mt.def.Steps) {
		return ""
	}
	return mt.def.Steps[mt.snap.Active].Target
}
