package definition

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	tgerrors "github.com/Iron-Ham/tourguide/internal/errors"
	"github.com/Iron-Ham/tourguide/internal/tour"
)

// RenderFactory produces the render function of step index of t.
type RenderFactory func(t *Tour, index int) tour.RenderFunc

// Catalog is an immutable set of tours with unique ids.
type Catalog struct {
	tours   map[string]*Tour
	sources map[string]string // tour id -> file
	order   []string
	actions *Actions
}

// IsDefinitionFile reports whether path has a definition file extension.
func IsDefinitionFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadDir loads every *.yaml and *.yml file directly under dir, in name
// order, and checks their action references against actions. A missing
// directory yields an empty catalog.
func LoadDir(dir string, actions *Actions) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, tgerrors.NewDefinitionError("reading definition directory", err).WithFile(dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !IsDefinitionFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return LoadFiles(paths, actions)
}

// LoadFiles loads the given definition files into one catalog.
func LoadFiles(paths []string, actions *Actions) (*Catalog, error) {
	if actions == nil {
		actions = NewActions(nil)
	}
	c := &Catalog{
		tours:   make(map[string]*Tour),
		sources: make(map[string]string),
		actions: actions,
	}

	for _, path := range paths {
		f, err := Load(path)
		if err != nil {
			return nil, err
		}
		for i := range f.Tours {
			t := &f.Tours[i]
			if prev, dup := c.sources[t.ID]; dup {
				return nil, tgerrors.NewDefinitionError("tour already declared in "+prev, tgerrors.ErrDuplicateTour).
					WithFile(path).WithTourID(t.ID)
			}
			if err := actions.Check(t); err != nil {
				var defErr *tgerrors.DefinitionError
				if tgerrors.As(err, &defErr) {
					return nil, defErr.WithFile(path)
				}
				return nil, err
			}
			c.tours[t.ID] = t
			c.sources[t.ID] = path
			c.order = append(c.order, t.ID)
		}
	}
	return c, nil
}

// Len returns the number of tours.
func (c *Catalog) Len() int { return len(c.order) }

// IDs returns tour ids in load order.
func (c *Catalog) IDs() []string { return slices.Clone(c.order) }

// Tours returns the tours in load order.
func (c *Catalog) Tours() []*Tour {
	out := make([]*Tour, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.tours[id])
	}
	return out
}

// Tour returns the tour with the given id.
func (c *Catalog) Tour(id string) (*Tour, error) {
	t, ok := c.tours[id]
	if !ok {
		return nil, tgerrors.NewNotFoundError("tour", id).WithCause(tgerrors.ErrTourNotFound)
	}
	return t, nil
}

// Source returns the file tour id was loaded from.
func (c *Catalog) Source(id string) string { return c.sources[id] }

// Build turns tour id into sequencer steps. render may be nil for steps
// without presentation.
func (c *Catalog) Build(id string, render RenderFactory) ([]tour.Step, error) {
	t, err := c.Tour(id)
	if err != nil {
		return nil, err
	}

	steps := make([]tour.Step, len(t.Steps))
	for i, def := range t.Steps {
		info := StepInfo{TourID: t.ID, Index: i, Title: def.Title, Target: def.Target}

		before := info
		before.Phase = tgerrors.PhaseBefore
		onBefore, err := c.actions.Hook(def.Before, before)
		if err != nil {
			return nil, tgerrors.NewDefinitionError("step before hook", err).WithTourID(id).WithFile(c.sources[id])
		}

		after := info
		after.Phase = tgerrors.PhaseAfter
		onAfter, err := c.actions.Hook(def.After, after)
		if err != nil {
			return nil, tgerrors.NewDefinitionError("step after hook", err).WithTourID(id).WithFile(c.sources[id])
		}

		steps[i] = tour.Step{OnBefore: onBefore, OnAfter: onAfter, Fallback: def.Fallback}
		if render != nil {
			steps[i].Render = render(t, i)
		}
	}
	return steps, nil
}
