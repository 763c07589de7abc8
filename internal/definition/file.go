package definition

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	tgerrors "github.com/Iron-Ham/tourguide/internal/errors"
)

// File is one tour definition file.
type File struct {
	Tours []Tour `yaml:"tours"`
}

// Tour is a declared tour.
type Tour struct {
	// ID is the identifier the tour subscribes under (e.g., "welcome")
	ID string `yaml:"id"`
	// Title is a display name for listings (optional)
	Title string `yaml:"title,omitempty"`
	// Steps are shown in order
	Steps []StepDef `yaml:"steps"`
}

// StepDef is a declared step.
type StepDef struct {
	// Title is the tooltip header
	Title string `yaml:"title,omitempty"`
	// Body is the tooltip content
	Body string `yaml:"body,omitempty"`
	// Target names the host element the step points at (optional)
	Target string `yaml:"target,omitempty"`
	// Before lists actions run, in order, before the step shows
	Before []string `yaml:"before,omitempty"`
	// After lists actions run, in order, after the step hides
	After []string `yaml:"after,omitempty"`
	// Fallback marks a terminal step
	Fallback bool `yaml:"fallback,omitempty"`
}

// IsFallback reports whether step i acts as a fallback step. A flag on the
// first step has no effect.
func (t *Tour) IsFallback(i int) bool {
	return i > 0 && i < len(t.Steps) && t.Steps[i].Fallback
}

// FallbackCount returns the number of fallback steps.
func (t *Tour) FallbackCount() int {
	n := 0
	for i := range t.Steps {
		if t.IsFallback(i) {
			n++
		}
	}
	return n
}

// DisplayTitle returns Title, or ID when no title is set.
func (t *Tour) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.ID
}

// tourIDRegex validates tour ids.
var tourIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

// Load reads and validates a definition file. Action names are not resolved;
// see Actions.Check.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tgerrors.NewDefinitionError("reading definition file", err).WithFile(path)
	}
	return Parse(path, data)
}

// Parse decodes and validates definition data. name is used in errors.
func Parse(name string, data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, tgerrors.NewDefinitionError("parsing definition file", err).WithFile(name)
	}
	if err := f.Validate(); err != nil {
		var defErr *tgerrors.DefinitionError
		if tgerrors.As(err, &defErr) {
			return nil, defErr.WithFile(name)
		}
		return nil, err
	}
	return &f, nil
}

// Validate checks that the file is well-formed: ids are valid and unique
// within the file and every step has something to show.
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Tours))
	for i := range f.Tours {
		t := &f.Tours[i]
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.ID] {
			return tgerrors.NewDefinitionError("tour declared twice", tgerrors.ErrDuplicateTour).WithTourID(t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// Validate checks a single tour.
func (t *Tour) Validate() error {
	if t.ID == "" {
		return tgerrors.NewDefinitionError("tour id is required", tgerrors.ErrInvalidDefinition)
	}
	if !tourIDRegex.MatchString(t.ID) {
		return tgerrors.NewDefinitionError(
			fmt.Sprintf("invalid tour id %q (lowercase letters, digits, '.', '_' and '-')", t.ID),
			tgerrors.ErrInvalidDefinition,
		).WithTourID(t.ID)
	}
	for i, s := range t.Steps {
		if s.Title == "" && s.Body == "" {
			return tgerrors.NewDefinitionError(
				fmt.Sprintf("step %d needs a title or a body", i),
				tgerrors.ErrInvalidDefinition,
			).WithTourID(t.ID)
		}
	}
	return nil
}
