package tooltip

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/tourguide/internal/tui/styles"
)

// Labels are the footer button captions.
type Labels struct {
	Next  string
	Prev  string
	Start string // Shown instead of Next on a single or final point
}

// DefaultLabels returns the built-in English captions.
func DefaultLabels() Labels {
	return Labels{Next: "Next", Prev: "Back", Start: "Get started"}
}

// withDefaults fills empty captions from DefaultLabels.
func (l Labels) withDefaults() Labels {
	d := DefaultLabels()
	if l.Next == "" {
		l.Next = d.Next
	}
	if l.Prev == "" {
		l.Prev = d.Prev
	}
	if l.Start == "" {
		l.Start = d.Start
	}
	return l
}

// Footer is a three-part tooltip footer. Empty parts render as blank space.
type Footer struct {
	Left   string
	Center string
	Right  string
}

// IsZero reports whether the footer has no content.
func (f Footer) IsZero() bool {
	return f.Left == "" && f.Center == "" && f.Right == ""
}

// MultiStepFooter lays out the navigation footer of point active (1-based)
// out of points:
//
//   - one point: a single start button
//   - first point: points, then a next button
//   - last point: back button, points, start button
//   - otherwise: back button, points, next button
//
// Zero points yields an empty footer.
func MultiStepFooter(st styles.Styles, points, active int, labels Labels) Footer {
	if points <= 0 {
		return Footer{}
	}
	labels = labels.withDefaults()

	next := func(caption string, arrow bool) string {
		if arrow {
			caption += " →"
		}
		return st.ButtonPrimary.Render(caption)
	}
	prev := st.Button.Render("← " + labels.Prev)
	dots := Points(st, points, active)

	switch {
	case points == 1:
		return Footer{Left: st.ButtonStart.Render(labels.Start)}
	case active == 1:
		return Footer{Left: dots, Right: next(labels.Next, true)}
	case active == points:
		return Footer{Left: prev, Center: dots, Right: st.ButtonStart.Render(labels.Start)}
	default:
		return Footer{Left: prev, Center: dots, Right: next(labels.Next, true)}
	}
}

// Points renders a row of count dots with the active (1-based) one
// highlighted.
func Points(st styles.Styles, count, active int) string {
	if count <= 0 {
		return ""
	}
	dots := make([]string, count)
	for i := range dots {
		if i+1 == active {
			dots[i] = st.PointActive.Render("●")
		} else {
			dots[i] = st.Point.Render("○")
		}
	}
	return strings.Join(dots, " ")
}

// Render places the parts on one line of the given width: left aligned,
// centered and right aligned. Parts that do not fit are separated by a
// single space.
func (f Footer) Render(width int) string {
	if f.IsZero() {
		return ""
	}

	lw, cw, rw := lipgloss.Width(f.Left), lipgloss.Width(f.Center), lipgloss.Width(f.Right)
	if lw+cw+rw+2 > width {
		parts := make([]string, 0, 3)
		for _, p := range []string{f.Left, f.Center, f.Right} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, " ")
	}

	if f.Center == "" {
		return f.Left + strings.Repeat(" ", width-lw-rw) + f.Right
	}

	gapLeft := max((width-cw)/2-lw, 1)
	gapRight := width - lw - gapLeft - cw - rw
	if gapRight < 1 {
		gapRight = 1
		gapLeft = width - lw - cw - rw - 1
	}
	return f.Left + strings.Repeat(" ", gapLeft) + f.Center + strings.Repeat(" ", gapRight) + f.Right
}
