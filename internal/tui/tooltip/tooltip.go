// Package tooltip renders tour steps as bordered terminal tooltips.
package tooltip

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/tourguide/internal/definition"
	"github.com/Iron-Ham/tourguide/internal/tour"
	"github.com/Iron-Ham/tourguide/internal/tui/styles"
	"github.com/Iron-Ham/tourguide/internal/util"
)

// Width limits in columns, border included.
const (
	DefaultWidth = 52
	MinWidth     = 24
	MaxWidth     = 120
)

// closeMarker is drawn in the header corner of closable tooltips.
const closeMarker = "✕"

// Tooltip is the presentational box of one step.
type Tooltip struct {
	Header   string
	Content  string
	Footer   Footer
	Width    int // Total width; 0 means DefaultWidth
	Closable bool
}

// ClampWidth bounds w to [MinWidth, MaxWidth]; 0 yields DefaultWidth.
func ClampWidth(w int) int {
	if w == 0 {
		return DefaultWidth
	}
	return min(max(w, MinWidth), MaxWidth)
}

// Render draws the tooltip.
func (t Tooltip) Render(st styles.Styles) string {
	width := ClampWidth(t.Width)
	inner := width - 4 // border + horizontal padding

	var b strings.Builder

	header := st.TooltipHeader.Render(t.Header)
	if t.Closable {
		header = util.TruncateANSI(header, inner-2)
		gap := max(inner-lipgloss.Width(header)-lipgloss.Width(closeMarker), 1)
		header += strings.Repeat(" ", gap) + st.CloseMarker.Render(closeMarker)
	} else {
		header = util.TruncateANSI(header, inner)
	}
	b.WriteString(header)

	if t.Content != "" {
		b.WriteString("\n\n")
		b.WriteString(st.TooltipBody.Render(util.WrapANSI(t.Content, inner)))
	}

	if footer := t.Footer.Render(inner); footer != "" {
		b.WriteString("\n\n")
		b.WriteString(footer)
	}

	return st.Tooltip.Width(width - 2).Render(b.String())
}

// Renderer turns definition steps into tooltip render functions.
type Renderer struct {
	Styles styles.Styles
	Width  int
	Labels Labels
}

// Factory returns a definition.RenderFactory drawing each step as a
// tooltip. Ordinary steps get a multi-step footer counting only ordinary
// steps; fallback steps get a single start button.
func (r Renderer) Factory() definition.RenderFactory {
	return func(t *definition.Tour, index int) tour.RenderFunc {
		step := t.Steps[index]

		points, active := 1, 1
		if !t.IsFallback(index) {
			points = 0
			for i := range t.Steps {
				if t.IsFallback(i) {
					continue
				}
				points++
				if i == index {
					active = points
				}
			}
		}

		return func(tour.Controls) string {
			return Tooltip{
				Header:   step.Title,
				Content:  step.Body,
				Footer:   MultiStepFooter(r.Styles, points, active, r.Labels),
				Width:    r.Width,
				Closable: true,
			}.Render(r.Styles)
		}
	}
}
