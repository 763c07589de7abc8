package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/tourguide/internal/util"
)

// Named panels of the host screen a step may target.
const (
	PanelSidebar = "sidebar"
	PanelMain    = "main"
	PanelStatus  = "status"
)

// Panels returns the panel names a step target may use.
func Panels() []string {
	return []string{PanelSidebar, PanelMain, PanelStatus}
}

// View renders the host screen with the visible tour's tooltip on top.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading tours..."
	}

	l := CalculateLayout(m.width, m.height)
	visible := m.visible()
	target := visible.target()

	var b strings.Builder
	b.WriteString(m.renderHeader(l))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderSidebar(l, target == PanelSidebar),
		strings.Repeat(" ", PanelGap),
		m.renderMain(l, target == PanelMain),
	))
	b.WriteString("\n")
	b.WriteString(m.renderStatus(l, target == PanelStatus))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	screen := b.String()

	if visible == nil {
		return screen
	}
	tip := visible.seq.Render()
	if tip == "" {
		return screen
	}
	x, y := l.Anchor(target, lipgloss.Width(tip), lipgloss.Height(tip))
	return util.OverlayANSI(screen, tip, x, y)
}

func (m Model) renderHeader(l Layout) string {
	title := m.styles.PanelTitle.Render("tourguide")
	if mt := m.visible(); mt != nil {
		title += m.styles.StatusBar.Render(fmt.Sprintf("  %s · step %d of %d",
			mt.def.DisplayTitle(), mt.snap.Active+1, mt.snap.Count))
	}
	return util.TruncateANSI(title, l.Width)
}

// renderSidebar lists the mounted tours and their state.
func (m Model) renderSidebar(l Layout, highlighted bool) string {
	lines := make([]string, 0, len(m.mounts))
	for i, mt := range m.mounts {
		marker := "  "
		if i == m.focus {
			marker = "▸ "
		}
		lines = append(lines, fmt.Sprintf("%s%s  %s", marker, mt.seq.TourID(),
			m.styles.StatusBar.Render(mt.stateLabel())))
	}
	if len(lines) == 0 {
		lines = append(lines, m.styles.StatusBar.Render("No tours"))
	}
	return m.panel("Tours", lines, l.SidebarWidth, l.BodyHeight, highlighted)
}

// renderMain outlines the steps of the focused tour.
func (m Model) renderMain(l Layout, highlighted bool) string {
	mt := m.focused()
	if mt == nil {
		return m.panel("Overview", nil, l.MainWidth, l.BodyHeight, highlighted)
	}

	lines := make([]string, 0, len(mt.def.Steps)+2)
	if src := m.catalog.Source(mt.seq.TourID()); src != "" {
		lines = append(lines, m.styles.StatusBar.Render(src), "")
	}
	for i, step := range mt.def.Steps {
		marker := "  "
		if mt.snap.Active == i {
			marker = "▸ "
		}
		line := fmt.Sprintf("%s%d. %s", marker, i+1, stepLabel(step.Title, step.Body))
		if mt.def.IsFallback(i) {
			line += m.styles.StatusBar.Render(" (fallback)")
		}
		if step.Target != "" {
			line += m.styles.StatusBar.Render(" → " + step.Target)
		}
		lines = append(lines, line)
	}
	return m.panel(mt.def.DisplayTitle(), lines, l.MainWidth, l.BodyHeight, highlighted)
}

func (m Model) renderStatus(l Layout, highlighted bool) string {
	var text string
	switch {
	case m.errorMessage != "":
		text = m.styles.StatusError.Render(m.errorMessage)
	case m.status != "":
		text = m.styles.StatusBar.Render(m.status)
	default:
		text = m.styles.StatusBar.Render(fmt.Sprintf("%d tours mounted", len(m.mounts)))
	}
	if highlighted {
		text = lipgloss.NewStyle().Reverse(true).Render(util.PadRightANSI(text, l.Width))
	}
	return util.TruncateANSI(text, l.Width)
}

// panel draws a bordered panel of the given outer size, clipping lines that
// do not fit.
func (m Model) panel(title string, lines []string, width, height int, highlighted bool) string {
	style := m.styles.Panel
	if highlighted {
		style = m.styles.PanelHighlighted
	}
	inner := width - PanelBorder
	rows := max(height-2, 1)

	content := make([]string, 0, rows)
	content = append(content, util.TruncateANSI(m.styles.PanelTitle.Render(title), inner), "")
	for _, line := range lines {
		if len(content) >= rows {
			break
		}
		content = append(content, util.TruncateANSI(line, inner))
	}
	if len(content) > rows {
		content = content[:rows]
	}
	return style.Width(width - 2).Height(rows).Render(strings.Join(content, "\n"))
}

func (mt *mount) stateLabel() string {
	switch {
	case mt.snap.Running():
		return fmt.Sprintf("%d/%d", mt.snap.Active+1, mt.snap.Count)
	case mt.snap.Subscribed:
		return "waiting"
	case mt.shown:
		return "done"
	default:
		return "idle"
	}
}

func stepLabel(title, body string) string {
	if title != "" {
		return title
	}
	return body
}
