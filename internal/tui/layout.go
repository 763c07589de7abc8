// Package tui provides the terminal tour player: a demo host screen with
// named panels and the active tour step drawn over it as a tooltip.
// This file contains layout-related constants and dimension calculation functions.
package tui

// Sidebar dimensions
const (
	// SidebarWidth is the default width of the sidebar panel.
	SidebarWidth = 30

	// SidebarMinWidth is the minimum sidebar width used on narrow terminals (< 80 cols).
	SidebarMinWidth = 20

	// NarrowTerminalThreshold is the terminal width below which the sidebar uses minimum width.
	NarrowTerminalThreshold = 80
)

// Layout offsets - these represent the space taken by fixed UI elements
const (
	// HeaderHeight is the title line plus a blank line.
	HeaderHeight = 2

	// FooterHeight is the status bar plus the help line.
	FooterHeight = 2

	// PanelGap is the gap between sidebar and main panels.
	PanelGap = 1

	// PanelBorder is the width taken by a panel's border and padding on
	// each axis.
	PanelBorder = 4

	// MinBodyHeight is the smallest panel height drawn.
	MinBodyHeight = 6
)

// Layout holds the computed panel geometry for one terminal size.
type Layout struct {
	Width  int
	Height int

	SidebarWidth int
	MainWidth    int
	BodyHeight   int // Height of the sidebar and main panels, borders included
	BodyTop      int // First line of the panels
	StatusTop    int // Line of the status bar
}

// CalculateLayout returns the panel geometry for a termWidth x termHeight
// terminal.
func CalculateLayout(termWidth, termHeight int) Layout {
	sidebar := SidebarWidth
	if termWidth < NarrowTerminalThreshold {
		sidebar = SidebarMinWidth
	}

	body := max(termHeight-HeaderHeight-FooterHeight, MinBodyHeight)
	return Layout{
		Width:        termWidth,
		Height:       termHeight,
		SidebarWidth: sidebar,
		MainWidth:    max(termWidth-sidebar-PanelGap, PanelBorder+1),
		BodyHeight:   body,
		BodyTop:      HeaderHeight,
		StatusTop:    HeaderHeight + body,
	}
}

// Anchor returns where the top-left corner of a tooltip of the given size
// goes for a step targeting panel. Unknown or empty targets center the
// tooltip on the screen.
func (l Layout) Anchor(panel string, tipWidth, tipHeight int) (x, y int) {
	switch panel {
	case PanelSidebar:
		// Right of the sidebar, level with its first entry
		x, y = l.SidebarWidth+PanelGap, l.BodyTop+1
	case PanelMain:
		x, y = l.SidebarWidth+PanelGap+2, l.BodyTop+2
	case PanelStatus:
		// Just above the status bar
		x, y = 1, l.StatusTop-tipHeight
	default:
		x, y = (l.Width-tipWidth)/2, (l.Height-tipHeight)/2
	}

	x = min(x, l.Width-tipWidth)
	y = min(y, l.Height-tipHeight)
	return max(x, 0), max(y, 0)
}
