package styles

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the tour overlay and the demo host
// screen, derived from one ColorPalette.
type Styles struct {
	Palette ColorPalette

	// Tooltip
	Tooltip       lipgloss.Style
	TooltipHeader lipgloss.Style
	TooltipBody   lipgloss.Style
	CloseMarker   lipgloss.Style

	// Footer
	Button        lipgloss.Style
	ButtonPrimary lipgloss.Style
	ButtonStart   lipgloss.Style
	Point         lipgloss.Style
	PointActive   lipgloss.Style

	// Host screen
	Panel            lipgloss.Style
	PanelHighlighted lipgloss.Style
	PanelTitle       lipgloss.Style
	StatusBar        lipgloss.Style
	StatusError      lipgloss.Style
	Help             lipgloss.Style
}

// New builds Styles from p.
func New(p *ColorPalette) Styles {
	if p == nil {
		p = DefaultPalette()
	}
	return Styles{
		Palette: *p,

		Tooltip: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Foreground(p.Text).
			Padding(0, 1),
		TooltipHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),
		TooltipBody: lipgloss.NewStyle().
			Foreground(p.Text),
		CloseMarker: lipgloss.NewStyle().
			Foreground(p.Muted),

		Button: lipgloss.NewStyle().
			Foreground(p.Text).
			Background(p.Surface).
			Padding(0, 1),
		ButtonPrimary: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Surface).
			Background(p.Primary).
			Padding(0, 1),
		ButtonStart: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Surface).
			Background(p.Secondary).
			Padding(0, 1),
		Point: lipgloss.NewStyle().
			Foreground(p.Muted),
		PointActive: lipgloss.NewStyle().
			Foreground(p.Primary),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		PanelHighlighted: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(p.Highlight).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text),
		StatusBar: lipgloss.NewStyle().
			Foreground(p.Muted),
		StatusError: lipgloss.NewStyle().
			Foreground(p.Warning),
		Help: lipgloss.NewStyle().
			Foreground(p.Muted),
	}
}

// ForTheme builds Styles for a built-in or registered custom theme.
func ForTheme(name string) Styles {
	return New(GetPalette(ThemeName(name)))
}
