package styles

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// ThemeName represents a named color theme.
type ThemeName string

// Available theme names.
const (
	ThemeDefault        ThemeName = "default"         // Purple/green dark theme
	ThemeDracula        ThemeName = "dracula"         // Dracula theme colors
	ThemeNord           ThemeName = "nord"            // Nord theme - cool blue-gray
	ThemeSolarizedDark  ThemeName = "solarized-dark"  // Solarized Dark by Ethan Schoonover
	ThemeSolarizedLight ThemeName = "solarized-light" // Solarized Light variant
)

// BuiltinThemes returns all built-in theme names.
func BuiltinThemes() []string {
	return []string{
		string(ThemeDefault),
		string(ThemeDracula),
		string(ThemeNord),
		string(ThemeSolarizedDark),
		string(ThemeSolarizedLight),
	}
}

// ValidThemes returns all valid theme names (built-in + custom).
func ValidThemes() []string {
	themes := BuiltinThemes()
	themes = append(themes, CustomThemeNames()...)
	return themes
}

// IsValidTheme checks if a theme name is valid (built-in or custom).
func IsValidTheme(name string) bool {
	if slices.Contains(BuiltinThemes(), name) {
		return true
	}
	return IsCustomTheme(name)
}

// ColorPalette defines the color scheme of the tour overlay.
type ColorPalette struct {
	// Primary accent (tooltip border, active point, primary button)
	Primary lipgloss.Color
	// Secondary accent (start button)
	Secondary lipgloss.Color
	// Warning color (hook failures in the status line)
	Warning lipgloss.Color
	// Error color
	Error lipgloss.Color
	// Muted color (inactive points, help text)
	Muted lipgloss.Color
	// Surface color (button backgrounds)
	Surface lipgloss.Color
	// Text color
	Text lipgloss.Color
	// Border color (host panels)
	Border lipgloss.Color
	// Highlight marks the host panel the active step targets
	Highlight lipgloss.Color
}

// Colors returns the palette as hex strings for a theme file.
func (p *ColorPalette) Colors() ThemeColors {
	return ThemeColors{
		Primary:   string(p.Primary),
		Secondary: string(p.Secondary),
		Warning:   string(p.Warning),
		Error:     string(p.Error),
		Muted:     string(p.Muted),
		Surface:   string(p.Surface),
		Text:      string(p.Text),
		Border:    string(p.Border),
		Highlight: string(p.Highlight),
	}
}

// DefaultPalette returns the default purple/green dark theme palette.
func DefaultPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#A78BFA"), // Purple (violet-400)
		Secondary: lipgloss.Color("#10B981"), // Green
		Warning:   lipgloss.Color("#F59E0B"), // Amber
		Error:     lipgloss.Color("#F87171"), // Red (red-400)
		Muted:     lipgloss.Color("#9CA3AF"), // Gray
		Surface:   lipgloss.Color("#1F2937"), // Dark surface
		Text:      lipgloss.Color("#F9FAFB"), // Light text
		Border:    lipgloss.Color("#6B7280"), // Gray-500
		Highlight: lipgloss.Color("#FBBF24"), // Yellow
	}
}

// DraculaPalette returns the Dracula theme palette.
func DraculaPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#BD93F9"),
		Secondary: lipgloss.Color("#50FA7B"),
		Warning:   lipgloss.Color("#F1FA8C"),
		Error:     lipgloss.Color("#FF5555"),
		Muted:     lipgloss.Color("#6272A4"),
		Surface:   lipgloss.Color("#282A36"),
		Text:      lipgloss.Color("#F8F8F2"),
		Border:    lipgloss.Color("#44475A"),
		Highlight: lipgloss.Color("#FFB86C"),
	}
}

// NordPalette returns the Nord theme palette.
func NordPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#88C0D0"), // Frost
		Secondary: lipgloss.Color("#A3BE8C"), // Aurora green
		Warning:   lipgloss.Color("#EBCB8B"), // Aurora yellow
		Error:     lipgloss.Color("#BF616A"), // Aurora red
		Muted:     lipgloss.Color("#4C566A"), // Polar night
		Surface:   lipgloss.Color("#2E3440"),
		Text:      lipgloss.Color("#ECEFF4"), // Snow storm
		Border:    lipgloss.Color("#434C5E"),
		Highlight: lipgloss.Color("#D08770"), // Aurora orange
	}
}

// SolarizedDarkPalette returns the Solarized Dark palette.
func SolarizedDarkPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#268BD2"), // Blue
		Secondary: lipgloss.Color("#859900"), // Green
		Warning:   lipgloss.Color("#B58900"), // Yellow
		Error:     lipgloss.Color("#DC322F"), // Red
		Muted:     lipgloss.Color("#586E75"), // Base01
		Surface:   lipgloss.Color("#073642"), // Base02
		Text:      lipgloss.Color("#EEE8D5"), // Base2
		Border:    lipgloss.Color("#586E75"),
		Highlight: lipgloss.Color("#CB4B16"), // Orange
	}
}

// SolarizedLightPalette returns the Solarized Light palette.
func SolarizedLightPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#268BD2"),
		Secondary: lipgloss.Color("#859900"),
		Warning:   lipgloss.Color("#B58900"),
		Error:     lipgloss.Color("#DC322F"),
		Muted:     lipgloss.Color("#93A1A1"), // Base1
		Surface:   lipgloss.Color("#EEE8D5"), // Base2
		Text:      lipgloss.Color("#073642"), // Base02
		Border:    lipgloss.Color("#93A1A1"),
		Highlight: lipgloss.Color("#CB4B16"),
	}
}

// GetPalette returns the palette for name. Unknown names fall back to the
// default palette.
func GetPalette(name ThemeName) *ColorPalette {
	switch name {
	case ThemeDracula:
		return DraculaPalette()
	case ThemeNord:
		return NordPalette()
	case ThemeSolarizedDark:
		return SolarizedDarkPalette()
	case ThemeSolarizedLight:
		return SolarizedLightPalette()
	case ThemeDefault:
		return DefaultPalette()
	}
	if custom := GetCustomTheme(name); custom != nil {
		return custom.ToPalette()
	}
	return DefaultPalette()
}
