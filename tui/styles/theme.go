package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme represents a color theme
type Theme struct {
	Name      string
	Primary   lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	TextDim   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
}

// FieldTheme is the default green palette
var FieldTheme = Theme{
	Name:      "field",
	Primary:   lipgloss.AdaptiveColor{Light: "#1B7F2A", Dark: "#5FD35F"},
	Accent:    lipgloss.AdaptiveColor{Light: "#FFFFF0", Dark: "#FFFFD7"},
	Text:      lipgloss.AdaptiveColor{Light: "#1E1E1E", Dark: "#F0F0F0"},
	TextDim:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#8A8A8A"},
	Border:    lipgloss.AdaptiveColor{Light: "#5F5F5F", Dark: "#EEEEEE"},
	Highlight: lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#008700"},
	Warning:   lipgloss.AdaptiveColor{Light: "#E65100", Dark: "#FFAF00"},
	Error:     lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF0000"},
}

// SoilTheme is a warmer palette for light terminals
var SoilTheme = Theme{
	Name:      "soil",
	Primary:   lipgloss.AdaptiveColor{Light: "#795548", Dark: "#D7A86E"},
	Accent:    lipgloss.AdaptiveColor{Light: "#FFF8E1", Dark: "#FFF8E1"},
	Text:      lipgloss.AdaptiveColor{Light: "#3E2723", Dark: "#EFEBE9"},
	TextDim:   lipgloss.AdaptiveColor{Light: "#8D6E63", Dark: "#A1887F"},
	Border:    lipgloss.AdaptiveColor{Light: "#8D6E63", Dark: "#BCAAA4"},
	Highlight: lipgloss.AdaptiveColor{Light: "#6D4C41", Dark: "#8D6E63"},
	Warning:   lipgloss.AdaptiveColor{Light: "#EF6C00", Dark: "#FFB74D"},
	Error:     lipgloss.AdaptiveColor{Light: "#B71C1C", Dark: "#EF5350"},
}

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	switch name {
	case "soil":
		return SoilTheme
	default:
		return FieldTheme
	}
}
