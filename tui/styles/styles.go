package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds all the styles for the chat screen
type Styles struct {
	Theme Theme

	// Messages
	UserMessage     lipgloss.Style
	AssistantPrefix lipgloss.Style
	Attachment      lipgloss.Style
	CommandMessage  lipgloss.Style
	ErrorMessage    lipgloss.Style
	SessionTitle    lipgloss.Style

	// Live region
	Border    lipgloss.Style
	StatusBar lipgloss.Style
	ErrorLine lipgloss.Style
	Notice    lipgloss.Style
	Spinner   lipgloss.Style

	// Slash command suggestions
	SuggestName     lipgloss.Style
	SuggestDesc     lipgloss.Style
	SuggestSelected lipgloss.Style

	// Modals
	Title    lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Help     lipgloss.Style
	ListBar  lipgloss.Style
}

// NewStyles creates a new styles instance with the given theme
func NewStyles(theme Theme) *Styles {
	s := &Styles{
		Theme: theme,
	}

	s.UserMessage = lipgloss.NewStyle().
		Foreground(theme.Text)

	s.AssistantPrefix = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	s.Attachment = lipgloss.NewStyle().
		Foreground(theme.TextDim)

	s.CommandMessage = lipgloss.NewStyle().
		Foreground(theme.TextDim)

	s.ErrorMessage = lipgloss.NewStyle().
		Foreground(theme.Error)

	s.SessionTitle = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	s.Border = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)

	s.StatusBar = lipgloss.NewStyle().
		Foreground(theme.TextDim)

	s.ErrorLine = lipgloss.NewStyle().
		Foreground(theme.Error).
		Bold(true)

	s.Notice = lipgloss.NewStyle().
		Foreground(theme.Warning).
		Bold(true)

	s.Spinner = lipgloss.NewStyle().
		Foreground(theme.Primary)

	s.SuggestName = lipgloss.NewStyle().
		Foreground(theme.Primary)

	s.SuggestDesc = lipgloss.NewStyle().
		Foreground(theme.TextDim)

	s.SuggestSelected = lipgloss.NewStyle().
		Foreground(theme.Accent).
		Background(theme.Highlight)

	s.Title = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		MarginBottom(1)

	s.Selected = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	s.Normal = lipgloss.NewStyle().
		Foreground(theme.TextDim)

	s.Help = lipgloss.NewStyle().
		Foreground(theme.TextDim).
		MarginTop(1)

	s.ListBar = lipgloss.NewStyle().
		Background(theme.Highlight).
		Foreground(theme.Accent).
		Padding(0, 1)

	return s
}

// RenderRole returns a styled role prefix
func (s *Styles) RenderRole(role string) string {
	switch role {
	case "user":
		return "👤 " + s.UserMessage.Bold(true).Render("You:")
	case "assistant":
		return "🌱 " + s.AssistantPrefix.Render("AgriGPT:")
	default:
		return s.CommandMessage.Render(role + ":")
	}
}
