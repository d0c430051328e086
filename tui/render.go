package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alumnx-ai-labs/agrigpt-frontend/history"
	"github.com/alumnx-ai-labs/agrigpt-frontend/session"
	"github.com/alumnx-ai-labs/agrigpt-frontend/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

const messageWrapWidth = 74

var theme = styles.NewStyles(styles.FieldTheme)

// SetTheme switches the palette used by the chat screen
func SetTheme(name string) {
	theme = styles.NewStyles(styles.GetTheme(name))
}

func newRenderer() *glamour.TermRenderer {
	// notty keeps answers readable on both light and dark terminals
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(messageWrapWidth),
	)
	return renderer
}

func renderUserMessage(msg history.Message) string {
	line := fmt.Sprintf("%s %s", theme.RenderRole("user"), theme.UserMessage.Render(msg.Content))
	if msg.AttachmentRef != "" {
		line += " " + theme.Attachment.Render(fmt.Sprintf("[image: %s]", filepath.Base(msg.AttachmentRef)))
	}
	return line
}

// renderAssistantMessage renders structured answers as markdown and
// everything else as wrapped plain text.
func renderAssistantMessage(renderer *glamour.TermRenderer, msg history.Message) string {
	prefix := theme.RenderRole("assistant")
	if msg.Kind == history.KindStructured && renderer != nil {
		rendered, err := renderer.Render(msg.Content)
		if err == nil {
			return fmt.Sprintf("%s\n%s", prefix, strings.Trim(rendered, "\n"))
		}
	}
	return fmt.Sprintf("%s\n%s", prefix, wordwrap.String(msg.Content, messageWrapWidth))
}

func renderMessage(renderer *glamour.TermRenderer, msg history.Message) string {
	if msg.Role == history.RoleUser {
		return renderUserMessage(msg)
	}
	return renderAssistantMessage(renderer, msg)
}

// renderSession renders every message of s for printing into scrollback
func renderSession(renderer *glamour.TermRenderer, s history.Session) string {
	parts := make([]string, 0, len(s.Messages)+1)
	parts = append(parts, theme.SessionTitle.Render("── "+s.Title+" ──"))
	for _, msg := range s.Messages {
		parts = append(parts, renderMessage(renderer, msg))
	}
	return strings.Join(parts, "\n\n")
}

func renderCommandMessage(content string) string {
	return theme.CommandMessage.Render(content)
}

func renderErrorMessage(content string) string {
	return theme.ErrorMessage.Render(fmt.Sprintf("❌ %s", content))
}

func printAboveBlock(content string) tea.Cmd {
	return tea.Printf("%s\n\n", content)
}

// truncateToWidth cuts s to at most max terminal cells
func truncateToWidth(s string, max int) string {
	if max <= 0 {
		return ""
	}
	return runewidth.Truncate(s, max, "…")
}

// PrintHeader prints the banner before the TUI starts
func PrintHeader(m *session.Manager) {
	user := "not signed in (/login <phone>)"
	if id, ok := m.Identity(); ok {
		user = id.Phone
		if id.Name != "" {
			user = fmt.Sprintf("%s (%s)", id.Name, id.Phone)
		}
	}
	lang, _ := session.LookupLanguage(m.Language())

	header1 := fmt.Sprintf("%s | User: %s | Language: %s",
		theme.UserMessage.Bold(true).Render("AgriGPT"),
		theme.SuggestName.Render(user),
		theme.SuggestName.Render(lang.Label))
	header2 := theme.CommandMessage.Render("Commands: /help, /new, /sessions, /image, /topk, /lang, /name, /exit")

	fmt.Println(header1)
	fmt.Println(header2)
	fmt.Println()
}
