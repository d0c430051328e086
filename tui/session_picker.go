package tui

import (
	"fmt"
	"strings"

	"github.com/alumnx-ai-labs/agrigpt-frontend/history"
	tea "github.com/charmbracelet/bubbletea"
)

// SessionPicker is a TUI component for selecting an archived conversation
type SessionPicker struct {
	sessions []history.SessionInfo
	activeID string
	selected int
	width    int
	height   int
}

// SelectedSessionMsg is sent when a session is selected
type SelectedSessionMsg struct {
	SessionID string
}

// DeleteSessionMsg is sent when the user deletes a session from the picker
type DeleteSessionMsg struct {
	SessionID string
}

type pickerClosedMsg struct{}

// NewSessionPicker creates a new session picker
func NewSessionPicker(sessions []history.SessionInfo, activeID string) *SessionPicker {
	return &SessionPicker{
		sessions: sessions,
		activeID: activeID,
		selected: 0,
		width:    80,
		height:   24,
	}
}

func (p *SessionPicker) Init() tea.Cmd {
	return nil
}

func (p *SessionPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if p.selected > 0 {
				p.selected--
			}
		case "down", "j":
			if p.selected < len(p.sessions)-1 {
				p.selected++
			}
		case "enter":
			if len(p.sessions) > 0 {
				id := p.sessions[p.selected].ID
				return p, func() tea.Msg { return SelectedSessionMsg{SessionID: id} }
			}
		case "d", "delete":
			if len(p.sessions) > 0 {
				id := p.sessions[p.selected].ID
				p.sessions = append(p.sessions[:p.selected:p.selected], p.sessions[p.selected+1:]...)
				if p.selected >= len(p.sessions) && p.selected > 0 {
					p.selected--
				}
				return p, func() tea.Msg { return DeleteSessionMsg{SessionID: id} }
			}
		case "esc", "q", "ctrl+c":
			return p, func() tea.Msg { return pickerClosedMsg{} }
		}
	}
	return p, nil
}

func (p *SessionPicker) View() string {
	if len(p.sessions) == 0 {
		return "\nNo saved conversations yet.\n\nPress [Esc] to go back to the chat."
	}

	titleStyle := theme.Title
	selectedStyle := theme.Selected
	normalStyle := theme.Normal
	helpStyle := theme.Help

	var b strings.Builder

	b.WriteString(titleStyle.Render("Select a conversation:"))
	b.WriteString("\n\n")

	// title, help and margins take six lines
	visibleHeight := p.height - 6
	if visibleHeight < 1 {
		visibleHeight = 1
	}
	startIdx := 0
	endIdx := len(p.sessions)

	if visibleHeight < len(p.sessions) {
		if p.selected > visibleHeight/2 {
			startIdx = p.selected - visibleHeight/2
			if startIdx+visibleHeight > len(p.sessions) {
				startIdx = len(p.sessions) - visibleHeight
			}
		}
		endIdx = startIdx + visibleHeight
		if endIdx > len(p.sessions) {
			endIdx = len(p.sessions)
		}
	}

	for i := startIdx; i < endIdx; i++ {
		session := p.sessions[i]
		cursor := "  "
		style := normalStyle

		if i == p.selected {
			cursor = "▸ "
			style = selectedStyle
		}

		marker := ""
		if session.ID == p.activeID {
			marker = " *"
		}

		line := fmt.Sprintf("%s%s - %s (%d messages)%s",
			cursor,
			session.LastActivity.Local().Format("Jan 02 15:04"),
			session.Title,
			session.Messages,
			marker)

		b.WriteString(style.Render(truncateToWidth(line, p.width-1)))
		b.WriteString("\n")
	}

	if startIdx > 0 || endIdx < len(p.sessions) {
		scrollInfo := fmt.Sprintf("\n[%d-%d of %d conversations]", startIdx+1, endIdx, len(p.sessions))
		b.WriteString(normalStyle.Render(scrollInfo))
	}

	help := "\n[↑/↓/j/k] Navigate  [Enter] Open  [d] Delete  [Esc/q] Back"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}
