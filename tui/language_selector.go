package tui

import (
	"github.com/alumnx-ai-labs/agrigpt-frontend/session"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// LanguageItem represents a response language in the list
type LanguageItem struct {
	Language session.Language
	Current  bool
}

func (i LanguageItem) Title() string { return i.Language.Label }
func (i LanguageItem) Description() string {
	if i.Current {
		return i.Language.Code + " (current)"
	}
	return i.Language.Code
}
func (i LanguageItem) FilterValue() string { return i.Language.Label + " " + i.Language.Code }

// LanguageSelector is a component for picking the response language
type LanguageSelector struct {
	list   list.Model
	width  int
	height int
}

type languageSelectedMsg struct {
	code string
}

type selectorCancelMsg struct{}

// NewLanguageSelector lists the supported languages with current selected
func NewLanguageSelector(current string) *LanguageSelector {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(theme.Theme.Primary).
		BorderLeftForeground(theme.Theme.Primary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(theme.Theme.Primary).
		BorderLeftForeground(theme.Theme.Primary)

	items := make([]list.Item, 0, len(session.Languages))
	selected := 0
	for i, lang := range session.Languages {
		items = append(items, LanguageItem{Language: lang, Current: lang.Code == current})
		if lang.Code == current {
			selected = i
		}
	}

	l := list.New(items, delegate, 80, 20)
	l.Title = "Response language"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)
	l.Styles.Title = theme.ListBar
	l.Select(selected)

	return &LanguageSelector{
		list:   l,
		width:  80,
		height: 20,
	}
}

func (s *LanguageSelector) Init() tea.Cmd {
	return nil
}

func (s *LanguageSelector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.SetSize(msg.Width, msg.Height)
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return s, func() tea.Msg { return selectorCancelMsg{} }
		case "enter":
			if i, ok := s.list.SelectedItem().(LanguageItem); ok {
				code := i.Language.Code
				return s, func() tea.Msg { return languageSelectedMsg{code: code} }
			}
		}
	}

	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

// SetSize resizes the list to the terminal
func (s *LanguageSelector) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.list.SetSize(width, height)
}

func (s *LanguageSelector) View() string {
	return s.list.View()
}
