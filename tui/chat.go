package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alumnx-ai-labs/agrigpt-frontend/gateway"
	"github.com/alumnx-ai-labs/agrigpt-frontend/session"
	"github.com/alumnx-ai-labs/agrigpt-frontend/store"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// ChatTUI is the interactive chat screen. Messages are printed into the
// terminal's scrollback; the live region holds the spinner, status line,
// error line and the input box.
type ChatTUI struct {
	ctx      context.Context
	manager  *session.Manager
	textarea textarea.Model
	renderer *glamour.TermRenderer
	spinner  spinner.Model
	width    int
	height   int

	borderStyle lipgloss.Style

	// Image staged for the next send
	attachment *gateway.Attachment

	// In-app modals
	showPicker    bool
	picker        *SessionPicker
	showLanguages bool
	languages     *LanguageSelector

	// Slash command autocomplete
	suggestVisible bool
	suggestItems   []commandEntry
	suggestIndex   int
	commands       []commandEntry

	transientNotice   string
	transientNoticeID int
}

// commandEntry represents a slash command and its short description
type commandEntry struct {
	name string
	desc string
}

type replyMsg struct {
	dispatch *session.Dispatch
	outcome  session.Outcome
}

type clearTransientNoticeMsg struct {
	id int
}

// NewChatTUI creates the chat screen for manager
func NewChatTUI(ctx context.Context, manager *session.Manager) ChatTUI {
	ta := textarea.New()
	ta.Placeholder = "Ask about your crop..."
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(1)
	ta.Focus()

	transparentStyle := lipgloss.NewStyle().
		UnsetBackground().
		UnsetBorderBackground().
		UnsetBorderStyle()
	ta.FocusedStyle.Base = transparentStyle
	ta.FocusedStyle.Text = transparentStyle
	ta.FocusedStyle.CursorLine = transparentStyle
	ta.BlurredStyle.Base = transparentStyle
	ta.BlurredStyle.Text = transparentStyle
	ta.BlurredStyle.CursorLine = transparentStyle

	// Enter sends
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.SetWidth(74)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.Spinner

	return ChatTUI{
		ctx:      ctx,
		manager:  manager,
		textarea: ta,
		renderer: newRenderer(),
		spinner:  s,
		width:    80,
		borderStyle: theme.Border,
		commands: []commandEntry{
			{name: "/help", desc: "Show this help"},
			{name: "/new", desc: "Start a new chat"},
			{name: "/sessions", desc: "Open a saved chat"},
			{name: "/delete", desc: "Delete the current chat"},
			{name: "/image", desc: "Attach an image to the next question"},
			{name: "/clearimage", desc: "Remove the attached image"},
			{name: "/topk", desc: "Set how many results image queries use (1-5)"},
			{name: "/lang", desc: "Change the response language"},
			{name: "/name", desc: "Set your display name"},
			{name: "/login", desc: "Sign in with a phone number"},
			{name: "/logout", desc: "Sign out"},
			{name: "/exit", desc: "Save and quit"},
		},
	}
}

// Run starts the chat screen and blocks until the user quits
func Run(ctx context.Context, manager *session.Manager) error {
	PrintHeader(manager)
	if active := manager.Active(); len(active.Messages) > 0 {
		fmt.Println(renderSession(newRenderer(), active))
		fmt.Println()
	}

	p := tea.NewProgram(NewChatTUI(ctx, manager))
	_, err := p.Run()
	return err
}

func (m ChatTUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ChatTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.manager.Pending() {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Modals get every message except the ones they send back to us
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.resize(size.Width, size.Height)
	}
	if m.showPicker && m.picker != nil {
		switch msg.(type) {
		case SelectedSessionMsg, DeleteSessionMsg, pickerClosedMsg, replyMsg:
		default:
			_, pcmd := m.picker.Update(msg)
			return m, tea.Batch(append(cmds, pcmd)...)
		}
	}
	if m.showLanguages && m.languages != nil {
		switch msg.(type) {
		case languageSelectedMsg, selectorCancelMsg, replyMsg:
		default:
			_, lcmd := m.languages.Update(msg)
			return m, tea.Batch(append(cmds, lcmd)...)
		}
	}

	switch msg := msg.(type) {
	case clearTransientNoticeMsg:
		if msg.id == m.transientNoticeID {
			m.transientNotice = ""
		}
		return m, nil

	case tea.WindowSizeMsg:
		return m, nil

	case replyMsg:
		return m, tea.Batch(append(cmds, m.handleReply(msg))...)

	case SelectedSessionMsg:
		m.closeModals()
		if !m.manager.LoadSession(m.ctx, msg.SessionID) {
			return m, tea.ExitAltScreen
		}
		m.attachment = nil
		m.textarea.Reset()
		return m, tea.Sequence(tea.ExitAltScreen, printAboveBlock(renderSession(m.renderer, m.manager.Active())))

	case DeleteSessionMsg:
		wasActive := msg.SessionID == m.manager.Active().ID
		if err := m.manager.DeleteSession(m.ctx, msg.SessionID); err != nil {
			return m, m.showTransientNotice(fmt.Sprintf("Failed to delete: %v", err))
		}
		if wasActive {
			m.attachment = nil
		}
		return m, nil

	case pickerClosedMsg, selectorCancelMsg:
		m.closeModals()
		return m, tea.ExitAltScreen

	case languageSelectedMsg:
		m.closeModals()
		return m, tea.Sequence(tea.ExitAltScreen, m.setLanguage(msg.code))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, m.quit()

		case tea.KeyEsc:
			if m.manager.LastError() != nil {
				m.manager.ClearError()
			}
			if m.suggestVisible {
				m.hideSuggestions()
			}
			return m, nil

		case tea.KeyCtrlN:
			return m, m.newChat()

		case tea.KeyCtrlO:
			return m, m.openPicker()

		case tea.KeyCtrlL:
			return m, m.openLanguages()

		case tea.KeyUp:
			if m.suggestVisible && len(m.suggestItems) > 0 {
				if m.suggestIndex > 0 {
					m.suggestIndex--
				} else {
					m.suggestIndex = len(m.suggestItems) - 1
				}
				return m, nil
			}

		case tea.KeyDown:
			if m.suggestVisible && len(m.suggestItems) > 0 {
				m.suggestIndex = (m.suggestIndex + 1) % len(m.suggestItems)
				return m, nil
			}

		case tea.KeyTab:
			if m.suggestVisible && len(m.suggestItems) > 0 {
				selected := m.suggestItems[m.suggestIndex].name
				current := strings.TrimLeft(m.textarea.Value(), " ")
				if spaceIdx := strings.IndexAny(current, " \t\n"); spaceIdx == -1 {
					m.textarea.SetValue(selected + " ")
				} else {
					m.textarea.SetValue(selected + current[spaceIdx:])
				}
				m.textarea.CursorEnd()
				m.hideSuggestions()
				return m, nil
			}

		case tea.KeyEnter:
			if m.manager.Pending() {
				return m, tea.Batch(cmds...)
			}
			value := m.textarea.Value()
			trimmed := strings.TrimSpace(value)

			if strings.HasPrefix(trimmed, "/") {
				if m.suggestVisible && len(m.suggestItems) > 0 && !strings.Contains(trimmed, " ") {
					trimmed = m.suggestItems[m.suggestIndex].name
				}
				m.textarea.Reset()
				m.textarea.SetHeight(1)
				m.hideSuggestions()
				return m, m.handleCommand(trimmed)
			}

			cmds = append(cmds, m.send(value))
			return m, tea.Batch(cmds...)
		}
	}

	oldValue := m.textarea.Value()
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	if oldValue != m.textarea.Value() {
		m.adjustTextareaHeight()
		m.updateSuggestions()
	}

	return m, tea.Batch(cmds...)
}

func (m ChatTUI) View() string {
	if m.showPicker && m.picker != nil {
		return m.picker.View()
	}
	if m.showLanguages && m.languages != nil {
		return m.languages.View()
	}

	var b strings.Builder

	boxWidth := m.width - 2
	if boxWidth < 1 {
		boxWidth = 1
	}

	if m.manager.Pending() {
		b.WriteString(fmt.Sprintf("%s Thinking...\n\n", m.spinner.View()))
	} else {
		b.WriteString("\n")
	}

	b.WriteString(theme.StatusBar.Render(truncateToWidth(m.statusLine(), boxWidth-1)))
	b.WriteString("\n")

	if lastErr := m.manager.LastError(); lastErr != nil {
		line := fmt.Sprintf("❌ %s  (esc to dismiss)", lastErr.Detail)
		b.WriteString(theme.ErrorLine.Render(truncateToWidth(line, boxWidth-1)))
		b.WriteString("\n")
	}

	if m.transientNotice != "" {
		b.WriteString(theme.Notice.Render(truncateToWidth(m.transientNotice, boxWidth-1)))
		b.WriteString("\n")
	}

	styledInput := m.borderStyle.
		PaddingLeft(1).
		PaddingRight(1).
		Render("> " + m.textarea.View())
	b.WriteString(styledInput)
	b.WriteString("\n")

	if m.suggestVisible && len(m.suggestItems) > 0 {
		nameStyle := theme.SuggestName
		descStyle := theme.SuggestDesc
		selStyle := theme.SuggestSelected
		for i, item := range m.suggestItems {
			if i == 8 {
				b.WriteString(descStyle.Render(" … more"))
				b.WriteString("\n")
				break
			}
			line := fmt.Sprintf(" %s  %s", nameStyle.Render(item.name), descStyle.Render(item.desc))
			if i == m.suggestIndex {
				line = selStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m ChatTUI) statusLine() string {
	active := m.manager.Active()
	lang, _ := session.LookupLanguage(m.manager.Language())
	parts := []string{
		fmt.Sprintf("Chat: %s", active.Title),
		fmt.Sprintf("Language: %s", lang.Label),
		fmt.Sprintf("Top-K: %d", m.manager.ResultLimit()),
	}
	if id, ok := m.manager.Identity(); ok {
		name := id.Phone
		if id.Name != "" {
			name = id.Name
		}
		parts = append(parts, fmt.Sprintf("User: %s", name))
	} else {
		parts = append(parts, "Not signed in")
	}
	if m.attachment != nil {
		parts = append(parts, fmt.Sprintf("Image: %s", m.attachment.Name))
	}
	return strings.Join(parts, " | ")
}

// send hands the input to the manager and starts the remote call
func (m *ChatTUI) send(value string) tea.Cmd {
	m.manager.SetDraftQuery(value)

	var (
		d   *session.Dispatch
		err error
	)
	if m.attachment != nil {
		d, err = m.manager.PrepareImage(*m.attachment)
	} else {
		d, err = m.manager.PrepareText()
	}
	if err != nil {
		// validation failures are shown from LastError
		return nil
	}

	active := m.manager.Active()
	user := active.Messages[len(active.Messages)-1]

	m.textarea.Reset()
	m.textarea.SetHeight(1)
	m.hideSuggestions()

	return tea.Batch(
		printAboveBlock(renderUserMessage(user)),
		runDispatch(m.ctx, d),
		m.spinner.Tick,
	)
}

func runDispatch(ctx context.Context, d *session.Dispatch) tea.Cmd {
	return func() tea.Msg {
		return replyMsg{dispatch: d, outcome: d.Run(ctx)}
	}
}

func (m *ChatTUI) handleReply(msg replyMsg) tea.Cmd {
	m.manager.Complete(m.ctx, msg.dispatch, msg.outcome)
	active := m.manager.Active()
	elsewhere := msg.dispatch.SessionID() != active.ID

	if msg.outcome.Err != nil {
		if elsewhere {
			return m.showTransientNotice("A question in another chat failed: " + msg.outcome.Err.Detail)
		}
		// the draft is kept so the question can be resent
		if m.textarea.Value() == "" {
			m.textarea.SetValue(m.manager.Draft())
			m.adjustTextareaHeight()
		}
		return nil
	}

	if elsewhere {
		return m.showTransientNotice("A reply arrived for another chat; open it with /sessions")
	}
	if msg.dispatch.IsImage() {
		m.attachment = nil
	}
	reply := active.Messages[len(active.Messages)-1]
	return printAboveBlock(renderAssistantMessage(m.renderer, reply))
}

func (m *ChatTUI) handleCommand(input string) tea.Cmd {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/exit", "/quit":
		return m.quit()

	case "/new":
		return m.newChat()

	case "/sessions":
		return m.openPicker()

	case "/delete":
		id := m.manager.Active().ID
		if err := m.manager.DeleteSession(m.ctx, id); err != nil {
			return printAboveBlock(renderErrorMessage(fmt.Sprintf("Failed to delete chat: %v", err)))
		}
		m.attachment = nil
		return printAboveBlock(renderCommandMessage("Deleted this chat"))

	case "/image":
		if arg == "" {
			return printAboveBlock(renderCommandMessage("Usage: /image <path>"))
		}
		att, err := gateway.LoadImage(expandPath(arg))
		if err != nil {
			return printAboveBlock(renderErrorMessage(err.Error()))
		}
		m.attachment = &att
		return printAboveBlock(renderCommandMessage(fmt.Sprintf("Attached %s (%s); type your question and press Enter", att.Name, att.ContentType)))

	case "/clearimage":
		m.attachment = nil
		return printAboveBlock(renderCommandMessage("Removed the attached image"))

	case "/topk":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return printAboveBlock(renderCommandMessage(fmt.Sprintf("Usage: /topk <%d-%d>", gateway.MinResultLimit, gateway.MaxResultLimit)))
		}
		m.manager.SetResultLimit(n)
		return printAboveBlock(renderCommandMessage(fmt.Sprintf("Image queries will use top %d results", m.manager.ResultLimit())))

	case "/lang":
		if arg == "" {
			return m.openLanguages()
		}
		return m.setLanguage(strings.ToLower(arg))

	case "/name":
		if err := m.manager.SetDisplayName(m.ctx, arg); err != nil {
			return printAboveBlock(renderErrorMessage(err.Error()))
		}
		return printAboveBlock(renderCommandMessage("Display name updated"))

	case "/login":
		phone, displayName, _ := strings.Cut(arg, " ")
		if err := m.manager.Login(m.ctx, store.Identity{Phone: phone, Name: displayName}); err != nil {
			return printAboveBlock(renderErrorMessage(err.Error()))
		}
		m.attachment = nil
		return printAboveBlock(renderCommandMessage(fmt.Sprintf("Signed in as %s", phone)))

	case "/logout":
		if err := m.manager.Logout(m.ctx); err != nil {
			return printAboveBlock(renderErrorMessage(err.Error()))
		}
		m.attachment = nil
		return printAboveBlock(renderCommandMessage("Signed out"))

	case "/help":
		return printAboveBlock(renderCommandMessage(helpText))

	default:
		return printAboveBlock(renderCommandMessage(fmt.Sprintf("Unknown command: %s", name)))
	}
}

const helpText = `Commands:
  /help          - Show this help
  /new           - Start a new chat
  /sessions      - Open a saved chat
  /delete        - Delete the current chat
  /image <path>  - Attach an image to the next question
  /clearimage    - Remove the attached image
  /topk <1-5>    - Results used for image questions
  /lang [code]   - Response language (en, hi, te)
  /name <name>   - Set your display name
  /login <phone> [name] - Sign in
  /logout        - Sign out
  /exit          - Save and quit

Keyboard shortcuts:
  Enter  - Send
  Ctrl+N - New chat
  Ctrl+O - Saved chats
  Ctrl+L - Response language
  Esc    - Dismiss error
  Ctrl+C - Save and quit`

func (m *ChatTUI) quit() tea.Cmd {
	if err := m.manager.Archive(m.ctx); err != nil {
		return tea.Sequence(printAboveBlock(renderErrorMessage(fmt.Sprintf("Failed to save chat: %v", err))), tea.Quit)
	}
	return tea.Quit
}

func (m *ChatTUI) newChat() tea.Cmd {
	err := m.manager.StartNewSession(m.ctx)
	m.attachment = nil
	m.textarea.Reset()
	m.textarea.SetHeight(1)
	if err != nil {
		return printAboveBlock(renderErrorMessage(fmt.Sprintf("Previous chat was not saved: %v", err)))
	}
	return printAboveBlock(renderCommandMessage("Started a new chat"))
}

func (m *ChatTUI) openPicker() tea.Cmd {
	m.picker = NewSessionPicker(m.manager.History(), m.manager.Active().ID)
	m.picker.width = m.width
	m.picker.height = m.height
	m.showPicker = true
	m.textarea.Blur()
	return tea.EnterAltScreen
}

func (m *ChatTUI) openLanguages() tea.Cmd {
	m.languages = NewLanguageSelector(m.manager.Language())
	if m.height > 0 {
		m.languages.SetSize(m.width, m.height)
	}
	m.showLanguages = true
	m.textarea.Blur()
	return tea.EnterAltScreen
}

func (m *ChatTUI) closeModals() {
	m.showPicker = false
	m.picker = nil
	m.showLanguages = false
	m.languages = nil
	m.textarea.Focus()
}

func (m *ChatTUI) setLanguage(code string) tea.Cmd {
	if err := m.manager.SetLanguage(m.ctx, code); err != nil {
		return printAboveBlock(renderErrorMessage(err.Error()))
	}
	lang, _ := session.LookupLanguage(code)
	return printAboveBlock(renderCommandMessage(fmt.Sprintf("Answers will be in %s", lang.Label)))
}

func (m *ChatTUI) resize(width, height int) {
	m.width = width
	m.height = height

	// border, padding and prompt
	textareaWidth := m.width - 6
	if textareaWidth < 1 {
		textareaWidth = 1
	}
	m.textarea.SetWidth(textareaWidth)
	m.borderStyle = m.borderStyle.Width(m.width - 2)
	m.adjustTextareaHeight()
}

func (m *ChatTUI) showTransientNotice(text string) tea.Cmd {
	m.transientNotice = strings.TrimSpace(text)
	m.transientNoticeID++
	currentID := m.transientNoticeID

	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return clearTransientNoticeMsg{id: currentID}
	})
}

// adjustTextareaHeight grows the input with its content, up to 10 lines
func (m *ChatTUI) adjustTextareaHeight() {
	content := m.textarea.Value()
	if content == "" {
		m.textarea.SetHeight(1)
		return
	}

	lines := 1
	currentLineLength := 0
	textareaWidth := m.width - 8
	if textareaWidth < 1 {
		textareaWidth = 1
	}

	for _, char := range content {
		if char == '\n' {
			lines++
			currentLineLength = 0
		} else {
			currentLineLength++
			if currentLineLength >= textareaWidth {
				lines++
				currentLineLength = 0
			}
		}
	}

	if lines > 10 {
		lines = 10
	}
	m.textarea.SetHeight(lines)
}

func (m *ChatTUI) updateSuggestions() {
	cur := strings.TrimSpace(m.textarea.Value())
	if !strings.HasPrefix(cur, "/") || strings.ContainsAny(cur, " \t\n") {
		m.hideSuggestions()
		return
	}

	lower := strings.ToLower(cur)
	var items []commandEntry
	for _, c := range m.commands {
		if cur == "/" || strings.HasPrefix(c.name, lower) {
			items = append(items, c)
		}
	}
	m.suggestItems = items
	m.suggestVisible = len(items) > 0
	if m.suggestIndex >= len(items) {
		m.suggestIndex = 0
	}
}

func (m *ChatTUI) hideSuggestions() {
	m.suggestVisible = false
	m.suggestItems = nil
	m.suggestIndex = 0
}

func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}
