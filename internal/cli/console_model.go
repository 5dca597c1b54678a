package cli

import (
	"context"
	"strings"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// maxConsoleLines bounds the transcript kept on screen.
const maxConsoleLines = 200

type replyMsg struct{ text string }

// deliveryMsg is a reminder delivered by the dispatcher while the console
// is open.
type deliveryMsg struct{ text string }

// replyFunc answers one message as the chat bot would.
type replyFunc func(ctx context.Context, ownerID, text string) string

// consoleModel is a local chat with the bot: each line typed is handled
// exactly like an inbound Telegram message from consoleOwner.
type consoleModel struct {
	input  textinput.Model
	reply  replyFunc
	owner  string
	lines  []string
	width  int
	height int

	quitting bool
}

func newConsoleModel(reply replyFunc, owner string) consoleModel {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = formatter.StyleHeader.Render("› ")
	ti.Placeholder = "напомни завтра в 7 утра встать"
	ti.CharLimit = 500

	return consoleModel{
		input: ti,
		reply: reply,
		owner: owner,
		lines: []string{formatter.Dim("Chat with the reminder bot. /help for commands, Ctrl+C to quit.")},
	}
}

func (m consoleModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = msg.Width - 3
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case replyMsg:
		if msg.text != "" {
			m.appendLine(formatter.StyleGreen.Render("бот:") + " " + msg.text)
		}
		return m, nil

	case deliveryMsg:
		m.appendLine(formatter.StyleYellow.Render(msg.text))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m consoleModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	switch text {
	case "":
		return m, nil
	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit
	}

	m.appendLine(formatter.StyleBold.Render("вы:") + " " + text)
	reply, owner := m.reply, m.owner
	return m, func() tea.Msg {
		return replyMsg{text: reply(context.Background(), owner, text)}
	}
}

func (m *consoleModel) appendLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxConsoleLines {
		m.lines = m.lines[len(m.lines)-maxConsoleLines:]
	}
}

func (m consoleModel) View() string {
	if m.quitting {
		return ""
	}
	lines := m.lines
	if m.height > 2 && len(lines) > m.height-2 {
		lines = lines[len(lines)-(m.height-2):]
	}
	return strings.Join(lines, "\n") + "\n\n" + m.input.View()
}
