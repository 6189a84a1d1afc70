package console

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/phonebook/internal/command"
)

// chromeHeight is the number of lines used by the title, input and help bar.
const chromeHeight = 3

// exchange is one input line and its result.
type exchange struct {
	input  string
	output string
	failed bool
}

// Model is the Bubble Tea model for the interactive console: a scrolling
// transcript above a single-line input.
type Model struct {
	exec       Executor
	input      textinput.Model
	viewport   viewport.Model
	help       help.Model
	keys       keyMap
	transcript []exchange
	width      int
	height     int
	farewell   string
}

// NewModel creates a console Model. keywords become input completions.
func NewModel(exec Executor, keywords []string) Model {
	in := textinput.New()
	in.Prompt = Prompt
	in.Placeholder = "type a command, or help"
	in.ShowSuggestions = len(keywords) > 0
	in.SetSuggestions(keywords)
	in.Focus()

	return Model{
		exec:     exec,
		input:    in,
		viewport: viewport.New(0, 0),
		help:     help.New(),
		keys:     KeyMap(),
	}
}

// Farewell returns the closing line once the model has quit, or "".
func (m Model) Farewell() string {
	return m.farewell
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-len(Prompt)-1, 1)
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 1)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.farewell = command.Farewell
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit executes the current input line.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.Reset()
	if strings.TrimSpace(line) == "" {
		return m, nil
	}

	res := m.exec.Execute(line)
	m.transcript = append(m.transcript, exchange{input: line, output: res.Output, failed: res.Err != nil})
	m.refresh()
	if res.Exit {
		m.farewell = res.Output
		return m, tea.Quit
	}
	return m, nil
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (m *Model) refresh() {
	var sb strings.Builder
	for i, ex := range m.transcript {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(promptStyle.Render(Prompt + ex.input))
		sb.WriteByte('\n')
		sb.WriteString(renderOutput(ex.output, ex.failed, m.width))
	}
	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

// View renders the title, transcript, input line and help bar.
func (m Model) View() string {
	if m.farewell != "" {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Phone book"),
		m.viewport.View(),
		m.input.View(),
		m.help.View(m.keys),
	)
}
