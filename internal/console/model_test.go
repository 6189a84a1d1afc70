package console

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
)

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func sized(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

func TestNewModel(t *testing.T) {
	d := newDispatcher()
	m := NewModel(d, d.Keywords())

	if m.input.Prompt != Prompt {
		t.Errorf("prompt = %q, want %q", m.input.Prompt, Prompt)
	}
	if !m.input.Focused() {
		t.Error("input should start focused")
	}
	if m.View() != "Initializing..." {
		t.Errorf("View() before sizing = %q", m.View())
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := sized(NewModel(newDispatcher(), nil))

	if m.viewport.Width != 80 || m.viewport.Height != 24-chromeHeight {
		t.Errorf("viewport = %dx%d, want 80x%d", m.viewport.Width, m.viewport.Height, 24-chromeHeight)
	}
	if !strings.Contains(m.View(), "Phone book") {
		t.Errorf("View() missing title:\n%s", m.View())
	}
}

func TestModel_SubmitRecordsExchange(t *testing.T) {
	m := sized(NewModel(newDispatcher(), nil))
	m.input.SetValue("hello")

	updated, cmd := m.Update(enter())
	m = updated.(Model)

	if cmd != nil {
		t.Error("hello should not quit")
	}
	if len(m.transcript) != 1 || m.transcript[0].output != "How can I help you?" {
		t.Errorf("transcript = %+v", m.transcript)
	}
	if m.input.Value() != "" {
		t.Errorf("input not reset: %q", m.input.Value())
	}
}

func TestModel_SubmitBlankIgnored(t *testing.T) {
	m := sized(NewModel(newDispatcher(), nil))
	m.input.SetValue("   ")

	updated, _ := m.Update(enter())

	if n := len(updated.(Model).transcript); n != 0 {
		t.Errorf("transcript has %d entries, want 0", n)
	}
}

func TestModel_FailedCommandMarked(t *testing.T) {
	m := sized(NewModel(newDispatcher(), nil))
	m.input.SetValue("phone nobody")

	updated, _ := m.Update(enter())
	m = updated.(Model)

	if len(m.transcript) != 1 || !m.transcript[0].failed {
		t.Errorf("transcript = %+v, want one failed exchange", m.transcript)
	}
}

func TestModel_QuitKey(t *testing.T) {
	m := sized(NewModel(newDispatcher(), nil))

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(Model)

	if cmd == nil {
		t.Fatal("ctrl+c should return a quit command")
	}
	if m.Farewell() != "Good bye!" {
		t.Errorf("Farewell() = %q", m.Farewell())
	}
	if m.View() != "" {
		t.Errorf("View() after quit = %q, want empty", m.View())
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m := sized(NewModel(newDispatcher(), nil))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyF1})
	m = updated.(Model)
	if !m.help.ShowAll {
		t.Error("f1 should expand help")
	}
	if !strings.Contains(m.View(), "scroll up") {
		t.Errorf("expanded help missing scroll bindings:\n%s", m.View())
	}
}

// TestModel_Teatest_Session drives a full session through teatest.
func TestModel_Teatest_Session(t *testing.T) {
	d := newDispatcher()
	tm := teatest.NewTestModel(t, NewModel(d, d.Keywords()), teatest.WithInitialTermSize(80, 24))

	tm.Type("add bill 0501234567")
	tm.Send(enter())
	tm.Type("search 0501")
	tm.Send(enter())
	tm.Type("exit")
	tm.Send(enter())

	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final := tm.FinalModel(t).(Model)
	if len(final.transcript) != 3 {
		t.Fatalf("transcript has %d entries, want 3: %+v", len(final.transcript), final.transcript)
	}
	if got := final.transcript[0].output; got != "New record for Bill with phone number 0501234567 added." {
		t.Errorf("add output = %q", got)
	}
	if got := final.transcript[1].output; !strings.HasPrefix(got, "Contact name: Bill,") {
		t.Errorf("search output = %q", got)
	}
	if final.Farewell() != "Good bye!" {
		t.Errorf("Farewell() = %q", final.Farewell())
	}
}
