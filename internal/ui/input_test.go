package ui

import (
	"strings"
	"testing"

	uistate "github.com/atomicstack/qmf-explorer/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

func TestHandleTextInputAppendsRunes(t *testing.T) {
	m := NewModel(Config{}, &recordingQueue{}, nil)
	current := m.currentLevel()
	current.UpdateItems([]uistate.Item{{ID: "one"}})
	handled, _ := m.handleTextInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc")})
	if !handled {
		t.Fatalf("expected key press to be handled")
	}
	if current.Filter != "abc" {
		t.Fatalf("expected filter 'abc', got %q", current.Filter)
	}
	if pos := current.FilterCursorPos(); pos != 3 {
		t.Fatalf("expected cursor at end, got %d", pos)
	}
}

func TestHandleTextInputCursorMovement(t *testing.T) {
	m := NewModel(Config{}, &recordingQueue{}, nil)
	current := m.currentLevel()
	current.UpdateItems([]uistate.Item{{ID: "one"}})
	current.SetFilter("abc", 3)

	if handled, _ := m.handleTextInput(tea.KeyMsg{Type: tea.KeyLeft}); !handled {
		t.Fatalf("expected left arrow to be handled")
	}
	if pos := current.FilterCursorPos(); pos != 2 {
		t.Fatalf("expected cursor at 2 after left, got %d", pos)
	}

	if handled, _ := m.handleTextInput(tea.KeyMsg{Type: tea.KeyRight}); !handled {
		t.Fatalf("expected right arrow to be handled")
	}
	if pos := current.FilterCursorPos(); pos != 3 {
		t.Fatalf("expected cursor back at 3, got %d", pos)
	}
}

func TestHandleTextInputWordEditing(t *testing.T) {
	m := NewModel(Config{}, &recordingQueue{}, nil)
	current := m.currentLevel()
	current.SetFilter("queue depth", len("queue depth"))

	if handled, _ := m.handleTextInput(tea.KeyMsg{Type: tea.KeyCtrlW}); !handled {
		t.Fatal("expected ctrl+w to delete a word")
	}
	if current.Filter != "queue " {
		t.Fatalf("expected trailing word removed, got %q", current.Filter)
	}
	if handled, _ := m.handleTextInput(tea.KeyMsg{Type: tea.KeyCtrlA}); !handled {
		t.Fatal("expected ctrl+a to move to start")
	}
	if current.FilterCursorPos() != 0 {
		t.Fatalf("expected cursor at start, got %d", current.FilterCursorPos())
	}
	if handled, _ := m.handleTextInput(tea.KeyMsg{Type: tea.KeyCtrlU}); !handled {
		t.Fatal("expected ctrl+u to clear the filter")
	}
	if current.Filter != "" {
		t.Fatalf("expected filter cleared, got %q", current.Filter)
	}
	if handled, _ := m.handleTextInput(tea.KeyMsg{Type: tea.KeyCtrlU}); handled {
		t.Fatal("expected ctrl+u on an empty filter to fall through")
	}
}

func TestTypingFiltersActiveTabOnly(t *testing.T) {
	h, _ := newTestHarness(t, Config{})
	m := h.Model()
	m.tabs[tabAgents].UpdateItems([]uistate.Item{{ID: "a", Label: "alpha"}, {ID: "b", Label: "beta"}})
	h.Type("bet")
	if got := len(m.tabs[tabAgents].Items); got != 1 {
		t.Fatalf("expected one agent match, got %d", got)
	}
	h.Key(tea.KeyTab)
	if m.currentLevel().Filter != "" {
		t.Fatalf("expected objects tab filter untouched, got %q", m.currentLevel().Filter)
	}
	h.Key(tea.KeyShiftTab)
	if m.currentLevel().Filter != "bet" {
		t.Fatalf("expected agents filter kept across tab switches, got %q", m.currentLevel().Filter)
	}
}

func TestFilterPromptPlaceholder(t *testing.T) {
	m := NewModel(Config{}, &recordingQueue{}, nil)
	current := m.currentLevel()
	current.SetFilter("", 0)
	prompt := m.filterPrompt()
	if prompt == "" {
		t.Fatalf("expected non-empty prompt")
	}
	if !strings.Contains(prompt, "type to search") {
		t.Fatalf("expected placeholder in prompt, got %q", prompt)
	}
}
