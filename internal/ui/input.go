package ui

import (
	"unicode"

	"github.com/atomicstack/qmf-explorer/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	filterPromptText      = "» "
	filterPlaceholderText = "(type to search)"
)

// filterEdit is one editing action on the active tab's filter line. Text
// edits change which rows are shown; the others only move the caret.
type filterEdit struct {
	apply func(*level) bool
	text  bool
	trace func(*level)
}

func caretEdit(apply func(*level) bool) filterEdit {
	return filterEdit{
		apply: apply,
		trace: func(l *level) { events.Filter.Cursor(l.ID, l.FilterCursor) },
	}
}

var (
	clearFilterEdit = filterEdit{
		apply: func(l *level) bool {
			if l.Filter == "" {
				return false
			}
			l.SetFilter("", 0)
			return true
		},
		text:  true,
		trace: func(l *level) { events.Filter.Cleared(l.ID) },
	}
	wordBackspaceEdit = filterEdit{
		apply: (*level).DeleteFilterWordBackward,
		text:  true,
		trace: func(l *level) { events.Filter.WordBackspace(l.ID, l.Filter) },
	}
	backspaceEdit = filterEdit{
		apply: (*level).DeleteFilterRuneBackward,
		text:  true,
		trace: func(l *level) { events.Filter.Backspace(l.ID, l.Filter) },
	}
	wordLeftEdit  = caretEdit((*level).MoveFilterCursorWordBackward)
	wordRightEdit = caretEdit((*level).MoveFilterCursorWordForward)
)

// filterKeys maps named keys to filter edits. home and end are absent: they
// move the row cursor.
var filterKeys = map[string]filterEdit{
	"ctrl+u":        clearFilterEdit,
	"ctrl+w":        wordBackspaceEdit,
	"alt+backspace": wordBackspaceEdit,
	"backspace":     backspaceEdit,
	"ctrl+h":        backspaceEdit,
	"ctrl+a":        caretEdit((*level).MoveFilterCursorStart),
	"ctrl+e":        caretEdit((*level).MoveFilterCursorEnd),
	"left":          caretEdit((*level).MoveFilterCursorRuneBackward),
	"right":         caretEdit((*level).MoveFilterCursorRuneForward),
	"alt+left":      wordLeftEdit,
	"ctrl+left":     wordLeftEdit,
	"alt+b":         wordLeftEdit,
	"alt+right":     wordRightEdit,
	"ctrl+right":    wordRightEdit,
	"alt+f":         wordRightEdit,
}

func insertEdit(text string) filterEdit {
	return filterEdit{
		apply: func(l *level) bool { return l.InsertFilterText(text) },
		text:  true,
		trace: func(l *level) { events.Filter.Append(l.ID, l.Filter) },
	}
}

func (m *Model) updateFilterCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.filterCursor, cmd = m.filterCursor.Update(msg)
	return cmd
}

// handleTextInput applies msg to the active filter. It reports false when
// the key is not a filter edit or the edit changed nothing, so the caller can
// treat it as navigation.
func (m *Model) handleTextInput(msg tea.KeyMsg) (bool, tea.Cmd) {
	current := m.currentLevel()
	if current == nil {
		return false, nil
	}
	if msg.Type != tea.KeyRunes || msg.Alt {
		if edit, ok := filterKeys[msg.String()]; ok {
			return m.applyFilterEdit(current, edit), nil
		}
	}
	if text, ok := typedText(msg); ok {
		return m.applyFilterEdit(current, insertEdit(text)), nil
	}
	return false, nil
}

// typedText returns the text a key press types. Pasted runes may include
// spaces; control characters are never typed.
func typedText(msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeySpace:
		return " ", true
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return "", false
		}
		for _, r := range msg.Runes {
			if unicode.IsControl(r) {
				return "", false
			}
		}
		return string(msg.Runes), true
	}
	return "", false
}

func (m *Model) applyFilterEdit(current *level, edit filterEdit) bool {
	before := current.FilterCursorPos()
	if !edit.apply(current) {
		return false
	}
	if before != current.FilterCursorPos() {
		m.filterCursorDirty = true
	}
	if edit.text {
		m.forceClearInfo()
		m.errMsg = ""
		m.syncViewport(current)
	}
	edit.trace(current)
	return true
}

// filterPrompt renders the filter line with the caret drawn over the rune it
// sits on. An empty filter shows a dimmed placeholder under the caret.
func (m *Model) filterPrompt() string {
	prompt := styles.FilterPrompt.Render(filterPromptText)
	current := m.currentLevel()
	if current == nil {
		return prompt
	}
	m.filterCursor.Style = *styles.Cursor
	if current.Filter == "" {
		m.filterCursor.TextStyle = *styles.FilterPlaceholder
		runes := []rune(filterPlaceholderText)
		return prompt + m.renderFilterCursor(string(runes[0])) + renderStyled(styles.FilterPlaceholder, string(runes[1:]))
	}
	m.filterCursor.TextStyle = *styles.Filter
	runes := []rune(current.Filter)
	pos := current.FilterCursorPos()
	under, after := " ", ""
	if pos < len(runes) {
		under, after = string(runes[pos]), string(runes[pos+1:])
	}
	return prompt +
		renderStyled(styles.Filter, string(runes[:pos])) +
		m.renderFilterCursor(under) +
		renderStyled(styles.Filter, after)
}

// renderFilterCursor draws char as the caret. During the off phase of a blink
// the char is drawn as plain text.
func (m *Model) renderFilterCursor(char string) string {
	m.filterCursor.SetChar(char)
	base := m.filterCursor.TextStyle.Inline(true)
	if m.filterCursor.Blink {
		return base.Render(char)
	}
	return base.Inherit(styles.Cursor.Inline(true)).Blink(false).Render(char)
}
