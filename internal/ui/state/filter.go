package state

import (
	"strings"
	"unicode"
)

// SetFilter replaces the filter text and moves its cursor. Starting a filter
// remembers the row cursor; clearing it puts the cursor back.
func (l *Level) SetFilter(query string, cursor int) {
	wasFiltering := strings.TrimSpace(l.Filter) != ""
	filtering := strings.TrimSpace(query) != ""
	l.Filter = query
	l.FilterCursor = min(max(cursor, 0), len([]rune(query)))

	switch {
	case filtering && !wasFiltering:
		l.LastCursor = l.Cursor
		l.Cursor = 0
	case filtering:
		l.Cursor = 0
	}
	l.applyFilter()

	switch {
	case filtering:
		if idx := BestMatchIndex(l.Items, query); idx >= 0 {
			l.Cursor = idx
		}
	case wasFiltering:
		restore := l.LastCursor
		l.LastCursor = -1
		if restore >= 0 && restore < len(l.Items) {
			l.Cursor = restore
		} else if len(l.Items) > 0 {
			l.Cursor = len(l.Items) - 1
		}
	}
}

func (l *Level) applyFilter() {
	l.Items = FilterItems(l.Full, l.Filter)
	n := len(l.Items)
	switch {
	case n == 0:
		l.Cursor, l.ViewportOffset = 0, 0
		return
	case l.Cursor < 0 || l.Cursor >= n:
		l.Cursor = n - 1
	}
	if l.ViewportOffset > n-1 {
		l.ViewportOffset = 0
	}
}

// FilterCursorPos returns the rune offset of the filter cursor.
func (l *Level) FilterCursorPos() int {
	return min(max(l.FilterCursor, 0), len([]rune(l.Filter)))
}

func (l *Level) filterRunes() ([]rune, int) {
	return []rune(l.Filter), l.FilterCursorPos()
}

func (l *Level) moveFilterCursor(pos int) bool {
	if pos == l.FilterCursorPos() {
		return false
	}
	l.FilterCursor = pos
	return true
}

// InsertFilterText inserts text at the filter cursor.
func (l *Level) InsertFilterText(text string) bool {
	insert := []rune(text)
	if len(insert) == 0 {
		return false
	}
	runes, pos := l.filterRunes()
	updated := make([]rune, 0, len(runes)+len(insert))
	updated = append(updated, runes[:pos]...)
	updated = append(updated, insert...)
	updated = append(updated, runes[pos:]...)
	l.SetFilter(string(updated), pos+len(insert))
	return true
}

// DeleteFilterRuneBackward deletes the rune before the filter cursor.
func (l *Level) DeleteFilterRuneBackward() bool {
	runes, pos := l.filterRunes()
	if pos == 0 {
		return false
	}
	l.SetFilter(string(runes[:pos-1])+string(runes[pos:]), pos-1)
	return true
}

// DeleteFilterWordBackward deletes the word before the filter cursor along
// with any spaces after it.
func (l *Level) DeleteFilterWordBackward() bool {
	runes, pos := l.filterRunes()
	if pos == 0 {
		return false
	}
	start := wordStart(runes, pos)
	l.SetFilter(string(runes[:start])+string(runes[pos:]), start)
	return true
}

func (l *Level) MoveFilterCursorStart() bool {
	return l.moveFilterCursor(0)
}

func (l *Level) MoveFilterCursorEnd() bool {
	return l.moveFilterCursor(len([]rune(l.Filter)))
}

func (l *Level) MoveFilterCursorWordBackward() bool {
	runes, pos := l.filterRunes()
	return l.moveFilterCursor(wordStart(runes, pos))
}

func (l *Level) MoveFilterCursorWordForward() bool {
	runes, pos := l.filterRunes()
	return l.moveFilterCursor(wordEnd(runes, pos))
}

func (l *Level) MoveFilterCursorRuneBackward() bool {
	return l.moveFilterCursor(max(l.FilterCursorPos()-1, 0))
}

func (l *Level) MoveFilterCursorRuneForward() bool {
	return l.moveFilterCursor(min(l.FilterCursorPos()+1, len([]rune(l.Filter))))
}

// wordStart skips spaces then a word going left from pos.
func wordStart(runes []rune, pos int) int {
	i := pos
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	return i
}

// wordEnd skips a word then spaces going right from pos.
func wordEnd(runes []rune, pos int) int {
	i := pos
	for i < len(runes) && !unicode.IsSpace(runes[i]) {
		i++
	}
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return i
}
