package state

// Cursor motion over the filtered rows. Each method reports whether the
// cursor moved.

// MoveCursor shifts the cursor by delta rows. With wrap set, moving past
// either end continues from the other end; otherwise the cursor stops at the
// first or last row.
func (l *Level) MoveCursor(delta int, wrap bool) bool {
	n := len(l.Items)
	if n == 0 {
		l.Cursor = 0
		return false
	}
	old := l.Cursor
	next := l.clampedCursor() + delta
	switch {
	case wrap:
		next = ((next % n) + n) % n
	case next < 0:
		next = 0
	case next >= n:
		next = n - 1
	}
	l.Cursor = next
	return l.Cursor != old
}

// MoveCursorPage moves the cursor by whole pages; negative pages move up.
// It never wraps.
func (l *Level) MoveCursorPage(pages, maxVisible int) bool {
	return l.MoveCursor(pages*l.pageSize(maxVisible), false)
}

// MoveCursorHome selects the first row.
func (l *Level) MoveCursorHome() bool {
	return l.moveCursorTo(0)
}

// MoveCursorEnd selects the last row.
func (l *Level) MoveCursorEnd() bool {
	return l.moveCursorTo(len(l.Items) - 1)
}

// AtTail reports whether the cursor sits on the last row.
func (l *Level) AtTail() bool {
	return len(l.Items) > 0 && l.Cursor == len(l.Items)-1
}

func (l *Level) moveCursorTo(i int) bool {
	if len(l.Items) == 0 {
		l.Cursor = 0
		return false
	}
	old := l.Cursor
	l.Cursor = i
	return old != l.Cursor
}

func (l *Level) clampedCursor() int {
	return min(max(l.Cursor, 0), len(l.Items)-1)
}

func (l *Level) pageSize(maxVisible int) int {
	n := len(l.Items)
	if maxVisible <= 0 || maxVisible > n {
		return max(n, 1)
	}
	return maxVisible
}

// EnsureCursorVisible scrolls the viewport the least amount that keeps the
// cursor row on screen.
func (l *Level) EnsureCursorVisible(maxVisible int) {
	n := len(l.Items)
	if n == 0 {
		l.Cursor, l.ViewportOffset = 0, 0
		return
	}
	l.Cursor = l.clampedCursor()
	if maxVisible <= 0 {
		l.ViewportOffset = 0
		return
	}
	offset := l.ViewportOffset
	offset = max(offset, l.Cursor-maxVisible+1)
	offset = min(offset, l.Cursor)
	offset = min(offset, max(n-maxVisible, 0))
	l.ViewportOffset = max(offset, 0)
}
