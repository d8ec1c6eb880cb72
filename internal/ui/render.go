package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
)

const ellipsis = "…"

// line is one row of screen output before styling. A marker is drawn in its
// own style ahead of text; preStyled text already carries escapes and is
// passed through untouched.
type line struct {
	text        string
	style       *lipgloss.Style
	marker      string
	markerStyle *lipgloss.Style
	preStyled   bool
}

func plain(text string, style *lipgloss.Style) line {
	return line{text: text, style: style}
}

func preStyled(text string) line {
	return line{text: text, preStyled: true}
}

// fit truncates the line so marker and text together span at most width
// cells.
func (l line) fit(width int) line {
	if width <= 0 {
		return l
	}
	l.text = truncateText(l.text, width-ansi.StringWidth(l.marker))
	return l
}

func (l line) render() string {
	if l.preStyled {
		return l.marker + l.text
	}
	return renderStyled(l.markerStyle, l.marker) + renderStyled(l.style, l.text)
}

func renderStyled(style *lipgloss.Style, text string) string {
	if style == nil || text == "" {
		return text
	}
	return style.Render(text)
}

// renderBlock fits every line to width and joins the rendered rows.
func renderBlock(lines []line, width int) string {
	rows := make([]string, len(lines))
	for i, l := range lines {
		rows[i] = l.fit(width).render()
	}
	return strings.Join(rows, "\n")
}

// limitHeight keeps at most height lines, replacing the last kept line with
// an ellipsis when rows were dropped.
func limitHeight(lines []line, height, width int) []line {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	kept := append(make([]line, 0, height), lines[:height-1]...)
	return append(kept, line{text: truncateText(ellipsis, width)})
}

// fitCell pads or truncates a rendered row to exactly width cells.
func fitCell(row string, width int) string {
	if width <= 0 {
		return row
	}
	w := ansi.StringWidth(row)
	if w > width {
		row = truncateText(row, width)
		w = ansi.StringWidth(row)
	}
	if w < width {
		row += strings.Repeat(" ", width-w)
	}
	return row
}

// truncateText shortens text to width cells, ending in an ellipsis when
// there is room for one.
func truncateText(text string, width int) string {
	switch {
	case width <= 0, ansi.StringWidth(text) <= width:
		return text
	case width == 1:
		return truncate.String(text, 1)
	}
	return truncate.StringWithTail(text, uint(width-1), ellipsis)
}
