package table

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

const ellipsis = "…"

// Format returns the rows padded according to the widest entry in each column.
func Format(rows [][]string, alignments []Alignment) []string {
	return FormatLimited(rows, alignments, nil)
}

// FormatLimited is Format with a maximum display width per column. A limit of
// zero or less leaves that column unbounded; wider cells are cut with an
// ellipsis.
func FormatLimited(rows [][]string, alignments []Alignment, limits []int) []string {
	if len(rows) == 0 {
		return nil
	}
	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	cells := make([][]string, len(rows))
	widths := make([]int, colCount)
	for i, row := range rows {
		cells[i] = make([]string, colCount)
		for c := 0; c < colCount; c++ {
			cell := ""
			if c < len(row) {
				cell = clip(row[c], limitFor(limits, c))
			}
			cells[i][c] = cell
			if width := cellWidth(cell); width > widths[c] {
				widths[c] = width
			}
		}
	}
	out := make([]string, len(rows))
	for i, row := range cells {
		var b strings.Builder
		for c, cell := range row {
			if c > 0 {
				b.WriteString("  ")
			}
			width := widths[c] - cellWidth(cell)
			if width < 0 {
				width = 0
			}
			if c < len(alignments) && alignments[c] == AlignRight {
				writeSpaces(&b, width)
				b.WriteString(cell)
			} else if c < len(row)-1 {
				b.WriteString(cell)
				writeSpaces(&b, width)
			} else {
				b.WriteString(cell)
			}
		}
		out[i] = b.String()
	}
	return out
}

func limitFor(limits []int, col int) int {
	if col >= len(limits) {
		return 0
	}
	return limits[col]
}

func clip(cell string, limit int) string {
	if limit <= 0 || cellWidth(cell) <= limit {
		return cell
	}
	return ansi.Truncate(cell, limit, ellipsis)
}

func cellWidth(text string) int {
	return runewidth.StringWidth(ansi.Strip(text))
}

func writeSpaces(b *strings.Builder, count int) {
	if count <= 0 {
		return
	}
	b.WriteString(strings.Repeat(" ", count))
}
