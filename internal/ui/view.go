package ui

import (
	"fmt"
	"strings"

	"github.com/atomicstack/qmf-explorer/internal/format/table"
	uistate "github.com/atomicstack/qmf-explorer/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	detailMaxInlineRows = 10
	detailPanelMinWidth = 40
	detailPanelFraction = 0.4
	detailWheelStep     = 3
	bottomBarRows       = 2
	rowMarker           = "▌"
	footerText          = "tab switch  ↑/↓ move  enter detail  ctrl+o open  ctrl+l localhost  ctrl+x close  ctrl+f agent filter  esc back  ctrl+c quit"
)

var (
	detailBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	detailScrollStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// hasDetail reports whether the active tab has a selection to describe.
func (m *Model) hasDetail() bool {
	return m.currentDetail().Title() != ""
}

// hasSideDetail reports whether the detail table is drawn as a panel on the
// right rather than inline below the rows.
func (m *Model) hasSideDetail() bool {
	return m.hasDetail() && m.detailPanelWidth() > 0
}

// detailPanelWidth returns 0 when the terminal is too narrow to split.
func (m *Model) detailPanelWidth() int {
	if w := int(float64(m.width) * detailPanelFraction); w >= detailPanelMinWidth {
		return w
	}
	return 0
}

// View implements tea.Model.
func (m *Model) View() string {
	switch {
	case m.mode == ModeConnectForm && m.connectForm != nil:
		return m.viewConnectForm()
	case m.mode == ModeAgentFilterForm && m.filterForm != nil:
		return m.viewAgentFilterForm()
	case m.hasSideDetail():
		return m.viewSideBySide()
	}
	return m.viewVertical()
}

// visibleRows returns the slice of the active tab's rows that fits the
// viewport along with the index of its first row.
func (m *Model) visibleRows(current *level) (int, []uistate.Item) {
	m.syncViewport(current)
	rows := current.Items
	limit := m.maxVisibleItems()
	if limit <= 0 || len(rows) <= limit {
		return 0, rows
	}
	start := min(max(current.ViewportOffset, 0), len(rows)-limit)
	current.ViewportOffset = start
	return start, rows[start : start+limit]
}

func (m *Model) listLines(width int) []line {
	current := m.currentLevel()
	start, rows := m.visibleRows(current)
	if len(current.Items) == 0 {
		return []line{plain(m.emptyMessage(current), styles.Info)}
	}
	lines := make([]line, 0, len(rows))
	for i, item := range rows {
		lines = append(lines, rowLine(item.Label, start+i == current.Cursor, width))
	}
	return lines
}

func (m *Model) emptyMessage(current *level) string {
	switch {
	case current.Filter != "":
		return fmt.Sprintf("No matches for %q", current.Filter)
	case !m.Connected():
		return "(not connected: ctrl+o to open a connection, ctrl+l for localhost)"
	}
	return "(no entries)"
}

// rowLine draws one table row behind the marker. The selected row is padded
// to width so its background spans the column.
func rowLine(label string, selected bool, width int) line {
	l := line{
		text:        " " + label,
		style:       styles.Item,
		marker:      rowMarker,
		markerStyle: styles.ItemIndicator,
	}
	if selected {
		l.style, l.markerStyle = styles.SelectedItem, styles.SelectedItemIndicator
	}
	if width > 0 {
		l.text = fitCell(l.text, width-ansi.StringWidth(rowMarker))
	}
	return l
}

func (m *Model) trailerLines() []line {
	var lines []line
	if info := m.currentInfo(); info != "" {
		lines = append(lines, line{}, plain(info, styles.Info))
	}
	if m.showFooter {
		lines = append(lines, line{}, plain(footerText, styles.Footer))
	}
	return lines
}

// bottomBar is the status or error line above the filter prompt.
func (m *Model) bottomBar() string {
	status := m.statusLine()
	if m.errMsg != "" {
		status = plain("Error: "+m.errMsg, styles.Error)
	}
	return renderBlock([]line{status, preStyled(m.filterPrompt())}, m.width)
}

// viewVertical is the single-column layout with an optional inline detail
// block below the rows.
func (m *Model) viewVertical() string {
	lines := append([]line{preStyled(m.tabHeader())}, m.listLines(m.width)...)
	if m.hasDetail() {
		lines = append(lines, line{}, plain("Detail: "+m.currentDetail().Title(), styles.DetailTitle))
		for _, row := range m.detailRows(detailMaxInlineRows) {
			lines = append(lines, plain(row, styles.DetailValue))
		}
	}
	lines = append(lines, m.trailerLines()...)
	lines = limitHeight(lines, m.height-bottomBarRows, m.width)
	return renderBlock(lines, m.width) + "\n" + m.bottomBar()
}

// viewSideBySide renders the rows on the left and the detail panel on the
// right, under a header that spans both.
func (m *Model) viewSideBySide() string {
	panelW := m.detailPanelWidth()
	listW := m.width - panelW
	panelH := max(m.height-bottomBarRows-1, 1)

	left := append(m.listLines(listW), m.trailerLines()...)
	if len(left) > panelH {
		left = left[:panelH]
	}
	rows := strings.Split(renderBlock(left, listW), "\n")
	for len(rows) < panelH {
		rows = append(rows, "")
	}
	for i := range rows {
		rows[i] = fitCell(rows[i], listW)
	}

	header := renderBlock([]line{preStyled(m.tabHeader())}, m.width)
	body := lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(rows, "\n"), m.renderDetailPanel(panelW, panelH))
	return header + "\n" + body + "\n" + m.bottomBar()
}

// detailRows formats the active detail table as aligned key/value lines,
// keeping at most limit rows when limit > 0.
func (m *Model) detailRows(limit int) []string {
	pairs := m.currentDetail().Rows()
	if len(pairs) == 0 {
		return []string{"(no properties)"}
	}
	rows := make([][]string, len(pairs))
	for i, kv := range pairs {
		rows[i] = []string{kv.Key, kv.Value}
	}
	lines := table.Format(rows, nil)
	if limit > 0 && len(lines) > limit {
		lines = append(lines[:limit-1], fmt.Sprintf("… %d more", len(lines)-limit+1))
	}
	return lines
}

// renderDetailPanel draws the bordered detail box with exactly height rows
// and width columns. The top border carries the title and, when the table
// overflows, a position counter.
func (m *Model) renderDetailPanel(width, height int) string {
	innerW := max(width-2, 1)
	innerH := max(height-2, 1)

	lines := m.detailRows(0)
	offset := min(max(m.detailScroll[m.active], 0), max(len(lines)-innerH, 0))
	m.detailScroll[m.active] = offset
	visible := lines[offset:min(offset+innerH, len(lines))]
	counter := ""
	if len(lines) > innerH {
		counter = fmt.Sprintf(" %d/%d ", offset+len(visible), len(lines))
	}

	rows := make([]string, 0, height)
	rows = append(rows, panelTopBorder(" "+m.currentDetail().Title()+" ", counter, width))
	side := detailBorderStyle.Render("│")
	for i := range innerH {
		content := ""
		if i < len(visible) {
			content = visible[i]
		}
		rows = append(rows, side+styles.DetailValue.Render(fitCell(content, innerW))+side)
	}
	rows = append(rows, detailBorderStyle.Render("╰"+strings.Repeat("─", innerW)+"╯"))
	return strings.Join(rows, "\n")
}

// panelTopBorder fills width cells with the title and counter set into a
// rounded border. The counter goes first when space runs out, then the title
// is shortened.
func panelTopBorder(title, counter string, width int) string {
	room := width - 4
	if ansi.StringWidth(title)+ansi.StringWidth(counter) > room {
		counter = ""
	}
	if ansi.StringWidth(title) > room {
		title = truncateText(title, max(room, 0))
	}
	dashes := max(room-ansi.StringWidth(title)-ansi.StringWidth(counter), 0)
	return detailBorderStyle.Render("╭─") +
		styles.DetailTitle.Render(title) +
		detailBorderStyle.Render(strings.Repeat("─", dashes)) +
		detailScrollStyle.Render(counter) +
		detailBorderStyle.Render("─╮")
}

// handleMouseMsg scrolls the detail panel with the mouse wheel. Overscroll
// is clamped on the next render.
func (m *Model) handleMouseMsg(msg tea.Msg) tea.Cmd {
	ev, ok := msg.(tea.MouseMsg)
	if !ok || !m.hasSideDetail() {
		return nil
	}
	switch ev.Button {
	case tea.MouseButtonWheelUp:
		m.detailScroll[m.active] = max(m.detailScroll[m.active]-detailWheelStep, 0)
	case tea.MouseButtonWheelDown:
		m.detailScroll[m.active] += detailWheelStep
	}
	return nil
}

// tabHeader renders the tab bar. Counts show total rows; a "+n" marks rows
// that arrived while the tab was in the background.
func (m *Model) tabHeader() string {
	segments := make([]string, 0, tabCount)
	for t := tab(0); t < tabCount; t++ {
		label := fmt.Sprintf("%s %d", t.title(), len(m.tabs[t].Full))
		if n := m.unseen[t]; n > 0 {
			label += fmt.Sprintf(" +%d", n)
		}
		style := styles.Tab
		if t == m.active {
			style = styles.ActiveTab
		}
		segments = append(segments, style.Render(label))
	}
	return strings.Join(segments, styles.Header.Render("│"))
}

func (m *Model) statusLine() line {
	if m.Connected() {
		return plain("● "+m.Status(), styles.StatusOnline)
	}
	return plain("○ "+m.Status(), styles.StatusOffline)
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.syncViewport(m.currentLevel())
	return nil
}

// chromeRows counts the rows the list cannot use: header, bottom bar, the
// trailers, and the inline detail block. The side panel has its own column.
func (m *Model) chromeRows() int {
	rows := bottomBarRows + 1
	if m.currentInfo() != "" {
		rows += 2
	}
	if m.showFooter {
		rows += 2
	}
	if m.hasDetail() && !m.hasSideDetail() {
		rows += 2 + len(m.detailRows(detailMaxInlineRows))
	}
	return rows
}

// maxVisibleItems returns -1 while the height is unknown.
func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return -1
	}
	return max(m.height-m.chromeRows(), 1)
}
