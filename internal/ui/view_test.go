package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/atomicstack/qmf-explorer/internal/backend"
	"github.com/atomicstack/qmf-explorer/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

func plainView(h *Harness) string {
	return ansi.Strip(h.View())
}

func TestViewDisconnected(t *testing.T) {
	h, _ := newTestHarness(t, Config{Width: 100, Height: 20})
	view := plainView(h)
	for _, want := range []string{"Agents 0", "Objects 0", "Events 0", "○ Closed", "(not connected: ctrl+o"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestViewConnectedEmptyTab(t *testing.T) {
	h, _ := newTestHarness(t, Config{Width: 100, Height: 20})
	connectHarness(h)
	view := plainView(h)
	if !strings.Contains(view, "● ") {
		t.Fatalf("expected online status marker in view:\n%s", view)
	}
	if !strings.Contains(view, "(no entries)") {
		t.Fatalf("expected empty marker in view:\n%s", view)
	}
}

func TestViewShowsUnseenCounts(t *testing.T) {
	h, _ := newTestHarness(t, Config{Width: 100, Height: 20})
	connectHarness(h)
	notify(h,
		backend.ObjectAdded{Data: queueData("broker", "queue", "q1")},
		backend.ObjectAdded{Data: queueData("broker", "queue", "q2")},
	)
	view := plainView(h)
	if !strings.Contains(view, "Objects 2 +2") {
		t.Fatalf("expected unseen marker on objects tab:\n%s", view)
	}
	h.Key(tea.KeyTab)
	view = plainView(h)
	if strings.Contains(view, "+2") {
		t.Fatalf("expected unseen marker cleared after switching:\n%s", view)
	}
	if !strings.Contains(view, "q2") {
		t.Fatalf("expected object rows rendered:\n%s", view)
	}
}

func TestViewSideDetailPanel(t *testing.T) {
	h, _ := newTestHarness(t, Config{Width: 120, Height: 24})
	connectHarness(h)
	notify(h, backend.ObjectAdded{Data: queueData("broker", "queue", "orders")})
	h.Key(tea.KeyTab)
	h.Key(tea.KeyEnter)
	view := plainView(h)
	if !strings.Contains(view, "╭") || !strings.Contains(view, "╯") {
		t.Fatalf("expected bordered detail panel:\n%s", view)
	}
	if !strings.Contains(view, "msgDepth") {
		t.Fatalf("expected detail properties in panel:\n%s", view)
	}
	if strings.Contains(view, "Detail: ") {
		t.Fatalf("expected no inline detail block in wide layout:\n%s", view)
	}
}

func TestViewInlineDetailOnNarrowTerminal(t *testing.T) {
	h, _ := newTestHarness(t, Config{Width: 60, Height: 24})
	connectHarness(h)
	notify(h, backend.AgentAdded{Agent: testutil.Agent("broker")})
	h.Key(tea.KeyEnter)
	view := plainView(h)
	if !strings.Contains(view, "Detail: ") {
		t.Fatalf("expected inline detail block:\n%s", view)
	}
	if strings.Contains(view, "╭") {
		t.Fatalf("expected no side panel on narrow terminal:\n%s", view)
	}
}

func TestViewDialog(t *testing.T) {
	h, _ := newTestHarness(t, Config{Width: 100, Height: 20})
	h.Key(tea.KeyCtrlO)
	view := plainView(h)
	for _, want := range []string{"Open Connection", "URL", "Connection options", "Session options", "{strict-security:False}", "localhost"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in dialog view:\n%s", want, view)
		}
	}
}

func TestViewErrorReplacesStatus(t *testing.T) {
	h, q := newTestHarness(t, Config{Width: 100, Height: 20})
	q.err = errors.New("queue full")
	h.Key(tea.KeyCtrlL)
	view := plainView(h)
	if !strings.Contains(view, "Error: ") || !strings.Contains(view, "queue full") {
		t.Fatalf("expected error line in view:\n%s", view)
	}
}

func TestViewNoMatches(t *testing.T) {
	h, _ := newTestHarness(t, Config{Width: 100, Height: 20})
	connectHarness(h)
	notify(h, backend.AgentAdded{Agent: testutil.Agent("broker")})
	h.Type("zzz")
	view := plainView(h)
	if !strings.Contains(view, `No matches for "zzz"`) {
		t.Fatalf("expected no-match message:\n%s", view)
	}
}

func TestViewFooter(t *testing.T) {
	h, _ := newTestHarness(t, Config{Width: 200, Height: 20, ShowFooter: true})
	if view := plainView(h); !strings.Contains(view, "ctrl+o open") {
		t.Fatalf("expected footer hints:\n%s", view)
	}
}

func TestLimitHeight(t *testing.T) {
	lines := []line{{text: "a"}, {text: "b"}, {text: "c"}}
	got := limitHeight(lines, 2, 10)
	if len(got) != 2 || got[0].text != "a" || got[1].text != "…" {
		t.Fatalf("unexpected limited lines: %#v", got)
	}
	if got := limitHeight(lines, 0, 10); len(got) != 3 {
		t.Fatalf("expected no limit for zero height, got %d lines", len(got))
	}
}

func TestTruncateText(t *testing.T) {
	if got := truncateText("hello world", 6); got != "hell…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateText("short", 10); got != "short" {
		t.Fatalf("expected untouched text, got %q", got)
	}
}
