package table

import (
	"strings"
	"testing"

	"github.com/atomicstack/qmf-explorer/internal/testutil"
)

func TestFormatPadsColumns(t *testing.T) {
	rows := [][]string{
		{"org.apache.qpid.broker:queue", "q1"},
		{"org.apache.qpid.broker:exchange", "amq.direct"},
	}
	got := Format(rows, nil)
	want := []string{
		"org.apache.qpid.broker:queue     q1",
		"org.apache.qpid.broker:exchange  amq.direct",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestFormatEmpty(t *testing.T) {
	if rows := Format(nil, nil); rows != nil {
		t.Fatalf("expected nil for no rows, got %#v", rows)
	}
}

func TestFormatWideRunes(t *testing.T) {
	rows := [][]string{{"日本", "a"}, {"ab", "b"}}
	got := Format(rows, nil)
	if got[0] != "日本  a" {
		t.Fatalf("expected wide runes to count double, got %q", got[0])
	}
	if got[1] != "ab    b" {
		t.Fatalf("expected narrow row padded to wide width, got %q", got[1])
	}
}

func TestFormatLimitedGolden(t *testing.T) {
	rows := [][]string{
		{"queue", "qpidd", "12"},
		{"exchange", "qpidd-broker", "3"},
		{"binding-very-long-name", "x", "100"},
	}
	got := FormatLimited(rows, []Alignment{AlignLeft, AlignLeft, AlignRight}, []int{10})
	testutil.AssertGolden(t, "limited.golden", strings.Join(got, "\n")+"\n")
}
