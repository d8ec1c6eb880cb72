package state

import "testing"

func objectRows() []Item {
	return []Item{
		{ID: "0", Label: "org.apache.qpid.broker:queue     q1          broker"},
		{ID: "1", Label: "org.apache.qpid.broker:queue     orders      broker"},
		{ID: "2", Label: "org.apache.qpid.broker:exchange  amq.direct  broker"},
	}
}

func TestFilterItemsFuzzy(t *testing.T) {
	items := []Item{{ID: "1", Label: "Alpha"}, {ID: "2", Label: "Beta"}}
	if got := FilterItems(items, "alp"); len(got) != 1 || got[0].Label != "Alpha" {
		t.Fatalf("unexpected filtered results %#v", got)
	}
	if got := FilterItems(items, "ta"); len(got) != 1 || got[0].Label != "Beta" {
		t.Fatalf("expected subsequence match for Beta, got %#v", got)
	}
	if len(FilterItems(items, "nomatch")) != 0 {
		t.Fatal("expected empty results when nothing matches")
	}
	if got := FilterItems(items, "   "); len(got) != 2 {
		t.Fatalf("expected blank query to keep every row, got %d", len(got))
	}
}

func TestFilterItemsRequiresEveryWord(t *testing.T) {
	got := FilterItems(objectRows(), "queue orders")
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected only the orders queue, got %#v", got)
	}
	got = FilterItems(objectRows(), "exchange q1")
	if len(got) != 0 {
		t.Fatalf("expected no row to match both words, got %#v", got)
	}
}

func TestFilterItemsIgnoresIDs(t *testing.T) {
	items := []Item{{ID: "7", Label: "queue"}}
	if got := FilterItems(items, "7"); len(got) != 0 {
		t.Fatalf("expected row index not to match, got %#v", got)
	}
}

func TestFilterItemsReturnsCopy(t *testing.T) {
	items := []Item{{ID: "1", Label: "Alpha"}, {ID: "2", Label: "Beta"}}
	filtered := FilterItems(items, "")
	filtered[0].Label = "changed"
	if items[0].Label != "Alpha" {
		t.Fatal("expected original slice to remain unchanged")
	}
}

func TestBestMatchIndex(t *testing.T) {
	items := []Item{
		{ID: "one", Label: "First"},
		{ID: "two", Label: "Second"},
		{ID: "three", Label: "Third"},
	}
	if idx := BestMatchIndex(items, "Second"); idx != 1 {
		t.Fatalf("expected exact label match index 1, got %d", idx)
	}
	if idx := BestMatchIndex(items, "th"); idx != 2 {
		t.Fatalf("expected prefix match index 2, got %d", idx)
	}
	if idx := BestMatchIndex(items, "zzz"); idx != 0 {
		t.Fatalf("expected fallback index 0, got %d", idx)
	}
	if idx := BestMatchIndex(nil, "anything"); idx != -1 {
		t.Fatalf("expected -1 for empty slice, got %d", idx)
	}
}

func TestBestMatchIndexPrefersColumnPrefix(t *testing.T) {
	if idx := BestMatchIndex(objectRows(), "amq"); idx != 2 {
		t.Fatalf("expected the amq.direct row, got %d", idx)
	}
	if idx := BestMatchIndex(objectRows(), "ord"); idx != 1 {
		t.Fatalf("expected the orders row, got %d", idx)
	}
}
