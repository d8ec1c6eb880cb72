package state

// Item is one selectable row of a tab. ID is stable across refreshes; Label
// is the rendered, filterable text.
type Item struct {
	ID    string
	Label string
}

// CloneItems produces a shallow copy of the provided items.
func CloneItems(items []Item) []Item {
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}
