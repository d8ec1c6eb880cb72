package state

// RowRange is an inclusive span of row indices. A range with Last < First is
// empty and means nothing changed.
type RowRange struct {
	First int
	Last  int
}

var noRows = RowRange{First: 0, Last: -1}

// Len returns the number of rows in the range.
func (r RowRange) Len() int {
	if r.Last < r.First {
		return 0
	}
	return r.Last - r.First + 1
}

// Empty reports whether the range covers no rows.
func (r RowRange) Empty() bool {
	return r.Len() == 0
}

type ChangeKind int

const (
	RowsInserted ChangeKind = iota
	RowsRemoved
)

// Change describes one mutation of a row store.
type Change struct {
	Kind ChangeKind
	Rows RowRange
}

// Rows is an append-oriented row store that reports every change to its
// observers. The zero value is ready to use. Rows is not safe for concurrent
// use; it belongs to the UI goroutine.
type Rows[T any] struct {
	items     []T
	observers []func(Change)
}

// Observe registers fn to receive every subsequent change.
func (r *Rows[T]) Observe(fn func(Change)) {
	if fn == nil {
		return
	}
	r.observers = append(r.observers, fn)
}

// Append adds items to the end and returns the inserted range.
func (r *Rows[T]) Append(items ...T) RowRange {
	if len(items) == 0 {
		return noRows
	}
	first := len(r.items)
	r.items = append(r.items, items...)
	rng := RowRange{First: first, Last: len(r.items) - 1}
	r.notify(Change{Kind: RowsInserted, Rows: rng})
	return rng
}

// RemoveAt deletes row i and returns the removed range.
func (r *Rows[T]) RemoveAt(i int) RowRange {
	if i < 0 || i >= len(r.items) {
		return noRows
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	rng := RowRange{First: i, Last: i}
	r.notify(Change{Kind: RowsRemoved, Rows: rng})
	return rng
}

// Clear empties the store and returns the removed range.
func (r *Rows[T]) Clear() RowRange {
	if len(r.items) == 0 {
		return noRows
	}
	rng := RowRange{First: 0, Last: len(r.items) - 1}
	r.items = nil
	r.notify(Change{Kind: RowsRemoved, Rows: rng})
	return rng
}

// Len returns the number of rows.
func (r *Rows[T]) Len() int {
	return len(r.items)
}

// At returns row i.
func (r *Rows[T]) At(i int) T {
	return r.items[i]
}

// Items returns a copy of all rows.
func (r *Rows[T]) Items() []T {
	if len(r.items) == 0 {
		return nil
	}
	dup := make([]T, len(r.items))
	copy(dup, r.items)
	return dup
}

func (r *Rows[T]) notify(c Change) {
	for _, fn := range r.observers {
		fn(c)
	}
}
