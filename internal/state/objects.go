package state

import "github.com/atomicstack/qmf-explorer/internal/qmf"

type ObjectStore interface {
	Entries() []qmf.Data
	Add(qmf.Data) RowRange
	Clear() RowRange
	Len() int
	Observe(func(Change))
}

type objectStore struct {
	rows Rows[qmf.Data]
}

func NewObjectStore() ObjectStore {
	return &objectStore{}
}

func (o *objectStore) Entries() []qmf.Data {
	return o.rows.Items()
}

func (o *objectStore) Add(data qmf.Data) RowRange {
	data.Properties = data.Properties.Clone()
	return o.rows.Append(data)
}

func (o *objectStore) Clear() RowRange {
	return o.rows.Clear()
}

func (o *objectStore) Len() int {
	return o.rows.Len()
}

func (o *objectStore) Observe(fn func(Change)) {
	o.rows.Observe(fn)
}
