package state

import "github.com/atomicstack/qmf-explorer/internal/qmf"

// KeyValue is one row of a detail table.
type KeyValue struct {
	Key   string
	Value string
}

// DetailTable holds the key/value rows describing the selected item. Setting
// new contents replaces the old rows.
type DetailTable struct {
	title string
	rows  Rows[KeyValue]
}

func NewDetailTable() *DetailTable {
	return &DetailTable{}
}

// Title names the item whose details are shown.
func (d *DetailTable) Title() string {
	return d.title
}

// SetProperties replaces the rows with props, keeping their order.
func (d *DetailTable) SetProperties(title string, props qmf.Properties) RowRange {
	pairs := make([]KeyValue, 0, len(props))
	for _, p := range props {
		pairs = append(pairs, KeyValue{Key: p.Key, Value: qmf.FormatValue(p.Value)})
	}
	return d.SetPairs(title, pairs)
}

// SetPairs replaces the rows with pairs.
func (d *DetailTable) SetPairs(title string, pairs []KeyValue) RowRange {
	d.rows.Clear()
	d.title = title
	return d.rows.Append(pairs...)
}

func (d *DetailTable) Rows() []KeyValue {
	return d.rows.Items()
}

func (d *DetailTable) Len() int {
	return d.rows.Len()
}

func (d *DetailTable) Clear() RowRange {
	d.title = ""
	return d.rows.Clear()
}

func (d *DetailTable) Observe(fn func(Change)) {
	d.rows.Observe(fn)
}
