package state

import (
	"time"

	"github.com/atomicstack/qmf-explorer/internal/qmf"
)

// TimestampLayout renders event times the way ctime(3) does.
const TimestampLayout = "Mon Jan _2 15:04:05 2006"

// EventRow is one line of the event table. A console event carrying several
// data records yields one row per record.
type EventRow struct {
	Time       string
	Severity   string
	Name       string
	Properties string
	Agent      string
	Data       qmf.Data
}

type EventStore interface {
	Entries() []EventRow
	Add(qmf.ConsoleEvent) RowRange
	Clear() RowRange
	Len() int
	Observe(func(Change))
}

type eventStore struct {
	rows Rows[EventRow]
}

func NewEventStore() EventStore {
	return &eventStore{}
}

func (e *eventStore) Entries() []EventRow {
	return e.rows.Items()
}

func (e *eventStore) Add(ev qmf.ConsoleEvent) RowRange {
	if len(ev.Data) == 0 {
		return noRows
	}
	rows := make([]EventRow, 0, len(ev.Data))
	for _, d := range ev.Data {
		rows = append(rows, EventRow{
			Time:       FormatTimestamp(ev.Timestamp),
			Severity:   ev.Severity.String(),
			Name:       d.SchemaID.Package + ":" + d.SchemaID.Class,
			Properties: d.Properties.Join(),
			Agent:      ev.Agent.Name,
			Data:       d,
		})
	}
	return e.rows.Append(rows...)
}

func (e *eventStore) Clear() RowRange {
	return e.rows.Clear()
}

func (e *eventStore) Len() int {
	return e.rows.Len()
}

func (e *eventStore) Observe(fn func(Change)) {
	e.rows.Observe(fn)
}

// FormatTimestamp renders ts in local time with second precision.
func FormatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format(TimestampLayout)
}
