package events

import "github.com/atomicstack/qmf-explorer/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

type CommandTracer struct{}

type dialogReason string

const (
	DialogReasonEscape dialogReason = "escape"
	DialogReasonEmpty  dialogReason = "empty"
)

var (
	UI      = UITracer{}
	Filter  = FilterTracer{}
	Command = CommandTracer{}
)

func (UITracer) Tab(tab string) {
	logging.Trace("ui.tab", map[string]interface{}{"tab": tab})
}

func (UITracer) Cursor(tab string, cursor int) {
	logging.Trace("ui.cursor", map[string]interface{}{"tab": tab, "cursor": cursor})
}

func (UITracer) Detail(tab, label string) {
	logging.Trace("ui.detail", map[string]interface{}{"tab": tab, "label": label})
}

func (UITracer) DialogOpen(name string) {
	logging.Trace("ui.dialog.open", map[string]interface{}{"dialog": name})
}

func (UITracer) DialogSubmit(name string, fields map[string]string) {
	logging.Trace("ui.dialog.submit", map[string]interface{}{"dialog": name, "fields": fields})
}

func (UITracer) DialogCancel(name string, reason dialogReason) {
	logging.Trace("ui.dialog.cancel", map[string]interface{}{"dialog": name, "reason": string(reason)})
}

func (FilterTracer) Cleared(tab string) {
	logging.Trace("filter.clear", map[string]interface{}{"tab": tab})
}

func (FilterTracer) WordBackspace(tab, filter string) {
	logging.Trace("filter.word-backspace", map[string]interface{}{"tab": tab, "filter": filter})
}

func (FilterTracer) Cursor(tab string, pos int) {
	logging.Trace("filter.cursor", map[string]interface{}{"tab": tab, "cursor": pos})
}

func (FilterTracer) Append(tab, filter string) {
	logging.Trace("filter.append", map[string]interface{}{"tab": tab, "filter": filter})
}

func (FilterTracer) Backspace(tab, filter string) {
	logging.Trace("filter.backspace", map[string]interface{}{"tab": tab, "filter": filter})
}

func (CommandTracer) Queue(kind, detail string) {
	logging.Trace("command.queue", map[string]interface{}{"kind": kind, "detail": detail})
}

func (CommandTracer) Rejected(kind string, err error) {
	logging.Trace("command.rejected", map[string]interface{}{"kind": kind, "error": err.Error()})
}
