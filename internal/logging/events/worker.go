package events

import "github.com/atomicstack/qmf-explorer/internal/logging"

type WorkerTracer struct{}

var Worker = WorkerTracer{}

func (WorkerTracer) State(from, to string) {
	logging.Trace("worker.state", map[string]interface{}{"from": from, "to": to})
}

func (WorkerTracer) Status(status string) {
	logging.Trace("worker.status", map[string]interface{}{"status": status})
}

func (WorkerTracer) Command(kind, state string) {
	logging.Trace("worker.command", map[string]interface{}{"kind": kind, "state": state})
}

func (WorkerTracer) Ignored(kind, state string) {
	logging.Trace("worker.command.ignored", map[string]interface{}{"kind": kind, "state": state})
}

func (WorkerTracer) Dispatch(event, agent string) {
	logging.Trace("worker.dispatch", map[string]interface{}{"event": event, "agent": agent})
}

func (WorkerTracer) Filter(expr string) {
	logging.Trace("worker.filter", map[string]interface{}{"filter": expr})
}

func (WorkerTracer) Stop() {
	logging.Trace("worker.stop", nil)
}
