package events

import (
	"errors"

	"github.com/atomicstack/qmf-explorer/internal/logging"
)

type AppTracer struct{}

var App = AppTracer{}

// Start records the effective startup configuration. Callers redact secrets
// before handing the payload over.
func (AppTracer) Start(payload map[string]any) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Exit(err error) {
	payload := map[string]any{"clean": err == nil}
	if err != nil {
		payload["error"] = err.Error()
		if cause := errors.Unwrap(err); cause != nil {
			payload["cause"] = cause.Error()
		}
	}
	logging.Trace("app.exit", payload)
}
