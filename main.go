package main

import (
	"fmt"
	"os"

	"github.com/atomicstack/qmf-explorer/internal/app"
	"github.com/atomicstack/qmf-explorer/internal/config"
	"github.com/atomicstack/qmf-explorer/internal/logging"
	"github.com/atomicstack/qmf-explorer/internal/logging/events"
	"github.com/atomicstack/qmf-explorer/internal/qmf"
)

const redactedMarker = "***"

func main() {
	cfg := config.MustLoad()
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)
	events.App.Start(startupTracePayload(cfg))

	if err := app.Run(cfg.App); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// startupTracePayload describes how the explorer was launched. Broker
// credentials are masked before anything reaches the log.
func startupTracePayload(cfg config.Config) map[string]any {
	flags := make(map[string]any, len(cfg.Flags)+2)
	for name, value := range cfg.Flags {
		flags[name] = value
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath

	payload := map[string]any{
		"argv":     cfg.Args,
		"flags":    flags,
		"config":   redactConfig(cfg),
		"terminal": probeTerminal(),
	}
	if opts := cfg.App.ConnectionOptions; opts != "" {
		payload["connectionOptions"] = redactOptions(opts)
	}
	addProcessDetails(payload)
	return payload
}

func addProcessDetails(payload map[string]any) {
	record := func(key string, value string, err error) {
		if err != nil {
			payload[key+"Error"] = err.Error()
			return
		}
		payload[key] = value
	}
	exe, err := os.Executable()
	record("executable", exe, err)
	cwd, err := os.Getwd()
	record("cwd", cwd, err)
}

func redactConfig(cfg config.Config) config.Config {
	if cfg.App.ConnectionOptions != "" {
		cfg.App.ConnectionOptions = redactedMarker
	}
	return cfg
}

// redactOptions parses a connection options map and masks its password. It
// returns nil when the map does not parse.
func redactOptions(raw string) qmf.Options {
	opts, err := qmf.ParseOptions(raw)
	if err != nil {
		return nil
	}
	if _, ok := opts["password"]; ok {
		opts["password"] = redactedMarker
	}
	return opts
}
