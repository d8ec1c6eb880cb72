package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/atomicstack/qmf-explorer/internal/backend"
	"github.com/atomicstack/qmf-explorer/internal/logging/events"
	"github.com/atomicstack/qmf-explorer/internal/qmf"
	"github.com/atomicstack/qmf-explorer/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// Config describes user-provided application options.
type Config struct {
	URL               string
	ConnectionOptions string
	SessionOptions    string
	AutoConnect       bool
	Width             int
	Height            int
	ShowFooter        bool
	PollTimeout       time.Duration
}

// launchCommand returns the connect command queued before the UI starts, if
// any.
func launchCommand(cfg Config) (backend.Command, bool) {
	if !cfg.AutoConnect || cfg.URL == "" {
		return backend.Command{}, false
	}
	sessionOptions := cfg.SessionOptions
	if sessionOptions == "" {
		sessionOptions = qmf.DefaultSessionOptions
	}
	return backend.ConnectCommand(cfg.URL, cfg.ConnectionOptions, sessionOptions), true
}

func uiConfig(cfg Config) ui.Config {
	return ui.Config{
		Width:             cfg.Width,
		Height:            cfg.Height,
		ShowFooter:        cfg.ShowFooter,
		URL:               cfg.URL,
		ConnectionOptions: cfg.ConnectionOptions,
		SessionOptions:    cfg.SessionOptions,
	}
}

// Run bootstraps the session worker and executes the Bubble Tea program.
func Run(cfg Config) (err error) {
	defer func() { events.App.Exit(err) }()

	worker := backend.NewWorker(qmf.NewAMQPDialer(), backend.Options{PollTimeout: cfg.PollTimeout})
	defer worker.Stop()

	if cmd, ok := launchCommand(cfg); ok {
		if qerr := worker.Enqueue(cmd); qerr != nil {
			return fmt.Errorf("queue initial connection: %w", qerr)
		}
	}

	model := ui.NewModel(uiConfig(cfg), worker, worker.Notifications())
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
