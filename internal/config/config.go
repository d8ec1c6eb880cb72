package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/qmf-explorer/internal/app"
	"github.com/atomicstack/qmf-explorer/internal/backend"
	"github.com/atomicstack/qmf-explorer/internal/qmf"
)

// Config is everything the explorer needs at launch.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envWidth       = "QMF_EXPLORER_WIDTH"
	envHeight      = "QMF_EXPLORER_HEIGHT"
	envShowFooter  = "QMF_EXPLORER_FOOTER"
	envTrace       = "QMF_EXPLORER_TRACE"
	envLogFile     = "QMF_EXPLORER_LOG_FILE"
	envPollTimeout = "QMF_EXPLORER_POLL_TIMEOUT"
	envURL         = "QMF_EXPLORER_URL"

	defaultURL = "localhost"
)

// Load reads the process arguments and environment.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. Positional
// arguments are the broker URL, the connection options and the session
// options used for the connection opened at launch.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("qmf-explorer", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	width := fs.Int("width", env.integer(envWidth, 0), "viewport width in cells, 0 follows the terminal")
	height := fs.Int("height", env.integer(envHeight, 0), "viewport height in rows, 0 follows the terminal")
	footer := fs.Bool("footer", env.boolean(envShowFooter, false), "show the key hint row")
	trace := fs.Bool("trace", env.boolean(envTrace, false), "write JSON trace events to the log")
	logFile := fs.String("log-file", env.str(envLogFile, ""), "log file path")
	pollTimeout := fs.Duration("poll-timeout", env.duration(envPollTimeout, backend.DefaultPollTimeout), "how long the session worker waits for each inbound event")
	noConnect := fs.Bool("no-connect", false, "start without connecting to a broker")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := errors.Join(nonNegative("width", *width), nonNegative("height", *height)); err != nil {
		return Config{}, err
	}
	if *pollTimeout <= 0 {
		return Config{}, fmt.Errorf("poll-timeout must be > 0 (got %s)", *pollTimeout)
	}

	positional := fs.Args()
	if len(positional) > 3 {
		return Config{}, fmt.Errorf("expected at most 3 arguments (url, connection options, session options), got %d", len(positional))
	}
	launch := [3]string{env.str(envURL, defaultURL)}
	copy(launch[:], positional)
	url, connOpts, sessOpts := launch[0], launch[1], launch[2]

	cfg := Config{
		App: app.Config{
			URL:               url,
			ConnectionOptions: connOpts,
			SessionOptions:    sessOpts,
			AutoConnect:       !*noConnect,
			Width:             *width,
			Height:            *height,
			ShowFooter:        *footer,
			PollTimeout:       *pollTimeout,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Flags: map[string]string{
			"width":       strconv.Itoa(*width),
			"height":      strconv.Itoa(*height),
			"footer":      strconv.FormatBool(*footer),
			"trace":       strconv.FormatBool(*trace),
			"logFile":     *logFile,
			"pollTimeout": pollTimeout.String(),
			"noConnect":   strconv.FormatBool(*noConnect),
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func nonNegative(name string, v int) error {
	if v < 0 {
		return fmt.Errorf("%s must be >= 0 (got %d)", name, v)
	}
	return nil
}

// environment is a parsed process environment. Blank values count as unset.
type environment map[string]string

func parseEnv(environ []string) environment {
	env := make(environment, len(environ))
	for _, entry := range environ {
		if key, value, ok := strings.Cut(entry, "="); ok && key != "" {
			env[key] = value
		}
	}
	return env
}

// lookup parses the variable named key, falling back when it is unset or
// does not parse.
func lookup[T any](env environment, key string, fallback T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(env[key])
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func (env environment) str(key, fallback string) string {
	if v := env[key]; strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func (env environment) integer(key string, fallback int) int {
	return lookup(env, key, fallback, strconv.Atoi)
}

func (env environment) boolean(key string, fallback bool) bool {
	return lookup(env, key, fallback, strconv.ParseBool)
}

func (env environment) duration(key string, fallback time.Duration) time.Duration {
	return lookup(env, key, fallback, time.ParseDuration)
}

// MustLoad returns the configuration or exits with status 2.
func MustLoad() Config {
	cfg, err := Load()
	if err == nil {
		return cfg
	}
	fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
	os.Exit(2)
	return Config{}
}

// Validate checks the launch connection arguments before the UI starts so a
// typo fails fast instead of surfacing as a session failure.
func Validate(cfg Config) error {
	if !cfg.App.AutoConnect {
		return nil
	}
	if _, err := qmf.ParseURL(cfg.App.URL); err != nil {
		return fmt.Errorf("url: %w", err)
	}
	if _, err := qmf.ParseOptions(cfg.App.ConnectionOptions); err != nil {
		return fmt.Errorf("connection options: %w", err)
	}
	if _, err := qmf.ParseOptions(cfg.App.SessionOptions); err != nil {
		return fmt.Errorf("session options: %w", err)
	}
	return nil
}
