// Package logging provides structured logging for the attic CLI. All
// packages obtain component-scoped loggers from here so levels can be
// controlled centrally.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//		log.Fatal(err)
//	}
//	defer logging.Close()
//
//	logger := logging.Get("scanner")
//	logger.Info("scan started", "root", "/my_archive")
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a level string into a charmbracelet log level.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel, nil
	case "info", "":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is an optional log file. Empty logs to stderr only.
	Path string

	// Components maps component names to level overrides.
	Components map[string]string

	// Quiet suppresses everything below error on the console.
	Quiet bool
}

var (
	mu      sync.Mutex
	cfg     Config
	file    *os.File
	loggers = make(map[string]*log.Logger)
)

// Init configures the logging system. Call once at startup; loggers handed
// out earlier keep working with default settings.
func Init(c Config) error {
	mu.Lock()
	defer mu.Unlock()

	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	for comp, lvl := range c.Components {
		if _, err := ParseLevel(lvl); err != nil {
			return fmt.Errorf("component %s: %w", comp, err)
		}
	}

	if file != nil {
		_ = file.Close()
		file = nil
	}
	if c.Path != "" {
		if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(c.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		file = f
	}

	cfg = c
	// Rebuild existing loggers against the new configuration.
	for name := range loggers {
		loggers[name] = build(name)
	}
	return nil
}

// Close flushes and closes the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		_ = file.Close()
		file = nil
	}
}

// Get returns the logger for a component, creating it on first use.
func Get(component string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[component]; ok {
		return l
	}
	l := build(component)
	loggers[component] = l
	return l
}

// build constructs a component logger under the current configuration.
// Caller holds mu.
func build(component string) *log.Logger {
	var w io.Writer = os.Stderr
	if file != nil {
		w = io.MultiWriter(os.Stderr, file)
	}

	level, _ := ParseLevel(cfg.Level)
	if override, ok := cfg.Components[component]; ok {
		if l, err := ParseLevel(override); err == nil {
			level = l
		}
	}
	if cfg.Quiet && level < log.ErrorLevel {
		level = log.ErrorLevel
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          component,
	})
	logger.SetLevel(level)
	return logger
}
