// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the zerolog logger shared by toolverse.
//
// Diagnostics always go to stderr so stdout stays clean for tool output.
// Warnings and errors are written through a separate console writer so
// they keep their level label even when colour is off. An optional log
// file receives every event at the configured level as JSON.
//
// # Usage
//
//	closer, err := logging.Setup(logging.Options{Level: "debug"})
//	defer closer.Close()
//	logging.Infof("serving on %s", addr)
//	log := logging.With("server")
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls logger construction.
type Options struct {
	// Level is one of trace, debug, info, warn, error, disabled. Empty
	// means warn.
	Level string
	// JSON switches the stderr output from console to JSON lines.
	JSON bool
	// File, if set, receives JSON events in addition to stderr.
	File string
	// Out replaces stderr; used by tests.
	Out io.Writer
}

// DefaultLevel keeps routine runs quiet.
const DefaultLevel = "warn"

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return zerolog.WarnLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	case "off", "none":
		return zerolog.Disabled, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// =============================================================================
// LEVEL-SPLIT WRITER
// =============================================================================

// SpecificLevelWriter forwards only events whose level is in Levels.
type SpecificLevelWriter struct {
	io.Writer
	Levels []zerolog.Level
}

// WriteLevel implements zerolog.LevelWriter.
func (w SpecificLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	for _, l := range w.Levels {
		if l == level {
			return w.Write(p)
		}
	}
	return len(p), nil
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a logger from opts. The returned closer releases the log
// file, if any.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	var writers []io.Writer
	if opts.JSON {
		writers = append(writers, out)
	} else {
		noColor := true
		if f, ok := out.(*os.File); ok {
			noColor = !term.IsTerminal(int(f.Fd()))
		}
		writers = append(writers,
			SpecificLevelWriter{
				Writer: zerolog.ConsoleWriter{Out: out, NoColor: noColor, TimeFormat: time.Kitchen},
				Levels: []zerolog.Level{zerolog.TraceLevel, zerolog.DebugLevel, zerolog.InfoLevel},
			},
			SpecificLevelWriter{
				Writer: zerolog.ConsoleWriter{Out: out, NoColor: noColor, TimeFormat: time.Kitchen, PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName}},
				Levels: []zerolog.Level{zerolog.WarnLevel, zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel},
			},
		)
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("opening log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
	return logger, closer, nil
}

// =============================================================================
// GLOBAL LOGGER
// =============================================================================

var (
	mu     sync.RWMutex
	global = zerolog.New(SpecificLevelWriter{
		Writer: zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true, PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName}},
		Levels: []zerolog.Level{zerolog.WarnLevel, zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel},
	}).Level(zerolog.WarnLevel)
)

// Setup replaces the package logger.
func Setup(opts Options) (io.Closer, error) {
	logger, closer, err := New(opts)
	if err != nil {
		return closer, err
	}
	SetLogger(logger)
	return closer, nil
}

// SetLogger installs l as the package logger.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
}

// Logger returns the package logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// With returns the package logger tagged with a component name.
func With(component string) zerolog.Logger {
	return Logger().With().Str("component", component).Logger()
}

func Info(msg string) {
	l := Logger()
	l.Info().Msg(msg)
}

func Infof(format string, args ...interface{}) {
	l := Logger()
	l.Info().Msgf(format, args...)
}

func Warn(msg string) {
	l := Logger()
	l.Warn().Msg(msg)
}

func Warnf(format string, args ...interface{}) {
	l := Logger()
	l.Warn().Msgf(format, args...)
}

func Error(msg string) {
	l := Logger()
	l.Error().Msg(msg)
}

func Errorf(format string, args ...interface{}) {
	l := Logger()
	l.Error().Msgf(format, args...)
}

func Debug(msg string) {
	l := Logger()
	l.Debug().Msg(msg)
}

func Debugf(format string, args ...interface{}) {
	l := Logger()
	l.Debug().Msgf(format, args...)
}
