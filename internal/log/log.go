// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package log wraps a process-wide zerolog logger for the command line tools.
// Command output goes to stdout through fmt; diagnostics go through this package.
package log

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	RFC3339Milli = "2006-01-02T15:04:05.000Z07:00"
)

var (
	log     zerolog.Logger
	logFile *os.File
	logMu   sync.RWMutex
)

func init() {
	// $LOG_LEVEL overrides the default so tests can raise verbosity
	if err := Init(cmp.Or(os.Getenv("LOG_LEVEL"), LogLevelWarn), "stderr"); err != nil {
		panic(err)
	}
}

// Logger provides access to the global logger
func Logger() *zerolog.Logger {
	logger := getLogger()
	return &logger
}

func getLogger() zerolog.Logger {
	logMu.RLock()
	logger := log
	logMu.RUnlock()
	return logger
}

// setLogger swaps the global logger and closes the previous log file unless
// the new logger still writes to it
func setLogger(logger zerolog.Logger, file *os.File) {
	logMu.Lock()
	prev := logFile
	log, logFile = logger, file
	logMu.Unlock()

	if prev != nil && prev != file {
		_ = prev.Close()
	}
}

// Init configures the global logger. Output is "stdout", "stderr" or a file
// path; files receive uncoloured console output.
// A file opened by an earlier Init is closed when replaced.
func Init(level, output string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}

	var out io.Writer
	var file *os.File
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr", "":
		out = os.Stderr
	default:
		file, err = os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("cannot create log output: %w", err)
		}
		out = file
	}
	w := zerolog.ConsoleWriter{Out: out, TimeFormat: RFC3339Milli, NoColor: file != nil}
	setLogger(newLogger(w, lvl), file)
	return nil
}

// InitWriter configures the global logger to write to w
func InitWriter(level string, w io.Writer) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	setLogger(newLogger(w, lvl), nil)
	return nil
}

func newLogger(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
}

func parseLevel(level string) (zerolog.Level, error) {
	switch level {
	case LogLevelDebug:
		return zerolog.DebugLevel, nil
	case LogLevelInfo:
		return zerolog.InfoLevel, nil
	case LogLevelWarn:
		return zerolog.WarnLevel, nil
	case LogLevelError:
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log level: %q", level)
	}
}

// Infof sends a formatted info level log message
func Infof(template string, args ...any) {
	Logger().Info().Msgf(template, args...)
}

// Debugw sends a debug level log message with key-value pairs.
func Debugw(msg string, keyvalues ...any) {
	Logger().Debug().Fields(keyvalues).Msg(msg)
}

// Infow sends an info level log message with key-value pairs.
func Infow(msg string, keyvalues ...any) {
	Logger().Info().Fields(keyvalues).Msg(msg)
}

// Warnw sends a warning level log message with key-value pairs.
func Warnw(msg string, keyvalues ...any) {
	Logger().Warn().Fields(keyvalues).Msg(msg)
}

// Errorw sends an error level log message with the error and key-value pairs.
func Errorw(err error, msg string, keyvalues ...any) {
	Logger().Error().Err(err).Fields(keyvalues).Msg(msg)
}
