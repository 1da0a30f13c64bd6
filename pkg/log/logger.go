// Package log defines the logging interface used across the toolkit.
// Implement Logger to plug in a custom backend (e.g. logrus, zap).
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
)

// Logger is the interface all toolkit components log through.
type Logger interface {
	// Debug logs a debug message
	Debug(format string, args ...interface{})

	// Info logs an info message
	Info(format string, args ...interface{})

	// Warn logs a warning message
	Warn(format string, args ...interface{})

	// Error logs an error message
	Error(format string, args ...interface{})
}

// Level represents the logging level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

// StandardLogger is the default Logger backed by the standard library.
type StandardLogger struct {
	level  Level
	prefix string
	logger *stdlog.Logger
}

// NewStandardLogger creates a new standard logger writing to stderr.
func NewStandardLogger(prefix string, level Level) *StandardLogger {
	return &StandardLogger{
		level:  level,
		prefix: prefix,
		logger: stdlog.New(os.Stderr, "", stdlog.LstdFlags),
	}
}

// SetOutput sets the output writer.
func (l *StandardLogger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// SetLevel sets the log level.
func (l *StandardLogger) SetLevel(level Level) {
	l.level = level
}

// Debug logs a debug message.
func (l *StandardLogger) Debug(format string, args ...interface{}) {
	if l.level <= LevelDebug {
		l.log("DEBUG", format, args...)
	}
}

// Info logs an info message.
func (l *StandardLogger) Info(format string, args ...interface{}) {
	if l.level <= LevelInfo {
		l.log("INFO", format, args...)
	}
}

// Warn logs a warning message.
func (l *StandardLogger) Warn(format string, args ...interface{}) {
	if l.level <= LevelWarn {
		l.log("WARN", format, args...)
	}
}

// Error logs an error message.
func (l *StandardLogger) Error(format string, args ...interface{}) {
	if l.level <= LevelError {
		l.log("ERROR", format, args...)
	}
}

func (l *StandardLogger) log(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		l.logger.Printf("[%s] [%s] %s", l.prefix, level, msg)
	} else {
		l.logger.Printf("[%s] %s", level, msg)
	}
}

// NopLogger discards all messages.
type NopLogger struct{}

func (NopLogger) Debug(format string, args ...interface{}) {}
func (NopLogger) Info(format string, args ...interface{})  {}
func (NopLogger) Warn(format string, args ...interface{})  {}
func (NopLogger) Error(format string, args ...interface{}) {}

// FromVerbose returns a debug-level logger when verbose is set,
// otherwise a NopLogger.
func FromVerbose(prefix string, verbose bool) Logger {
	if verbose {
		return NewStandardLogger(prefix, LevelDebug)
	}
	return NopLogger{}
}

// Ensure implementations satisfy the interface
var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = NopLogger{}
)
