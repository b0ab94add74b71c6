// Structured logging for the motion controller
//
// Provides a leveled logger with structured fields, text or JSON output and
// per-component prefixes. The planner and executor log through component
// loggers so queue activity can be filtered per subsystem.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// DEBUG level for detailed debugging information
	DEBUG LogLevel = iota

	// INFO level for general informational messages
	INFO

	// WARN level for warning messages
	WARN

	// ERROR level for error messages
	ERROR
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a LogLevel
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// OutputFormat specifies the output format for log messages
type OutputFormat int

const (
	// FormatText outputs human-readable text format
	FormatText OutputFormat = iota
	// FormatJSON outputs machine-readable JSON format
	FormatJSON
)

// Fields is a map of structured logging fields
type Fields map[string]interface{}

// Logger is the main logging type
type Logger struct {
	mu         sync.Mutex
	prefix     string
	writer     io.Writer
	level      LogLevel
	timeFormat string
	outFormat  OutputFormat
	fields     Fields // persistent fields attached to this logger
}

// New creates a new logger with the given component prefix
func New(prefix string) *Logger {
	return &Logger{
		prefix:     prefix,
		writer:     os.Stderr,
		level:      INFO,
		timeFormat: "2006-01-02 15:04:05.000",
		outFormat:  FormatText,
		fields:     make(Fields),
	}
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetWriter sets the output writer (e.g., for testing)
func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// SetFormat sets the output format
func (l *Logger) SetFormat(f OutputFormat) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outFormat = f
}

// WithFields returns a child logger with additional persistent fields
func (l *Logger) WithFields(fields Fields) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	child := &Logger{
		prefix:     l.prefix,
		writer:     l.writer,
		level:      l.level,
		timeFormat: l.timeFormat,
		outFormat:  l.outFormat,
		fields:     make(Fields, len(l.fields)+len(fields)),
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for k, v := range fields {
		child.fields[k] = v
	}
	return child
}

// Component returns a child logger with a sub-component prefix
func (l *Logger) Component(name string) *Logger {
	child := l.WithFields(nil)
	if child.prefix != "" {
		child.prefix = child.prefix + "." + name
	} else {
		child.prefix = name
	}
	return child
}

// Debug logs at DEBUG level
func (l *Logger) Debug(msg string, fields ...Fields) {
	l.log(DEBUG, msg, fields...)
}

// Info logs at INFO level
func (l *Logger) Info(msg string, fields ...Fields) {
	l.log(INFO, msg, fields...)
}

// Warn logs at WARN level
func (l *Logger) Warn(msg string, fields ...Fields) {
	l.log(WARN, msg, fields...)
}

// Error logs at ERROR level
func (l *Logger) Error(msg string, fields ...Fields) {
	l.log(ERROR, msg, fields...)
}

// Debugf logs a formatted message at DEBUG level
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(DEBUG, fmt.Sprintf(format, args...))
}

// Infof logs a formatted message at INFO level
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(INFO, fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at WARN level
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(WARN, fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at ERROR level
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(ERROR, fmt.Sprintf(format, args...))
}

func (l *Logger) log(level LogLevel, msg string, extra ...Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	merged := make(Fields, len(l.fields)+4)
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, f := range extra {
		for k, v := range f {
			merged[k] = v
		}
	}

	now := time.Now()
	var line string
	if l.outFormat == FormatJSON {
		line = l.formatJSON(now, level, msg, merged)
	} else {
		line = l.formatText(now, level, msg, merged)
	}

	fmt.Fprintln(l.writer, line)
}

func (l *Logger) formatText(now time.Time, level LogLevel, msg string, fields Fields) string {
	var sb strings.Builder
	sb.WriteString(now.Format(l.timeFormat))
	sb.WriteString(" [")
	sb.WriteString(level.String())
	sb.WriteString("]")
	if l.prefix != "" {
		sb.WriteString(" ")
		sb.WriteString(l.prefix)
		sb.WriteString(":")
	}
	sb.WriteString(" ")
	sb.WriteString(msg)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, fields[k])
		}
	}
	return sb.String()
}

func (l *Logger) formatJSON(now time.Time, level LogLevel, msg string, fields Fields) string {
	entry := make(map[string]interface{}, len(fields)+4)
	for k, v := range fields {
		entry[k] = v
	}
	entry["time"] = now.Format(l.timeFormat)
	entry["level"] = level.String()
	entry["msg"] = msg
	if l.prefix != "" {
		entry["component"] = l.prefix
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"level":"ERROR","msg":"log marshal failed: %v"}`, err)
	}
	return string(data)
}

var (
	defaultMu     sync.Mutex
	defaultLogger *Logger
)

// Default returns the process-wide default logger
func Default() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New("")
	}
	return defaultLogger
}
