// Package logger is the logging seam shared by backlight packages.
// Components take a Logger; the CLI decides where lines go (stderr while
// debugging, a rotating file in normal use) and tests pass a BufferLogger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// DebugEnv enables debug output when set to any non-empty value.
const DebugEnv = "BACKLIGHT_DEBUG"

// Log levels as recorded by BufferLogger and printed by the stderr logger.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// DebugEnabled reports whether BACKLIGHT_DEBUG is set.
func DebugEnabled() bool {
	return os.Getenv(DebugEnv) != ""
}

// lineLogger writes one "prefix LEVEL message" line per call.
type lineLogger struct {
	mu     sync.Mutex
	out    io.Writer
	prefix string
}

// NewEnvLogger logs to stderr. Debug lines only appear while
// BACKLIGHT_DEBUG is set.
func NewEnvLogger(prefix string) Logger {
	return NewWriterLogger(os.Stderr, prefix)
}

// NewWriterLogger is NewEnvLogger writing to w.
func NewWriterLogger(w io.Writer, prefix string) Logger {
	return &lineLogger{out: w, prefix: prefix}
}

func (l *lineLogger) write(level, format string, args ...interface{}) {
	var b strings.Builder
	if l.prefix != "" {
		b.WriteString(l.prefix)
		b.WriteByte(' ')
	}
	if level != LevelInfo {
		b.WriteString(strings.ToUpper(level))
		b.WriteString(": ")
	}
	b.WriteString(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.out, b.String())
}

func (l *lineLogger) Debug(format string, args ...interface{}) {
	if DebugEnabled() {
		l.write(LevelDebug, format, args...)
	}
}

func (l *lineLogger) Info(format string, args ...interface{}) {
	l.write(LevelInfo, format, args...)
}

func (l *lineLogger) Warn(format string, args ...interface{}) {
	l.write(LevelWarn, format, args...)
}

func (l *lineLogger) Error(format string, args ...interface{}) {
	l.write(LevelError, format, args...)
}

type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(format string, args ...interface{}) {}
func (noopLogger) Info(format string, args ...interface{})  {}
func (noopLogger) Warn(format string, args ...interface{})  {}
func (noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
type BufferLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{}
}

func (l *BufferLogger) record(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.record(LevelDebug, format, args...) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.record(LevelInfo, format, args...) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.record(LevelWarn, format, args...) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.record(LevelError, format, args...) }

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	return l.find(func(m LogMessage) bool { return m.Level == level })
}

// Contains returns true if any captured message contains substr.
func (l *BufferLogger) Contains(substr string) bool {
	return l.find(func(m LogMessage) bool { return strings.Contains(m.Message, substr) })
}

func (l *BufferLogger) find(match func(LogMessage) bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Messages {
		if match(m) {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	l.Messages = nil
	l.mu.Unlock()
}
