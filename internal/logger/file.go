package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotationConfig controls the on-disk log file.
type RotationConfig struct {
	File      string
	MaxSizeMB int
	MaxFiles  int
	Debug     bool
}

// FileLogger writes JSON lines to a size-rotated file. Front ends usually
// start backlight without a console, so this is where failures end up.
type FileLogger struct {
	zl     zerolog.Logger
	closer io.Closer
}

// NewFileLogger opens (or creates) the rotating log file described by cfg.
func NewFileLogger(cfg RotationConfig) (*FileLogger, error) {
	if cfg.File == "" {
		return nil, fmt.Errorf("log file path must not be empty")
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 1
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 3
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	writer := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxFiles,
	}

	return newFileLogger(writer, writer, cfg.Debug), nil
}

func newFileLogger(w io.Writer, closer io.Closer, debug bool) *FileLogger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return &FileLogger{
		zl:     zerolog.New(w).Level(level).With().Timestamp().Logger(),
		closer: closer,
	}
}

func (l *FileLogger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

func (l *FileLogger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

func (l *FileLogger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *FileLogger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Close flushes and closes the underlying file.
func (l *FileLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// multiLogger fans each message out to several loggers.
type multiLogger []Logger

// Multi returns a Logger that writes to every non-nil logger given.
func Multi(loggers ...Logger) Logger {
	var out multiLogger
	for _, l := range loggers {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

func (m multiLogger) Debug(format string, args ...interface{}) {
	for _, l := range m {
		l.Debug(format, args...)
	}
}

func (m multiLogger) Info(format string, args ...interface{}) {
	for _, l := range m {
		l.Info(format, args...)
	}
}

func (m multiLogger) Warn(format string, args ...interface{}) {
	for _, l := range m {
		l.Warn(format, args...)
	}
}

func (m multiLogger) Error(format string, args ...interface{}) {
	for _, l := range m {
		l.Error(format, args...)
	}
}
