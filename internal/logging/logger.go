// Package logging provides the leveled, timestamped logger shared by every
// package. It wraps zerolog: a console writer for humans on stdout and an
// optional JSON file sink for later inspection.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/backmassage/muxwatch/internal/config"
	"github.com/backmassage/muxwatch/internal/term"
)

// TimeFormat is used for console timestamps.
const TimeFormat = "2006-01-02 15:04:05"

// Logger provides leveled, optionally colored logging with optional file sink.
// Child loggers from [Logger.With] share the parent's sink; only the root
// logger owns the file.
type Logger struct {
	zl   zerolog.Logger
	file *os.File
}

// NewLogger builds the console writer from cfg and optionally opens
// cfg.LogFile. Call Close() when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	console := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		NoColor:    !term.Configure(cfg.ColorMode),
		TimeFormat: TimeFormat,
	}

	l := &Logger{}
	var w io.Writer = console
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		w = zerolog.MultiLevelWriter(console, f)
	}

	l.zl = zerolog.New(w).Level(ParseLevel(cfg.LogLevel)).With().Timestamp().Logger()
	return l, nil
}

// New returns a logger writing JSON lines to w at level. Used by tests and
// by callers that already own their writer.
func New(w io.Writer, level config.LogLevel) *Logger {
	return &Logger{zl: zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// ParseLevel maps a configured level onto zerolog. Unknown values fall back
// to info; config.Validate rejects them before we get here.
func ParseLevel(level config.LogLevel) zerolog.Level {
	switch config.LogLevel(strings.ToLower(string(level))) {
	case config.LevelDebug:
		return zerolog.DebugLevel
	case config.LevelWarn:
		return zerolog.WarnLevel
	case config.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// With returns a child logger that stamps key=value on every line.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

// Sink returns a line consumer for subprocess diagnostics. Each line is
// logged at info level tagged with source.
func (l *Logger) Sink(source string) func(string) {
	return func(line string) {
		l.zl.Info().Str("src", source).Msg(line)
	}
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

// Success logs at INFO level marked as a completed step.
func (l *Logger) Success(format string, args ...interface{}) {
	l.zl.Info().Bool("ok", true).Msg(fmt.Sprintf(format, args...))
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs at ERROR level.
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level; dropped unless the configured level is debug.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}
