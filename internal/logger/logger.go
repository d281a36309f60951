package logger

import (
	"io"
	"log/slog"
	"os"
)

// Redacted replaces the value of sensitive attributes.
const Redacted = "[REDACTED]"

var sensitiveAttrs = map[string]struct{}{
	"value":        {},
	"plaintext":    {},
	"key":          {},
	"key_material": {},
	"passcode":     {},
}

// Logger represents application logger.
type Logger struct {
	*slog.Logger
}

// New creates new Logger instance with the specified level.
func New(level int) *Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter creates new Logger writing to w.
func NewWithWriter(w io.Writer, level int) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:       slog.Level(level),
			ReplaceAttr: redact,
		})),
	}
}

// Fatal is equivalent to Error followed by os.Exit(1).
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if _, ok := sensitiveAttrs[a.Key]; ok {
		return slog.String(a.Key, Redacted)
	}
	return a
}
