package app

import (
	"io"

	charmLog "github.com/charmbracelet/log"
)

// charmLogger adapts a charm logger to Logger.
type charmLogger struct {
	log *charmLog.Logger
}

// NewCharmLogger wraps l so it can be handed to the store.
func NewCharmLogger(l *charmLog.Logger) Logger {
	if l == nil {
		l = charmLog.New(io.Discard)
	}
	return charmLogger{log: l}
}

// Debug logs a debug event.
func (l charmLogger) Debug(msg string, keyvals ...any) {
	l.log.Debug(msg, keyvals...)
}

// Info logs an informational event.
func (l charmLogger) Info(msg string, keyvals ...any) {
	l.log.Info(msg, keyvals...)
}

// Error logs an error event.
func (l charmLogger) Error(msg string, keyvals ...any) {
	l.log.Error(msg, keyvals...)
}

func discardLogger() Logger {
	return NewCharmLogger(nil)
}
