package app

import "github.com/hylla/gantt/internal/interaction"

// IDGenerator returns unique identifiers for new blocks.
type IDGenerator func() string

// Logger receives store diagnostics. The CLI runtime logger satisfies it.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// Locator reports where a block's row widget is currently mounted.
// *interaction.Registry satisfies it.
type Locator interface {
	BlockPosition(key string) (interaction.Point, bool)
}
