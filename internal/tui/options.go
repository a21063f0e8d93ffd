package tui

import (
	"github.com/atotto/clipboard"

	"github.com/hylla/gantt/internal/app"
	"github.com/hylla/gantt/internal/domain"
	"github.com/hylla/gantt/internal/extension"
	"github.com/hylla/gantt/internal/features/constraint"
)

// defaultColumnPx is how many canvas pixels one terminal column covers.
const defaultColumnPx = 10

// KeyConfig holds user-configurable key overrides.
type KeyConfig struct {
	CycleMode   string
	ToggleSort  string
	ToggleTheme string
	JumpStart   string
	JumpEnd     string
	Info        string
	Yank        string
}

// RuntimeConfig holds settings that can change while the program runs.
type RuntimeConfig struct {
	View     domain.ViewConfig
	ColumnPx int
	Keys     KeyConfig
}

// RuntimeUpdate carries a pushed config change, typically from a file watcher.
type RuntimeUpdate struct {
	Config RuntimeConfig
	Err    error
}

// ReloadConfigFunc loads runtime config on demand.
type ReloadConfigFunc func() (RuntimeConfig, error)

type Option func(*Model)

// WithExtensions sets the registry whose cell and container extensions the
// timeline assembles.
func WithExtensions(reg *extension.Registry) Option {
	return func(m *Model) {
		if reg != nil {
			m.extensions = reg
		}
	}
}

// WithConstraints enables link editing against feature.
func WithConstraints(feature *constraint.Feature) Option {
	return func(m *Model) {
		m.constraints = feature
	}
}

func WithRuntimeConfig(cfg RuntimeConfig) Option {
	return func(m *Model) {
		m.pendingConfig = &cfg
	}
}

func WithReloadConfigCallback(fn ReloadConfigFunc) Option {
	return func(m *Model) {
		m.reloadConfig = fn
	}
}

// WithRuntimeUpdates subscribes the model to pushed config changes.
func WithRuntimeUpdates(ch <-chan RuntimeUpdate) Option {
	return func(m *Model) {
		m.updates = ch
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

func WithLogger(logger app.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func defaultClipboard(text string) error {
	return clipboard.WriteAll(text)
}
