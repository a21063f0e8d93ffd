// Package extension lets optional features attach lifecycle behavior to core
// components without the core importing them.
//
// A component type is identified by a Kind token. Features register factories
// against a kind; when the core constructs an instance of that kind it calls
// Assemble, receiving a Pipeline it drives at mount, update, and unmount.
package extension

import (
	"strings"
	"sync/atomic"
)

var kindIDs atomic.Uint64

// Kind is a typed token naming one component type. T is the instance type
// handed to factories.
type Kind[T any] struct {
	id   uint64
	name string
}

// NewKind allocates a fresh token. Two calls with the same name yield distinct kinds.
func NewKind[T any](name string) Kind[T] {
	return Kind[T]{id: kindIDs.Add(1), name: strings.TrimSpace(name)}
}

// Name returns the human-readable kind name.
func (k Kind[T]) Name() string {
	return k.name
}

// Lifecycle holds the hooks one factory contributes. Nil fields are skipped.
type Lifecycle struct {
	Mount   func()
	Update  func()
	Unmount func()
}

// Factory builds a Lifecycle bound to one component instance.
type Factory[T any] func(instance T) Lifecycle

// Logger receives registration events.
type Logger interface {
	Debug(msg string, keyvals ...any)
}

// Registry stores factories per kind in registration order.
type Registry struct {
	factories map[uint64][]any
	logger    Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger reports registrations to logger.
func WithLogger(logger Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{factories: map[uint64][]any{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends factory to kind's list.
func Register[T any](r *Registry, kind Kind[T], factory Factory[T]) {
	if r == nil || factory == nil {
		return
	}
	r.factories[kind.id] = append(r.factories[kind.id], factory)
	if r.logger != nil {
		r.logger.Debug("component extension registered", "kind", kind.name, "count", len(r.factories[kind.id]))
	}
}

// Count returns how many factories are registered for kind.
func Count[T any](r *Registry, kind Kind[T]) int {
	if r == nil {
		return 0
	}
	return len(r.factories[kind.id])
}

// Assemble invokes every factory registered for kind with instance. A nil
// registry or a kind without factories yields an empty pipeline.
func Assemble[T any](r *Registry, kind Kind[T], instance T) Pipeline {
	if r == nil {
		return Pipeline{}
	}
	raw := r.factories[kind.id]
	if len(raw) == 0 {
		return Pipeline{}
	}
	stages := make([]Lifecycle, 0, len(raw))
	for _, f := range raw {
		stages = append(stages, f.(Factory[T])(instance))
	}
	return Pipeline{stages: stages}
}

// Pipeline is the assembled lifecycle list of one component instance.
type Pipeline struct {
	stages []Lifecycle
}

// Len returns the number of stages.
func (p Pipeline) Len() int {
	return len(p.stages)
}

// Mount runs every stage's Mount in registration order.
func (p Pipeline) Mount() {
	for _, s := range p.stages {
		if s.Mount != nil {
			s.Mount()
		}
	}
}

// Update runs every stage's Update in registration order.
func (p Pipeline) Update() {
	for _, s := range p.stages {
		if s.Update != nil {
			s.Update()
		}
	}
}

// Unmount runs every stage's Unmount in registration order.
func (p Pipeline) Unmount() {
	for _, s := range p.stages {
		if s.Unmount != nil {
			s.Unmount()
		}
	}
}
