// Package state provides the guarded, revocable transition container shared
// by every interactive widget.
package state

import "sync/atomic"

// transitionIDs is shared by every machine so handles never collide across widgets.
var transitionIDs atomic.Uint64

// Transition is the record produced by a state change and doubles as the
// handle callers pass back to Validate and Revoke.
type Transition[S comparable] struct {
	ID      uint64
	From    S
	HasFrom bool
	To      S
}

// undo is the one-level undo buffer: either noSnapshot or snapshot.
type undo[S comparable] interface {
	restore() (Transition[S], bool)
}

type noSnapshot[S comparable] struct{}

func (noSnapshot[S]) restore() (Transition[S], bool) {
	var zero Transition[S]
	return zero, false
}

type snapshot[S comparable] struct {
	record Transition[S]
}

func (s snapshot[S]) restore() (Transition[S], bool) {
	return s.record, true
}

// Listener observes the machine entering a state.
type Listener[S comparable] func(Transition[S])

// Machine holds the current record of one widget.
type Machine[S comparable] struct {
	current   Transition[S]
	prev      undo[S]
	listeners map[S][]*Listener[S]
}

// New constructs a machine resting in initial.
func New[S comparable](initial S) *Machine[S] {
	return &Machine[S]{
		current:   Transition[S]{ID: transitionIDs.Add(1), To: initial},
		prev:      noSnapshot[S]{},
		listeners: map[S][]*Listener[S]{},
	}
}

// Current returns the active state label.
func (m *Machine[S]) Current() S {
	return m.current.To
}

// Record returns the active transition record.
func (m *Machine[S]) Record() Transition[S] {
	return m.current
}

// Is reports whether the active state is one of states.
func (m *Machine[S]) Is(states ...S) bool {
	for _, s := range states {
		if s == m.current.To {
			return true
		}
	}
	return false
}

// CanRevoke reports whether an undo snapshot is held.
func (m *Machine[S]) CanRevoke() bool {
	_, ok := m.prev.restore()
	return ok
}

// TransitionOption tunes a single To call.
type TransitionOption func(*transitionOptions)

type transitionOptions struct {
	revocable bool
}

// Irrevocable discards the undo buffer instead of snapshotting into it.
func Irrevocable() TransitionOption {
	return func(o *transitionOptions) {
		o.revocable = false
	}
}

// To moves the machine to target when the active state is in from. A nil or
// empty from is unguarded. The returned bool is false when the guard rejects
// the move; the machine is then untouched.
func (m *Machine[S]) To(from []S, target S, opts ...TransitionOption) (Transition[S], bool) {
	if len(from) > 0 && !m.Is(from...) {
		return Transition[S]{}, false
	}
	cfg := transitionOptions{revocable: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.revocable {
		m.prev = snapshot[S]{record: m.current}
	} else {
		m.prev = noSnapshot[S]{}
	}
	m.current = Transition[S]{
		ID:      transitionIDs.Add(1),
		From:    m.current.To,
		HasFrom: true,
		To:      target,
	}
	m.emit()
	return m.current, true
}

// Validate reports whether handle is still the active record.
func (m *Machine[S]) Validate(handle Transition[S]) bool {
	return handle.ID != 0 && handle.ID == m.current.ID
}

// Revoke restores the record that preceded handle, provided handle is still
// active and a snapshot exists. It returns true only when a restore happened.
func (m *Machine[S]) Revoke(handle Transition[S]) bool {
	if !m.Validate(handle) {
		return false
	}
	record, ok := m.prev.restore()
	if !ok {
		return false
	}
	m.current = record
	m.prev = noSnapshot[S]{}
	m.emit()
	return true
}

// On registers fn for entries into s and returns a func that removes it.
func (m *Machine[S]) On(s S, fn Listener[S]) func() {
	entry := &fn
	m.listeners[s] = append(m.listeners[s], entry)
	return func() {
		list := m.listeners[s]
		for i, candidate := range list {
			if candidate == entry {
				m.listeners[s] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

func (m *Machine[S]) emit() {
	list := m.listeners[m.current.To]
	if len(list) == 0 {
		return
	}
	record := m.current
	for _, fn := range append([]*Listener[S](nil), list...) {
		(*fn)(record)
	}
}
