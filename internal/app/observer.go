package app

import "slices"

// EventKind classifies store changes.
type EventKind string

// EventBlock and related constants name the change classes.
const (
	EventBlockAdded EventKind = "block_added"
	EventBlockTime  EventKind = "block_time"
	EventBlockIndex EventKind = "block_index"
	EventBlockField EventKind = "block_field"
	EventView       EventKind = "view"
	EventScroll     EventKind = "scroll"
)

// Event describes one store change. Key is empty for view and scroll changes.
type Event struct {
	Kind    EventKind
	Key     string
	Version uint64
}

// Version returns a counter bumped on every change. Renderers use it as a
// cache key for derived geometry.
func (s *Store) Version() uint64 {
	return s.version
}

type subscriber struct {
	id int
	fn func(Event)
}

// Subscribe registers fn for change events and returns a func that removes
// it. Subscribers are notified in registration order.
func (s *Store) Subscribe(fn func(Event)) func() {
	id := s.nextSubID
	s.nextSubID++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	return func() {
		s.subscribers = slices.DeleteFunc(s.subscribers, func(sub subscriber) bool {
			return sub.id == id
		})
	}
}

// changed bumps the version. Notification is deferred while a time cascade
// is running so subscribers see only settled state.
func (s *Store) changed(kind EventKind, key string) {
	s.version++
	if s.depth > 0 {
		return
	}
	s.notify(Event{Kind: kind, Key: key, Version: s.version})
}

func (s *Store) notify(ev Event) {
	for _, sub := range slices.Clone(s.subscribers) {
		sub.fn(ev)
	}
}
