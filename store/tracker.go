package store

import (
	"github.com/mlange-42/ark/ecs"
)

// EventKind classifies a component change.
type EventKind uint8

// Component change kinds.
const (
	Inserted EventKind = iota
	Modified
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Inserted:
		return "inserted"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Event is one entry in a storage's change log.
type Event struct {
	Kind   EventKind
	Entity ecs.Entity
}

// eventLog is an append-only log addressed by absolute sequence numbers.
// Entries every registered cursor has passed are discarded.
type eventLog struct {
	events  []Event
	base    uint64
	cursors []*uint64
}

func (l *eventLog) head() uint64 {
	return l.base + uint64(len(l.events))
}

func (l *eventLog) push(ev Event) {
	if len(l.cursors) == 0 {
		l.base++
		return
	}
	l.events = append(l.events, ev)
}

func (l *eventLog) register() *uint64 {
	c := l.head()
	l.cursors = append(l.cursors, &c)
	return &c
}

func (l *eventLog) since(cursor uint64) []Event {
	if cursor < l.base {
		cursor = l.base
	}
	return l.events[cursor-l.base:]
}

// compact drops the prefix every cursor has consumed.
func (l *eventLog) compact() {
	low := l.head()
	for _, c := range l.cursors {
		if *c < low {
			low = *c
		}
	}
	n := int(low - l.base)
	if n <= 0 {
		return
	}
	rest := len(l.events) - n
	copy(l.events, l.events[n:])
	l.events = l.events[:rest]
	l.base = low
}

// Tracker reads a storage's change log with its own cursor. Call Update once
// per frame; the sets then describe every change since the previous Update.
type Tracker[T any] struct {
	log      *eventLog
	cursor   *uint64
	inserted entitySet
	modified entitySet
	removed  entitySet
}

func newTracker[T any](log *eventLog) *Tracker[T] {
	return &Tracker[T]{
		log:    log,
		cursor: log.register(),
	}
}

// Update consumes pending events and rebuilds the inserted, modified and
// removed sets. An entity inserted and removed within the same window appears
// in both sets.
func (t *Tracker[T]) Update() {
	t.inserted.reset()
	t.modified.reset()
	t.removed.reset()
	for _, ev := range t.log.since(*t.cursor) {
		switch ev.Kind {
		case Inserted:
			t.inserted.add(ev.Entity)
		case Modified:
			t.modified.add(ev.Entity)
		case Removed:
			t.removed.add(ev.Entity)
		}
	}
	*t.cursor = t.log.head()
	t.log.compact()
}

// Inserted returns the entities that received the component, in event order.
func (t *Tracker[T]) Inserted() []ecs.Entity { return t.inserted.order }

// Modified returns the entities whose component was overwritten.
func (t *Tracker[T]) Modified() []ecs.Entity { return t.modified.order }

// Removed returns the entities that lost the component.
func (t *Tracker[T]) Removed() []ecs.Entity { return t.removed.order }

// WasInserted reports whether e is in the inserted set.
func (t *Tracker[T]) WasInserted(e ecs.Entity) bool { return t.inserted.has(e) }

// WasRemoved reports whether e is in the removed set.
func (t *Tracker[T]) WasRemoved(e ecs.Entity) bool { return t.removed.has(e) }

// Changed returns the union of inserted and removed entities, in event order.
func (t *Tracker[T]) Changed() []ecs.Entity {
	var set entitySet
	for _, e := range t.inserted.order {
		set.add(e)
	}
	for _, e := range t.removed.order {
		set.add(e)
	}
	return set.order
}

// entitySet is an insertion-ordered set.
type entitySet struct {
	order []ecs.Entity
	index map[ecs.Entity]struct{}
}

func (s *entitySet) add(e ecs.Entity) {
	if s.index == nil {
		s.index = make(map[ecs.Entity]struct{})
	}
	if _, ok := s.index[e]; ok {
		return
	}
	s.index[e] = struct{}{}
	s.order = append(s.order, e)
}

func (s *entitySet) has(e ecs.Entity) bool {
	_, ok := s.index[e]
	return ok
}

func (s *entitySet) reset() {
	s.order = nil
	clear(s.index)
}
