package components

import (
	"github.com/mlange-42/ark/ecs"
)

// Lifetime destroys its entity once the game clock reaches Expiry.
type Lifetime struct {
	Expiry float64
}

// Kind names the component a deferred mutation targets.
type Kind uint8

const (
	KindContact Kind = iota
	KindSlow
	KindBlink
	KindSqueeze
	KindSurprise
	KindRotationAnimation
	KindShapeAnimation
	KindTextureSlotAnimation
	KindOpacityAnimation
)

var kindNames = [...]string{
	KindContact:              "contact",
	KindSlow:                 "slow",
	KindBlink:                "blink",
	KindSqueeze:              "squeeze",
	KindSurprise:             "surprise",
	KindRotationAnimation:    "rotation_animation",
	KindShapeAnimation:       "shape_animation",
	KindTextureSlotAnimation: "texture_slot_animation",
	KindOpacityAnimation:     "opacity_animation",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Op is the mutation applied at expiry.
type Op uint8

const (
	OpInsert Op = iota
	OpRemove
)

// Mutation is one deferred component insert or remove.
type Mutation struct {
	Entity  ecs.Entity
	Kind    Kind
	Op      Op
	Expiry  float64
	Payload any // component value for OpInsert
}

type mutationKey struct {
	entity ecs.Entity
	kind   Kind
	op     Op
}

// Schedule queues deferred mutations by absolute expiry time. There is at most
// one pending mutation per (entity, kind, op); scheduling again replaces it.
type Schedule struct {
	entries []Mutation
	index   map[mutationKey]int
}

// NewSchedule creates an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{index: make(map[mutationKey]int)}
}

// Insert schedules payload to be inserted as kind on e at expiry.
func (s *Schedule) Insert(e ecs.Entity, kind Kind, expiry float64, payload any) {
	s.put(Mutation{Entity: e, Kind: kind, Op: OpInsert, Expiry: expiry, Payload: payload})
}

// Remove schedules removal of kind from e at expiry.
func (s *Schedule) Remove(e ecs.Entity, kind Kind, expiry float64) {
	s.put(Mutation{Entity: e, Kind: kind, Op: OpRemove, Expiry: expiry})
}

func (s *Schedule) put(m Mutation) {
	key := mutationKey{m.Entity, m.Kind, m.Op}
	if i, ok := s.index[key]; ok {
		s.entries[i] = m
		return
	}
	s.index[key] = len(s.entries)
	s.entries = append(s.entries, m)
}

// Pending returns the queued mutation for (e, kind, op).
func (s *Schedule) Pending(e ecs.Entity, kind Kind, op Op) (Mutation, bool) {
	i, ok := s.index[mutationKey{e, kind, op}]
	if !ok {
		return Mutation{}, false
	}
	return s.entries[i], true
}

// Len returns the number of queued mutations.
func (s *Schedule) Len() int {
	return len(s.entries)
}

// Due removes and returns every mutation with Expiry <= now, in scheduling order.
func (s *Schedule) Due(now float64) []Mutation {
	var due []Mutation
	kept := s.entries[:0]
	for _, m := range s.entries {
		if now >= m.Expiry {
			due = append(due, m)
			continue
		}
		kept = append(kept, m)
	}
	if len(due) == 0 {
		return nil
	}
	clear(s.entries[len(kept):])
	s.entries = kept
	s.reindex()
	return due
}

// Forget drops every mutation queued for e.
func (s *Schedule) Forget(e ecs.Entity) {
	kept := s.entries[:0]
	for _, m := range s.entries {
		if m.Entity != e {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(s.entries) {
		return
	}
	clear(s.entries[len(kept):])
	s.entries = kept
	s.reindex()
}

func (s *Schedule) reindex() {
	clear(s.index)
	for i, m := range s.entries {
		s.index[mutationKey{m.Entity, m.Kind, m.Op}] = i
	}
}
