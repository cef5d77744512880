// Package store provides the entity/component store used by the simulation.
//
// Entity identity and component columns live in an ark world. Every component
// type is wrapped in a Storage that keeps a dense entity index for iteration and
// an append-only event log (insert/modify/remove) that any number of Trackers
// read with their own cursor.
//
// Entity creation and destruction requested while a frame is running are
// queued and applied at Maintain, so passes never observe an entity set that
// changes underneath their iteration.
package store

import (
	"cmp"
	"slices"

	"github.com/mlange-42/ark/ecs"
)

// entityMeta is attached to every entity so ark allocates it an archetype slot.
type entityMeta struct {
	Serial uint64
}

// dropper is implemented by every Storage so Maintain can strip destroyed entities.
type dropper interface {
	drop(e ecs.Entity) bool
	Name() string
}

// Store owns the ark world and the registry of component storages.
type Store struct {
	world    *ecs.World
	metaMap  *ecs.Map[entityMeta]
	storages []dropper

	serial    uint64
	spawns    []func(s *Store, e ecs.Entity)
	destroys  []ecs.Entity
	doomed    map[ecs.Entity]struct{}
	deferred  []func(s *Store)
	maintains uint64
}

// New creates an empty store.
func New() *Store {
	world := ecs.NewWorld()
	return &Store{
		world:   world,
		metaMap: ecs.NewMap[entityMeta](world),
		doomed:  make(map[ecs.Entity]struct{}),
	}
}

// World exposes the underlying ark world.
func (s *Store) World() *ecs.World {
	return s.world
}

// Create allocates an entity immediately. Use it while building a scene;
// systems running inside a frame use Spawn.
func (s *Store) Create() ecs.Entity {
	s.serial++
	return s.metaMap.NewEntity(&entityMeta{Serial: s.serial})
}

// Spawn queues an entity creation. The entity is allocated at the next
// Maintain and build is called with it to attach components.
func (s *Store) Spawn(build func(s *Store, e ecs.Entity)) {
	s.spawns = append(s.spawns, build)
}

// Destroy queues an entity for removal at the next Maintain. Destroying the
// same entity twice is harmless.
func (s *Store) Destroy(e ecs.Entity) {
	if _, ok := s.doomed[e]; ok {
		return
	}
	s.doomed[e] = struct{}{}
	s.destroys = append(s.destroys, e)
}

// Defer queues an arbitrary mutation to run at the next Maintain, after
// spawns and destructions.
func (s *Store) Defer(fn func(s *Store)) {
	s.deferred = append(s.deferred, fn)
}

// Alive reports whether the entity exists and is not queued for destruction.
func (s *Store) Alive(e ecs.Entity) bool {
	if !s.world.Alive(e) {
		return false
	}
	_, doomed := s.doomed[e]
	return !doomed
}

// Pending reports the number of queued spawns and destructions.
func (s *Store) Pending() (spawns, destroys int) {
	return len(s.spawns), len(s.destroys)
}

// Maintains returns how many frame boundaries the store has crossed.
func (s *Store) Maintains() uint64 {
	return s.maintains
}

// Maintain applies queued spawns, destructions and deferred mutations.
// Destroyed entities emit Removed events for every component they carried.
func (s *Store) Maintain() {
	spawns := s.spawns
	s.spawns = nil
	for _, build := range spawns {
		build(s, s.Create())
	}

	destroys := s.destroys
	s.destroys = nil
	for _, e := range destroys {
		delete(s.doomed, e)
		if !s.world.Alive(e) {
			continue
		}
		for _, st := range s.storages {
			st.drop(e)
		}
		s.world.RemoveEntity(e)
	}

	deferred := s.deferred
	s.deferred = nil
	for _, fn := range deferred {
		fn(s)
	}
	s.maintains++
}

// Entities returns every live entity in creation order.
func (s *Store) Entities() []ecs.Entity {
	filter := ecs.NewFilter1[entityMeta](s.world)
	query := filter.Query()
	type ordered struct {
		e      ecs.Entity
		serial uint64
	}
	var out []ordered
	for query.Next() {
		meta := query.Get()
		out = append(out, ordered{query.Entity(), meta.Serial})
	}
	slices.SortFunc(out, func(a, b ordered) int { return cmp.Compare(a.serial, b.serial) })
	entities := make([]ecs.Entity, len(out))
	for i, o := range out {
		entities[i] = o.e
	}
	return entities
}

// Count returns the number of live entities.
func (s *Store) Count() int {
	filter := ecs.NewFilter1[entityMeta](s.world)
	query := filter.Query()
	n := 0
	for query.Next() {
		n++
	}
	return n
}
