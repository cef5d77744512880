package store

import (
	"github.com/mlange-42/ark/ecs"
)

// Storage holds one component type. Values live in an ark component column;
// the storage keeps the entity index and the change-event log.
type Storage[T any] struct {
	store   *Store
	name    string
	columns *ecs.Map[T]
	dense   []ecs.Entity
	index   map[ecs.Entity]int
	log     eventLog
}

// Register creates the storage for component type T. Each component type is
// registered once per store; registering twice yields two independent storages
// over the same ark column, which is a programming error.
func Register[T any](s *Store, name string) *Storage[T] {
	st := &Storage[T]{
		store:   s,
		name:    name,
		columns: ecs.NewMap[T](s.world),
		index:   make(map[ecs.Entity]int),
	}
	s.storages = append(s.storages, st)
	return st
}

// Name returns the component name given at registration.
func (st *Storage[T]) Name() string {
	return st.name
}

// Len returns the number of entities carrying the component.
func (st *Storage[T]) Len() int {
	return len(st.dense)
}

// Has reports whether the entity carries the component.
func (st *Storage[T]) Has(e ecs.Entity) bool {
	_, ok := st.index[e]
	return ok
}

// Get returns a copy of the component.
func (st *Storage[T]) Get(e ecs.Entity) (T, bool) {
	if _, ok := st.index[e]; !ok {
		var zero T
		return zero, false
	}
	return *st.columns.Get(e), true
}

// MustGet returns the component or panics when it is absent.
func (st *Storage[T]) MustGet(e ecs.Entity) T {
	v, ok := st.Get(e)
	if !ok {
		panic("store: entity has no " + st.name)
	}
	return v
}

// Insert writes the component. A new component emits Inserted, replacing an
// existing one emits Modified.
func (st *Storage[T]) Insert(e ecs.Entity, v T) {
	if _, ok := st.index[e]; ok {
		*st.columns.Get(e) = v
		st.log.push(Event{Kind: Modified, Entity: e})
		return
	}
	if !st.store.world.Alive(e) {
		panic("store: insert " + st.name + " on dead entity")
	}
	st.columns.Add(e, &v)
	st.index[e] = len(st.dense)
	st.dense = append(st.dense, e)
	st.log.push(Event{Kind: Inserted, Entity: e})
}

// Update mutates the component in place and emits Modified. It returns false
// when the entity does not carry the component.
func (st *Storage[T]) Update(e ecs.Entity, fn func(v *T)) bool {
	if _, ok := st.index[e]; !ok {
		return false
	}
	fn(st.columns.Get(e))
	st.log.push(Event{Kind: Modified, Entity: e})
	return true
}

// Upsert mutates the component, inserting def first when it is absent.
func (st *Storage[T]) Upsert(e ecs.Entity, def T, fn func(v *T)) {
	if _, ok := st.index[e]; !ok {
		fn(&def)
		st.Insert(e, def)
		return
	}
	st.Update(e, fn)
}

// Remove deletes the component and emits Removed. It returns false when the
// entity did not carry it.
func (st *Storage[T]) Remove(e ecs.Entity) bool {
	return st.drop(e)
}

func (st *Storage[T]) drop(e ecs.Entity) bool {
	i, ok := st.index[e]
	if !ok {
		return false
	}
	last := len(st.dense) - 1
	moved := st.dense[last]
	st.dense[i] = moved
	st.index[moved] = i
	st.dense = st.dense[:last]
	delete(st.index, e)
	if st.store.world.Alive(e) {
		st.columns.Remove(e)
	}
	st.log.push(Event{Kind: Removed, Entity: e})
	return true
}

// Clear removes the component from every entity.
func (st *Storage[T]) Clear() {
	for _, e := range st.Entities() {
		st.drop(e)
	}
}

// Entities returns a snapshot of the entities carrying the component. The
// snapshot is safe to iterate while the storage is mutated.
func (st *Storage[T]) Entities() []ecs.Entity {
	out := make([]ecs.Entity, len(st.dense))
	copy(out, st.dense)
	return out
}

// Each calls fn for every entity carrying the component, iterating a snapshot.
func (st *Storage[T]) Each(fn func(e ecs.Entity, v T)) {
	for _, e := range st.Entities() {
		if v, ok := st.Get(e); ok {
			fn(e, v)
		}
	}
}

// Track registers a new independent reader of the change-event log. The
// tracker only sees events written after this call.
func (st *Storage[T]) Track() *Tracker[T] {
	return newTracker[T](&st.log)
}
