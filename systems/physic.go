package systems

import (
	"github.com/mlange-42/ark/ecs"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/store"
)

// PhysicSyncSystem admits and evicts adapter handles as the Physic tag comes
// and goes, and keeps the body status in line with the Dynamic tag. An entity
// tagged Physic before it has a Position is admitted once the Position arrives.
type PhysicSyncSystem struct {
	physic   *store.Tracker[components.Physic]
	dynamic  *store.Tracker[components.Dynamic]
	position *store.Tracker[components.Position]
}

// NewPhysicSyncSystem creates the pass. It only sees changes made after this call.
func NewPhysicSyncSystem(w *World) *PhysicSyncSystem {
	return &PhysicSyncSystem{
		physic:   w.Physic.Track(),
		dynamic:  w.Dynamic.Track(),
		position: w.Position.Track(),
	}
}

// Update runs the pass.
func (s *PhysicSyncSystem) Update(w *World) {
	s.physic.Update()
	s.dynamic.Update()
	s.position.Update()

	// The event sets may contain the same entity twice; the current state decides.
	for _, e := range s.physic.Removed() {
		if !w.Physic.Has(e) && w.Physix.Has(e) {
			w.Physix.Remove(e)
		}
	}
	for _, e := range s.physic.Inserted() {
		admit(w, e)
	}
	for _, e := range s.position.Inserted() {
		admit(w, e)
	}
	for _, e := range s.dynamic.Changed() {
		if w.Physix.Has(e) {
			w.Physix.SetDynamic(e, ptr(w.Dynamic, e))
		}
	}
}

func admit(w *World, e ecs.Entity) {
	if !w.Physic.Has(e) || w.Physix.Has(e) {
		return
	}
	pos, ok := w.Position.Get(e)
	if !ok {
		return
	}
	w.Physix.Insert(e, pos)
	w.Physix.SetDynamic(e, ptr(w.Dynamic, e))
}

// PhysicForceSystem integrates gravity and acceleration into the velocity of
// dynamic entities, then clears every Acceleration.
type PhysicForceSystem struct{}

// NewPhysicForceSystem creates the pass.
func NewPhysicForceSystem() *PhysicForceSystem {
	return &PhysicForceSystem{}
}

// Update runs the pass.
func (s *PhysicForceSystem) Update(w *World) {
	dt := w.Time.FrameTime
	for _, e := range w.Dynamic.Entities() {
		if !w.Physic.Has(e) {
			continue
		}
		g, _ := w.Gravity.Get(e)
		acc, _ := w.Acceleration.Get(e)
		w.Velocity.Update(e, func(v *components.Velocity) {
			v.Linear.Y += g.Y * dt
			v.Linear = r2.Add(v.Linear, r2.Scale(dt, acc.Linear))
			v.Angular += acc.Angular * dt
		})
	}
	w.Acceleration.Clear()
}

// PhysicReadSystem pushes component values into the adapter. Absent optional
// components reset the adapter to its defaults.
type PhysicReadSystem struct{}

// NewPhysicReadSystem creates the pass.
func NewPhysicReadSystem() *PhysicReadSystem {
	return &PhysicReadSystem{}
}

// Update runs the pass.
func (s *PhysicReadSystem) Update(w *World) {
	px := w.Physix
	for _, e := range w.Physic.Entities() {
		if !px.Has(e) {
			continue
		}
		pos, okPos := w.Position.Get(e)
		rot, okRot := w.Rotation.Get(e)
		if !okPos || !okRot {
			continue
		}
		px.SetPosition(e, pos)
		px.SetRotation(e, rot)
		px.SetVelocity(e, ptr(w.Velocity, e))
		px.SetVelocityLimit(e, ptr(w.VelocityLimit, e))
		px.SetVelocityDamping(e, ptr(w.VelocityDamping, e))
		px.SetMass(e, ptr(w.Mass, e))
		px.SetShape(e, ptr(w.Shape, e))
		px.SetMaterial(e, ptr(w.Material, e))
		px.SetCollision(e, ptr(w.Collision, e))
		px.SetSensor(e, ptr(w.Sensor, e))
	}
}

// PhysicUpdateSystem steps the engine by the frame time.
type PhysicUpdateSystem struct{}

// NewPhysicUpdateSystem creates the pass.
func NewPhysicUpdateSystem() *PhysicUpdateSystem {
	return &PhysicUpdateSystem{}
}

// Update runs the pass.
func (s *PhysicUpdateSystem) Update(w *World) {
	w.Physix.Step(w.Time.FrameTime)
}

// PhysicFollowSystem moves followers towards their target inside the adapter.
// A spring takes precedence over a lag; without either the follower snaps.
type PhysicFollowSystem struct{}

// NewPhysicFollowSystem creates the pass.
func NewPhysicFollowSystem() *PhysicFollowSystem {
	return &PhysicFollowSystem{}
}

// Update runs the pass.
func (s *PhysicFollowSystem) Update(w *World) {
	px := w.Physix
	dt := w.Time.FrameTime
	w.Follow.Each(func(e ecs.Entity, f components.Follow) {
		if !px.Has(e) {
			return
		}
		if !px.Has(f.Target) {
			w.Log.Debug("follow target not simulated",
				zap.Uint32("follower", e.ID()), zap.Uint32("target", f.Target.ID()))
			return
		}
		target := px.Position(f.Target).Vec()
		pos := px.Position(e).Vec()
		vel := px.Velocity(e)

		if spring, ok := w.FollowSpring.Get(e); ok {
			force := r2.Scale(spring.Stiffness, r2.Sub(target, pos))
			damp := r2.Scale(spring.Damping, vel.Linear)
			vel.Linear = r2.Add(vel.Linear, r2.Scale(dt, r2.Sub(force, damp)))
			pos = r2.Add(pos, r2.Scale(dt, vel.Linear))
		} else if lag, ok := w.FollowLag.Get(e); ok {
			pos = components.Lerp(target, pos, lag.Lag)
		} else {
			pos = target
		}

		px.SetPosition(e, components.PositionOf(pos))
		px.SetVelocity(e, &vel)
	})
}

// PhysicInteractionSystem rebuilds the interaction index from the last step.
type PhysicInteractionSystem struct{}

// NewPhysicInteractionSystem creates the pass.
func NewPhysicInteractionSystem() *PhysicInteractionSystem {
	return &PhysicInteractionSystem{}
}

// Update runs the pass.
func (s *PhysicInteractionSystem) Update(w *World) {
	w.Physix.UpdateInteractions()
}

// PhysicWriteSystem copies simulated state back into the store. Components are
// only written when the value changed so change events stay meaningful.
type PhysicWriteSystem struct{}

// NewPhysicWriteSystem creates the pass.
func NewPhysicWriteSystem() *PhysicWriteSystem {
	return &PhysicWriteSystem{}
}

// Update runs the pass.
func (s *PhysicWriteSystem) Update(w *World) {
	px := w.Physix
	for _, e := range w.Physic.Entities() {
		if !px.Has(e) {
			continue
		}
		if cur, ok := w.Position.Get(e); ok {
			if next := px.Position(e); next != cur {
				w.Position.Insert(e, next)
			}
		}
		if cur, ok := w.Rotation.Get(e); ok {
			if next := px.Rotation(e); next != cur {
				w.Rotation.Insert(e, next)
			}
		}
		if cur, ok := w.Velocity.Get(e); ok {
			if next := px.Velocity(e); next != cur {
				w.Velocity.Insert(e, next)
			}
		}
	}
}
