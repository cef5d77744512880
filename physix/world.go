// Package physix keeps a jakecoffman/cp space consistent with the component store.
//
// Every admitted entity owns one body and two colliders: a solid contact
// collider and a sensor collider. Both colliders share the body's shape and
// carry their own group masks. Bodies without the Dynamic tag are kinematic
// bodies holding zero engine velocity; the velocity the store assigned to them
// is kept on the handle so it round-trips unchanged.
package physix

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/jakecoffman/cp"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/components"
)

// minMass replaces a zero mass on dynamic bodies; the engine requires a positive mass.
const minMass = 1e-6

// minExtent keeps zero-sized rectangles valid for the engine.
const minExtent = 1e-6

// handle is everything the adapter knows about one admitted entity.
type handle struct {
	entity  ecs.Entity
	seq     uint64
	body    *cp.Body
	contact *cp.Shape
	sensor  *cp.Shape

	dynamic  bool
	velocity components.Velocity // logical velocity while non-dynamic
	accel    components.Acceleration

	limit     components.VelocityLimit
	damping   components.VelocityDamping
	mass      components.Mass
	shape     components.Shape
	material  components.Material
	collision *components.Collision
	sensing   *components.Sensor
}

// World is the physics world adapter.
type World struct {
	space   *cp.Space
	handles map[ecs.Entity]*handle
	seq     uint64

	touching     map[pairKey]touch
	prevSensors  map[pairKey]struct{}
	interactions map[ecs.Entity][]Interaction
	active       []ecs.Entity
}

// NewWorld creates an empty world with zero gravity. Gravity is applied per
// body through the Gravity component.
func NewWorld(iterations int) *World {
	space := newSpace()
	space.SetGravity(cp.Vector{})
	if iterations > 0 {
		space.Iterations = uint(iterations)
	}
	w := &World{
		space:        space,
		handles:      make(map[ecs.Entity]*handle),
		touching:     make(map[pairKey]touch),
		prevSensors:  make(map[pairKey]struct{}),
		interactions: make(map[ecs.Entity][]Interaction),
	}
	handler := space.NewCollisionHandler(0, 0)
	handler.PreSolveFunc = w.preSolve
	return w
}

// Insert admits an entity at pos with a non-dynamic body and two zero-radius
// ball colliders that collide with nothing. Inserting an admitted entity is a no-op.
func (w *World) Insert(e ecs.Entity, pos components.Position) {
	if _, ok := w.handles[e]; ok {
		return
	}
	w.seq++
	h := &handle{entity: e, seq: w.seq, shape: components.Ball(0)}

	h.body = w.space.AddBody(newKinematicBody())
	h.body.SetPosition(toCP(pos.Vec()))
	h.body.UserData = h
	h.body.SetVelocityUpdateFunc(h.updateVelocity)

	h.contact = w.addShape(h, h.shape, false)
	h.sensor = w.addShape(h, h.shape, true)
	w.handles[e] = h
}

// Remove frees the body and both colliders. Unknown entities are ignored.
func (w *World) Remove(e ecs.Entity) {
	h, ok := w.handles[e]
	if !ok {
		return
	}
	w.space.RemoveShape(h.contact)
	w.space.RemoveShape(h.sensor)
	w.space.RemoveBody(h.body)
	delete(w.handles, e)

	for key := range w.touching {
		if key.involves(h) {
			delete(w.touching, key)
		}
	}
	for key := range w.prevSensors {
		if key.involves(h) {
			delete(w.prevSensors, key)
		}
	}
}

// Has reports whether the entity is admitted.
func (w *World) Has(e ecs.Entity) bool {
	_, ok := w.handles[e]
	return ok
}

// Handles returns the number of admitted entities.
func (w *World) Handles() int {
	return len(w.handles)
}

// Entities returns the admitted entities in admission order.
func (w *World) Entities() []ecs.Entity {
	hs := make([]*handle, 0, len(w.handles))
	for _, h := range w.handles {
		hs = append(hs, h)
	}
	slices.SortFunc(hs, func(a, b *handle) int { return cmp.Compare(a.seq, b.seq) })
	out := make([]ecs.Entity, len(hs))
	for i, h := range hs {
		out[i] = h.entity
	}
	return out
}

// Step advances the simulation by dt seconds. Touching collider pairs are
// recorded during the step and turned into interactions by UpdateInteractions.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	clear(w.touching)
	w.space.Step(dt)
}

// cp numbers every body it creates from one unguarded package-level counter,
// so worlds on different goroutines must not create bodies at the same time.
var bodyMu sync.Mutex

func newSpace() *cp.Space {
	bodyMu.Lock()
	defer bodyMu.Unlock()
	return cp.NewSpace()
}

func newKinematicBody() *cp.Body {
	bodyMu.Lock()
	defer bodyMu.Unlock()
	return cp.NewKinematicBody()
}

// get panics on entities that were never admitted; systems guarantee
// admission before any accessor runs.
func (w *World) get(e ecs.Entity) *handle {
	h, ok := w.handles[e]
	if !ok {
		panic(fmt.Sprintf("physix: entity %v not found", e))
	}
	return h
}

// +++ Position & rotation +++

// Position returns the simulated body position.
func (w *World) Position(e ecs.Entity) components.Position {
	return components.PositionOf(fromCP(w.get(e).body.Position()))
}

// SetPosition moves the body.
func (w *World) SetPosition(e ecs.Entity, pos components.Position) {
	w.get(e).body.SetPosition(toCP(pos.Vec()))
}

// Rotation returns the simulated body angle.
func (w *World) Rotation(e ecs.Entity) components.Rotation {
	return components.Rotation{Angle: w.get(e).body.Angle()}
}

// SetRotation turns the body.
func (w *World) SetRotation(e ecs.Entity, rot components.Rotation) {
	w.get(e).body.SetAngle(rot.Angle)
}

// +++ Status +++

// SetDynamic switches the body between simulated (non-nil) and non-dynamic (nil).
// The current velocity is carried across the switch.
func (w *World) SetDynamic(e ecs.Entity, d *components.Dynamic) {
	h := w.get(e)
	dynamic := d != nil
	if dynamic == h.dynamic {
		return
	}
	if dynamic {
		h.body.SetType(cp.BODY_DYNAMIC)
		h.dynamic = true
		h.applyMass()
		h.body.SetVelocityVector(toCP(h.velocity.Linear))
		h.body.SetAngularVelocity(h.velocity.Angular)
		h.body.Activate()
		return
	}
	h.velocity = h.bodyVelocity()
	h.dynamic = false
	h.accel = components.Acceleration{}
	h.body.SetType(cp.BODY_KINEMATIC)
	h.body.SetVelocityVector(cp.Vector{})
	h.body.SetAngularVelocity(0)
}

// IsDynamic reports whether the body is simulated.
func (w *World) IsDynamic(e ecs.Entity) bool {
	return w.get(e).dynamic
}

// +++ Velocity +++

// Velocity returns the body velocity.
func (w *World) Velocity(e ecs.Entity) components.Velocity {
	h := w.get(e)
	if h.dynamic {
		return h.bodyVelocity()
	}
	return h.velocity
}

// SetVelocity overwrites the velocity; nil means at rest.
func (w *World) SetVelocity(e ecs.Entity, v *components.Velocity) {
	h := w.get(e)
	h.velocity = orDefault(v)
	if h.dynamic {
		h.body.SetVelocityVector(toCP(h.velocity.Linear))
		h.body.SetAngularVelocity(h.velocity.Angular)
	}
}

// VelocityLimit returns the active velocity limit.
func (w *World) VelocityLimit(e ecs.Entity) components.VelocityLimit {
	return w.get(e).limit
}

// SetVelocityLimit sets the speed caps; nil clamps every velocity to zero.
func (w *World) SetVelocityLimit(e ecs.Entity, l *components.VelocityLimit) {
	w.get(e).limit = orDefault(l)
}

// VelocityDamping returns the active damping.
func (w *World) VelocityDamping(e ecs.Entity) components.VelocityDamping {
	return w.get(e).damping
}

// SetVelocityDamping sets the damping; nil disables damping.
func (w *World) SetVelocityDamping(e ecs.Entity, d *components.VelocityDamping) {
	w.get(e).damping = orDefault(d)
}

// ApplyForceVel adds a velocity change to a dynamic body. Non-dynamic bodies ignore forces.
func (w *World) ApplyForceVel(e ecs.Entity, linear r2.Vec, angular float64) {
	h := w.get(e)
	if !h.dynamic {
		return
	}
	v := h.bodyVelocity()
	h.body.SetVelocityVector(toCP(r2.Add(v.Linear, linear)))
	h.body.SetAngularVelocity(v.Angular + angular)
	h.body.Activate()
}

// ApplyForceAcc adds an acceleration to a dynamic body. It is integrated over
// the next step and then discarded.
func (w *World) ApplyForceAcc(e ecs.Entity, linear r2.Vec, angular float64) {
	h := w.get(e)
	if !h.dynamic {
		return
	}
	h.accel.Linear = r2.Add(h.accel.Linear, linear)
	h.accel.Angular += angular
	h.body.Activate()
}

// +++ Mass +++

// Mass returns the configured mass.
func (w *World) Mass(e ecs.Entity) components.Mass {
	return w.get(e).mass
}

// SetMass sets linear mass and angular inertia; nil means zero for both.
// A zero angular inertia locks rotation.
func (w *World) SetMass(e ecs.Entity, m *components.Mass) {
	h := w.get(e)
	h.mass = orDefault(m)
	if h.dynamic {
		h.applyMass()
	}
}

func (h *handle) applyMass() {
	mass := h.mass.Linear
	if mass <= 0 {
		mass = minMass
	}
	h.body.SetMass(mass)
	if h.mass.Angular > 0 {
		h.body.SetMoment(h.mass.Angular)
	} else {
		h.body.SetMoment(math.Inf(1))
	}
}

// +++ Colliders +++

// Shape returns the collider shape.
func (w *World) Shape(e ecs.Entity) components.Shape {
	return w.get(e).shape
}

// SetShape replaces both colliders' geometry; nil is a zero-radius ball.
func (w *World) SetShape(e ecs.Entity, s *components.Shape) {
	h := w.get(e)
	shape := orDefault(s)
	if shape == h.shape {
		return
	}
	h.shape = shape
	w.space.RemoveShape(h.contact)
	w.space.RemoveShape(h.sensor)
	h.contact = w.addShape(h, shape, false)
	h.sensor = w.addShape(h, shape, true)
}

// Material returns the contact collider material.
func (w *World) Material(e ecs.Entity) components.Material {
	return w.get(e).material
}

// SetMaterial sets restitution and friction; nil means zero for both.
func (w *World) SetMaterial(e ecs.Entity, m *components.Material) {
	h := w.get(e)
	h.material = orDefault(m)
	h.contact.SetElasticity(h.material.Restitution)
	h.contact.SetFriction(h.material.Friction)
}

// Collision returns the contact collider classification. Empty means it collides with nothing.
func (w *World) Collision(e ecs.Entity) (components.Collision, bool) {
	h := w.get(e)
	if h.collision == nil {
		return components.Collision{}, false
	}
	return *h.collision, true
}

// SetCollision sets the contact collider masks; nil clears them.
func (w *World) SetCollision(e ecs.Entity, c *components.Collision) {
	h := w.get(e)
	if c == nil {
		h.collision = nil
	} else {
		cc := components.Collision{Group: c.Group, With: slices.Clone(c.With)}
		h.collision = &cc
	}
	h.contact.SetFilter(h.contactFilter())
}

// Sensor returns the sensor collider classification. Empty means it senses nothing.
func (w *World) Sensor(e ecs.Entity) (components.Sensor, bool) {
	h := w.get(e)
	if h.sensing == nil {
		return components.Sensor{}, false
	}
	return *h.sensing, true
}

// SetSensor sets the sensor collider masks; nil clears them.
func (w *World) SetSensor(e ecs.Entity, s *components.Sensor) {
	h := w.get(e)
	if s == nil {
		h.sensing = nil
	} else {
		ss := components.Sensor{Group: s.Group, With: slices.Clone(s.With)}
		h.sensing = &ss
	}
	h.sensor.SetFilter(h.sensorFilter())
}

func (h *handle) contactFilter() cp.ShapeFilter {
	if h.collision == nil {
		return emptyFilter
	}
	cat, mask := h.collision.Mask()
	return cp.ShapeFilter{Categories: cat, Mask: mask}
}

func (h *handle) sensorFilter() cp.ShapeFilter {
	if h.sensing == nil {
		return emptyFilter
	}
	cat, mask := h.sensing.Mask()
	return cp.ShapeFilter{Categories: cat, Mask: mask}
}

// emptyFilter belongs to no category and accepts none.
var emptyFilter = cp.ShapeFilter{}

func (w *World) addShape(h *handle, s components.Shape, sensor bool) *cp.Shape {
	var shape *cp.Shape
	switch s.Kind {
	case components.ShapeRect:
		hx := math.Max(s.HalfExtents.X, minExtent)
		hy := math.Max(s.HalfExtents.Y, minExtent)
		shape = cp.NewBox(h.body, 2*hx, 2*hy, 0)
	default:
		shape = cp.NewCircle(h.body, math.Max(s.Radius, 0), cp.Vector{})
	}
	shape.UserData = h
	shape.SetSensor(sensor)
	if sensor {
		shape.SetFilter(h.sensorFilter())
	} else {
		shape.SetFilter(h.contactFilter())
		shape.SetElasticity(h.material.Restitution)
		shape.SetFriction(h.material.Friction)
	}
	return w.space.AddShape(shape)
}

// +++ Integration +++

// updateVelocity integrates accumulated acceleration, then applies damping
// v *= 1/(1+dt*damping) and the velocity limits.
func (h *handle) updateVelocity(body *cp.Body, gravity cp.Vector, damping, dt float64) {
	cp.BodyUpdateVelocity(body, gravity, damping, dt)
	if !h.dynamic {
		return
	}

	lin := fromCP(body.Velocity())
	ang := body.AngularVelocity()
	lin = r2.Add(lin, r2.Scale(dt, h.accel.Linear))
	ang += h.accel.Angular * dt
	h.accel = components.Acceleration{}

	lin = r2.Scale(1/(1+dt*h.damping.Linear), lin)
	ang /= 1 + dt*h.damping.Angular

	if n := r2.Norm(lin); n > h.limit.Linear {
		if n > 0 && h.limit.Linear > 0 {
			lin = r2.Scale(h.limit.Linear/n, lin)
		} else {
			lin = r2.Vec{}
		}
	}
	ang = math.Max(-h.limit.Angular, math.Min(h.limit.Angular, ang))

	body.SetVelocityVector(toCP(lin))
	body.SetAngularVelocity(ang)
}

func (h *handle) bodyVelocity() components.Velocity {
	return components.Velocity{
		Linear:  fromCP(h.body.Velocity()),
		Angular: h.body.AngularVelocity(),
	}
}

func orDefault[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

func toCP(v r2.Vec) cp.Vector { return cp.Vector{X: v.X, Y: v.Y} }

func fromCP(v cp.Vector) r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }
