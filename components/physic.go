package components

import (
	"fmt"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
)

// Physic admits an entity to the physics world.
type Physic struct{}

// Dynamic marks a body as simulated. Bodies without it do not move on their own.
type Dynamic struct{}

// Position represents an entity's world position.
type Position struct {
	X, Y float64
}

// Vec returns the position as a vector.
func (p Position) Vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// PositionOf converts a vector into a Position.
func PositionOf(v r2.Vec) Position { return Position{X: v.X, Y: v.Y} }

// Rotation is the body angle in radians.
type Rotation struct {
	Angle float64
}

// Interpolate blends linearly towards to.
func (r Rotation) Interpolate(to Rotation, t float64) Rotation {
	return Rotation{Angle: lerp(r.Angle, to.Angle, t)}
}

// Velocity holds linear and angular velocity.
type Velocity struct {
	Linear  r2.Vec
	Angular float64
}

// VelocityLimit caps linear speed and angular speed. A zero limit clamps to zero.
type VelocityLimit struct {
	Linear  float64
	Angular float64
}

// VelocityDamping slows a body by v *= 1/(1+dt*damping) each step.
type VelocityDamping struct {
	Linear  float64
	Angular float64
}

// Mass holds linear mass and angular inertia. Zero angular inertia locks rotation.
type Mass struct {
	Linear  float64
	Angular float64
}

// Acceleration is applied once as a velocity change and then cleared.
type Acceleration struct {
	Linear  r2.Vec
	Angular float64
}

// Gravity is a per-body vertical acceleration.
type Gravity struct {
	Y float64
}

// Material holds the contact response of a collider.
type Material struct {
	Restitution float64
	Friction    float64
}

// ShapeKind selects the Shape variant.
type ShapeKind uint8

const (
	ShapeBall ShapeKind = iota
	ShapeRect
)

// Shape is a ball of Radius or a rectangle of HalfExtents.
type Shape struct {
	Kind        ShapeKind
	Radius      float64
	HalfExtents r2.Vec
}

// Ball returns a ball shape.
func Ball(radius float64) Shape { return Shape{Kind: ShapeBall, Radius: radius} }

// Rect returns a rectangle shape with the given half extents.
func Rect(halfExtents r2.Vec) Shape { return Shape{Kind: ShapeRect, HalfExtents: halfExtents} }

// Size returns the half extents; a ball reports (r, r).
func (s Shape) Size() r2.Vec {
	if s.Kind == ShapeBall {
		return r2.Vec{X: s.Radius, Y: s.Radius}
	}
	return s.HalfExtents
}

// Scale multiplies every dimension by f.
func (s Shape) Scale(f float64) Shape {
	if s.Kind == ShapeBall {
		return Ball(s.Radius * f)
	}
	return Rect(r2.Scale(f, s.HalfExtents))
}

// Interpolate blends towards to. Both shapes must be the same variant.
func (s Shape) Interpolate(to Shape, t float64) Shape {
	if s.Kind != to.Kind {
		panic(fmt.Sprintf("components: cannot interpolate %s into %s", s.Kind, to.Kind))
	}
	if s.Kind == ShapeBall {
		return Ball(lerp(s.Radius, to.Radius, t))
	}
	return Rect(lerpVec(s.HalfExtents, to.HalfExtents, t))
}

func (k ShapeKind) String() string {
	if k == ShapeBall {
		return "ball"
	}
	return "rect"
}

// Collision classifies the solid collider: member of Group, collides with With.
type Collision struct {
	Group int
	With  []int
}

// Mask returns the membership and filter bit masks.
func (c Collision) Mask() (category, mask uint) {
	return groupMask(c.Group, c.With)
}

// Equal compares group and partner list.
func (c Collision) Equal(o Collision) bool {
	return c.Group == o.Group && slices.Equal(c.With, o.With)
}

// Sensor classifies the overlap collider: member of Group, senses With.
type Sensor struct {
	Group int
	With  []int
}

// Mask returns the membership and filter bit masks.
func (s Sensor) Mask() (category, mask uint) {
	return groupMask(s.Group, s.With)
}

// Equal compares group and partner list.
func (s Sensor) Equal(o Sensor) bool {
	return s.Group == o.Group && slices.Equal(s.With, o.With)
}

func groupMask(group int, with []int) (uint, uint) {
	var mask uint
	for _, g := range with {
		mask |= 1 << uint(g)
	}
	return 1 << uint(group), mask
}

// Follow makes an entity track the position of Target.
type Follow struct {
	Target ecs.Entity
}

// FollowLag is the fraction of the current position retained each frame.
type FollowLag struct {
	Lag float64
}

// FollowSpring pulls the follower towards its target with a damped spring.
type FollowSpring struct {
	Stiffness float64
	Damping   float64
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpVec(a, b r2.Vec, t float64) r2.Vec {
	return r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
}

// Lerp blends two vectors: a at t=0, b at t=1.
func Lerp(a, b r2.Vec, t float64) r2.Vec {
	return lerpVec(a, b, t)
}

// Project returns the component of v along n.
func Project(v, n r2.Vec) r2.Vec {
	return r2.Scale(r2.Dot(n, v), n)
}
