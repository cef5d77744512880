package components

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/morph/config"
	"gonum.org/v1/gonum/spatial/r2"
)

// MorphState is one of the four materials the morph can take.
type MorphState uint8

const (
	StateMetal MorphState = iota
	StateRubber
	StateWater
	StateBubble
)

// MorphStates lists every state in table order.
var MorphStates = []MorphState{StateMetal, StateRubber, StateWater, StateBubble}

var morphStateNames = [...]string{
	StateMetal:  config.StateMetal,
	StateRubber: config.StateRubber,
	StateWater:  config.StateWater,
	StateBubble: config.StateBubble,
}

func (s MorphState) String() string {
	if int(s) < len(morphStateNames) {
		return morphStateNames[s]
	}
	return fmt.Sprintf("MorphState(%d)", uint8(s))
}

// ParseMorphState resolves a state name.
func ParseMorphState(name string) (MorphState, error) {
	for i, n := range morphStateNames {
		if strings.EqualFold(n, name) {
			return MorphState(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownState, name)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *MorphState) UnmarshalText(text []byte) error {
	v, err := ParseMorphState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s MorphState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Group returns the physics group of the state.
func (s MorphState) Group(cfg *config.Config) int {
	switch s {
	case StateMetal:
		return cfg.Physic.GroupMetal
	case StateRubber:
		return cfg.Physic.GroupRubber
	case StateWater:
		return cfg.Physic.GroupWater
	default:
		return cfg.Physic.GroupBubble
	}
}

// Texture returns the morph texture for the state.
func (s MorphState) Texture() Texture {
	switch s {
	case StateMetal:
		return TextureMetal
	case StateRubber:
		return TextureRubber
	case StateWater:
		return TextureWater
	default:
		return TextureBubble
	}
}

// MorphProfile is the full set of physics and visual components a state derives.
type MorphProfile struct {
	VelocityLimit   VelocityLimit
	VelocityDamping VelocityDamping
	Gravity         Gravity
	Mass            Mass
	Material        Material
	Shape           Shape
	Collision       Collision
	Sensor          Sensor
	Texture         Texture
}

// Profile looks up the state's constant table entry.
func (s MorphState) Profile(cfg *config.Config) MorphProfile {
	p := cfg.Morph[s.String()]
	group := s.Group(cfg)
	return MorphProfile{
		VelocityLimit:   VelocityLimit{Linear: p.MaxVelocity, Angular: p.MaxAngularVelocity},
		VelocityDamping: VelocityDamping{Linear: p.AirFriction, Angular: p.AngularDamping},
		Gravity:         Gravity{Y: p.Gravity},
		Mass:            Mass{Linear: p.Mass, Angular: p.AngularInertia},
		Material:        Material{Restitution: p.Bounce, Friction: p.GroundFriction},
		Shape:           Ball(cfg.Level.MorphSize),
		Collision:       Collision{Group: group, With: []int{cfg.Physic.GroupObject}},
		Sensor:          Sensor{Group: group, With: []int{}},
		Texture:         s.Texture(),
	}
}

// Role is the gameplay purpose of a level object.
type Role uint8

const (
	RoleNone Role = iota
	RoleBlock
	RolePortal
	RoleSpikes
	RoleBreakable
	RoleGrid
	RoleAccelerator
	RoleCourt
	RoleParticle
	RoleMorph
)

var roleNames = [...]string{
	RoleNone:        "none",
	RoleBlock:       "block",
	RolePortal:      "portal",
	RoleSpikes:      "spikes",
	RoleBreakable:   "breakable",
	RoleGrid:        "grid",
	RoleAccelerator: "accelerator",
	RoleCourt:       "court",
	RoleParticle:    "particle",
	RoleMorph:       "morph",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	for i, n := range roleNames {
		if strings.EqualFold(n, string(text)) {
			*r = Role(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownRole, string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Collision returns the solid collider classification of the role.
func (r Role) Collision(cfg *config.Config) Collision {
	ph := cfg.Physic
	switch r {
	case RoleBlock, RoleBreakable:
		return Collision{Group: ph.GroupObject, With: []int{
			ph.GroupMetal, ph.GroupRubber, ph.GroupWater, ph.GroupBubble, ph.GroupParticle,
		}}
	case RoleGrid:
		return Collision{Group: ph.GroupObject, With: []int{ph.GroupMetal, ph.GroupRubber, ph.GroupParticle}}
	case RoleParticle:
		return Collision{Group: ph.GroupParticle, With: []int{ph.GroupObject}}
	default:
		return Collision{Group: ph.GroupObject, With: []int{}}
	}
}

// Sensor returns the overlap collider classification of the role.
func (r Role) Sensor(cfg *config.Config) Sensor {
	ph := cfg.Physic
	with := []int{}
	switch r {
	case RolePortal, RoleCourt, RoleAccelerator:
		with = []int{ph.GroupMetal, ph.GroupRubber, ph.GroupWater, ph.GroupBubble}
	case RoleSpikes:
		with = []int{ph.GroupRubber, ph.GroupBubble}
	case RoleGrid:
		with = []int{ph.GroupWater, ph.GroupBubble}
	}
	return Sensor{Group: ph.GroupObject, With: with}
}

// Shape returns the fixed shape of roles that have one.
func (r Role) Shape(cfg *config.Config) (Shape, bool) {
	if r == RolePortal {
		size := cfg.Level.TargetSize
		return Rect(r2.Vec{X: size, Y: size}), true
	}
	return Shape{}, false
}

// Plane is a parallax depth plane.
type Plane uint8

const (
	PlaneFar Plane = iota
	PlaneMid
	PlaneView
	PlaneNear
)

// Planes lists every plane from back to front.
var Planes = []Plane{PlaneFar, PlaneMid, PlaneView, PlaneNear}

var planeNames = [...]string{
	PlaneFar:  "far",
	PlaneMid:  "mid",
	PlaneView: "view",
	PlaneNear: "near",
}

func (p Plane) String() string {
	if int(p) < len(planeNames) {
		return planeNames[p]
	}
	return fmt.Sprintf("Plane(%d)", uint8(p))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Plane) UnmarshalText(text []byte) error {
	for i, n := range planeNames {
		if strings.EqualFold(n, string(text)) {
			*p = Plane(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownPlane, string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (p Plane) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Layer returns the configured depth of the plane.
func (p Plane) Layer(cfg *config.Config) float64 {
	pl := cfg.Level.Planes
	switch p {
	case PlaneFar:
		return pl.FarLayer
	case PlaneMid:
		return pl.MidLayer
	case PlaneNear:
		return pl.NearLayer
	default:
		return pl.ViewLayer
	}
}

// Parallax returns how fast the plane scrolls relative to the camera.
func (p Plane) Parallax(cfg *config.Config) float64 {
	pl := cfg.Level.Planes
	switch p {
	case PlaneFar:
		return pl.FarParallax
	case PlaneMid:
		return pl.MidParallax
	case PlaneNear:
		return pl.NearParallax
	default:
		return pl.ViewParallax
	}
}

// Direction is an accelerator push direction.
type Direction uint8

const (
	DirectionRight Direction = iota
	DirectionLeft
	DirectionUp
	DirectionDown
)

var directionNames = [...]string{
	DirectionRight: "right",
	DirectionLeft:  "left",
	DirectionUp:    "up",
	DirectionDown:  "down",
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	for i, n := range directionNames {
		if strings.EqualFold(n, string(text)) {
			*d = Direction(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownDirection, string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Vec returns the unit vector of the direction. Up is +y.
func (d Direction) Vec() r2.Vec {
	switch d {
	case DirectionLeft:
		return r2.Vec{X: -1}
	case DirectionUp:
		return r2.Vec{Y: 1}
	case DirectionDown:
		return r2.Vec{Y: -1}
	default:
		return r2.Vec{X: 1}
	}
}
