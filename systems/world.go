// Package systems contains the per-frame passes of the simulation.
//
// Every pass reads and writes the component storages held by World. Passes run
// strictly in the order given by the Pipeline; entity creation and destruction
// requested by a pass take effect at the store's Maintain.
package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"go.uber.org/zap"

	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/physix"
	"github.com/pthm-cable/morph/store"
)

// World bundles the store, the physics adapter, the storages of every
// component type and the frame resources.
type World struct {
	Store    *store.Store
	Physix   *physix.World
	Cfg      *config.Config
	Log      *zap.Logger
	Rand     *rand.Rand
	Schedule *components.Schedule

	Time   components.GameTime
	Actors components.Actors
	Output components.Output
	Input  Input

	// Physics
	Physic          *store.Storage[components.Physic]
	Dynamic         *store.Storage[components.Dynamic]
	Position        *store.Storage[components.Position]
	Rotation        *store.Storage[components.Rotation]
	Velocity        *store.Storage[components.Velocity]
	VelocityLimit   *store.Storage[components.VelocityLimit]
	VelocityDamping *store.Storage[components.VelocityDamping]
	Mass            *store.Storage[components.Mass]
	Acceleration    *store.Storage[components.Acceleration]
	Gravity         *store.Storage[components.Gravity]
	Material        *store.Storage[components.Material]
	Shape           *store.Storage[components.Shape]
	Collision       *store.Storage[components.Collision]
	Sensor          *store.Storage[components.Sensor]
	Follow          *store.Storage[components.Follow]
	FollowLag       *store.Storage[components.FollowLag]
	FollowSpring    *store.Storage[components.FollowSpring]

	// Morph states
	Metal  *store.Storage[components.Metal]
	Rubber *store.Storage[components.Rubber]
	Water  *store.Storage[components.Water]
	Bubble *store.Storage[components.Bubble]

	// Level roles
	Block       *store.Storage[components.Block]
	Spikes      *store.Storage[components.Spikes]
	Grid        *store.Storage[components.Grid]
	Court       *store.Storage[components.Court]
	Portal      *store.Storage[components.Portal]
	Breakable   *store.Storage[components.Breakable]
	Accelerator *store.Storage[components.Accelerator]

	// Gameplay state
	Burst   *store.Storage[components.Burst]
	Slow    *store.Storage[components.Slow]
	Finish  *store.Storage[components.Finish]
	Outside *store.Storage[components.Outside]
	Broken  *store.Storage[components.Broken]
	Contact *store.Storage[components.Contact]

	// Face
	Blink    *store.Storage[components.Blink]
	Squeeze  *store.Storage[components.Squeeze]
	Surprise *store.Storage[components.Surprise]

	// Render
	Camera      *store.Storage[components.Camera]
	Texture     *store.Storage[components.Texture]
	TextureSlot *store.Storage[components.TextureSlot]
	Layer       *store.Storage[components.Layer]
	Opacity     *store.Storage[components.Opacity]

	// Animation & lifetime
	RotationAnim    *store.Storage[components.Animation[components.Rotation]]
	ShapeAnim       *store.Storage[components.Animation[components.Shape]]
	TextureSlotAnim *store.Storage[components.Animation[components.TextureSlot]]
	OpacityAnim     *store.Storage[components.Animation[components.Opacity]]
	Lifetime        *store.Storage[components.Lifetime]
}

// NewWorld registers every storage on a fresh store. A zero seed draws from
// the global source.
func NewWorld(cfg *config.Config, log *zap.Logger, seed int64) *World {
	if log == nil {
		log = zap.NewNop()
	}
	if seed == 0 {
		seed = rand.Int63()
	}
	s := store.New()
	return &World{
		Store:    s,
		Physix:   physix.NewWorld(cfg.Physic.Iterations),
		Cfg:      cfg,
		Log:      log,
		Rand:     rand.New(rand.NewSource(seed)),
		Schedule: components.NewSchedule(),

		Physic:          store.Register[components.Physic](s, "physic"),
		Dynamic:         store.Register[components.Dynamic](s, "dynamic"),
		Position:        store.Register[components.Position](s, "position"),
		Rotation:        store.Register[components.Rotation](s, "rotation"),
		Velocity:        store.Register[components.Velocity](s, "velocity"),
		VelocityLimit:   store.Register[components.VelocityLimit](s, "velocity_limit"),
		VelocityDamping: store.Register[components.VelocityDamping](s, "velocity_damping"),
		Mass:            store.Register[components.Mass](s, "mass"),
		Acceleration:    store.Register[components.Acceleration](s, "acceleration"),
		Gravity:         store.Register[components.Gravity](s, "gravity"),
		Material:        store.Register[components.Material](s, "material"),
		Shape:           store.Register[components.Shape](s, "shape"),
		Collision:       store.Register[components.Collision](s, "collision"),
		Sensor:          store.Register[components.Sensor](s, "sensor"),
		Follow:          store.Register[components.Follow](s, "follow"),
		FollowLag:       store.Register[components.FollowLag](s, "follow_lag"),
		FollowSpring:    store.Register[components.FollowSpring](s, "follow_spring"),

		Metal:  store.Register[components.Metal](s, "metal"),
		Rubber: store.Register[components.Rubber](s, "rubber"),
		Water:  store.Register[components.Water](s, "water"),
		Bubble: store.Register[components.Bubble](s, "bubble"),

		Block:       store.Register[components.Block](s, "block"),
		Spikes:      store.Register[components.Spikes](s, "spikes"),
		Grid:        store.Register[components.Grid](s, "grid"),
		Court:       store.Register[components.Court](s, "court"),
		Portal:      store.Register[components.Portal](s, "portal"),
		Breakable:   store.Register[components.Breakable](s, "breakable"),
		Accelerator: store.Register[components.Accelerator](s, "accelerator"),

		Burst:   store.Register[components.Burst](s, "burst"),
		Slow:    store.Register[components.Slow](s, "slow"),
		Finish:  store.Register[components.Finish](s, "finish"),
		Outside: store.Register[components.Outside](s, "outside"),
		Broken:  store.Register[components.Broken](s, "broken"),
		Contact: store.Register[components.Contact](s, "contact"),

		Blink:    store.Register[components.Blink](s, "blink"),
		Squeeze:  store.Register[components.Squeeze](s, "squeeze"),
		Surprise: store.Register[components.Surprise](s, "surprise"),

		Camera:      store.Register[components.Camera](s, "camera"),
		Texture:     store.Register[components.Texture](s, "texture"),
		TextureSlot: store.Register[components.TextureSlot](s, "texture_slot"),
		Layer:       store.Register[components.Layer](s, "layer"),
		Opacity:     store.Register[components.Opacity](s, "opacity"),

		RotationAnim:    store.Register[components.Animation[components.Rotation]](s, "rotation_animation"),
		ShapeAnim:       store.Register[components.Animation[components.Shape]](s, "shape_animation"),
		TextureSlotAnim: store.Register[components.Animation[components.TextureSlot]](s, "texture_slot_animation"),
		OpacityAnim:     store.Register[components.Animation[components.Opacity]](s, "opacity_animation"),
		Lifetime:        store.Register[components.Lifetime](s, "lifetime"),
	}
}

// MorphState returns the state tag e carries.
func (w *World) MorphState(e ecs.Entity) (components.MorphState, bool) {
	switch {
	case w.Metal.Has(e):
		return components.StateMetal, true
	case w.Rubber.Has(e):
		return components.StateRubber, true
	case w.Water.Has(e):
		return components.StateWater, true
	case w.Bubble.Has(e):
		return components.StateBubble, true
	}
	return 0, false
}

// IsMorph reports whether e carries any morph state tag.
func (w *World) IsMorph(e ecs.Entity) bool {
	_, ok := w.MorphState(e)
	return ok
}

// SetMorphState removes every state tag from e and inserts the tag of state.
func (w *World) SetMorphState(e ecs.Entity, state components.MorphState) {
	w.Metal.Remove(e)
	w.Rubber.Remove(e)
	w.Water.Remove(e)
	w.Bubble.Remove(e)
	switch state {
	case components.StateMetal:
		w.Metal.Insert(e, components.Metal{})
	case components.StateRubber:
		w.Rubber.Insert(e, components.Rubber{})
	case components.StateWater:
		w.Water.Insert(e, components.Water{})
	default:
		w.Bubble.Insert(e, components.Bubble{})
	}
}

// ApplyProfile overwrites every state-derived component of e.
func (w *World) ApplyProfile(e ecs.Entity, state components.MorphState) {
	p := state.Profile(w.Cfg)
	w.VelocityLimit.Insert(e, p.VelocityLimit)
	w.VelocityDamping.Insert(e, p.VelocityDamping)
	w.Gravity.Insert(e, p.Gravity)
	w.Mass.Insert(e, p.Mass)
	w.Collision.Insert(e, p.Collision)
	w.Sensor.Insert(e, p.Sensor)
	w.Material.Insert(e, p.Material)
	w.Shape.Insert(e, p.Shape)
	w.Texture.Insert(e, p.Texture)
}

// Destroy queues e for destruction and drops its deferred mutations.
func (w *World) Destroy(e ecs.Entity) {
	w.Schedule.Forget(e)
	w.Store.Destroy(e)
}

// Maintain ends the frame: applies queued store mutations and clears the
// one-shot input.
func (w *World) Maintain() {
	w.Store.Maintain()
	w.Input.Clear()
}

// ptr returns a pointer to the component or nil when absent.
func ptr[T any](st *store.Storage[T], e ecs.Entity) *T {
	v, ok := st.Get(e)
	if !ok {
		return nil
	}
	return &v
}
