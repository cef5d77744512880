package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/store"
)

// Face reaction thresholds and hold times.
const (
	surpriseSpeed2   = 24.9 // squared linear speed
	surpriseAngular  = 2.0
	surpriseHold     = 0.01
	squeezeSpeed2    = 4.0
	squeezeBounce    = 0.3
	squeezeSlow      = 0.01
	blinkPeriodTicks = 30 // in tenths of a second
	blinkHold        = 0.1
)

// StoryMorphAnimationSystem drives the morph's visual feedback: the transition
// effect on state changes, burst and finish animations and the face slot.
type StoryMorphAnimationSystem struct {
	metal  *store.Tracker[components.Metal]
	rubber *store.Tracker[components.Rubber]
	water  *store.Tracker[components.Water]
	bubble *store.Tracker[components.Bubble]
	burst  *store.Tracker[components.Burst]
	finish *store.Tracker[components.Finish]
}

// NewStoryMorphAnimationSystem creates the pass.
func NewStoryMorphAnimationSystem(w *World) *StoryMorphAnimationSystem {
	return &StoryMorphAnimationSystem{
		metal:  w.Metal.Track(),
		rubber: w.Rubber.Track(),
		water:  w.Water.Track(),
		bubble: w.Bubble.Track(),
		burst:  w.Burst.Track(),
		finish: w.Finish.Track(),
	}
}

// Update runs the pass.
func (s *StoryMorphAnimationSystem) Update(w *World) {
	s.metal.Update()
	s.rubber.Update()
	s.water.Update()
	s.bubble.Update()
	s.burst.Update()
	s.finish.Update()

	seen := make(map[ecs.Entity]struct{})
	for _, set := range [][]ecs.Entity{s.metal.Inserted(), s.rubber.Inserted(), s.water.Inserted(), s.bubble.Inserted()} {
		for _, e := range set {
			if _, dup := seen[e]; dup || !w.IsMorph(e) {
				continue
			}
			seen[e] = struct{}{}
			s.spawnEffect(w, e)
		}
	}

	for _, e := range s.burst.Inserted() {
		if !w.Burst.Has(e) {
			continue
		}
		if w.Bubble.Has(e) {
			w.Texture.Insert(e, components.TextureBubbleBurst)
			w.TextureSlotAnim.Insert(e, components.MustAnimation(
				[]components.TextureSlot{{Slot: 0}, {Slot: 8}}, 0.25, components.AnimationSingle))
		}
		if w.Rubber.Has(e) {
			w.Texture.Insert(e, components.TextureRubberBurst)
			w.TextureSlotAnim.Insert(e, components.MustAnimation(
				[]components.TextureSlot{{Slot: 0}, {Slot: 5}}, 0.30, components.AnimationSingle))
			w.RotationAnim.Insert(e, components.MustAnimation(
				[]components.Rotation{{Angle: 0}, {Angle: 0.8}, {Angle: -0.8}, {Angle: 0}}, 1.2, components.AnimationRepeat))
		}
	}

	for _, e := range s.finish.Inserted() {
		if !w.Finish.Has(e) || !w.IsMorph(e) {
			continue
		}
		shape := w.Shape.MustGet(e)
		w.ShapeAnim.Insert(e, components.MustAnimation(
			[]components.Shape{shape, components.Ball(0)}, 2.0, components.AnimationSingle))
	}

	for _, st := range []interface{ Entities() []ecs.Entity }{w.Metal, w.Rubber, w.Water, w.Bubble} {
		for _, e := range st.Entities() {
			if w.Burst.Has(e) || w.Finish.Has(e) {
				continue
			}
			s.face(w, e)
		}
	}
}

// spawnEffect creates the short-lived flash that follows the morph after a
// state change.
func (s *StoryMorphAnimationSystem) spawnEffect(w *World, morph ecs.Entity) {
	pos := w.Position.MustGet(morph)
	shape := w.Shape.MustGet(morph).Scale(1.5)
	layer := w.Layer.MustGet(morph)
	if layer.Rank > 0 {
		layer.Rank--
	}
	duration := w.Cfg.Story.MorphEffectDuration
	expiry := w.Time.After(duration)
	anim := components.MustAnimation([]components.TextureSlot{{Slot: 0}, {Slot: 15}}, duration, components.AnimationSingle)

	w.Store.Spawn(func(_ *store.Store, fx ecs.Entity) {
		w.Physic.Insert(fx, components.Physic{})
		w.Follow.Insert(fx, components.Follow{Target: morph})
		w.Position.Insert(fx, pos)
		w.Shape.Insert(fx, shape)
		w.Texture.Insert(fx, components.TextureMorph)
		w.TextureSlotAnim.Insert(fx, anim)
		w.Layer.Insert(fx, components.Layer{Plane: components.PlaneView, Rank: layer.Rank})
		w.Lifetime.Insert(fx, components.Lifetime{Expiry: expiry})
	})
}

// face picks the morph's expression from its motion and surroundings.
func (s *StoryMorphAnimationSystem) face(w *World, e ecs.Entity) {
	vel, _ := w.Velocity.Get(e)
	speed2 := r2.Norm2(vel.Linear)

	if speed2 > surpriseSpeed2 || vel.Angular > surpriseAngular || w.Acceleration.Has(e) {
		w.Surprise.Insert(e, components.Surprise{})
		w.Schedule.Remove(e, components.KindSurprise, w.Time.After(surpriseHold))
	}
	if speed2 > squeezeSpeed2 && w.Contact.Has(e) {
		w.Squeeze.Insert(e, components.Squeeze{})
		w.Schedule.Remove(e, components.KindSqueeze, w.Time.After(squeezeBounce))
	}
	if w.Slow.Has(e) {
		w.Squeeze.Insert(e, components.Squeeze{})
		w.Schedule.Remove(e, components.KindSqueeze, w.Time.After(squeezeSlow))
	}
	if int(math.Floor(w.Time.AllTime*10))%blinkPeriodTicks == 0 {
		w.Blink.Insert(e, components.Blink{})
		w.Schedule.Remove(e, components.KindBlink, w.Time.After(blinkHold))
	} else {
		w.Blink.Remove(e)
	}

	slot := components.SlotNormal
	switch {
	case w.Squeeze.Has(e):
		slot = components.SlotSqueeze
	case w.Surprise.Has(e):
		slot = components.SlotSurprise
	case w.Blink.Has(e):
		slot = components.SlotBlink
	}
	w.TextureSlot.Insert(e, components.TextureSlot{Slot: slot})
}

// StoryObjectAnimationSystem fades debris out shortly before it expires.
type StoryObjectAnimationSystem struct {
	broken *store.Tracker[components.Broken]
}

// NewStoryObjectAnimationSystem creates the pass.
func NewStoryObjectAnimationSystem(w *World) *StoryObjectAnimationSystem {
	return &StoryObjectAnimationSystem{broken: w.Broken.Track()}
}

// Update runs the pass.
func (s *StoryObjectAnimationSystem) Update(w *World) {
	s.broken.Update()
	story := w.Cfg.Story
	for _, e := range s.broken.Inserted() {
		if !w.Broken.Has(e) {
			continue
		}
		w.Opacity.Insert(e, components.Opacity{Alpha: 1})
		fade := components.MustAnimation([]components.Opacity{{Alpha: 1}, {Alpha: 0}}, story.DebrisFadeDuration, components.AnimationSingle)
		w.Schedule.Insert(e, components.KindOpacityAnimation, w.Time.After(story.DebrisFadeDelay), fade)
	}
}
