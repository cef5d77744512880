package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/store"
)

// AnimationSystem samples every running animation into its target component
// and advances it by the frame time.
type AnimationSystem struct{}

// NewAnimationSystem creates the pass.
func NewAnimationSystem() *AnimationSystem {
	return &AnimationSystem{}
}

// Update runs the pass.
func (s *AnimationSystem) Update(w *World) {
	animate(w, w.RotationAnim, w.Rotation, components.KindRotationAnimation)
	animate(w, w.ShapeAnim, w.Shape, components.KindShapeAnimation)
	animate(w, w.TextureSlotAnim, w.TextureSlot, components.KindTextureSlotAnimation)
	animate(w, w.OpacityAnim, w.Opacity, components.KindOpacityAnimation)
}

// animate writes the current sample, then advances. A finished single-shot
// animation is scheduled for removal at the current time, which the lifetime
// pass of the same frame applies.
func animate[T components.Interpolator[T]](
	w *World,
	anims *store.Storage[components.Animation[T]],
	target *store.Storage[T],
	kind components.Kind,
) {
	for _, e := range anims.Entities() {
		a := anims.MustGet(e)
		target.Insert(e, a.Sample())
		done := a.Advance(w.Time.FrameTime)
		anims.Insert(e, a)
		if done {
			w.Schedule.Remove(e, kind, w.Time.AllTime)
		}
	}
}

// LifetimeSystem destroys expired entities and applies due deferred mutations.
type LifetimeSystem struct{}

// NewLifetimeSystem creates the pass.
func NewLifetimeSystem() *LifetimeSystem {
	return &LifetimeSystem{}
}

// Update runs the pass.
func (s *LifetimeSystem) Update(w *World) {
	now := w.Time.AllTime
	w.Lifetime.Each(func(e ecs.Entity, lt components.Lifetime) {
		if now >= lt.Expiry {
			w.Destroy(e)
		}
	})
	for _, m := range w.Schedule.Due(now) {
		if !w.Store.Alive(m.Entity) {
			continue
		}
		s.apply(w, m)
	}
}

func (s *LifetimeSystem) apply(w *World, m components.Mutation) {
	switch m.Kind {
	case components.KindContact:
		mutate(w.Contact, m)
	case components.KindSlow:
		mutate(w.Slow, m)
	case components.KindBlink:
		mutate(w.Blink, m)
	case components.KindSqueeze:
		mutate(w.Squeeze, m)
	case components.KindSurprise:
		mutate(w.Surprise, m)
	case components.KindRotationAnimation:
		mutate(w.RotationAnim, m)
	case components.KindShapeAnimation:
		mutate(w.ShapeAnim, m)
	case components.KindTextureSlotAnimation:
		mutate(w.TextureSlotAnim, m)
	case components.KindOpacityAnimation:
		mutate(w.OpacityAnim, m)
	default:
		panic(fmt.Sprintf("systems: no storage for mutation kind %v", m.Kind))
	}
}

func mutate[T any](st *store.Storage[T], m components.Mutation) {
	if m.Op == components.OpRemove {
		st.Remove(m.Entity)
		return
	}
	v, ok := m.Payload.(T)
	if !ok {
		panic(fmt.Sprintf("systems: %s insert carries %T", st.Name(), m.Payload))
	}
	st.Insert(m.Entity, v)
}

// OutputSystem derives the scene result from the morph's gameplay tags. Later
// rules override earlier ones.
type OutputSystem struct{}

// NewOutputSystem creates the pass.
func NewOutputSystem() *OutputSystem {
	return &OutputSystem{}
}

// Update runs the pass.
func (s *OutputSystem) Update(w *World) {
	story := w.Cfg.Story
	out := &w.Output
	for _, st := range []interface{ Entities() []ecs.Entity }{w.Metal, w.Rubber, w.Water, w.Bubble} {
		for _, e := range st.Entities() {
			if w.Finish.Has(e) {
				out.SetSuccess(story.SuccessDelay)
			}
			if w.Bubble.Has(e) && w.Burst.Has(e) {
				out.SetFailure(story.BubbleBurstDelay)
			}
			if w.Rubber.Has(e) && w.Burst.Has(e) {
				out.SetFailure(story.RubberBurstDelay)
			}
			if w.Outside.Has(e) {
				out.SetFailure(story.OutsideDelay)
			}
		}
	}
}
