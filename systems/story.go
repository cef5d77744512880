package systems

import (
	"github.com/mlange-42/ark/ecs"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/physix"
	"github.com/pthm-cable/morph/store"
)

// StoryInteractionSystem turns the interaction records of morphs into
// gameplay tags.
type StoryInteractionSystem struct{}

// NewStoryInteractionSystem creates the pass.
func NewStoryInteractionSystem() *StoryInteractionSystem {
	return &StoryInteractionSystem{}
}

// Update runs the pass.
func (s *StoryInteractionSystem) Update(w *World) {
	for _, e := range w.Physix.Active() {
		if !w.IsMorph(e) {
			continue
		}
		for _, in := range w.Physix.Interactions(e) {
			switch in.Action.Kind {
			case physix.ActionIntersecting:
				s.intersecting(w, e, in)
			case physix.ActionDisjoint:
				s.disjoint(w, e, in)
			case physix.ActionContact:
				s.contact(w, e, in)
			}
		}
	}
}

func (s *StoryInteractionSystem) intersecting(w *World, e ecs.Entity, in physix.Interaction) {
	other := in.With
	if w.Portal.Has(other) {
		w.Finish.Insert(e, components.Finish{})
	}
	if w.Grid.Has(other) {
		w.Slow.Insert(e, components.Slow{})
	}
	if w.Spikes.Has(other) {
		w.Burst.Insert(e, components.Burst{})
	}
	if acc, ok := w.Accelerator.Get(other); ok {
		w.Acceleration.Upsert(e, components.Acceleration{}, func(a *components.Acceleration) {
			a.Linear = r2.Add(a.Linear, acc.Force)
		})
	}
}

func (s *StoryInteractionSystem) disjoint(w *World, e ecs.Entity, in physix.Interaction) {
	other := in.With
	if w.Court.Has(other) {
		w.Outside.Insert(e, components.Outside{})
	}
	if w.Grid.Has(other) {
		w.Slow.Remove(e)
	}
}

func (s *StoryInteractionSystem) contact(w *World, e ecs.Entity, in physix.Interaction) {
	other := in.With
	breakable := w.Breakable.Has(other)
	if !breakable && !w.Block.Has(other) {
		return
	}
	vel, _ := w.Velocity.Get(e)
	mass, _ := w.Mass.Get(e)
	impulse := r2.Scale(mass.Linear, vel.Linear)
	contact := components.Contact{Impulse: components.Project(impulse, in.Action.Normal)}
	expiry := w.Time.After(w.Cfg.Physic.ContactRetention)

	w.Contact.Insert(e, contact)
	w.Schedule.Remove(e, components.KindContact, expiry)
	if breakable && (w.Rubber.Has(e) || w.Metal.Has(e)) {
		w.Contact.Insert(other, contact)
		w.Schedule.Remove(other, components.KindContact, expiry)
	}
}

// Debris physics applied to every piece of a shattered breakable group.
var (
	debrisMass     = components.Mass{Linear: 5, Angular: 0.5}
	debrisDamping  = components.VelocityDamping{Linear: 0.1, Angular: 0.1}
	debrisLimit    = components.VelocityLimit{Linear: 10, Angular: 10}
	debrisGravity  = components.Gravity{Y: -9.81}
	debrisMaterial = components.Material{Restitution: 0.3, Friction: 0.5}
)

// StoryObjectSystem shatters breakable groups hit hard enough.
type StoryObjectSystem struct {
	contact *store.Tracker[components.Contact]
}

// NewStoryObjectSystem creates the pass.
func NewStoryObjectSystem(w *World) *StoryObjectSystem {
	return &StoryObjectSystem{contact: w.Contact.Track()}
}

// Update runs the pass.
func (s *StoryObjectSystem) Update(w *World) {
	s.contact.Update()
	for _, e := range s.contact.Inserted() {
		b, ok := w.Breakable.Get(e)
		if !ok || w.Broken.Has(e) {
			continue
		}
		c, ok := w.Contact.Get(e)
		if !ok || r2.Norm(c.Impulse) <= w.Cfg.Physic.BreakImpulse {
			continue
		}
		s.shatter(w, b.Group, c.Impulse)
	}
}

// shatter turns every unbroken piece of group into short-lived debris thrown
// along impulse.
func (s *StoryObjectSystem) shatter(w *World, group int, impulse r2.Vec) {
	impulse = withLength(impulse, w.Cfg.Physic.BreakImpulse)
	collision := components.RoleParticle.Collision(w.Cfg)
	expiry := w.Time.After(w.Cfg.Story.DebrisLifetime)
	rng := w.Rand

	pieces := 0
	for _, e := range w.Breakable.Entities() {
		if b := w.Breakable.MustGet(e); b.Group != group || w.Broken.Has(e) {
			continue
		}
		offset := uniform(rng, -0.2, 0.2)
		w.Rotation.Upsert(e, components.Rotation{}, func(r *components.Rotation) {
			r.Angle += offset
		})
		linear := rotate(r2.Scale(uniform(rng, 0.8, 1)*0.2, impulse), uniform(rng, -0.2, 0.2))
		w.Velocity.Insert(e, components.Velocity{Linear: linear, Angular: offset * uniform(rng, 5, 8)})
		w.Dynamic.Insert(e, components.Dynamic{})
		w.Mass.Insert(e, debrisMass)
		w.VelocityDamping.Insert(e, debrisDamping)
		w.VelocityLimit.Insert(e, debrisLimit)
		w.Gravity.Insert(e, debrisGravity)
		w.Material.Insert(e, debrisMaterial)
		w.Collision.Insert(e, collision)
		w.Broken.Insert(e, components.Broken{})
		w.Lifetime.Insert(e, components.Lifetime{Expiry: expiry})
		pieces++
	}
	w.Log.Info("breakable shattered",
		zap.Int("group", group),
		zap.Int("pieces", pieces),
		zap.Float64("impulse", r2.Norm(impulse)),
	)
}

// StoryMorphSystem reacts to gameplay tags appearing on and leaving the morph.
type StoryMorphSystem struct {
	slow   *store.Tracker[components.Slow]
	burst  *store.Tracker[components.Burst]
	finish *store.Tracker[components.Finish]
}

// NewStoryMorphSystem creates the pass.
func NewStoryMorphSystem(w *World) *StoryMorphSystem {
	return &StoryMorphSystem{
		slow:   w.Slow.Track(),
		burst:  w.Burst.Track(),
		finish: w.Finish.Track(),
	}
}

// Update runs the pass.
func (s *StoryMorphSystem) Update(w *World) {
	s.slow.Update()
	s.burst.Update()
	s.finish.Update()

	for _, e := range s.slow.Inserted() {
		if w.Slow.Has(e) && w.IsMorph(e) {
			w.VelocityLimit.Update(e, func(l *components.VelocityLimit) {
				l.Linear = w.Cfg.Physic.GridMaxVelocity
			})
		}
	}
	for _, e := range s.slow.Removed() {
		if w.Slow.Has(e) {
			continue
		}
		if state, ok := w.MorphState(e); ok {
			w.VelocityLimit.Insert(e, state.Profile(w.Cfg).VelocityLimit)
		}
	}

	for _, e := range s.burst.Inserted() {
		if w.Bubble.Has(e) {
			w.Dynamic.Remove(e)
		}
		if w.Rubber.Has(e) {
			w.Rotation.Insert(e, components.Rotation{})
			w.Velocity.Insert(e, components.Velocity{})
		}
	}

	for _, e := range s.finish.Inserted() {
		if !w.IsMorph(e) {
			continue
		}
		w.Dynamic.Remove(e)
		w.Follow.Insert(e, components.Follow{Target: w.Actors.Portal})
		w.FollowSpring.Insert(e, components.FollowSpring{
			Stiffness: w.Cfg.Story.FinishSpringStiffness,
			Damping:   w.Cfg.Story.FinishSpringDamping,
		})
	}
}
