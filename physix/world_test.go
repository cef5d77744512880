package physix

import (
	"testing"

	"github.com/mlange-42/ark/ecs"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/components"
)

const dt = 1.0 / 60

type tag struct{}

func newEntities(t *testing.T, n int) []ecs.Entity {
	t.Helper()
	w := ecs.NewWorld()
	m := ecs.NewMap[tag](w)
	out := make([]ecs.Entity, n)
	for i := range out {
		out[i] = m.NewEntity(&tag{})
	}
	return out
}

func TestInsertRemoveLeavesNoHandles(t *testing.T) {
	w := NewWorld(10)
	es := newEntities(t, 3)
	for _, e := range es {
		w.Insert(e, components.Position{X: 1, Y: 2})
	}
	w.Insert(es[0], components.Position{}) // no-op
	require.Equal(t, 3, w.Handles())
	require.Equal(t, es, w.Entities())
	require.Equal(t, components.Position{X: 1, Y: 2}, w.Position(es[0]))

	for _, e := range es {
		w.Remove(e)
		w.Remove(e)
	}
	require.Zero(t, w.Handles())
	require.False(t, w.Has(es[0]))
}

func TestUnknownEntityPanics(t *testing.T) {
	w := NewWorld(10)
	e := newEntities(t, 1)[0]
	require.Panics(t, func() { w.Position(e) })
	require.Panics(t, func() { w.SetVelocity(e, nil) })
}

func TestRemovedComponentResetsToDefault(t *testing.T) {
	w := NewWorld(10)
	es := newEntities(t, 2)
	touched, fresh := es[0], es[1]
	w.Insert(touched, components.Position{})
	w.Insert(fresh, components.Position{})

	w.SetCollision(touched, &components.Collision{Group: 2, With: []int{5}})
	w.SetSensor(touched, &components.Sensor{Group: 2, With: []int{5}})
	w.SetMass(touched, &components.Mass{Linear: 3, Angular: 1})
	w.SetMaterial(touched, &components.Material{Restitution: 0.5, Friction: 0.2})
	w.SetShape(touched, &components.Shape{Kind: components.ShapeRect, HalfExtents: r2.Vec{X: 1, Y: 1}})
	w.SetVelocityLimit(touched, &components.VelocityLimit{Linear: 4, Angular: 4})
	w.SetVelocityDamping(touched, &components.VelocityDamping{Linear: 1, Angular: 1})
	w.SetVelocity(touched, &components.Velocity{Linear: r2.Vec{X: 1}})

	w.SetCollision(touched, nil)
	w.SetSensor(touched, nil)
	w.SetMass(touched, nil)
	w.SetMaterial(touched, nil)
	w.SetShape(touched, nil)
	w.SetVelocityLimit(touched, nil)
	w.SetVelocityDamping(touched, nil)
	w.SetVelocity(touched, nil)

	for _, tc := range []struct {
		name string
		get  func(ecs.Entity) any
	}{
		{"collision", func(e ecs.Entity) any { c, ok := w.Collision(e); return []any{c, ok} }},
		{"sensor", func(e ecs.Entity) any { s, ok := w.Sensor(e); return []any{s, ok} }},
		{"contact filter", func(e ecs.Entity) any { return w.handles[e].contactFilter() }},
		{"sensor filter", func(e ecs.Entity) any { return w.handles[e].sensorFilter() }},
		{"mass", func(e ecs.Entity) any { return w.Mass(e) }},
		{"material", func(e ecs.Entity) any { return w.Material(e) }},
		{"shape", func(e ecs.Entity) any { return w.Shape(e) }},
		{"limit", func(e ecs.Entity) any { return w.VelocityLimit(e) }},
		{"damping", func(e ecs.Entity) any { return w.VelocityDamping(e) }},
		{"velocity", func(e ecs.Entity) any { return w.Velocity(e) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.get(fresh), tc.get(touched))
		})
	}
}

func TestNonDynamicKeepsVelocityAndPosition(t *testing.T) {
	w := NewWorld(10)
	e := newEntities(t, 1)[0]
	w.Insert(e, components.Position{X: 3})
	v := components.Velocity{Linear: r2.Vec{X: 2, Y: -1}, Angular: 0.5}
	w.SetVelocity(e, &v)
	w.ApplyForceVel(e, r2.Vec{X: 100}, 0)

	w.Step(dt)
	require.Equal(t, v, w.Velocity(e))
	require.Equal(t, components.Position{X: 3}, w.Position(e))
}

func TestDynamicVelocityLimitAndDamping(t *testing.T) {
	w := NewWorld(10)
	es := newEntities(t, 2)
	limited, frozen := es[0], es[1]
	for _, e := range es {
		w.Insert(e, components.Position{})
		w.SetMass(e, &components.Mass{Linear: 1})
		w.SetDynamic(e, &components.Dynamic{})
		w.SetVelocity(e, &components.Velocity{Linear: r2.Vec{X: 10}, Angular: 10})
	}
	w.SetVelocityLimit(limited, &components.VelocityLimit{Linear: 2, Angular: 1})

	w.Step(dt)
	v := w.Velocity(limited)
	require.InDelta(t, 2, r2.Norm(v.Linear), 1e-9)
	require.InDelta(t, 1, v.Angular, 1e-9)
	require.Greater(t, w.Position(limited).X, 0.0)

	// no limit component clamps to rest
	require.Equal(t, components.Velocity{}, w.Velocity(frozen))
	require.True(t, w.IsDynamic(frozen))

	w.SetVelocityLimit(limited, &components.VelocityLimit{Linear: 100, Angular: 100})
	w.SetVelocityDamping(limited, &components.VelocityDamping{Linear: 1})
	w.SetVelocity(limited, &components.Velocity{Linear: r2.Vec{X: 10}})
	w.Step(dt)
	require.InDelta(t, 10/(1+dt), w.Velocity(limited).Linear.X, 1e-9)
}

func TestDynamicSwitchCarriesVelocity(t *testing.T) {
	w := NewWorld(10)
	e := newEntities(t, 1)[0]
	w.Insert(e, components.Position{})
	w.SetVelocityLimit(e, &components.VelocityLimit{Linear: 100, Angular: 100})
	w.SetVelocity(e, &components.Velocity{Linear: r2.Vec{Y: 3}})

	w.SetDynamic(e, &components.Dynamic{})
	require.Equal(t, r2.Vec{Y: 3}, w.Velocity(e).Linear)

	w.ApplyForceAcc(e, r2.Vec{Y: 60}, 0)
	w.Step(dt)
	require.InDelta(t, 4, w.Velocity(e).Linear.Y, 1e-9)

	w.SetDynamic(e, nil)
	require.False(t, w.IsDynamic(e))
	require.InDelta(t, 4, w.Velocity(e).Linear.Y, 1e-9)
}

func TestInteractionsAreSymmetric(t *testing.T) {
	w := NewWorld(10)
	es := newEntities(t, 3)
	portal, morph, block := es[0], es[1], es[2]

	// portal senses group 2; morph is group 2 and collides with group 5
	w.Insert(portal, components.Position{})
	w.SetShape(portal, &components.Shape{Kind: components.ShapeRect, HalfExtents: r2.Vec{X: 1, Y: 1}})
	w.SetSensor(portal, &components.Sensor{Group: 5, With: []int{2}})

	w.Insert(morph, components.Position{X: 0.5})
	w.SetShape(morph, &components.Shape{Kind: components.ShapeBall, Radius: 1})
	w.SetCollision(morph, &components.Collision{Group: 2, With: []int{5}})
	w.SetSensor(morph, &components.Sensor{Group: 2, With: []int{}})
	w.SetMass(morph, &components.Mass{Linear: 1})
	w.SetVelocityLimit(morph, &components.VelocityLimit{Linear: 10, Angular: 10})
	w.SetDynamic(morph, &components.Dynamic{})

	w.Insert(block, components.Position{X: 1.5})
	w.SetShape(block, &components.Shape{Kind: components.ShapeRect, HalfExtents: r2.Vec{X: 1, Y: 1}})
	w.SetCollision(block, &components.Collision{Group: 5, With: []int{2}})

	w.Step(dt)
	w.UpdateInteractions()

	require.ElementsMatch(t, []ecs.Entity{portal, morph, block}, w.Active())
	require.Equal(t, []Interaction{{With: morph, Action: Action{Kind: ActionIntersecting}}}, w.Interactions(portal))

	var contact, mirrored *Interaction
	for i, in := range w.Interactions(morph) {
		if in.With == block {
			contact = &w.Interactions(morph)[i]
		}
	}
	for i, in := range w.Interactions(block) {
		if in.With == morph {
			mirrored = &w.Interactions(block)[i]
		}
	}
	require.NotNil(t, contact)
	require.NotNil(t, mirrored)
	require.Equal(t, ActionContact, contact.Action.Kind)
	require.Equal(t, ActionContact, mirrored.Action.Kind)
	require.InDelta(t, -contact.Action.Normal.X, mirrored.Action.Normal.X, 1e-9)
	require.InDelta(t, -contact.Action.Normal.Y, mirrored.Action.Normal.Y, 1e-9)
	require.InDelta(t, 1, r2.Norm(contact.Action.Normal), 1e-6)

	for _, e := range w.Active() {
		for _, in := range w.Interactions(e) {
			found := false
			for _, back := range w.Interactions(in.With) {
				if back.With == e && back.Action.Kind == in.Action.Kind {
					found = true
				}
			}
			require.True(t, found, "missing mirror of %v -> %v", e, in.With)
		}
	}
}

func TestSensorDisjointIsReportedOnce(t *testing.T) {
	w := NewWorld(10)
	es := newEntities(t, 2)
	grid, morph := es[0], es[1]

	w.Insert(grid, components.Position{})
	w.SetShape(grid, &components.Shape{Kind: components.ShapeRect, HalfExtents: r2.Vec{X: 1, Y: 1}})
	w.SetSensor(grid, &components.Sensor{Group: 5, With: []int{3}})

	w.Insert(morph, components.Position{})
	w.SetShape(morph, &components.Shape{Kind: components.ShapeBall, Radius: 0.5})
	w.SetCollision(morph, &components.Collision{Group: 3, With: []int{5}})

	w.Step(dt)
	w.UpdateInteractions()
	require.Equal(t, ActionIntersecting, w.Interactions(morph)[0].Action.Kind)

	w.SetPosition(morph, components.Position{X: 10})
	w.Step(dt)
	w.UpdateInteractions()
	require.Equal(t, []Interaction{{With: grid, Action: Action{Kind: ActionDisjoint}}}, w.Interactions(morph))
	require.Equal(t, []Interaction{{With: morph, Action: Action{Kind: ActionDisjoint}}}, w.Interactions(grid))

	w.Step(dt)
	w.UpdateInteractions()
	require.Empty(t, w.Interactions(morph))
	require.Empty(t, w.Active())
}

func TestRemoveDropsPendingInteractions(t *testing.T) {
	w := NewWorld(10)
	es := newEntities(t, 2)
	court, morph := es[0], es[1]
	w.Insert(court, components.Position{})
	w.SetShape(court, &components.Shape{Kind: components.ShapeRect, HalfExtents: r2.Vec{X: 5, Y: 5}})
	w.SetSensor(court, &components.Sensor{Group: 5, With: []int{2}})
	w.Insert(morph, components.Position{})
	w.SetCollision(morph, &components.Collision{Group: 2, With: []int{5}})
	w.SetShape(morph, &components.Shape{Kind: components.ShapeBall, Radius: 0.5})

	w.Step(dt)
	w.UpdateInteractions()
	require.NotEmpty(t, w.Interactions(court))

	w.Remove(morph)
	w.Step(dt)
	w.UpdateInteractions()
	require.Empty(t, w.Interactions(court), "removal is not a disjoint event")
}

func TestWorldsStepConcurrently(t *testing.T) {
	const worlds = 4
	es := newEntities(t, 8)
	finals := make([]components.Position, worlds)

	var g errgroup.Group
	for i := 0; i < worlds; i++ {
		g.Go(func() error {
			w := NewWorld(10)
			for j, e := range es {
				w.Insert(e, components.Position{X: float64(j)})
				w.SetShape(e, &components.Shape{Kind: components.ShapeBall, Radius: 0.25})
			}
			w.SetDynamic(es[0], &components.Dynamic{})
			w.SetVelocity(es[0], &components.Velocity{Linear: r2.Vec{Y: 1}})
			for k := 0; k < 30; k++ {
				w.Step(dt)
				w.UpdateInteractions()
			}
			finals[i] = w.Position(es[0])
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, p := range finals[1:] {
		require.Equal(t, finals[0], p)
	}
}
