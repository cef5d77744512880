package physix

import (
	"cmp"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
)

// ActionKind distinguishes the interaction variants.
type ActionKind uint8

const (
	ActionIntersecting ActionKind = iota // A sensor overlaps the other collider
	ActionDisjoint                       // A sensor stopped overlapping since the last update
	ActionContact                        // Solid colliders touch
)

func (k ActionKind) String() string {
	switch k {
	case ActionIntersecting:
		return "intersecting"
	case ActionDisjoint:
		return "disjoint"
	default:
		return "contact"
	}
}

// Action is a sensor state or a contact with its normal.
type Action struct {
	Kind   ActionKind
	Normal r2.Vec // contact normal pointing away from the recording entity; zero for sensors
}

// Interaction is one record in an entity's interaction list.
type Interaction struct {
	With   ecs.Entity
	Action Action
}

// collider is one side of a touching pair.
type collider struct {
	h      *handle
	sensor bool
}

func (c collider) less(o collider) bool {
	if c.h.seq != o.h.seq {
		return c.h.seq < o.h.seq
	}
	return !c.sensor && o.sensor
}

// pairKey identifies a collider pair independently of the engine's shape
// objects, which are replaced when a shape changes.
type pairKey struct {
	lo, hi collider
}

func (k pairKey) involves(h *handle) bool {
	return k.lo.h == h || k.hi.h == h
}

func (k pairKey) sensor() bool {
	return k.lo.sensor || k.hi.sensor
}

// touch is what the engine reported about a pair during the last step.
type touch struct {
	normal r2.Vec // from lo towards hi
}

func (w *World) preSolve(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
	sa, sb := arb.Shapes()
	ha, okA := sa.UserData.(*handle)
	hb, okB := sb.UserData.(*handle)
	if !okA || !okB || ha == hb {
		return true
	}
	a := collider{ha, sa == ha.sensor}
	b := collider{hb, sb == hb.sensor}
	if !a.sensor && !b.sensor {
		// two non-dynamic bodies never produce a contact response
		if !ha.dynamic && !hb.dynamic {
			return true
		}
		if arb.Count() == 0 {
			return true
		}
	}
	normal := fromCP(arb.Normal())
	key := pairKey{a, b}
	if b.less(a) {
		key = pairKey{b, a}
		normal = r2.Scale(-1, normal)
	}
	w.touching[key] = touch{normal: normal}
	return true
}

// UpdateInteractions rebuilds the interaction index from the pairs the last
// step reported. Every pair is recorded under both entities: sensor states
// verbatim, contact normals negated for the second entity. A sensor pair that
// touched at the previous update but no longer does yields Disjoint once.
func (w *World) UpdateInteractions() {
	clear(w.interactions)
	w.active = w.active[:0]

	keys := make([]pairKey, 0, len(w.touching))
	for key := range w.touching {
		keys = append(keys, key)
	}
	sensors := make(map[pairKey]struct{})
	for _, key := range keys {
		if key.sensor() {
			sensors[key] = struct{}{}
		}
	}
	for key := range w.prevSensors {
		if _, still := sensors[key]; !still {
			keys = append(keys, key)
		}
	}
	slices.SortFunc(keys, comparePairs)

	for _, key := range keys {
		lo, hi := key.lo.h, key.hi.h
		t, touching := w.touching[key]
		switch {
		case !touching:
			w.record(lo, hi, Action{Kind: ActionDisjoint})
			w.record(hi, lo, Action{Kind: ActionDisjoint})
		case key.sensor():
			w.record(lo, hi, Action{Kind: ActionIntersecting})
			w.record(hi, lo, Action{Kind: ActionIntersecting})
		default:
			w.record(lo, hi, Action{Kind: ActionContact, Normal: t.normal})
			w.record(hi, lo, Action{Kind: ActionContact, Normal: r2.Scale(-1, t.normal)})
		}
	}
	w.prevSensors = sensors

	slices.SortFunc(w.active, func(a, b ecs.Entity) int {
		return cmp.Compare(w.handles[a].seq, w.handles[b].seq)
	})
}

func (w *World) record(from, to *handle, a Action) {
	list, seen := w.interactions[from.entity]
	if !seen {
		w.active = append(w.active, from.entity)
	}
	w.interactions[from.entity] = append(list, Interaction{With: to.entity, Action: a})
}

func comparePairs(a, b pairKey) int {
	if c := compareCollider(a.lo, b.lo); c != 0 {
		return c
	}
	return compareCollider(a.hi, b.hi)
}

func compareCollider(a, b collider) int {
	switch {
	case a.less(b):
		return -1
	case b.less(a):
		return 1
	}
	return 0
}

// Interactions returns the records of e from the last UpdateInteractions.
// The slice must not be modified.
func (w *World) Interactions(e ecs.Entity) []Interaction {
	return w.interactions[e]
}

// Active returns the entities with at least one interaction, in admission order.
func (w *World) Active() []ecs.Entity {
	return w.active
}
