package game

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/camera"
	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/telemetry"
)

// RenderItem is everything a viewer needs to draw one entity.
type RenderItem struct {
	Entity      ecs.Entity
	Position    r2.Vec
	Rotation    float64
	HalfExtents r2.Vec
	Round       bool // Ball shape
	Plane       components.Plane
	Depth       float64
	Texture     components.Texture
	Slot        int
	Opacity     float64
}

// Snapshot returns the drawable entities in draw order: by plane from back
// to front, then depth, then texture.
func (s *Scene) Snapshot() []RenderItem {
	w := s.w
	var items []RenderItem
	for _, e := range w.Layer.Entities() {
		pos, okPos := w.Position.Get(e)
		shape, okShape := w.Shape.Get(e)
		tex, okTex := w.Texture.Get(e)
		if !okPos || !okShape || !okTex {
			continue
		}
		layer := w.Layer.MustGet(e)
		rot, _ := w.Rotation.Get(e)
		slot, _ := w.TextureSlot.Get(e)
		opacity := components.Opacity{Alpha: 1}
		if o, ok := w.Opacity.Get(e); ok {
			opacity = o
		}
		items = append(items, RenderItem{
			Entity:      e,
			Position:    pos.Vec(),
			Rotation:    rot.Angle,
			HalfExtents: shape.Size(),
			Round:       shape.Kind == components.ShapeBall,
			Plane:       layer.Plane,
			Depth:       layer.Depth(layer.Plane.Layer(w.Cfg)),
			Texture:     tex,
			Slot:        int(slot.Slot),
			Opacity:     opacity.Alpha,
		})
	}
	slices.SortStableFunc(items, func(a, b RenderItem) int {
		return cmp.Or(
			cmp.Compare(a.Plane, b.Plane),
			cmp.Compare(a.Depth, b.Depth),
			cmp.Compare(a.Texture.Source, b.Texture.Source),
			cmp.Compare(a.Texture.Index, b.Texture.Index),
		)
	})
	return items
}

// View fits the scene camera into a viewport. When the view had to be
// clamped, the camera entity is moved back inside the level.
func (s *Scene) View(viewportW, viewportH float64) camera.View {
	w := s.w
	e := w.Actors.Camera
	pos := w.Position.MustGet(e)
	v := camera.New(w.Camera.MustGet(e), pos.Vec(), viewportW, viewportH)
	if v.Center != pos.Vec() {
		w.Position.Update(e, func(p *components.Position) { *p = components.PositionOf(v.Center) })
	}
	return v
}

// Record samples the morph and fingerprints the simulated state.
func (s *Scene) Record(runID string) telemetry.FrameRecord {
	w := s.w
	morph := w.Actors.Morph
	rec := telemetry.FrameRecord{
		RunID:    runID,
		Frame:    s.frames,
		Time:     w.Time.AllTime,
		Entities: w.Store.Count(),
	}
	if state, ok := w.MorphState(morph); ok {
		rec.State = state.String()
	}
	pos, _ := w.Position.Get(morph)
	vel, _ := w.Velocity.Get(morph)
	rec.X, rec.Y = pos.X, pos.Y
	rec.VX, rec.VY = vel.Linear.X, vel.Linear.Y
	rec.Tags = telemetry.JoinTags(s.tags())

	d := telemetry.NewDigest()
	for _, e := range w.Store.Entities() {
		d.Uint(uint64(e.ID()))
		if p, ok := w.Position.Get(e); ok {
			d.Float(p.X)
			d.Float(p.Y)
		}
		if r, ok := w.Rotation.Get(e); ok {
			d.Float(r.Angle)
		}
		if v, ok := w.Velocity.Get(e); ok {
			d.Float(v.Linear.X)
			d.Float(v.Linear.Y)
			d.Float(v.Angular)
		}
	}
	rec.Digest = fmt.Sprintf("%016x", d.Sum())
	return rec
}

// tags lists the gameplay tags the morph carries.
func (s *Scene) tags() []string {
	w := s.w
	e := w.Actors.Morph
	var tags []string
	for _, t := range []struct {
		name string
		has  bool
	}{
		{"dynamic", w.Dynamic.Has(e)},
		{"burst", w.Burst.Has(e)},
		{"slow", w.Slow.Has(e)},
		{"finish", w.Finish.Has(e)},
		{"outside", w.Outside.Has(e)},
		{"contact", w.Contact.Has(e)},
	} {
		if t.has {
			tags = append(tags, t.name)
		}
	}
	return tags
}
