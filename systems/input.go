package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/components"
)

// Input is the one-shot event resource written before the passes run and
// cleared at Maintain.
type Input struct {
	SceneStart bool
	SceneEnd   bool
	Morph      *components.MorphState
	CameraMove *r2.Vec
}

// RequestMorph records a morph change request for this frame.
func (in *Input) RequestMorph(state components.MorphState) {
	in.Morph = &state
}

// MoveCamera accumulates a camera move for this frame.
func (in *Input) MoveCamera(delta r2.Vec) {
	if in.CameraMove != nil {
		delta = r2.Add(*in.CameraMove, delta)
	}
	in.CameraMove = &delta
}

// Clear drops every event.
func (in *Input) Clear() {
	*in = Input{}
}

// InputMorphSystem applies scene start and morph change requests to the morph.
type InputMorphSystem struct{}

// NewInputMorphSystem creates the morph input pass.
func NewInputMorphSystem() *InputMorphSystem {
	return &InputMorphSystem{}
}

// Update runs the pass.
func (s *InputMorphSystem) Update(w *World) {
	morph := w.Actors.Morph
	if w.Input.SceneStart {
		w.Dynamic.Insert(morph, components.Dynamic{})
	}
	if w.Input.Morph != nil {
		// the tag swap and the profile write happen in one pass
		w.SetMorphState(morph, *w.Input.Morph)
		w.ApplyProfile(morph, *w.Input.Morph)
	}
}

// InputCameraSystem makes the camera follow the morph and applies camera moves.
type InputCameraSystem struct{}

// NewInputCameraSystem creates the camera input pass.
func NewInputCameraSystem() *InputCameraSystem {
	return &InputCameraSystem{}
}

// Update runs the pass.
func (s *InputCameraSystem) Update(w *World) {
	camera := w.Actors.Camera
	if w.Input.SceneStart {
		w.Follow.Insert(camera, components.Follow{Target: w.Actors.Morph})
		w.FollowLag.Insert(camera, components.FollowLag{Lag: w.Cfg.Level.CameraFollow})
	}
	if w.Input.CameraMove != nil {
		d := *w.Input.CameraMove
		speed := w.Cfg.Level.CameraSpeed
		w.Velocity.Upsert(camera, components.Velocity{}, func(v *components.Velocity) {
			v.Linear = r2.Add(v.Linear, r2.Vec{X: d.X * speed, Y: -d.Y * speed})
		})
	}
}
