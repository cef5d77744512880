package components

import (
	"github.com/mlange-42/ark/ecs"
)

// GameTime is the simulation clock.
type GameTime struct {
	FrameTime float64 // Seconds simulated by the current frame
	AllTime   float64 // Seconds since the scene started
}

// Advance starts a new frame of length dt.
func (t *GameTime) Advance(dt float64) {
	t.FrameTime = dt
	t.AllTime += dt
}

// After returns the absolute time d seconds from now.
func (t *GameTime) After(d float64) float64 {
	return t.AllTime + d
}

// Actors holds the entities every scene has exactly one of.
type Actors struct {
	Camera ecs.Entity
	Morph  ecs.Entity
	Portal ecs.Entity
}

// Output is the scene result the caller polls each frame.
type Output struct {
	Delay   float64 // Seconds to wait before leaving the scene
	Exit    bool
	Success bool
}

// SetSuccess records a win.
func (o *Output) SetSuccess(delay float64) {
	o.Delay = delay
	o.Exit = true
	o.Success = true
}

// SetFailure records a loss.
func (o *Output) SetFailure(delay float64) {
	o.Delay = delay
	o.Exit = true
	o.Success = false
}
