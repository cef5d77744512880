// Package camera maps world coordinates of a scene to screen pixels.
//
// The visible area keeps the window's aspect ratio: its short side spans
// twice the camera zoom in world units. Planes other than the view plane
// scroll with a parallax factor applied to the camera position.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/components"
)

// View is the camera state of one drawn frame.
type View struct {
	// Center is the camera position in world coordinates, clamped so the
	// visible area stays inside the level.
	Center r2.Vec

	// Dimension holds the half extents of the visible area in world units.
	Dimension r2.Vec

	// Zoom actually used; never larger than the level allows.
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64
}

// Aspect returns the aspect vector of a viewport: the long side is scaled by
// the ratio, the short side is 1.
func Aspect(viewportW, viewportH float64) r2.Vec {
	ratio := viewportW / viewportH
	if ratio > 1 {
		return r2.Vec{X: ratio, Y: 1}
	}
	return r2.Vec{X: 1, Y: 1 / ratio}
}

// New fits cam at pos into a viewport.
func New(cam components.Camera, pos r2.Vec, viewportW, viewportH float64) View {
	aspect := Aspect(viewportW, viewportH)
	maxZoom := math.Min(cam.MaxDimension.X/aspect.X, cam.MaxDimension.Y/aspect.Y)
	zoom := math.Min(cam.Zoom, maxZoom)

	dim := r2.Scale(zoom, aspect)
	space := r2.Vec{
		X: math.Abs(cam.MaxDimension.X - dim.X),
		Y: math.Abs(cam.MaxDimension.Y - dim.Y),
	}
	return View{
		Center: r2.Vec{
			X: clamp(pos.X, -space.X, space.X),
			Y: clamp(pos.Y, -space.Y, space.Y),
		},
		Dimension: dim,
		Zoom:      zoom,
		ViewportW: viewportW,
		ViewportH: viewportH,
	}
}

// Scale returns screen pixels per world unit.
func (v View) Scale() float64 {
	return v.ViewportH / (2 * v.Dimension.Y)
}

// Eye returns the camera position as seen from a plane scrolling with
// parallax.
func (v View) Eye(parallax float64) r2.Vec {
	return r2.Scale(parallax, v.Center)
}

// WorldToScreen converts world coordinates on a plane to screen pixels.
// Screen y grows downwards, world y upwards.
func (v View) WorldToScreen(p r2.Vec, parallax float64) r2.Vec {
	eye := v.Eye(parallax)
	s := v.Scale()
	return r2.Vec{
		X: v.ViewportW/2 + (p.X-eye.X)*s,
		Y: v.ViewportH/2 - (p.Y-eye.Y)*s,
	}
}

// ScreenToWorld converts screen pixels to world coordinates on a plane.
func (v View) ScreenToWorld(p r2.Vec, parallax float64) r2.Vec {
	eye := v.Eye(parallax)
	s := v.Scale()
	return r2.Vec{
		X: eye.X + (p.X-v.ViewportW/2)/s,
		Y: eye.Y - (p.Y-v.ViewportH/2)/s,
	}
}

// IsVisible returns true if a circle at p could be visible on screen
// (conservative check for culling).
func (v View) IsVisible(p r2.Vec, radius, parallax float64) bool {
	eye := v.Eye(parallax)
	return math.Abs(p.X-eye.X) <= v.Dimension.X+radius &&
		math.Abs(p.Y-eye.Y) <= v.Dimension.Y+radius
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
