package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/camera"
)

// BackgroundRenderer fills the screen with a vertical gradient and outlines
// the court.
type BackgroundRenderer struct {
	top, bottom rl.Color
	border      rl.Color
}

// NewBackgroundRenderer creates a new background renderer.
func NewBackgroundRenderer(baseR, baseG, baseB uint8) *BackgroundRenderer {
	return &BackgroundRenderer{
		top:    rl.Color{R: baseR, G: baseG, B: baseB, A: 255},
		bottom: rl.Color{R: baseR / 3, G: baseG / 3, B: baseB / 3, A: 255},
		border: rl.Color{R: 200, G: 200, B: 220, A: 90},
	}
}

// Draw renders the background behind a view. court holds the half extents
// of the level.
func (b *BackgroundRenderer) Draw(view camera.View, court r2.Vec) {
	rl.DrawRectangleGradientV(0, 0, int32(view.ViewportW), int32(view.ViewportH), b.top, b.bottom)

	tl := view.WorldToScreen(r2.Vec{X: -court.X, Y: court.Y}, 1)
	br := view.WorldToScreen(r2.Vec{X: court.X, Y: -court.Y}, 1)
	rl.DrawRectangleLinesEx(rl.Rectangle{
		X:      float32(tl.X),
		Y:      float32(tl.Y),
		Width:  float32(br.X - tl.X),
		Height: float32(br.Y - tl.Y),
	}, 2, b.border)
}
