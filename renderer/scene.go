// Package renderer draws scene snapshots with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/camera"
	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/game"
)

// Flat colors of the game textures, indexed like components.TextureMetal
// and friends.
var gameColors = []rl.Color{
	{R: 150, G: 155, B: 165, A: 255}, // metal
	{R: 210, G: 70, B: 60, A: 255},   // rubber
	{R: 60, G: 130, B: 220, A: 255},  // water
	{R: 170, G: 225, B: 245, A: 255}, // bubble
	{R: 255, G: 255, B: 255, A: 255}, // morph effect
	{R: 150, G: 80, B: 200, A: 255},  // portal
	{R: 140, G: 110, B: 80, A: 255},  // object
	{R: 120, G: 40, B: 35, A: 255},   // rubber burst
	{R: 120, G: 160, B: 180, A: 255}, // bubble burst
}

var packageColor = rl.Color{R: 110, G: 120, B: 110, A: 255}

// SceneRenderer draws the entities of a scene snapshot.
type SceneRenderer struct {
	cfg      *config.Config
	textures *TextureCache
}

// NewSceneRenderer creates a renderer reading package images from textures.
func NewSceneRenderer(cfg *config.Config, textures *TextureCache) *SceneRenderer {
	return &SceneRenderer{cfg: cfg, textures: textures}
}

// Draw renders items, which must already be in draw order.
func (r *SceneRenderer) Draw(view camera.View, items []game.RenderItem) {
	scale := view.Scale()
	for i := range items {
		it := &items[i]
		parallax := it.Plane.Parallax(r.cfg)
		radius := math.Hypot(it.HalfExtents.X, it.HalfExtents.Y)
		if !view.IsVisible(it.Position, radius, parallax) {
			continue
		}
		center := view.WorldToScreen(it.Position, parallax)
		w := float32(2 * it.HalfExtents.X * scale)
		h := float32(2 * it.HalfExtents.Y * scale)
		// raylib rotates clockwise on screen, the world counter-clockwise
		deg := float32(-it.Rotation * 180 / math.Pi)
		alpha := float32(min(max(it.Opacity, 0), 1))

		if tex, ok := r.textures.Lookup(it.Texture, it.Slot); ok {
			src := rl.Rectangle{Width: float32(tex.Width), Height: float32(tex.Height)}
			dst := rl.Rectangle{X: float32(center.X), Y: float32(center.Y), Width: w, Height: h}
			rl.DrawTexturePro(tex, src, dst, rl.Vector2{X: w / 2, Y: h / 2}, deg, rl.Fade(rl.White, alpha))
			continue
		}

		col := rl.Fade(colorOf(it.Texture), alpha)
		if it.Round {
			r.drawBall(center, w/2, it.Rotation, col)
			continue
		}
		rl.DrawRectanglePro(
			rl.Rectangle{X: float32(center.X), Y: float32(center.Y), Width: w, Height: h},
			rl.Vector2{X: w / 2, Y: h / 2}, deg, col)
	}
}

// drawBall draws a disc with a spoke so rolling is visible.
func (r *SceneRenderer) drawBall(center r2.Vec, radius float32, angle float64, col rl.Color) {
	c := rl.Vector2{X: float32(center.X), Y: float32(center.Y)}
	rl.DrawCircleV(c, radius, col)
	tip := rl.Vector2{
		X: c.X + radius*float32(math.Cos(angle)),
		Y: c.Y - radius*float32(math.Sin(angle)),
	}
	rl.DrawLineEx(c, tip, 2, rl.Fade(rl.Black, 0.4))
}

func colorOf(tex components.Texture) rl.Color {
	if tex.Source == components.SourceGame && tex.Index >= 0 && tex.Index < len(gameColors) {
		return gameColors[tex.Index]
	}
	return packageColor
}
