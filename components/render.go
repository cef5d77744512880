package components

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Camera holds the requested zoom and the half extents of the visitable area.
type Camera struct {
	Zoom         float64
	MaxDimension r2.Vec
}

// TextureSource tells which texture set an index refers to.
type TextureSource uint8

const (
	SourceGame    TextureSource = iota // Built-in game textures
	SourcePackage                      // Textures declared by the level package
)

// Texture references a texture array; the slot picks the image within it.
type Texture struct {
	Source TextureSource
	Index  int
}

func (t Texture) String() string {
	if t.Source == SourceGame {
		return fmt.Sprintf("game:%d", t.Index)
	}
	return fmt.Sprintf("package:%d", t.Index)
}

// Game textures.
var (
	TextureMetal       = Texture{SourceGame, 0}
	TextureRubber      = Texture{SourceGame, 1}
	TextureWater       = Texture{SourceGame, 2}
	TextureBubble      = Texture{SourceGame, 3}
	TextureMorph       = Texture{SourceGame, 4}
	TexturePortal      = Texture{SourceGame, 5}
	TextureObject      = Texture{SourceGame, 6}
	TextureRubberBurst = Texture{SourceGame, 7}
	TextureBubbleBurst = Texture{SourceGame, 8}
)

// PackageTexture references texture n of the level package.
func PackageTexture(n int) Texture {
	return Texture{SourcePackage, n}
}

// Morph face slots.
const (
	SlotNormal   = 0.0
	SlotBlink    = 1.0
	SlotSurprise = 2.0
	SlotSqueeze  = 3.0
)

// TextureSlot selects an image inside a texture array. Fractional values are
// truncated when drawing.
type TextureSlot struct {
	Slot float64
}

// Interpolate blends linearly towards to.
func (s TextureSlot) Interpolate(to TextureSlot, t float64) TextureSlot {
	return TextureSlot{Slot: lerp(s.Slot, to.Slot, t)}
}

// Layer orders drawing: plane first, then rank within the plane.
type Layer struct {
	Plane Plane
	Rank  uint8
}

// Depth returns the draw depth. More negative is further back, so larger
// ranks sit behind smaller ones within a plane.
func (l Layer) Depth(planeLayer float64) float64 {
	return -(planeLayer + float64(l.Rank)/10)
}

// Opacity is the draw alpha. An entity without Opacity is drawn opaque.
type Opacity struct {
	Alpha float64
}

// Interpolate blends linearly towards to.
func (o Opacity) Interpolate(to Opacity, t float64) Opacity {
	return Opacity{Alpha: lerp(o.Alpha, to.Alpha, t)}
}
