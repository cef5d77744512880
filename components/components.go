// Package components defines ECS components for the simulation.
package components

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Morph material tags. Exactly one is present on the controlled morph.
type (
	Metal  struct{}
	Rubber struct{}
	Water  struct{}
	Bubble struct{}
)

// Level role tags.
type (
	Block  struct{}
	Spikes struct{}
	Grid   struct{}
	Court  struct{}
	Portal struct{}
)

// Breakable shatters together with every entity of the same group.
type Breakable struct {
	Group int
}

// Accelerator pushes intersecting morphs with Force.
type Accelerator struct {
	Force r2.Vec
}

// Gameplay state tags written by interaction resolution.
type (
	Burst   struct{}
	Slow    struct{}
	Finish  struct{}
	Outside struct{}
	Broken  struct{}
)

// Contact holds the impulse of the latest solid contact, projected on its normal.
type Contact struct {
	Impulse r2.Vec
}

// Face tags select the morph texture slot.
type (
	Blink    struct{}
	Squeeze  struct{}
	Surprise struct{}
)
