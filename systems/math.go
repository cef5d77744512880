package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// rotate turns v counter-clockwise by angle radians.
func rotate(v r2.Vec, angle float64) r2.Vec {
	sin, cos := math.Sincos(angle)
	return r2.Vec{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// withLength rescales v to length n. A zero vector stays zero.
func withLength(v r2.Vec, n float64) r2.Vec {
	l := r2.Norm(v)
	if l == 0 {
		return v
	}
	return r2.Scale(n/l, v)
}
