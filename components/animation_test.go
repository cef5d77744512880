package components

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestNewAnimationRejectsBadKeyframes(t *testing.T) {
	tests := []struct {
		name     string
		frames   int
		duration float64
		err      error
	}{
		{"no frames", 0, 1, ErrNoFrames},
		{"too many frames", MaxFrames + 1, 1, ErrTooManyFrames},
		{"zero duration", 2, 0, ErrBadDuration},
		{"negative duration", 2, -1, ErrBadDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames := make([]Opacity, tt.frames)
			_, err := NewAnimation(frames, tt.duration, AnimationSingle)
			require.ErrorIs(t, err, tt.err)
		})
	}

	_, err := NewAnimation(make([]Opacity, MaxFrames), 1, AnimationSingle)
	require.NoError(t, err)
}

func TestAnimationIndexStaysInBounds(t *testing.T) {
	for n := 1; n <= MaxFrames; n++ {
		frames := make([]TextureSlot, n)
		for i := range frames {
			frames[i] = TextureSlot{Slot: float64(i)}
		}
		anim := MustAnimation(frames, 0.3, AnimationSingle)
		for _, current := range []float64{-1, 0, 0.1, 0.15, 0.2999999, 0.3, 0.31, 5} {
			anim.Current = current
			lower, upper, frac := anim.Index()
			require.GreaterOrEqual(t, lower, 0)
			require.LessOrEqual(t, upper, n-1)
			require.GreaterOrEqual(t, frac, 0.0)
			require.Less(t, frac, 1.0)
			require.NotPanics(t, func() { anim.Sample() })
		}
	}
}

func TestAnimationSample(t *testing.T) {
	anim := MustAnimation([]TextureSlot{{0}, {10}, {30}}, 2, AnimationSingle)

	anim.Current = 0
	require.InDelta(t, 0, anim.Sample().Slot, 1e-9)
	anim.Current = 0.5
	require.InDelta(t, 5, anim.Sample().Slot, 1e-9)
	anim.Current = 1.5
	require.InDelta(t, 20, anim.Sample().Slot, 1e-9)
	anim.Current = 2
	require.InDelta(t, 30, anim.Sample().Slot, 1e-9)
}

func TestAnimationAdvance(t *testing.T) {
	t.Run("single completes at duration", func(t *testing.T) {
		anim := MustAnimation([]Opacity{{1}, {0}}, 1, AnimationSingle)
		require.False(t, anim.Advance(0.5))
		require.True(t, anim.Advance(0.5))
	})
	t.Run("repeat wraps into range", func(t *testing.T) {
		anim := MustAnimation([]Opacity{{1}, {0}}, 1, AnimationRepeat)
		require.False(t, anim.Advance(0.75))
		require.False(t, anim.Advance(0.5))
		require.InDelta(t, 0.25, anim.Current, 1e-9)
		require.False(t, anim.Advance(0.75))
		require.GreaterOrEqual(t, anim.Current, 0.0)
		require.Less(t, anim.Current, 1.0)
	})
}

func TestShapeInterpolation(t *testing.T) {
	got := Ball(2).Interpolate(Ball(0), 0.25)
	require.Equal(t, ShapeBall, got.Kind)
	require.InDelta(t, 1.5, got.Radius, 1e-9)

	rect := Rect(r2.Vec{X: 1, Y: 2}).Interpolate(Rect(r2.Vec{X: 3, Y: 2}), 0.5)
	require.Equal(t, r2.Vec{X: 2, Y: 2}, rect.HalfExtents)

	require.Panics(t, func() { Ball(1).Interpolate(Rect(r2.Vec{X: 1, Y: 1}), 0.5) })
}
