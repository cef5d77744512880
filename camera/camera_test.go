package camera

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/components"
)

func TestAspect(t *testing.T) {
	require.Equal(t, r2.Vec{X: 2, Y: 1}, Aspect(1280, 640))
	require.Equal(t, r2.Vec{X: 1, Y: 2}, Aspect(640, 1280))
	require.Equal(t, r2.Vec{X: 1, Y: 1}, Aspect(500, 500))
}

func TestNewClampsZoomAndPosition(t *testing.T) {
	tests := []struct {
		name     string
		cam      components.Camera
		pos      r2.Vec
		zoom     float64
		center   r2.Vec
		halfSize r2.Vec
	}{
		{
			name:     "centered",
			cam:      components.Camera{Zoom: 5, MaxDimension: r2.Vec{X: 30, Y: 20}},
			zoom:     5,
			halfSize: r2.Vec{X: 10, Y: 5},
		},
		{
			name:     "position clamped to level",
			cam:      components.Camera{Zoom: 5, MaxDimension: r2.Vec{X: 30, Y: 20}},
			pos:      r2.Vec{X: 100, Y: -100},
			zoom:     5,
			center:   r2.Vec{X: 20, Y: -15},
			halfSize: r2.Vec{X: 10, Y: 5},
		},
		{
			name:     "zoom limited by level width",
			cam:      components.Camera{Zoom: 50, MaxDimension: r2.Vec{X: 8, Y: 20}},
			pos:      r2.Vec{X: 3, Y: 3},
			zoom:     4,
			center:   r2.Vec{X: 0, Y: 3},
			halfSize: r2.Vec{X: 8, Y: 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(tt.cam, tt.pos, 1280, 640)
			require.InDelta(t, tt.zoom, v.Zoom, 1e-9)
			require.InDelta(t, tt.center.X, v.Center.X, 1e-9)
			require.InDelta(t, tt.center.Y, v.Center.Y, 1e-9)
			require.InDelta(t, tt.halfSize.X, v.Dimension.X, 1e-9)
			require.InDelta(t, tt.halfSize.Y, v.Dimension.Y, 1e-9)
		})
	}
}

func TestWorldToScreen(t *testing.T) {
	v := New(components.Camera{Zoom: 5, MaxDimension: r2.Vec{X: 30, Y: 20}}, r2.Vec{X: 2, Y: 1}, 1280, 640)
	require.InDelta(t, 64.0, v.Scale(), 1e-9)

	center := v.WorldToScreen(r2.Vec{X: 2, Y: 1}, 1)
	require.InDelta(t, 640, center.X, 1e-9)
	require.InDelta(t, 320, center.Y, 1e-9)

	above := v.WorldToScreen(r2.Vec{X: 2, Y: 2}, 1)
	require.Less(t, above.Y, center.Y, "world up is screen up")

	// a far plane scrolls slower: the same world point sits further right
	far := v.WorldToScreen(r2.Vec{X: 2, Y: 1}, 0.8)
	require.Greater(t, far.X, center.X)
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	v := New(components.Camera{Zoom: 5, MaxDimension: r2.Vec{X: 30, Y: 20}}, r2.Vec{X: -4, Y: 2}, 1280, 720)
	for _, p := range []r2.Vec{{X: 640, Y: 360}, {X: 100, Y: 100}, {X: 1200, Y: 600}} {
		for _, parallax := range []float64{0.8, 1, 1.1} {
			got := v.WorldToScreen(v.ScreenToWorld(p, parallax), parallax)
			require.InDelta(t, p.X, got.X, 1e-6)
			require.InDelta(t, p.Y, got.Y, 1e-6)
		}
	}
}

func TestIsVisible(t *testing.T) {
	v := New(components.Camera{Zoom: 5, MaxDimension: r2.Vec{X: 30, Y: 20}}, r2.Vec{}, 1280, 640)
	require.True(t, v.IsVisible(r2.Vec{X: 9}, 0, 1))
	require.False(t, v.IsVisible(r2.Vec{X: 12}, 1, 1))
	require.True(t, v.IsVisible(r2.Vec{X: 12}, 2.5, 1))
}
