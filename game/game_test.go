package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/level"
)

const dt = 1.0 / 60

func intPtr(v int) *int { return &v }

// testPackage holds one level: a large court, the morph at the origin and
// the given objects. The portal sits far away unless moved.
func testPackage(state components.MorphState, objects ...level.Object) *level.Package {
	return &level.Package{
		Name:     "test",
		Textures: [][]string{{"wall.png"}},
		Levels: []level.Level{{
			Dimension:       level.Vec{30, 30},
			AvailableMorphs: map[string]int{"metal": 1, "rubber": 0, "water": 2, "bubble": 1},
			Morph:           level.Morph{State: state},
			Target:          level.Target{Position: level.Vec{20, 20}},
			Objects:         objects,
		}},
	}
}

func newTestGame(t *testing.T, pkg *level.Package) *Game {
	t.Helper()
	g, err := New(config.Default(), pkg, zaptest.NewLogger(t), Options{Seed: 7})
	require.NoError(t, err)
	return g
}

// runUntil steps g until cond holds and fails after max frames.
func runUntil(t *testing.T, g *Game, max int, cond func() bool) int {
	t.Helper()
	for i := 1; i <= max; i++ {
		g.Update(dt)
		if cond() {
			return i
		}
	}
	t.Fatalf("condition not met within %d frames", max)
	return 0
}

func TestSceneConstruction(t *testing.T) {
	pkg := testPackage(components.StateMetal,
		level.Object{
			Position:    level.Vec{0, -5},
			Size:        level.Vec{10, 1},
			Role:        components.RoleBlock,
			Texture:     intPtr(0),
			TextureInfo: &level.TextureInfo{Layer: 2, Plane: components.PlaneMid},
		},
		level.Object{
			Position: level.Vec{5, 0},
			Size:     level.Vec{1, 1},
			Role:     components.RoleAccelerator,
			Accelerator: &level.Accelerator{
				Direction: components.DirectionUp,
				Amplitude: 20,
				Morph:     map[string]bool{"water": true, "bubble": true, "metal": false},
			},
		},
	)
	g := newTestGame(t, pkg)
	w := g.Scene().World()
	cfg := w.Cfg

	// court, morph, portal, two objects, camera
	require.Equal(t, 6, w.Store.Count())

	morph := w.Actors.Morph
	require.True(t, w.Metal.Has(morph))
	require.False(t, w.Dynamic.Has(morph))
	require.Equal(t, components.Layer{Plane: components.PlaneView, Rank: 1}, w.Layer.MustGet(morph))

	portal := w.Actors.Portal
	require.Equal(t, components.Layer{Plane: components.PlaneView, Rank: 2}, w.Layer.MustGet(portal))
	require.Equal(t, components.Rect(r2.Vec{X: 1.5, Y: 1.5}), w.Shape.MustGet(portal))
	require.Equal(t, components.AnimationRepeat, w.RotationAnim.MustGet(portal).Kind)

	camera := w.Actors.Camera
	require.True(t, w.Dynamic.Has(camera))
	require.Equal(t, components.VelocityLimit{Linear: 15}, w.VelocityLimit.MustGet(camera))
	require.Equal(t, components.Camera{Zoom: cfg.Level.CameraZoom, MaxDimension: r2.Vec{X: 30, Y: 30}}, w.Camera.MustGet(camera))

	accs := w.Accelerator.Entities()
	require.Len(t, accs, 1)
	require.Equal(t, r2.Vec{Y: 20}, w.Accelerator.MustGet(accs[0]).Force)
	require.Equal(t, []int{cfg.Physic.GroupWater, cfg.Physic.GroupBubble}, w.Sensor.MustGet(accs[0]).With)

	blocks := w.Block.Entities()
	require.Len(t, blocks, 1)
	require.Equal(t, components.PackageTexture(0), w.Texture.MustGet(blocks[0]))
	require.Equal(t, components.Layer{Plane: components.PlaneMid, Rank: 2}, w.Layer.MustGet(blocks[0]))
}

func TestPreviewKeepsMorphAtRest(t *testing.T) {
	g := newTestGame(t, testPackage(components.StateMetal))
	w := g.Scene().World()
	for i := 0; i < 30; i++ {
		g.Update(dt)
	}
	require.Equal(t, PhasePreview, g.Phase())
	require.Equal(t, components.Position{}, w.Position.MustGet(w.Actors.Morph))

	g.Write(Start())
	g.Update(dt)
	require.Equal(t, PhaseRunning, g.Phase())
	runUntil(t, g, 60, func() bool { return w.Position.MustGet(w.Actors.Morph).Y < -0.1 })
	require.True(t, w.Follow.Has(w.Actors.Camera))
}

func TestRubberOnSpikesFails(t *testing.T) {
	pkg := testPackage(components.StateRubber, level.Object{
		Position: level.Vec{0, -3},
		Size:     level.Vec{5, 0.5},
		Role:     components.RoleSpikes,
	})
	g := newTestGame(t, pkg)
	w := g.Scene().World()
	morph := w.Actors.Morph

	g.Write(Start())
	runUntil(t, g, 180, func() bool { return w.Burst.Has(morph) })
	require.Equal(t, components.Output{Delay: 1.5, Exit: true, Success: false}, g.Scene().Output())
	require.Equal(t, components.TextureRubberBurst, w.Texture.MustGet(morph))

	runUntil(t, g, 120, func() bool { return g.Phase() == PhaseFinish })
	res, ok := g.Result()
	require.True(t, ok)
	require.False(t, res.Success)
	require.Equal(t, "test", res.Package)
}

func TestPortalFinishSucceeds(t *testing.T) {
	pkg := testPackage(components.StateMetal)
	pkg.Levels[0].Target.Position = level.Vec{0, -4}
	g := newTestGame(t, pkg)
	w := g.Scene().World()
	morph := w.Actors.Morph

	g.Write(Start())
	runUntil(t, g, 180, func() bool { return w.Finish.Has(morph) })
	require.False(t, w.Dynamic.Has(morph))
	require.Equal(t, components.FollowSpring{Stiffness: 35, Damping: 5}, w.FollowSpring.MustGet(morph))
	require.Equal(t, components.Follow{Target: w.Actors.Portal}, w.Follow.MustGet(morph))
	require.Equal(t, components.Output{Delay: 1.5, Exit: true, Success: true}, g.Scene().Output())

	runUntil(t, g, 120, func() bool { return g.Phase() == PhaseFinish })
	res, ok := g.Result()
	require.True(t, ok)
	require.True(t, res.Success)

	for i := 0; i < 360; i++ {
		g.Update(dt)
	}
	pos := w.Position.MustGet(morph)
	require.InDelta(t, 0, pos.X, 1e-2)
	require.InDelta(t, -4, pos.Y, 1e-2)
}

func TestRequestMorphCounts(t *testing.T) {
	g := newTestGame(t, testPackage(components.StateMetal))
	s := g.Scene()
	w := s.World()

	require.ErrorIs(t, s.RequestMorph(components.StateWater), ErrNotRunning)

	g.Write(Start())
	g.Update(dt)
	require.ErrorIs(t, s.RequestMorph(components.StateMetal), ErrMorphUnchanged)
	require.ErrorIs(t, s.RequestMorph(components.StateRubber), ErrMorphUnavailable)

	g.Write(Morph(components.StateBubble))
	g.Update(dt)
	require.True(t, w.Bubble.Has(w.Actors.Morph))
	require.Zero(t, s.Available(components.StateBubble))
	require.Equal(t, 1, s.MorphsUsed())

	g.Write(Morph(components.StateWater))
	g.Write(Morph(components.StateMetal))
	g.Update(dt)
	require.True(t, w.Metal.Has(w.Actors.Morph), "the last request of a frame wins")
	require.Equal(t, 3, s.MorphsUsed())

	// exhausted
	g.Write(Morph(components.StateBubble))
	g.Update(dt)
	require.True(t, w.Metal.Has(w.Actors.Morph))
}

func TestSnapshotDrawOrder(t *testing.T) {
	pkg := testPackage(components.StateMetal,
		level.Object{
			Position: level.Vec{0, -5}, Size: level.Vec{10, 1}, Role: components.RoleBlock,
			Texture: intPtr(0), TextureInfo: &level.TextureInfo{Layer: 0, Plane: components.PlaneNear},
		},
		level.Object{
			Position: level.Vec{0, 5}, Size: level.Vec{10, 1}, Role: components.RoleBlock,
			Texture: intPtr(0), TextureInfo: &level.TextureInfo{Layer: 3, Plane: components.PlaneFar},
		},
		level.Object{
			Position: level.Vec{0, 8}, Size: level.Vec{1, 1}, Role: components.RoleBlock,
			Texture: intPtr(-1),
		},
	)
	g := newTestGame(t, pkg)

	items := g.Scene().Snapshot()
	require.Len(t, items, 4, "untextured objects are not drawn")
	planes := make([]components.Plane, len(items))
	for i, it := range items {
		planes[i] = it.Plane
		require.Equal(t, 1.0, it.Opacity)
	}
	require.Equal(t, []components.Plane{
		components.PlaneFar, components.PlaneView, components.PlaneView, components.PlaneNear,
	}, planes)
	require.InDelta(t, -8.3, items[0].Depth, 1e-9)
	// the portal (rank 2) is drawn behind the morph (rank 1)
	require.Less(t, items[1].Depth, items[2].Depth)
	require.True(t, items[2].Round)
}

func TestRecordIsDeterministic(t *testing.T) {
	play := func() []string {
		g := newTestGame(t, testPackage(components.StateRubber, level.Object{
			Position: level.Vec{0, -4}, Size: level.Vec{10, 1}, Role: components.RoleBlock,
		}))
		g.Write(Start())
		var digests []string
		for i := 0; i < 90; i++ {
			g.Update(dt)
			digests = append(digests, g.Scene().Record("run").Digest)
		}
		return digests
	}
	a, b := play(), play()
	require.Equal(t, a, b)
	require.NotEqual(t, a[0], a[len(a)-1])
}

func TestPauseHaltsSimulation(t *testing.T) {
	g := newTestGame(t, testPackage(components.StateMetal))
	g.Write(Start())
	g.Update(dt)
	g.Write(Event{Kind: EventPause})
	g.Update(dt)
	require.True(t, g.Paused())

	frames := g.Scene().Frames()
	g.Update(dt)
	require.Equal(t, frames, g.Scene().Frames())

	g.Write(Event{Kind: EventPause})
	g.Update(dt)
	require.False(t, g.Paused())
	g.Update(dt)
	require.Equal(t, frames+1, g.Scene().Frames())
}

func TestLevelSequence(t *testing.T) {
	pkg := testPackage(components.StateMetal)
	pkg.Levels = append(pkg.Levels, pkg.Levels[0])
	g := newTestGame(t, pkg)

	more, err := g.Next()
	require.NoError(t, err)
	require.True(t, more)
	require.Equal(t, 1, g.Level())

	more, err = g.Next()
	require.NoError(t, err)
	require.False(t, more)

	require.NoError(t, g.Restart())
	require.Equal(t, PhasePreview, g.Phase())
	require.ErrorIs(t, g.Load(5), level.ErrInvalidValue)
}

func TestFrameTimeIsClamped(t *testing.T) {
	g := newTestGame(t, testPackage(components.StateMetal))
	g.Update(5)
	w := g.Scene().World()
	require.Equal(t, w.Cfg.Sim.MaxFrameTime, w.Time.FrameTime)
	g.Update(-1)
	require.Zero(t, w.Time.FrameTime)
	require.False(t, math.IsNaN(w.Time.AllTime))
}

func TestViewClampsCamera(t *testing.T) {
	g := newTestGame(t, testPackage(components.StateMetal))
	s := g.Scene()
	w := s.World()
	cam := w.Actors.Camera

	v := s.View(1280, 640)
	require.Equal(t, r2.Vec{}, v.Center)

	w.Position.Update(cam, func(p *components.Position) { p.X = 100 })
	v = s.View(1280, 640)
	require.Less(t, v.Center.X, 100.0)
	require.Equal(t, v.Center.X, w.Position.MustGet(cam).X)
}
