package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/game"
	"github.com/pthm-cable/morph/level"
)

func TestDrawSceneShowsMorph(t *testing.T) {
	cfg := config.Default()
	pkg := &level.Package{
		Name: "term",
		Levels: []level.Level{{
			Dimension:       level.Vec{30, 30},
			AvailableMorphs: map[string]int{"metal": 0, "rubber": 0, "water": 0, "bubble": 0},
			Morph:           level.Morph{State: components.StateMetal},
			Target:          level.Target{Position: level.Vec{20, 20}},
		}},
	}
	g, err := game.New(cfg, pkg, nil, game.Options{Seed: 1})
	require.NoError(t, err)

	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(80, 25)

	parallax := func(p components.Plane) float64 { return p.Parallax(cfg) }
	drawScene(screen, parallax, g.Scene(), 80, 24)

	r, _, _, _ := screen.GetContent(40, 12)
	require.Equal(t, '#', r)
}

func TestGlyphOf(t *testing.T) {
	require.Equal(t, 'O', glyphOf(components.TextureBubble).r)
	require.Equal(t, packageGlyph, glyphOf(components.PackageTexture(3)))
}
