package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/game"
)

// Terminal cells are about twice as tall as wide; the view is computed on a
// grid with square pixels and halved vertically.
const cellAspect = 2

type glyph struct {
	r     rune
	color tcell.Color
}

var gameGlyphs = []glyph{
	{'#', tcell.ColorSilver},    // metal
	{'o', tcell.ColorRed},       // rubber
	{'~', tcell.ColorBlue},      // water
	{'O', tcell.ColorAqua},      // bubble
	{'*', tcell.ColorWhite},     // morph effect
	{'@', tcell.ColorPurple},    // portal
	{'=', tcell.ColorOlive},     // object
	{'x', tcell.ColorMaroon},    // rubber burst
	{'.', tcell.ColorLightBlue}, // bubble burst
}

var packageGlyph = glyph{'█', tcell.ColorGray}

func glyphOf(tex components.Texture) glyph {
	if tex.Source == components.SourceGame && tex.Index >= 0 && tex.Index < len(gameGlyphs) {
		return gameGlyphs[tex.Index]
	}
	return packageGlyph
}

func (v *viewer) draw() {
	v.screen.Clear()
	cols, rows := v.screen.Size()
	drawScene(v.screen, v.cfgParallax, v.game.Scene(), cols, rows-1)
	v.drawStatus(cols, rows)
	v.screen.Show()
}

func (v *viewer) cfgParallax(p components.Plane) float64 {
	return p.Parallax(v.cfg)
}

// drawScene rasterizes the snapshot of s into the top rows of screen.
// Rotation is ignored; boxes are drawn axis aligned.
func drawScene(screen tcell.Screen, parallax func(components.Plane) float64, s *game.Scene, cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	view := s.View(float64(cols), float64(rows*cellAspect))
	for _, it := range s.Snapshot() {
		g := glyphOf(it.Texture)
		style := tcell.StyleDefault.Foreground(g.color)
		if it.Opacity < 0.5 {
			style = style.Dim(true)
		}
		par := parallax(it.Plane)
		lo := view.WorldToScreen(r2.Vec{X: it.Position.X - it.HalfExtents.X, Y: it.Position.Y + it.HalfExtents.Y}, par)
		hi := view.WorldToScreen(r2.Vec{X: it.Position.X + it.HalfExtents.X, Y: it.Position.Y - it.HalfExtents.Y}, par)
		x0, x1 := max(int(math.Floor(lo.X)), 0), min(int(math.Ceil(hi.X)), cols)
		y0, y1 := max(int(math.Floor(lo.Y/cellAspect)), 0), min(int(math.Ceil(hi.Y/cellAspect)), rows)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				if it.Round {
					w := view.ScreenToWorld(r2.Vec{X: float64(x) + 0.5, Y: (float64(y) + 0.5) * cellAspect}, par)
					if r2.Norm(r2.Sub(w, it.Position)) > it.HalfExtents.X {
						continue
					}
				}
				screen.SetContent(x, y, g.r, nil, style)
			}
		}
	}
}

func (v *viewer) drawStatus(cols, rows int) {
	g := v.game
	s := g.Scene()
	w := s.World()
	state, _ := w.MorphState(w.Actors.Morph)
	status := fmt.Sprintf(" %s %d/%d | %s | %.1fs | %s | 1:%d 2:%d 3:%d 4:%d",
		g.Package().Name, g.Level()+1, len(g.Package().Levels),
		g.Phase(), w.Time.AllTime, state,
		s.Available(components.StateMetal), s.Available(components.StateRubber),
		s.Available(components.StateWater), s.Available(components.StateBubble))
	if g.Paused() {
		status += " | paused"
	}
	if res, ok := g.Result(); ok {
		if res.Success {
			status += " | success [n]"
		} else {
			status += " | failure [r]"
		}
	}
	style := tcell.StyleDefault.Reverse(true)
	text := []rune(status)
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(text) {
			r = text[x]
		}
		v.screen.SetContent(x, rows-1, r, nil, style)
	}
}
