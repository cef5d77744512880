package ui

import (
	"fmt"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/game"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Package      string
	Level        int
	Levels       int
	Phase        game.Phase
	Paused       bool
	Time         float64
	FPS          int32
	Morph        components.MorphState
	Available    [4]int // Remaining changes per morph state
	Result       *bool  // Set once the level finished
	ScreenWidth  int32
	ScreenHeight int32
}

// DataOf builds the HUD data of g.
func DataOf(g *game.Game, fps, screenW, screenH int32) HUDData {
	s := g.Scene()
	w := s.World()
	d := HUDData{
		Package:      g.Package().Name,
		Level:        g.Level(),
		Levels:       len(g.Package().Levels),
		Phase:        g.Phase(),
		Paused:       g.Paused(),
		Time:         w.Time.AllTime,
		FPS:          fps,
		ScreenWidth:  screenW,
		ScreenHeight: screenH,
	}
	d.Morph, _ = w.MorphState(w.Actors.Morph)
	for _, st := range components.MorphStates {
		d.Available[st] = s.Available(st)
	}
	if res, ok := g.Result(); ok {
		d.Result = &res.Success
	}
	return d
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD and returns the events triggered by its buttons.
func (h *HUD) Draw(data HUDData) []game.Event {
	r := h.renderer
	th := r.Theme

	rl.DrawText(fmt.Sprintf("%s  %d/%d", data.Package, data.Level+1, data.Levels), 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Time: %.1fs | FPS: %d", data.Time, data.FPS), 10, 35, 16, rl.LightGray)

	status := strings.ToUpper(data.Phase.String())
	if data.Paused {
		status = "PAUSED"
	}
	rl.DrawText(status, 10, 55, 16, rl.Yellow)

	var events []game.Event
	x := int32(10)
	y := data.ScreenHeight - th.ButtonHeight - th.Padding
	for _, st := range components.MorphStates {
		label := fmt.Sprintf("%d %s (%d)", int(st)+1, st, data.Available[st])
		usable := data.Phase == game.PhaseRunning && st != data.Morph && data.Available[st] > 0
		if !usable {
			gui.Disable()
		}
		bounds := rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(th.ButtonWidth), Height: float32(th.ButtonHeight)}
		if gui.Button(bounds, label) && usable {
			events = append(events, game.Morph(st))
		}
		gui.Enable()
		x += th.ButtonWidth + th.Padding
	}

	switch {
	case data.Result != nil && *data.Result:
		r.DrawCentered(data.ScreenWidth, data.ScreenHeight/3, "Success! [N] next level", 30, th.SuccessColor)
	case data.Result != nil:
		r.DrawCentered(data.ScreenWidth, data.ScreenHeight/3, "Failure. [R] retry", 30, th.FailureColor)
	case data.Phase == game.PhasePreview:
		bounds := rl.Rectangle{
			X:      float32(data.ScreenWidth-th.ButtonWidth) / 2,
			Y:      float32(y),
			Width:  float32(th.ButtonWidth),
			Height: float32(th.ButtonHeight),
		}
		if gui.Button(bounds, "Start") {
			events = append(events, game.Start())
		}
	}
	return events
}

// DrawHelp draws the key bindings in the top right corner.
func (h *HUD) DrawHelp(screenW int32) {
	r := h.renderer
	lines := []string{
		"Space  start",
		"1-4    morph",
		"Arrows camera",
		"P      pause",
		"R      restart",
		"N      next",
	}
	width := int32(140)
	x := screenW - width - 10
	height := int32(len(lines))*r.Theme.LineHeight + r.Theme.Padding*2 + r.Theme.LineHeight
	r.DrawPanel(x, 10, width, height)
	y := r.DrawSectionHeader(x+r.Theme.Padding, 10+r.Theme.Padding, "Keys")
	for _, l := range lines {
		rl.DrawText(l, x+r.Theme.Padding, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += r.Theme.LineHeight
	}
}
