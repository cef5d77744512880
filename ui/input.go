package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/game"
)

// Action is a request handled outside the running level.
type Action uint8

const (
	ActionNone Action = iota
	ActionRestart
	ActionNext
	ActionHelp
)

var morphKeys = []int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour}

// PollInput reads this frame's keyboard state.
func PollInput() ([]game.Event, Action) {
	var events []game.Event
	if rl.IsKeyPressed(rl.KeySpace) {
		events = append(events, game.Start())
	}
	if rl.IsKeyPressed(rl.KeyP) {
		events = append(events, game.Event{Kind: game.EventPause})
	}
	for i, k := range morphKeys {
		if rl.IsKeyPressed(k) {
			events = append(events, game.Morph(components.MorphStates[i]))
		}
	}

	// screen directions: y grows downwards
	var d r2.Vec
	if rl.IsKeyDown(rl.KeyLeft) {
		d.X--
	}
	if rl.IsKeyDown(rl.KeyRight) {
		d.X++
	}
	if rl.IsKeyDown(rl.KeyUp) {
		d.Y--
	}
	if rl.IsKeyDown(rl.KeyDown) {
		d.Y++
	}
	if d != (r2.Vec{}) {
		events = append(events, game.MoveCamera(d))
	}

	switch {
	case rl.IsKeyPressed(rl.KeyR):
		return events, ActionRestart
	case rl.IsKeyPressed(rl.KeyN):
		return events, ActionNext
	case rl.IsKeyPressed(rl.KeyH):
		return events, ActionHelp
	}
	return events, ActionNone
}
