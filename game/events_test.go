package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/config"
)

func TestEventsReadersAreIndependent(t *testing.T) {
	ev := NewEvents()
	a := ev.Register()
	ev.Write(Start())
	b := ev.Register()
	ev.Write(MoveCamera(r2.Vec{X: 1}))

	require.Equal(t, []Event{Start(), MoveCamera(r2.Vec{X: 1})}, ev.Read(a))
	require.Empty(t, ev.Read(a))

	// b registered while Start was still unread by a
	require.Len(t, ev.Read(b), 2)

	ev.Write(Morph(components.StateWater))
	require.Equal(t, []Event{Morph(components.StateWater)}, ev.Read(b))
	require.Equal(t, []Event{Morph(components.StateWater)}, ev.Read(a))
	require.Empty(t, ev.buf, "events every reader has seen are dropped")
}

func TestEventsDelayed(t *testing.T) {
	ev := NewEvents()
	r := ev.Register()

	ev.WriteDelayed(Event{Kind: EventFailure}, 0.25)
	ev.WriteDelayed(Event{Kind: EventSuccess}, 0.1)
	require.Equal(t, 2, ev.Delayed())

	ev.UpdateDelayed(0.1)
	require.Equal(t, []Event{{Kind: EventSuccess}}, ev.Read(r))

	ev.UpdateDelayed(0.1)
	require.Empty(t, ev.Read(r))

	ev.UpdateDelayed(0.1)
	require.Equal(t, []Event{{Kind: EventFailure}}, ev.Read(r))
	require.Zero(t, ev.Delayed())
}

func TestEventKindString(t *testing.T) {
	require.Equal(t, "move_camera", EventMoveCamera.String())
	require.Equal(t, "EventKind(42)", EventKind(42).String())
}

func TestNewLogger(t *testing.T) {
	for _, lc := range []config.LogConfig{
		{Level: "debug", Format: "json"},
		{Level: "warn", Format: "console"},
		{Level: "nonsense"},
	} {
		log, err := NewLogger(lc)
		require.NoError(t, err)
		require.NotNil(t, log)
	}

	log, _ := NewLogger(config.LogConfig{Level: "warn"})
	require.False(t, log.Core().Enabled(-1))
}
