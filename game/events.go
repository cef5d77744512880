package game

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/morph/components"
)

// EventKind identifies level events.
type EventKind uint8

const (
	EventStart EventKind = iota
	EventPause
	EventSuccess
	EventFailure
	EventMorph
	EventMoveCamera
)

var eventNames = [...]string{
	EventStart:      "start",
	EventPause:      "pause",
	EventSuccess:    "success",
	EventFailure:    "failure",
	EventMorph:      "morph",
	EventMoveCamera: "move_camera",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is a level event. Morph is set for EventMorph, Delta for
// EventMoveCamera.
type Event struct {
	Kind  EventKind
	Morph components.MorphState
	Delta r2.Vec
}

// Start returns the event that releases the morph.
func Start() Event { return Event{Kind: EventStart} }

// Morph returns a morph change request.
func Morph(state components.MorphState) Event { return Event{Kind: EventMorph, Morph: state} }

// MoveCamera returns a camera drag by delta screen units.
func MoveCamera(delta r2.Vec) Event { return Event{Kind: EventMoveCamera, Delta: delta} }

type delayed struct {
	remaining float64
	event     Event
}

// Events is a broadcast channel of level events. Each reader sees every
// event written after the oldest event still retained when it registered.
type Events struct {
	buf     []Event
	base    uint64 // Sequence number of buf[0]
	readers []*Reader
	queue   []delayed
}

// Reader is a cursor into an event channel.
type Reader struct {
	next uint64
}

// NewEvents creates an empty channel.
func NewEvents() *Events {
	return &Events{}
}

// Register returns a reader starting at the oldest retained event.
func (ev *Events) Register() *Reader {
	r := &Reader{next: ev.base}
	ev.readers = append(ev.readers, r)
	return r
}

// Write publishes an event immediately.
func (ev *Events) Write(e Event) {
	ev.buf = append(ev.buf, e)
}

// WriteDelayed publishes e once delay seconds have been passed to UpdateDelayed.
func (ev *Events) WriteDelayed(e Event, delay float64) {
	ev.queue = append(ev.queue, delayed{remaining: delay, event: e})
}

// UpdateDelayed counts queued events down by dt and publishes the ready ones
// in queue order.
func (ev *Events) UpdateDelayed(dt float64) {
	kept := ev.queue[:0]
	for _, d := range ev.queue {
		d.remaining -= dt
		if d.remaining <= 0 {
			ev.Write(d.event)
		} else {
			kept = append(kept, d)
		}
	}
	ev.queue = kept
}

// Delayed returns the number of queued events.
func (ev *Events) Delayed() int {
	return len(ev.queue)
}

// Read returns the events r has not seen yet.
func (ev *Events) Read(r *Reader) []Event {
	end := ev.base + uint64(len(ev.buf))
	if r.next >= end {
		return nil
	}
	out := append([]Event(nil), ev.buf[r.next-ev.base:]...)
	r.next = end
	ev.compact()
	return out
}

// compact drops events every reader has seen.
func (ev *Events) compact() {
	low := ev.base + uint64(len(ev.buf))
	for _, r := range ev.readers {
		low = min(low, r.next)
	}
	if n := int(low - ev.base); n > 0 {
		ev.buf = append(ev.buf[:0], ev.buf[n:]...)
		ev.base = low
	}
}
