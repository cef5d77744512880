package game

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/level"
	"github.com/pthm-cable/morph/systems"
	"github.com/pthm-cable/morph/telemetry"
)

var (
	ErrMorphUnavailable = errors.New("morph state unavailable")
	ErrMorphUnchanged   = errors.New("morph already in state")
	ErrNotRunning       = errors.New("scene is not running")
)

// Scene is one level being played: the world, its passes and the bookkeeping
// between the frame loop and the level events.
type Scene struct {
	w        *systems.World
	pipeline *systems.Pipeline
	perf     *telemetry.PerfCollector
	reader   *Reader

	available map[components.MorphState]int
	used      int
	started   bool
	ended     bool
	reported  bool
	frames    int64
}

// NewScene builds the world of lvl. A zero seed draws from the global source.
func NewScene(cfg *config.Config, lvl *level.Level, log *zap.Logger, seed int64) (*Scene, error) {
	available, err := lvl.Morphs()
	if err != nil {
		return nil, fmt.Errorf("available morphs: %w", err)
	}
	w := systems.NewWorld(cfg, log, seed)
	s := &Scene{
		w:         w,
		pipeline:  systems.NewPipeline(w, systems.NewSystemRegistry()),
		available: available,
	}
	if err := populate(w, lvl); err != nil {
		return nil, err
	}
	w.Log.Debug("scene built",
		zap.Int("entities", w.Store.Count()),
		zap.Int("objects", len(lvl.Objects)),
		zap.Stringer("morph", lvl.Morph.State))
	return s, nil
}

// World exposes the scene state.
func (s *Scene) World() *systems.World {
	return s.w
}

// SetPerf times every pass of subsequent frames on p.
func (s *Scene) SetPerf(p *telemetry.PerfCollector) {
	s.perf = p
}

// Frames returns the number of simulated frames.
func (s *Scene) Frames() int64 {
	return s.frames
}

// Output returns the scene result as of the last frame.
func (s *Scene) Output() components.Output {
	return s.w.Output
}

// Available returns how many more times the morph may switch to state.
func (s *Scene) Available(state components.MorphState) int {
	return s.available[state]
}

// MorphsUsed returns the number of accepted morph changes.
func (s *Scene) MorphsUsed() int {
	return s.used
}

// RequestMorph checks a morph change against the remaining counts and queues
// it for the next frame.
func (s *Scene) RequestMorph(state components.MorphState) error {
	if !s.started || s.ended {
		return ErrNotRunning
	}
	if cur, ok := s.w.MorphState(s.w.Actors.Morph); ok && cur == state {
		return fmt.Errorf("%w: %s", ErrMorphUnchanged, state)
	}
	if s.available[state] <= 0 {
		return fmt.Errorf("%w: %s", ErrMorphUnavailable, state)
	}
	s.available[state]--
	s.used++
	s.w.Input.RequestMorph(state)
	return nil
}

// Update simulates one frame of dt seconds. Level events published on events
// since the previous frame are applied first; once the scene has a result a
// delayed Success or Failure event is published.
func (s *Scene) Update(dt float64, events *Events) {
	if s.reader == nil {
		s.reader = events.Register()
	}
	for _, ev := range events.Read(s.reader) {
		s.apply(ev)
	}

	w := s.w
	dt = min(max(dt, 0), w.Cfg.Sim.MaxFrameTime)
	w.Time.Advance(dt)

	var phase func(string)
	if s.perf != nil {
		s.perf.StartFrame()
		phase = s.perf.StartPhase
	}
	s.pipeline.Run(w, phase)
	if s.perf != nil {
		s.perf.StartPhase(telemetry.PhaseMaintain)
	}
	w.Maintain()
	if s.perf != nil {
		s.perf.EndFrame()
	}
	s.frames++

	out := w.Output
	if out.Exit && !s.reported {
		s.reported = true
		kind := EventFailure
		if out.Success {
			kind = EventSuccess
		}
		events.WriteDelayed(Event{Kind: kind}, out.Delay)
		w.Log.Info("scene decided",
			zap.Bool("success", out.Success),
			zap.Float64("delay", out.Delay),
			zap.Float64("time", w.Time.AllTime))
	}
}

func (s *Scene) apply(ev Event) {
	w := s.w
	switch ev.Kind {
	case EventStart:
		if !s.started {
			s.started = true
			w.Input.SceneStart = true
		}
	case EventSuccess, EventFailure:
		s.ended = true
		w.Input.SceneEnd = true
	case EventMoveCamera:
		w.Input.MoveCamera(ev.Delta)
	case EventMorph:
		if err := s.RequestMorph(ev.Morph); err != nil {
			w.Log.Debug("morph rejected", zap.Stringer("state", ev.Morph), zap.Error(err))
			return
		}
		w.Log.Info("morph", zap.Stringer("state", ev.Morph), zap.Int("remaining", s.available[ev.Morph]))
	}
}
