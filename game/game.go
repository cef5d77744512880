// Package game runs level packages: it builds scenes from level
// descriptions, feeds them player events and reports their outcome.
package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/level"
	"github.com/pthm-cable/morph/telemetry"
)

// Phase is the progress of the current level.
type Phase uint8

const (
	PhasePreview Phase = iota // Morph at rest; camera may be dragged
	PhaseRunning
	PhaseFinish
)

func (p Phase) String() string {
	switch p {
	case PhasePreview:
		return "preview"
	case PhaseRunning:
		return "running"
	default:
		return "finish"
	}
}

// Options tune a Game beyond its configuration.
type Options struct {
	Seed   int64                    // Scene seed; 0 draws one per scene
	RunID  string                   // Tags telemetry records; generated when empty
	Output *telemetry.OutputManager // CSV sink; nil disables
	Perf   *telemetry.PerfCollector // Frame timings; nil disables
}

// Game plays the levels of one package in order.
type Game struct {
	cfg  *config.Config
	log  *zap.Logger
	pkg  *level.Package
	opts Options

	events *Events
	reader *Reader
	scene  *Scene
	index  int
	phase  Phase
	paused bool
	result *telemetry.LevelResult
}

// New creates a game positioned on the first level of pkg.
func New(cfg *config.Config, pkg *level.Package, log *zap.Logger, opts Options) (*Game, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.RunID == "" {
		opts.RunID = telemetry.NewRunID()
	}
	g := &Game{
		cfg:  cfg,
		log:  log.With(zap.String("package", pkg.Name)),
		pkg:  pkg,
		opts: opts,
	}
	if err := g.Load(0); err != nil {
		return nil, err
	}
	return g, nil
}

// Load replaces the current scene with level index of the package.
func (g *Game) Load(index int) error {
	if index < 0 || index >= len(g.pkg.Levels) {
		return fmt.Errorf("level %d: %w: package has %d levels", index, level.ErrInvalidValue, len(g.pkg.Levels))
	}
	log := g.log.With(zap.Int("level", index))
	scene, err := NewScene(g.cfg, &g.pkg.Levels[index], log, g.opts.Seed)
	if err != nil {
		return fmt.Errorf("level %d: %w", index, err)
	}
	scene.SetPerf(g.opts.Perf)

	g.events = NewEvents()
	g.reader = g.events.Register()
	g.scene = scene
	g.index = index
	g.phase = PhasePreview
	g.paused = false
	g.result = nil
	log.Info("level loaded")
	return nil
}

// Restart reloads the current level.
func (g *Game) Restart() error {
	return g.Load(g.index)
}

// Next loads the following level. It reports false after the last level.
func (g *Game) Next() (bool, error) {
	if g.index+1 >= len(g.pkg.Levels) {
		return false, nil
	}
	return true, g.Load(g.index + 1)
}

// Scene returns the level being played.
func (g *Game) Scene() *Scene { return g.scene }

// Package returns the package being played.
func (g *Game) Package() *level.Package { return g.pkg }

// Level returns the index of the current level.
func (g *Game) Level() int { return g.index }

// Phase returns the progress of the current level.
func (g *Game) Phase() Phase { return g.phase }

// Paused reports whether the simulation is halted.
func (g *Game) Paused() bool { return g.paused }

// Result returns the outcome once the level has finished.
func (g *Game) Result() (telemetry.LevelResult, bool) {
	if g.result == nil {
		return telemetry.LevelResult{}, false
	}
	return *g.result, true
}

// Write publishes a player event for the next frame.
func (g *Game) Write(e Event) {
	g.events.Write(e)
}

// Update advances the level by dt seconds of wall time.
func (g *Game) Update(dt float64) {
	if !g.paused {
		g.scene.Update(dt, g.events)
		g.events.UpdateDelayed(dt)
		g.record()
	}
	for _, ev := range g.events.Read(g.reader) {
		g.handle(ev)
	}
}

func (g *Game) handle(ev Event) {
	switch ev.Kind {
	case EventStart:
		if g.phase == PhasePreview {
			g.phase = PhaseRunning
			g.log.Info("level started")
		}
	case EventPause:
		g.paused = !g.paused
	case EventSuccess, EventFailure:
		if g.phase != PhaseRunning {
			return
		}
		g.phase = PhaseFinish
		g.finish(ev.Kind == EventSuccess)
	}
}

func (g *Game) finish(success bool) {
	s := g.scene
	g.result = &telemetry.LevelResult{
		RunID:   g.opts.RunID,
		Package: g.pkg.Name,
		Level:   g.index,
		Success: success,
		Time:    s.World().Time.AllTime,
		Frames:  s.Frames(),
		Morphs:  s.MorphsUsed(),
	}
	g.log.Info("level finished",
		zap.Bool("success", success),
		zap.Float64("time", g.result.Time),
		zap.Int("morphs", g.result.Morphs))
	if err := g.opts.Output.WriteResult(*g.result); err != nil {
		g.log.Error("failed to write result", zap.Error(err))
	}
}

// record writes the periodic frame and perf telemetry.
func (g *Game) record() {
	frame := g.scene.Frames()
	tc := g.cfg.Telemetry
	if g.opts.Output != nil && tc.FrameInterval > 0 && frame%int64(tc.FrameInterval) == 0 {
		if err := g.opts.Output.WriteFrame(g.scene.Record(g.opts.RunID)); err != nil {
			g.log.Error("failed to write frame", zap.Error(err))
		}
	}
	if g.opts.Perf != nil && tc.PerfCollectorWindow > 0 && frame%int64(tc.PerfCollectorWindow) == 0 {
		stats := g.opts.Perf.Stats()
		stats.LogStats(g.log)
		if err := g.opts.Output.WritePerf(stats.ToCSV(g.opts.RunID, frame)); err != nil {
			g.log.Error("failed to write perf", zap.Error(err))
		}
	}
}
