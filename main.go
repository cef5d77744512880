package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"

	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/game"
	"github.com/pthm-cable/morph/level"
	"github.com/pthm-cable/morph/renderer"
	"github.com/pthm-cable/morph/telemetry"
	"github.com/pthm-cable/morph/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	packagesDir := flag.String("packages", "", "Directory of level packages (empty = use config)")
	packageName := flag.String("package", "", "Package to play (empty = first)")
	levelIndex := flag.Int("level", 0, "Level to start with")
	headless := flag.Bool("headless", false, "Run without graphics")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config, then time-based)")
	maxFrames := flag.Int("max-frames", 0, "Headless: give up a level after N frames (0 = 3600)")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	log, err := game.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log, runOptions{
		packagesDir: *packagesDir,
		packageName: *packageName,
		level:       *levelIndex,
		headless:    *headless,
		outputDir:   *outputDir,
		seed:        *seed,
		maxFrames:   *maxFrames,
	}); err != nil {
		log.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}

type runOptions struct {
	packagesDir string
	packageName string
	level       int
	headless    bool
	outputDir   string
	seed        int64
	maxFrames   int
}

func run(cfg *config.Config, log *zap.Logger, ro runOptions) error {
	dir := ro.packagesDir
	if dir == "" {
		dir = cfg.Level.PackagesDir
	}
	pkgs, err := level.LoadPackages(context.Background(), dir)
	if err != nil {
		return err
	}
	pkg, err := pick(pkgs, ro.packageName)
	if err != nil {
		return err
	}

	rngSeed := ro.seed
	if rngSeed == 0 {
		rngSeed = cfg.Sim.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	outDir := ro.outputDir
	if outDir == "" {
		outDir = cfg.Telemetry.OutputDir
	}
	out, err := telemetry.NewOutputManager(outDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			log.Error("failed to close output", zap.Error(err))
		}
	}()
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}

	opts := game.Options{
		Seed:   rngSeed,
		Output: out,
		Perf:   telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
	}
	g, err := game.New(cfg, pkg, log, opts)
	if err != nil {
		return err
	}
	if ro.level != 0 {
		if err := g.Load(ro.level); err != nil {
			return err
		}
	}

	log.Info("starting",
		zap.String("package", pkg.Name),
		zap.Int("levels", len(pkg.Levels)),
		zap.Int64("seed", rngSeed),
		zap.Bool("headless", ro.headless),
		zap.String("output", out.Dir()))

	if ro.headless {
		return runHeadless(cfg, log, g, ro.maxFrames)
	}
	return runWindow(cfg, log, g, opts.Perf)
}

func pick(pkgs []*level.Package, name string) (*level.Package, error) {
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no level packages found")
	}
	if name == "" {
		return pkgs[0], nil
	}
	for _, p := range pkgs {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("package %q not found", name)
}

// runHeadless plays every remaining level at a fixed frame time. Levels are
// started immediately and left without morph changes.
func runHeadless(cfg *config.Config, log *zap.Logger, g *game.Game, maxFrames int) error {
	if maxFrames <= 0 {
		maxFrames = 3600
	}
	for {
		g.Write(game.Start())
		for i := 0; i < maxFrames && g.Phase() != game.PhaseFinish; i++ {
			g.Update(cfg.Sim.DT)
		}
		if g.Phase() != game.PhaseFinish {
			log.Warn("level undecided", zap.Int("level", g.Level()), zap.Int("max_frames", maxFrames))
		}
		more, err := g.Next()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

func runWindow(cfg *config.Config, log *zap.Logger, g *game.Game, perf *telemetry.PerfCollector) error {
	screenW, screenH := int32(cfg.Screen.Width), int32(cfg.Screen.Height)
	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(screenW, screenH, "Morph")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	textures := renderer.NewTextureCache(log)
	textures.Load(g.Package())
	defer textures.Unload()

	background := renderer.NewBackgroundRenderer(40, 60, 90)
	scene := renderer.NewSceneRenderer(cfg, textures)
	hud := ui.NewHUD()
	showHelp := true

	var clicked []game.Event
	for !rl.WindowShouldClose() {
		events, action := ui.PollInput()
		for _, ev := range append(clicked, events...) {
			g.Write(ev)
		}
		switch action {
		case ui.ActionRestart:
			if err := g.Restart(); err != nil {
				return err
			}
		case ui.ActionNext:
			more, err := g.Next()
			if err != nil {
				return err
			}
			if !more {
				log.Info("package complete")
				return nil
			}
		case ui.ActionHelp:
			showHelp = !showHelp
		}

		g.Update(float64(rl.GetFrameTime()))

		s := g.Scene()
		view := s.View(float64(screenW), float64(screenH))
		court := g.Package().Levels[g.Level()].Dimension.R2()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		background.Draw(view, court)
		scene.Draw(view, s.Snapshot())
		clicked = hud.Draw(ui.DataOf(g, rl.GetFPS(), screenW, screenH))
		if showHelp {
			hud.DrawHelp(screenW)
		}
		rl.EndDrawing()
		perf.RecordDraw()
	}
	return nil
}
