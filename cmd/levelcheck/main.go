// Command levelcheck plays every level of the level packages headless with
// several seeds. It reports levels that decide without player input and
// runs whose replay diverges.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/game"
	"github.com/pthm-cable/morph/level"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	packagesDir := flag.String("packages", "", "Directory of level packages (empty = use config)")
	seeds := flag.Int("seeds", 3, "Number of seeds per level")
	maxFrames := flag.Int("max-frames", 1800, "Frames before a run counts as undecided")
	workers := flag.Int("workers", runtime.NumCPU(), "Levels played at once")
	output := flag.String("output", "", "CSV file for the per-run rows (empty = none)")
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

	if err := run(cfg, log, *packagesDir, *seeds, *maxFrames, *workers, *output); err != nil {
		log.Error("level check failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger, dir string, nSeeds, maxFrames, workers int, output string) error {
	if dir == "" {
		dir = cfg.Level.PackagesDir
	}
	ctx := context.Background()
	pkgs, err := level.LoadPackages(ctx, dir)
	if err != nil {
		return err
	}

	seeds := make([]int64, nSeeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}

	c := &Checker{cfg: cfg, log: log, maxFrames: maxFrames, workers: workers}
	rows, err := c.Run(ctx, pkgs, seeds)
	if err != nil {
		return err
	}

	for _, s := range Summarize(rows) {
		fields := []zap.Field{
			zap.String("package", s.Package),
			zap.Int("level", s.Level),
			zap.Int("runs", s.Runs),
			zap.Int("successes", s.Successes),
			zap.Int("failures", s.Failures),
			zap.Int("undecided", s.Undecided),
			zap.Float64("mean_time", s.MeanTime),
		}
		switch {
		case s.Nondeterministic > 0:
			log.Warn("replay diverged", append(fields, zap.Int("nondeterministic", s.Nondeterministic))...)
		case s.Successes > 0:
			log.Warn("level solves itself", fields...)
		default:
			log.Info("level ok", fields...)
		}
	}

	if output == "" {
		return nil
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", output, err)
	}
	return f.Close()
}
