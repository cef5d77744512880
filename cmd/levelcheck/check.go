package main

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/game"
	"github.com/pthm-cable/morph/level"
)

// Outcomes of an unattended run.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeUndecided = "undecided"
)

// CheckRow is the result of playing one level with one seed. The level is
// started immediately and no morph change is requested.
type CheckRow struct {
	Package       string  `csv:"package"`
	Level         int     `csv:"level"`
	Seed          int64   `csv:"seed"`
	Outcome       string  `csv:"outcome"`
	Frames        int64   `csv:"frames"`
	Time          float64 `csv:"time"`
	Digest        string  `csv:"digest"`
	Deterministic bool    `csv:"deterministic"`
}

// LevelSummary aggregates the rows of one level.
type LevelSummary struct {
	Package          string
	Level            int
	Runs             int
	Successes        int
	Failures         int
	Undecided        int
	MeanTime         float64
	Nondeterministic int
}

type job struct {
	pkg   *level.Package
	index int
	seed  int64
}

// Checker plays levels headless, several at a time.
type Checker struct {
	cfg       *config.Config
	log       *zap.Logger
	maxFrames int
	workers   int
}

// play runs one level to its decision or maxFrames and returns the outcome
// together with the digest of the final frame.
func (c *Checker) play(j job) (CheckRow, error) {
	g, err := game.New(c.cfg, j.pkg, zap.NewNop(), game.Options{Seed: j.seed, RunID: "levelcheck"})
	if err != nil {
		return CheckRow{}, err
	}
	if j.index != 0 {
		if err := g.Load(j.index); err != nil {
			return CheckRow{}, err
		}
	}
	g.Write(game.Start())
	for i := 0; i < c.maxFrames && g.Phase() != game.PhaseFinish; i++ {
		g.Update(c.cfg.Sim.DT)
	}

	s := g.Scene()
	row := CheckRow{
		Package: j.pkg.Name,
		Level:   j.index,
		Seed:    j.seed,
		Outcome: OutcomeUndecided,
		Frames:  s.Frames(),
		Time:    s.World().Time.AllTime,
		Digest:  s.Record("levelcheck").Digest,
	}
	if res, ok := g.Result(); ok {
		row.Outcome = OutcomeFailure
		if res.Success {
			row.Outcome = OutcomeSuccess
		}
	}
	return row, nil
}

// check plays j twice and flags runs whose final digests differ.
func (c *Checker) check(j job) (CheckRow, error) {
	first, err := c.play(j)
	if err != nil {
		return CheckRow{}, err
	}
	second, err := c.play(j)
	if err != nil {
		return CheckRow{}, err
	}
	first.Deterministic = first.Digest == second.Digest
	return first, nil
}

// Run checks every level of pkgs with every seed. Rows are ordered by
// package, level and seed.
func (c *Checker) Run(ctx context.Context, pkgs []*level.Package, seeds []int64) ([]CheckRow, error) {
	var jobs []job
	for _, p := range pkgs {
		for i := range p.Levels {
			for _, s := range seeds {
				jobs = append(jobs, job{pkg: p, index: i, seed: s})
			}
		}
	}

	rows := make([]CheckRow, len(jobs))
	var mu sync.Mutex
	done := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.workers, 1))
	for i, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row, err := c.check(j)
			if err != nil {
				return err
			}
			rows[i] = row

			mu.Lock()
			done++
			c.log.Debug("checked",
				zap.String("package", row.Package),
				zap.Int("level", row.Level),
				zap.Int64("seed", row.Seed),
				zap.String("outcome", row.Outcome),
				zap.Int("done", done),
				zap.Int("total", len(jobs)))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Summarize groups rows by level, keeping their order.
func Summarize(rows []CheckRow) []LevelSummary {
	var out []LevelSummary
	var times []float64
	flush := func() {
		if len(out) > 0 && len(times) > 0 {
			out[len(out)-1].MeanTime = stat.Mean(times, nil)
		}
		times = times[:0]
	}
	for _, r := range rows {
		if len(out) == 0 || out[len(out)-1].Package != r.Package || out[len(out)-1].Level != r.Level {
			flush()
			out = append(out, LevelSummary{Package: r.Package, Level: r.Level})
		}
		s := &out[len(out)-1]
		s.Runs++
		switch r.Outcome {
		case OutcomeSuccess:
			s.Successes++
			times = append(times, r.Time)
		case OutcomeFailure:
			s.Failures++
			times = append(times, r.Time)
		default:
			s.Undecided++
		}
		if !r.Deterministic {
			s.Nondeterministic++
		}
	}
	flush()
	return out
}
