package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pthm-cable/morph/components"
	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/level"
)

func spikesPackage() *level.Package {
	lvl := func(state components.MorphState, objects ...level.Object) level.Level {
		return level.Level{
			Dimension:       level.Vec{30, 30},
			AvailableMorphs: map[string]int{"metal": 0, "rubber": 0, "water": 0, "bubble": 0},
			Morph:           level.Morph{State: state},
			Target:          level.Target{Position: level.Vec{20, 20}},
			Objects:         objects,
		}
	}
	return &level.Package{
		Name: "check",
		Levels: []level.Level{
			lvl(components.StateRubber, level.Object{
				Position: level.Vec{0, -3}, Size: level.Vec{5, 0.5}, Role: components.RoleSpikes,
			}),
			lvl(components.StateMetal, level.Object{
				Position: level.Vec{0, -3}, Size: level.Vec{5, 0.5}, Role: components.RoleBlock,
			}),
		},
	}
}

func TestCheckerRun(t *testing.T) {
	c := &Checker{cfg: config.Default(), log: zaptest.NewLogger(t), maxFrames: 400, workers: 2}
	rows, err := c.Run(context.Background(), []*level.Package{spikesPackage()}, []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	for _, r := range rows {
		require.True(t, r.Deterministic, "level %d seed %d", r.Level, r.Seed)
		require.NotEmpty(t, r.Digest)
	}
	require.Equal(t, OutcomeFailure, rows[0].Outcome)
	require.Equal(t, OutcomeUndecided, rows[2].Outcome)
	require.Equal(t, int64(400), rows[2].Frames)

	sum := Summarize(rows)
	require.Len(t, sum, 2)
	require.Equal(t, LevelSummary{Package: "check", Level: 0, Runs: 2, Failures: 2, MeanTime: sum[0].MeanTime}, sum[0])
	require.Greater(t, sum[0].MeanTime, 0.0)
	require.Equal(t, 2, sum[1].Undecided)
	require.Zero(t, sum[1].MeanTime)
}
