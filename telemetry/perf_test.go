package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// manualClock only moves when told to.
type manualClock struct {
	t time.Time
}

func (c *manualClock) now() time.Time { return c.t }

func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newManualCollector(windowSize int) (*PerfCollector, *manualClock) {
	clock := &manualClock{t: time.Unix(1000, 0)}
	pc := NewPerfCollector(windowSize)
	pc.now = clock.now
	return pc, clock
}

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc, clock := newManualCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase("physic_update")
		clock.advance(100 * time.Microsecond)
		pc.StartPhase("story_interaction")
		clock.advance(time.Duration(200+i*10) * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()
	require.Equal(t, 320*time.Microsecond, stats.AvgFrame)
	require.Equal(t, 300*time.Microsecond, stats.MinFrame)
	require.Equal(t, 340*time.Microsecond, stats.MaxFrame)
	require.LessOrEqual(t, stats.MinFrame, stats.P50Frame)
	require.LessOrEqual(t, stats.P50Frame, stats.P95Frame)
	require.LessOrEqual(t, stats.P95Frame, stats.MaxFrame)
	require.Equal(t, 100*time.Microsecond, stats.PhaseAvg["physic_update"])
	require.Equal(t, 220*time.Microsecond, stats.PhaseAvg["story_interaction"])
	require.Equal(t, []string{"story_interaction", "physic_update"}, stats.SortedPhases())

	stats.LogStats(zaptest.NewLogger(t))
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc, clock := newManualCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseMaintain)
		clock.advance(time.Duration(i+1) * time.Millisecond)
		pc.EndFrame()
	}

	require.Equal(t, 5, pc.sampleCount)
	stats := pc.Stats()
	// only frames 6..10 remain
	require.Equal(t, 6*time.Millisecond, stats.MinFrame)
	require.Equal(t, 10*time.Millisecond, stats.MaxFrame)
	require.Equal(t, 8*time.Millisecond, stats.AvgFrame)
	require.InDelta(t, 125.0, stats.FramesPerSecond, 1e-9)
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc, clock := newManualCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase("fast")
		clock.advance(250 * time.Microsecond)
		pc.StartPhase("slow")
		clock.advance(750 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()
	require.InDelta(t, 25.0, stats.PhasePct["fast"], 1e-9)
	require.InDelta(t, 75.0, stats.PhasePct["slow"], 1e-9)

	rec := stats.ToCSV("run", 5)
	require.Equal(t, "slow", rec.SlowestPhase)
	require.InDelta(t, 75.0, rec.SlowestPct, 1e-9)
	require.Equal(t, int64(5), rec.WindowEnd)
	require.Equal(t, int64(1000), rec.AvgFrameUS)
}

func TestPerfCollector_TiedPhasesSortByName(t *testing.T) {
	pc, clock := newManualCollector(4)

	pc.StartFrame()
	pc.StartPhase("output")
	clock.advance(time.Millisecond)
	pc.StartPhase("lifetime")
	clock.advance(time.Millisecond)
	pc.EndFrame()

	require.Equal(t, []string{"lifetime", "output"}, pc.Stats().SortedPhases())
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	require.Zero(t, stats.AvgFrame)
	require.NotNil(t, stats.PhaseAvg)
	require.NotNil(t, stats.PhasePct)
	require.Empty(t, stats.ToCSV("run", 0).SlowestPhase)
}

func TestPerfCollector_SingleSample(t *testing.T) {
	pc, clock := newManualCollector(10)
	pc.StartFrame()
	clock.advance(time.Millisecond)
	pc.EndFrame()

	stats := pc.Stats()
	require.Zero(t, stats.StdDevFrame)
	require.Equal(t, time.Millisecond, stats.MinFrame)
	require.Equal(t, stats.MinFrame, stats.MaxFrame)
}

func TestPerfCollector_DrawTiming(t *testing.T) {
	pc, clock := newManualCollector(10)

	pc.RecordDraw()
	require.Zero(t, pc.Stats().FPS, "a single draw has no interval")

	clock.advance(20 * time.Millisecond)
	pc.RecordDraw()

	stats := pc.Stats()
	require.Equal(t, 20*time.Millisecond, stats.DrawDuration)
	require.InDelta(t, 50.0, stats.FPS, 1e-9)
}
