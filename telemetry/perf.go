// Package telemetry records frame timings and per-frame scene state.
package telemetry

import (
	"sort"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// PhaseMaintain times the end of frame store maintenance. Every other phase
// is named after the pass it times.
const PhaseMaintain = "maintain"

// PerfSample holds timing data for a single frame.
type PerfSample struct {
	FrameDuration time.Duration
	Phases        map[string]time.Duration
}

// PerfCollector tracks frame timings over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	frameStart    time.Time
	phaseStart    time.Time
	lastPhase     string

	// Wall clock between rendered frames (viewer mode)
	lastDrawTime time.Time
	drawDuration time.Duration

	now func() time.Time
}

// NewPerfCollector creates a collector averaging over windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
		now:           time.Now,
	}
}

// StartFrame begins timing a new frame.
func (p *PerfCollector) StartFrame() {
	p.frameStart = p.now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase ends the running phase and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndFrame finishes timing the current frame and records the sample.
func (p *PerfCollector) EndFrame() {
	now := p.now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		FrameDuration: now.Sub(p.frameStart),
		Phases:        p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordDraw records the wall time between two drawn frames.
func (p *PerfCollector) RecordDraw() {
	now := p.now()
	if !p.lastDrawTime.IsZero() {
		p.drawDuration = now.Sub(p.lastDrawTime)
	}
	p.lastDrawTime = now
}

// PerfStats holds aggregated timings of the window.
type PerfStats struct {
	AvgFrame    time.Duration
	MinFrame    time.Duration
	MaxFrame    time.Duration
	StdDevFrame time.Duration
	P50Frame    time.Duration
	P95Frame    time.Duration

	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64 // Share of the average frame, in percent

	FramesPerSecond float64 // Simulation throughput
	DrawDuration    time.Duration
	FPS             float64
}

// Stats aggregates the samples of the window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.drawDuration > 0 {
		fps = float64(time.Second) / float64(p.drawDuration)
	}
	stats := PerfStats{
		PhaseAvg:     make(map[string]time.Duration),
		PhasePct:     make(map[string]float64),
		DrawDuration: p.drawDuration,
		FPS:          fps,
	}
	if p.sampleCount == 0 {
		return stats
	}

	frames := make([]float64, p.sampleCount)
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		frames[i] = float64(s.FrameDuration)
		for phase, d := range s.Phases {
			phaseSum[phase] += d
		}
	}
	sort.Float64s(frames)

	mean, std := stat.MeanStdDev(frames, nil)
	if p.sampleCount < 2 {
		std = 0
	}
	stats.AvgFrame = time.Duration(mean)
	stats.MinFrame = time.Duration(frames[0])
	stats.MaxFrame = time.Duration(frames[len(frames)-1])
	stats.StdDevFrame = time.Duration(std)
	stats.P50Frame = time.Duration(stat.Quantile(0.5, stat.Empirical, frames, nil))
	stats.P95Frame = time.Duration(stat.Quantile(0.95, stat.Empirical, frames, nil))

	for phase, sum := range phaseSum {
		avg := sum / time.Duration(p.sampleCount)
		stats.PhaseAvg[phase] = avg
		if mean > 0 {
			stats.PhasePct[phase] = float64(avg) / mean * 100
		}
	}
	if mean > 0 {
		stats.FramesPerSecond = float64(time.Second) / mean
	}
	return stats
}

// SortedPhases returns phase names by average duration, slowest first.
func (s PerfStats) SortedPhases() []string {
	names := make([]string, 0, len(s.PhaseAvg))
	for name := range s.PhaseAvg {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if s.PhaseAvg[names[i]] != s.PhaseAvg[names[j]] {
			return s.PhaseAvg[names[i]] > s.PhaseAvg[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// LogStats writes the window summary to log. Phases below 0.1% are skipped.
func (s PerfStats) LogStats(log *zap.Logger) {
	fields := []zap.Field{
		zap.Int64("avg_frame_us", s.AvgFrame.Microseconds()),
		zap.Int64("min_frame_us", s.MinFrame.Microseconds()),
		zap.Int64("max_frame_us", s.MaxFrame.Microseconds()),
		zap.Int64("p95_frame_us", s.P95Frame.Microseconds()),
		zap.Int("frames_per_sec", int(s.FramesPerSecond)),
	}
	if s.FPS > 0 {
		fields = append(fields, zap.Int("fps", int(s.FPS)))
	}
	for _, phase := range s.SortedPhases() {
		if pct := s.PhasePct[phase]; pct > 0.1 {
			fields = append(fields, zap.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}
	log.Info("perf", fields...)
}

// PerfStatsCSV is a flat record of PerfStats for CSV export.
type PerfStatsCSV struct {
	RunID        string  `csv:"run_id"`
	WindowEnd    int64   `csv:"window_end"`
	AvgFrameUS   int64   `csv:"avg_frame_us"`
	MinFrameUS   int64   `csv:"min_frame_us"`
	MaxFrameUS   int64   `csv:"max_frame_us"`
	StdDevUS     int64   `csv:"stddev_frame_us"`
	P50FrameUS   int64   `csv:"p50_frame_us"`
	P95FrameUS   int64   `csv:"p95_frame_us"`
	FramesPerSec float64 `csv:"frames_per_sec"`
	FPS          float64 `csv:"fps"`
	SlowestPhase string  `csv:"slowest_phase"`
	SlowestPct   float64 `csv:"slowest_pct"`
}

// ToCSV flattens the stats of the window ending at frame windowEnd.
func (s PerfStats) ToCSV(runID string, windowEnd int64) PerfStatsCSV {
	rec := PerfStatsCSV{
		RunID:        runID,
		WindowEnd:    windowEnd,
		AvgFrameUS:   s.AvgFrame.Microseconds(),
		MinFrameUS:   s.MinFrame.Microseconds(),
		MaxFrameUS:   s.MaxFrame.Microseconds(),
		StdDevUS:     s.StdDevFrame.Microseconds(),
		P50FrameUS:   s.P50Frame.Microseconds(),
		P95FrameUS:   s.P95Frame.Microseconds(),
		FramesPerSec: s.FramesPerSecond,
		FPS:          s.FPS,
	}
	if phases := s.SortedPhases(); len(phases) > 0 {
		rec.SlowestPhase = phases[0]
		rec.SlowestPct = s.PhasePct[phases[0]]
	}
	return rec
}
