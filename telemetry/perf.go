// Package telemetry provides frame timing, flow statistics, event bookmarks
// and state snapshots for the flow-field simulation.
package telemetry

import (
	"context"
	"log/slog"
	"time"
)

// Phase names for one frame.
const (
	PhaseFields      = "fields"
	PhaseSpatialGrid = "spatial_grid"
	PhasePhysics     = "physics"
	PhaseComposite   = "composite"
	PhasePresent     = "present"
	PhaseTelemetry   = "telemetry"
)

// phaseOrder lists phases in frame order. Timings are kept per index.
var phaseOrder = [...]string{
	PhaseFields, PhaseSpatialGrid, PhasePhysics,
	PhaseComposite, PhasePresent, PhaseTelemetry,
}

const numPhases = len(phaseOrder)

func phaseIndex(name string) int {
	for i, p := range phaseOrder {
		if p == name {
			return i
		}
	}
	return -1
}

// frameTiming is the cost of one simulated frame.
type frameTiming struct {
	total     time.Duration
	phases    [numPhases]time.Duration
	particles int
}

// PerfCollector times the phases of each frame over a rolling window and
// relates the per-particle phases to the particle count they processed.
// Phase names outside phaseOrder close the running phase but are not timed.
type PerfCollector struct {
	now func() time.Time

	window []frameTiming
	next   int
	filled int

	cur        frameTiming
	tickStart  time.Time
	phaseStart time.Time
	phase      int

	lastFrame time.Time
	frameGap  time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize frames
// (60 if windowSize < 1).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		now:    time.Now,
		window: make([]frameTiming, windowSize),
		phase:  -1,
	}
}

// StartTick begins timing a new simulated frame.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.cur = frameTiming{}
	p.phase = -1
}

// RecordParticles notes how many particles the current frame advanced.
func (p *PerfCollector) RecordParticles(n int) {
	p.cur.particles = n
}

// StartPhase closes the running phase and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	p.closePhase(now)
	p.phase = phaseIndex(phase)
	p.phaseStart = now
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase >= 0 {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// EndTick closes the frame and adds it to the window.
func (p *PerfCollector) EndTick() {
	now := p.now()
	p.closePhase(now)
	p.phase = -1
	p.cur.total = now.Sub(p.tickStart)

	p.window[p.next] = p.cur
	p.next = (p.next + 1) % len(p.window)
	if p.filled < len(p.window) {
		p.filled++
	}
}

// RecordFrame marks a presented frame; the gap between calls gives FPS.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrame.IsZero() {
		p.frameGap = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats aggregates the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Average duration and share of frame time for each phase that ran
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	// Particle throughput
	AvgParticles           float64
	ParticlesPerSec        float64
	PhysicsNsPerParticle   float64
	CompositeNsPerParticle float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	st := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frameGap,
	}
	if p.frameGap > 0 {
		st.FPS = float64(time.Second) / float64(p.frameGap)
	}
	if p.filled == 0 {
		return st
	}

	var total time.Duration
	var phases [numPhases]time.Duration
	particles := 0
	for i, f := range p.window[:p.filled] {
		total += f.total
		if i == 0 || f.total < st.MinTickDuration {
			st.MinTickDuration = f.total
		}
		st.MaxTickDuration = max(st.MaxTickDuration, f.total)
		for j, d := range f.phases {
			phases[j] += d
		}
		particles += f.particles
	}

	n := time.Duration(p.filled)
	st.AvgTickDuration = total / n
	st.AvgParticles = float64(particles) / float64(p.filled)
	for j, sum := range phases {
		if sum == 0 {
			continue
		}
		avg := sum / n
		st.PhaseAvg[phaseOrder[j]] = avg
		if st.AvgTickDuration > 0 {
			st.PhasePct[phaseOrder[j]] = float64(avg) / float64(st.AvgTickDuration) * 100
		}
	}

	if st.AvgTickDuration > 0 {
		st.TicksPerSecond = float64(time.Second) / float64(st.AvgTickDuration)
		st.ParticlesPerSec = st.AvgParticles * st.TicksPerSecond
	}
	if st.AvgParticles > 0 {
		st.PhysicsNsPerParticle = float64(st.PhaseAvg[PhasePhysics]) / st.AvgParticles
		st.CompositeNsPerParticle = float64(st.PhaseAvg[PhaseComposite]) / st.AvgParticles
	}
	return st
}

func (s PerfStats) attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
		slog.Float64("particles_per_sec", s.ParticlesPerSec),
		slog.Float64("physics_ns_per_particle", s.PhysicsNsPerParticle),
		slog.Float64("composite_ns_per_particle", s.CompositeNsPerParticle),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return attrs
}

// LogStats logs the window at info level.
func (s PerfStats) LogStats() {
	slog.LogAttrs(context.Background(), slog.LevelInfo, "perf", s.attrs()...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	return slog.GroupValue(s.attrs()...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd              uint64  `csv:"window_end"`
	AvgTickUS              int64   `csv:"avg_tick_us"`
	MaxTickUS              int64   `csv:"max_tick_us"`
	FPS                    float64 `csv:"fps"`
	Particles              float64 `csv:"particles"`
	ParticlesPerSec        float64 `csv:"particles_per_sec"`
	PhysicsNsPerParticle   float64 `csv:"physics_ns_per_particle"`
	CompositeNsPerParticle float64 `csv:"composite_ns_per_particle"`
	FieldsPct              float64 `csv:"fields_pct"`
	SpatialGridPct         float64 `csv:"spatial_grid_pct"`
	PhysicsPct             float64 `csv:"physics_pct"`
	CompositePct           float64 `csv:"composite_pct"`
	PresentPct             float64 `csv:"present_pct"`
	TelemetryPct           float64 `csv:"telemetry_pct"`
}

// ToCSV flattens s into a perf.csv row for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd uint64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:              windowEnd,
		AvgTickUS:              s.AvgTickDuration.Microseconds(),
		MaxTickUS:              s.MaxTickDuration.Microseconds(),
		FPS:                    s.FPS,
		Particles:              s.AvgParticles,
		ParticlesPerSec:        s.ParticlesPerSec,
		PhysicsNsPerParticle:   s.PhysicsNsPerParticle,
		CompositeNsPerParticle: s.CompositeNsPerParticle,
		FieldsPct:              s.PhasePct[PhaseFields],
		SpatialGridPct:         s.PhasePct[PhaseSpatialGrid],
		PhysicsPct:             s.PhasePct[PhasePhysics],
		CompositePct:           s.PhasePct[PhaseComposite],
		PresentPct:             s.PhasePct[PhasePresent],
		TelemetryPct:           s.PhasePct[PhaseTelemetry],
	}
}
