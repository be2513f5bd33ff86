package telemetry

import (
	"testing"
	"time"
)

// stepClock is a manual clock for PerfCollector.
type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time { return c.t }
func (c *stepClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCollector(window int) (*PerfCollector, *stepClock) {
	clock := &stepClock{t: time.Unix(1000, 0)}
	pc := NewPerfCollector(window)
	pc.now = clock.Now
	return pc, clock
}

// runFrame records one frame with the given physics and composite costs.
func runFrame(pc *PerfCollector, clock *stepClock, particles int, physics, composite time.Duration) {
	pc.StartTick()
	pc.StartPhase(PhaseFields)
	clock.Advance(100 * time.Microsecond)
	pc.StartPhase(PhasePhysics)
	pc.RecordParticles(particles)
	clock.Advance(physics)
	pc.StartPhase(PhaseComposite)
	clock.Advance(composite)
	pc.EndTick()
}

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc, clock := newTestCollector(10)
	for i := 0; i < 5; i++ {
		runFrame(pc, clock, 1000, 2*time.Millisecond, time.Millisecond)
	}

	stats := pc.Stats()
	if want := 3100 * time.Microsecond; stats.AvgTickDuration != want {
		t.Errorf("AvgTickDuration = %v, want %v", stats.AvgTickDuration, want)
	}
	if got := stats.PhaseAvg[PhasePhysics]; got != 2*time.Millisecond {
		t.Errorf("physics avg = %v, want 2ms", got)
	}
	if _, ok := stats.PhaseAvg[PhaseSpatialGrid]; ok {
		t.Error("phase that never ran should be absent")
	}
}

func TestPerfCollector_ParticleThroughput(t *testing.T) {
	pc, clock := newTestCollector(10)
	runFrame(pc, clock, 2000, 4*time.Millisecond, 2*time.Millisecond)
	runFrame(pc, clock, 2000, 4*time.Millisecond, 2*time.Millisecond)

	stats := pc.Stats()
	if stats.AvgParticles != 2000 {
		t.Errorf("AvgParticles = %v, want 2000", stats.AvgParticles)
	}
	if stats.PhysicsNsPerParticle != 2000 {
		t.Errorf("PhysicsNsPerParticle = %v, want 2000", stats.PhysicsNsPerParticle)
	}
	if stats.CompositeNsPerParticle != 1000 {
		t.Errorf("CompositeNsPerParticle = %v, want 1000", stats.CompositeNsPerParticle)
	}
	// 6.1ms frames
	want := 2000 * float64(time.Second) / float64(6100*time.Microsecond)
	if diff := stats.ParticlesPerSec - want; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("ParticlesPerSec = %v, want %v", stats.ParticlesPerSec, want)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc, clock := newTestCollector(5)
	for i := 0; i < 5; i++ {
		runFrame(pc, clock, 10, 10*time.Millisecond, 0)
	}
	for i := 0; i < 5; i++ {
		runFrame(pc, clock, 10, time.Millisecond, 0)
	}

	stats := pc.Stats()
	if want := 1100 * time.Microsecond; stats.AvgTickDuration != want {
		t.Errorf("AvgTickDuration = %v, want %v once slow frames rolled out", stats.AvgTickDuration, want)
	}
	if stats.MaxTickDuration != stats.MinTickDuration {
		t.Errorf("min %v != max %v for identical frames", stats.MinTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc, clock := newTestCollector(10)
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseFields)
		clock.Advance(250 * time.Microsecond)
		pc.StartPhase(PhasePhysics)
		clock.Advance(750 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if got := stats.PhasePct[PhaseFields]; got != 25 {
		t.Errorf("fields pct = %v, want 25", got)
	}
	if got := stats.PhasePct[PhasePhysics]; got != 75 {
		t.Errorf("physics pct = %v, want 75", got)
	}
}

func TestPerfCollector_UnknownPhaseNotTimed(t *testing.T) {
	pc, clock := newTestCollector(4)
	pc.StartTick()
	pc.StartPhase(PhasePhysics)
	clock.Advance(time.Millisecond)
	pc.StartPhase("idle")
	clock.Advance(time.Millisecond)
	pc.EndTick()

	stats := pc.Stats()
	if got := stats.PhaseAvg[PhasePhysics]; got != time.Millisecond {
		t.Errorf("physics = %v, want 1ms", got)
	}
	if len(stats.PhaseAvg) != 1 {
		t.Errorf("PhaseAvg = %v, want physics only", stats.PhaseAvg)
	}
	if stats.AvgTickDuration != 2*time.Millisecond {
		t.Errorf("AvgTickDuration = %v, want 2ms", stats.AvgTickDuration)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()
	if stats.AvgTickDuration != 0 || stats.ParticlesPerSec != 0 {
		t.Error("expected zero values for empty collector")
	}
	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}
	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc, clock := newTestCollector(10)

	pc.RecordFrame()
	clock.Advance(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration != 16*time.Millisecond {
		t.Errorf("FrameDuration = %v, want 16ms", stats.FrameDuration)
	}
	if stats.FPS != 62.5 {
		t.Errorf("FPS = %v, want 62.5", stats.FPS)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	stats := PerfStats{
		AvgTickDuration:      2 * time.Millisecond,
		AvgParticles:         5000,
		PhysicsNsPerParticle: 280,
		PhasePct: map[string]float64{
			PhaseFields:    5,
			PhasePhysics:   70,
			PhaseComposite: 20,
			PhasePresent:   5,
		},
	}

	row := stats.ToCSV(600)

	if row.WindowEnd != 600 {
		t.Errorf("WindowEnd = %d, want 600", row.WindowEnd)
	}
	if row.AvgTickUS != 2000 {
		t.Errorf("AvgTickUS = %d, want 2000", row.AvgTickUS)
	}
	if row.Particles != 5000 || row.PhysicsNsPerParticle != 280 {
		t.Errorf("throughput = %v/%v, want 5000/280", row.Particles, row.PhysicsNsPerParticle)
	}
	if row.PhysicsPct != 70 || row.CompositePct != 20 {
		t.Errorf("phase pct = %v/%v, want 70/20", row.PhysicsPct, row.CompositePct)
	}
	if row.SpatialGridPct != 0 {
		t.Errorf("untracked phase pct = %v, want 0", row.SpatialGridPct)
	}
}
