package game

import (
	"log/slog"

	"github.com/pthm-cable/flowfield/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	frame := g.sim.Frame()
	if !g.collector.ShouldFlush(frame) {
		return
	}

	stats := g.collector.Flush(g.sample())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteFrames(stats); err != nil {
		slog.Error("failed to write frames", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if g.outputManager != nil {
			g.saveSnapshot(&bm)
		}
	}
}

// sample captures the end-of-window state the collector needs.
func (g *Game) sample() telemetry.FrameSample {
	store := g.sim.Store()
	g.speeds = g.speeds[:0]
	for i := 0; i < store.N; i++ {
		g.speeds = append(g.speeds, float64(store.Speed(i)))
	}

	fields := g.sim.Fields()
	return telemetry.FrameSample{
		Frame:         g.sim.Frame(),
		SimTime:       g.sim.Time(),
		Particles:     store.N,
		NoiseMode:     g.sim.Params().NoiseMode.String(),
		Speeds:        g.speeds,
		Fields:        fields.Len(),
		FieldCapacity: fields.Capacity(),
		MeanLuminance: g.trail.MeanLuminance(),
	}
}

// saveSnapshot captures the current state into the output directory.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	if g.outputManager == nil {
		slog.Warn("snapshot skipped: no output directory")
		return
	}
	snapshot := g.sim.Capture()
	snapshot.Bookmark = bookmark

	path, err := g.outputManager.WriteSnapshot(snapshot)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "frame", snapshot.Frame)
}
