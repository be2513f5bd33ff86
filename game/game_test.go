package game

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/flowfield/config"
	"github.com/pthm-cable/flowfield/telemetry"
)

func headlessConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.Screen.Width = 320
	cfg.Screen.Height = 240
	cfg.Simulation.ParticleCount = 2000
	cfg.Simulation.Seed = 7
	cfg.Simulation.Workers = 2
	cfg.Telemetry.StatsWindow = 10
	return cfg
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		n++
	}
	return n
}

func TestHeadlessRunWritesTelemetry(t *testing.T) {
	dir := t.TempDir()
	g, err := NewGame(headlessConfig(t), Options{Headless: true, OutputDir: dir})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	var windows []telemetry.WindowStats
	g.SetStatsCallback(func(s telemetry.WindowStats) { windows = append(windows, s) })

	for i := 0; i < 25; i++ {
		g.UpdateHeadless()
	}
	g.Unload()

	if g.Frame() != 25 {
		t.Errorf("frame = %d, want 25", g.Frame())
	}
	if len(windows) != 2 {
		t.Fatalf("flushed %d windows, want 2", len(windows))
	}
	if w := windows[1]; w.WindowEndFrame != 20 || w.Particles != 2000 {
		t.Errorf("second window end=%d particles=%d", w.WindowEndFrame, w.Particles)
	}
	if windows[0].MeanLuminance <= 0 {
		t.Error("trail stayed black")
	}

	if got := countLines(t, filepath.Join(dir, "frames.csv")); got != 3 {
		t.Errorf("frames.csv has %d lines, want header + 2", got)
	}
	if got := countLines(t, filepath.Join(dir, "perf.csv")); got != 3 {
		t.Errorf("perf.csv has %d lines, want header + 2", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config copy missing: %v", err)
	}
}

func TestStepsPerFrame(t *testing.T) {
	g, err := NewGame(headlessConfig(t), Options{Headless: true, StepsPerFrame: 4})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	defer g.Unload()

	g.UpdateHeadless()
	g.UpdateHeadless()
	if g.Frame() != 8 {
		t.Errorf("frame = %d, want 8", g.Frame())
	}
}

func TestSeedOverride(t *testing.T) {
	g, err := NewGame(headlessConfig(t), Options{Headless: true, Seed: 99})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	defer g.Unload()

	if g.Simulation().Seed() != 99 {
		t.Errorf("seed = %d, want 99", g.Simulation().Seed())
	}
}

func TestResetClearsTrail(t *testing.T) {
	g, err := NewGame(headlessConfig(t), Options{Headless: true})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	defer g.Unload()

	for i := 0; i < 5; i++ {
		g.UpdateHeadless()
	}
	g.reset()

	if g.Frame() != 0 {
		t.Errorf("frame after reset = %d", g.Frame())
	}
	if l := g.Trail().MeanLuminance(); l != 0 {
		t.Errorf("trail luminance after reset = %v", l)
	}
}

func TestResizePropagates(t *testing.T) {
	g, err := NewGame(headlessConfig(t), Options{Headless: true})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	defer g.Unload()

	if err := g.resize(0, 100); err == nil {
		t.Error("resize to zero width should fail")
	}
	if err := g.resize(200, 100); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if g.Trail().W != 200 || g.Trail().H != 100 {
		t.Errorf("trail %dx%d, want 200x100", g.Trail().W, g.Trail().H)
	}
	if w, h := g.Simulation().Size(); w != 200 || h != 100 {
		t.Errorf("simulation bounds %vx%v", w, h)
	}
	g.UpdateHeadless()
}

func TestRestoreFromSnapshot(t *testing.T) {
	cfg := headlessConfig(t)
	src, err := NewGame(cfg, Options{Headless: true})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	for i := 0; i < 12; i++ {
		src.UpdateHeadless()
	}
	path, err := telemetry.SaveSnapshot(src.Simulation().Capture(), t.TempDir())
	src.Unload()
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	g, err := NewGame(cfg, Options{Headless: true, RestorePath: path})
	if err != nil {
		t.Fatalf("NewGame with restore: %v", err)
	}
	defer g.Unload()

	if g.Frame() != 12 {
		t.Errorf("restored frame = %d, want 12", g.Frame())
	}
}

func TestRestoreMissingSnapshotFails(t *testing.T) {
	_, err := NewGame(headlessConfig(t), Options{
		Headless:    true,
		RestorePath: filepath.Join(t.TempDir(), "nope.json"),
	})
	if err == nil {
		t.Error("expected error for missing snapshot")
	}
}
