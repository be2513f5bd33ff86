// Package game wires the simulation, compositor, renderer and telemetry into
// the windowed and headless frame loops.
package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/flowfield/config"
	"github.com/pthm-cable/flowfield/renderer"
	"github.com/pthm-cable/flowfield/sim"
	"github.com/pthm-cable/flowfield/telemetry"
	"github.com/pthm-cable/flowfield/trail"
	"github.com/pthm-cable/flowfield/ui"
)

// speedScale maps particle speed to the top of speed-driven palettes.
const speedScale = 3

// Game holds the complete application state.
type Game struct {
	cfg      *config.Config
	sim      *sim.Simulation
	trail    *trail.Buffer
	headless bool
	seed     int64

	stepsPerFrame int

	// Rendering (nil when headless)
	presenter *renderer.Presenter
	flow      *renderer.FlowOverlay
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	controls  *ui.ControlsPanel

	showPerf bool
	showFlow bool

	screenWidth, screenHeight int

	// Telemetry
	perfCollector    *telemetry.PerfCollector
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
	speeds           []float64
}

// NewGame builds a game from a loaded config. In windowed mode the raylib
// window must already be open.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	cfg = cfg.Clone()
	if opts.Seed != 0 {
		cfg.Simulation.Seed = opts.Seed
	}

	w, h := cfg.Screen.Width, cfg.Screen.Height
	s, err := sim.New(cfg, w, h)
	if err != nil {
		return nil, err
	}

	buf, err := trail.NewBuffer(w, h)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("new game: %w", err)
	}

	g := &Game{
		cfg:           cfg,
		sim:           s,
		trail:         buf,
		headless:      opts.Headless,
		seed:          cfg.Simulation.Seed,
		stepsPerFrame: max(opts.StepsPerFrame, 1),
		screenWidth:   w,
		screenHeight:  h,
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		logStats:      opts.LogStats,
	}
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10)
	s.SetPhaseTimer(g.perfCollector)
	s.SetSpawnObserver(g.collector.RecordFieldSpawn)

	if opts.RestorePath != "" {
		if err := g.restore(opts.RestorePath); err != nil {
			g.Unload()
			return nil, err
		}
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.Unload()
		return nil, fmt.Errorf("new game: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	if !opts.Headless {
		g.presenter, err = renderer.NewPresenter(w, h)
		if err != nil {
			g.Unload()
			return nil, fmt.Errorf("new game: %w", err)
		}
		g.flow = renderer.NewFlowOverlay(int32(w), int32(h), 32)
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(int32(w)-240, 10)
		g.controls = ui.NewControlsPanel(keyLegend)
	}

	slog.Info("game initialized",
		"width", w,
		"height", h,
		"particles", s.Store().N,
		"seed", s.Seed(),
		"noise_mode", s.Params().NoiseMode.String(),
		"headless", opts.Headless,
	)
	return g, nil
}

// restore resumes from a snapshot file.
func (g *Game) restore(path string) error {
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	if err := g.sim.Restore(snap); err != nil {
		return fmt.Errorf("restoring %s: %w", path, err)
	}
	g.collector.Restart(g.sim.Frame())
	slog.Info("snapshot restored", "path", path, "frame", snap.Frame, "particles", len(snap.Particles))
	return nil
}

// SetStatsCallback installs a function called with every flushed window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// Update handles input and advances the simulation in windowed mode.
func (g *Game) Update() {
	g.handleInput()
	for i := 0; i < g.stepsPerFrame; i++ {
		// The last step's frame is closed by Draw
		if i > 0 {
			g.finishFrame()
		}
		g.step()
	}
}

// UpdateHeadless advances the simulation without touching raylib.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerFrame; i++ {
		g.step()
		g.finishFrame()
	}
}

// step runs one simulation frame and composites it into the trail buffer.
func (g *Game) step() {
	if g.sim.Paused() {
		return
	}
	g.perfCollector.StartTick()
	g.sim.Step()
	g.perfCollector.RecordParticles(g.sim.Store().N)

	g.perfCollector.StartPhase(telemetry.PhaseComposite)
	p := g.sim.Params()
	g.trail.Fade(p.Fade)
	g.trail.Composite(g.sim.Store(), trail.SchemeAt(p.ColorScheme), trail.Style{
		Opacity:    p.Opacity,
		Size:       p.PointSize,
		SpeedScale: p.Speed * speedScale,
		Seed:       uint64(g.sim.Seed()),
	})
}

// finishFrame flushes telemetry and closes the frame's perf sample.
func (g *Game) finishFrame() {
	if g.sim.Paused() {
		return
	}
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.perfCollector.EndTick()
}

// reset reseeds the simulation and clears the trail.
func (g *Game) reset() {
	g.sim.Reset(g.seed)
	g.trail.Clear()
	g.collector.RecordReset()
	g.collector.Restart(g.sim.Frame())
}

// resize propagates new surface dimensions. Particles keep their positions
// and wrap into the new bounds on the next step.
func (g *Game) resize(w, h int) error {
	if w == g.screenWidth && h == g.screenHeight {
		return nil
	}
	if err := g.sim.Resize(w, h); err != nil {
		return err
	}
	if err := g.trail.Resize(w, h); err != nil {
		return err
	}
	if g.presenter != nil {
		if err := g.presenter.Resize(w, h); err != nil {
			return err
		}
	}
	if g.flow != nil {
		g.flow.Resize(int32(w), int32(h))
	}
	if g.perfPanel != nil {
		g.perfPanel.SetPosition(int32(w)-240, 10)
	}
	g.screenWidth, g.screenHeight = w, h
	slog.Info("surface resized", "width", w, "height", h)
	return nil
}

// Frame returns the current simulation frame.
func (g *Game) Frame() uint64 {
	return g.sim.Frame()
}

// Simulation returns the underlying simulation.
func (g *Game) Simulation() *sim.Simulation {
	return g.sim
}

// Trail returns the trail buffer.
func (g *Game) Trail() *trail.Buffer {
	return g.trail
}

// Unload stops workers, closes output files and frees GPU resources.
func (g *Game) Unload() {
	if g.presenter != nil {
		g.presenter.Unload()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	g.sim.Close()
}
