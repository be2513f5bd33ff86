package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flowfield/config"
	"github.com/pthm-cable/flowfield/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config copy and snapshots")
	snapshot := flag.String("snapshot", "", "Resume from a snapshot file")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config value, then time-based)")
	maxFrames := flag.Uint64("max-frames", 0, "Stop after N frames (0 = unlimited)")
	stepsPerFrame := flag.Int("steps-per-frame", 1, "Simulation steps per update (higher = faster headless runs)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	opts := game.Options{
		Seed:          *seed,
		Headless:      *headless,
		LogStats:      *logStats,
		OutputDir:     *outputDir,
		RestorePath:   *snapshot,
		StepsPerFrame: *stepsPerFrame,
	}

	if *headless {
		os.Exit(runHeadless(cfg, opts, *maxFrames))
	}
	os.Exit(runWindowed(cfg, opts, *maxFrames))
}

func runHeadless(cfg *config.Config, opts game.Options, maxFrames uint64) int {
	g, err := game.NewGame(cfg, opts)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		return 1
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"max_frames", maxFrames,
		"steps_per_frame", opts.StepsPerFrame,
	)

	for {
		g.UpdateHeadless()

		if maxFrames > 0 && g.Frame() >= maxFrames {
			slog.Info("max frames reached", "frame", g.Frame())
			return 0
		}
	}
}

func runWindowed(cfg *config.Config, opts game.Options, maxFrames uint64) int {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagVsyncHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Flow Field")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGame(cfg, opts)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		return 1
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if maxFrames > 0 && g.Frame() >= maxFrames {
			break
		}
	}
	return 0
}
