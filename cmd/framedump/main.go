// Frame dump tool - runs the simulation headless and writes the trail to a PNG.
//
// Usage: go run ./cmd/framedump -frames 600 -mode warp -out frame.png
package main

import (
	"flag"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flowfield/config"
	"github.com/pthm-cable/flowfield/game"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "frame.png", "Output PNG path")
	frames := flag.Uint64("frames", 600, "Frames to simulate before capturing")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config value)")
	mode := flag.String("mode", "", "Noise mode override")
	width := flag.Int("width", 0, "Render width (0 = config)")
	height := flag.Int("height", 0, "Render height (0 = config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if *width > 0 {
		cfg.Screen.Width = *width
	}
	if *height > 0 {
		cfg.Screen.Height = *height
	}
	if *mode != "" {
		cfg.Noise.Mode = *mode
	}
	if err := cfg.Refresh(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid overrides: %v\n", err)
		return 1
	}

	g, err := game.NewGame(cfg, game.Options{Headless: true, Seed: *seed})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start simulation: %v\n", err)
		return 1
	}
	defer g.Unload()

	for g.Frame() < *frames {
		g.UpdateHeadless()
	}

	// Image export is CPU side; no window needed
	img := rl.NewImageFromImage(g.Trail().Image())
	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if !success {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		return 1
	}
	fmt.Printf("Frame %d written to: %s (%dx%d)\n", g.Frame(), *outPath, cfg.Screen.Width, cfg.Screen.Height)
	return 0
}
