package game

// Options configures a Game beyond the loaded config.
type Options struct {
	Seed          int64  // Overrides simulation.seed when nonzero
	Headless      bool   // No window, no GPU resources
	LogStats      bool   // Log each stats window via slog
	OutputDir     string // CSV logs, config copy and bookmark snapshots
	RestorePath   string // Snapshot to resume from
	StepsPerFrame int    // Simulation steps per Update
}
