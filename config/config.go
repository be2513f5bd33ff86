// Package config provides configuration loading for the flow-field simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	Noise       NoiseConfig       `yaml:"noise"`
	Forces      ForcesConfig      `yaml:"forces"`
	Fields      FieldsConfig      `yaml:"fields"`
	Interaction InteractionConfig `yaml:"interaction"`
	Mouse       MouseConfig       `yaml:"mouse"`
	Trail       TrailConfig       `yaml:"trail"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig holds particle population and seeding.
type SimulationConfig struct {
	ParticleCount int     `yaml:"particle_count"`
	Seed          int64   `yaml:"seed"`         // 0 = time-based
	RespawnRate   float64 `yaml:"respawn_rate"` // Per-particle per-frame respawn probability
	Workers       int     `yaml:"workers"`      // 0 = GOMAXPROCS
}

// NoiseConfig holds background flow noise parameters.
type NoiseConfig struct {
	Mode  string  `yaml:"mode"`  // classic, fbm, ridged, billow, warp, forces
	Scale float64 `yaml:"scale"` // World units -> noise units
	Speed float64 `yaml:"speed"` // Noise drift per frame
	Zones bool    `yaml:"zones"` // Partition plane into boost/swirl/turbulence regions
}

// ForcesConfig holds global force parameters.
type ForcesConfig struct {
	Speed              float64 `yaml:"speed"`                // Particle speed along the flow
	BackgroundStrength float64 `yaml:"background_strength"`  // Flow multiplier [0,2]
	ForceFieldStrength float64 `yaml:"force_field_strength"` // Field multiplier [0.2,3]
	Brownian           float64 `yaml:"brownian"`             // Jitter amplitude
	Gravity            float64 `yaml:"gravity"`              // Constant downward pull
	Swirl              float64 `yaml:"swirl"`                // Rotation around canvas centre
	Friction           float64 `yaml:"friction"`             // Velocity damping in forces-only mode
	FlowBlend          float64 `yaml:"flow_blend"`           // Velocity interpolation toward target flow
	DT                 float64 `yaml:"dt"`
}

// FieldsConfig holds force field set parameters.
type FieldsConfig struct {
	Capacity      int  `yaml:"capacity"`
	Initial       int  `yaml:"initial"`        // Fields spawned at startup/reset
	SpawnInterval int  `yaml:"spawn_interval"` // Frames between automatic spawns (0 = off)
	Visible       bool `yaml:"visible"`        // Draw field overlay
}

// InteractionConfig holds particle-particle interaction parameters.
type InteractionConfig struct {
	Kind     string  `yaml:"kind"` // none, charge, gravity, attract, repel, align, zones
	Strength float64 `yaml:"strength"`
	Probes   int     `yaml:"probes"`    // Probe count for charge/gravity
	Spread   float64 `yaml:"spread"`    // Probe spiral spread in grid cells
	CellSize float64 `yaml:"cell_size"` // Spatial grid cell size for attract/repel/align/zones
}

// MouseConfig holds pointer interaction parameters.
type MouseConfig struct {
	Radius   float64 `yaml:"radius"`
	Strength float64 `yaml:"strength"`
	Mode     string  `yaml:"mode"` // vortex, attract, repel
}

// TrailConfig holds compositor parameters.
type TrailConfig struct {
	Fade        float64 `yaml:"fade"`         // Alpha of the black rectangle drawn each frame
	PointSize   float64 `yaml:"point_size"`   // Splat radius in pixels
	Opacity     float64 `yaml:"opacity"`      // Per-splat intensity
	ColorScheme int     `yaml:"color_scheme"` // Palette index
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"`          // Frames per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"` // Frames in perf rolling window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32       float32 // Screen.Width as float32
	ScreenH32       float32 // Screen.Height as float32
	NoiseMode       int     // Parsed Noise.Mode (systems.NoiseMode ordinal)
	InteractionKind int     // Parsed Interaction.Kind ordinal
	MouseMode       int     // Parsed Mouse.Mode ordinal
}

// Enum spellings accepted in YAML. Order defines the ordinal stored in Derived;
// the consuming packages declare matching iota constants.
var (
	NoiseModes       = []string{"classic", "fbm", "ridged", "billow", "warp", "forces"}
	InteractionKinds = []string{"none", "charge", "gravity", "attract", "repel", "align", "zones"}
	MouseModes       = []string{"vortex", "attract", "repel"}
)

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// computeDerived validates enum strings and calculates derived values.
func (c *Config) computeDerived() error {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	var err error
	if c.Derived.NoiseMode, err = lookup("noise.mode", c.Noise.Mode, NoiseModes); err != nil {
		return err
	}
	if c.Derived.InteractionKind, err = lookup("interaction.kind", c.Interaction.Kind, InteractionKinds); err != nil {
		return err
	}
	if c.Derived.MouseMode, err = lookup("mouse.mode", c.Mouse.Mode, MouseModes); err != nil {
		return err
	}

	if c.Simulation.ParticleCount <= 0 {
		return fmt.Errorf("simulation.particle_count must be positive, got %d", c.Simulation.ParticleCount)
	}
	if c.Fields.Capacity < 0 {
		return fmt.Errorf("fields.capacity must not be negative, got %d", c.Fields.Capacity)
	}
	return nil
}

// Refresh re-validates enum strings and recomputes derived values after
// fields were changed in code.
func (c *Config) Refresh() error {
	return c.computeDerived()
}

func lookup(key, value string, names []string) (int, error) {
	for i, n := range names {
		if n == value {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s: unknown value %q (want one of %v)", key, value, names)
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
