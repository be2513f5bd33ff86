package sim

import (
	"fmt"

	"github.com/pthm-cable/flowfield/config"
	"github.com/pthm-cable/flowfield/systems"
)

// InteractionKind selects the particle-particle interaction.
type InteractionKind uint8

const (
	InteractNone InteractionKind = iota
	// Probe strategy: fixed pseudo-random samples of the previous buffer.
	InteractCharge
	InteractGravity
	// Grid strategy: exact neighbors from a spatial hash grid.
	InteractAttract
	InteractRepel
	InteractAlign
	InteractZones
	numInteractionKinds
)

func (k InteractionKind) String() string {
	if int(k) < len(config.InteractionKinds) {
		return config.InteractionKinds[k]
	}
	return fmt.Sprintf("InteractionKind(%d)", k)
}

// usesGrid reports whether the kind needs the spatial grid.
func (k InteractionKind) usesGrid() bool {
	return k >= InteractAttract
}

// MouseMode selects how the pointer pushes particles.
type MouseMode uint8

const (
	MouseVortex MouseMode = iota
	MouseAttract
	MouseRepel
	numMouseModes
)

func (m MouseMode) String() string {
	if int(m) < len(config.MouseModes) {
		return config.MouseModes[m]
	}
	return fmt.Sprintf("MouseMode(%d)", m)
}

// Parameter ranges enforced by the setters.
const (
	MinBackgroundStrength = 0
	MaxBackgroundStrength = 2
	MinForceFieldStrength = 0.2
	MaxForceFieldStrength = 3
	MaxBrownian           = 5
	MinFade               = 0.001
	MaxFade               = 1
	MaxRespawnRate        = 0.1
	MinMouseRadius        = 10
	MaxMouseRadius        = 800
	MaxMouseStrength      = 5
	MinNoiseScale         = 0.0001
	MaxNoiseScale         = 0.05
	MaxInteraction        = 200
	MaxGravity            = 1
	MaxSwirl              = 5
)

// Params is the live configuration the physics step reads every frame.
type Params struct {
	ParticleCount int
	Seed          int64
	RespawnRate   float32
	Workers       int

	NoiseMode  systems.NoiseMode
	NoiseScale float64
	NoiseSpeed float64
	Zones      bool

	Speed              float32
	BackgroundStrength float32
	ForceFieldStrength float32
	Brownian           float32
	BrownianEnabled    bool
	Gravity            float32
	Swirl              float32
	Friction           float32
	FlowBlend          float32
	DT                 float32

	FieldCapacity int
	InitialFields int
	SpawnInterval int
	ShowFields    bool

	Interaction         InteractionKind
	InteractionStrength float32
	Probes              int
	ProbeSpread         float32
	CellSize            float32

	MouseRadius   float32
	MouseStrength float32
	MouseMode     MouseMode

	Fade        float32
	PointSize   float32
	Opacity     float32
	ColorScheme int
}

// ParamsFromConfig converts a loaded configuration into live parameters,
// clamping every value into its documented range.
func ParamsFromConfig(cfg *config.Config) Params {
	p := Params{
		ParticleCount: cfg.Simulation.ParticleCount,
		Seed:          cfg.Simulation.Seed,
		Workers:       cfg.Simulation.Workers,

		NoiseMode:  systems.NoiseMode(cfg.Derived.NoiseMode),
		NoiseSpeed: cfg.Noise.Speed,
		Zones:      cfg.Noise.Zones,

		Speed:           float32(cfg.Forces.Speed),
		BrownianEnabled: true,
		Friction:        float32(systems.Clamp(cfg.Forces.Friction, 0, 1)),
		FlowBlend:       float32(systems.Clamp(cfg.Forces.FlowBlend, 0, 1)),
		DT:              float32(cfg.Forces.DT),

		FieldCapacity: cfg.Fields.Capacity,
		InitialFields: cfg.Fields.Initial,
		SpawnInterval: cfg.Fields.SpawnInterval,
		ShowFields:    cfg.Fields.Visible,

		Interaction: InteractionKind(cfg.Derived.InteractionKind),
		Probes:      cfg.Interaction.Probes,
		ProbeSpread: float32(cfg.Interaction.Spread),
		CellSize:    float32(cfg.Interaction.CellSize),

		MouseMode: MouseMode(cfg.Derived.MouseMode),

		PointSize:   float32(cfg.Trail.PointSize),
		Opacity:     float32(systems.Clamp(cfg.Trail.Opacity, 0, 1)),
		ColorScheme: cfg.Trail.ColorScheme,
	}

	p.SetRespawnRate(cfg.Simulation.RespawnRate)
	p.SetNoiseScale(cfg.Noise.Scale)
	p.SetBackgroundStrength(cfg.Forces.BackgroundStrength)
	p.SetForceFieldStrength(cfg.Forces.ForceFieldStrength)
	p.SetBrownian(cfg.Forces.Brownian)
	p.SetGravity(cfg.Forces.Gravity)
	p.SetSwirl(cfg.Forces.Swirl)
	p.SetInteractionStrength(cfg.Interaction.Strength)
	p.SetMouseRadius(cfg.Mouse.Radius)
	p.SetMouseStrength(cfg.Mouse.Strength)
	p.SetFade(cfg.Trail.Fade)

	if p.DT <= 0 {
		p.DT = 1
	}
	if p.CellSize <= 0 {
		p.CellSize = 40
	}
	if p.Probes < 0 {
		p.Probes = 0
	}
	return p
}

// SetBackgroundStrength sets the noise flow multiplier, clamped to [0,2].
func (p *Params) SetBackgroundStrength(v float64) {
	p.BackgroundStrength = float32(systems.Clamp(v, MinBackgroundStrength, MaxBackgroundStrength))
}

// SetForceFieldStrength sets the field multiplier, clamped to [0.2,3].
func (p *Params) SetForceFieldStrength(v float64) {
	p.ForceFieldStrength = float32(systems.Clamp(v, MinForceFieldStrength, MaxForceFieldStrength))
}

// SetBrownian sets the jitter amplitude, clamped to [0,5].
func (p *Params) SetBrownian(v float64) {
	p.Brownian = float32(systems.Clamp(v, 0, MaxBrownian))
}

// SetGravity sets the constant pull along +y, clamped to [-1,1].
func (p *Params) SetGravity(v float64) {
	p.Gravity = float32(systems.Clamp(v, -MaxGravity, MaxGravity))
}

// SetSwirl sets the rotation around the canvas centre, clamped to [-5,5].
// Positive values turn clockwise on screen.
func (p *Params) SetSwirl(v float64) {
	p.Swirl = float32(systems.Clamp(v, -MaxSwirl, MaxSwirl))
}

// SetFade sets the trail fade alpha, clamped to [0.001,1].
func (p *Params) SetFade(v float64) {
	p.Fade = float32(systems.Clamp(v, MinFade, MaxFade))
}

// SetRespawnRate sets the per-frame respawn probability, clamped to [0,0.1].
func (p *Params) SetRespawnRate(v float64) {
	p.RespawnRate = float32(systems.Clamp(v, 0, MaxRespawnRate))
}

// SetMouseRadius sets the pointer effect radius, clamped to [10,800].
func (p *Params) SetMouseRadius(v float64) {
	p.MouseRadius = float32(systems.Clamp(v, MinMouseRadius, MaxMouseRadius))
}

// SetMouseStrength sets the pointer strength, clamped to [0,5].
func (p *Params) SetMouseStrength(v float64) {
	p.MouseStrength = float32(systems.Clamp(v, 0, MaxMouseStrength))
}

// SetNoiseScale sets the world-to-noise scale, clamped to [0.0001,0.05].
func (p *Params) SetNoiseScale(v float64) {
	p.NoiseScale = systems.Clamp(v, MinNoiseScale, MaxNoiseScale)
}

// SetInteractionStrength sets the particle interaction coefficient, clamped
// to [-200,200]. Negative values turn gravity-like attraction into repulsion.
func (p *Params) SetInteractionStrength(v float64) {
	p.InteractionStrength = float32(systems.Clamp(v, -MaxInteraction, MaxInteraction))
}

// effectiveBrownian returns the jitter amplitude with the toggle applied.
func (p *Params) effectiveBrownian() float32 {
	if !p.BrownianEnabled {
		return 0
	}
	return p.Brownian
}
