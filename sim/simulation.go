// Package sim runs the flow-field particle simulation: it owns the live
// parameters, noise field, force field set and double-buffered particle state,
// and advances them one frame per Step.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/pthm-cable/flowfield/components"
	"github.com/pthm-cable/flowfield/config"
	"github.com/pthm-cable/flowfield/systems"
	"github.com/pthm-cable/flowfield/telemetry"
)

// ErrInvalidSurface is returned when the simulation is created for a surface
// without a positive size.
var ErrInvalidSurface = errors.New("surface must have positive width and height")

// PhaseTimer receives phase boundaries during Step.
type PhaseTimer interface {
	StartPhase(phase string)
}

// Mouse is the pointer state fed in by the interaction layer.
type Mouse struct {
	X, Y   float32
	Active bool
}

// Simulation is one independent flow-field instance.
type Simulation struct {
	params Params

	width, height float32
	seed          int64

	noise  *systems.SimplexNoise
	fields *systems.ForceFieldSet
	store  *systems.ParticleStore
	grid   *systems.SpatialGrid
	rng    *systems.Stream

	mouse  Mouse
	paused bool

	frame uint64
	time  float64

	pool    *workerPool
	timer   PhaseTimer
	onSpawn func(ok bool)
}

// New creates a simulation for a surface of width x height pixels. It either
// returns a fully constructed simulation or an error; nothing is left running
// on failure.
func New(cfg *config.Config, width, height int) (*Simulation, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("new simulation (%dx%d): %w", width, height, ErrInvalidSurface)
	}

	params := ParamsFromConfig(cfg)

	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	store, err := systems.NewParticleStore(params.ParticleCount)
	if err != nil {
		return nil, fmt.Errorf("new simulation: %w", err)
	}

	s := &Simulation{
		params: params,
		width:  float32(width),
		height: float32(height),
		store:  store,
	}
	s.grid = systems.NewSpatialGrid(s.width, s.height, params.CellSize)
	s.reseed(seed)

	// Workers start last so a failed construction never leaks goroutines
	s.pool = newWorkerPool(params.Workers)
	s.pool.start(s)

	return s, nil
}

// reseed rebuilds every random source from seed and repopulates particles
// and fields.
func (s *Simulation) reseed(seed int64) {
	s.seed = seed
	s.noise = systems.NewSimplexNoise(seed)
	s.fields = systems.NewForceFieldSet(s.width, s.height, s.params.FieldCapacity, seed+1)
	s.rng = systems.NewStream(seed + 2)

	s.store.Seed(s.width, s.height, s.rng)
	for i := 0; i < s.params.InitialFields; i++ {
		s.fields.SpawnRandom()
	}

	s.frame = 0
	s.time = 0
}

// Close stops the worker pool.
func (s *Simulation) Close() {
	if s.pool != nil {
		s.pool.stop()
	}
}

// SetPhaseTimer installs an optional timer notified at each step phase.
func (s *Simulation) SetPhaseTimer(t PhaseTimer) {
	s.timer = t
}

// SetSpawnObserver installs a callback told about every automatic field
// spawn; ok is false when the set was full.
func (s *Simulation) SetSpawnObserver(fn func(ok bool)) {
	s.onSpawn = fn
}

func (s *Simulation) phase(name string) {
	if s.timer != nil {
		s.timer.StartPhase(name)
	}
}

// Step advances the simulation by one frame: fields, then the particle
// kernel over the previous buffer, then the buffer swap. It is a no-op while
// paused.
func (s *Simulation) Step() {
	if s.paused {
		return
	}

	s.phase(telemetry.PhaseFields)
	s.fields.Update()
	if s.params.SpawnInterval > 0 && s.frame > 0 && s.frame%uint64(s.params.SpawnInterval) == 0 {
		_, ok := s.fields.SpawnRandom()
		if s.onSpawn != nil {
			s.onSpawn(ok)
		}
	}

	if s.params.Interaction.usesGrid() {
		s.phase(telemetry.PhaseSpatialGrid)
		s.grid.Rebuild(s.store.Front(), s.store.N)
	}

	s.phase(telemetry.PhasePhysics)
	fs := s.frameState()
	s.pool.run(s, fs)
	s.store.Swap()

	s.frame++
	s.time++
}

// Reset reseeds noise, fields and particles. A zero seed picks a new
// time-based seed.
func (s *Simulation) Reset(seed int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.reseed(seed)
	slog.Info("simulation reset", "seed", seed, "particles", s.store.N)
}

// SetParticleCount tears down the particle buffers and rebuilds them for n
// particles.
func (s *Simulation) SetParticleCount(n int) error {
	store, err := systems.NewParticleStore(n)
	if err != nil {
		return fmt.Errorf("set particle count: %w", err)
	}
	s.store = store
	s.params.ParticleCount = n
	s.store.Seed(s.width, s.height, s.rng)
	slog.Info("particle buffers rebuilt", "particles", n, "side", store.Side)
	return nil
}

// Resize changes the world bounds. Particles outside the new bounds wrap in
// on their next step.
func (s *Simulation) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize (%dx%d): %w", width, height, ErrInvalidSurface)
	}
	s.width = float32(width)
	s.height = float32(height)
	s.fields.Resize(s.width, s.height)
	s.grid.Resize(s.width, s.height)
	return nil
}

// Accessors.

func (s *Simulation) Params() Params { return s.params }
func (s *Simulation) Store() *systems.ParticleStore { return s.store }
func (s *Simulation) Fields() *systems.ForceFieldSet { return s.fields }
func (s *Simulation) Noise() *systems.SimplexNoise { return s.noise }
func (s *Simulation) Frame() uint64 { return s.frame }
func (s *Simulation) Time() float64 { return s.time }
func (s *Simulation) Seed() int64 { return s.seed }
func (s *Simulation) Paused() bool { return s.paused }
func (s *Simulation) Mouse() Mouse { return s.mouse }
func (s *Simulation) Size() (width, height float32) { return s.width, s.height }

// Setters clamp to their documented ranges; see Params.

func (s *Simulation) SetBackgroundStrength(v float64) { s.params.SetBackgroundStrength(v) }
func (s *Simulation) SetForceFieldStrength(v float64) { s.params.SetForceFieldStrength(v) }
func (s *Simulation) SetBrownian(v float64) { s.params.SetBrownian(v) }
func (s *Simulation) SetFade(v float64) { s.params.SetFade(v) }
func (s *Simulation) SetRespawnRate(v float64) { s.params.SetRespawnRate(v) }
func (s *Simulation) SetMouseRadius(v float64) { s.params.SetMouseRadius(v) }
func (s *Simulation) SetMouseStrength(v float64) { s.params.SetMouseStrength(v) }
func (s *Simulation) SetNoiseScale(v float64) { s.params.SetNoiseScale(v) }
func (s *Simulation) SetGravity(v float64) { s.params.SetGravity(v) }
func (s *Simulation) SetSwirl(v float64) { s.params.SetSwirl(v) }
func (s *Simulation) SetInteractionStrength(v float64) {
	s.params.SetInteractionStrength(v)
}

// SetNoiseMode selects the flow combinator. Unknown modes are ignored.
func (s *Simulation) SetNoiseMode(m systems.NoiseMode) {
	if m.Valid() {
		s.params.NoiseMode = m
	}
}

// SetInteraction selects the particle-particle interaction. Unknown kinds
// are ignored.
func (s *Simulation) SetInteraction(k InteractionKind) {
	if k < numInteractionKinds {
		s.params.Interaction = k
	}
}

// SetZones enables the noise zone partition.
func (s *Simulation) SetZones(on bool) {
	s.params.Zones = on
}

// AdjustBackgroundStrength changes the flow multiplier by delta.
func (s *Simulation) AdjustBackgroundStrength(delta float64) {
	s.params.SetBackgroundStrength(float64(s.params.BackgroundStrength) + delta)
}

// AdjustForceFieldStrength changes the field multiplier by delta.
func (s *Simulation) AdjustForceFieldStrength(delta float64) {
	s.params.SetForceFieldStrength(float64(s.params.ForceFieldStrength) + delta)
}

// AdjustGravity changes the constant pull by delta.
func (s *Simulation) AdjustGravity(delta float64) {
	s.params.SetGravity(float64(s.params.Gravity) + delta)
}

// AdjustSwirl changes the rotation around the centre by delta.
func (s *Simulation) AdjustSwirl(delta float64) {
	s.params.SetSwirl(float64(s.params.Swirl) + delta)
}

// CycleInteraction advances to the next particle interaction.
func (s *Simulation) CycleInteraction() InteractionKind {
	s.SetInteraction((s.params.Interaction + 1) % numInteractionKinds)
	return s.params.Interaction
}

// AdjustMouseRadius changes the pointer radius by delta.
func (s *Simulation) AdjustMouseRadius(delta float64) {
	s.params.SetMouseRadius(float64(s.params.MouseRadius) + delta)
}

// Commands issued by the interaction layer.

// CycleNoiseMode advances to the next noise mode.
func (s *Simulation) CycleNoiseMode() systems.NoiseMode {
	s.params.NoiseMode = s.params.NoiseMode.Next()
	return s.params.NoiseMode
}

// CycleColorScheme advances the palette index modulo count.
func (s *Simulation) CycleColorScheme(count int) int {
	if count <= 0 {
		return s.params.ColorScheme
	}
	s.params.ColorScheme = (s.params.ColorScheme + 1) % count
	return s.params.ColorScheme
}

// CycleMouseMode advances to the next pointer mode.
func (s *Simulation) CycleMouseMode() MouseMode {
	s.params.MouseMode = (s.params.MouseMode + 1) % numMouseModes
	return s.params.MouseMode
}

// TogglePause pauses or resumes Step.
func (s *Simulation) TogglePause() bool {
	s.paused = !s.paused
	return s.paused
}

// ToggleFieldVisibility flips the force-field overlay flag.
func (s *Simulation) ToggleFieldVisibility() bool {
	s.params.ShowFields = !s.params.ShowFields
	return s.params.ShowFields
}

// ToggleBrownian enables or disables the jitter term.
func (s *Simulation) ToggleBrownian() bool {
	s.params.BrownianEnabled = !s.params.BrownianEnabled
	return s.params.BrownianEnabled
}

// ToggleZones flips the noise zone partition.
func (s *Simulation) ToggleZones() bool {
	s.params.Zones = !s.params.Zones
	return s.params.Zones
}

// ClearFields removes every force field.
func (s *Simulation) ClearFields() {
	s.fields.Clear()
}

// SpawnField adds a field of type t at a random position; ignored at capacity.
func (s *Simulation) SpawnField(t components.FieldType) (systems.FieldID, bool) {
	return s.fields.Spawn(t)
}

// SpawnFieldAt adds a random-type field at (x, y), evicting the oldest field
// when the set is full.
func (s *Simulation) SpawnFieldAt(x, y float32) (systems.FieldID, bool) {
	t := components.FieldType(s.rng.Intn(int(components.NumFieldTypes)))
	return s.fields.SpawnAt(x, y, t)
}

// MouseMove activates the pointer at (x, y).
func (s *Simulation) MouseMove(x, y float32) {
	s.mouse = Mouse{X: x, Y: y, Active: true}
}

// MouseLeave deactivates the pointer.
func (s *Simulation) MouseLeave() {
	s.mouse.Active = false
}

// frameState captures the per-frame constants read by every worker.
type frameState struct {
	p      Params
	mouse  Mouse
	width  float32
	height float32
	t      float64
	frame  uint64
	seed   uint64

	centerX, centerY float32
	swirlRadius      float32
}

func (s *Simulation) frameState() *frameState {
	return &frameState{
		p:           s.params,
		mouse:       s.mouse,
		width:       s.width,
		height:      s.height,
		t:           s.time,
		frame:       s.frame,
		seed:        uint64(s.seed),
		centerX:     s.width / 2,
		centerY:     s.height / 2,
		swirlRadius: float32(math.Hypot(float64(s.width), float64(s.height)) / 2),
	}
}
