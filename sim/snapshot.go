package sim

import (
	"fmt"
	"slices"

	"github.com/pthm-cable/flowfield/components"
	"github.com/pthm-cable/flowfield/config"
	"github.com/pthm-cable/flowfield/systems"
	"github.com/pthm-cable/flowfield/telemetry"
)

// Capture returns the full particle, field and parameter state of the
// current frame, including the spawn stream positions.
func (s *Simulation) Capture() *telemetry.Snapshot {
	front := s.store.Front()
	spawn := s.fields.SpawnState()
	snap := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		Seed:        s.seed,
		WorldWidth:  s.width,
		WorldHeight: s.height,
		Frame:       s.frame,
		Time:        s.time,
		NoiseMode:   s.params.NoiseMode.String(),
		Params:      paramState(&s.params),
		FieldSerial: spawn.NextSerial,
		FieldDraws:  spawn.Draws,
		SpawnDraws:  s.rng.Pos,
		Particles:   make([]telemetry.ParticleState, s.store.N),
	}

	for i := range snap.Particles {
		snap.Particles[i] = telemetry.ParticleState{
			X: front.X[i], Y: front.Y[i], VelX: front.VX[i], VelY: front.VY[i],
		}
	}

	for _, f := range s.fields.Fields() {
		snap.Fields = append(snap.Fields, telemetry.FieldState{
			ID:       uint64(f.ID),
			Type:     uint8(f.Type),
			X:        f.X,
			Y:        f.Y,
			VelX:     f.VX,
			VelY:     f.VY,
			Strength: f.Strength,
			Radius:   f.Radius,
			Rotation: f.Rotation,
			Seed:     f.Seed,
			Angle:    f.Angle,
			Life:     f.Life,
			MaxLife:  f.MaxLife,
			Phase:    f.Phase,
		})
	}
	return snap
}

// Restore replaces the simulation state with snap and continues the run
// exactly where it was captured. The particle count and live parameters
// follow the snapshot; the worker count and surface size stay. Positions
// outside the current bounds wrap in on the next step. On error the
// simulation is unchanged.
func (s *Simulation) Restore(snap *telemetry.Snapshot) error {
	params, err := s.applyParamState(snap)
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	for _, f := range snap.Fields {
		if f.Type >= uint8(components.NumFieldTypes) {
			return fmt.Errorf("restore snapshot: unknown field type %d", f.Type)
		}
	}
	store, err := systems.NewParticleStore(len(snap.Particles))
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	fields := systems.NewForceFieldSet(s.width, s.height, params.FieldCapacity, snap.Seed+1)
	restored := make([]systems.ForceField, 0, len(snap.Fields))
	for _, f := range snap.Fields {
		restored = append(restored, systems.ForceField{
			ID:       systems.FieldID(f.ID),
			X:        f.X,
			Y:        f.Y,
			VX:       f.VelX,
			VY:       f.VelY,
			Type:     components.FieldType(f.Type),
			Strength: f.Strength,
			Radius:   f.Radius,
			Rotation: f.Rotation,
			Seed:     f.Seed,
			Angle:    f.Angle,
			Life:     f.Life,
			MaxLife:  f.MaxLife,
			Phase:    f.Phase,
		})
	}
	spawn := systems.SpawnState{NextSerial: snap.FieldSerial, Draws: snap.FieldDraws}
	if err := fields.Restore(restored, spawn); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	for i, p := range snap.Particles {
		store.Set(i, p.X, p.Y, p.VelX, p.VelY)
	}

	s.params = params
	s.seed = snap.Seed
	s.noise = systems.NewSimplexNoise(snap.Seed)
	s.fields = fields
	s.rng = systems.NewStream(snap.Seed + 2)
	s.rng.Pos = snap.SpawnDraws
	s.store = store
	s.grid = systems.NewSpatialGrid(s.width, s.height, params.CellSize)

	s.frame = snap.Frame
	s.time = snap.Time
	return nil
}

// paramState copies the run-mutable parameters into their snapshot form.
func paramState(p *Params) telemetry.ParamState {
	return telemetry.ParamState{
		RespawnRate: p.RespawnRate,
		NoiseScale:  p.NoiseScale,
		NoiseSpeed:  p.NoiseSpeed,
		Zones:       p.Zones,

		Speed:              p.Speed,
		BackgroundStrength: p.BackgroundStrength,
		ForceFieldStrength: p.ForceFieldStrength,
		Brownian:           p.Brownian,
		BrownianEnabled:    p.BrownianEnabled,
		Gravity:            p.Gravity,
		Swirl:              p.Swirl,
		Friction:           p.Friction,
		FlowBlend:          p.FlowBlend,
		DT:                 p.DT,

		FieldCapacity: p.FieldCapacity,
		SpawnInterval: p.SpawnInterval,
		ShowFields:    p.ShowFields,

		Interaction:         p.Interaction.String(),
		InteractionStrength: p.InteractionStrength,
		Probes:              p.Probes,
		ProbeSpread:         p.ProbeSpread,
		CellSize:            p.CellSize,

		MouseRadius:   p.MouseRadius,
		MouseStrength: p.MouseStrength,
		MouseMode:     p.MouseMode.String(),

		Fade:        p.Fade,
		PointSize:   p.PointSize,
		Opacity:     p.Opacity,
		ColorScheme: p.ColorScheme,
	}
}

// applyParamState returns the current params with the snapshot's values
// laid over them. Ranged values go through the clamping setters.
func (s *Simulation) applyParamState(snap *telemetry.Snapshot) (Params, error) {
	ps := snap.Params
	mode, err := systems.ParseNoiseMode(snap.NoiseMode)
	if err != nil {
		return Params{}, err
	}
	kind := slices.Index(config.InteractionKinds, ps.Interaction)
	if kind < 0 {
		return Params{}, fmt.Errorf("unknown interaction %q", ps.Interaction)
	}
	mouse := slices.Index(config.MouseModes, ps.MouseMode)
	if mouse < 0 {
		return Params{}, fmt.Errorf("unknown mouse mode %q", ps.MouseMode)
	}
	if ps.FieldCapacity < 0 || ps.CellSize <= 0 || ps.DT <= 0 {
		return Params{}, fmt.Errorf("invalid params: capacity %d, cell size %v, dt %v",
			ps.FieldCapacity, ps.CellSize, ps.DT)
	}

	p := s.params
	p.ParticleCount = len(snap.Particles)
	p.Seed = snap.Seed
	p.NoiseMode = mode
	p.NoiseSpeed = ps.NoiseSpeed
	p.Zones = ps.Zones
	p.Speed = ps.Speed
	p.BrownianEnabled = ps.BrownianEnabled
	p.Friction = float32(systems.Clamp(float64(ps.Friction), 0, 1))
	p.FlowBlend = float32(systems.Clamp(float64(ps.FlowBlend), 0, 1))
	p.DT = ps.DT
	p.FieldCapacity = ps.FieldCapacity
	p.SpawnInterval = ps.SpawnInterval
	p.ShowFields = ps.ShowFields
	p.Interaction = InteractionKind(kind)
	p.Probes = max(ps.Probes, 0)
	p.ProbeSpread = ps.ProbeSpread
	p.CellSize = ps.CellSize
	p.MouseMode = MouseMode(mouse)
	p.PointSize = ps.PointSize
	p.Opacity = float32(systems.Clamp(float64(ps.Opacity), 0, 1))
	p.ColorScheme = ps.ColorScheme

	p.SetRespawnRate(float64(ps.RespawnRate))
	p.SetNoiseScale(ps.NoiseScale)
	p.SetBackgroundStrength(float64(ps.BackgroundStrength))
	p.SetForceFieldStrength(float64(ps.ForceFieldStrength))
	p.SetBrownian(float64(ps.Brownian))
	p.SetGravity(float64(ps.Gravity))
	p.SetSwirl(float64(ps.Swirl))
	p.SetInteractionStrength(float64(ps.InteractionStrength))
	p.SetMouseRadius(float64(ps.MouseRadius))
	p.SetMouseStrength(float64(ps.MouseStrength))
	p.SetFade(float64(ps.Fade))
	return p, nil
}
