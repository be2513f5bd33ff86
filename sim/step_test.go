package sim

import (
	"math"
	"testing"

	"github.com/pthm-cable/flowfield/components"
	"github.com/pthm-cable/flowfield/systems"
)

func assertInBounds(t *testing.T, s *Simulation) {
	t.Helper()
	w, h := s.Size()
	front := s.Store().Front()
	for i := 0; i < s.Store().N; i++ {
		x, y := front.X[i], front.Y[i]
		if !(x >= 0 && x < w && y >= 0 && y < h) {
			t.Fatalf("frame %d: particle %d at (%v,%v) outside [0,%v)x[0,%v)", s.Frame(), i, x, y, w, h)
		}
	}
}

func assertSameState(t *testing.T, a, b *Simulation) {
	t.Helper()
	fa, fb := a.Store().Front(), b.Store().Front()
	for i := 0; i < a.Store().N; i++ {
		if fa.X[i] != fb.X[i] || fa.Y[i] != fb.Y[i] || fa.VX[i] != fb.VX[i] || fa.VY[i] != fb.VY[i] {
			t.Fatalf("particle %d diverged: (%v,%v,%v,%v) vs (%v,%v,%v,%v)",
				i, fa.X[i], fa.Y[i], fa.VX[i], fa.VY[i], fb.X[i], fb.Y[i], fb.VX[i], fb.VY[i])
		}
	}
}

func near(a, b, tol float32) bool {
	return float32(math.Abs(float64(a-b))) <= tol
}

func TestSingleParticleFollowsFlow(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Simulation.ParticleCount = 1
	cfg.Forces.FlowBlend = 1
	s := newSim(t, cfg, 800, 600)

	const x0, y0 = 400, 300
	s.Store().Set(0, x0, y0, 0, 0)

	p := s.Params()
	n := s.Noise().Field(systems.NoiseClassic, x0*p.NoiseScale, y0*p.NoiseScale)
	theta := FlowAngle(n, x0, y0)
	mag := float64(p.Speed * p.BackgroundStrength)
	wantX := float32(x0 + math.Cos(theta)*mag)
	wantY := float32(y0 + math.Sin(theta)*mag)

	s.Step()

	front := s.Store().Front()
	if !near(front.X[0], wantX, 1e-3) || !near(front.Y[0], wantY, 1e-3) {
		t.Errorf("particle at (%v,%v), want (%v,%v)", front.X[0], front.Y[0], wantX, wantY)
	}
	if s.Frame() != 1 || s.Time() != 1 {
		t.Errorf("frame/time = %d/%v, want 1/1", s.Frame(), s.Time())
	}
}

func TestFlowBlendInterpolatesVelocity(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Simulation.ParticleCount = 1
	cfg.Forces.FlowBlend = 0.3
	s := newSim(t, cfg, 800, 600)
	s.Store().Set(0, 200, 150, 0, 0)

	fx, fy := s.FlowAt(200, 150)
	s.Step()

	front := s.Store().Front()
	if !near(front.VX[0], 0.3*fx, 1e-5) || !near(front.VY[0], 0.3*fy, 1e-5) {
		t.Errorf("velocity (%v,%v), want 0.3*flow (%v,%v)", front.VX[0], front.VY[0], 0.3*fx, 0.3*fy)
	}
}

func TestFlowAngleMapping(t *testing.T) {
	if got := FlowAngle(0, 0, 0); got != 0 {
		t.Errorf("FlowAngle(0,0,0) = %v", got)
	}
	if got := FlowAngle(0.5, 0, 0); math.Abs(got-2*math.Pi) > 1e-9 {
		t.Errorf("FlowAngle(0.5,0,0) = %v, want 2π", got)
	}
	if got := FlowAngle(0, 1000, 1000); math.Abs(got-1) > 1e-9 {
		t.Errorf("diagonal bias = %v, want 1", got)
	}
}

func TestSinkPullsParticle(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Simulation.ParticleCount = 1
	cfg.Noise.Mode = "forces"
	cfg.Derived.NoiseMode = int(systems.NoiseForcesOnly)
	s := newSim(t, cfg, 1000, 1000)

	s.Fields().Insert(systems.ForceField{
		X: 500, Y: 500,
		Type:     components.FieldSink,
		Strength: 1,
		Radius:   200,
		Life:     500,
		MaxLife:  1000,
	})
	s.Store().Set(0, 550, 500, 0, 0)

	s.Step()

	front := s.Store().Front()
	if front.VX[0] >= 0 {
		t.Errorf("vx = %v, want negative toward the sink", front.VX[0])
	}
	if front.X[0] >= 550 {
		t.Errorf("x = %v, want < 550", front.X[0])
	}
	if !near(front.VY[0], 0, 1e-5) {
		t.Errorf("vy = %v, want 0", front.VY[0])
	}
}

func TestForcesModeWithoutForcesIsStill(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Simulation.ParticleCount = 64
	cfg.Derived.NoiseMode = int(systems.NoiseForcesOnly)
	s := newSim(t, cfg, 320, 240)

	before := s.Capture()
	for i := 0; i < 10; i++ {
		s.Step()
	}
	after := s.Capture()

	for i := range before.Particles {
		if before.Particles[i] != after.Particles[i] {
			t.Fatalf("particle %d drifted with no forces: %+v -> %+v", i, before.Particles[i], after.Particles[i])
		}
	}
}

func TestWrapInvariant(t *testing.T) {
	modes := []systems.NoiseMode{
		systems.NoiseClassic, systems.NoiseFBM, systems.NoiseRidged,
		systems.NoiseBillow, systems.NoiseWarp, systems.NoiseForcesOnly,
	}
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			cfg := quietConfig(t)
			cfg.Simulation.ParticleCount = 3000
			cfg.Simulation.RespawnRate = 0.05
			cfg.Derived.NoiseMode = int(mode)
			cfg.Forces.Brownian = 5
			cfg.Forces.Gravity = 0.5
			cfg.Forces.Swirl = 2
			cfg.Fields.Initial = 10
			cfg.Fields.SpawnInterval = 3
			cfg.Noise.Zones = true
			s := newSim(t, cfg, 257, 163)
			s.MouseMove(100, 80)
			s.SetForceFieldStrength(3)

			for i := 0; i < 40; i++ {
				s.Step()
				assertInBounds(t, s)
			}
		})
	}
}

func TestWrapInvariantWithInteractions(t *testing.T) {
	kinds := []InteractionKind{InteractCharge, InteractGravity, InteractAttract, InteractRepel, InteractAlign, InteractZones}
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			cfg := quietConfig(t)
			cfg.Simulation.ParticleCount = 2500
			cfg.Derived.InteractionKind = int(kind)
			cfg.Interaction.Strength = 200
			s := newSim(t, cfg, 200, 150)

			for i := 0; i < 20; i++ {
				s.Step()
				assertInBounds(t, s)
			}
		})
	}
}

func TestDeterministicAcrossWorkerCounts(t *testing.T) {
	build := func(workers int) *Simulation {
		cfg := quietConfig(t)
		cfg.Simulation.ParticleCount = 6000
		cfg.Simulation.Workers = workers
		cfg.Simulation.RespawnRate = 0.01
		cfg.Forces.Brownian = 1
		cfg.Fields.Initial = 6
		cfg.Fields.SpawnInterval = 5
		cfg.Derived.InteractionKind = int(InteractAttract)
		return newSim(t, cfg, 640, 480)
	}

	a := build(1)
	b := build(4)
	for i := 0; i < 15; i++ {
		a.Step()
		b.Step()
	}
	assertSameState(t, a, b)
}

func TestDeterministicForcesOnly(t *testing.T) {
	build := func() *Simulation {
		cfg := quietConfig(t)
		cfg.Simulation.ParticleCount = 500
		cfg.Derived.NoiseMode = int(systems.NoiseForcesOnly)
		cfg.Fields.Initial = 8
		return newSim(t, cfg, 500, 400)
	}

	a, b := build(), build()
	for i := 0; i < 30; i++ {
		a.Step()
		b.Step()
	}
	assertSameState(t, a, b)
}

func TestMouseVortexSpinsParticles(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Simulation.ParticleCount = 1
	cfg.Derived.NoiseMode = int(systems.NoiseForcesOnly)
	cfg.Forces.Friction = 0
	s := newSim(t, cfg, 400, 400)

	s.Store().Set(0, 250, 200, 0, 0)
	s.MouseMove(200, 200)
	s.Step()

	front := s.Store().Front()
	// Particle sits at +x from the pointer: tangent is +y
	if front.VY[0] <= 0 || !near(front.VX[0], 0, 1e-5) {
		t.Errorf("velocity (%v,%v), want tangential +y", front.VX[0], front.VY[0])
	}

	s.MouseLeave()
	s.Store().Set(0, 250, 200, 0, 0)
	s.Step()
	if v := s.Store().Front().VY[0]; v != 0 {
		t.Errorf("inactive pointer still pushes: vy = %v", v)
	}
}

func TestMouseAttractAndRepel(t *testing.T) {
	for _, tc := range []struct {
		mode MouseMode
		sign float32
	}{
		{MouseAttract, -1},
		{MouseRepel, 1},
	} {
		t.Run(tc.mode.String(), func(t *testing.T) {
			cfg := quietConfig(t)
			cfg.Simulation.ParticleCount = 1
			cfg.Derived.NoiseMode = int(systems.NoiseForcesOnly)
			cfg.Derived.MouseMode = int(tc.mode)
			s := newSim(t, cfg, 400, 400)

			s.Store().Set(0, 250, 200, 0, 0)
			s.MouseMove(200, 200)
			s.Step()

			if vx := s.Store().Front().VX[0]; vx*tc.sign <= 0 {
				t.Errorf("vx = %v, want sign %v", vx, tc.sign)
			}
		})
	}
}

func TestGravityProbesAttract(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Simulation.ParticleCount = 2
	cfg.Derived.NoiseMode = int(systems.NoiseForcesOnly)
	cfg.Derived.InteractionKind = int(InteractGravity)
	cfg.Interaction.Strength = 100
	s := newSim(t, cfg, 400, 400)

	s.Store().Set(0, 100, 100, 0, 0)
	s.Store().Set(1, 120, 100, 0, 0)
	s.Step()

	front := s.Store().Front()
	if front.VX[0] <= 0 || front.VX[1] >= 0 {
		t.Errorf("velocities %v, %v: particles should approach", front.VX[0], front.VX[1])
	}
}

func TestNegativeGravityRepels(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Simulation.ParticleCount = 2
	cfg.Derived.NoiseMode = int(systems.NoiseForcesOnly)
	cfg.Derived.InteractionKind = int(InteractGravity)
	cfg.Interaction.Strength = -100
	s := newSim(t, cfg, 400, 400)

	s.Store().Set(0, 100, 100, 0, 0)
	s.Store().Set(1, 120, 100, 0, 0)
	s.Step()

	front := s.Store().Front()
	if front.VX[0] >= 0 || front.VX[1] <= 0 {
		t.Errorf("velocities %v, %v: particles should separate", front.VX[0], front.VX[1])
	}
}

func TestGridAttractAndRepel(t *testing.T) {
	for _, tc := range []struct {
		kind InteractionKind
		sign float32
	}{
		{InteractAttract, 1},
		{InteractRepel, -1},
	} {
		t.Run(tc.kind.String(), func(t *testing.T) {
			cfg := quietConfig(t)
			cfg.Simulation.ParticleCount = 2
			cfg.Derived.NoiseMode = int(systems.NoiseForcesOnly)
			cfg.Derived.InteractionKind = int(tc.kind)
			s := newSim(t, cfg, 400, 400)

			s.Store().Set(0, 100, 100, 0, 0)
			s.Store().Set(1, 120, 100, 0, 0)
			s.Step()

			if vx := s.Store().Front().VX[0]; vx*tc.sign <= 0 {
				t.Errorf("particle 0 vx = %v, want sign %v", vx, tc.sign)
			}
		})
	}
}

func TestGridAlignMatchesNeighbors(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Simulation.ParticleCount = 2
	cfg.Derived.NoiseMode = int(systems.NoiseForcesOnly)
	cfg.Derived.InteractionKind = int(InteractAlign)
	s := newSim(t, cfg, 400, 400)

	s.Store().Set(0, 100, 100, 0, 0)
	s.Store().Set(1, 110, 100, 0, 2)
	s.Step()

	if vy := s.Store().Front().VY[0]; vy <= 0 {
		t.Errorf("particle 0 vy = %v, want to pick up neighbor heading", vy)
	}
}

func TestAutoSpawnInterval(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Simulation.ParticleCount = 10
	cfg.Fields.SpawnInterval = 4
	cfg.Fields.Capacity = 100
	s := newSim(t, cfg, 320, 240)
	var observed int
	s.SetSpawnObserver(func(ok bool) {
		if ok {
			observed++
		}
	})

	for i := 0; i < 13; i++ {
		s.Step()
	}
	// Spawns at frames 4, 8 and 12
	if got := s.Fields().Len(); got != 3 {
		t.Errorf("fields after 13 steps = %d, want 3", got)
	}
	if observed != 3 {
		t.Errorf("observer saw %d spawns, want 3", observed)
	}
}

func TestRespawnResetsVelocity(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Simulation.ParticleCount = 2000
	s := newSim(t, cfg, 320, 240)
	s.SetRespawnRate(MaxRespawnRate)
	s.Step()

	front := s.Store().Front()
	zero := 0
	for i := 0; i < s.Store().N; i++ {
		if front.VX[i] == 0 && front.VY[i] == 0 {
			zero++
		}
	}
	// Roughly 10% respawn with zero velocity
	if zero < 100 || zero > 320 {
		t.Errorf("%d particles respawned, want about 200", zero)
	}
}

func TestChargeLikeSignsRepel(t *testing.T) {
	var same, opposite int64
	for seed := int64(1); seed < 64 && (same == 0 || opposite == 0); seed++ {
		if systems.ChargeSign(uint64(seed), 0) == systems.ChargeSign(uint64(seed), 1) {
			same = seed
		} else {
			opposite = seed
		}
	}
	if same == 0 || opposite == 0 {
		t.Fatal("no seeds found covering both charge pairings")
	}

	for _, tc := range []struct {
		name  string
		seed  int64
		apart bool
	}{
		{"like", same, true},
		{"opposite", opposite, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := quietConfig(t)
			cfg.Simulation.Seed = tc.seed
			cfg.Simulation.ParticleCount = 2
			cfg.Derived.NoiseMode = int(systems.NoiseForcesOnly)
			cfg.Derived.InteractionKind = int(InteractCharge)
			cfg.Interaction.Strength = 100
			s := newSim(t, cfg, 400, 400)

			s.Store().Set(0, 100, 100, 0, 0)
			s.Store().Set(1, 120, 100, 0, 0)
			s.Step()

			front := s.Store().Front()
			separating := front.VX[0] < 0 && front.VX[1] > 0
			approaching := front.VX[0] > 0 && front.VX[1] < 0
			if tc.apart && !separating {
				t.Errorf("velocities %v, %v: like charges should separate", front.VX[0], front.VX[1])
			}
			if !tc.apart && !approaching {
				t.Errorf("velocities %v, %v: opposite charges should approach", front.VX[0], front.VX[1])
			}
		})
	}
}

// zoneSample finds a point whose zone noise satisfies pick.
func zoneSample(t *testing.T, s *Simulation, pick func(z float64) bool) (x, y float32, z float64) {
	t.Helper()
	w, h := s.Size()
	scale := s.Params().NoiseScale
	for py := float32(10); py < h; py += 37 {
		for px := float32(10); px < w; px += 37 {
			v := s.Noise().Sample(float64(px)*scale*zoneScale+31.7, float64(py)*scale*zoneScale+47.3)
			if pick(v) {
				return px, py, v
			}
		}
	}
	t.Fatal("no matching zone found")
	return 0, 0, 0
}

func TestZonesTransformFlow(t *testing.T) {
	newZoneSim := func(t *testing.T) *Simulation {
		cfg := quietConfig(t)
		cfg.Simulation.ParticleCount = 1
		cfg.Forces.FlowBlend = 1
		cfg.Noise.Scale = 0.02
		cfg.Noise.Zones = true
		return newSim(t, cfg, 4000, 4000)
	}

	t.Run("boost", func(t *testing.T) {
		s := newZoneSim(t)
		x, y, _ := zoneSample(t, s, func(z float64) bool { return z < -zoneThreshold })
		fx, fy := s.FlowAt(x, y)
		s.Store().Set(0, x, y, 0, 0)
		s.Step()

		front := s.Store().Front()
		if !near(front.VX[0], fx*zoneBoost, 1e-4) || !near(front.VY[0], fy*zoneBoost, 1e-4) {
			t.Errorf("velocity (%v,%v), want 1.8*flow (%v,%v)", front.VX[0], front.VY[0], fx*zoneBoost, fy*zoneBoost)
		}
	})

	t.Run("rotate", func(t *testing.T) {
		s := newZoneSim(t)
		x, y, z := zoneSample(t, s, func(z float64) bool { return z > zoneThreshold+0.1 })
		fx, fy := s.FlowAt(x, y)
		s.Store().Set(0, x, y, 0, 0)
		s.Step()

		a := (z - zoneThreshold) / (1 - zoneThreshold) * math.Pi / 2
		c, sn := float32(math.Cos(a)), float32(math.Sin(a))
		wantX, wantY := fx*c-fy*sn, fx*sn+fy*c

		front := s.Store().Front()
		if !near(front.VX[0], wantX, 1e-4) || !near(front.VY[0], wantY, 1e-4) {
			t.Errorf("velocity (%v,%v), want flow rotated by %.3f rad (%v,%v)", front.VX[0], front.VY[0], a, wantX, wantY)
		}
		// Rotation keeps the magnitude
		got := math.Hypot(float64(front.VX[0]), float64(front.VY[0]))
		if want := math.Hypot(float64(fx), float64(fy)); math.Abs(got-want) > 1e-4 {
			t.Errorf("speed %v, want %v", got, want)
		}
	})

	t.Run("turbulence", func(t *testing.T) {
		s := newZoneSim(t)
		x, y, _ := zoneSample(t, s, func(z float64) bool { return math.Abs(z) < zoneThreshold })
		fx, fy := s.FlowAt(x, y)
		s.Store().Set(0, x, y, 0, 0)
		s.Step()

		p := s.Params()
		nx, ny := float64(x)*p.NoiseScale, float64(y)*p.NoiseScale
		a := 2 * math.Pi * s.Noise().Sample(2*nx+13, 2*ny+7)
		kick := zoneTurbulence * p.Speed
		wantX := fx + float32(math.Cos(a))*kick
		wantY := fy + float32(math.Sin(a))*kick

		front := s.Store().Front()
		if !near(front.VX[0], wantX, 1e-4) || !near(front.VY[0], wantY, 1e-4) {
			t.Errorf("velocity (%v,%v), want flow plus turbulence (%v,%v)", front.VX[0], front.VY[0], wantX, wantY)
		}
	})
}

func TestSwirlTurnsClockwiseAndDecays(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Simulation.ParticleCount = 3
	cfg.Derived.NoiseMode = int(systems.NoiseForcesOnly)
	cfg.Forces.Swirl = 2
	s := newSim(t, cfg, 800, 600) // centre (400,300), radius 500

	s.Store().Set(0, 500, 300, 0, 0) // r = 100, right of centre
	s.Store().Set(1, 100, 300, 0, 0) // r = 300, left of centre
	s.Store().Set(2, 0, 0, 0, 0)     // r = 500, at the edge
	s.Step()

	damp := 1 - s.Params().Friction
	front := s.Store().Front()

	if want := 2 * (1 - 100.0/500) * damp; !near(front.VY[0], want, 1e-5) {
		t.Errorf("right particle vy = %v, want %v (downward)", front.VY[0], want)
	}
	if want := -2 * (1 - 300.0/500) * damp; !near(front.VY[1], want, 1e-5) {
		t.Errorf("left particle vy = %v, want %v (upward)", front.VY[1], want)
	}
	if !near(front.VX[0], 0, 1e-6) || !near(front.VX[1], 0, 1e-6) {
		t.Errorf("swirl should be tangential, got vx %v, %v", front.VX[0], front.VX[1])
	}
	if front.VX[2] != 0 || front.VY[2] != 0 {
		t.Errorf("particle at the swirl radius moved: (%v,%v)", front.VX[2], front.VY[2])
	}
}

func TestGlobalGravityPullsDown(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Simulation.ParticleCount = 1
	cfg.Derived.NoiseMode = int(systems.NoiseForcesOnly)
	cfg.Forces.Gravity = 0.1
	s := newSim(t, cfg, 400, 400)
	s.Store().Set(0, 200, 200, 0, 0)

	s.Step()

	front := s.Store().Front()
	want := 0.1 * (1 - s.Params().Friction)
	if !near(front.VY[0], want, 1e-6) || front.VX[0] != 0 {
		t.Errorf("velocity (%v,%v), want (0,%v)", front.VX[0], front.VY[0], want)
	}
	if front.Y[0] <= 200 {
		t.Errorf("y = %v, want > 200", front.Y[0])
	}
}
