package sim

import (
	"math"

	"github.com/pthm-cable/flowfield/systems"
)

// Kernel constants.
const (
	angleRange     = 4 * math.Pi // Noise value -> flow angle
	diagonalBias   = 0.0005      // Angle drift along x+y
	zoneScale      = 0.25        // Zone noise frequency relative to flow noise
	zoneThreshold  = 0.3
	zoneBoost      = 1.8
	zoneTurbulence = 0.5
)

// FlowAngle maps a noise value at (x, y) to the flow direction in radians.
func FlowAngle(n float64, x, y float32) float64 {
	return n*angleRange + float64(x+y)*diagonalBias
}

// FlowAt returns the background flow vector at (x, y) for the current frame,
// before zones and force contributions.
func (s *Simulation) FlowAt(x, y float32) (fx, fy float32) {
	fs := s.frameState()
	return s.flow(fs, x, y)
}

func (s *Simulation) flow(fs *frameState, x, y float32) (fx, fy float32) {
	p := &fs.p
	if p.NoiseMode == systems.NoiseForcesOnly {
		return 0, 0
	}
	offset := fs.t * p.NoiseSpeed
	n := s.noise.Field(p.NoiseMode, float64(x)*p.NoiseScale+offset, float64(y)*p.NoiseScale+offset)
	theta := FlowAngle(n, x, y)
	mag := p.Speed * p.BackgroundStrength
	return float32(math.Cos(theta)) * mag, float32(math.Sin(theta)) * mag
}

// computeChunk runs the kernel for particles [i0, i1), reading the front
// buffer and writing the back buffer.
func (s *Simulation) computeChunk(i0, i1 int, scratch *workerScratch, fs *frameState) {
	src := s.store.Front()
	dst := s.store.Back()
	p := &fs.p
	brownian := p.effectiveBrownian()

	for i := i0; i < i1; i++ {
		x, y := src.X[i], src.Y[i]
		vx, vy := src.VX[i], src.VY[i]

		flowX, flowY := s.flow(fs, x, y)
		if p.Zones && p.NoiseMode != systems.NoiseForcesOnly {
			flowX, flowY = s.applyZones(fs, x, y, flowX, flowY)
		}

		var fx, fy float32

		// Force fields
		ffx, ffy := s.fields.ForceAt(x, y)
		fx += ffx * p.ForceFieldStrength
		fy += ffy * p.ForceFieldStrength

		// Particle interaction
		ix, iy := s.interact(fs, i, x, y, vx, vy, scratch)
		fx += ix
		fy += iy

		// Brownian jitter
		if brownian > 0 {
			fx += (systems.HashFloat(fs.seed, i, fs.frame, systems.SaltBrownianX) - 0.5) * brownian
			fy += (systems.HashFloat(fs.seed, i, fs.frame, systems.SaltBrownianY) - 0.5) * brownian
		}

		// Mouse
		if fs.mouse.Active {
			mx, my := s.mouseForce(fs, x, y, vx, vy)
			fx += mx
			fy += my
		}

		// Global gravity and swirl
		fy += p.Gravity
		if p.Swirl != 0 {
			rx := x - fs.centerX
			ry := y - fs.centerY
			r := float32(math.Hypot(float64(rx), float64(ry)))
			if r > 0 && r < fs.swirlRadius {
				k := p.Swirl * (1 - r/fs.swirlRadius) / r
				fx += -ry * k
				fy += rx * k
			}
		}

		// Integrate
		if p.NoiseMode == systems.NoiseForcesOnly {
			vx += fx * p.DT
			vy += fy * p.DT
			vx *= 1 - p.Friction
			vy *= 1 - p.Friction
		} else {
			vx += (flowX + fx - vx) * p.FlowBlend
			vy += (flowY + fy - vy) * p.FlowBlend
		}

		x = systems.Wrap(x+vx, fs.width)
		y = systems.Wrap(y+vy, fs.height)

		// Respawn
		if p.RespawnRate > 0 && systems.HashFloat(fs.seed, i, fs.frame, systems.SaltRespawn) < p.RespawnRate {
			x = systems.Wrap(systems.HashFloat(fs.seed, i, fs.frame, systems.SaltRespawnX)*fs.width, fs.width)
			y = systems.Wrap(systems.HashFloat(fs.seed, i, fs.frame, systems.SaltRespawnY)*fs.height, fs.height)
			vx, vy = 0, 0
		}

		dst.X[i] = x
		dst.Y[i] = y
		dst.VX[i] = vx
		dst.VY[i] = vy
	}
}

// applyZones partitions space with a coarse noise sample: low zones boost
// the flow, high zones rotate it, the band between adds turbulence.
func (s *Simulation) applyZones(fs *frameState, x, y, flowX, flowY float32) (float32, float32) {
	p := &fs.p
	nx := float64(x) * p.NoiseScale
	ny := float64(y) * p.NoiseScale
	z := s.noise.Sample(nx*zoneScale+31.7, ny*zoneScale+47.3)

	switch {
	case z < -zoneThreshold:
		return flowX * zoneBoost, flowY * zoneBoost
	case z > zoneThreshold:
		a := (z - zoneThreshold) / (1 - zoneThreshold) * math.Pi / 2
		c, sn := float32(math.Cos(a)), float32(math.Sin(a))
		return flowX*c - flowY*sn, flowX*sn + flowY*c
	default:
		a := 2 * math.Pi * s.noise.Sample(2*nx+13, 2*ny+7)
		t := zoneTurbulence * p.Speed
		return flowX + float32(math.Cos(a))*t, flowY + float32(math.Sin(a))*t
	}
}

// mouseForce returns the pointer contribution for a particle at (x, y).
func (s *Simulation) mouseForce(fs *frameState, x, y, vx, vy float32) (fx, fy float32) {
	p := &fs.p
	dx := x - fs.mouse.X
	dy := y - fs.mouse.Y
	d := float32(math.Hypot(float64(dx), float64(dy)))
	if d >= p.MouseRadius || d == 0 {
		return 0, 0
	}

	proximity := 1 - d/p.MouseRadius
	k := proximity * p.MouseStrength
	ux, uy := dx/d, dy/d

	switch p.MouseMode {
	case MouseVortex:
		tx, ty := -uy*p.Speed, ux*p.Speed
		return (tx - vx) * k, (ty - vy) * k
	case MouseAttract:
		return -ux * k, -uy * k
	case MouseRepel:
		return ux * k, uy * k
	}
	return 0, 0
}
