package sim

import (
	"math"

	"github.com/pthm-cable/flowfield/systems"
)

// Interaction constants.
const (
	goldenAngle    = 2.399963229728653 // π(3 − √5)
	probeSoftening = 10                // Added to d² in probe falloff
	probeMinDist   = 1e-3
	gridCoef       = 0.01 // Strength -> grid interaction force
	zoneNoiseFreq  = 0.002
	zoneSplit      = 0.33
)

// interact returns the particle-particle force on particle i.
func (s *Simulation) interact(fs *frameState, i int, x, y, vx, vy float32, scratch *workerScratch) (fx, fy float32) {
	switch fs.p.Interaction {
	case InteractCharge, InteractGravity:
		return s.probeForce(fs, i, x, y)
	case InteractAttract, InteractRepel, InteractAlign:
		return s.gridForce(fs, fs.p.Interaction, i, x, y, vx, vy, scratch)
	case InteractZones:
		z := s.noise.Sample(float64(x)*zoneNoiseFreq, float64(y)*zoneNoiseFreq)
		kind := InteractAlign
		if z < -zoneSplit {
			kind = InteractAttract
		} else if z > zoneSplit {
			kind = InteractRepel
		}
		return s.gridForce(fs, kind, i, x, y, vx, vy, scratch)
	}
	return 0, 0
}

// probeForce samples a fixed golden-angle spiral of grid neighbors around
// particle i's own cell. Grid cells are unrelated to world position, so this
// is a cheap stochastic estimate rather than a neighbor search.
func (s *Simulation) probeForce(fs *frameState, i int, x, y float32) (fx, fy float32) {
	p := &fs.p
	src := s.store.Front()
	gx, gy := s.store.GridCoord(i)

	var si float32 = 1
	if p.Interaction == InteractCharge {
		si = systems.ChargeSign(fs.seed, i)
	}

	for k := 0; k < p.Probes; k++ {
		r := float64(p.ProbeSpread) * math.Sqrt(float64(k+1))
		a := float64(k) * goldenAngle
		j := s.store.Index(gx+int(math.Round(r*math.Cos(a))), gy+int(math.Round(r*math.Sin(a))))
		if j == i || j >= s.store.N {
			continue
		}

		dx, dy := systems.ToroidalDelta(x, y, src.X[j], src.Y[j], fs.width, fs.height)
		distSq := dx*dx + dy*dy
		d := float32(math.Sqrt(float64(distSq)))
		if d < probeMinDist {
			continue
		}

		mag := p.InteractionStrength / (distSq + probeSoftening)
		ux, uy := dx/d, dy/d

		if p.Interaction == InteractCharge {
			// Like signs repel, opposite signs attract
			mag = -mag * si * systems.ChargeSign(fs.seed, j)
		}
		fx += ux * mag
		fy += uy * mag
	}
	return fx, fy
}

// gridForce averages an exact neighbor interaction over the spatial grid.
func (s *Simulation) gridForce(fs *frameState, kind InteractionKind, i int, x, y, vx, vy float32, scratch *workerScratch) (fx, fy float32) {
	src := s.store.Front()
	radius := s.grid.CellSize()

	scratch.Neighbors = s.grid.QueryRadiusInto(scratch.Neighbors[:0], src, x, y, radius, int32(i))
	n := len(scratch.Neighbors)
	if n == 0 {
		return 0, 0
	}

	k := fs.p.InteractionStrength * gridCoef / float32(n)

	if kind == InteractAlign {
		var ax, ay float32
		for _, nb := range scratch.Neighbors {
			ax += src.VX[nb.Index]
			ay += src.VY[nb.Index]
		}
		inv := 1 / float32(n)
		c := fs.p.InteractionStrength * gridCoef
		return (ax*inv - vx) * c, (ay*inv - vy) * c
	}

	sign := float32(1)
	if kind == InteractRepel {
		sign = -1
	}
	for _, nb := range scratch.Neighbors {
		d := float32(math.Sqrt(float64(nb.DistSq)))
		if d < probeMinDist {
			continue
		}
		w := (1 - d/radius) * k * sign
		fx += nb.DX / d * w
		fy += nb.DY / d * w
	}
	return fx, fy
}
