package systems

import (
	"fmt"
	"math"
)

// Simplex skew/unskew factors for two dimensions.
var (
	skewF2   = 0.5 * (math.Sqrt(3) - 1)
	unskewG2 = (3 - math.Sqrt(3)) / 6
)

// grad3 holds the 12 edge gradients of a cube; 2D evaluation uses X and Y.
var grad3 = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

// SimplexNoise generates coherent 2D simplex noise from a seeded permutation table.
// It is immutable after construction and safe for concurrent Sample calls.
type SimplexNoise struct {
	seed      int64
	perm      [512]int
	permMod12 [512]uint8
}

// NewSimplexNoise creates a noise generator. The same seed always produces
// the same field.
func NewSimplexNoise(seed int64) *SimplexNoise {
	n := &SimplexNoise{seed: seed}

	var perm [256]int
	for i := range perm {
		perm[i] = i
	}

	// Fisher-Yates driven by a 64-bit LCG so the table does not depend on
	// math/rand's generator.
	s := uint64(seed)
	for i := len(perm) - 1; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407
		j := int((s >> 33) % uint64(i+1))
		perm[i], perm[j] = perm[j], perm[i]
	}

	for i := 0; i < 512; i++ {
		n.perm[i] = perm[i&255]
		n.permMod12[i] = uint8(n.perm[i] % 12)
	}

	return n
}

// Seed returns the seed the table was built from.
func (n *SimplexNoise) Seed() int64 {
	return n.seed
}

// Sample returns simplex noise at (x, y), approximately in [-1, 1].
func (n *SimplexNoise) Sample(x, y float64) float64 {
	// Skew input space to find the simplex cell
	s := (x + y) * skewF2
	i := int(math.Floor(x + s))
	j := int(math.Floor(y + s))

	t := float64(i+j) * unskewG2
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)

	// Lower or upper triangle of the cell
	var i1, j1 int
	if x0 > y0 {
		i1, j1 = 1, 0
	} else {
		i1, j1 = 0, 1
	}

	x1 := x0 - float64(i1) + unskewG2
	y1 := y0 - float64(j1) + unskewG2
	x2 := x0 - 1 + 2*unskewG2
	y2 := y0 - 1 + 2*unskewG2

	ii := i & 255
	jj := j & 255
	gi0 := n.permMod12[ii+n.perm[jj]]
	gi1 := n.permMod12[ii+i1+n.perm[jj+j1]]
	gi2 := n.permMod12[ii+1+n.perm[jj+1]]

	return 70 * (corner(gi0, x0, y0) + corner(gi1, x1, y1) + corner(gi2, x2, y2))
}

// corner returns one simplex corner contribution with quartic falloff.
func corner(gi uint8, x, y float64) float64 {
	t := 0.5 - x*x - y*y
	if t < 0 {
		return 0
	}
	t *= t
	g := grad3[gi]
	return t * t * (g[0]*x + g[1]*y)
}

// NoiseMode selects how raw noise samples are combined into a flow value.
type NoiseMode uint8

const (
	NoiseClassic NoiseMode = iota
	NoiseFBM
	NoiseRidged
	NoiseBillow
	NoiseWarp
	NoiseForcesOnly
	numNoiseModes
)

var noiseModeNames = [...]string{"classic", "fbm", "ridged", "billow", "warp", "forces"}

func (m NoiseMode) String() string {
	if m >= numNoiseModes {
		return fmt.Sprintf("NoiseMode(%d)", m)
	}
	return noiseModeNames[m]
}

// Valid reports whether m names a known mode.
func (m NoiseMode) Valid() bool {
	return m < numNoiseModes
}

// Next returns the following mode, wrapping after the last.
func (m NoiseMode) Next() NoiseMode {
	return (m + 1) % numNoiseModes
}

// ParseNoiseMode converts a mode name to a NoiseMode.
func ParseNoiseMode(s string) (NoiseMode, error) {
	for i, name := range noiseModeNames {
		if name == s {
			return NoiseMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown noise mode %q", s)
}

// Field evaluates the noise combinator for mode at (x, y). Every mode except
// NoiseForcesOnly returns a value in roughly [-1, 1]; NoiseForcesOnly is always 0.
func (n *SimplexNoise) Field(mode NoiseMode, x, y float64) float64 {
	switch mode {
	case NoiseFBM:
		return 0.5*n.Sample(x, y) +
			0.25*n.Sample(2*x, 2*y) +
			0.125*n.Sample(4*x, 4*y) +
			0.0625*n.Sample(8*x, 8*y)

	case NoiseRidged:
		r0 := 1 - math.Abs(n.Sample(x, y))
		r1 := 1 - math.Abs(n.Sample(2*x, 2*y))
		r2 := 1 - math.Abs(n.Sample(4*x, 4*y))
		sum := r0*r0 + 0.5*r1*r1 + 0.25*r2*r2
		return sum/1.75*2 - 1

	case NoiseBillow:
		sum := math.Abs(n.Sample(x, y)) +
			0.5*math.Abs(n.Sample(2*x, 2*y)) +
			0.25*math.Abs(n.Sample(4*x, 4*y))
		return sum/1.75*2 - 1

	case NoiseWarp:
		wx := x + n.Sample(x+5.2, y+1.3)
		wy := y + n.Sample(x+1.7, y+9.2)
		return (n.Sample(wx, wy) + 0.5*n.Sample(2*wx, 2*wy)) / 1.5

	case NoiseForcesOnly:
		return 0

	default:
		return n.Sample(x, y)
	}
}
