package systems

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoParticles is returned when a store is requested with no particles.
var ErrNoParticles = errors.New("particle count must be positive")

// ParticleBuffer holds one frame of particle state as structure-of-arrays.
// Slot i holds particle i; slots at or beyond the particle count are padding.
type ParticleBuffer struct {
	X, Y   []float32
	VX, VY []float32
}

func newParticleBuffer(size int) ParticleBuffer {
	return ParticleBuffer{
		X:  make([]float32, size),
		Y:  make([]float32, size),
		VX: make([]float32, size),
		VY: make([]float32, size),
	}
}

// copyFrom overwrites b with the contents of src.
func (b *ParticleBuffer) copyFrom(src *ParticleBuffer) {
	copy(b.X, src.X)
	copy(b.Y, src.Y)
	copy(b.VX, src.VX)
	copy(b.VY, src.VY)
}

// ParticleStore is the double-buffered particle state. Front is the current
// frame; the physics step reads Front, writes Back, then calls Swap.
type ParticleStore struct {
	N    int // Live particles
	Side int // Grid side, ceil(sqrt(N))

	bufs [2]ParticleBuffer
	cur  int
}

// NewParticleStore allocates both buffers for n particles laid out on a
// square grid of side ceil(sqrt(n)).
func NewParticleStore(n int) (*ParticleStore, error) {
	if n <= 0 {
		return nil, fmt.Errorf("new particle store (n=%d): %w", n, ErrNoParticles)
	}
	side := int(math.Ceil(math.Sqrt(float64(n))))
	return &ParticleStore{
		N:    n,
		Side: side,
		bufs: [2]ParticleBuffer{newParticleBuffer(side * side), newParticleBuffer(side * side)},
	}, nil
}

// Front returns the current (readable) buffer.
func (s *ParticleStore) Front() *ParticleBuffer {
	return &s.bufs[s.cur]
}

// Back returns the buffer the next step writes into.
func (s *ParticleStore) Back() *ParticleBuffer {
	return &s.bufs[1-s.cur]
}

// Swap makes the back buffer current.
func (s *ParticleStore) Swap() {
	s.cur = 1 - s.cur
}

// GridCoord returns the grid cell of particle i.
func (s *ParticleStore) GridCoord(i int) (gx, gy int) {
	return i % s.Side, i / s.Side
}

// Index returns the particle index at grid cell (gx, gy), wrapping both axes.
func (s *ParticleStore) Index(gx, gy int) int {
	gx = ((gx % s.Side) + s.Side) % s.Side
	gy = ((gy % s.Side) + s.Side) % s.Side
	return gy*s.Side + gx
}

// UniformSource draws uniform values in [0, 1). Both *Stream and *rand.Rand
// satisfy it.
type UniformSource interface {
	Float32() float32
}

// Seed places every particle uniformly in [0,width)x[0,height) with zero
// velocity. Both buffers receive the same state.
func (s *ParticleStore) Seed(width, height float32, rng UniformSource) {
	front := s.Front()
	for i := 0; i < s.N; i++ {
		front.X[i] = Wrap(rng.Float32()*width, width)
		front.Y[i] = Wrap(rng.Float32()*height, height)
		front.VX[i] = 0
		front.VY[i] = 0
	}
	s.Back().copyFrom(front)
}

// Set overwrites particle i in the front buffer.
func (s *ParticleStore) Set(i int, x, y, vx, vy float32) {
	front := s.Front()
	front.X[i] = x
	front.Y[i] = y
	front.VX[i] = vx
	front.VY[i] = vy
}

// Speed returns the velocity magnitude of particle i in the front buffer.
func (s *ParticleStore) Speed(i int) float32 {
	front := s.Front()
	return length(front.VX[i], front.VY[i])
}
