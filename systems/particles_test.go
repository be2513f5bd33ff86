package systems

import (
	"errors"
	"math/rand"
	"testing"
)

func TestNewParticleStoreGeometry(t *testing.T) {
	tests := []struct {
		n, side int
	}{
		{1, 1},
		{4, 2},
		{5, 3},
		{20000, 142},
		{65536, 256},
	}

	for _, tt := range tests {
		s, err := NewParticleStore(tt.n)
		if err != nil {
			t.Fatalf("NewParticleStore(%d): %v", tt.n, err)
		}
		if s.Side != tt.side {
			t.Errorf("n=%d: side = %d, want %d", tt.n, s.Side, tt.side)
		}
		if len(s.Front().X) != tt.side*tt.side || len(s.Back().X) != tt.side*tt.side {
			t.Errorf("n=%d: buffers not side²", tt.n)
		}
	}
}

func TestNewParticleStoreRejectsEmpty(t *testing.T) {
	for _, n := range []int{0, -3} {
		if _, err := NewParticleStore(n); !errors.Is(err, ErrNoParticles) {
			t.Errorf("NewParticleStore(%d) err = %v, want ErrNoParticles", n, err)
		}
	}
}

func TestSwapAlternatesBuffers(t *testing.T) {
	s, _ := NewParticleStore(4)
	front := s.Front()
	back := s.Back()
	if front == back {
		t.Fatal("front and back alias")
	}

	s.Swap()
	if s.Front() != back || s.Back() != front {
		t.Error("swap did not exchange buffers")
	}
	s.Swap()
	if s.Front() != front {
		t.Error("double swap should restore front")
	}
}

func TestGridCoordRoundTrip(t *testing.T) {
	s, _ := NewParticleStore(50)
	for i := 0; i < s.N; i++ {
		gx, gy := s.GridCoord(i)
		if got := s.Index(gx, gy); got != i {
			t.Fatalf("Index(GridCoord(%d)) = %d", i, got)
		}
	}

	// Wrapped coordinates
	if got := s.Index(-1, 0); got != s.Side-1 {
		t.Errorf("Index(-1,0) = %d, want %d", got, s.Side-1)
	}
	if got := s.Index(0, s.Side); got != 0 {
		t.Errorf("Index(0,side) = %d, want 0", got)
	}
}

func TestSeedInsideBounds(t *testing.T) {
	s, _ := NewParticleStore(1000)
	s.Seed(320, 240, rand.New(rand.NewSource(1)))

	for _, buf := range []*ParticleBuffer{s.Front(), s.Back()} {
		for i := 0; i < s.N; i++ {
			if buf.X[i] < 0 || buf.X[i] >= 320 || buf.Y[i] < 0 || buf.Y[i] >= 240 {
				t.Fatalf("particle %d at (%v,%v) out of bounds", i, buf.X[i], buf.Y[i])
			}
			if buf.VX[i] != 0 || buf.VY[i] != 0 {
				t.Fatalf("particle %d has nonzero velocity", i)
			}
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		v, size, want float32
	}{
		{5, 10, 5},
		{10, 10, 0},
		{-1, 10, 9},
		{25, 10, 5},
		{-10, 10, 0},
	}
	for _, tt := range tests {
		got := Wrap(tt.v, tt.size)
		if got != tt.want {
			t.Errorf("Wrap(%v,%v) = %v, want %v", tt.v, tt.size, got, tt.want)
		}
		if got < 0 || got >= tt.size {
			t.Errorf("Wrap(%v,%v) = %v outside [0,size)", tt.v, tt.size, got)
		}
	}
}

func TestHashFloatRange(t *testing.T) {
	var sum float64
	const n = 10000
	for i := 0; i < n; i++ {
		v := HashFloat(42, i, 7, SaltBrownianX)
		if v < 0 || v >= 1 {
			t.Fatalf("HashFloat = %v out of [0,1)", v)
		}
		sum += float64(v)
	}
	if mean := sum / n; mean < 0.45 || mean > 0.55 {
		t.Errorf("mean %v far from 0.5", mean)
	}
}

func TestHashStreamsIndependent(t *testing.T) {
	if HashFloat(1, 5, 9, SaltBrownianX) == HashFloat(1, 5, 9, SaltBrownianY) {
		t.Error("x and y streams coincide")
	}
	if HashFloat(1, 5, 9, SaltBrownianX) == HashFloat(1, 5, 10, SaltBrownianX) {
		t.Error("consecutive frames coincide")
	}
	if HashFloat(1, 5, 9, SaltBrownianX) != HashFloat(1, 5, 9, SaltBrownianX) {
		t.Error("hash is not deterministic")
	}
}

func TestChargeSignBalanced(t *testing.T) {
	pos := 0
	for i := 0; i < 1000; i++ {
		switch ChargeSign(3, i) {
		case 1:
			pos++
		case -1:
		default:
			t.Fatal("charge must be ±1")
		}
	}
	if pos < 400 || pos > 600 {
		t.Errorf("%d/1000 positive charges", pos)
	}
}
