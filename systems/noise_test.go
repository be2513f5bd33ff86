package systems

import (
	"math"
	"testing"
)

func TestNoiseDeterministic(t *testing.T) {
	a := NewSimplexNoise(42)
	b := NewSimplexNoise(42)

	for i := 0; i < 200; i++ {
		x := float64(i)*0.37 - 20
		y := float64(i)*0.61 + 3
		if a.Sample(x, y) != b.Sample(x, y) {
			t.Fatalf("same seed diverged at (%v,%v)", x, y)
		}
	}
}

func TestNoiseSeedsDiffer(t *testing.T) {
	a := NewSimplexNoise(1)
	b := NewSimplexNoise(2)

	same := 0
	for i := 0; i < 100; i++ {
		x, y := float64(i)*0.53, float64(i)*0.29
		if a.Sample(x, y) == b.Sample(x, y) {
			same++
		}
	}
	if same > 10 {
		t.Errorf("%d/100 samples identical across seeds", same)
	}
}

func TestNoiseBounded(t *testing.T) {
	n := NewSimplexNoise(7)
	for mode := NoiseMode(0); mode < numNoiseModes; mode++ {
		for i := 0; i < 4000; i++ {
			x := float64(i%97)*0.173 - 8
			y := float64(i/97)*0.211 - 4
			v := n.Field(mode, x, y)
			if math.IsNaN(v) || v < -1.05 || v > 1.05 {
				t.Fatalf("%s: Field(%v,%v) = %v out of [-1.05,1.05]", mode, x, y, v)
			}
		}
	}
}

func TestNoiseContinuous(t *testing.T) {
	n := NewSimplexNoise(99)
	const h = 1e-4
	for i := 0; i < 500; i++ {
		x := float64(i) * 0.071
		y := float64(i) * 0.043
		d := math.Abs(n.Sample(x+h, y) - n.Sample(x, y))
		if d > 0.01 {
			t.Fatalf("jump of %v over %v at (%v,%v)", d, h, x, y)
		}
	}
}

func TestNoiseForcesModeIsZero(t *testing.T) {
	n := NewSimplexNoise(3)
	for i := 0; i < 50; i++ {
		if v := n.Field(NoiseForcesOnly, float64(i), float64(-i)); v != 0 {
			t.Fatalf("forces mode returned %v", v)
		}
	}
}

func TestNoiseModeCycle(t *testing.T) {
	m := NoiseClassic
	seen := map[NoiseMode]bool{}
	for i := 0; i < int(numNoiseModes); i++ {
		seen[m] = true
		m = m.Next()
	}
	if m != NoiseClassic {
		t.Errorf("cycle did not return to classic, got %s", m)
	}
	if len(seen) != 6 {
		t.Errorf("visited %d modes, want 6", len(seen))
	}
}

func TestParseNoiseMode(t *testing.T) {
	for m := NoiseMode(0); m < numNoiseModes; m++ {
		got, err := ParseNoiseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseNoiseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseNoiseMode("perlin"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestPermutationIsPermutation(t *testing.T) {
	n := NewSimplexNoise(12345)
	seen := make([]bool, 256)
	for i := 0; i < 256; i++ {
		v := n.perm[i]
		if v < 0 || v > 255 || seen[v] {
			t.Fatalf("perm[%d] = %d invalid or repeated", i, v)
		}
		seen[v] = true
		if n.perm[i+256] != v {
			t.Fatalf("perm not duplicated at %d", i)
		}
	}
}
