package systems

// Stream salts for HashFloat. Each consumer of per-particle randomness uses its
// own salt so the streams never correlate.
const (
	SaltBrownianX uint64 = 0x9e3779b97f4a7c15
	SaltBrownianY uint64 = 0xbf58476d1ce4e5b9
	SaltRespawn   uint64 = 0x94d049bb133111eb
	SaltRespawnX  uint64 = 0x2545f4914f6cdd1d
	SaltRespawnY  uint64 = 0xd6e8feb86659fd93
	SaltCharge    uint64 = 0xa0761d6478bd642f
	SaltStream    uint64 = 0x6a09e667f3bcc909
)

// mix64 is the splitmix64 finalizer.
func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Hash64 combines a seed, particle index, frame and stream salt into a
// well-mixed 64-bit value. It is stateless, so any goroutine can draw the
// value for any particle without coordination.
func Hash64(seed uint64, index int, frame uint64, salt uint64) uint64 {
	h := mix64(seed ^ salt)
	h = mix64(h ^ uint64(index))
	return mix64(h ^ frame)
}

// HashFloat returns a uniform value in [0, 1).
func HashFloat(seed uint64, index int, frame uint64, salt uint64) float32 {
	return float32(Hash64(seed, index, frame, salt)>>40) / (1 << 24)
}

// ChargeSign returns the fixed ±1 charge of a particle index.
func ChargeSign(seed uint64, index int) float32 {
	if Hash64(seed, index, 0, SaltCharge)&1 == 0 {
		return 1
	}
	return -1
}

// Stream is a resumable random sequence for spawn-time draws. Draw n is a
// pure function of (Seed, n), so saving Pos is enough to continue it later.
type Stream struct {
	Seed uint64
	Pos  uint64
}

// NewStream starts a sequence at position zero.
func NewStream(seed int64) *Stream {
	return &Stream{Seed: uint64(seed)}
}

// Uint64 returns the next value and advances the position.
func (r *Stream) Uint64() uint64 {
	v := Hash64(r.Seed, 0, r.Pos, SaltStream)
	r.Pos++
	return v
}

// Float64 returns a uniform value in [0, 1).
func (r *Stream) Float64() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}

// Float32 returns a uniform value in [0, 1).
func (r *Stream) Float32() float32 {
	return float32(r.Uint64()>>40) / (1 << 24)
}

// Intn returns a value in [0, n). It panics if n <= 0.
func (r *Stream) Intn(n int) int {
	if n <= 0 {
		panic("systems: Stream.Intn called with non-positive n")
	}
	return int(r.Uint64() % uint64(n))
}
