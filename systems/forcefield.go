package systems

import (
	"fmt"
	"math"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/flowfield/components"
)

// Force field tuning constants.
const (
	FieldMinDist      = 5    // Contributions closer than this are ignored
	FieldFadeTicks    = 100  // Fade-in/out length at both ends of life
	FieldPhaseStep    = 0.05 // Pulse phase advance per frame
	FieldPulse        = 0.3  // Pulse amplitude
	turbulenceScale   = 0.01 // World units -> turbulence noise units
	gravityTangential = 0.3  // Orbit-inducing share of gravity fields

	// Random spawn ranges
	minFieldLife      = 600
	fieldLifeJitter   = 900
	minFieldRadius    = 100
	fieldRadiusJitter = 150
)

// baseStrength is the nominal strength per field type for random spawns.
var baseStrength = [components.NumFieldTypes]float32{
	components.FieldSink:       0.8,
	components.FieldSource:     0.8,
	components.FieldVortex:     1.0,
	components.FieldGravity:    0.6,
	components.FieldTurbulence: 0.7,
	components.FieldShear:      0.6,
	components.FieldRepulsor:   0.8,
	components.FieldLane:       0.7,
}

// FieldID identifies a spawned field. IDs increase with spawn order.
type FieldID uint64

// ForceField is a flat, read-only view of one field used while evaluating forces.
type ForceField struct {
	ID       FieldID
	X, Y     float32
	VX, VY   float32
	Type     components.FieldType
	Strength float32
	Radius   float32
	Rotation float32
	Seed     float64
	Angle    float32
	Life     int32
	MaxLife  int32
	Phase    float32
}

// ForceFieldSet is a bounded collection of transient point effectors.
// Fields live as entities in a private ECS world; each Update rebuilds a
// sorted snapshot that ForceAt reads, so ForceAt is safe to call from many
// goroutines between Updates.
type ForceFieldSet struct {
	world  *ecs.World
	mapper *ecs.Map5[components.Position, components.Velocity, components.Field, components.Life, components.Serial]
	filter *ecs.Filter5[components.Position, components.Velocity, components.Field, components.Life, components.Serial]

	width, height float32
	capacity      int
	count         int
	nextSerial    uint64

	rng        *Stream
	turbulence opensimplex.Noise

	snapshot []ForceField
	expired  []ecs.Entity
}

// NewForceFieldSet creates an empty set for a world of the given size.
func NewForceFieldSet(width, height float32, capacity int, seed int64) *ForceFieldSet {
	world := ecs.NewWorld()
	return &ForceFieldSet{
		world:  world,
		mapper: ecs.NewMap5[components.Position, components.Velocity, components.Field, components.Life, components.Serial](world),
		filter: ecs.NewFilter5[components.Position, components.Velocity, components.Field, components.Life, components.Serial](world),

		width:      width,
		height:     height,
		capacity:   capacity,
		rng:        NewStream(seed),
		turbulence: opensimplex.New(seed),
		snapshot:   make([]ForceField, 0, capacity),
	}
}

// Len returns the number of fields in the set.
func (s *ForceFieldSet) Len() int {
	return s.count
}

// Capacity returns the maximum number of fields.
func (s *ForceFieldSet) Capacity() int {
	return s.capacity
}

// Resize updates the bounds fields bounce within.
func (s *ForceFieldSet) Resize(width, height float32) {
	s.width = width
	s.height = height
}

// Spawn adds a field of type t at a random position. It is a no-op at capacity.
func (s *ForceFieldSet) Spawn(t components.FieldType) (FieldID, bool) {
	if s.count >= s.capacity {
		return 0, false
	}
	f := s.randomField(t)
	return s.insert(f), true
}

// SpawnRandom adds a field of random type at a random position. It is a
// no-op at capacity.
func (s *ForceFieldSet) SpawnRandom() (FieldID, bool) {
	return s.Spawn(components.FieldType(s.rng.Intn(int(components.NumFieldTypes))))
}

// SpawnAt adds a field of type t at (x, y), evicting the oldest field when
// the set is full.
func (s *ForceFieldSet) SpawnAt(x, y float32, t components.FieldType) (FieldID, bool) {
	if s.capacity <= 0 {
		return 0, false
	}
	if s.count >= s.capacity {
		s.evictOldest()
	}
	f := s.randomField(t)
	f.X = clampFloat(x, 0, s.width)
	f.Y = clampFloat(y, 0, s.height)
	return s.insert(f), true
}

// Insert adds a fully specified field. The ID in f is ignored. It is a no-op
// at capacity.
func (s *ForceFieldSet) Insert(f ForceField) (FieldID, bool) {
	if s.count >= s.capacity {
		return 0, false
	}
	return s.insert(f), true
}

func (s *ForceFieldSet) insert(f ForceField) FieldID {
	s.nextSerial++
	s.insertSerial(f, s.nextSerial)
	s.Snapshot()
	return FieldID(s.nextSerial)
}

func (s *ForceFieldSet) insertSerial(f ForceField, serial uint64) {
	s.mapper.NewEntity(
		&components.Position{X: f.X, Y: f.Y},
		&components.Velocity{X: f.VX, Y: f.VY},
		&components.Field{
			Type:     f.Type,
			Strength: f.Strength,
			Radius:   f.Radius,
			Rotation: f.Rotation,
			Seed:     f.Seed,
			Angle:    f.Angle,
		},
		&components.Life{Remaining: f.Life, Max: f.MaxLife, Phase: f.Phase},
		&components.Serial{N: serial},
	)
	s.count++
}

// SpawnState is what a set needs to continue spawning exactly where it
// left off.
type SpawnState struct {
	NextSerial uint64 // Serial of the most recent spawn
	Draws      uint64 // Position in the spawn random stream
}

// SpawnState returns the current spawn counters.
func (s *ForceFieldSet) SpawnState() SpawnState {
	return SpawnState{NextSerial: s.nextSerial, Draws: s.rng.Pos}
}

// Restore replaces every field with fields, keeping each field's ID as its
// spawn serial, and resumes the spawn stream at st.
func (s *ForceFieldSet) Restore(fields []ForceField, st SpawnState) error {
	if len(fields) > s.capacity {
		return fmt.Errorf("restore %d fields: capacity is %d", len(fields), s.capacity)
	}
	s.Clear()
	s.nextSerial = st.NextSerial
	for _, f := range fields {
		serial := uint64(f.ID)
		if serial == 0 {
			s.nextSerial++
			serial = s.nextSerial
		}
		s.nextSerial = max(s.nextSerial, serial)
		s.insertSerial(f, serial)
	}
	s.rng.Pos = st.Draws
	s.Snapshot()
	return nil
}

// randomField draws the parameters of a new field of type t.
func (s *ForceFieldSet) randomField(t components.FieldType) ForceField {
	driftAngle := s.rng.Float64() * 2 * math.Pi
	driftSpeed := 0.2 + s.rng.Float64()*0.6
	life := int32(minFieldLife + s.rng.Intn(fieldLifeJitter))

	rotation := float32(1)
	if s.rng.Intn(2) == 0 {
		rotation = -1
	}

	return ForceField{
		X:        s.rng.Float32() * s.width,
		Y:        s.rng.Float32() * s.height,
		VX:       float32(math.Cos(driftAngle) * driftSpeed),
		VY:       float32(math.Sin(driftAngle) * driftSpeed),
		Type:     t,
		Strength: baseStrength[t] * (0.7 + s.rng.Float32()*0.6),
		Radius:   minFieldRadius + s.rng.Float32()*fieldRadiusJitter,
		Rotation: rotation,
		Seed:     s.rng.Float64() * 1000,
		Angle:    s.rng.Float32() * 2 * math.Pi,
		Life:     life,
		MaxLife:  life,
		Phase:    s.rng.Float32() * 2 * math.Pi,
	}
}

// evictOldest removes the field with the lowest spawn serial.
func (s *ForceFieldSet) evictOldest() {
	var oldest ecs.Entity
	found := false
	var oldestSerial uint64

	query := s.filter.Query()
	for query.Next() {
		_, _, _, _, serial := query.Get()
		if !found || serial.N < oldestSerial {
			oldest = query.Entity()
			oldestSerial = serial.N
			found = true
		}
	}

	if found {
		s.world.RemoveEntity(oldest)
		s.count--
	}
}

// Clear removes every field.
func (s *ForceFieldSet) Clear() {
	s.expired = s.expired[:0]
	query := s.filter.Query()
	for query.Next() {
		s.expired = append(s.expired, query.Entity())
	}
	for _, e := range s.expired {
		s.world.RemoveEntity(e)
	}
	s.count = 0
	s.snapshot = s.snapshot[:0]
}

// Update advances every field by one frame. Fields whose life reached zero
// on the previous update are dropped first.
func (s *ForceFieldSet) Update() {
	// First pass: collect expired fields (must complete before modifying)
	s.expired = s.expired[:0]
	query := s.filter.Query()
	for query.Next() {
		_, _, _, life, _ := query.Get()
		if life.Remaining <= 0 {
			s.expired = append(s.expired, query.Entity())
		}
	}

	// Second pass: remove entities (query iteration complete)
	for _, e := range s.expired {
		s.world.RemoveEntity(e)
		s.count--
	}

	query = s.filter.Query()
	for query.Next() {
		pos, vel, _, life, _ := query.Get()

		pos.X += vel.X
		if pos.X < 0 || pos.X > s.width {
			vel.X = -vel.X
			pos.X = clampFloat(pos.X, 0, s.width)
		}
		pos.Y += vel.Y
		if pos.Y < 0 || pos.Y > s.height {
			vel.Y = -vel.Y
			pos.Y = clampFloat(pos.Y, 0, s.height)
		}

		life.Remaining--
		life.Phase += FieldPhaseStep
	}

	s.Snapshot()
}

// Snapshot rebuilds the read-only field view used by ForceAt, ordered by
// spawn so force sums are reproducible.
func (s *ForceFieldSet) Snapshot() {
	s.snapshot = s.snapshot[:0]

	query := s.filter.Query()
	for query.Next() {
		pos, vel, field, life, serial := query.Get()
		s.snapshot = append(s.snapshot, ForceField{
			ID:       FieldID(serial.N),
			X:        pos.X,
			Y:        pos.Y,
			VX:       vel.X,
			VY:       vel.Y,
			Type:     field.Type,
			Strength: field.Strength,
			Radius:   field.Radius,
			Rotation: field.Rotation,
			Seed:     field.Seed,
			Angle:    field.Angle,
			Life:     life.Remaining,
			MaxLife:  life.Max,
			Phase:    life.Phase,
		})
	}

	slices.SortFunc(s.snapshot, func(a, b ForceField) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

// Fields returns the current snapshot. The slice is reused by the next
// Update; callers must not retain it.
func (s *ForceFieldSet) Fields() []ForceField {
	return s.snapshot
}

// ForceAt returns the net force of all fields at (x, y).
func (s *ForceFieldSet) ForceAt(x, y float32) (fx, fy float32) {
	for i := range s.snapshot {
		dx, dy := s.FieldForce(&s.snapshot[i], x, y)
		fx += dx
		fy += dy
	}
	return fx, fy
}

// FieldEnvelope returns the fade factor for a field with the given life:
// a linear ramp over the first and last FieldFadeTicks, 1 in between.
func FieldEnvelope(life, maxLife int32) float32 {
	fadeIn := float32(maxLife-life) / FieldFadeTicks
	fadeOut := float32(life) / FieldFadeTicks
	env := min(float32(1), fadeIn, fadeOut)
	if env < 0 {
		return 0
	}
	return env
}

// FieldForce returns the force a single field exerts at (x, y).
func (s *ForceFieldSet) FieldForce(f *ForceField, x, y float32) (fx, fy float32) {
	ox := x - f.X
	oy := y - f.Y
	dist := length(ox, oy)
	if dist <= FieldMinDist || dist >= f.Radius {
		return 0, 0
	}

	env := FieldEnvelope(f.Life, f.MaxLife)
	if env == 0 {
		return 0, 0
	}

	falloff := 1 - dist/f.Radius
	pulse := 1 + FieldPulse*float32(math.Sin(float64(f.Phase)))
	scale := falloff * pulse * env

	// Unit direction from field to point and its perpendicular
	dx := ox / dist
	dy := oy / dist
	px, py := -dy, dx
	st := f.Strength

	switch f.Type {
	case components.FieldSink:
		fx, fy = -dx*st, -dy*st
	case components.FieldSource:
		fx, fy = dx*st, dy*st
	case components.FieldVortex:
		fx, fy = px*st*f.Rotation, py*st*f.Rotation
	case components.FieldGravity:
		g := 2 * st
		fx = -dx*g + px*gravityTangential*g
		fy = -dy*g + py*gravityTangential*g
	case components.FieldTurbulence:
		n := s.turbulence.Eval2(float64(x)*turbulenceScale+f.Seed, float64(y)*turbulenceScale+f.Seed)
		a := n * 2 * math.Pi
		fx = float32(math.Cos(a)) * 2 * st
		fy = float32(math.Sin(a)) * 2 * st
	case components.FieldShear:
		ax, ay := float32(math.Cos(float64(f.Angle))), float32(math.Sin(float64(f.Angle)))
		side := float32(1)
		if dx*-ay+dy*ax < 0 {
			side = -1
		}
		fx, fy = ax*st*side, ay*st*side
	case components.FieldRepulsor:
		m := min(3*st*f.Radius/dist, 6*st)
		fx, fy = dx*m, dy*m
	case components.FieldLane:
		fx = float32(math.Cos(float64(f.Angle))) * st
		fy = float32(math.Sin(float64(f.Angle))) * st
	}

	return fx * scale, fy * scale
}
