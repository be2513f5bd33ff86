// Package components defines ECS components for force-field entities.
package components

// FieldType identifies the force law of a field.
type FieldType uint8

const (
	FieldSink FieldType = iota
	FieldSource
	FieldVortex
	FieldGravity
	FieldTurbulence
	FieldShear
	FieldRepulsor
	FieldLane
	NumFieldTypes
)

var fieldTypeNames = [...]string{
	"sink", "source", "vortex", "gravity", "turbulence", "shear", "repulsor", "lane",
}

func (t FieldType) String() string {
	if t >= NumFieldTypes {
		return "unknown"
	}
	return fieldTypeNames[t]
}

// Position represents a field's world position.
type Position struct {
	X, Y float32
}

// Velocity represents a field's drift per frame.
type Velocity struct {
	X, Y float32
}

// Field holds the static parameters of an effector.
type Field struct {
	Type     FieldType
	Strength float32
	Radius   float32 // Effect cutoff
	Rotation float32 // ±1, vortex only
	Seed     float64 // Turbulence noise offset
	Angle    float32 // Axis for shear/lane
}

// Life holds the lifetime envelope of a field.
type Life struct {
	Remaining int32
	Max       int32
	Phase     float32 // Pulse phase
}

// Serial records spawn order so the oldest field can be evicted.
type Serial struct {
	N uint64
}
