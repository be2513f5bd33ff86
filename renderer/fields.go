package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/flowfield/components"
	"github.com/pthm-cable/flowfield/systems"
)

// fieldColors assigns each field type an evenly spaced hue.
var fieldColors = func() [components.NumFieldTypes]rl.Color {
	var out [components.NumFieldTypes]rl.Color
	for t := range out {
		hue := float64(t) * 360 / float64(components.NumFieldTypes)
		r, g, b := colorful.Hsv(hue, 0.7, 1).RGB255()
		out[t] = rl.Color{R: r, G: g, B: b, A: 255}
	}
	return out
}()

// FieldColor returns the overlay colour for a field type.
func FieldColor(t components.FieldType) rl.Color {
	if t >= components.NumFieldTypes {
		return rl.Gray
	}
	return fieldColors[t]
}

// DrawFields outlines every field with its radius, faded by its life envelope.
// Shear and lane fields also show their axis.
func DrawFields(fields []systems.ForceField) {
	for i := range fields {
		f := &fields[i]
		c := FieldColor(f.Type)
		env := systems.FieldEnvelope(f.Life, f.MaxLife)
		c.A = uint8(60 + 160*env)

		cx, cy := int32(f.X), int32(f.Y)
		rl.DrawCircleLines(cx, cy, f.Radius, c)
		rl.DrawCircle(cx, cy, 3, c)

		if f.Type == components.FieldShear || f.Type == components.FieldLane {
			dx := float32(math.Cos(float64(f.Angle))) * f.Radius * 0.5
			dy := float32(math.Sin(float64(f.Angle))) * f.Radius * 0.5
			rl.DrawLineV(rl.Vector2{X: f.X - dx, Y: f.Y - dy}, rl.Vector2{X: f.X + dx, Y: f.Y + dy}, c)
		}
	}
}
