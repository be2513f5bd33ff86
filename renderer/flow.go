package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// FlowSampler returns the flow vector at a point.
type FlowSampler func(x, y float32) (fx, fy float32)

// FlowOverlay draws the background flow as a grid of short strokes.
type FlowOverlay struct {
	width, height int32
	spacing       int32
	color         rl.Color
}

// NewFlowOverlay creates an overlay sampling every spacing pixels.
func NewFlowOverlay(width, height, spacing int32) *FlowOverlay {
	if spacing < 4 {
		spacing = 4
	}
	return &FlowOverlay{
		width:   width,
		height:  height,
		spacing: spacing,
		color:   rl.Color{R: 90, G: 160, B: 200, A: 140},
	}
}

// Resize updates the covered area.
func (o *FlowOverlay) Resize(width, height int32) {
	o.width = width
	o.height = height
}

// Draw strokes the flow direction at each grid point with additive blending.
// Stroke length scales with the local magnitude relative to maxMag.
func (o *FlowOverlay) Draw(sample FlowSampler, maxMag float32) {
	if maxMag <= 0 {
		maxMag = 1
	}
	half := float32(o.spacing) * 0.45

	rl.BeginBlendMode(rl.BlendAdditive)
	for y := o.spacing / 2; y < o.height; y += o.spacing {
		for x := o.spacing / 2; x < o.width; x += o.spacing {
			fx, fy := sample(float32(x), float32(y))
			mag := float32(math.Hypot(float64(fx), float64(fy)))
			if mag < 1e-6 {
				continue
			}
			scale := min(mag/maxMag, 1) * half / mag

			start := rl.Vector2{X: float32(x) - fx*scale, Y: float32(y) - fy*scale}
			end := rl.Vector2{X: float32(x) + fx*scale, Y: float32(y) + fy*scale}
			rl.DrawLineEx(start, end, 1, o.color)
			rl.DrawCircleV(end, 1.5, o.color)
		}
	}
	rl.EndBlendMode()
}
