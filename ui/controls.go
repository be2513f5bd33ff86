package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Binding is one line of the key legend.
type Binding struct {
	Key    string
	Action string
}

// ControlsPanel renders the key legend in the bottom-left corner.
type ControlsPanel struct {
	renderer *Renderer
	bindings []Binding
	width    int32
	visible  bool
}

// NewControlsPanel creates a hidden legend for bindings.
func NewControlsPanel(bindings []Binding) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		bindings: bindings,
		width:    240,
	}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Draw renders the legend, or a one-line hint while hidden.
func (c *ControlsPanel) Draw(screenHeight int32) {
	r := c.renderer
	if !c.visible {
		rl.DrawText("[H] controls", r.Theme.Padding, screenHeight-22, r.Theme.FontSize, rl.Gray)
		return
	}

	pad := r.Theme.Padding
	height := int32(len(c.bindings)+1)*r.Theme.LineHeight + pad*2
	x := pad
	y := screenHeight - height - pad
	r.DrawPanel(x, y, c.width, height)

	y = r.DrawSectionHeader(x+pad, y+pad, "Controls")
	for _, b := range c.bindings {
		keyW := rl.MeasureText(b.Key, r.Theme.FontSize)
		rl.DrawText(b.Key, x+pad+60-keyW, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
		rl.DrawText(b.Action, x+pad+70, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += r.Theme.LineHeight
	}
}
