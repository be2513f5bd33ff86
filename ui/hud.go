package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flowfield/telemetry"
)

// HUDData holds everything the status panel shows.
type HUDData struct {
	Frame     uint64
	FPS       int32
	Paused    bool
	Particles int
	Seed      int64

	NoiseMode   string
	Interaction string
	MouseMode   string
	Scheme      string

	Fields, FieldCapacity int

	BackgroundStrength  float32
	ForceFieldStrength  float32
	InteractionStrength float32
	Gravity             float32
	Swirl               float32
	MouseRadius         float32
	Brownian            bool
	Zones               bool
}

// HUD renders the status panel in the top-left corner.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer(), width: 260}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	pad := r.Theme.Padding
	x := pad + pad

	h.renderer.DrawPanel(pad, pad, h.width, 15*r.Theme.LineHeight+pad*2)
	y := pad + pad

	status := fmt.Sprintf("Frame %d  FPS %d", data.Frame, data.FPS)
	rl.DrawText(status, x, y, 16, rl.White)
	if data.Paused {
		rl.DrawText("PAUSED", x+h.width-90, y, 16, rl.Yellow)
	}
	y += r.Theme.LineHeight + 4

	y = r.DrawLabelValue(x, y, "Particles", fmt.Sprintf("%d", data.Particles))
	y = r.DrawLabelValue(x, y, "Noise", data.NoiseMode)
	y = r.DrawLabelValue(x, y, "Palette", data.Scheme)
	y = r.DrawLabelValue(x, y, "Fields", fmt.Sprintf("%d / %d", data.Fields, data.FieldCapacity))
	y = r.DrawLabelValue(x, y, "Mouse", fmt.Sprintf("%s  r=%.0f", data.MouseMode, data.MouseRadius))
	y = r.DrawLabelValue(x, y, "Interact", data.Interaction)

	inner := h.width - 2*pad
	y = r.DrawBar(x, y, "Background", data.BackgroundStrength, 0, 2, inner)
	y = r.DrawBar(x, y, "Field str", data.ForceFieldStrength, 0, 3, inner)
	y = r.DrawCenteredBar(x, y, "Interact str", data.InteractionStrength, 200, inner)
	y = r.DrawCenteredBar(x, y, "Gravity", data.Gravity, 1, inner)
	y = r.DrawCenteredBar(x, y, "Swirl", data.Swirl, 5, inner)

	flags := fmt.Sprintf("brownian %s  zones %s", onOff(data.Brownian), onOff(data.Zones))
	rl.DrawText(flags, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += r.Theme.LineHeight
	rl.DrawText(fmt.Sprintf("seed %d", data.Seed), x, y, r.Theme.FontSize, rl.Gray)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// PerfPanel renders per-phase frame timing.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats, phases []string) {
	r := p.renderer
	height := int32(len(phases)+3)*14 + 28
	r.DrawPanel(p.x, p.y, 230, height)

	x := p.x + r.Theme.Padding
	y := p.y + r.Theme.Padding

	rl.DrawText(fmt.Sprintf("Frame %s  (%.0f/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond),
		x, y, 14, rl.Yellow)
	y += 20
	rl.DrawText(fmt.Sprintf("%.2fM p/s  phys %.0fns  comp %.0fns", stats.ParticlesPerSec/1e6,
		stats.PhysicsNsPerParticle, stats.CompositeNsPerParticle), x, y, 12, rl.LightGray)
	y += 14

	for _, name := range phases {
		avg := stats.PhaseAvg[name]
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(fmt.Sprintf("%-13s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct), x, y, 12, color)
		y += 14
	}
}
