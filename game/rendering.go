package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flowfield/renderer"
	"github.com/pthm-cable/flowfield/telemetry"
	"github.com/pthm-cable/flowfield/trail"
	"github.com/pthm-cable/flowfield/ui"
)

// overlayPhases lists the phases shown in the perf panel.
var overlayPhases = []string{
	telemetry.PhaseFields,
	telemetry.PhaseSpatialGrid,
	telemetry.PhasePhysics,
	telemetry.PhaseComposite,
	telemetry.PhasePresent,
	telemetry.PhaseTelemetry,
}

// Draw presents the trail buffer and overlays, then closes the frame.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()
	g.perfCollector.StartPhase(telemetry.PhasePresent)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.presenter.Draw(g.trail)

	p := g.sim.Params()
	if g.showFlow {
		g.flow.Draw(g.sim.FlowAt, p.Speed*p.BackgroundStrength)
	}
	if p.ShowFields {
		renderer.DrawFields(g.sim.Fields().Fields())
	}
	if m := g.sim.Mouse(); m.Active {
		rl.DrawCircleLines(int32(m.X), int32(m.Y), p.MouseRadius, rl.Fade(rl.White, 0.25))
	}

	g.drawHUD()
	if g.showPerf {
		g.perfPanel.Draw(g.perfCollector.Stats(), overlayPhases)
	}
	g.controls.Draw(int32(g.screenHeight))

	rl.EndDrawing()

	g.finishFrame()
}

func (g *Game) drawHUD() {
	s := g.sim
	p := s.Params()
	fields := s.Fields()

	g.hud.Draw(ui.HUDData{
		Frame:     s.Frame(),
		FPS:       rl.GetFPS(),
		Paused:    s.Paused(),
		Particles: s.Store().N,
		Seed:      s.Seed(),

		NoiseMode:   p.NoiseMode.String(),
		Interaction: p.Interaction.String(),
		MouseMode:   p.MouseMode.String(),
		Scheme:      trail.SchemeAt(p.ColorScheme).Name,

		Fields:        fields.Len(),
		FieldCapacity: fields.Capacity(),

		BackgroundStrength:  p.BackgroundStrength,
		ForceFieldStrength:  p.ForceFieldStrength,
		InteractionStrength: p.InteractionStrength,
		Gravity:             p.Gravity,
		Swirl:               p.Swirl,
		MouseRadius:         p.MouseRadius,
		Brownian:            p.BrownianEnabled,
		Zones:               p.Zones,
	})
}

func (g *Game) logResizeError(err error) {
	slog.Error("resize failed", "error", err, "width", g.screenWidth, "height", g.screenHeight)
}
