package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flowfield/components"
	"github.com/pthm-cable/flowfield/trail"
	"github.com/pthm-cable/flowfield/ui"
)

// Input tuning.
const (
	strengthStep    = 0.1
	gravityStep     = 0.02
	swirlStep       = 0.1
	wheelRadiusStep = 10
)

// fieldKeys maps the number row to field types.
var fieldKeys = [components.NumFieldTypes]int32{
	rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour,
	rl.KeyFive, rl.KeySix, rl.KeySeven, rl.KeyEight,
}

var keyLegend = []ui.Binding{
	{"Space", "pause"},
	{"N", "noise mode"},
	{"C", "colour scheme"},
	{"F", "show fields"},
	{"X", "clear fields"},
	{"1-8", "spawn field by type"},
	{"B", "brownian"},
	{"Z", "zones"},
	{"Up/Down", "background strength"},
	{"Left/Right", "field strength"},
	{"[ / ]", "gravity"},
	{"- / =", "swirl"},
	{"I", "particle interaction"},
	{"R", "reset"},
	{"LMB", "place field"},
	{"RMB", "mouse mode"},
	{"Wheel", "mouse radius"},
	{"V", "flow vectors"},
	{"P", "perf panel"},
	{"S", "save snapshot"},
	{"F11", "fullscreen"},
	{"H", "hide controls"},
}

// handleInput translates raylib events into simulation commands.
func (g *Game) handleInput() {
	g.handleResize()
	g.handlePointer()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	s := g.sim
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		s.TogglePause()
	case rl.IsKeyPressed(rl.KeyN):
		s.CycleNoiseMode()
	case rl.IsKeyPressed(rl.KeyC):
		s.CycleColorScheme(trail.NumSchemes())
	case rl.IsKeyPressed(rl.KeyF):
		s.ToggleFieldVisibility()
	case rl.IsKeyPressed(rl.KeyX):
		n := s.Fields().Len()
		s.ClearFields()
		g.collector.RecordFieldsCleared(n)
	case rl.IsKeyPressed(rl.KeyB):
		s.ToggleBrownian()
	case rl.IsKeyPressed(rl.KeyZ):
		s.ToggleZones()
	case rl.IsKeyPressed(rl.KeyI):
		s.CycleInteraction()
	case rl.IsKeyPressed(rl.KeyR):
		g.reset()
	case rl.IsKeyPressed(rl.KeyH):
		g.controls.Toggle()
	case rl.IsKeyPressed(rl.KeyP):
		g.showPerf = !g.showPerf
	case rl.IsKeyPressed(rl.KeyV):
		g.showFlow = !g.showFlow
	case rl.IsKeyPressed(rl.KeyS):
		g.saveSnapshot(nil)
	}

	for t, key := range fieldKeys {
		if rl.IsKeyPressed(key) {
			_, ok := s.SpawnField(components.FieldType(t))
			g.collector.RecordFieldSpawn(ok)
		}
	}

	if rl.IsKeyPressed(rl.KeyUp) {
		s.AdjustBackgroundStrength(strengthStep)
	}
	if rl.IsKeyPressed(rl.KeyDown) {
		s.AdjustBackgroundStrength(-strengthStep)
	}
	if rl.IsKeyPressed(rl.KeyRight) {
		s.AdjustForceFieldStrength(strengthStep)
	}
	if rl.IsKeyPressed(rl.KeyLeft) {
		s.AdjustForceFieldStrength(-strengthStep)
	}
	if rl.IsKeyPressed(rl.KeyRightBracket) {
		s.AdjustGravity(gravityStep)
	}
	if rl.IsKeyPressed(rl.KeyLeftBracket) {
		s.AdjustGravity(-gravityStep)
	}
	if rl.IsKeyPressed(rl.KeyEqual) {
		s.AdjustSwirl(swirlStep)
	}
	if rl.IsKeyPressed(rl.KeyMinus) {
		s.AdjustSwirl(-swirlStep)
	}
}

// handlePointer feeds mouse position, clicks and wheel to the simulation.
func (g *Game) handlePointer() {
	s := g.sim
	if !rl.IsCursorOnScreen() {
		s.MouseLeave()
		return
	}

	pos := rl.GetMousePosition()
	s.MouseMove(pos.X, pos.Y)

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		if _, ok := s.SpawnFieldAt(pos.X, pos.Y); ok {
			g.collector.RecordFieldPlaced()
		}
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		s.CycleMouseMode()
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		s.AdjustMouseRadius(float64(wheel) * wheelRadiusStep)
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	if err := g.resize(rl.GetScreenWidth(), rl.GetScreenHeight()); err != nil {
		g.logResizeError(err)
	}
}
