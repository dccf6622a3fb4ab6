package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/sonar"
	"github.com/pthm-cable/sonar/ui"
)

// pickPixels is how far from an entity, in screen pixels, a click still selects it.
const pickPixels = 8

// handleInspectorInput selects entities by clicking the map.
func (g *Game) handleInspectorInput() {
	if !g.uiOverlays.IsEnabled(ui.OverlayMap) {
		g.inspector.Deselect()
		return
	}
	mouse := rl.GetMousePosition()
	wx, wy := g.camera.ScreenToWorld(mouse.X, mouse.Y)
	g.inspector.HandleInput(mouse, r2.Vec{X: float64(wx), Y: float64(wy)}, g.entities, pickPixels/float64(g.camera.Zoom))
}

// refreshInspector updates what the sonar currently shows of the selection.
func (g *Game) refreshInspector() {
	id, ok := g.inspector.Selected()
	if !ok {
		return
	}
	view, ok := g.entities.Inspect(id)
	if !ok {
		return
	}
	pos := r2.Vec{X: view.Position.X, Y: view.Position.Y}
	echoes := echoesNear(g.sonar.Registry(), pos, view.Body.Radius+g.level.GridCellSize())
	audible := view.Emitter != nil && view.Emitter.Enabled &&
		r2.Norm(r2.Sub(pos, g.sonar.Center())) <= view.Emitter.SoundRange
	g.inspector.SetSonarData(echoes, audible)
}

func (g *Game) worldToScreen(p r2.Vec) rl.Vector2 {
	x, y := g.camera.WorldToScreen(float32(p.X), float32(p.Y))
	return rl.Vector2{X: x, Y: y}
}

// echoesNear counts live blips within reach of pos.
func echoesNear(reg *sonar.BlipRegistry, pos r2.Vec, reach float64) int {
	n := 0
	for b := range reg.All() {
		if r2.Norm(r2.Sub(b.Position, pos)) <= reach {
			n++
		}
	}
	return n
}
