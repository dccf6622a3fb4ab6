package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/level"
	"github.com/pthm-cable/sonar/scope"
	"github.com/pthm-cable/sonar/ui"
)

// Draw renders the game state.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	// With the map on, the true level fills the screen and the scope
	// moves to the corner for comparison.
	var center r2.Vec
	var radius float64
	if g.uiOverlays.IsEnabled(ui.OverlayMap) {
		var ents *level.Entities
		if g.uiOverlays.IsEnabled(ui.OverlayEntities) {
			ents = g.entities
		}
		g.mapRenderer.Draw(g.level, ents, g.sonar.Configuration().Range)
		if g.patrolOn {
			g.mapRenderer.DrawRoute(g.level.OwnSubmarine().Position, g.patrol.Route())
		}
		g.inspector.DrawSelectionHighlight(g.entities, g.worldToScreen, g.camera.Zoom)

		radius = float64(min(g.screenWidth, g.screenHeight)) * 0.22
		center = r2.Vec{X: float64(g.screenWidth) - radius - 20, Y: float64(g.screenHeight) - radius - 40}
	} else {
		radius = math.Max(float64(min(g.screenWidth, g.screenHeight))/2-50, 50)
		center = r2.Vec{X: float64(g.screenWidth) / 2, Y: float64(g.screenHeight) / 2}
	}

	proj := scope.FromController(g.sonar, center, radius)
	g.scopeRenderer.Draw(g.sonar, proj, g.scopeOptions())

	g.drawUI()
	g.drawActiveOverlays()
	if g.uiOverlays.IsEnabled(ui.OverlayMap) {
		g.refreshInspector()
		g.inspector.Draw(g.entities)
	}

	if u, changed := g.uiControls.Draw(g.sonar.Configuration(), g.uiOverlays); changed {
		g.sonar.Submit(u)
	}

	rl.EndDrawing()
}

// drawUI draws the HUD and control legend.
func (g *Game) drawUI() {
	cfg := g.sonar.Configuration()
	g.uiHUD.Draw(ui.HUDData{
		Title:   "Sonar",
		Mode:    cfg.Mode.String(),
		Session: g.session,
		Tick:    g.tick,
		Speed:   g.stepsPerUpdate,
		FPS:     rl.GetFPS(),
		Blips:   g.sonar.Registry().Len(),
		Peers:   g.peers(),
		Paused:  g.paused,
	})

	g.uiHUD.DrawControls(int32(g.screenWidth), int32(g.screenHeight),
		"WASD: Steer | P: Patrol | 1-3: Mode | Tab: Directional | [ ]: Bearing | +/-: Zoom | SPACE: Pause | < >: Speed | O: Controls | Click map: Inspect")
}
