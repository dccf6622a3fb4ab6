package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sonar/renderer"
	"github.com/pthm-cable/sonar/ui"
)

// handleOverlayKeys checks for overlay toggle key presses.
func (g *Game) handleOverlayKeys() {
	for _, desc := range g.uiOverlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			newState := g.uiOverlays.Toggle(desc.ID)
			g.logger.Debug("overlay toggled", "overlay", string(desc.ID), "enabled", newState)
		}
	}
}

// scopeOptions maps the scope overlays onto renderer options.
func (g *Game) scopeOptions() renderer.ScopeOptions {
	return renderer.ScopeOptions{
		Rings:  g.uiOverlays.IsEnabled(ui.OverlayRings),
		Shell:  g.uiOverlays.IsEnabled(ui.OverlayShell),
		Sector: g.uiOverlays.IsEnabled(ui.OverlaySector),
	}
}

// drawActiveOverlays renders the enabled panel overlays. Map, entities and
// scope decorations are handled in Draw.
func (g *Game) drawActiveOverlays() {
	y := int32(120)
	for _, id := range g.uiOverlays.EnabledOverlays() {
		switch id {
		case ui.OverlayStatus:
			y = g.uiRenderer.DrawStatus(10, y, 260, g.statusData()) + 10
		case ui.OverlayPerf:
			g.uiPerfPanel.SetPosition(10, y)
			g.uiPerfPanel.Draw(g.perfCollector.Stats())
			y += 120
		case ui.OverlayLegend:
			g.uiLegend.Draw(10, int32(g.screenHeight)-g.uiLegend.Height()-40, 140)
		}
	}
}

// statusData gathers the status panel contents.
func (g *Game) statusData() *ui.StatusData {
	return &ui.StatusData{
		Config:      g.sonar.Configuration(),
		Stats:       g.sonar.Stats(),
		MaxBlips:    g.config().Sonar.MaxBlips,
		PowerLevel:  g.battery.Level(),
		Transducers: g.transducers.Len(),
		Peers:       g.peers(),
	}
}
