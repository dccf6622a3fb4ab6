package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/sonar"
)

// bearingStep is how far [ and ] rotate the ping direction.
const bearingStep = math.Pi / 36

// handleInput processes keyboard input and returns the steering thrust.
func (g *Game) handleInput() r2.Vec {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyP) {
		g.patrolOn = !g.patrolOn
	}
	if rl.IsKeyPressed(rl.KeyO) {
		g.uiControls.Toggle()
	}

	g.handleSonarKeys()
	g.handleOverlayKeys()
	g.handleCameraInput()
	g.handleInspectorInput()

	var thrust r2.Vec
	if rl.IsKeyDown(rl.KeyW) {
		thrust.Y--
	}
	if rl.IsKeyDown(rl.KeyS) {
		thrust.Y++
	}
	if rl.IsKeyDown(rl.KeyA) {
		thrust.X--
	}
	if rl.IsKeyDown(rl.KeyD) {
		thrust.X++
	}
	if thrust != (r2.Vec{}) {
		g.patrolOn = false
	}
	return thrust
}

// handleSonarKeys submits keyboard changes to the sonar. They apply at the
// start of the next tick, like widget and peer updates.
func (g *Game) handleSonarKeys() {
	cfg := g.sonar.Configuration()
	var u sonar.Update
	changed := false

	for key, mode := range map[int32]sonar.Mode{
		rl.KeyOne:   sonar.ModeOff,
		rl.KeyTwo:   sonar.ModePassive,
		rl.KeyThree: sonar.ModeActive,
	} {
		if rl.IsKeyPressed(key) {
			m := mode
			u.Mode = &m
			changed = true
		}
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		directional := !cfg.Directional
		u.Directional = &directional
		changed = true
	}

	turn := 0.0
	if rl.IsKeyDown(rl.KeyLeftBracket) {
		turn -= bearingStep
	}
	if rl.IsKeyDown(rl.KeyRightBracket) {
		turn += bearingStep
	}
	if turn != 0 {
		dir := sonar.AngleToDirection(sonar.DirectionToAngle(cfg.Direction) + turn)
		u.Direction = &dir
		changed = true
	}

	zoom := cfg.Zoom
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		zoom *= 1.25
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		zoom *= 0.8
	}
	if zoom != cfg.Zoom {
		u.Zoom = &zoom
		changed = true
	}

	if changed {
		g.sonar.Submit(u)
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.uiControls.SetPosition(int32(w)-250, 10)
	g.inspector.Resize(int32(w), int32(h))
}

// handleCameraInput processes map zoom controls. The camera follows the
// submarine, so there is no panning.
func (g *Game) handleCameraInput() {
	wheelMove := rl.GetMouseWheelMove()
	if wheelMove != 0 {
		g.camera.ZoomBy(1 + wheelMove*0.1)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
