package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/level"
	"github.com/pthm-cable/sonar/scope"
	"github.com/pthm-cable/sonar/telemetry"
)

// ASCII scope dimensions for headless snapshots.
const (
	asciiWidth  = 61
	asciiHeight = 31
)

// Update handles input and runs simulation steps (graphical mode).
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	thrust := g.handleInput()

	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step(thrust)
	}
	g.camera.Follow(float32(g.level.OwnSubmarine().Position.X), float32(g.level.OwnSubmarine().Position.Y))
}

// UpdateHeadless runs simulation steps without input or rendering.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step(r2.Vec{})

		if g.asciiEvery > 0 && g.tick%int32(g.asciiEvery) == 0 {
			g.logger.Info("scope", "tick", g.tick, "ascii", "\n"+scope.ASCII(g.sonar, asciiWidth, asciiHeight))
		}
	}
}

// step runs one simulation tick. thrust is the operator's steering input
// in [-1, 1] per axis.
func (g *Game) step(thrust r2.Vec) {
	cfg := g.config()
	dt := cfg.Physics.DT

	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseInput)
	if g.patrolOn {
		thrust = g.patrol.Thrust(g.level.OwnSubmarine().Position)
	}
	if !g.moveSubmarine(thrust, cfg.Level.SubmarineSpeed, dt) && g.patrolOn {
		g.patrol.Blocked()
	}

	g.perfCollector.StartPhase(telemetry.PhaseEntities)
	g.entities.Update(dt)

	g.perfCollector.StartPhase(telemetry.PhaseSonar)
	g.battery.Drain(g.sonar.Configuration().Mode, dt)
	g.sonar.Update(dt)

	g.perfCollector.StartPhase(telemetry.PhaseNet)
	g.publishState()

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.collector.Record(g.sonar.Stats())
	g.tick++
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// moveSubmarine advances the own submarine and keeps the sonar on it.
// Blocked moves leave the submarine in place.
func (g *Game) moveSubmarine(thrust r2.Vec, speed, dt float64) bool {
	if thrust == (r2.Vec{}) {
		return false
	}
	if n := r2.Norm(thrust); n > 1 {
		thrust = r2.Scale(1/n, thrust)
	}
	own := g.level.OwnSubmarine()
	next := r2.Add(own.Position, r2.Scale(speed*dt, thrust))
	if !g.level.MoveSubmarine(level.OwnSubmarineID, next) {
		return false
	}
	g.placeSonar(next)
	return true
}
