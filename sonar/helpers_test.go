package sonar

import (
	"io"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// stubGeometry is a minimal GeometrySource for tests.
type stubGeometry struct {
	cells      []Cell
	subs       []Submarine
	hulls      map[int][]r2.Vec
	ruins      []Segment
	floor      []Segment
	triggers   []FlowTrigger
	flow       r2.Vec
	cellSize   float64
	disruption func(p r2.Vec) float64
}

func (g *stubGeometry) Cells(point r2.Vec, radiusInCells int) []Cell { return g.cells }
func (g *stubGeometry) Submarines() []Submarine                      { return g.subs }
func (g *stubGeometry) HullVertexLoop(sub Submarine) []r2.Vec        { return g.hulls[sub.ID] }
func (g *stubGeometry) RuinWalls(point r2.Vec, radius float64) []Segment {
	return g.ruins
}
func (g *stubGeometry) SeaFloor(point r2.Vec, radius float64) []Segment { return g.floor }
func (g *stubGeometry) FlowTriggers(point r2.Vec, radius float64) []FlowTrigger {
	return g.triggers
}
func (g *stubGeometry) WaterFlowVelocity(trigger FlowTrigger) r2.Vec { return g.flow }
func (g *stubGeometry) SonarDisruptionStrength(point r2.Vec) float64 {
	if g.disruption == nil {
		return 0
	}
	return g.disruption(point)
}
func (g *stubGeometry) GridCellSize() float64 {
	if g.cellSize == 0 {
		return 100
	}
	return g.cellSize
}

// testParams returns deterministic parameters with a 1:1 world to display scale
// when paired with testConfig.
func testParams() Params {
	return Params{
		DisplayRadius:      1000,
		PingDuration:       2,
		FadeRate:           0.5,
		TerrainLineStep:    50,
		TerrainZStep:       3,
		HullLineStep:       50,
		HullZStep:          3,
		RuinLineStep:       50,
		RuinZStep:          3,
		FloorLineStep:      50,
		FloorZStep:         3,
		ZStepGrowth:        0.5,
		DedupDistance:      20,
		StepJitter:         0,
		Scatter:            0,
		CellRadius:         7,
		ContactMaxBlips:    50,
		NoiseBlipsPerUnit:  0.02,
		PassiveFrequency:   1,
		PassiveStrength:    0.5,
		FlowChancePerSpeed: 0.001,
		FlowVelocityScale:  0.02,
		FlowMaxChance:      0.5,
		MinVoltage:         0.5,
	}
}

func testConfig() Configuration {
	return Configuration{
		Range:              1000,
		Zoom:               1,
		MinZoom:            1,
		MaxZoom:            4,
		Mode:               ModeActive,
		Direction:          r2.Vec{X: 1, Y: 0},
		SectorHalfAngleCos: math.Cos(30 * math.Pi / 180),
	}
}

func testRng() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T {
	return &v
}
