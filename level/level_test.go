package level

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/config"
	"github.com/pthm-cable/sonar/sonar"
	"github.com/pthm-cable/sonar/systems"
)

var (
	_ sonar.GeometrySource = (*Level)(nil)
	_ sonar.TargetSource   = (*Entities)(nil)
)

func testLevelConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.Level.Width = 12000
	cfg.Level.Height = 8000
	return cfg
}

func TestNewDeterministic(t *testing.T) {
	cfg := testLevelConfig(t)
	a := New(cfg.Level, 11)
	b := New(cfg.Level, 11)

	if len(a.ruins) != len(b.ruins) || len(a.triggers) != len(b.triggers) || len(a.subs) != len(b.subs) {
		t.Fatal("same seed produced different feature counts")
	}
	for i := range a.ruins {
		if a.ruins[i] != b.ruins[i] {
			t.Fatalf("ruin wall %d differs", i)
		}
	}
	p := r2.Vec{X: 3000, Y: 2000}
	if a.SonarDisruptionStrength(p) != b.SonarDisruptionStrength(p) {
		t.Error("disruption differs between runs with the same seed")
	}
}

func TestOwnSubmarineAtSpawn(t *testing.T) {
	lvl := New(testLevelConfig(t).Level, 3)
	own := lvl.OwnSubmarine()
	if !own.Own || own.ID != OwnSubmarineID {
		t.Fatalf("OwnSubmarine = %+v", own)
	}
	if own.Position != lvl.Spawn() {
		t.Errorf("own submarine at %v, want spawn %v", own.Position, lvl.Spawn())
	}
	if lvl.Terrain().CheckCircleCollision(lvl.Spawn(), 1000) {
		t.Error("spawn area should be clear of rock")
	}

	loop := lvl.HullVertexLoop(own)
	if len(loop) < 3 {
		t.Fatalf("hull loop has %d vertices", len(loop))
	}
	for _, v := range loop {
		if r2.Norm(r2.Sub(v, own.Position)) > 700 {
			t.Errorf("hull vertex %v too far from the submarine", v)
		}
	}
}

func TestMoveSubmarine(t *testing.T) {
	lvl := New(testLevelConfig(t).Level, 3)
	target := r2.Add(lvl.Spawn(), r2.Vec{X: 200})
	if !lvl.MoveSubmarine(OwnSubmarineID, target) {
		t.Fatal("move within the cleared spawn area should succeed")
	}
	if lvl.OwnSubmarine().Position != target {
		t.Errorf("position = %v, want %v", lvl.OwnSubmarine().Position, target)
	}
	if lvl.MoveSubmarine(OwnSubmarineID, r2.Vec{X: -5000, Y: 0}) {
		t.Error("move outside the level should fail")
	}
	if lvl.MoveSubmarine(99, target) {
		t.Error("unknown submarine should not move")
	}
}

func TestTransducerMounts(t *testing.T) {
	lvl := New(testLevelConfig(t).Level, 3)
	tests := []struct {
		name  string
		id    int
		count int
	}{
		{"own submarine", OwnSubmarineID, 2},
		{"unknown", 99, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mounts := lvl.TransducerMounts(tt.id)
			if len(mounts) != tt.count {
				t.Fatalf("got %d mounts, want %d", len(mounts), tt.count)
			}
			if tt.count == 0 {
				return
			}
			radius := hullRadius(lvl.hulls[tt.id]) * 2
			var sum r2.Vec
			for _, m := range mounts {
				if r2.Norm(m) > radius {
					t.Errorf("mount %v outside hull radius %.0f", m, radius)
				}
				sum = r2.Add(sum, m)
			}
			if r2.Norm(sum) > 1e-9 {
				t.Errorf("mounts centered at %v, want the hull center", r2.Scale(0.5, sum))
			}
			if mounts[0].X <= 0 || mounts[1].X >= 0 {
				t.Errorf("mounts %v should sit at bow and stern", mounts)
			}
		})
	}
}

func TestSeaFloorFacesUp(t *testing.T) {
	lvl := New(testLevelConfig(t).Level, 5)
	if len(lvl.floor) == 0 {
		t.Fatal("no sea floor")
	}
	for i, s := range lvl.floor {
		if s.Normal.Y >= 0 {
			t.Errorf("floor segment %d normal %v should point up toward the water", i, s.Normal)
		}
		if math.Abs(r2.Norm(s.Normal)-1) > 1e-9 {
			t.Errorf("floor segment %d normal not unit", i)
		}
	}
}

func TestRuinWallsRadius(t *testing.T) {
	lvl := New(testLevelConfig(t).Level, 5)
	if len(lvl.ruins) == 0 {
		t.Skip("no ruins placed")
	}
	wall := lvl.ruins[0]
	near := lvl.RuinWalls(wall.Midpoint(), 10)
	found := false
	for _, s := range near {
		if s == wall {
			found = true
		}
	}
	if !found {
		t.Error("wall should be returned for a query at its midpoint")
	}
	if n := len(lvl.RuinWalls(r2.Vec{X: -1e6, Y: -1e6}, 10)); n != 0 {
		t.Errorf("far query returned %d walls", n)
	}
	for _, s := range lvl.ruins {
		if s.Normal != (r2.Vec{}) {
			t.Errorf("ruin wall normal %v, want double sided", s.Normal)
		}
	}
}

func TestDisruptionStrengthRange(t *testing.T) {
	cfg := testLevelConfig(t)
	cfg.Level.DisruptionCutoff = 0.5
	lvl := New(cfg.Level, 9)

	disrupted := 0
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		p := r2.Vec{X: rng.Float64() * 12000, Y: rng.Float64() * 8000}
		s := lvl.SonarDisruptionStrength(p)
		if s < 0 || s > 1 {
			t.Fatalf("strength %v out of range at %v", s, p)
		}
		if s > 0 {
			disrupted++
		}
	}
	if disrupted == 0 {
		t.Error("expected some disrupted water with cutoff 0.5")
	}
	if s := lvl.SonarDisruptionStrength(r2.Vec{X: -10, Y: 10}); s != 0 {
		t.Errorf("strength outside the level = %v", s)
	}
}

func TestFlowTriggers(t *testing.T) {
	lvl := New(testLevelConfig(t).Level, 13)
	if len(lvl.triggers) == 0 {
		t.Fatal("no flow triggers")
	}
	tr := lvl.triggers[0]
	found := false
	for _, g := range lvl.FlowTriggers(tr.Position, 0) {
		found = found || g.ID == tr.ID
	}
	if !found {
		t.Error("trigger not found at its own position")
	}
	if r2.Norm(lvl.WaterFlowVelocity(tr)) < 100 {
		t.Errorf("flow velocity %v too slow", lvl.WaterFlowVelocity(tr))
	}
}

func TestDistanceToSegment(t *testing.T) {
	a, b := r2.Vec{X: 0, Y: 0}, r2.Vec{X: 10, Y: 0}
	tests := []struct {
		p    r2.Vec
		want float64
	}{
		{r2.Vec{X: 5, Y: 3}, 3},
		{r2.Vec{X: -4, Y: 3}, 5},
		{r2.Vec{X: 13, Y: -4}, 5},
	}
	for _, tt := range tests {
		if got := distanceToSegment(tt.p, a, b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("distanceToSegment(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

// A sonar sitting in a sealed box sees every wall around it after one full ping.
func TestActivePingAgainstTerrain(t *testing.T) {
	rows := []string{
		"##########",
		"#........#",
		"#........#",
		"#........#",
		"##########",
	}
	g := make([][]systems.TerrainCell, len(rows))
	for y, row := range rows {
		g[y] = make([]systems.TerrainCell, len(row))
		for x, c := range row {
			if c == '#' {
				g[y][x] = systems.TerrainRock
			}
		}
	}
	lvl := NewFromTerrain(systems.NewTerrainFromGrid(g, 100), 1)

	cfg := testLevelConfig(t)
	params := sonar.ParamsFromConfig(cfg)
	params.DisplayRadius = 1000
	params.TerrainLineStep = 25
	params.StepJitter = 0
	params.DedupDistance = 5
	sonarCfg, err := sonar.ConfigurationFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	sonarCfg.Range = 1000
	sonarCfg.Mode = sonar.ModeActive

	c, err := sonar.NewController(params, sonarCfg, sonar.Options{
		Geometry: lvl,
		Rng:      rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatal(err)
	}
	c.SetPosition(r2.Vec{X: 500, Y: 250})

	accepted := 0
	for i := 0; i < 120; i++ {
		c.Update(params.PingDuration / 120)
		accepted += c.Stats().Sweep.Accepted
	}
	if accepted == 0 {
		t.Fatal("no wall samples accepted")
	}
	if c.Registry().Len() == 0 {
		t.Error("registry should hold wall blips")
	}
}
