package game

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/config"
	"github.com/pthm-cable/sonar/level"
	"github.com/pthm-cable/sonar/sonar"
)

func init() {
	config.MustInit("")
}

func newHeadless(t *testing.T, opts Options) *Game {
	t.Helper()
	opts.Headless = true
	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func runTicks(g *Game, n int32) {
	for g.Tick() < n {
		g.UpdateHeadless()
	}
}

func TestHeadlessWritesTelemetry(t *testing.T) {
	dir := t.TempDir()
	g := newHeadless(t, Options{
		Seed:           7,
		OutputDir:      dir,
		StatsWindowSec: 1,
		Mode:           "active",
	})
	if g.Session() == "" {
		t.Fatal("session id should be set")
	}

	// Two one-second windows at 60 ticks per second
	runTicks(g, 120)
	g.Unload()

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("telemetry.csv has %d lines, want header + 2 windows:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "session,") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], g.Session()+",") {
		t.Errorf("row not tagged with session: %q", lines[1])
	}
	for _, name := range []string{"perf.csv", "bookmarks.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
}

func TestHeadlessModeOverride(t *testing.T) {
	tests := []struct {
		mode string
		want sonar.Mode
	}{
		{"", sonar.ModePassive},
		{"off", sonar.ModeOff},
		{"active", sonar.ModeActive},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			g := newHeadless(t, Options{Seed: 1, Mode: tt.mode})
			if got := g.Sonar().Configuration().Mode; got != tt.want {
				t.Errorf("mode = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := NewGameWithOptions(Options{Seed: 1, Headless: true, Mode: "sideways"}); err == nil {
		t.Error("unknown mode should be rejected")
	}
}

func TestPatrolMovesSubmarine(t *testing.T) {
	g := newHeadless(t, Options{Seed: 3, Patrol: true, Mode: "off"})
	start := g.level.OwnSubmarine().Position

	runTicks(g, 120)

	own := g.level.OwnSubmarine()
	if own.Position == start {
		t.Fatal("patrolling submarine did not move")
	}
	if d := r2.Norm(r2.Sub(g.sonar.Center(), own.Position)); d > 1e-6 {
		t.Errorf("sonar center %v does not follow submarine %v", g.sonar.Center(), own.Position)
	}
	pos, strength, ok := g.transducers.Aggregate()
	if !ok || strength != 1 {
		t.Fatalf("hull arrays lost: ok=%v strength=%v", ok, strength)
	}
	if d := r2.Norm(r2.Sub(pos, own.Position)); d > 1e-6 {
		t.Errorf("hull arrays centered at %v, submarine at %v", pos, own.Position)
	}
	if g.level.Terrain().IsSolid(own.Position) {
		t.Errorf("submarine ended inside rock at %v", own.Position)
	}
}

func TestHullArraysDriveSonar(t *testing.T) {
	tests := []struct {
		name   string
		remove int
		want   int
	}{
		{"both arrays", -1, 2},
		{"stern array lost", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newHeadless(t, Options{Seed: 3, Mode: "active"})
			if tt.remove >= 0 {
				g.transducers.Disconnect(tt.remove)
			}
			if got := g.statusData().Transducers; got != tt.want {
				t.Errorf("status transducers = %d, want %d", got, tt.want)
			}

			own := g.level.OwnSubmarine().Position
			want := own
			if tt.remove >= 0 {
				// Only the bow array is left to listen with
				want = r2.Add(own, g.mounts[0])
			}
			if d := r2.Norm(r2.Sub(g.sonar.Center(), want)); d > 1e-6 {
				t.Errorf("sonar center = %v, want %v", g.sonar.Center(), want)
			}
		})
	}
}

func TestPatrolPlansRouteThroughOpenWater(t *testing.T) {
	g := newHeadless(t, Options{Seed: 5})
	pos := g.level.OwnSubmarine().Position

	// A random goal can sit in a sealed cave; a few attempts find an open one
	for i := 0; i < maxPlanFailures && len(g.patrol.Route()) == 0; i++ {
		thrust := g.patrol.Thrust(pos)
		if n := r2.Norm(thrust); math.Abs(n-1) > 1e-9 {
			t.Fatalf("thrust %v is not a unit vector", thrust)
		}
	}
	route := g.patrol.Route()
	if len(route) == 0 {
		t.Fatal("no route planned from the cleared spawn area")
	}
	grid := g.patrol.planner.Grid()
	for i, wp := range route {
		if grid.IsBlockedWorld(wp) {
			t.Errorf("waypoint %d at %v is too close to rock", i, wp)
		}
	}

	g.patrol.Blocked()
	if g.patrol.Route() != nil {
		t.Error("a blocked move should drop the route")
	}
}

func TestOwnSubmarineStaysPutWithoutThrust(t *testing.T) {
	g := newHeadless(t, Options{Seed: 3})
	start := g.level.OwnSubmarine().Position
	runTicks(g, 30)
	if got := g.level.OwnSubmarine().Position; got != start {
		t.Errorf("submarine drifted from %v to %v", start, got)
	}
	if g.level.OwnSubmarine().ID != level.OwnSubmarineID {
		t.Error("own submarine id changed")
	}
}

func TestSyncBetweenGames(t *testing.T) {
	a := newHeadless(t, Options{Seed: 1, Listen: "127.0.0.1:0"})
	if a.SyncAddr() == "" {
		t.Fatal("listening game has no sync address")
	}
	b := newHeadless(t, Options{Seed: 2, Connect: "ws://" + a.SyncAddr() + SyncPath})

	deadline := time.Now().Add(5 * time.Second)
	for a.Hub().Peers() == 0 || b.Hub().Peers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("peers never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	// Both sides start passive; let the initial states cross first
	for i := 0; i < 5; i++ {
		a.UpdateHeadless()
		b.UpdateHeadless()
		time.Sleep(5 * time.Millisecond)
	}

	active := sonar.ModeActive
	directional := true
	a.Sonar().Submit(sonar.Update{Mode: &active, Directional: &directional})

	deadline = time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		a.UpdateHeadless()
		b.UpdateHeadless()
		cfg := b.Sonar().Configuration()
		if cfg.Mode == sonar.ModeActive && cfg.Directional {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("peer configuration not synced: %+v", b.Sonar().Configuration())
}

func TestEchoesNear(t *testing.T) {
	reg := sonar.NewBlipRegistry(1, 0)
	for _, p := range []r2.Vec{{X: 100, Y: 100}, {X: 130, Y: 100}, {X: 100, Y: 160}, {X: 400, Y: 400}} {
		reg.Add(sonar.NewBlip(p, 1, 1, sonar.BlipDefault))
	}

	tests := []struct {
		name  string
		pos   r2.Vec
		reach float64
		want  int
	}{
		{"tight", r2.Vec{X: 100, Y: 100}, 10, 1},
		{"covers neighbors", r2.Vec{X: 100, Y: 100}, 60, 3},
		{"empty water", r2.Vec{X: 250, Y: 250}, 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := echoesNear(reg, tt.pos, tt.reach); got != tt.want {
				t.Errorf("echoesNear = %d, want %d", got, tt.want)
			}
		})
	}
}
