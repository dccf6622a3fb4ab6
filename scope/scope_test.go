package scope

import (
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/config"
	"github.com/pthm-cable/sonar/sonar"
)

func testProjection() Projection {
	return Projection{
		Center:        r2.Vec{X: 1000, Y: 1000},
		Scale:         0.1, // range 1000, display radius 100
		Zoom:          1,
		DisplayRadius: 100,
		ScreenCenter:  r2.Vec{X: 400, Y: 300},
		ScreenRadius:  200,
	}
}

func near(a, b r2.Vec) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestProjectionToScreen(t *testing.T) {
	tests := []struct {
		name   string
		zoom   float64
		world  r2.Vec
		screen r2.Vec
		in     bool
	}{
		{"center", 1, r2.Vec{X: 1000, Y: 1000}, r2.Vec{X: 400, Y: 300}, true},
		{"edge east", 1, r2.Vec{X: 2000, Y: 1000}, r2.Vec{X: 600, Y: 300}, true},
		{"half south", 1, r2.Vec{X: 1000, Y: 1500}, r2.Vec{X: 400, Y: 400}, true},
		{"beyond range", 1, r2.Vec{X: 2100, Y: 1000}, r2.Vec{X: 620, Y: 300}, false},
		{"zoomed half", 2, r2.Vec{X: 1500, Y: 1000}, r2.Vec{X: 600, Y: 300}, true},
		{"zoomed out of scope", 2, r2.Vec{X: 2000, Y: 1000}, r2.Vec{X: 800, Y: 300}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProjection()
			p.Zoom = tt.zoom
			if got := p.ToScreen(tt.world); !near(got, tt.screen) {
				t.Errorf("ToScreen(%v) = %v, want %v", tt.world, got, tt.screen)
			}
			if got := p.InScope(tt.world); got != tt.in {
				t.Errorf("InScope(%v) = %v, want %v", tt.world, got, tt.in)
			}
		})
	}
}

func TestProjectionShellAndRings(t *testing.T) {
	p := testProjection()
	if got := p.ShellRadius(sonar.SweepState{Current: 50}); got != 100 {
		t.Errorf("shell radius = %v, want 100", got)
	}
	p.Zoom = 2
	if got := p.ShellRadius(sonar.SweepState{Current: 25}); got != 100 {
		t.Errorf("zoomed shell radius = %v, want 100", got)
	}
	if got := p.ShellRadius(sonar.SweepState{Current: 500}); got != p.ScreenRadius {
		t.Errorf("shell radius should clamp to the scope, got %v", got)
	}

	rings := p.RingRadii(4)
	want := []float64{50, 100, 150, 200}
	for i := range want {
		if rings[i] != want[i] {
			t.Errorf("rings = %v, want %v", rings, want)
			break
		}
	}
}

func TestProjectionSector(t *testing.T) {
	p := testProjection()
	halfCos := math.Cos(15 * math.Pi / 180)
	dir := r2.Vec{X: 1, Y: 0}

	left, right := p.SectorEdges(dir, halfCos)
	if math.Abs(left.X-right.X) > 1e-9 || math.Abs((left.Y-300)+(right.Y-300)) > 1e-9 {
		t.Errorf("edges not symmetric about the bearing: %v %v", left, right)
	}
	if math.Abs(r2.Norm(r2.Sub(left, p.ScreenCenter))-p.ScreenRadius) > 1e-9 {
		t.Errorf("edge not on the scope rim: %v", left)
	}

	if !p.InSector(r2.Vec{X: 500, Y: 310}, dir, halfCos) {
		t.Error("point near the bearing should be inside")
	}
	if p.InSector(r2.Vec{X: 400, Y: 400}, dir, halfCos) {
		t.Error("point at 90 degrees should be outside")
	}
	if !p.InSector(p.ScreenCenter, dir, halfCos) {
		t.Error("center is inside every sector")
	}
}

func TestPalette(t *testing.T) {
	if got := (Color{R: 255, G: 8, B: 0}).Hex(); got != "#FF0800" {
		t.Errorf("Hex = %s", got)
	}
	if got := (Color{R: 200, G: 100, B: 50}).Dim(0.5); got != (Color{R: 100, G: 50, B: 25}) {
		t.Errorf("Dim = %+v", got)
	}
	seen := make(map[rune]bool)
	for _, k := range Kinds {
		g := KindGlyph(k)
		if seen[g] {
			t.Errorf("glyph %c reused", g)
		}
		seen[g] = true
	}
	if Intensity(&sonar.Blip{FadeTimer: 1.4}) != 1 || Intensity(&sonar.Blip{FadeTimer: -1}) != 0 {
		t.Error("intensity should clamp to [0, 1]")
	}
}

func TestASCIIShowsContact(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Sonar.StartMode = "active"
	scope, err := sonar.ConfigurationFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}

	targets := &sonar.TargetList{}
	targets.AddContact(sonar.Contact{ID: 1, Position: r2.Vec{X: 4000, Y: 0}, Mass: 100})
	c, err := sonar.NewController(sonar.ParamsFromConfig(cfg), scope, sonar.Options{
		Targets: targets,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 60; i++ {
		c.Update(cfg.Physics.DT)
	}
	if c.Registry().Len() == 0 {
		t.Fatal("contact not detected")
	}

	out := ASCII(c, 61, 31)
	for _, want := range []string{"ACTIVE", "+", "@"} {
		if !strings.Contains(out, want) {
			t.Errorf("ASCII output missing %q:\n%s", want, out)
		}
	}

	if ASCII(c, 5, 5) != "" {
		t.Error("tiny viewport should render nothing")
	}
}

func TestLegendListsKinds(t *testing.T) {
	l := Legend()
	for _, k := range Kinds {
		if !strings.Contains(l, k.String()) {
			t.Errorf("legend missing %s", k)
		}
	}
}
