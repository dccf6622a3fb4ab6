package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/scope"
	"github.com/pthm-cable/sonar/sonar"
)

// ScopeOptions toggles the scope's decorations.
type ScopeOptions struct {
	Rings  bool
	Shell  bool
	Sector bool
}

// ScopeRenderer draws the circular sonar display.
type ScopeRenderer struct {
	rings int
}

// NewScopeRenderer creates a scope renderer with the given number of range rings.
func NewScopeRenderer(rings int) *ScopeRenderer {
	return &ScopeRenderer{rings: max(rings, 1)}
}

// Draw renders the scope for c through proj.
func (r *ScopeRenderer) Draw(c *sonar.Controller, proj scope.Projection, opts ScopeOptions) {
	center := vec(proj.ScreenCenter)
	radius := float32(proj.ScreenRadius)
	cfg := c.Configuration()

	rl.DrawCircleV(center, radius, color(scope.ColorBackground, 255))

	if opts.Rings {
		for _, rr := range proj.RingRadii(r.rings) {
			rl.DrawCircleLinesV(center, float32(rr), color(scope.ColorRing, 120))
		}
		rl.DrawLineV(rl.Vector2{X: center.X - radius, Y: center.Y}, rl.Vector2{X: center.X + radius, Y: center.Y}, color(scope.ColorRing, 60))
		rl.DrawLineV(rl.Vector2{X: center.X, Y: center.Y - radius}, rl.Vector2{X: center.X, Y: center.Y + radius}, color(scope.ColorRing, 60))
	}

	if opts.Sector && cfg.Directional {
		left, right := proj.SectorEdges(cfg.Direction, cfg.SectorHalfAngleCos)
		rl.DrawLineV(center, vec(left), color(scope.ColorShell, 160))
		rl.DrawLineV(center, vec(right), color(scope.ColorShell, 160))
	}

	for b := range c.Registry().All() {
		if !proj.InScope(b.Position) {
			continue
		}
		screen := proj.ToScreen(b.Position)
		if cfg.Directional && !proj.InSector(screen, cfg.Direction, cfg.SectorHalfAngleCos) {
			continue
		}
		drawBlip(b, vec(screen), float32(proj.ScreenRadius/proj.DisplayRadius))
	}

	if opts.Shell && cfg.Mode != sonar.ModeOff {
		shell := float32(proj.ShellRadius(c.Stats().Shell))
		if shell > 0 {
			rl.DrawRing(center, max(shell-2, 0), shell, 0, 360, 64, color(scope.ColorShell, 140))
		}
	}

	rl.DrawCircleV(center, 3, color(scope.ColorCenter, 255))
	rl.DrawCircleLinesV(center, radius, color(scope.ColorRing, 255))
}

// drawBlip draws one blip. Oriented blips are drawn as short dashes.
func drawBlip(b *sonar.Blip, pos rl.Vector2, pixels float32) {
	alpha := uint8(255 * scope.Intensity(b))
	col := color(scope.KindColor(b.Kind), alpha)
	size := max(float32(b.Scale)*pixels*2, 1.5)

	if b.Rotation != nil {
		rect := rl.Rectangle{X: pos.X, Y: pos.Y, Width: size * 3, Height: size}
		origin := rl.Vector2{X: size * 1.5, Y: size / 2}
		rl.DrawRectanglePro(rect, origin, float32(*b.Rotation)*rl.Rad2deg, col)
		return
	}
	rl.DrawCircleV(pos, size, col)
}

func vec(v r2.Vec) rl.Vector2 {
	return rl.Vector2{X: float32(v.X), Y: float32(v.Y)}
}

func color(c scope.Color, a uint8) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: a}
}
