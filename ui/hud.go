package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sonar/scope"
	"github.com/pthm-cable/sonar/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title   string
	Mode    string
	Session string
	Tick    int32
	Speed   int
	FPS     int32
	Blips   int
	Peers   int
	Paused  bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	t := h.renderer.Theme

	rl.DrawText(data.Title, 10, 10, 20, t.ValueColor)

	rl.DrawText(
		fmt.Sprintf("Mode: %s | Blips: %d | Peers: %d", data.Mode, data.Blips, data.Peers),
		10, 35, 16, t.LabelColor,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", data.Tick, data.Speed, data.FPS),
		10, 55, 16, t.LabelColor,
	)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 75, 16, rl.Yellow)
	}
	if data.Session != "" {
		rl.DrawText(data.Session, 10, 95, 10, rl.Gray)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  TPS: %.0f", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 16

	for _, phase := range telemetry.Phases() {
		avg := stats.PhaseAvg[phase]
		pct := stats.PhasePct[phase]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", phase, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}

// Legend renders the blip kind color key.
type Legend struct {
	renderer *Renderer
}

// NewLegend creates a legend renderer.
func NewLegend() *Legend {
	return &Legend{renderer: NewRenderer()}
}

// Height returns the legend's panel height.
func (l *Legend) Height() int32 {
	t := l.renderer.Theme
	return t.Padding*2 + t.LineHeight*int32(len(scope.Kinds)+1)
}

// Draw renders the legend panel at x, y.
func (l *Legend) Draw(x, y, width int32) {
	r := l.renderer
	t := r.Theme
	r.DrawPanel(x, y, width, l.Height())

	cy := r.DrawSectionHeader(x+t.Padding, y+t.Padding, "Blips")
	for _, k := range scope.Kinds {
		c := scope.KindColor(k)
		rl.DrawCircle(x+t.Padding+5, cy+t.FontSize/2, 4, rl.Color{R: c.R, G: c.G, B: c.B, A: 255})
		rl.DrawText(k.String(), x+t.Padding+16, cy, t.FontSize, t.ValueColor)
		cy += t.LineHeight
	}
}
