package scope

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/sonar"
)

// aspectRatio is the height of a terminal cell relative to its width.
const aspectRatio = 0.5

const ringCount = 4

var (
	styleCenter = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorCenter.Hex())).Bold(true)
	styleRing   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRing.Hex()))
	styleShell  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorShell.Hex()))
	styleDot    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRing.Dim(0.4).Hex()))
	styleHeader = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorShell.Hex())).Bold(true)
	styleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorRing.Hex()))
)

// cellBlip is the brightest blip landing in a text cell.
type cellBlip struct {
	kind      sonar.BlipKind
	intensity float64
}

// ASCII renders the controller's scope as a width x height text disc with a
// status header, framed by a border.
func ASCII(c *sonar.Controller, width, height int) string {
	if width < 10 || height < 5 {
		return ""
	}
	cfg := c.Configuration()
	stats := c.Stats()

	centerX, centerY := width/2, height/2
	radius := math.Min(float64(centerX-1), float64(centerY-1)/aspectRatio)
	p := FromController(c, r2.Vec{}, radius)

	blips := make(map[int]cellBlip)
	for b := range c.Registry().All() {
		if b.FadeTimer <= 0 || !p.InScope(b.Position) {
			continue
		}
		s := p.ToScreen(b.Position)
		col := centerX + int(math.Round(s.X))
		row := centerY + int(math.Round(s.Y*aspectRatio))
		if col < 0 || col >= width || row < 0 || row >= height {
			continue
		}
		key := row*width + col
		in := Intensity(b)
		if prev, ok := blips[key]; !ok || in > prev.intensity {
			blips[key] = cellBlip{kind: b.Kind, intensity: in}
		}
	}

	shell := -1.0
	if stats.Mode == sonar.ModeActive && stats.Powered {
		shell = p.ShellRadius(stats.Shell)
	}
	rings := p.RingRadii(ringCount)

	var sb strings.Builder
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if cb, ok := blips[row*width+col]; ok {
				color := KindColor(cb.kind).Dim(0.35 + 0.65*cb.intensity)
				sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color.Hex())).Render(string(KindGlyph(cb.kind))))
				continue
			}
			sb.WriteString(renderCell(col, row, centerX, centerY, radius, rings, shell, p, cfg))
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}

	header := styleHeader.Render(fmt.Sprintf("%-7s range %.0f  zoom %.2fx  blips %d  pings %d",
		strings.ToUpper(cfg.Mode.String()), cfg.Range, cfg.Zoom, stats.Blips, stats.Pings))
	return styleBorder.Render(lipgloss.JoinVertical(lipgloss.Left, header, sb.String()))
}

func renderCell(col, row, centerX, centerY int, radius float64, rings []float64, shell float64, p Projection, cfg sonar.Configuration) string {
	dx := float64(col - centerX)
	dy := float64(row-centerY) / aspectRatio
	dist := math.Hypot(dx, dy)

	if dist > radius+0.5 {
		return " "
	}
	if col == centerX && row == centerY {
		return styleCenter.Render("+")
	}
	if cfg.Directional && !p.InSector(r2.Vec{X: dx, Y: dy}, cfg.Direction, cfg.SectorHalfAngleCos) {
		return " "
	}
	if shell >= 0 && math.Abs(dist-shell) < 0.6 {
		return styleShell.Render(":")
	}
	for _, r := range rings {
		if math.Abs(dist-r) < 0.6 {
			return styleRing.Render(string(ringChar(math.Atan2(dx, -dy))))
		}
	}
	return styleDot.Render(".")
}

// ringChar picks a line character following the ring's tangent.
func ringChar(angle float64) rune {
	if angle < 0 {
		angle += 2 * math.Pi
	}
	switch int(math.Round(angle/(math.Pi/4))) % 8 {
	case 0, 4:
		return '-'
	case 1, 5:
		return '/'
	case 2, 6:
		return '|'
	default:
		return '\\'
	}
}

// Legend returns a one-line key of blip glyphs.
func Legend() string {
	parts := make([]string, 0, len(Kinds))
	for _, k := range Kinds {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(KindColor(k).Hex()))
		parts = append(parts, style.Render(fmt.Sprintf("%c %s", KindGlyph(k), k)))
	}
	return strings.Join(parts, "  ")
}
