package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/sonar"
)

// ControlsPanel renders the right-side sonar controls and overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the sonar widgets and returns an update when the operator
// changed something this frame.
func (c *ControlsPanel) Draw(cfg sonar.Configuration, overlays *OverlayRegistry) (sonar.Update, bool) {
	if !c.visible {
		return sonar.Update{}, false
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	overlayRows := int32(0)
	for _, cat := range overlays.Categories() {
		overlayRows += int32(len(overlays.ByCategory(cat))) + 1
	}
	panelHeight := 200 + overlayRows*lineHeight + padding*2
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	w := float32(c.width - padding*2)

	rl.DrawText("Controls", int32(x), int32(y), 16, rl.White)
	y += 24

	var u sonar.Update
	changed := false

	// Mode
	mode := gui.ToggleGroup(rl.Rectangle{X: x, Y: y, Width: (w - 4) / 3, Height: 22}, "OFF;PASSIVE;ACTIVE", int32(cfg.Mode))
	if sonar.Mode(mode) != cfg.Mode {
		m := sonar.Mode(mode)
		u.Mode = &m
		changed = true
	}
	y += 32

	// Zoom
	rl.DrawText("Zoom", int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 14
	zoom := gui.SliderBar(
		rl.Rectangle{X: x + 24, Y: y, Width: w - 80, Height: 16},
		fmt.Sprintf("%.0f", cfg.MinZoom), fmt.Sprintf("%.0f", cfg.MaxZoom),
		float32(cfg.Zoom), float32(cfg.MinZoom), float32(cfg.MaxZoom),
	)
	rl.DrawText(fmt.Sprintf("%.2f", cfg.Zoom), int32(x+w-40), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
	if zoom != float32(cfg.Zoom) {
		z := float64(zoom)
		u.Zoom = &z
		changed = true
	}
	y += 28

	// Directional
	directional := gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 16, Height: 16}, "Directional", cfg.Directional)
	if directional != cfg.Directional {
		u.Directional = &directional
		changed = true
	}
	y += 26

	// Bearing
	bearing := bearingDegrees(cfg.Direction)
	rl.DrawText("Bearing", int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 14
	newBearing := gui.SliderBar(
		rl.Rectangle{X: x + 24, Y: y, Width: w - 80, Height: 16},
		"0", "360", float32(bearing), 0, 360,
	)
	rl.DrawText(fmt.Sprintf("%03.0f", bearing), int32(x+w-40), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
	if float32(bearing) != newBearing {
		dir := sonar.AngleToDirection(float64(newBearing) * math.Pi / 180)
		u.Direction = &dir
		changed = true
	}
	y += 34

	// Overlays by category
	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), int32(x), int32(y), r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += float32(lineHeight)

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(int32(x), int32(y), desc, overlays.IsEnabled(desc.ID), int32(w))
			y += float32(lineHeight)
		}
	}

	return u, changed
}

// bearingDegrees converts a direction to a compass-style angle in [0, 360).
func bearingDegrees(dir r2.Vec) float64 {
	deg := math.Atan2(dir.Y, dir.X) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	// Status indicator
	statusColor := rl.Color{R: 40, G: 60, B: 50, A: 255}
	if enabled {
		statusColor = r.Theme.BarFillHigh
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	// Name
	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	// Key binding (right aligned)
	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 120, G: 150, B: 130, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "scope":
		return "Scope"
	case "panels":
		return "Panels"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
