// Package inspector shows the components of a world entity picked on the map.
package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/level"
)

// Panel dimensions
const (
	PanelWidth   = 300
	PanelPadding = 10
	HeaderHeight = 30
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorSection     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
)

// Inspector manages entity selection and panel rendering.
type Inspector struct {
	selected     uint32
	hasSelected  bool
	screenWidth  int32
	screenHeight int32
	panelHeight  int32

	// Sonar view of the selection, refreshed by the caller each frame
	echoes  int
	audible bool
}

// NewInspector creates a new inspector instance.
func NewInspector(screenWidth, screenHeight int32) *Inspector {
	return &Inspector{screenWidth: screenWidth, screenHeight: screenHeight}
}

// Resize updates the screen size the panel anchors to.
func (ins *Inspector) Resize(screenWidth, screenHeight int32) {
	ins.screenWidth, ins.screenHeight = screenWidth, screenHeight
}

// panelOrigin anchors the panel to the bottom left corner.
func (ins *Inspector) panelOrigin() (int32, int32) {
	return 10, max(ins.screenHeight-ins.panelHeight-40, 10)
}

// HandleInput selects the entity under the cursor. mouse is in screen space,
// world is the same point in world units.
func (ins *Inspector) HandleInput(mouse rl.Vector2, world r2.Vec, ents *level.Entities, tolerance float64) {
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		ins.Deselect()
		return
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	if ins.hasSelected {
		px, py := ins.panelOrigin()
		closeX, closeY := px+PanelWidth-25, py+5
		mx, my := int32(mouse.X), int32(mouse.Y)
		if mx >= closeX && mx <= closeX+20 && my >= closeY && my <= closeY+20 {
			ins.Deselect()
			return
		}
		// Clicks on the panel itself keep the selection
		if mx >= px && mx <= px+PanelWidth && my >= py && my <= py+ins.panelHeight {
			return
		}
	}

	if id, ok := ents.Nearest(world, tolerance); ok {
		ins.selected = id
		ins.hasSelected = true
	}
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
	ins.echoes = 0
	ins.audible = false
}

// Selected returns the currently selected entity id.
func (ins *Inspector) Selected() (uint32, bool) {
	return ins.selected, ins.hasSelected
}

// SetSonarData caches how the sonar currently perceives the selection.
func (ins *Inspector) SetSonarData(echoes int, audible bool) {
	ins.echoes = echoes
	ins.audible = audible
}

type section struct {
	title  string
	fields []Field
}

// Draw renders the inspector panel if an entity is selected.
func (ins *Inspector) Draw(ents *level.Entities) {
	if !ins.hasSelected {
		return
	}
	view, ok := ents.Inspect(ins.selected)
	if !ok {
		ins.Deselect()
		return
	}

	sections := []section{
		{"POSITION", ExtractFields(view.Position)},
		{"VELOCITY", ExtractFields(view.Velocity)},
		{"ROTATION", ExtractFields(view.Rotation)},
		{"BODY", ExtractFields(view.Body)},
		{"SONAR FLAGS", ExtractFields(view.Flags)},
	}
	if view.Emitter != nil {
		sections = append(sections, section{"EMITTER", ExtractFields(view.Emitter)})
	}

	ins.panelHeight = panelHeight(sections)
	px, py := ins.panelOrigin()

	rl.DrawRectangle(px, py, PanelWidth, ins.panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(px), Y: float32(py), Width: PanelWidth, Height: float32(ins.panelHeight)},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(px, py, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText("INSPECTOR", px+PanelPadding, py+7, 16, ColorHeaderText)

	closeX, closeY := px+PanelWidth-25, py+5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	x := px + PanelPadding
	y := py + HeaderHeight + PanelPadding

	rl.DrawText(fmt.Sprintf("ID: %d  Kind: %s", view.Identity.ID, view.Identity.Kind), x, y, 14, ColorHeaderText)
	y += 22

	for _, s := range sections {
		ins.drawSectionHeader(x, y, s.title)
		y += 20
		for _, f := range s.fields {
			y += DrawField(x, y, f)
		}
		y += 4
	}

	ins.drawSectionHeader(x, y, "ON SONAR")
	y += 20
	y += DrawLabel(x, y, "Echoes", ins.echoes, nil)
	DrawBool(x, y, "Audible", ins.audible)
}

// drawSectionHeader renders a section title.
func (ins *Inspector) drawSectionHeader(x, y int32, title string) {
	rl.DrawRectangle(x-2, y-2, PanelWidth-2*PanelPadding+4, 18, ColorSection)
	rl.DrawText(title, x+2, y, 14, ColorSectionText)
}

// panelHeight sums the rows Draw will emit.
func panelHeight(sections []section) int32 {
	h := int32(HeaderHeight + PanelPadding + 22)
	for _, s := range sections {
		h += 20 + 4
		for _, f := range s.fields {
			h += FieldHeight(f)
		}
	}
	h += 20 + 20 + 18 // sonar section
	return h + PanelPadding
}

// DrawSelectionHighlight rings the selected entity and, for emitters, the
// range it can be heard from. toScreen maps world to screen, scale is pixels
// per world unit.
func (ins *Inspector) DrawSelectionHighlight(ents *level.Entities, toScreen func(r2.Vec) rl.Vector2, scale float32) {
	if !ins.hasSelected {
		return
	}
	view, ok := ents.Inspect(ins.selected)
	if !ok {
		return
	}

	center := toScreen(r2.Vec{X: view.Position.X, Y: view.Position.Y})
	radius := max(float32(view.Body.Radius)*scale*1.8, 6)
	rl.DrawCircleLinesV(center, radius, rl.Yellow)

	if view.Emitter != nil && view.Emitter.Enabled {
		drawArc(center.X, center.Y, float32(view.Emitter.SoundRange)*scale, 0, 2*math.Pi,
			rl.Color{R: 255, G: 220, B: 120, A: 70})
	}
	if view.Velocity.X != 0 || view.Velocity.Y != 0 {
		tip := toScreen(r2.Vec{X: view.Position.X + view.Velocity.X, Y: view.Position.Y + view.Velocity.Y})
		rl.DrawLineV(center, tip, rl.Yellow)
	}
}

// drawArc draws an arc between two angles.
func drawArc(cx, cy, radius, startAngle, endAngle float32, color rl.Color) {
	const segments = 48
	angleStep := (endAngle - startAngle) / float32(segments)

	for i := 0; i < segments; i++ {
		a1 := startAngle + float32(i)*angleStep
		a2 := a1 + angleStep

		x1 := cx + radius*float32(math.Cos(float64(a1)))
		y1 := cy + radius*float32(math.Sin(float64(a1)))
		x2 := cx + radius*float32(math.Cos(float64(a2)))
		y2 := cy + radius*float32(math.Sin(float64(a2)))

		rl.DrawLineV(rl.Vector2{X: x1, Y: y1}, rl.Vector2{X: x2, Y: y2}, color)
	}
}
