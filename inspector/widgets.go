package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Widget colors
var (
	ColorBarBg       = rl.Color{R: 40, G: 40, B: 40, A: 255}
	ColorBarFill     = rl.Color{R: 100, G: 180, B: 100, A: 255}
	ColorBarLow      = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorText        = rl.Color{R: 220, G: 220, B: 220, A: 255}
	ColorTextDim     = rl.Color{R: 150, G: 150, B: 150, A: 255}
	ColorAngleBg     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorAngleNeedle = rl.Color{R: 255, G: 200, B: 100, A: 255}
	ColorBoolOn      = rl.Color{R: 100, G: 200, B: 100, A: 255}
	ColorBoolOff     = rl.Color{R: 80, G: 80, B: 80, A: 255}
)

// Row heights returned by the widgets.
const (
	labelHeight = 20
	barHeight   = 18
	angleSize   = 40
	angleHeight = angleSize + 4
	boolHeight  = 18
)

// DrawLabel renders a text value.
func DrawLabel(x, y int32, name string, value any, options map[string]string) int32 {
	text := FormatValue(value, options["fmt"])
	rl.DrawText(fmt.Sprintf("%s: %s", name, text), x, y, 16, ColorText)
	return labelHeight
}

// DrawBar renders a horizontal progress bar.
func DrawBar(x, y int32, name string, value float32, options map[string]string) int32 {
	ratio := min(max(value/GetMax(options), 0), 1)

	barWidth := int32(120)

	rl.DrawText(name, x, y, 14, ColorTextDim)

	barX := x + 80
	rl.DrawRectangle(barX, y, barWidth, 14, ColorBarBg)

	fillColor := ColorBarFill
	if ratio < 0.3 {
		fillColor = ColorBarLow
	}
	rl.DrawRectangle(barX, y, int32(float32(barWidth)*ratio), 14, fillColor)

	rl.DrawText(FormatValue(value, options["fmt"]), barX+barWidth+5, y, 14, ColorTextDim)
	return barHeight
}

// DrawAngle renders a compass-style heading indicator.
func DrawAngle(x, y int32, name string, radians float32) int32 {
	centerX := x + 60 + angleSize/2
	centerY := y + angleSize/2

	rl.DrawText(name, x, y+angleSize/2-7, 14, ColorTextDim)

	rl.DrawCircle(centerX, centerY, angleSize/2, ColorAngleBg)
	rl.DrawCircleLines(centerX, centerY, angleSize/2, ColorTextDim)

	needleLen := float32(angleSize/2 - 4)
	endX := float32(centerX) + needleLen*float32(math.Cos(float64(radians)))
	endY := float32(centerY) + needleLen*float32(math.Sin(float64(radians)))
	rl.DrawLineEx(
		rl.Vector2{X: float32(centerX), Y: float32(centerY)},
		rl.Vector2{X: endX, Y: endY},
		2,
		ColorAngleNeedle,
	)

	rl.DrawText(fmt.Sprintf("%.0f deg", Degrees(radians)), x+60+angleSize+5, y+angleSize/2-7, 14, ColorTextDim)
	return angleHeight
}

// Degrees converts a heading to compass degrees in [0, 360).
func Degrees(radians float32) float32 {
	d := float32(math.Mod(float64(radians)*180/math.Pi, 360))
	if d < 0 {
		d += 360
	}
	return d
}

// DrawBool renders an on/off indicator.
func DrawBool(x, y int32, name string, value bool) int32 {
	rl.DrawText(name, x, y, 14, ColorTextDim)

	indicatorX := x + 80
	indicatorSize := int32(14)

	color := ColorBoolOff
	text := "OFF"
	if value {
		color = ColorBoolOn
		text = "ON"
	}

	rl.DrawRectangle(indicatorX, y, indicatorSize, indicatorSize, color)
	rl.DrawText(text, indicatorX+indicatorSize+5, y, 14, color)
	return boolHeight
}

// resolveWidget picks the widget a field actually renders with, falling back
// to a label when the value does not suit the requested widget.
func resolveWidget(field Field) Widget {
	switch field.Widget {
	case WidgetBar, WidgetAngle:
		if _, ok := GetFloatValue(field.Value); ok {
			return field.Widget
		}
	case WidgetBool:
		if _, ok := field.Value.(bool); ok {
			return WidgetBool
		}
	}
	return WidgetLabel
}

// FieldHeight returns the height DrawField uses for field.
func FieldHeight(field Field) int32 {
	switch resolveWidget(field) {
	case WidgetBar:
		return barHeight
	case WidgetAngle:
		return angleHeight
	case WidgetBool:
		return boolHeight
	default:
		return labelHeight
	}
}

// DrawField renders a field using its widget type.
func DrawField(x, y int32, field Field) int32 {
	switch resolveWidget(field) {
	case WidgetBar:
		v, _ := GetFloatValue(field.Value)
		return DrawBar(x, y, field.Name, v, field.Options)
	case WidgetAngle:
		v, _ := GetFloatValue(field.Value)
		return DrawAngle(x, y, field.Name, v)
	case WidgetBool:
		return DrawBool(x, y, field.Name, field.Value.(bool))
	default:
		return DrawLabel(x, y, field.Name, field.Value, field.Options)
	}
}
