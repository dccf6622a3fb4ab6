package scope

import (
	"fmt"

	"github.com/pthm-cable/sonar/sonar"
)

// Color is an opaque RGB color.
type Color struct {
	R, G, B uint8
}

// Hex returns the color as #RRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Dim scales the color toward black by f in [0, 1].
func (c Color) Dim(f float64) Color {
	f = clamp01(f)
	return Color{R: uint8(float64(c.R) * f), G: uint8(float64(c.G) * f), B: uint8(float64(c.B) * f)}
}

// Scope colors.
var (
	ColorBackground = Color{R: 4, G: 14, B: 10}
	ColorRing       = Color{R: 0, G: 143, B: 17}
	ColorShell      = Color{R: 0, G: 255, B: 65}
	ColorCenter     = Color{R: 0, G: 255, B: 65}
)

// KindColor returns the full-intensity color of a blip kind.
func KindColor(k sonar.BlipKind) Color {
	switch k {
	case sonar.BlipContact:
		return Color{R: 255, G: 204, B: 0}
	case sonar.BlipPassive:
		return Color{R: 0, G: 255, B: 170}
	case sonar.BlipDisruption:
		return Color{R: 90, G: 140, B: 110}
	case sonar.BlipFlow:
		return Color{R: 60, G: 160, B: 200}
	default:
		return Color{R: 51, G: 255, B: 102}
	}
}

// KindGlyph returns the character used for a blip kind in text output.
func KindGlyph(k sonar.BlipKind) rune {
	switch k {
	case sonar.BlipContact:
		return '@'
	case sonar.BlipPassive:
		return '*'
	case sonar.BlipDisruption:
		return '~'
	case sonar.BlipFlow:
		return '='
	default:
		return '#'
	}
}

// Kinds lists blip kinds in legend order.
var Kinds = []sonar.BlipKind{sonar.BlipDefault, sonar.BlipContact, sonar.BlipPassive, sonar.BlipDisruption, sonar.BlipFlow}

// Intensity returns the draw brightness of a blip in [0, 1].
func Intensity(b *sonar.Blip) float64 {
	return clamp01(b.FadeTimer)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
