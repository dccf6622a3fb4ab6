// Package ui provides a descriptor-driven UI system for the sonar scope.
// Instead of hard-coding field names and layouts, panels are defined
// through metadata that can be updated alongside the underlying systems.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// WidgetType specifies how a field should be rendered.
type WidgetType int

const (
	WidgetText     WidgetType = iota // Plain text with format string
	WidgetBar                        // Progress bar over Range
	WidgetLevelBar                   // Bar with low/medium/high color thresholds
	WidgetSection                    // Section header
	WidgetSpacer                     // Vertical spacing
)

// FieldRange defines the value range for bar widgets.
type FieldRange struct {
	Min float32
	Max float32
}

// DefaultRange returns a [0, 1] range.
func DefaultRange() FieldRange {
	return FieldRange{Min: 0, Max: 1}
}

// normalize maps v into [0, 1] over the range.
func (r FieldRange) normalize(v float32) float32 {
	if r.Max <= r.Min {
		return 0
	}
	f := (v - r.Min) / (r.Max - r.Min)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// FieldDescriptor defines how to display a single piece of data.
type FieldDescriptor struct {
	ID         string            // Unique identifier for the field
	Label      string            // Display label
	Widget     WidgetType        // How to render
	Format     string            // Printf format for text (e.g., "%.2f")
	Range      FieldRange        // Value range for bars
	Visible    func(any) bool    // Optional visibility check (nil = always visible)
	Getter     func(any) float32 // Value extractor (for numeric fields)
	TextGetter func(any) string  // Value extractor (for text fields)
}

// SectionDescriptor defines a group of fields with a header.
type SectionDescriptor struct {
	ID      string            // Unique identifier
	Title   string            // Section header text
	Fields  []FieldDescriptor // Fields in this section
	Visible func(any) bool    // Optional visibility check for entire section
}

// PanelDescriptor defines a complete panel layout.
type PanelDescriptor struct {
	ID       string              // Unique identifier
	Title    string              // Panel title (optional)
	Sections []SectionDescriptor // Sections in order
	Width    int32               // Panel width
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillLow     rl.Color
	BarFillMedium  rl.Color
	BarFillHigh    rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the phosphor-green scope theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 8, G: 18, B: 14, A: 235},
		PanelBorder:    rl.Color{R: 40, G: 90, B: 60, A: 255},
		SectionHeader:  rl.Color{R: 140, G: 255, B: 170, A: 255},
		LabelColor:     rl.Color{R: 110, G: 170, B: 130, A: 255},
		ValueColor:     rl.Color{R: 200, G: 240, B: 210, A: 255},
		BarBg:          rl.Color{R: 20, G: 40, B: 30, A: 255},
		BarFill:        rl.Color{R: 80, G: 200, B: 120, A: 255},
		BarFillLow:     rl.Color{R: 200, G: 90, B: 80, A: 255},
		BarFillMedium:  rl.Color{R: 210, G: 180, B: 80, A: 255},
		BarFillHigh:    rl.Color{R: 80, G: 200, B: 120, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     80,
		BarHeight:      10,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
