package inspector

import (
	"testing"

	"github.com/pthm-cable/sonar/components"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag    string
		widget Widget
		opts   map[string]string
	}{
		{"", WidgetAuto, map[string]string{}},
		{"bar,max:50", WidgetBar, map[string]string{"max": "50"}},
		{"label,fmt:%.1f", WidgetLabel, map[string]string{"fmt": "%.1f"}},
		{"angle", WidgetAngle, map[string]string{}},
		{"skip", WidgetSkip, map[string]string{}},
		{"sparkline,max:3", WidgetAuto, map[string]string{"max": "3"}},
		{"bool, junk", WidgetBool, map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			w, opts := ParseTag(tt.tag)
			if w != tt.widget {
				t.Errorf("widget = %v, want %v", w, tt.widget)
			}
			if len(opts) != len(tt.opts) {
				t.Fatalf("options = %v, want %v", opts, tt.opts)
			}
			for k, v := range tt.opts {
				if opts[k] != v {
					t.Errorf("option %q = %q, want %q", k, opts[k], v)
				}
			}
		})
	}
}

func TestExtractFieldsFromComponents(t *testing.T) {
	tests := []struct {
		name      string
		component any
		want      []string
		widgets   []Widget
	}{
		{
			name:      "position shares one tag",
			component: components.Position{X: 1, Y: 2},
			want:      []string{"X", "Y"},
			widgets:   []Widget{WidgetLabel, WidgetLabel},
		},
		{
			name:      "rotation skips turn rate",
			component: &components.Rotation{Heading: 1, AngVel: 2},
			want:      []string{"Heading"},
			widgets:   []Widget{WidgetAngle},
		},
		{
			name:      "body bar and labels",
			component: components.Body{Radius: 10, Mass: 5, Speed: 3},
			want:      []string{"Radius", "Mass", "Speed"},
			widgets:   []Widget{WidgetLabel, WidgetBar, WidgetLabel},
		},
		{
			name:      "untagged bools",
			component: components.SonarFlags{HideInSonar: true},
			want:      []string{"HideInSonar", "InsideHull"},
			widgets:   []Widget{WidgetBool, WidgetBool},
		},
		{
			name:      "nil emitter",
			component: (*components.Emitter)(nil),
		},
		{
			name:      "not a struct",
			component: 42,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := ExtractFields(tt.component)
			if len(fields) != len(tt.want) {
				t.Fatalf("got %d fields %v, want %v", len(fields), fields, tt.want)
			}
			for i, f := range fields {
				if f.Name != tt.want[i] {
					t.Errorf("field %d name = %q, want %q", i, f.Name, tt.want[i])
				}
				if f.Widget != tt.widgets[i] {
					t.Errorf("field %s widget = %v, want %v", f.Name, f.Widget, tt.widgets[i])
				}
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value any
		fmt   string
		want  string
	}{
		{1.234, "", "1.23"},
		{float32(2.5), "", "2.50"},
		{1234.6, "%.0f", "1235"},
		{7, "", "7"},
		{components.KindBeacon, "", "Beacon"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.value, tt.fmt); got != tt.want {
			t.Errorf("FormatValue(%v, %q) = %q, want %q", tt.value, tt.fmt, got, tt.want)
		}
	}
}

func TestGetMax(t *testing.T) {
	tests := []struct {
		opts map[string]string
		want float32
	}{
		{nil, 1},
		{map[string]string{"max": "50"}, 50},
		{map[string]string{"max": "oops"}, 1},
		{map[string]string{"max": "0"}, 1},
	}
	for _, tt := range tests {
		if got := GetMax(tt.opts); got != tt.want {
			t.Errorf("GetMax(%v) = %v, want %v", tt.opts, got, tt.want)
		}
	}
}

func TestFieldHeightFallsBackToLabel(t *testing.T) {
	tests := []struct {
		field Field
		want  int32
	}{
		{Field{Widget: WidgetBar, Value: 3.0}, barHeight},
		{Field{Widget: WidgetBar, Value: "x"}, labelHeight},
		{Field{Widget: WidgetAngle, Value: 1.0}, angleHeight},
		{Field{Widget: WidgetBool, Value: true}, boolHeight},
		{Field{Widget: WidgetBool, Value: 1}, labelHeight},
		{Field{Widget: WidgetLabel, Value: 1}, labelHeight},
	}
	for _, tt := range tests {
		if got := FieldHeight(tt.field); got != tt.want {
			t.Errorf("FieldHeight(%+v) = %d, want %d", tt.field, got, tt.want)
		}
	}
}

func TestDegreesWraps(t *testing.T) {
	tests := []struct {
		rad  float32
		want float32
	}{
		{0, 0},
		{3.14159265 / 2, 90},
		{-3.14159265 / 2, 270},
	}
	for _, tt := range tests {
		got := Degrees(tt.rad)
		if d := got - tt.want; d > 0.01 || d < -0.01 {
			t.Errorf("Degrees(%v) = %v, want %v", tt.rad, got, tt.want)
		}
	}
}
