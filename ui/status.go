package ui

import (
	"fmt"

	"github.com/pthm-cable/sonar/sonar"
)

// StatusData is everything the status panel shows.
type StatusData struct {
	Config      sonar.Configuration
	Stats       sonar.TickStats
	MaxBlips    int
	PowerLevel  float64
	Transducers int
	Peers       int
}

func status(data any) *StatusData {
	s, _ := data.(*StatusData)
	if s == nil {
		return &StatusData{}
	}
	return s
}

// StatusPanel describes the sonar status panel.
func StatusPanel(width int32) PanelDescriptor {
	return PanelDescriptor{
		ID:    "sonar_status",
		Title: "Sonar",
		Width: width,
		Sections: []SectionDescriptor{
			{
				ID: "config",
				Fields: []FieldDescriptor{
					{ID: "mode", Label: "Mode", Widget: WidgetText, TextGetter: func(d any) string {
						return status(d).Config.Mode.String()
					}},
					{ID: "range", Label: "Range", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
						return float32(status(d).Config.Range)
					}},
					{ID: "zoom", Label: "Zoom", Widget: WidgetText, Format: "%.2fx", Getter: func(d any) float32 {
						return float32(status(d).Config.Zoom)
					}},
					{ID: "direction", Label: "Bearing", Widget: WidgetText,
						Visible: func(d any) bool { return status(d).Config.Directional },
						TextGetter: func(d any) string {
							return fmt.Sprintf("%03.0f", bearingDegrees(status(d).Config.Direction))
						}},
				},
			},
			{
				ID:      "sweep",
				Title:   "Sweep",
				Visible: func(d any) bool { return status(d).Stats.Mode != sonar.ModeOff },
				Fields: []FieldDescriptor{
					{ID: "pings", Label: "Pings", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
						return float32(status(d).Stats.Pings)
					}},
					{ID: "segments", Label: "Segments", Widget: WidgetText, TextGetter: func(d any) string {
						s := status(d).Stats.Sweep
						return fmt.Sprintf("%d (%d culled)", s.Segments, s.Culled)
					}},
					{ID: "samples", Label: "Samples", Widget: WidgetText, TextGetter: func(d any) string {
						s := status(d).Stats.Sweep
						return fmt.Sprintf("%d/%d/%d", s.Accepted, s.Occluded, s.Samples)
					}},
					{ID: "contacts", Label: "Contacts", Widget: WidgetText, TextGetter: func(d any) string {
						s := status(d).Stats.Sweep
						return fmt.Sprintf("%d hit, %d heard", s.ContactHits, s.SourceHits)
					}},
				},
			},
			{
				ID:    "blips",
				Title: "Blips",
				Fields: []FieldDescriptor{
					{ID: "live", Label: "Live", Widget: WidgetBar, Format: "%.0f",
						Visible: func(d any) bool { return status(d).MaxBlips > 0 },
						Getter:  func(d any) float32 { return float32(status(d).Stats.Blips) },
					},
					{ID: "noise", Label: "Noise", Widget: WidgetText, TextGetter: func(d any) string {
						s := status(d).Stats
						return fmt.Sprintf("%d terrain, %d flow", s.NoiseBlips, s.FlowBlips)
					}},
				},
			},
			{
				ID:    "device",
				Title: "Device",
				Fields: []FieldDescriptor{
					{ID: "power", Label: "Power", Widget: WidgetLevelBar, Range: DefaultRange(), Getter: func(d any) float32 {
						return float32(status(d).PowerLevel)
					}},
					{ID: "transducers", Label: "Transducers", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
						return float32(status(d).Transducers)
					}},
					{ID: "peers", Label: "Peers", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
						return float32(status(d).Peers)
					}},
				},
			},
		},
	}
}

// DrawStatus draws the status panel with the live blip bar scaled to the registry cap.
func (r *Renderer) DrawStatus(x, y int32, width int32, data *StatusData) int32 {
	pd := StatusPanel(width)
	for i := range pd.Sections {
		for j := range pd.Sections[i].Fields {
			if pd.Sections[i].Fields[j].ID == "live" {
				pd.Sections[i].Fields[j].Range = FieldRange{Max: float32(data.MaxBlips)}
			}
		}
	}
	return r.DrawPanelDescriptor(x, y, pd, data)
}
