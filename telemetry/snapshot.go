package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/sonar/sonar"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the scope state at one tick.
type Snapshot struct {
	Version int    `json:"version"`
	Session string `json:"session"`
	RNGSeed int64  `json:"rng_seed"`

	Tick int32 `json:"tick"`

	Mode        string  `json:"mode"`
	Range       float64 `json:"range"`
	Zoom        float64 `json:"zoom"`
	Directional bool    `json:"directional"`
	DirX        float64 `json:"dir_x"`
	DirY        float64 `json:"dir_y"`
	CenterX     float64 `json:"center_x"`
	CenterY     float64 `json:"center_y"`

	Blips []BlipState `json:"blips"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// BlipState holds one blip in display space.
type BlipState struct {
	Kind      string   `json:"kind"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	FadeTimer float64  `json:"fade"`
	Scale     float64  `json:"scale"`
	Rotation  *float64 `json:"rotation,omitempty"`
}

// NewSnapshot captures the controller's configuration and live blips.
func NewSnapshot(c *sonar.Controller, seed int64, tick int32) *Snapshot {
	cfg := c.Configuration()
	center := c.Center()
	s := &Snapshot{
		Version:     SnapshotVersion,
		RNGSeed:     seed,
		Tick:        tick,
		Mode:        cfg.Mode.String(),
		Range:       cfg.Range,
		Zoom:        cfg.Zoom,
		Directional: cfg.Directional,
		DirX:        cfg.Direction.X,
		DirY:        cfg.Direction.Y,
		CenterX:     center.X,
		CenterY:     center.Y,
		Blips:       make([]BlipState, 0, c.Registry().Len()),
	}
	for b := range c.Registry().All() {
		s.Blips = append(s.Blips, BlipState{
			Kind:      b.Kind.String(),
			X:         b.Position.X,
			Y:         b.Position.Y,
			FadeTimer: b.FadeTimer,
			Scale:     b.Scale,
			Rotation:  b.Rotation,
		})
	}
	return s
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
