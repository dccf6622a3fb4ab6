package telemetry

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/config"
	"github.com/pthm-cable/sonar/sonar"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	rot := 0.5
	snapshot := &Snapshot{
		Version:     SnapshotVersion,
		Session:     "abc",
		RNGSeed:     42,
		Tick:        1000,
		Mode:        "active",
		Range:       10000,
		Zoom:        2,
		Directional: true,
		DirX:        0,
		DirY:        1,
		Blips: []BlipState{
			{Kind: "contact", X: 10, Y: -20, FadeTimer: 1.2, Scale: 1},
			{Kind: "flow", X: 5, Y: 5, FadeTimer: 0.4, Scale: 0.5, Rotation: &rot},
		},
		Bookmark: &Bookmark{
			Type:        BookmarkContactSurge,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Version != snapshot.Version {
		t.Errorf("Version mismatch: got %d, want %d", loaded.Version, snapshot.Version)
	}
	if loaded.Session != "abc" || loaded.RNGSeed != 42 || loaded.Tick != 1000 {
		t.Errorf("header mismatch: %+v", loaded)
	}
	if len(loaded.Blips) != 2 {
		t.Fatalf("Blips count mismatch: got %d, want 2", len(loaded.Blips))
	}
	if loaded.Blips[0].Rotation != nil {
		t.Error("unoriented blip gained a rotation")
	}
	if loaded.Blips[1].Rotation == nil || *loaded.Blips[1].Rotation != 0.5 {
		t.Errorf("rotation = %v, want 0.5", loaded.Blips[1].Rotation)
	}
	if loaded.Bookmark == nil {
		t.Error("Bookmark not loaded")
	} else if loaded.Bookmark.Type != snapshot.Bookmark.Type {
		t.Errorf("Bookmark type mismatch: got %s, want %s", loaded.Bookmark.Type, snapshot.Bookmark.Type)
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Tick:    5000,
		Bookmark: &Bookmark{
			Type: BookmarkPowerLoss,
			Tick: 5000,
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_5000_power_loss.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	snapshotNoBookmark := &Snapshot{
		Version: SnapshotVersion,
		Tick:    3000,
	}

	path, err = SaveSnapshot(snapshotNoBookmark, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected = filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestNewSnapshotCapturesScope(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Sonar.StartMode = "active"
	scope, err := sonar.ConfigurationFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}

	targets := &sonar.TargetList{}
	targets.AddContact(sonar.Contact{ID: 1, Position: r2.Vec{X: 2000, Y: 0}, Mass: 80})
	c, err := sonar.NewController(sonar.ParamsFromConfig(cfg), scope, sonar.Options{
		Targets: targets,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 60; i++ {
		c.Update(cfg.Physics.DT)
	}

	s := NewSnapshot(c, 7, 60)
	if s.Mode != "active" || s.Tick != 60 || s.RNGSeed != 7 {
		t.Errorf("header = %+v", s)
	}
	if s.Range != cfg.Sonar.Range || s.Zoom != cfg.Sonar.MinZoom {
		t.Errorf("range/zoom = %v/%v", s.Range, s.Zoom)
	}
	if len(s.Blips) != c.Registry().Len() {
		t.Errorf("snapshot has %d blips, registry %d", len(s.Blips), c.Registry().Len())
	}
	if len(s.Blips) == 0 {
		t.Fatal("contact should have been detected within one ping")
	}
	for _, b := range s.Blips {
		if b.Kind != "contact" {
			t.Errorf("unexpected blip kind %q", b.Kind)
		}
	}
}
