package camera

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// Should be centered on world
	if cam.X != 1280 || cam.Y != 720 {
		t.Errorf("expected camera at (1280, 720), got (%f, %f)", cam.X, cam.Y)
	}
	// Whole world fits: min(1280/2560, 720/1440) = 0.5
	if cam.Zoom != 0.5 || cam.MinZoom != 0.5 {
		t.Errorf("expected zoom 0.5, got %f (min %f)", cam.Zoom, cam.MinZoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// Camera center should map to screen center
	sx, sy := cam.WorldToScreen(1280, 720)
	if math.Abs(float64(sx-640)) > 0.01 || math.Abs(float64(sy-360)) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(0.8)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanClampsToWorld(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(1)

	// Half viewport in world units is 640x360 at zoom 1
	cam.Pan(-10000, -10000)
	if cam.X != 640 || cam.Y != 360 {
		t.Errorf("expected clamp to (640, 360), got (%f, %f)", cam.X, cam.Y)
	}
	cam.Pan(10000, 10000)
	if cam.X != 1920 || cam.Y != 1080 {
		t.Errorf("expected clamp to (1920, 1080), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestFollow(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(1)

	cam.Follow(1000, 800)
	if cam.X != 1000 || cam.Y != 800 {
		t.Errorf("expected (1000, 800), got (%f, %f)", cam.X, cam.Y)
	}

	// Near the corner the view stops at the world edge
	cam.Follow(0, 0)
	if cam.X != 640 || cam.Y != 360 {
		t.Errorf("expected clamp to (640, 360), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestFollowCentersWhenZoomedOut(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// At min zoom the view covers the whole world
	cam.Follow(100, 100)
	if cam.X != 1280 || cam.Y != 720 {
		t.Errorf("expected world center, got (%f, %f)", cam.X, cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	cam.SetZoom(0.1) // Below min
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom clamped to 0.5, got %f", cam.Zoom)
	}

	cam.SetZoom(10.0) // Above max
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom clamped to 1.0, got %f", cam.Zoom)
	}

	cam.ZoomBy(0.5)
	if cam.Zoom != 0.5 {
		t.Errorf("expected ZoomBy to halve zoom, got %f", cam.Zoom)
	}
}

func TestFitZoomUsesLimitingAxis(t *testing.T) {
	// Sonar levels are wide: min(800/40000, 600/24000) = 0.02
	cam := New(800, 600, 40000, 24000)
	if math.Abs(float64(cam.MinZoom-0.02)) > 1e-6 {
		t.Errorf("expected MinZoom 0.02, got %f", cam.MinZoom)
	}

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	if minX > 0 || maxX < 40000 || minY > 0 || maxY < 24000 {
		t.Errorf("world not fully visible at min zoom: (%f,%f)-(%f,%f)", minX, minY, maxX, maxY)
	}
}

func TestResizeRaisesZoom(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.Resize(2560, 1440)
	if cam.MinZoom != 1 || cam.Zoom != 1 {
		t.Errorf("expected min zoom and zoom 1 after resize, got %f / %f", cam.MinZoom, cam.Zoom)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(1)

	// Visible range in world coords: (640, 360) to (1920, 1080)
	if !cam.IsVisible(1280, 720, 10) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(2400, 1300, 10) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(600, 720, 100) {
		t.Error("edge point with large radius should be visible")
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(1)
	cam.Follow(700, 500)

	cam.Reset()

	if cam.X != 1280 || cam.Y != 720 {
		t.Errorf("expected position (1280, 720), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom 0.5, got %f", cam.Zoom)
	}
}
