// Level preview tool - interactive view of generated caves and disruption with sliders.
//
// Usage: go run ./cmd/levelpreview [-config path]
package main

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/sonar/config"
	"github.com/pthm-cable/sonar/level"
	"github.com/pthm-cable/sonar/systems"
)

const (
	windowWidth  = 1180
	windowHeight = 720
	previewW     = 800
	previewH     = 480
	panelWidth   = windowWidth - previewW - 30

	// texture pixels per terrain cell
	subsample = 4
)

var flagConfig string

// previewParams holds the tunable generation parameters.
type previewParams struct {
	TerrainThreshold float32
	TerrainScale     float32 // x1e-4
	DisruptionScale  float32 // x1e-4
	DisruptionCutoff float32
	Seed             int64
}

func paramsFrom(cfg config.LevelConfig) previewParams {
	return previewParams{
		TerrainThreshold: float32(cfg.TerrainThreshold),
		TerrainScale:     float32(cfg.TerrainScale * 1e4),
		DisruptionScale:  float32(cfg.DisruptionScale * 1e4),
		DisruptionCutoff: float32(cfg.DisruptionCutoff),
		Seed:             42,
	}
}

func (p previewParams) apply(cfg config.LevelConfig) config.LevelConfig {
	cfg.TerrainThreshold = float64(p.TerrainThreshold)
	cfg.TerrainScale = float64(p.TerrainScale) * 1e-4
	cfg.DisruptionScale = float64(p.DisruptionScale) * 1e-4
	cfg.DisruptionCutoff = float64(p.DisruptionCutoff)
	return cfg
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "levelpreview",
		Short: "Preview generated levels and sonar disruption",
		RunE:  run,
	}
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "Config YAML file (empty = use defaults)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	base := cfg.Level
	defaults := paramsFrom(base)
	params := defaults

	rl.InitWindow(windowWidth, windowHeight, "Level Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	var (
		lvl     *level.Level
		texture rl.Texture2D
		texW    int
		texH    int
		stats   levelStats
	)
	regenerate := func() {
		lvl = level.New(params.apply(base), params.Seed)
		terrain := lvl.Terrain()
		w, h := terrain.GridWidth()*subsample, terrain.GridHeight()*subsample
		if w != texW || h != texH {
			if texW > 0 {
				rl.UnloadTexture(texture)
			}
			img := rl.GenImageColor(w, h, rl.Black)
			texture = rl.LoadTextureFromImage(img)
			rl.UnloadImage(img)
			texW, texH = w, h
		}
		stats = updateTexture(texture, lvl, w, h)
	}
	regenerate()
	defer func() { rl.UnloadTexture(texture) }()

	showOverlay := true
	needsRegen := false

	for !rl.WindowShouldClose() {
		if needsRegen {
			regenerate()
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		dest := rl.Rectangle{X: 10, Y: 10, Width: previewW, Height: previewH}
		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(texW), Height: float32(texH)},
			dest,
			rl.Vector2{},
			0,
			rl.White,
		)
		if showOverlay {
			drawFeatures(lvl, dest)
		}
		rl.DrawRectangleLines(10, 10, previewW, previewH, rl.DarkGray)

		statsY := int32(previewH + 25)
		rl.DrawText(fmt.Sprintf("Rock: %.1f%%  Disrupted water: %.1f%%  Peak: %.2f",
			stats.rock*100, stats.disrupted*100, stats.peak), 15, statsY, 16, rl.DarkGray)
		rl.DrawText("Blue = disruption, white = ruins, cyan = vents, yellow = submarines",
			15, statsY+20, 14, rl.Gray)

		panelX := float32(previewW + 20)
		panelY := float32(10)

		rl.DrawText("Level Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		slider := func(label, format string, value, lo, hi float32) float32 {
			rl.DrawText(label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			next := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				fmt.Sprintf(format, lo), fmt.Sprintf(format, hi),
				value, lo, hi,
			)
			rl.DrawText(fmt.Sprintf(format, value), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			panelY += 35
			if next != value {
				needsRegen = true
			}
			return next
		}

		params.TerrainThreshold = slider("Terrain threshold (higher = less rock)", "%.2f", params.TerrainThreshold, 0, 1)
		params.TerrainScale = slider("Terrain scale (x1e-4)", "%.2f", params.TerrainScale, 0.2, 5)
		params.DisruptionScale = slider("Disruption scale (x1e-4)", "%.2f", params.DisruptionScale, 0.5, 20)
		params.DisruptionCutoff = slider("Disruption cutoff", "%.2f", params.DisruptionCutoff, 0, 1)

		rl.DrawText(fmt.Sprintf("Seed: %d", params.Seed), int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaults
			needsRegen = true
		}
		panelY += 40
		showOverlay = gui.CheckBox(rl.Rectangle{X: panelX, Y: panelY, Width: 16, Height: 16}, "Features", showOverlay)
		panelY += 35

		rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+int32(panelWidth)-20, int32(panelY), rl.LightGray)
		panelY += 15

		snippet := levelYAML(params.apply(base))
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		for _, line := range strings.Split(strings.TrimRight(snippet, "\n"), "\n") {
			rl.DrawText(line, int32(panelX), int32(panelY), 12, rl.Gray)
			panelY += 14
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(snippet)
		}

		rl.EndDrawing()
	}
	return nil
}

// levelYAML renders the level section as it would appear in a config file.
func levelYAML(cfg config.LevelConfig) string {
	data, err := yaml.Marshal(struct {
		Level config.LevelConfig `yaml:"level"`
	}{cfg})
	if err != nil {
		return err.Error()
	}
	return string(data)
}

type levelStats struct {
	rock      float64 // fraction of solid cells
	disrupted float64 // fraction of open water with any disruption
	peak      float64
}

// updateTexture paints terrain and disruption strength into the texture.
func updateTexture(texture rl.Texture2D, lvl *level.Level, w, h int) levelStats {
	terrain := lvl.Terrain()
	cell := terrain.CellSize()
	pixels := make([]color.RGBA, w*h)

	var stats levelStats
	var solid, open, disrupted int
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			p := r2.Vec{
				X: (float64(px) + 0.5) * cell / subsample,
				Y: (float64(py) + 0.5) * cell / subsample,
			}
			switch terrain.GetCell(p) {
			case systems.TerrainRock:
				pixels[py*w+px] = color.RGBA{R: 70, G: 60, B: 55, A: 255}
				solid++
				continue
			case systems.TerrainFloor:
				pixels[py*w+px] = color.RGBA{R: 90, G: 80, B: 60, A: 255}
				solid++
				continue
			}
			open++
			d := lvl.SonarDisruptionStrength(p)
			if d > 0 {
				disrupted++
			}
			stats.peak = math.Max(stats.peak, d)
			pixels[py*w+px] = color.RGBA{
				R: uint8(8 + d*40),
				G: uint8(20 + d*90),
				B: uint8(40 + d*200),
				A: 255,
			}
		}
	}
	rl.UpdateTexture(texture, pixels)

	if total := solid + open; total > 0 {
		stats.rock = float64(solid) / float64(total)
	}
	if open > 0 {
		stats.disrupted = float64(disrupted) / float64(open)
	}
	return stats
}

// drawFeatures overlays ruins, flow vents and submarines on the preview.
func drawFeatures(lvl *level.Level, dest rl.Rectangle) {
	w, h := lvl.Size()
	sx, sy := float64(dest.Width)/w, float64(dest.Height)/h
	toScreen := func(p r2.Vec) rl.Vector2 {
		return rl.Vector2{X: dest.X + float32(p.X*sx), Y: dest.Y + float32(p.Y*sy)}
	}
	center := r2.Vec{X: w / 2, Y: h / 2}
	all := math.Hypot(w, h)

	for _, s := range lvl.RuinWalls(center, all) {
		rl.DrawLineEx(toScreen(s.A), toScreen(s.B), 2, rl.White)
	}
	for _, t := range lvl.FlowTriggers(center, all) {
		rl.DrawCircleLinesV(toScreen(t.Position), float32(t.Radius*sx), rl.SkyBlue)
		flow := lvl.WaterFlowVelocity(t)
		rl.DrawLineV(toScreen(t.Position), toScreen(r2.Add(t.Position, r2.Scale(3, flow))), rl.SkyBlue)
	}
	for _, sub := range lvl.Submarines() {
		loop := lvl.HullVertexLoop(sub)
		for i := range loop {
			rl.DrawLineV(toScreen(loop[i]), toScreen(loop[(i+1)%len(loop)]), rl.Yellow)
		}
	}
}
