// Scope snapshot tool - runs a headless patrol and renders the scope to a PNG.
//
// Usage: go run ./cmd/scopeshot --ticks 600 --mode active --out scope.png
package main

import (
	"fmt"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/config"
	"github.com/pthm-cable/sonar/game"
	"github.com/pthm-cable/sonar/renderer"
	"github.com/pthm-cable/sonar/scope"
)

var (
	flagConfig string
	flagOut    string
	flagSize   int
	flagTicks  int
	flagSeed   int64
	flagMode   string
	flagPatrol bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scopeshot",
		Short: "Render the sonar scope after a headless run to a PNG",
		RunE:  run,
	}

	rootCmd.Flags().StringVar(&flagConfig, "config", "", "Config YAML file (empty = use defaults)")
	rootCmd.Flags().StringVar(&flagOut, "out", "scope.png", "Output PNG path")
	rootCmd.Flags().IntVar(&flagSize, "size", 512, "Image width and height")
	rootCmd.Flags().IntVar(&flagTicks, "ticks", 600, "Ticks to simulate before rendering")
	rootCmd.Flags().Int64Var(&flagSeed, "seed", 42, "Level seed")
	rootCmd.Flags().StringVar(&flagMode, "mode", "active", "Sonar mode: off, passive, active")
	rootCmd.Flags().BoolVar(&flagPatrol, "patrol", true, "Steer the submarine during the run")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	g, err := game.NewGameWithOptions(game.Options{
		Seed:           flagSeed,
		Headless:       true,
		StepsPerUpdate: 1,
		Mode:           flagMode,
		Patrol:         flagPatrol,
		Config:         cfg,
	})
	if err != nil {
		return err
	}
	defer g.Unload()

	for int(g.Tick()) < flagTicks {
		g.UpdateHeadless()
	}

	size := int32(flagSize)
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(size, size, "Scope Snapshot")
	defer rl.CloseWindow()

	target := rl.LoadRenderTexture(size, size)
	defer rl.UnloadRenderTexture(target)

	c := g.Sonar()
	half := float64(size) / 2
	proj := scope.FromController(c, r2.Vec{X: half, Y: half}, half*0.95)

	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Black)
	renderer.NewScopeRenderer(4).Draw(c, proj, renderer.ScopeOptions{Rings: true, Shell: true, Sector: true})
	rl.EndTextureMode()

	// Render textures come back upside down
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)
	ok := rl.ExportImage(*img, flagOut)
	rl.UnloadImage(img)
	if !ok {
		return fmt.Errorf("exporting %s", flagOut)
	}

	st := c.Stats()
	fmt.Printf("Scope rendered to: %s (%dx%d) tick=%d mode=%s blips=%d\n",
		flagOut, size, size, g.Tick(), st.Mode, st.Blips)
	return nil
}
