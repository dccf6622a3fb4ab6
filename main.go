package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/sonar/config"
	"github.com/pthm-cable/sonar/game"
)

var (
	flagConfig         string
	flagHeadless       bool
	flagLogStats       bool
	flagStatsWindow    float64
	flagSnapshotDir    string
	flagOutputDir      string
	flagSeed           int64
	flagMaxTicks       int
	flagStepsPerUpdate int
	flagMode           string
	flagPatrol         bool
	flagListen         string
	flagConnect        string
	flagASCIIEvery     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sonar",
		Short: "Submarine sonar simulation",
		Long: `Sonar simulates a submarine sonar scope over a generated cave level.
Active pings sweep terrain, ruins, hulls and the sea bed into blips; passive
listening picks up audible creatures. Two instances can share sonar settings
over a websocket with --listen and --connect.

Run with --headless for CPU-only simulation with telemetry output.`,
		RunE: run,
	}

	f := rootCmd.Flags()
	f.StringVar(&flagConfig, "config", "", "Path to config.yaml (empty = use defaults)")
	f.BoolVar(&flagHeadless, "headless", false, "Run without graphics")
	f.BoolVar(&flagLogStats, "log-stats", false, "Output stats via slog")
	f.Float64Var(&flagStatsWindow, "stats-window", 0, "Stats window size in seconds (0 = use config)")
	f.StringVar(&flagSnapshotDir, "snapshot-dir", "", "Directory for snapshot files")
	f.StringVar(&flagOutputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
	f.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = time-based)")
	f.IntVar(&flagMaxTicks, "max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	f.IntVar(&flagStepsPerUpdate, "steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	f.StringVar(&flagMode, "mode", "", "Start mode: off, passive, active (empty = config)")
	f.BoolVar(&flagPatrol, "patrol", false, "Steer the submarine automatically")
	f.StringVar(&flagListen, "listen", "", "Serve sonar sync on this address, e.g. :8090")
	f.StringVar(&flagConnect, "connect", "", "Join a sync hub, e.g. ws://host:8090/sonar")
	f.IntVar(&flagASCIIEvery, "ascii-every", 0, "Headless: log the text scope every N ticks (0 = never)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Initialize config before anything else
	if err := config.Init(flagConfig); err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}
	cfg := config.Cfg()

	rngSeed := flagSeed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// JSON to stdout for structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	statsWindowSec := cfg.Telemetry.StatsWindow
	if flagStatsWindow > 0 {
		statsWindowSec = flagStatsWindow
	}

	opts := game.Options{
		Seed:           rngSeed,
		Headless:       flagHeadless,
		LogStats:       flagLogStats,
		StatsWindowSec: statsWindowSec,
		OutputDir:      flagOutputDir,
		SnapshotDir:    flagSnapshotDir,
		StepsPerUpdate: flagStepsPerUpdate,
		Mode:           flagMode,
		Patrol:         flagPatrol,
		ASCIIEvery:     flagASCIIEvery,
		Listen:         flagListen,
		Connect:        flagConnect,
	}

	if flagHeadless {
		return runHeadless(cmd.Context(), opts)
	}

	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Sonar")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return err
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if flagMaxTicks > 0 && int(g.Tick()) >= flagMaxTicks {
			break
		}
	}
	return nil
}

// runHeadless steps the simulation until max ticks or an interrupt.
func runHeadless(ctx context.Context, opts game.Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return err
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"session", g.Session(),
		"stats_window", opts.StatsWindowSec,
		"max_ticks", flagMaxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Info("interrupted", "tick", g.Tick())
			return nil
		default:
		}

		g.UpdateHeadless()

		if flagMaxTicks > 0 && int(g.Tick()) >= flagMaxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return nil
		}
	}
}
