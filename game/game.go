// Package game wires the sonar, the demo level, sync and telemetry into a
// runnable simulation with an optional raylib front end.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/camera"
	"github.com/pthm-cable/sonar/config"
	"github.com/pthm-cable/sonar/inspector"
	"github.com/pthm-cable/sonar/level"
	"github.com/pthm-cable/sonar/netsync"
	"github.com/pthm-cable/sonar/renderer"
	"github.com/pthm-cable/sonar/sonar"
	"github.com/pthm-cable/sonar/telemetry"
	"github.com/pthm-cable/sonar/ui"
)

// scopeRings is the number of range rings on the scope.
const scopeRings = 4

// Game holds the complete simulation state.
type Game struct {
	cfg     *config.Config
	rng     *rand.Rand
	rngSeed int64
	logger  *slog.Logger

	// World
	level    *level.Level
	entities *level.Entities
	battery  *Battery
	sonar    *sonar.Controller
	patrol   *Patrol
	patrolOn bool

	// Hull arrays on the own submarine, mounts relative to its position
	transducers *sonar.TransducerBinding
	mounts      []r2.Vec

	// Sync
	hub      *netsync.Hub
	server   *http.Server
	syncAddr string
	cancel   context.CancelFunc

	// Telemetry
	session          string
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	snapshotDir      string
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	asciiEvery       int

	// Rendering, nil when headless
	camera        *camera.Camera
	scopeRenderer *renderer.ScopeRenderer
	mapRenderer   *renderer.MapRenderer
	uiHUD         *ui.HUD
	uiPerfPanel   *ui.PerfPanel
	uiLegend      *ui.Legend
	uiControls    *ui.ControlsPanel
	uiRenderer    *ui.Renderer
	uiOverlays    *ui.OverlayRegistry
	inspector     *inspector.Inspector

	// State
	tick           int32
	paused         bool
	headless       bool
	stepsPerUpdate int
	screenWidth    float32
	screenHeight   float32
}

// config returns the configuration this game runs with.
func (g *Game) config() *config.Config {
	return g.cfg
}

// NewGameWithOptions creates a game. Unless opts.Config is set, config.Init
// must have been called.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	g := &Game{
		cfg:            cfg,
		rng:            rand.New(rand.NewSource(opts.Seed)),
		rngSeed:        opts.Seed,
		logger:         slog.Default(),
		patrolOn:       opts.Patrol,
		logStats:       opts.LogStats,
		asciiEvery:     opts.ASCIIEvery,
		snapshotDir:    opts.SnapshotDir,
		statsCallback:  opts.StatsCallback,
		headless:       opts.Headless,
		stepsPerUpdate: max(opts.StepsPerUpdate, 1),
		screenWidth:    float32(cfg.Screen.Width),
		screenHeight:   float32(cfg.Screen.Height),
	}

	if err := g.initWorld(cfg, opts.Mode); err != nil {
		return nil, err
	}
	if err := g.initTelemetry(cfg, opts); err != nil {
		return nil, err
	}

	listen := opts.Listen
	if listen == "" {
		listen = cfg.Net.Listen
	}
	if err := g.startNet(cfg.Net, listen, opts.Connect); err != nil {
		g.Unload()
		return nil, err
	}

	if !opts.Headless {
		g.initRendering(cfg)
	}

	g.logger.Info("game initialized",
		"session", g.session,
		"seed", g.rngSeed,
		"mode", g.sonar.Configuration().Mode.String(),
		"entities", g.entities.Len(),
		"headless", g.headless,
	)
	return g, nil
}

// initWorld generates the level and its inhabitants and builds the sonar.
func (g *Game) initWorld(cfg *config.Config, mode string) error {
	g.level = level.New(cfg.Level, g.rngSeed)
	g.entities = level.NewEntities(cfg.Level.Width, cfg.Level.Height, g.level.Terrain(), g.rng)
	g.entities.Populate(g.level, cfg.Level.Creatures, cfg.Level.Items, cfg.Level.CreatureSoundRange, cfg.Level.CreatureSpeed)
	g.battery = NewBattery(cfg.Power)
	g.patrol = NewPatrol(g.level, level.OwnSubmarineID, g.rng)

	sonarCfg, err := sonar.ConfigurationFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("sonar configuration: %w", err)
	}
	if mode != "" {
		m, err := sonar.ParseMode(mode)
		if err != nil {
			return err
		}
		sonarCfg.Mode = m
	}

	own := g.level.OwnSubmarine().Position
	g.transducers = &sonar.TransducerBinding{}
	g.mounts = g.level.TransducerMounts(level.OwnSubmarineID)
	for i, m := range g.mounts {
		g.transducers.Connect(sonar.Transducer{ID: i, Position: r2.Add(own, m), LinkQuality: 1})
	}

	g.sonar, err = sonar.NewController(sonar.ParamsFromConfig(cfg), sonarCfg, sonar.Options{
		Geometry:    g.level,
		Targets:     g.entities,
		Power:       g.battery,
		Transducers: g.transducers,
		Logger:      g.logger,
		Rng:         g.rng,
	})
	if err != nil {
		return err
	}
	g.sonar.SetPosition(own)
	return nil
}

// placeSonar moves the sonar device and its hull arrays with the submarine.
func (g *Game) placeSonar(pos r2.Vec) {
	for i, m := range g.mounts {
		g.transducers.Move(i, r2.Add(pos, m))
	}
	g.sonar.SetPosition(pos)
}

// initTelemetry sets up collectors and, when requested, file output.
func (g *Game) initTelemetry(cfg *config.Config, opts Options) error {
	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		return err
	}

	g.session = om.Session()
	if g.session == "" {
		g.session = uuid.NewString()
	}

	window := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		window = opts.StatsWindowSec
	}
	g.collector = telemetry.NewCollector(g.session, window, cfg.Physics.DT)
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(5)
	return nil
}

// initRendering creates the camera, renderers and UI. Requires a raylib window.
func (g *Game) initRendering(cfg *config.Config) {
	g.camera = camera.New(g.screenWidth, g.screenHeight, float32(cfg.Level.Width), float32(cfg.Level.Height))
	g.scopeRenderer = renderer.NewScopeRenderer(scopeRings)
	g.mapRenderer = renderer.NewMapRenderer(g.camera)
	g.uiHUD = ui.NewHUD()
	g.uiPerfPanel = ui.NewPerfPanel(10, 120)
	g.uiLegend = ui.NewLegend()
	g.uiControls = ui.NewControlsPanel(int32(g.screenWidth)-250, 10, 240)
	g.uiRenderer = ui.NewRenderer()
	g.uiOverlays = ui.NewOverlayRegistry()
	g.inspector = inspector.NewInspector(int32(g.screenWidth), int32(g.screenHeight))
}

// Tick returns the number of simulation steps run.
func (g *Game) Tick() int32 {
	return g.tick
}

// Session returns the run's unique id.
func (g *Game) Session() string {
	return g.session
}

// Sonar returns the sonar controller.
func (g *Game) Sonar() *sonar.Controller {
	return g.sonar
}

// Hub returns the sync hub, nil when sync is disabled.
func (g *Game) Hub() *netsync.Hub {
	return g.hub
}

// Unload flushes output and stops sync.
func (g *Game) Unload() {
	g.stopNet()
	if err := g.outputManager.Close(); err != nil {
		g.logger.Error("failed to close output", "error", err)
	}
	g.outputManager = nil
}
