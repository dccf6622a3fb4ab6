// Package config provides configuration loading and access for the sonar simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Sonar      SonarConfig      `yaml:"sonar"`
	Sweep      SweepConfig      `yaml:"sweep"`
	Disruption DisruptionConfig `yaml:"disruption"`
	Passive    PassiveConfig    `yaml:"passive"`
	Flow       FlowConfig       `yaml:"flow"`
	Power      PowerConfig      `yaml:"power"`
	Level      LevelConfig      `yaml:"level"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Net        NetConfig        `yaml:"net"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds simulation timing parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"`
}

// SonarConfig holds the device-level sonar parameters.
type SonarConfig struct {
	Range                float64 `yaml:"range"`          // Detection range in world units
	DisplayRadius        float64 `yaml:"display_radius"` // Scope radius in display units
	MinZoom              float64 `yaml:"min_zoom"`
	MaxZoom              float64 `yaml:"max_zoom"`
	PingDuration         float64 `yaml:"ping_duration"`          // Seconds for one active ping to reach the scope edge
	DirectionalSector    float64 `yaml:"directional_sector"`     // Full cone width in degrees
	FadeRate             float64 `yaml:"fade_rate"`              // Fade timer units lost per second
	MaxBlips             int     `yaml:"max_blips"`              // Registry cap (0 = unbounded)
	DetectSubmarineWalls bool    `yaml:"detect_submarine_walls"` // Detect own hull
	StartMode            string  `yaml:"start_mode"`             // off, passive, active
}

// SweepConfig holds the line sampling constants for the ping sweeper.
// The values are tuned by eye and have no deeper meaning.
type SweepConfig struct {
	TerrainLineStep float64 `yaml:"terrain_line_step"`
	TerrainZStep    float64 `yaml:"terrain_z_step"`
	HullLineStep    float64 `yaml:"hull_line_step"`
	HullZStep       float64 `yaml:"hull_z_step"`
	RuinLineStep    float64 `yaml:"ruin_line_step"`
	RuinZStep       float64 `yaml:"ruin_z_step"`
	FloorLineStep   float64 `yaml:"floor_line_step"`
	FloorZStep      float64 `yaml:"floor_z_step"`
	ZStepGrowth     float64 `yaml:"z_step_growth"`  // Added to z step after each stacked blip (divided by zoom)
	DedupDistance   float64 `yaml:"dedup_distance"` // Axis-aligned dedup window (divided by zoom)
	StepJitter      float64 `yaml:"step_jitter"`    // Relative jitter on line step, 0.2 = +/-20%
	Scatter         float64 `yaml:"scatter"`        // Random offset applied to stacked blips
	CellRadius      int     `yaml:"cell_radius"`    // Terrain cells queried around the ping source
	ContactMaxBlips int     `yaml:"contact_max_blips"`
}

// DisruptionConfig holds disruption sampling parameters.
type DisruptionConfig struct {
	NoiseBlipsPerUnit float64 `yaml:"noise_blips_per_unit"` // Noise blips per strength*cellSize
}

// PassiveConfig holds passive listening parameters.
type PassiveConfig struct {
	Frequency float64 `yaml:"frequency"` // Angular frequency of the pseudo radius oscillation
	Strength  float64 `yaml:"strength"`  // Ping strength multiplier for passive returns
}

// FlowConfig holds ambient flow-noise parameters.
type FlowConfig struct {
	ChancePerSpeed float64 `yaml:"chance_per_speed"` // Spawn probability per tick per unit of flow speed
	VelocityScale  float64 `yaml:"velocity_scale"`   // Blip drift relative to flow velocity
	MaxChance      float64 `yaml:"max_chance"`
}

// PowerConfig holds sonar power parameters.
type PowerConfig struct {
	MinVoltage  float64 `yaml:"min_voltage"`
	Consumption float64 `yaml:"consumption"` // Charge per second while pinging
	Capacity    float64 `yaml:"capacity"`    // Battery charge, 0 = unlimited
	Recharge    float64 `yaml:"recharge"`    // Charge per second from the generator
	ResetLevel  float64 `yaml:"reset_level"` // Fraction of capacity that closes a tripped breaker
}

// LevelConfig holds demo level generation parameters.
type LevelConfig struct {
	Width              float64 `yaml:"width"`
	Height             float64 `yaml:"height"`
	GridCellSize       float64 `yaml:"grid_cell_size"`
	TerrainThreshold   float64 `yaml:"terrain_threshold"`
	TerrainScale       float64 `yaml:"terrain_scale"`
	DisruptionScale    float64 `yaml:"disruption_scale"`
	DisruptionCutoff   float64 `yaml:"disruption_cutoff"`
	Ruins              int     `yaml:"ruins"`
	FlowTriggers       int     `yaml:"flow_triggers"`
	Creatures          int     `yaml:"creatures"`
	Items              int     `yaml:"items"`
	CreatureSoundRange float64 `yaml:"creature_sound_range"`
	CreatureSpeed      float64 `yaml:"creature_speed"`
	SubmarineSpeed     float64 `yaml:"submarine_speed"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// NetConfig holds sync transport parameters.
type NetConfig struct {
	Listen     string  `yaml:"listen"`
	PingPeriod float64 `yaml:"ping_period"` // Seconds between websocket keepalive pings
	ReadWait   float64 `yaml:"read_wait"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	SectorHalfAngleCos float64 // cos(DirectionalSector/2)
	DisplayScale       float64 // DisplayRadius / Range
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the sonar cannot run with.
func (c *Config) validate() error {
	if c.Sonar.Range <= 0 {
		return fmt.Errorf("sonar.range must be positive, got %v", c.Sonar.Range)
	}
	if c.Sonar.DisplayRadius <= 0 {
		return fmt.Errorf("sonar.display_radius must be positive, got %v", c.Sonar.DisplayRadius)
	}
	if c.Sonar.MinZoom <= 0 || c.Sonar.MaxZoom < c.Sonar.MinZoom {
		return fmt.Errorf("sonar zoom bounds invalid: [%v, %v]", c.Sonar.MinZoom, c.Sonar.MaxZoom)
	}
	if c.Sonar.PingDuration <= 0 {
		return fmt.Errorf("sonar.ping_duration must be positive, got %v", c.Sonar.PingDuration)
	}
	if c.Level.GridCellSize <= 0 {
		return fmt.Errorf("level.grid_cell_size must be positive, got %v", c.Level.GridCellSize)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	halfSector := c.Sonar.DirectionalSector * 0.5 * math.Pi / 180
	c.Derived.SectorHalfAngleCos = math.Cos(halfSector)
	c.Derived.DisplayScale = c.Sonar.DisplayRadius / c.Sonar.Range
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
