package sonar

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/config"
)

// Configuration boundary errors. Setters return these wrapped and keep the
// previous valid value.
var (
	ErrInvalidRange     = errors.New("sonar: range must be positive and finite")
	ErrInvalidDirection = errors.New("sonar: direction must be a finite non-zero vector")
	ErrInvalidZoom      = errors.New("sonar: zoom must be finite")
	ErrUnknownMode      = errors.New("sonar: unknown mode")
)

// Mode is the sonar operating mode.
type Mode uint8

const (
	ModeOff Mode = iota
	ModePassive
	ModeActive
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModePassive:
		return "passive"
	case ModeActive:
		return "active"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode parses a mode name as written in config files.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "off":
		return ModeOff, nil
	case "passive", "":
		return ModePassive, nil
	case "active":
		return ModeActive, nil
	}
	return ModeOff, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Configuration is the operator-facing sonar state.
type Configuration struct {
	Range                float64
	Zoom                 float64
	MinZoom, MaxZoom     float64
	Mode                 Mode
	Directional          bool
	Direction            r2.Vec // always a finite unit vector
	SectorHalfAngleCos   float64
	DetectSubmarineWalls bool
}

// Validate checks the invariants of a configuration.
func (c Configuration) Validate() error {
	if !(c.Range > 0) || math.IsInf(c.Range, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidRange, c.Range)
	}
	if math.IsNaN(c.Zoom) || math.IsInf(c.Zoom, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidZoom, c.Zoom)
	}
	if !isFinite(c.Direction) || r2.Norm(c.Direction) < epsilon {
		return fmt.Errorf("%w: %v", ErrInvalidDirection, c.Direction)
	}
	if c.Mode > ModeActive {
		return fmt.Errorf("%w: %d", ErrUnknownMode, c.Mode)
	}
	return nil
}

// Params holds the tunable sampling constants shared by the sweep components.
type Params struct {
	DisplayRadius float64
	PingDuration  float64
	FadeRate      float64
	MaxBlips      int

	TerrainLineStep, TerrainZStep float64
	HullLineStep, HullZStep       float64
	RuinLineStep, RuinZStep       float64
	FloorLineStep, FloorZStep     float64
	ZStepGrowth                   float64
	DedupDistance                 float64
	StepJitter                    float64
	Scatter                       float64
	CellRadius                    int
	ContactMaxBlips               int

	NoiseBlipsPerUnit float64

	PassiveFrequency float64
	PassiveStrength  float64

	FlowChancePerSpeed float64
	FlowVelocityScale  float64
	FlowMaxChance      float64

	MinVoltage float64
}

// ParamsFromConfig extracts sweep parameters from the loaded config.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		DisplayRadius:      cfg.Sonar.DisplayRadius,
		PingDuration:       cfg.Sonar.PingDuration,
		FadeRate:           cfg.Sonar.FadeRate,
		MaxBlips:           cfg.Sonar.MaxBlips,
		TerrainLineStep:    cfg.Sweep.TerrainLineStep,
		TerrainZStep:       cfg.Sweep.TerrainZStep,
		HullLineStep:       cfg.Sweep.HullLineStep,
		HullZStep:          cfg.Sweep.HullZStep,
		RuinLineStep:       cfg.Sweep.RuinLineStep,
		RuinZStep:          cfg.Sweep.RuinZStep,
		FloorLineStep:      cfg.Sweep.FloorLineStep,
		FloorZStep:         cfg.Sweep.FloorZStep,
		ZStepGrowth:        cfg.Sweep.ZStepGrowth,
		DedupDistance:      cfg.Sweep.DedupDistance,
		StepJitter:         cfg.Sweep.StepJitter,
		Scatter:            cfg.Sweep.Scatter,
		CellRadius:         cfg.Sweep.CellRadius,
		ContactMaxBlips:    cfg.Sweep.ContactMaxBlips,
		NoiseBlipsPerUnit:  cfg.Disruption.NoiseBlipsPerUnit,
		PassiveFrequency:   cfg.Passive.Frequency,
		PassiveStrength:    cfg.Passive.Strength,
		FlowChancePerSpeed: cfg.Flow.ChancePerSpeed,
		FlowVelocityScale:  cfg.Flow.VelocityScale,
		FlowMaxChance:      cfg.Flow.MaxChance,
		MinVoltage:         cfg.Power.MinVoltage,
	}
}

// ConfigurationFromConfig builds the initial operator configuration.
func ConfigurationFromConfig(cfg *config.Config) (Configuration, error) {
	mode, err := ParseMode(cfg.Sonar.StartMode)
	if err != nil {
		return Configuration{}, err
	}
	c := Configuration{
		Range:                cfg.Sonar.Range,
		Zoom:                 cfg.Sonar.MinZoom,
		MinZoom:              cfg.Sonar.MinZoom,
		MaxZoom:              cfg.Sonar.MaxZoom,
		Mode:                 mode,
		Direction:            r2.Vec{X: 1, Y: 0},
		SectorHalfAngleCos:   cfg.Derived.SectorHalfAngleCos,
		DetectSubmarineWalls: cfg.Sonar.DetectSubmarineWalls,
	}
	if err := c.Validate(); err != nil {
		return Configuration{}, err
	}
	return c, nil
}
