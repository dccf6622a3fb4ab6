// Package sonar simulates an active/passive sonar scope: expanding ping shells
// are swept against level geometry and entities to produce fading blips.
package sonar

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
)

// Update is a batch of configuration changes from the input or sync layer.
// Nil fields are left unchanged.
type Update struct {
	Mode        *Mode
	Range       *float64
	Zoom        *float64
	Directional *bool
	Direction   *r2.Vec
}

// TickStats describes the last Update call.
type TickStats struct {
	Mode       Mode
	Powered    bool
	Shell      SweepState
	Sweep      SweepStats
	Disruption int // disruption samples this tick
	NoiseBlips int
	FlowBlips  int
	Filtered   int // blips expired by the visibility pass
	Blips      int // live blips after the tick
	Pings      int // active pings started so far
}

// Options wires a controller to its collaborators. Every field is optional.
type Options struct {
	Geometry    GeometrySource
	Targets     TargetSource
	Power       PoweredDevice
	Transducers *TransducerBinding
	Logger      *slog.Logger
	Rng         *rand.Rand
}

// Controller drives one sonar instance per frame.
type Controller struct {
	params   Params
	cfg      Configuration
	behavior Behavior

	registry *BlipRegistry
	field    *DisruptionField
	sweeper  *PingSweeper
	flow     *FlowNoise
	filter   VisibilityFilter

	power       PoweredDevice
	transducers *TransducerBinding
	position    r2.Vec
	degraded    bool

	logger *slog.Logger

	mu      sync.Mutex
	pending []Update

	stats       TickStats
	flowScratch []Blip
}

// NewController creates a controller. cfg must be valid.
func NewController(params Params, cfg Configuration, opts Options) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("initial sonar configuration: %w", err)
	}
	if params.DisplayRadius <= 0 {
		return nil, fmt.Errorf("display radius must be positive, got %v", params.DisplayRadius)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := opts.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	power := opts.Power
	if power == nil {
		power = alwaysPowered{}
	}

	cfg.Direction = unitOrZero(cfg.Direction)
	cfg.Zoom = clamp(cfg.Zoom, cfg.MinZoom, cfg.MaxZoom)

	c := &Controller{
		params:      params,
		cfg:         cfg,
		power:       power,
		transducers: opts.Transducers,
		logger:      logger,
	}
	c.registry = NewBlipRegistry(params.FadeRate, params.MaxBlips)
	c.field = NewDisruptionField(opts.Geometry, &c.params, rng)
	c.sweeper = NewPingSweeper(opts.Geometry, opts.Targets, c.registry, &c.params, rng)
	c.flow = NewFlowNoise(opts.Geometry, &c.params, rng)
	c.filter = VisibilityFilter{DisplayRadius: params.DisplayRadius}
	c.behavior.SetMode(cfg.Mode)

	return c, nil
}

// Registry returns the blip registry consumed by rendering.
func (c *Controller) Registry() *BlipRegistry {
	return c.registry
}

// Configuration returns the current valid configuration.
func (c *Controller) Configuration() Configuration {
	return c.cfg
}

// Stats returns the statistics of the last tick.
func (c *Controller) Stats() TickStats {
	return c.stats
}

// PingFraction returns the elapsed fraction of the current active ping.
func (c *Controller) PingFraction() float64 {
	return c.behavior.PingFraction()
}

// DisplayRadius returns the scope radius in display units.
func (c *Controller) DisplayRadius() float64 {
	return c.params.DisplayRadius
}

// DisplayScale returns the world to display scale, zoom excluded.
func (c *Controller) DisplayScale() float64 {
	return c.params.DisplayRadius / c.cfg.Range
}

// Center returns the scope center in world space: the transducer aggregate
// when one is bound, the device position otherwise.
func (c *Controller) Center() r2.Vec {
	center, _ := c.transducerCenter()
	return center
}

// SetPosition moves the device.
func (c *Controller) SetPosition(p r2.Vec) {
	if !isFinite(p) {
		c.logger.Warn("rejected sonar position", "x", p.X, "y", p.Y)
		return
	}
	c.position = p
}

// SetMode switches the operating mode.
func (c *Controller) SetMode(m Mode) error {
	if m > ModeActive {
		err := fmt.Errorf("%w: %d", ErrUnknownMode, m)
		c.reject("mode", m, err)
		return err
	}
	if m != c.cfg.Mode {
		c.logger.Info("sonar mode changed", "from", c.cfg.Mode.String(), "to", m.String())
	}
	c.cfg.Mode = m
	c.behavior.SetMode(m)
	return nil
}

// SetRange changes the detection range. Non-positive values are rejected.
func (c *Controller) SetRange(r float64) error {
	next := c.cfg
	next.Range = r
	if err := next.Validate(); err != nil {
		c.reject("range", r, err)
		return err
	}
	c.cfg = next
	return nil
}

// SetZoom changes the zoom, clamped to the configured bounds.
func (c *Controller) SetZoom(z float64) error {
	if math.IsNaN(z) || math.IsInf(z, 0) {
		err := fmt.Errorf("%w: %v", ErrInvalidZoom, z)
		c.reject("zoom", z, err)
		return err
	}
	c.cfg.Zoom = clamp(z, c.cfg.MinZoom, c.cfg.MaxZoom)
	return nil
}

// SetDirectional enables or disables the directional ping sector.
func (c *Controller) SetDirectional(on bool) {
	c.cfg.Directional = on
}

// SetDirection points the directional sector. NaN and zero vectors are rejected.
func (c *Controller) SetDirection(dir r2.Vec) error {
	if !isFinite(dir) || r2.Norm(dir) < epsilon {
		err := fmt.Errorf("%w: %v", ErrInvalidDirection, dir)
		c.reject("direction", dir, err)
		return err
	}
	c.cfg.Direction = unitOrZero(dir)
	return nil
}

func (c *Controller) reject(field string, value any, err error) {
	c.logger.Warn("rejected sonar configuration", "field", field, "value", value, "error", err)
}

// Submit queues an update for the start of the next tick. Safe for concurrent use.
func (c *Controller) Submit(u Update) {
	c.mu.Lock()
	c.pending = append(c.pending, u)
	c.mu.Unlock()
}

// applyPending applies queued updates in submission order.
func (c *Controller) applyPending() {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, u := range pending {
		c.Apply(u)
	}
}

// Apply applies an update immediately. Invalid fields are rejected individually.
func (c *Controller) Apply(u Update) {
	if u.Range != nil {
		_ = c.SetRange(*u.Range)
	}
	if u.Zoom != nil {
		_ = c.SetZoom(*u.Zoom)
	}
	if u.Directional != nil {
		c.SetDirectional(*u.Directional)
	}
	if u.Direction != nil {
		_ = c.SetDirection(*u.Direction)
	}
	if u.Mode != nil {
		_ = c.SetMode(*u.Mode)
	}
}

// transducerCenter resolves the scope center and signal strength.
func (c *Controller) transducerCenter() (r2.Vec, float64) {
	pos, strength, ok := c.transducers.Aggregate()
	if ok {
		if c.degraded {
			c.logger.Info("transducer binding restored")
			c.degraded = false
		}
		return pos, strength
	}
	if c.transducers.Len() > 0 && !c.degraded {
		c.logger.Warn("transducer binding lost, using device position")
		c.degraded = true
	}
	return c.position, 1
}

func (c *Controller) powered() bool {
	return c.power.Voltage() >= c.params.MinVoltage
}

// Update runs one frame: apply pending configuration, age blips and, unless the
// sonar is off or unpowered, sweep the new shell and filter the result.
func (c *Controller) Update(dt float64) {
	c.applyPending()

	c.stats = TickStats{Mode: c.cfg.Mode}
	c.registry.Update(dt)

	c.stats.Powered = c.powered()
	if c.cfg.Mode == ModeOff || !c.stats.Powered {
		c.stats.Blips = c.registry.Len()
		c.stats.Pings = c.behavior.Pings()
		return
	}

	center, strength := c.transducerCenter()
	scale := c.DisplayScale()
	passive := c.cfg.Mode == ModePassive

	var shell SweepState
	if passive {
		shell = c.behavior.AdvancePassive(dt, c.params.PassiveFrequency, c.params.DisplayRadius, c.cfg.Zoom)
	} else {
		shell = c.behavior.AdvanceActive(dt, c.params.PingDuration, c.params.DisplayRadius, c.cfg.Zoom)
	}
	c.stats.Shell = shell

	// Directional pinging only shapes active pulses
	filterCfg := c.cfg
	if passive {
		filterCfg.Directional = false
	}

	samples := c.field.Refresh(center, SearchRadius(c.cfg.Range, shell.Current/scale), shell, scale)
	c.stats.Disruption = len(samples)
	c.stats.NoiseBlips = c.addBlips(c.field.NoiseBlips(), center, scale, filterCfg, passive)

	c.sweeper.Prepare(filterCfg, samples)
	if passive {
		c.stats.Sweep = c.sweeper.SweepPassive(center, shell, scale, c.cfg.Range, strength*c.params.PassiveStrength)
	} else {
		c.stats.Sweep = c.sweeper.Sweep(Ping{
			Source:           center,
			TransducerCenter: center,
			Shell:            shell,
			Scale:            scale,
			Range:            c.cfg.Range,
			Strength:         strength,
		})
	}

	c.flowScratch = c.flow.Generate(center, c.cfg.Range/c.cfg.Zoom, c.flowScratch[:0])
	c.stats.FlowBlips = c.addBlips(c.flowScratch, center, scale, filterCfg, passive)

	c.stats.Filtered = c.filter.Apply(c.registry, center, scale, filterCfg)
	c.stats.Blips = c.registry.Len()
	c.stats.Pings = c.behavior.Pings()
}

// addBlips inserts generated blips, dropping the ones an active ping could not show.
func (c *Controller) addBlips(blips []Blip, center r2.Vec, scale float64, cfg Configuration, passive bool) int {
	added := 0
	for _, b := range blips {
		if !passive && !c.filter.Accepts(b.Position, center, scale, cfg) {
			continue
		}
		if c.registry.Add(b) {
			added++
		}
	}
	return added
}
