package main

import (
	"github.com/pthm-cable/sonar/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of sweep parameters.
// Cell radius, jitter and contact caps stay fixed; they bound cost rather than look.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Line sampling
			{Name: "terrain_line_step", Path: "sweep.terrain_line_step", Min: 150, Max: 800, Default: 350},
			{Name: "hull_line_step", Path: "sweep.hull_line_step", Min: 80, Max: 500, Default: 200},
			{Name: "ruin_line_step", Path: "sweep.ruin_line_step", Min: 60, Max: 400, Default: 150},
			{Name: "floor_line_step", Path: "sweep.floor_line_step", Min: 150, Max: 800, Default: 350},
			// Stacking
			{Name: "terrain_z_step", Path: "sweep.terrain_z_step", Min: 1, Max: 6, Default: 3},
			{Name: "hull_z_step", Path: "sweep.hull_z_step", Min: 1, Max: 5, Default: 2},
			{Name: "ruin_z_step", Path: "sweep.ruin_z_step", Min: 0.5, Max: 4, Default: 1},
			{Name: "floor_z_step", Path: "sweep.floor_z_step", Min: 1, Max: 6, Default: 3},
			{Name: "z_step_growth", Path: "sweep.z_step_growth", Min: 0.1, Max: 2, Default: 0.5},
			// Dedup and scatter
			{Name: "dedup_distance", Path: "sweep.dedup_distance", Min: 50, Max: 600, Default: 200},
			{Name: "scatter", Path: "sweep.scatter", Min: 0, Max: 400, Default: 150},
			// Noise and persistence
			{Name: "noise_blips_per_unit", Path: "disruption.noise_blips_per_unit", Min: 0.002, Max: 0.1, Default: 0.02},
			{Name: "fade_rate", Path: "sonar.fade_rate", Min: 0.1, Max: 2, Default: 0.5},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// fields returns pointers into cfg in Specs order.
func (pv *ParamVector) fields(cfg *config.Config) []*float64 {
	return []*float64{
		&cfg.Sweep.TerrainLineStep,
		&cfg.Sweep.HullLineStep,
		&cfg.Sweep.RuinLineStep,
		&cfg.Sweep.FloorLineStep,
		&cfg.Sweep.TerrainZStep,
		&cfg.Sweep.HullZStep,
		&cfg.Sweep.RuinZStep,
		&cfg.Sweep.FloorZStep,
		&cfg.Sweep.ZStepGrowth,
		&cfg.Sweep.DedupDistance,
		&cfg.Sweep.Scatter,
		&cfg.Disruption.NoiseBlipsPerUnit,
		&cfg.Sonar.FadeRate,
	}
}

// ApplyToConfig applies clamped parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	for i, f := range pv.fields(cfg) {
		*f = clamped[i]
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	fields := pv.fields(cfg)
	v := make([]float64, len(fields))
	for i, f := range fields {
		v[i] = *f
	}
	return v
}
