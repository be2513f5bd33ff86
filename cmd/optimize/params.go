package main

import (
	"github.com/pthm-cable/flowfield/config"
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

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "background_strength", Path: "forces.background_strength", Min: 0.2, Max: 2.0, Default: 1.0},
			{Name: "force_field_strength", Path: "forces.force_field_strength", Min: 0.2, Max: 3.0, Default: 1.0},
			{Name: "flow_blend", Path: "forces.flow_blend", Min: 0.05, Max: 1.0, Default: 0.3},
			{Name: "noise_scale", Path: "noise.scale", Min: 0.0005, Max: 0.01, Default: 0.003},
			{Name: "noise_speed", Path: "noise.speed", Min: 0, Max: 0.01, Default: 0.002},
			{Name: "fade", Path: "trail.fade", Min: 0.005, Max: 0.2, Default: 0.03},
			{Name: "opacity", Path: "trail.opacity", Min: 0.05, Max: 1.0, Default: 0.35},
			{Name: "point_size", Path: "trail.point_size", Min: 0.5, Max: 3.0, Default: 1.5},
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
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)

	cfg.Forces.BackgroundStrength = c[0]
	cfg.Forces.ForceFieldStrength = c[1]
	cfg.Forces.FlowBlend = c[2]
	cfg.Noise.Scale = c[3]
	cfg.Noise.Speed = c[4]
	cfg.Trail.Fade = c[5]
	cfg.Trail.Opacity = c[6]
	cfg.Trail.PointSize = c[7]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Forces.BackgroundStrength,
		cfg.Forces.ForceFieldStrength,
		cfg.Forces.FlowBlend,
		cfg.Noise.Scale,
		cfg.Noise.Speed,
		cfg.Trail.Fade,
		cfg.Trail.Opacity,
		cfg.Trail.PointSize,
	}
}
