package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of frames.
type WindowStats struct {
	WindowStartFrame uint64  `csv:"-"`
	WindowEndFrame   uint64  `csv:"window_end"`
	SimTime          float64 `csv:"sim_time"`

	Particles int    `csv:"particles"`
	NoiseMode string `csv:"noise_mode"`

	// Particle speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Force fields
	Fields         int `csv:"fields"`
	FieldCapacity  int `csv:"field_capacity"`
	FieldsSpawned  int `csv:"fields_spawned"`
	FieldsPlaced   int `csv:"fields_placed"` // User spawns
	FieldsRejected int `csv:"fields_rejected"`
	FieldsCleared  int `csv:"fields_cleared"`

	// Trail
	MeanLuminance float64 `csv:"mean_luminance"`

	Resets int `csv:"resets"`
}

// ComputeSpeedStats returns the mean, standard deviation and 10th/50th/90th
// percentiles of values. values is sorted in place.
func ComputeSpeedStats(values []float64) (mean, std, p10, p50, p90 float64) {
	switch len(values) {
	case 0:
		return 0, 0, 0, 0, 0
	case 1:
		v := values[0]
		return v, 0, v, v, v
	}

	mean, std = stat.MeanStdDev(values, nil)

	slices.Sort(values)
	p10 = stat.Quantile(0.10, stat.Empirical, values, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, values, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, values, nil)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartFrame),
		slog.Uint64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTime),
		slog.Int("particles", s.Particles),
		slog.String("noise_mode", s.NoiseMode),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Int("fields", s.Fields),
		slog.Int("field_capacity", s.FieldCapacity),
		slog.Int("fields_spawned", s.FieldsSpawned),
		slog.Int("fields_placed", s.FieldsPlaced),
		slog.Int("fields_rejected", s.FieldsRejected),
		slog.Int("fields_cleared", s.FieldsCleared),
		slog.Float64("mean_luminance", s.MeanLuminance),
		slog.Int("resets", s.Resets),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
