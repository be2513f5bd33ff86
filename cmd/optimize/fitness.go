package main

import (
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/flowfield/config"
	"github.com/pthm-cable/flowfield/game"
	"github.com/pthm-cable/flowfield/telemetry"
)

// Target describes the look the optimizer steers toward.
type Target struct {
	Luminance float64 // Mean trail luminance in [0,1]
	Speed     float64 // Median particle speed
}

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxFrames  uint64
	seeds      []int64
	baseConfig *config.Config
	target     Target

	mu          sync.Mutex
	lastQuality float64 // Luminance error of the most recent evaluation
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxFrames uint64, seeds []int64, baseCfg *config.Config, target Target) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxFrames:  maxFrames,
		seeds:      seeds,
		baseConfig: baseCfg,
		target:     target,
	}
}

// LastQuality returns the luminance error from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// stallPenalty is added per window in which the flow stops moving.
const stallPenalty = 0.5

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]float64, len(fe.seeds))
	lumErr := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows := fe.runSimulation(x, s)
			results[idx], lumErr[idx] = fe.computeFitness(windows)
		}(i, seed)
	}
	wg.Wait()

	var total, totalLum float64
	for i := range results {
		total += results[i]
		totalLum += lumErr[i]
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalLum / n
	fe.mu.Unlock()

	return total / n
}

// runSimulation executes a single headless run and returns its stats windows.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) []telemetry.WindowStats {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	// Seeds run concurrently; keep each run single-threaded
	cfg.Simulation.Workers = 1

	g, err := game.NewGame(cfg, game.Options{Headless: true, Seed: seed})
	if err != nil {
		slog.Error("failed to start run", "seed", seed, "error", err)
		return nil
	}
	defer g.Unload()

	var windows []telemetry.WindowStats
	g.SetStatsCallback(func(s telemetry.WindowStats) {
		windows = append(windows, s)
	})

	for g.Frame() < fe.maxFrames {
		g.UpdateHeadless()
	}
	return windows
}

// computeFitness scores a run by relative squared error against the target,
// skipping the first window while the trail fills.
func (fe *FitnessEvaluator) computeFitness(windows []telemetry.WindowStats) (fitness, lumErr float64) {
	if len(windows) < 2 {
		return math.Inf(1), math.Inf(1)
	}

	var lum, speed float64
	stalls := 0
	for _, w := range windows[1:] {
		lum += w.MeanLuminance
		speed += w.SpeedP50
		if w.SpeedP50 < 0.1*fe.target.Speed {
			stalls++
		}
	}
	n := float64(len(windows) - 1)
	lum /= n
	speed /= n

	lumErr = relErr(lum, fe.target.Luminance)
	fitness = lumErr + relErr(speed, fe.target.Speed) + stallPenalty*float64(stalls)
	return fitness, lumErr
}

func relErr(got, want float64) float64 {
	if want == 0 {
		return got * got
	}
	d := (got - want) / want
	return d * d
}
