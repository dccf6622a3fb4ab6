package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/sonar/config"
	"github.com/pthm-cable/sonar/game"
	"github.com/pthm-cable/sonar/telemetry"
)

// FitnessEvaluator runs headless patrols and scores how the scope reads.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 5.0,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Score weights. Quality is in [0, 1]; fitness is its negation.
const (
	weightContacts    = 0.5
	weightReadability = 0.3
	weightCost        = 0.2

	warmupWindows = 1

	contactTarget = 4.0    // contact hits per window that count as "seen"
	blipBudget    = 4000.0 // live blips above this clutter the scope
	sampleBudget  = 2000.0 // sweep samples per tick before cost starts to bite
)

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	qualities := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows, err := fe.runSimulation(x, s)
			if err != nil {
				return
			}
			qualities[idx] = computeQuality(windows)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, q := range qualities {
		total += q
	}
	quality := total / float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = quality
	fe.mu.Unlock()

	return -quality
}

// runSimulation executes a single headless active patrol and returns its stats windows.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) ([]telemetry.WindowStats, error) {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	var windows []telemetry.WindowStats
	g, err := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Mode:           "active",
		Patrol:         true,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}
	return windows, nil
}

// copyConfig returns a private copy of the base config. Config holds only values.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeQuality scores windows in [0, 1]: contacts found, a readable blip
// count and a bounded sampling cost.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= warmupWindows {
		return 0
	}
	valid := windows[warmupWindows:]

	var contactSum, readSum, costSum float64
	blips := make([]float64, 0, len(valid))
	for _, w := range valid {
		contactSum += 1 - math.Exp(-float64(w.ContactHits)/contactTarget)

		over := math.Max(0, w.BlipsP90-blipBudget)
		readSum += math.Exp(-over / blipBudget)

		ticks := float64(w.WindowEndTick - w.WindowStartTick)
		if ticks > 0 {
			perTick := float64(w.Samples) / ticks
			costSum += math.Exp(-perTick / sampleBudget)
		}
		blips = append(blips, w.BlipsMean)
	}

	n := float64(len(valid))
	readability := readSum / n
	// A flickering scope reads worse than a steady one
	readability *= math.Exp(-cv(blips))

	quality := weightContacts*contactSum/n +
		weightReadability*readability +
		weightCost*costSum/n
	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	if mean == 0 {
		return 0
	}
	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff/n) / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
