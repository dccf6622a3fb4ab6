package game

import (
	"github.com/pthm-cable/sonar/config"
	"github.com/pthm-cable/sonar/telemetry"
)

// Options configures a game run.
type Options struct {
	Seed           int64
	Headless       bool
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	OutputDir      string  // CSV logs, config copy and snapshots; empty disables
	SnapshotDir    string  // bookmark snapshots when OutputDir is empty
	StepsPerUpdate int
	Mode           string // start mode override; empty = config
	Patrol         bool   // steer the submarine automatically
	ASCIIEvery     int    // headless: log the text scope every N ticks, 0 = never
	Listen         string // sync hub listen address; empty = config
	Connect        string // peer hub URL to join

	// Config overrides the global configuration, for parallel runs.
	Config *config.Config
	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// DefaultOptions returns options for an interactive run.
func DefaultOptions() Options {
	return Options{
		Seed:           42,
		StepsPerUpdate: 1,
	}
}
