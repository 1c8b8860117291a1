// Package engine implements the deterministic simulation core of Pulse.
// It turns frame ticks and tap timestamps into an authoritative game state:
// obstacle lifecycle, timing-window tap resolution, scoring, a momentum meter
// that drives the pacing curves, and a bounded life count that ends the run.
//
// The engine performs no I/O, no logging, and no internal scheduling. All
// mutation happens synchronously inside Start, Update, Tap, and Reset, and
// the caller must serialize those calls. Collaborators (renderer, audio,
// batch drivers) consume Snapshot and the event bus, never the live state.
package engine

import "fmt"

// Quality classifies a resolved tap by absolute timing error.
type Quality string

const (
	QualityPerfect Quality = "perfect"
	QualityGreat   Quality = "great"
	QualityGood    Quality = "good"

	// QualityOk is a reserved fourth tier. Tap resolution never produces
	// it; it exists so collaborators can switch exhaustively over tiers
	// that may be wired in later.
	QualityOk Quality = "ok"

	// QualityMiss marks hit-log entries for obstacles that timed out.
	QualityMiss Quality = "miss"
)

// TierValues holds one numeric parameter per produced quality tier.
type TierValues struct {
	Perfect float64 `yaml:"perfect"`
	Great   float64 `yaml:"great"`
	Good    float64 `yaml:"good"`
}

// For returns the value for the given tier. Only the three produced tiers
// are valid; anything else returns zero.
func (t TierValues) For(q Quality) float64 {
	switch q {
	case QualityPerfect:
		return t.Perfect
	case QualityGreat:
		return t.Great
	case QualityGood:
		return t.Good
	default:
		return 0
	}
}

// Config is the immutable set of tunables for one engine instance.
// All durations are simulation milliseconds. Overrides are merged
// field-by-field at load time (see internal/config); New validates the
// merged result and rejects out-of-range values.
type Config struct {
	// Tap timing windows: half-widths of the three nested hit tiers.
	PerfectWindow float64 `yaml:"perfect_window"`
	GreatWindow   float64 `yaml:"great_window"`
	GoodWindow    float64 `yaml:"good_window"`
	// EarlyBias widens only the perfect window, and only for early taps.
	EarlyBias float64 `yaml:"early_bias"`
	// MaxLateMs is the hard late cutoff after which a pending obstacle can
	// no longer be resolved by a tap and will be marked missed by Update.
	MaxLateMs float64 `yaml:"max_late_ms"`

	// Hitstop is the simulation-time freeze applied per hit tier.
	Hitstop TierValues `yaml:"hitstop"`

	// Momentum dynamics.
	MomentumBoost       TierValues `yaml:"momentum_boost"`
	MissMomentumPenalty float64    `yaml:"miss_momentum_penalty"`
	MomentumDecayPerSec float64    `yaml:"momentum_decay_per_sec"`
	StartingMomentum    float64    `yaml:"starting_momentum"`

	// Scoring.
	ScoreBase      TierValues `yaml:"score_base"`
	MultiplierGain TierValues `yaml:"multiplier_gain"`
	MaxMultiplier  float64    `yaml:"max_multiplier"`

	// Rhythm curve: tempo is the interval between successive obstacle
	// hit instants, shrinking exponentially with momentum.
	BaseTempo      float64 `yaml:"base_tempo"`
	MinTempo       float64 `yaml:"min_tempo"`
	TempoRatio     float64 `yaml:"tempo_ratio"`
	TempoVariation float64 `yaml:"tempo_variation"`

	// Difficulty escalation: all tap windows shrink after
	// WindowShrinkStart, flooring at 20% of their base width.
	WindowShrinkStart float64 `yaml:"window_shrink_start"`
	WindowShrinkRate  float64 `yaml:"window_shrink_rate"`

	// Survivability.
	GraceObstacles  int `yaml:"grace_obstacles"`
	StartingLives   int `yaml:"starting_lives"`
	MaxLives        int `yaml:"max_lives"`
	ComboLifeReward int `yaml:"combo_life_reward"`

	// Visibility curve: how long an obstacle approaches before its hit
	// instant. Decoupled from tempo; at high momentum several obstacles
	// are visible at once.
	BaseApproachTime float64 `yaml:"base_approach_time"`
	MinApproachTime  float64 `yaml:"min_approach_time"`
	ApproachRatio    float64 `yaml:"approach_ratio"`

	// Cosmetic speed curve, exposed to collaborators only.
	BaseSpeed float64 `yaml:"base_speed"`
	MaxSpeed  float64 `yaml:"max_speed"`
}

// DefaultConfig returns the shipped tuning.
func DefaultConfig() Config {
	return Config{
		PerfectWindow: 50,
		GreatWindow:   100,
		GoodWindow:    150,
		EarlyBias:     15,
		MaxLateMs:     200,

		Hitstop: TierValues{Perfect: 60, Great: 30, Good: 0},

		MomentumBoost:       TierValues{Perfect: 0.035, Great: 0.02, Good: -0.01},
		MissMomentumPenalty: 0.15,
		MomentumDecayPerSec: 0.004,
		StartingMomentum:    0.15,

		ScoreBase:      TierValues{Perfect: 300, Great: 150, Good: 50},
		MultiplierGain: TierValues{Perfect: 0.10, Great: 0.05, Good: -0.25},
		MaxMultiplier:  8,

		BaseTempo:      1100,
		MinTempo:       280,
		TempoRatio:     0.40,
		TempoVariation: 0.08,

		WindowShrinkStart: 30000,
		WindowShrinkRate:  0.012,

		GraceObstacles:  5,
		StartingLives:   3,
		MaxLives:        5,
		ComboLifeReward: 50,

		BaseApproachTime: 2000,
		MinApproachTime:  650,
		ApproachRatio:    0.45,

		BaseSpeed: 180,
		MaxSpeed:  640,
	}
}

// Validate rejects parameter combinations the simulation cannot run on.
// Called by New so a bad override fails at construction, not mid-run.
func (c Config) Validate() error {
	if c.PerfectWindow <= 0 || c.GreatWindow <= 0 || c.GoodWindow <= 0 {
		return fmt.Errorf("engine: timing windows must be positive (perfect=%v great=%v good=%v)",
			c.PerfectWindow, c.GreatWindow, c.GoodWindow)
	}
	if c.PerfectWindow > c.GreatWindow || c.GreatWindow > c.GoodWindow {
		return fmt.Errorf("engine: timing windows must nest perfect <= great <= good (got %v/%v/%v)",
			c.PerfectWindow, c.GreatWindow, c.GoodWindow)
	}
	if c.EarlyBias < 0 {
		return fmt.Errorf("engine: early_bias must be >= 0, got %v", c.EarlyBias)
	}
	if c.MaxLateMs <= 0 {
		return fmt.Errorf("engine: max_late_ms must be positive, got %v", c.MaxLateMs)
	}
	if c.Hitstop.Perfect < 0 || c.Hitstop.Great < 0 || c.Hitstop.Good < 0 {
		return fmt.Errorf("engine: hitstop durations must be >= 0")
	}
	if c.MissMomentumPenalty < 0 || c.MomentumDecayPerSec < 0 {
		return fmt.Errorf("engine: momentum penalties must be >= 0")
	}
	if c.StartingMomentum < 0 || c.StartingMomentum > 1 {
		return fmt.Errorf("engine: starting_momentum must be in [0,1], got %v", c.StartingMomentum)
	}
	if c.ScoreBase.Perfect < 0 || c.ScoreBase.Great < 0 || c.ScoreBase.Good < 0 {
		return fmt.Errorf("engine: score_base values must be >= 0")
	}
	if c.MaxMultiplier < 1 {
		return fmt.Errorf("engine: max_multiplier must be >= 1, got %v", c.MaxMultiplier)
	}
	if c.MinTempo <= 0 || c.BaseTempo < c.MinTempo {
		return fmt.Errorf("engine: need base_tempo >= min_tempo > 0 (base=%v min=%v)", c.BaseTempo, c.MinTempo)
	}
	if c.TempoRatio <= 0 || c.TempoRatio > 1 {
		return fmt.Errorf("engine: tempo_ratio must be in (0,1], got %v", c.TempoRatio)
	}
	if c.TempoVariation < 0 || c.TempoVariation >= 1 {
		return fmt.Errorf("engine: tempo_variation must be in [0,1), got %v", c.TempoVariation)
	}
	if c.WindowShrinkStart < 0 || c.WindowShrinkRate < 0 {
		return fmt.Errorf("engine: window shrink parameters must be >= 0")
	}
	if c.GraceObstacles < 0 {
		return fmt.Errorf("engine: grace_obstacles must be >= 0, got %d", c.GraceObstacles)
	}
	if c.StartingLives < 1 || c.MaxLives < c.StartingLives {
		return fmt.Errorf("engine: need max_lives >= starting_lives >= 1 (starting=%d max=%d)",
			c.StartingLives, c.MaxLives)
	}
	if c.ComboLifeReward < 1 {
		return fmt.Errorf("engine: combo_life_reward must be >= 1, got %d", c.ComboLifeReward)
	}
	if c.MinApproachTime <= 0 || c.BaseApproachTime < c.MinApproachTime {
		return fmt.Errorf("engine: need base_approach_time >= min_approach_time > 0 (base=%v min=%v)",
			c.BaseApproachTime, c.MinApproachTime)
	}
	if c.ApproachRatio <= 0 || c.ApproachRatio > 1 {
		return fmt.Errorf("engine: approach_ratio must be in (0,1], got %v", c.ApproachRatio)
	}
	if c.BaseSpeed <= 0 || c.MaxSpeed < c.BaseSpeed {
		return fmt.Errorf("engine: need max_speed >= base_speed > 0 (base=%v max=%v)", c.BaseSpeed, c.MaxSpeed)
	}
	return nil
}
