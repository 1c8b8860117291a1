package autoplay

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pulse/internal/engine"
)

// maxRunMs caps a single simulated run. The window shrink guarantees every
// run ends eventually, but a superhuman profile can survive a long time.
const maxRunMs = 10 * 60 * 1000

// RunResult summarizes one simulated run.
type RunResult struct {
	Seed       int64
	DurationMs float64
	Score      int
	MaxCombo   int
	Perfects   int
	Greats     int
	Goods      int
	Misses     int
}

// Summary aggregates a batch of runs.
type Summary struct {
	Runs          int
	MeanDuration  float64 // ms
	MeanScore     float64
	BestScore     int
	BestCombo     int
	HitRate       float64 // resolved hits / spawned obstacles
	MeanErrorMs   float64 // mean absolute timing error across all hits
	TotalPerfects int
	TotalMisses   int
}

// Runner executes batches of simulated runs at a fixed frame step.
type Runner struct {
	cfg     engine.Config
	profile Profile
	frameMs float64
	logger  *log.Logger
}

// NewRunner builds a batch runner. A nil logger silences progress output.
func NewRunner(cfg engine.Config, profile Profile, frameMs float64, logger *log.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if frameMs <= 0 {
		return nil, fmt.Errorf("autoplay: frame step must be positive, got %v", frameMs)
	}
	return &Runner{cfg: cfg, profile: profile, frameMs: frameMs, logger: logger}, nil
}

// Run executes n runs seeded from baseSeed and aggregates them. Identical
// arguments always produce an identical summary.
func (r *Runner) Run(n int, baseSeed int64) (Summary, []RunResult, error) {
	if n < 1 {
		return Summary{}, nil, fmt.Errorf("autoplay: need at least one run, got %d", n)
	}

	results := make([]RunResult, 0, n)
	var sum Summary
	var totalHits, totalObstacles int
	var totalErr float64

	for i := 0; i < n; i++ {
		seed := baseSeed + int64(i)
		res, stats, err := r.runOne(seed)
		if err != nil {
			return Summary{}, nil, err
		}
		results = append(results, res)

		sum.MeanDuration += res.DurationMs
		sum.MeanScore += float64(res.Score)
		if res.Score > sum.BestScore {
			sum.BestScore = res.Score
		}
		if res.MaxCombo > sum.BestCombo {
			sum.BestCombo = res.MaxCombo
		}
		sum.TotalPerfects += res.Perfects
		sum.TotalMisses += res.Misses
		totalHits += res.Perfects + res.Greats + res.Goods
		totalObstacles += stats.Obstacles
		totalErr += stats.TotalErrorMs

		if r.logger != nil {
			r.logger.Debug("run finished",
				"run", i+1,
				"seed", seed,
				"duration_ms", res.DurationMs,
				"score", res.Score,
				"max_combo", res.MaxCombo,
				"misses", res.Misses)
		}
	}

	sum.Runs = n
	sum.MeanDuration /= float64(n)
	sum.MeanScore /= float64(n)
	if totalObstacles > 0 {
		sum.HitRate = float64(totalHits) / float64(totalObstacles)
	}
	if totalHits > 0 {
		sum.MeanErrorMs = totalErr / float64(totalHits)
	}

	if r.logger != nil {
		r.logger.Info("batch finished",
			"runs", sum.Runs,
			"mean_duration_ms", sum.MeanDuration,
			"mean_score", sum.MeanScore,
			"best_score", sum.BestScore,
			"hit_rate", sum.HitRate,
			"mean_error_ms", sum.MeanErrorMs)
	}

	return sum, results, nil
}

func (r *Runner) runOne(seed int64) (RunResult, engine.Stats, error) {
	eng, err := engine.New(r.cfg, seed)
	if err != nil {
		return RunResult{}, engine.Stats{}, err
	}
	player := NewPlayer(r.profile, seed*31+7)

	eng.Start()
	for eng.Phase() == engine.PhaseRunning && eng.Time() < maxRunMs {
		eng.Update(r.frameMs)
		snap := eng.Snapshot()
		player.Observe(snap)
		for _, at := range player.DueTaps(snap.Time) {
			eng.Tap(at)
		}
	}

	snap := eng.Snapshot()
	stats := eng.Stats()
	return RunResult{
		Seed:       seed,
		DurationMs: snap.Time,
		Score:      snap.Score,
		MaxCombo:   snap.MaxCombo,
		Perfects:   stats.Perfects,
		Greats:     stats.Greats,
		Goods:      stats.Goods,
		Misses:     stats.Misses,
	}, stats, nil
}
