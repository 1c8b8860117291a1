package engine

import "math"

// Phase is the lifecycle state of a run.
type Phase string

const (
	PhaseReady   Phase = "ready"
	PhaseRunning Phase = "running"
	PhaseDead    Phase = "dead"
)

// Grace-protected misses take a smaller momentum penalty and floor higher
// than the full penalty's floor of zero.
const (
	graceMissPenalty   = 0.05
	graceMomentumFloor = 0.10
)

// Cosmetic hint decay rates, in intensity per millisecond. These relax even
// during hitstop.
const (
	screenShakeDecayPerMs = 1.0 / 180
	flashDecayPerMs       = 1.0 / 260
)

// Flash colors advised to the renderer per tier.
const (
	flashColorPerfect = "#ffd75f"
	flashColorGreat   = "#5fd7ff"
	flashColorGood    = "#87af87"
	flashColorMiss    = "#d75f5f"
)

// HitResult is returned by Tap when an obstacle resolves.
type HitResult struct {
	Quality     Quality
	PrecisionMs float64 // absolute timing error
	Early       bool
	Obstacle    Obstacle // value copy, safe to retain
}

// Engine is the simulation core. Not safe for concurrent use: the caller
// must serialize Start, Update, Tap, Reset, and Snapshot, e.g. by invoking
// them from a single frame loop.
type Engine struct {
	cfg   Config
	seed  int64
	bus   *dispatcher
	sched *scheduler

	phase      Phase
	time       float64
	momentum   float64
	lives      int
	score      int
	multiplier float64
	combo      int
	maxCombo   int

	// Derived each tick from momentum, cached for collaborators.
	tempo float64
	speed float64

	distance         float64
	hitstopRemaining float64

	// Advisory outputs for the renderer, not simulation state.
	screenShake    float64
	flashIntensity float64
	flashColor     string

	lastHit *HitResult
	stats   Stats
	hitLog  []HitRecord
}

// New validates cfg and builds an engine in the ready phase. The seed feeds
// the scheduler's spawn jitter; the same seed and call sequence reproduce
// the same run bit for bit.
func New(cfg Config, seed int64) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:   cfg,
		seed:  seed,
		bus:   newDispatcher(),
		sched: newScheduler(seed),
	}
	e.Reset()
	return e, nil
}

// Config returns the engine's immutable tuning.
func (e *Engine) Config() Config {
	return e.cfg
}

// Phase returns the current lifecycle phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Time returns the simulation clock in milliseconds. Tap timestamps must be
// expressed on this clock.
func (e *Engine) Time() float64 {
	return e.time
}

// On registers a listener for an event. Delivery is synchronous and in
// registration order. Listeners survive Reset; they are discarded only with
// the engine itself.
func (e *Engine) On(t EventType, h Handler) {
	e.bus.on(t, h)
}

// Reset reinitializes all simulation state: phase ready, default momentum
// and lives, empty obstacles, zeroed stats and log. Configuration and
// listeners are untouched. This is the only transition out of dead.
func (e *Engine) Reset() {
	e.phase = PhaseReady
	e.time = 0
	e.momentum = e.cfg.StartingMomentum
	e.lives = e.cfg.StartingLives
	e.score = 0
	e.multiplier = 1
	e.combo = 0
	e.maxCombo = 0
	e.tempo = e.tempoAt(e.momentum)
	e.speed = e.speedAt(e.momentum)
	e.distance = 0
	e.hitstopRemaining = 0
	e.screenShake = 0
	e.flashIntensity = 0
	e.flashColor = ""
	e.lastHit = nil
	e.stats = Stats{}
	e.hitLog = nil
	e.sched.reset(e.seed)
}

// Start transitions ready -> running and schedules the first obstacle after
// a fixed lead-in. A no-op in any other phase.
func (e *Engine) Start() {
	if e.phase != PhaseReady {
		return
	}
	e.phase = PhaseRunning
	e.sched.scheduleFirst(e.time)
}

// Update advances the simulation by dt milliseconds. A no-op unless running.
// While hitstop is pending the tick does no clock or obstacle work; only the
// cosmetic hints relax. Misses are detected and applied here, never in Tap,
// and the purge runs every tick so the obstacle collection stays bounded.
func (e *Engine) Update(dt float64) {
	if e.phase != PhaseRunning || dt < 0 {
		return
	}

	e.decayCosmetics(dt)

	// Frozen sub-state of running: consume the freeze, nothing else moves.
	if e.hitstopRemaining > 0 {
		e.hitstopRemaining -= dt
		if e.hitstopRemaining < 0 {
			e.hitstopRemaining = 0
		}
		return
	}

	e.time += dt
	e.momentum = clamp(e.momentum-e.cfg.MomentumDecayPerSec*dt/1000, 0, 1)
	e.tempo = e.tempoAt(e.momentum)
	e.speed = e.speedAt(e.momentum)
	e.distance += e.speed * dt / 1000

	born := e.sched.spawnDue(e.time, e.tempo, e.approachAt(e.momentum), e.cfg.TempoVariation, e.cfg.GraceObstacles)
	for range born {
		e.stats.Obstacles++
		e.bus.emit(EventBeat, BeatEvent{Momentum: e.momentum})
	}

	for _, o := range e.sched.obstacles {
		if o.terminal() {
			continue
		}
		o.Position = clamp(1-(e.time-o.SpawnTime)/o.ApproachTime, 0, 1)
		if e.time > o.HitTime+e.cfg.MaxLateMs {
			e.applyMiss(o)
			if e.phase != PhaseRunning {
				break
			}
		}
	}

	e.sched.purge(e.time)
}

// TapNow resolves a tap at the current simulation clock.
func (e *Engine) TapNow() *HitResult {
	return e.Tap(e.time)
}

// Tap resolves a tap at instant t, which must already be expressed on the
// engine's clock. Returns nil when the engine is not running, no pending
// obstacle exists, the tap is past the late cutoff, or the timing error
// falls outside every window. A nil return never mutates state; late-window
// obstacles stay pending for Update's miss check.
func (e *Engine) Tap(t float64) *HitResult {
	if e.phase != PhaseRunning {
		return nil
	}

	// Nearest-neighbor match on |t - hitTime| over pending obstacles.
	// Exact distance ties go to the first obstacle in storage order.
	var best *Obstacle
	bestDist := math.Inf(1)
	for _, o := range e.sched.obstacles {
		if o.terminal() {
			continue
		}
		d := math.Abs(t - o.HitTime)
		if d < bestDist {
			best = o
			bestDist = d
		}
	}
	if best == nil {
		return nil
	}

	diff := t - best.HitTime
	if diff > e.cfg.MaxLateMs {
		return nil
	}

	scale := e.difficultyScale(e.time)
	early := diff < 0
	absDiff := math.Abs(diff)

	perfect := e.cfg.PerfectWindow * scale
	if early {
		perfect += e.cfg.EarlyBias
	}

	var q Quality
	switch {
	case absDiff <= perfect:
		q = QualityPerfect
	case absDiff <= e.cfg.GreatWindow*scale:
		q = QualityGreat
	case absDiff <= e.cfg.GoodWindow*scale:
		q = QualityGood
	default:
		return nil
	}

	return e.applyHit(best, q, diff)
}

func (e *Engine) applyHit(o *Obstacle, q Quality, diff float64) *HitResult {
	o.Hit = true
	o.Quality = q
	o.HitDiff = diff
	o.Early = diff < 0
	o.resolvedAt = e.time

	e.momentum = clamp(e.momentum+e.cfg.MomentumBoost.For(q), 0, 1)

	// Multiplier is read before this hit's gain applies.
	e.score += int(math.Round(e.cfg.ScoreBase.For(q) * e.multiplier))
	e.multiplier = clamp(e.multiplier+e.cfg.MultiplierGain.For(q), 1, e.cfg.MaxMultiplier)

	if q == QualityPerfect || q == QualityGreat {
		e.combo++
		if e.combo > e.maxCombo {
			e.maxCombo = e.combo
		}
		if e.combo%e.cfg.ComboLifeReward == 0 {
			e.bus.emit(EventComboMilestone, ComboMilestoneEvent{Combo: e.combo})
			if e.lives < e.cfg.MaxLives {
				e.lives++
				e.bus.emit(EventLifeGain, LifeGainEvent{Lives: e.lives})
			}
		}
	} else {
		e.combo = 0
	}

	if d := e.cfg.Hitstop.For(q); d > 0 {
		e.hitstopRemaining = d
	}

	switch q {
	case QualityPerfect:
		e.screenShake = 1
		e.flashIntensity = 1
		e.flashColor = flashColorPerfect
	case QualityGreat:
		e.screenShake = 0.5
		e.flashIntensity = 0.7
		e.flashColor = flashColorGreat
	case QualityGood:
		e.screenShake = 0.2
		e.flashIntensity = 0.4
		e.flashColor = flashColorGood
	}

	e.recordHit(o)

	res := &HitResult{
		Quality:     q,
		PrecisionMs: math.Abs(diff),
		Early:       o.Early,
		Obstacle:    *o,
	}
	e.lastHit = res
	e.bus.emit(EventHit, HitEvent{
		Quality:     q,
		PrecisionMs: res.PrecisionMs,
		Early:       res.Early,
		Obstacle:    *o,
	})
	return res
}

func (e *Engine) applyMiss(o *Obstacle) {
	o.Missed = true
	o.resolvedAt = e.time

	e.combo = 0
	e.multiplier = 1

	if o.GraceProtected {
		m := e.momentum - graceMissPenalty
		if m < graceMomentumFloor {
			m = graceMomentumFloor
		}
		e.momentum = m
	} else {
		e.momentum = clamp(e.momentum-e.cfg.MissMomentumPenalty, 0, 1)
		e.lives--
	}

	e.flashIntensity = 0.6
	e.flashColor = flashColorMiss

	e.recordMiss(o)
	e.bus.emit(EventMiss, MissEvent{Obstacle: *o, GraceProtected: o.GraceProtected})

	if !o.GraceProtected && e.lives <= 0 {
		e.phase = PhaseDead
		e.bus.emit(EventDeath, DeathEvent{})
	}
}

func (e *Engine) decayCosmetics(dt float64) {
	e.screenShake -= dt * screenShakeDecayPerMs
	if e.screenShake < 0 {
		e.screenShake = 0
	}
	e.flashIntensity -= dt * flashDecayPerMs
	if e.flashIntensity <= 0 {
		e.flashIntensity = 0
		e.flashColor = ""
	}
}
