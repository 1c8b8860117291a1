package engine

import (
	"math"
	"reflect"
	"testing"
)

func newTestEngine(t *testing.T, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := New(cfg, 12345)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// injectObstacle places a pending obstacle directly into the scheduler so a
// test can exercise resolution without driving the spawn cadence.
func injectObstacle(e *Engine, hitTime float64, grace bool) *Obstacle {
	o := &Obstacle{
		ID:             e.sched.nextID,
		SpawnTime:      hitTime - 1000,
		HitTime:        hitTime,
		ApproachTime:   1000,
		Position:       1,
		GraceProtected: grace,
	}
	e.sched.nextID++
	e.sched.spawned++
	e.sched.obstacles = append(e.sched.obstacles, o)
	return o
}

func TestTapOutsideRunningIsNoOp(t *testing.T) {
	e := newTestEngine(t, nil)

	before := e.Snapshot()
	if res := e.Tap(100); res != nil {
		t.Fatalf("Tap while ready should return nil, got %+v", res)
	}
	if !reflect.DeepEqual(before, e.Snapshot()) {
		t.Error("Tap while ready mutated state")
	}

	if res := e.TapNow(); res != nil {
		t.Errorf("TapNow while ready should return nil, got %+v", res)
	}
}

func TestStartOnlyFromReady(t *testing.T) {
	e := newTestEngine(t, nil)

	e.Start()
	if e.Phase() != PhaseRunning {
		t.Fatalf("phase after Start = %v, want running", e.Phase())
	}

	// Second Start must not reschedule the next obstacle.
	e.Update(500)
	next := e.sched.nextHitTime
	e.Start()
	if e.sched.nextHitTime != next {
		t.Error("Start while running rescheduled the first obstacle")
	}
}

func TestUpdateBeforeStartIsNoOp(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Update(1000)
	if e.Time() != 0 {
		t.Errorf("Update before Start advanced the clock to %v", e.Time())
	}
}

func TestFirstObstacleSpawn(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Start()

	for i := 0; i < 200 && len(e.sched.obstacles) == 0; i++ {
		e.Update(16)
	}
	if len(e.sched.obstacles) == 0 {
		t.Fatal("no obstacle spawned")
	}

	o := e.sched.obstacles[0]
	if o.HitTime != firstObstacleDelayMs {
		t.Errorf("first hit instant = %v, want %v", o.HitTime, float64(firstObstacleDelayMs))
	}
	if o.SpawnTime >= o.HitTime {
		t.Errorf("spawnTime %v must precede hitTime %v", o.SpawnTime, o.HitTime)
	}
	if !o.GraceProtected {
		t.Error("first obstacle should be grace protected with default config")
	}
}

func TestPerfectTapScoring(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Start()
	for i := 0; i < 200 && len(e.sched.obstacles) == 0; i++ {
		e.Update(16)
	}
	if len(e.sched.obstacles) == 0 {
		t.Fatal("no obstacle spawned")
	}

	target := e.sched.obstacles[0]
	res := e.Tap(target.HitTime)
	if res == nil {
		t.Fatal("tap at exact hit instant returned nil")
	}
	if res.Quality != QualityPerfect {
		t.Errorf("quality = %v, want perfect", res.Quality)
	}
	if res.PrecisionMs != 0 {
		t.Errorf("precision = %v, want 0", res.PrecisionMs)
	}
	// scoreBase.perfect * multiplier-before-hit (1) = 300 on defaults.
	if e.score != 300 {
		t.Errorf("score = %d, want 300", e.score)
	}
	if !target.Hit || target.Missed {
		t.Error("obstacle should be terminal via hit")
	}
	if e.combo != 1 {
		t.Errorf("combo = %d, want 1", e.combo)
	}
}

func TestWindowClassification(t *testing.T) {
	cases := []struct {
		name string
		diff float64
		want Quality // "" means nil result
	}{
		{"exact", 0, QualityPerfect},
		{"late edge of perfect", 50, QualityPerfect},
		{"early inside bias", -60, QualityPerfect},
		{"early beyond bias", -70, QualityGreat},
		{"late great", 80, QualityGreat},
		{"late good", 120, QualityGood},
		{"early good", -150, QualityGood},
		{"outside all windows", 180, ""},
		{"past late cutoff", 250, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t, nil)
			e.Start()
			o := injectObstacle(e, 1000, false)

			res := e.Tap(1000 + tc.diff)
			if tc.want == "" {
				if res != nil {
					t.Fatalf("diff %v: want nil, got %v", tc.diff, res.Quality)
				}
				if o.Hit || o.Missed {
					t.Error("unresolved tap must leave the obstacle pending")
				}
				return
			}
			if res == nil {
				t.Fatalf("diff %v: want %v, got nil", tc.diff, tc.want)
			}
			if res.Quality != tc.want {
				t.Errorf("diff %v: quality = %v, want %v", tc.diff, res.Quality, tc.want)
			}
			if res.Early != (tc.diff < 0) {
				t.Errorf("diff %v: early = %v", tc.diff, res.Early)
			}
			if res.PrecisionMs != math.Abs(tc.diff) {
				t.Errorf("diff %v: precision = %v", tc.diff, res.PrecisionMs)
			}
		})
	}
}

func TestNearestNeighborTieBreak(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Start()
	first := injectObstacle(e, 900, false)
	second := injectObstacle(e, 1100, false)

	// Equidistant tap: the first obstacle encountered wins.
	res := e.Tap(1000)
	if res == nil {
		t.Fatal("tie tap returned nil")
	}
	if res.Obstacle.ID != first.ID {
		t.Errorf("resolved obstacle %d, want first (%d)", res.Obstacle.ID, first.ID)
	}
	if second.Hit || second.Missed {
		t.Error("losing obstacle must stay pending")
	}
}

func TestGoodHitResetsComboAndMultiplier(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Start()

	injectObstacle(e, 1000, false)
	injectObstacle(e, 2000, false)
	e.Tap(1000)
	if e.combo != 1 {
		t.Fatalf("combo after perfect = %d", e.combo)
	}
	multBefore := e.multiplier

	res := e.Tap(2000 + 120) // good tier
	if res == nil || res.Quality != QualityGood {
		t.Fatalf("expected good hit, got %+v", res)
	}
	if e.combo != 0 {
		t.Errorf("good hit should reset combo, got %d", e.combo)
	}
	if e.multiplier >= multBefore {
		t.Errorf("good hit should lower multiplier: before %v after %v", multBefore, e.multiplier)
	}
	if e.multiplier < 1 {
		t.Errorf("multiplier below floor: %v", e.multiplier)
	}
}

func TestMissOnLateCutoff(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.GraceObstacles = 0 })
	e.Start()
	o := injectObstacle(e, 500, false)

	var missed []MissEvent
	e.On(EventMiss, func(ev Event) {
		missed = append(missed, ev.(MissEvent))
	})

	livesBefore := e.lives
	for e.Time() <= 500+e.cfg.MaxLateMs {
		e.Update(16)
	}
	e.Update(16)

	if !o.Missed {
		t.Fatal("obstacle past late cutoff should be missed")
	}
	if o.Hit {
		t.Error("missed obstacle must not also be hit")
	}
	if e.lives != livesBefore-1 {
		t.Errorf("lives = %d, want %d", e.lives, livesBefore-1)
	}
	if e.combo != 0 || e.multiplier != 1 {
		t.Errorf("miss should reset combo/multiplier, got %d/%v", e.combo, e.multiplier)
	}
	if len(missed) != 1 {
		t.Fatalf("miss events = %d, want 1", len(missed))
	}
	if missed[0].GraceProtected {
		t.Error("miss should not be grace protected")
	}
}

func TestGraceMissKeepsLives(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Start()
	injectObstacle(e, 500, true)

	var missed []MissEvent
	e.On(EventMiss, func(ev Event) {
		missed = append(missed, ev.(MissEvent))
	})

	for e.Time() <= 500+e.cfg.MaxLateMs+32 {
		e.Update(16)
	}

	if e.lives != e.cfg.StartingLives {
		t.Errorf("grace miss changed lives: %d", e.lives)
	}
	if e.combo != 0 || e.multiplier != 1 {
		t.Errorf("grace miss should still reset combo/multiplier, got %d/%v", e.combo, e.multiplier)
	}
	if e.momentum < graceMomentumFloor {
		t.Errorf("grace miss momentum %v below floor %v", e.momentum, graceMomentumFloor)
	}
	if len(missed) != 1 || !missed[0].GraceProtected {
		t.Fatalf("want one grace-protected miss event, got %+v", missed)
	}
}

func TestDeathOnLastLife(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.StartingLives = 1
		c.MaxLives = 1
		c.GraceObstacles = 0
	})
	e.Start()
	injectObstacle(e, 500, false)

	deaths := 0
	e.On(EventDeath, func(Event) { deaths++ })

	for i := 0; i < 200 && e.Phase() == PhaseRunning; i++ {
		e.Update(16)
	}

	if e.Phase() != PhaseDead {
		t.Fatalf("phase = %v, want dead", e.Phase())
	}
	if e.lives != 0 {
		t.Errorf("lives = %d, want 0", e.lives)
	}
	if deaths != 1 {
		t.Errorf("death events = %d, want 1", deaths)
	}

	// Dead engines ignore everything except Reset.
	timeAtDeath := e.Time()
	e.Update(1000)
	if e.Time() != timeAtDeath {
		t.Error("Update after death advanced the clock")
	}
	if res := e.TapNow(); res != nil {
		t.Error("Tap after death should return nil")
	}

	e.Reset()
	if e.Phase() != PhaseReady {
		t.Errorf("phase after Reset = %v, want ready", e.Phase())
	}
}

func TestComboLifeReward(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.ComboLifeReward = 3
		c.StartingLives = 3
		c.MaxLives = 4
	})
	e.Start()

	var milestones []int
	var gains []int
	e.On(EventComboMilestone, func(ev Event) {
		milestones = append(milestones, ev.(ComboMilestoneEvent).Combo)
	})
	e.On(EventLifeGain, func(ev Event) {
		gains = append(gains, ev.(LifeGainEvent).Lives)
	})

	for i := 0; i < 6; i++ {
		o := injectObstacle(e, float64(1000+i*500), false)
		if res := e.Tap(o.HitTime); res == nil || res.Quality != QualityPerfect {
			t.Fatalf("hit %d failed: %+v", i, res)
		}
	}

	if want := []int{3, 6}; !reflect.DeepEqual(milestones, want) {
		t.Errorf("milestones = %v, want %v", milestones, want)
	}
	// First milestone grants a life (3 -> 4); the second finds lives at
	// the cap and grants nothing.
	if want := []int{4}; !reflect.DeepEqual(gains, want) {
		t.Errorf("life gains = %v, want %v", gains, want)
	}
	if e.lives != 4 {
		t.Errorf("lives = %d, want 4", e.lives)
	}
}

func TestHitstopFreezesClockButNotCosmetics(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Start()
	injectObstacle(e, 1000, false)

	if res := e.Tap(1000); res == nil {
		t.Fatal("perfect tap failed")
	}
	if e.hitstopRemaining != e.cfg.Hitstop.Perfect {
		t.Fatalf("hitstop = %v, want %v", e.hitstopRemaining, e.cfg.Hitstop.Perfect)
	}

	timeBefore := e.Time()
	flashBefore := e.flashIntensity
	e.Update(16)

	if e.Time() != timeBefore {
		t.Error("clock advanced during hitstop")
	}
	if e.flashIntensity >= flashBefore {
		t.Error("cosmetic decay should continue during hitstop")
	}

	// Drain the freeze, then the clock moves again.
	for e.hitstopRemaining > 0 {
		e.Update(16)
	}
	e.Update(16)
	if e.Time() == timeBefore {
		t.Error("clock should advance once hitstop is drained")
	}
}

func TestInvariantsHoldUnderChaoticPlay(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Start()

	for i := 0; i < 6000 && e.Phase() == PhaseRunning; i++ {
		e.Update(16)
		if i%7 == 0 {
			e.TapNow() // mostly mistimed, occasionally lands
		}
		if e.momentum < 0 || e.momentum > 1 {
			t.Fatalf("tick %d: momentum %v out of [0,1]", i, e.momentum)
		}
		if e.multiplier < 1 || e.multiplier > e.cfg.MaxMultiplier {
			t.Fatalf("tick %d: multiplier %v out of range", i, e.multiplier)
		}
		if e.lives < 0 || e.lives > e.cfg.MaxLives {
			t.Fatalf("tick %d: lives %d out of range", i, e.lives)
		}
		for _, o := range e.sched.obstacles {
			if o.Hit && o.Missed {
				t.Fatalf("tick %d: obstacle %d both hit and missed", i, o.ID)
			}
			if o.SpawnTime >= o.HitTime {
				t.Fatalf("tick %d: obstacle %d spawn %v >= hit %v", i, o.ID, o.SpawnTime, o.HitTime)
			}
		}
	}
}

func TestObstacleCollectionStaysBounded(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Start()

	maxActive := 0
	for i := 0; i < 8000 && e.Phase() == PhaseRunning; i++ {
		e.Update(16)
		if n := len(e.sched.obstacles); n > maxActive {
			maxActive = n
		}
		for _, o := range e.sched.obstacles {
			if o.terminal() && e.Time()-o.resolvedAt > terminalRetainMs+32 {
				t.Fatalf("terminal obstacle %d retained %vms", o.ID, e.Time()-o.resolvedAt)
			}
		}
	}
	// Back-to-back misses must not accumulate: active set stays small even
	// though every obstacle times out.
	if maxActive > 32 {
		t.Errorf("active obstacle count reached %d", maxActive)
	}
}

func TestDeterminism(t *testing.T) {
	run := func() (Snapshot, Stats) {
		e := newTestEngine(t, nil)
		e.Start()
		for i := 0; i < 4000 && e.Phase() == PhaseRunning; i++ {
			e.Update(16.0)
			// Tap whenever a pending obstacle is within 8ms of its instant.
			snap := e.Snapshot()
			for _, o := range snap.Obstacles {
				if !o.Hit && !o.Missed && math.Abs(o.HitIn) <= 8 {
					e.Tap(snap.Time + o.HitIn)
				}
			}
		}
		return e.Snapshot(), e.Stats()
	}

	snap1, stats1 := run()
	snap2, stats2 := run()

	if !reflect.DeepEqual(snap1, snap2) {
		t.Error("seeded runs diverged in snapshot")
	}
	if stats1 != stats2 {
		t.Errorf("seeded runs diverged in stats: %+v vs %+v", stats1, stats2)
	}
}

func TestResetRestoresInitialState(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Start()
	for i := 0; i < 600; i++ {
		e.Update(16)
		if i%11 == 0 {
			e.TapNow()
		}
	}

	e.Reset()
	snap := e.Snapshot()

	if snap.Phase != PhaseReady {
		t.Errorf("phase = %v, want ready", snap.Phase)
	}
	if snap.Time != 0 || snap.Score != 0 || snap.Combo != 0 || snap.Distance != 0 {
		t.Errorf("counters not reset: %+v", snap)
	}
	if snap.Momentum != e.cfg.StartingMomentum {
		t.Errorf("momentum = %v, want %v", snap.Momentum, e.cfg.StartingMomentum)
	}
	if snap.Lives != e.cfg.StartingLives {
		t.Errorf("lives = %d, want %d", snap.Lives, e.cfg.StartingLives)
	}
	if snap.Multiplier != 1 {
		t.Errorf("multiplier = %v, want 1", snap.Multiplier)
	}
	if len(snap.Obstacles) != 0 {
		t.Errorf("obstacles not cleared: %d", len(snap.Obstacles))
	}
	if got := e.Stats(); got != (Stats{}) {
		t.Errorf("stats not cleared: %+v", got)
	}
	if len(e.HitLog()) != 0 {
		t.Error("hit log not cleared")
	}

	// A reset engine replays identically to a fresh one with the same seed.
	e.Start()
	fresh := newTestEngine(t, nil)
	fresh.Start()
	for i := 0; i < 300; i++ {
		e.Update(16)
		fresh.Update(16)
	}
	if !reflect.DeepEqual(e.Snapshot(), fresh.Snapshot()) {
		t.Error("reset engine diverged from fresh engine")
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Start()
	for i := 0; i < 200 && len(e.sched.obstacles) == 0; i++ {
		e.Update(16)
	}

	snap := e.Snapshot()
	if len(snap.Obstacles) == 0 {
		t.Fatal("expected obstacles in snapshot")
	}
	snap.Obstacles[0].Position = -99
	snap.Momentum = -99

	if e.sched.obstacles[0].Position == -99 {
		t.Error("mutating a snapshot reached the live obstacle")
	}
	if e.momentum == -99 {
		t.Error("mutating a snapshot reached live state")
	}
}
