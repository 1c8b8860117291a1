package engine

// Snapshot is a read-only projection of engine state for collaborators.
// Everything in it is a value copy; mutating a snapshot never touches the
// live simulation.
type Snapshot struct {
	Phase      Phase
	Time       float64
	Momentum   float64
	Lives      int
	Score      int
	Multiplier float64
	Combo      int
	MaxCombo   int

	Tempo    float64
	Speed    float64
	Distance float64

	HitstopRemaining float64

	Obstacles []ObstacleView
	LastHit   *HitResult

	// Advisory cosmetic hints for the renderer.
	ScreenShake    float64
	FlashIntensity float64
	FlashColor     string
}

// ObstacleView is the snapshot summary of one active obstacle.
type ObstacleView struct {
	ID       int
	Position float64
	// HitIn is milliseconds until the ideal tap instant, negative once the
	// instant has passed. Snapshot.Time + HitIn recovers the absolute
	// hit time on the engine clock.
	HitIn          float64
	Hit            bool
	Missed         bool
	Quality        Quality
	GraceProtected bool
}

// Snapshot captures the current state.
func (e *Engine) Snapshot() Snapshot {
	obstacles := make([]ObstacleView, 0, len(e.sched.obstacles))
	for _, o := range e.sched.obstacles {
		obstacles = append(obstacles, ObstacleView{
			ID:             o.ID,
			Position:       o.Position,
			HitIn:          o.HitTime - e.time,
			Hit:            o.Hit,
			Missed:         o.Missed,
			Quality:        o.Quality,
			GraceProtected: o.GraceProtected,
		})
	}

	var lastHit *HitResult
	if e.lastHit != nil {
		hit := *e.lastHit
		lastHit = &hit
	}

	return Snapshot{
		Phase:            e.phase,
		Time:             e.time,
		Momentum:         e.momentum,
		Lives:            e.lives,
		Score:            e.score,
		Multiplier:       e.multiplier,
		Combo:            e.combo,
		MaxCombo:         e.maxCombo,
		Tempo:            e.tempo,
		Speed:            e.speed,
		Distance:         e.distance,
		HitstopRemaining: e.hitstopRemaining,
		Obstacles:        obstacles,
		LastHit:          lastHit,
		ScreenShake:      e.screenShake,
		FlashIntensity:   e.flashIntensity,
		FlashColor:       e.flashColor,
	}
}
