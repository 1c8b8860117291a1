package engine

import "math/rand"

const (
	// firstObstacleDelayMs is the fixed lead-in scheduled by Start.
	firstObstacleDelayMs = 1200

	// terminalRetainMs is how long a hit or missed obstacle stays in the
	// active collection so collaborators can render its feedback.
	terminalRetainMs = 800
)

// Obstacle is one upcoming target. Once Hit or Missed is set the record is
// immutable; collaborators needing per-obstacle bookkeeping must keep it in
// their own side maps keyed by ID, never on this struct.
type Obstacle struct {
	ID           int
	SpawnTime    float64
	HitTime      float64 // the ideal tap instant; always > SpawnTime
	ApproachTime float64 // HitTime - SpawnTime, for visual interpolation only

	// Position is a derived 1.0 -> 0.0 progress value recomputed every
	// tick. Resolution never reads it.
	Position float64

	Hit    bool
	Missed bool

	// Set only when Hit is true.
	Quality Quality
	HitDiff float64
	Early   bool

	// GraceProtected obstacles exempt a miss from life loss.
	GraceProtected bool

	resolvedAt float64
}

func (o *Obstacle) terminal() bool {
	return o.Hit || o.Missed
}

// scheduler creates obstacles on a tempo-derived cadence and retires them
// after their feedback window. Jitter comes from a seeded generator so two
// engines built with the same seed schedule identically.
type scheduler struct {
	rng         *rand.Rand
	obstacles   []*Obstacle
	nextHitTime float64
	nextID      int
	spawned     int
}

func newScheduler(seed int64) *scheduler {
	s := &scheduler{obstacles: make([]*Obstacle, 0, 16)}
	s.reset(seed)
	return s
}

func (s *scheduler) reset(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
	s.obstacles = s.obstacles[:0]
	s.nextHitTime = 0
	s.nextID = 0
	s.spawned = 0
}

func (s *scheduler) scheduleFirst(now float64) {
	s.nextHitTime = now + firstObstacleDelayMs
}

// spawnDue materializes every obstacle whose approach window has opened,
// scheduling the next hit instant after each. Returns the new obstacles so
// the engine can announce them.
func (s *scheduler) spawnDue(now, tempo, approach float64, variation float64, graceCount int) []*Obstacle {
	var born []*Obstacle
	for now >= s.nextHitTime-approach {
		hit := s.nextHitTime
		spawn := hit - approach
		if spawn < now {
			spawn = now
		}
		if spawn >= hit {
			spawn = hit - 1
		}
		o := &Obstacle{
			ID:             s.nextID,
			SpawnTime:      spawn,
			HitTime:        hit,
			ApproachTime:   hit - spawn,
			Position:       1,
			GraceProtected: s.spawned < graceCount,
		}
		s.nextID++
		s.spawned++
		s.obstacles = append(s.obstacles, o)
		born = append(born, o)

		jitter := 1 + (s.rng.Float64()*2-1)*variation
		s.nextHitTime = hit + tempo*jitter
	}
	return born
}

// purge drops obstacles that have been terminal for the retain window.
// Runs every tick so the active collection stays bounded.
func (s *scheduler) purge(now float64) {
	kept := s.obstacles[:0]
	for _, o := range s.obstacles {
		if o.terminal() && now-o.resolvedAt > terminalRetainMs {
			continue
		}
		kept = append(kept, o)
	}
	// Zero the tail so purged obstacles are collectable.
	for i := len(kept); i < len(s.obstacles); i++ {
		s.obstacles[i] = nil
	}
	s.obstacles = kept
}
