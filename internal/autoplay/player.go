// Package autoplay scripts simulated runs against the engine for tuning
// analysis. It is a pure consumer of Start, Update, Tap, and Snapshot; it
// never reaches into obstacle internals. All of its own timing randomness
// comes from a seeded generator so batches are reproducible.
package autoplay

import (
	"math/rand"
	"sort"

	"github.com/vovakirdan/tui-pulse/internal/engine"
)

// Profile describes a simulated player's tap timing.
type Profile struct {
	// MeanOffsetMs shifts every planned tap; positive taps late.
	MeanOffsetMs float64
	// StdDevMs is the Gaussian spread around the shifted instant.
	StdDevMs float64
	// SkipChance is the probability an obstacle is never tapped at all.
	SkipChance float64
}

// DefaultProfile is a decent-but-human player: slightly late on average,
// with enough spread to graze the outer windows now and then.
func DefaultProfile() Profile {
	return Profile{
		MeanOffsetMs: 8,
		StdDevMs:     35,
		SkipChance:   0.02,
	}
}

// Player plans one tap per obstacle it observes. Planned tap times live in
// a side table keyed by obstacle id, owned here; they are never written
// onto the engine's obstacle records.
type Player struct {
	profile Profile
	rng     *rand.Rand
	planned map[int]float64 // obstacle id -> tap instant on the engine clock
	done    map[int]bool    // obstacle ids already tapped or skipped
}

// NewPlayer builds a player with its own seeded timing source.
func NewPlayer(profile Profile, seed int64) *Player {
	return &Player{
		profile: profile,
		rng:     rand.New(rand.NewSource(seed)),
		planned: make(map[int]float64),
		done:    make(map[int]bool),
	}
}

// Reset clears the plan between runs. The generator is not re-seeded; a
// batch wants independent runs, and reproducibility comes from the seed the
// player was built with.
func (p *Player) Reset() {
	p.planned = make(map[int]float64)
	p.done = make(map[int]bool)
}

// Observe plans taps for obstacles that appeared since the last snapshot.
func (p *Player) Observe(snap engine.Snapshot) {
	for _, o := range snap.Obstacles {
		if o.Hit || o.Missed || p.done[o.ID] {
			continue
		}
		if _, ok := p.planned[o.ID]; ok {
			continue
		}
		if p.rng.Float64() < p.profile.SkipChance {
			p.done[o.ID] = true
			continue
		}
		hitTime := snap.Time + o.HitIn
		p.planned[o.ID] = hitTime + p.profile.MeanOffsetMs + p.rng.NormFloat64()*p.profile.StdDevMs
	}
}

// DueTaps pops every planned tap whose instant has been reached. The
// returned times are on the engine clock, ready to pass to Tap, sorted so
// same-frame taps resolve in a stable order.
func (p *Player) DueTaps(now float64) []float64 {
	var due []float64
	for id, at := range p.planned {
		if at <= now {
			due = append(due, at)
			p.done[id] = true
			delete(p.planned, id)
		}
	}
	sort.Float64s(due)
	return due
}
