package engine

// Stats aggregates a run for analysis. The engine appends to it but never
// reads it back; simulation behavior does not depend on these values.
type Stats struct {
	Obstacles    int // total spawned this run
	Perfects     int
	Greats       int
	Goods        int
	Misses       int // all misses, grace-protected included
	GraceMisses  int
	BestCombo    int
	TotalErrorMs float64 // sum of absolute timing error across hits
}

// HitRecord is one append-only hit-log entry, written when an obstacle
// becomes terminal.
type HitRecord struct {
	ObstacleID     int
	Time           float64
	Quality        Quality // QualityMiss for timed-out obstacles
	DiffMs         float64
	Early          bool
	GraceProtected bool
}

// Stats returns a copy of the run aggregates.
func (e *Engine) Stats() Stats {
	return e.stats
}

// HitLog returns a copy of the append-only hit log.
func (e *Engine) HitLog() []HitRecord {
	out := make([]HitRecord, len(e.hitLog))
	copy(out, e.hitLog)
	return out
}

func (e *Engine) recordHit(o *Obstacle) {
	switch o.Quality {
	case QualityPerfect:
		e.stats.Perfects++
	case QualityGreat:
		e.stats.Greats++
	case QualityGood:
		e.stats.Goods++
	}
	if o.HitDiff < 0 {
		e.stats.TotalErrorMs += -o.HitDiff
	} else {
		e.stats.TotalErrorMs += o.HitDiff
	}
	if e.maxCombo > e.stats.BestCombo {
		e.stats.BestCombo = e.maxCombo
	}
	e.hitLog = append(e.hitLog, HitRecord{
		ObstacleID:     o.ID,
		Time:           e.time,
		Quality:        o.Quality,
		DiffMs:         o.HitDiff,
		Early:          o.Early,
		GraceProtected: o.GraceProtected,
	})
}

func (e *Engine) recordMiss(o *Obstacle) {
	e.stats.Misses++
	if o.GraceProtected {
		e.stats.GraceMisses++
	}
	e.hitLog = append(e.hitLog, HitRecord{
		ObstacleID:     o.ID,
		Time:           e.time,
		Quality:        QualityMiss,
		GraceProtected: o.GraceProtected,
	})
}
