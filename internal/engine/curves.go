package engine

import "math"

// The pacing curves are exponential (Weber-Fechner) interpolations over
// momentum: each equal momentum increment yields a constant percentage
// change, so the perceived acceleration stays uniform.

// tempoAt is the interval between successive hit instants at momentum m.
func (e *Engine) tempoAt(m float64) float64 {
	t := e.cfg.BaseTempo * math.Pow(e.cfg.TempoRatio, m)
	if t < e.cfg.MinTempo {
		t = e.cfg.MinTempo
	}
	return t
}

// speedAt is the cosmetic travel rate exposed to collaborators.
func (e *Engine) speedAt(m float64) float64 {
	return e.cfg.BaseSpeed * math.Pow(e.cfg.MaxSpeed/e.cfg.BaseSpeed, m)
}

// approachAt is how long an obstacle is visible before its hit instant.
// Deliberately decoupled from tempo: tempo sets rhythm, approach sets
// visibility.
func (e *Engine) approachAt(m float64) float64 {
	a := e.cfg.BaseApproachTime * math.Pow(e.cfg.ApproachRatio, m)
	if a < e.cfg.MinApproachTime {
		a = e.cfg.MinApproachTime
	}
	return a
}

// difficultyScaleFloor is the smallest fraction of their base width the tap
// windows ever shrink to.
const difficultyScaleFloor = 0.20

// difficultyScale is the multiplier applied to all three tap windows at
// simulation time t. It is 1 until WindowShrinkStart, then decreases
// linearly and floors at 20%, so every long enough run eventually ends.
func (e *Engine) difficultyScale(t float64) float64 {
	if t <= e.cfg.WindowShrinkStart {
		return 1
	}
	s := 1 - e.cfg.WindowShrinkRate*(t-e.cfg.WindowShrinkStart)/1000
	if s < difficultyScaleFloor {
		s = difficultyScaleFloor
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
