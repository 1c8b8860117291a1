package engine

// EventType names the events an engine emits to its collaborators.
type EventType string

const (
	EventBeat           EventType = "beat"
	EventHit            EventType = "hit"
	EventMiss           EventType = "miss"
	EventComboMilestone EventType = "comboMilestone"
	EventLifeGain       EventType = "lifeGain"
	EventDeath          EventType = "death"
)

// Event is the payload carried by an emission. Payloads hold value copies
// only, so a listener can never mutate engine state through one.
type Event interface {
	engineEvent()
}

// BeatEvent fires when the scheduler materializes an obstacle.
type BeatEvent struct {
	Momentum float64
}

func (BeatEvent) engineEvent() {}

// HitEvent fires when a tap resolves an obstacle.
type HitEvent struct {
	Quality     Quality
	PrecisionMs float64
	Early       bool
	Obstacle    Obstacle
}

func (HitEvent) engineEvent() {}

// MissEvent fires when Update marks an obstacle missed past the late cutoff.
type MissEvent struct {
	Obstacle       Obstacle
	GraceProtected bool
}

func (MissEvent) engineEvent() {}

// ComboMilestoneEvent fires when the combo crosses a reward multiple.
type ComboMilestoneEvent struct {
	Combo int
}

func (ComboMilestoneEvent) engineEvent() {}

// LifeGainEvent fires when a combo milestone grants a life below the cap.
type LifeGainEvent struct {
	Lives int
}

func (LifeGainEvent) engineEvent() {}

// DeathEvent fires once, in the same Update call that drains the last life.
type DeathEvent struct{}

func (DeathEvent) engineEvent() {}

// Handler receives events synchronously on the caller's goroutine.
type Handler func(Event)

// dispatcher is the engine-instance-scoped listener registry. Emission is
// synchronous, in registration order, with no cancellation. Reset does not
// touch it; it lives as long as the engine.
type dispatcher struct {
	handlers map[EventType][]Handler
}

func newDispatcher() *dispatcher {
	return &dispatcher{handlers: make(map[EventType][]Handler)}
}

func (d *dispatcher) on(t EventType, h Handler) {
	if h == nil {
		return
	}
	d.handlers[t] = append(d.handlers[t], h)
}

func (d *dispatcher) emit(t EventType, ev Event) {
	for _, h := range d.handlers[t] {
		h(ev)
	}
}
