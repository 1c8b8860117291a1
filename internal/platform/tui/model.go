package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-pulse/internal/engine"
)

// maxFrameMs clamps a single frame's elapsed time so a suspended terminal
// doesn't dump seconds of simulation into one update.
const maxFrameMs = 100

// popupTTLMs is how long a judgement popup stays on screen, measured on the
// engine clock.
const popupTTLMs = 700

type popup struct {
	text  string
	color string
	until float64 // engine time
}

// effects is the renderer's own bookkeeping, fed by engine events. One-shot
// state per obstacle lives here in a side map keyed by obstacle id; the
// engine's obstacle records stay closed.
type effects struct {
	popups    []popup
	announced map[int]bool
	lastBeat  float64
}

func (fx *effects) push(now float64, text, color string) {
	fx.popups = append(fx.popups, popup{text: text, color: color, until: now + popupTTLMs})
}

func (fx *effects) expire(now float64) {
	kept := fx.popups[:0]
	for _, p := range fx.popups {
		if p.until > now {
			kept = append(kept, p)
		}
	}
	fx.popups = kept
}

func (fx *effects) reset() {
	fx.popups = nil
	fx.announced = make(map[int]bool)
	fx.lastBeat = 0
}

// Model is the Bubble Tea model running one engine instance.
type Model struct {
	eng      *engine.Engine
	keys     KeyMap
	fx       *effects
	tickRate int
	width    int
	height   int
	lastTick time.Time
	quitting bool
}

// NewModel wires a model to an engine and subscribes to its events.
func NewModel(eng *engine.Engine, tickRate, width, height int) Model {
	fx := &effects{announced: make(map[int]bool)}

	eng.On(engine.EventHit, func(ev engine.Event) {
		hit := ev.(engine.HitEvent)
		if fx.announced[hit.Obstacle.ID] {
			return
		}
		fx.announced[hit.Obstacle.ID] = true
		label := string(hit.Quality)
		if hit.Quality == engine.QualityPerfect && hit.PrecisionMs == 0 {
			label = "perfect!"
		}
		fx.push(eng.Time(), label, judgementColor(hit.Quality))
	})
	eng.On(engine.EventMiss, func(ev engine.Event) {
		miss := ev.(engine.MissEvent)
		if fx.announced[miss.Obstacle.ID] {
			return
		}
		fx.announced[miss.Obstacle.ID] = true
		if miss.GraceProtected {
			fx.push(eng.Time(), "miss (grace)", colorGray)
		} else {
			fx.push(eng.Time(), "miss", colorMiss)
		}
	})
	eng.On(engine.EventComboMilestone, func(ev engine.Event) {
		fx.push(eng.Time(), fmt.Sprintf("%d combo!", ev.(engine.ComboMilestoneEvent).Combo), colorCombo)
	})
	eng.On(engine.EventLifeGain, func(ev engine.Event) {
		fx.push(eng.Time(), "+1 life", colorLife)
	})
	eng.On(engine.EventBeat, func(engine.Event) {
		fx.lastBeat = eng.Time()
	})

	return Model{
		eng:      eng,
		keys:     DefaultKeyMap(),
		fx:       fx,
		tickRate: tickRate,
		width:    width,
		height:   height,
	}
}

// Init starts the run and the tick loop.
func (m Model) Init() tea.Cmd {
	m.eng.Start()
	return tickCmd(m.tickRate)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Restart):
		if m.eng.Phase() == engine.PhaseDead {
			m.eng.Reset()
			m.fx.reset()
			m.eng.Start()
		}
		return m, nil

	case key.Matches(msg, m.keys.Tap):
		// The key arrives between ticks; the engine clock is the current
		// frame, so "now" is the right instant on that clock.
		m.eng.TapNow()
		return m, nil
	}

	return m, nil
}

func (m Model) handleTick(at time.Time) (tea.Model, tea.Cmd) {
	dt := float64(16)
	if !m.lastTick.IsZero() {
		dt = float64(at.Sub(m.lastTick).Microseconds()) / 1000
		if dt < 0 {
			dt = 0
		}
		if dt > maxFrameMs {
			dt = maxFrameMs
		}
	}
	m.lastTick = at

	m.eng.Update(dt)
	m.fx.expire(m.eng.Time())

	return m, tickCmd(m.tickRate)
}
