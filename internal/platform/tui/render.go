package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-pulse/internal/engine"
)

const (
	colorMiss  = "#d75f5f"
	colorGray  = "#808080"
	colorCombo = "#ffaf00"
	colorLife  = "#ff87af"
)

var (
	hudStyle      = lipgloss.NewStyle().Bold(true)
	laneStyle     = lipgloss.NewStyle().Faint(true)
	targetStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5fd7ff"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
	graceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#87af87"))
	hitStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd75f"))
	missedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMiss))
	deadStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorMiss))
	momentumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafff"))
)

func judgementColor(q engine.Quality) string {
	switch q {
	case engine.QualityPerfect:
		return "#ffd75f"
	case engine.QualityGreat:
		return "#5fd7ff"
	case engine.QualityGood:
		return "#87af87"
	default:
		return colorGray
	}
}

// targetCol is the lane column of the central target the obstacles close
// in on.
const targetCol = 6

// View renders the current snapshot.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.eng.Snapshot()

	var b strings.Builder
	b.WriteString(m.hudLine(snap))
	b.WriteString("\n\n")
	b.WriteString(m.laneLines(snap))
	b.WriteString("\n")
	b.WriteString(m.popupLine())
	b.WriteString("\n")

	if snap.Phase == engine.PhaseDead {
		b.WriteString(m.gameOverBox(snap))
		b.WriteString("\n")
	}

	b.WriteString(m.keys.helpView())
	return b.String()
}

func (m Model) hudLine(snap engine.Snapshot) string {
	hearts := strings.Repeat("♥", snap.Lives) +
		strings.Repeat("♡", m.eng.Config().MaxLives-snap.Lives)

	bpm := 0
	if snap.Tempo > 0 {
		bpm = int(60000 / snap.Tempo)
	}

	line := fmt.Sprintf(" score %d  x%.2f  combo %d  %s  %d bpm",
		snap.Score, snap.Multiplier, snap.Combo, hearts, bpm)
	return hudStyle.Render(line) + "\n " + m.momentumBar(snap)
}

func (m Model) momentumBar(snap engine.Snapshot) string {
	width := m.width - 12
	if width < 10 {
		width = 10
	}
	filled := int(snap.Momentum * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return momentumStyle.Render("momentum "+bar)
}

func (m Model) laneLines(snap engine.Snapshot) string {
	laneW := m.width - 2
	if laneW < 20 {
		laneW = 20
	}

	cells := make([]rune, laneW)
	for i := range cells {
		cells[i] = '·'
	}

	type drawn struct {
		col   int
		style lipgloss.Style
	}
	var marks []drawn

	for _, o := range snap.Obstacles {
		col := targetCol + int(o.Position*float64(laneW-targetCol-1))
		if col < 0 || col >= laneW {
			continue
		}
		switch {
		case o.Hit:
			cells[col] = '✦'
			marks = append(marks, drawn{col, hitStyle})
		case o.Missed:
			cells[col] = '✕'
			marks = append(marks, drawn{col, missedStyle})
		case o.GraceProtected:
			cells[col] = '●'
			marks = append(marks, drawn{col, graceStyle})
		default:
			cells[col] = '●'
			marks = append(marks, drawn{col, pendingStyle})
		}
	}

	// Screen shake nudges the whole lane; intensity comes straight from
	// the snapshot hint.
	indent := " "
	if snap.ScreenShake > 0.3 && int(snap.Time/30)%2 == 0 {
		indent = "  "
	}

	var b strings.Builder
	b.WriteString(indent)
	for i, r := range cells {
		if i == targetCol && cells[i] == '·' {
			b.WriteString(m.targetRune(snap))
			continue
		}
		styled := false
		for _, mk := range marks {
			if mk.col == i {
				b.WriteString(mk.style.Render(string(r)))
				styled = true
				break
			}
		}
		if !styled {
			b.WriteString(laneStyle.Render(string(r)))
		}
	}
	return b.String()
}

func (m Model) targetRune(snap engine.Snapshot) string {
	style := targetStyle
	if snap.FlashIntensity > 0.15 && snap.FlashColor != "" {
		style = style.Foreground(lipgloss.Color(snap.FlashColor))
	}
	// Pulse on the beat for one short blink.
	if snap.Time-m.fx.lastBeat < 90 {
		return style.Render("◉")
	}
	return style.Render("◎")
}

func (m Model) popupLine() string {
	if len(m.fx.popups) == 0 {
		return " "
	}
	parts := make([]string, 0, len(m.fx.popups))
	for _, p := range m.fx.popups {
		parts = append(parts,
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.color)).Render(p.text))
	}
	return " " + strings.Join(parts, "  ")
}

func (m Model) gameOverBox(snap engine.Snapshot) string {
	stats := m.eng.Stats()
	lines := []string{
		deadStyle.Render("RUN OVER"),
		fmt.Sprintf("score %d   best combo %d", snap.Score, snap.MaxCombo),
		fmt.Sprintf("perfect %d  great %d  good %d  miss %d",
			stats.Perfects, stats.Greats, stats.Goods, stats.Misses),
		helpStyle.Render("press r to run again"),
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, box)
}

// Run starts the Bubble Tea program for one engine instance and blocks
// until the player quits.
func Run(eng *engine.Engine, tickRate, width, height int) error {
	model := NewModel(eng, tickRate, width, height)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
