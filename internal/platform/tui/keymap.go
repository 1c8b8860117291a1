package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// KeyMap holds the game's key bindings. Centralized so the help line and
// the update loop can't drift apart.
type KeyMap struct {
	Tap     key.Binding
	Restart key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tap: key.NewBinding(
			key.WithKeys(" ", "enter", "j"),
			key.WithHelp("space", "tap"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

var helpStyle = lipgloss.NewStyle().Faint(true)

// helpView renders the one-line key help footer.
func (k KeyMap) helpView() string {
	return helpStyle.Render(
		k.Tap.Help().Key + " " + k.Tap.Help().Desc + "  " +
			k.Restart.Help().Key + " " + k.Restart.Help().Desc + "  " +
			k.Quit.Help().Key + " " + k.Quit.Help().Desc)
}
