package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/huh"
)

// NewKeyMap builds the prompt keymap for the given mode. "vim" (the default) keeps
// j/k and g/G navigation in lists; "standard" restricts lists to arrow and home/end keys
// so letters are free for filtering.
func NewKeyMap(mode string) *huh.KeyMap {
	km := huh.NewDefaultKeyMap()

	km.Quit = key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	)

	if mode != "standard" {
		return km
	}

	up := key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up"))
	down := key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down"))
	top := key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first"))
	bottom := key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last"))

	km.Select.Up = up
	km.Select.Down = down
	km.Select.GotoTop = top
	km.Select.GotoBottom = bottom

	km.MultiSelect.Up = up
	km.MultiSelect.Down = down
	km.MultiSelect.GotoTop = top
	km.MultiSelect.GotoBottom = bottom

	return km
}
