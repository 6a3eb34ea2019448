// Package keyboard maps terminal keys to bus commands.
package keyboard

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	// Track list
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	First    key.Binding
	Last     key.Binding
	Play     key.Binding

	// Playback
	PlayPause    key.Binding
	SeekBackward key.Binding
	SeekForward  key.Binding
	Begin        key.Binding

	// Navigation
	Back     key.Binding
	Forward  key.Binding
	TabFocus key.Binding
	Search   key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "up 5"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "down 5"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "first"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "last"),
		),
		Play: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "play"),
		),

		PlayPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		SeekBackward: key.NewBinding(
			key.WithKeys("left", ","),
			key.WithHelp("←", "-5s"),
		),
		SeekForward: key.NewBinding(
			key.WithKeys("right", "."),
			key.WithHelp("→", "+5s"),
		),
		Begin: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "restart"),
		),

		Back: key.NewBinding(
			key.WithKeys("[", "alt+left"),
			key.WithHelp("[", "back"),
		),
		Forward: key.NewBinding(
			key.WithKeys("]", "alt+right"),
			key.WithHelp("]", "forward"),
		),
		TabFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "focus"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Play,
		k.PlayPause,
		k.TabFocus,
		k.Back,
		k.Help,
		k.Quit,
	}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.First, k.Last},
		{k.Play, k.PlayPause, k.SeekBackward, k.SeekForward, k.Begin},
		{k.Back, k.Forward, k.TabFocus, k.Search},
		{k.Help, k.Quit},
	}
}
