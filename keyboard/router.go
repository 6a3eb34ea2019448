package keyboard

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"iplay/bus"
)

// Router turns key presses into bus commands. A key it routes is consumed
// and must not reach any other handler.
type Router struct {
	keys      KeyMap
	players   *bus.PlayerBus
	playlists *bus.PlaylistBus
}

func NewRouter(keys KeyMap, players *bus.PlayerBus, playlists *bus.PlaylistBus) *Router {
	return &Router{keys: keys, players: players, playlists: playlists}
}

// Route handles both track list and playback keys.
func (r *Router) Route(msg tea.KeyMsg) bool {
	return r.Selection(msg) || r.Playback(msg)
}

// Selection handles the keys that move through the track list or play the
// selected track.
func (r *Router) Selection(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, r.keys.Up):
		r.playlists.Send(bus.SelectPrev)
	case key.Matches(msg, r.keys.Down):
		r.playlists.Send(bus.SelectNext)
	case key.Matches(msg, r.keys.PageUp):
		r.playlists.Send(bus.Select5Prev)
	case key.Matches(msg, r.keys.PageDown):
		r.playlists.Send(bus.Select5Next)
	case key.Matches(msg, r.keys.First):
		r.playlists.Send(bus.SelectFirst)
	case key.Matches(msg, r.keys.Last):
		r.playlists.Send(bus.SelectLast)
	case key.Matches(msg, r.keys.Play):
		r.playlists.Send(bus.PlaySelected)
	default:
		return false
	}
	return true
}

// Playback handles the keys addressed to the player. They work whatever
// pane has the focus.
func (r *Router) Playback(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, r.keys.PlayPause):
		r.players.Send(bus.TogglePlayPause)
	case key.Matches(msg, r.keys.SeekBackward):
		r.players.Send(bus.Rewind5s)
	case key.Matches(msg, r.keys.SeekForward):
		r.players.Send(bus.FastForward5s)
	case key.Matches(msg, r.keys.Begin):
		r.players.Send(bus.GoToBegin)
	default:
		return false
	}
	return true
}
