package bus

// PlayerCommand is a token addressed to the player.
type PlayerCommand int

const (
	PlayerNothingToDo PlayerCommand = iota
	VideoIDChanged
	TogglePlayPause
	Rewind5s
	FastForward5s
	GoToBegin
)

// String returns the string representation of the command.
func (c PlayerCommand) String() string {
	switch c {
	case PlayerNothingToDo:
		return "nothing_to_do"
	case VideoIDChanged:
		return "video_id_changed"
	case TogglePlayPause:
		return "toggle_play_pause"
	case Rewind5s:
		return "rew_5s"
	case FastForward5s:
		return "ffwd_5s"
	case GoToBegin:
		return "go_to_begin"
	default:
		return "unknown"
	}
}

// PlaylistCommand is a token addressed to the playlist.
type PlaylistCommand int

const (
	PlaylistNothingToDo PlaylistCommand = iota
	LoadPlaylist
	SelectFirst
	SelectLast
	SelectNext
	SelectPrev
	Select5Next
	Select5Prev
	PlaySelected
	VideoEnded
)

// String returns the string representation of the command.
func (c PlaylistCommand) String() string {
	switch c {
	case PlaylistNothingToDo:
		return "nothing_to_do"
	case LoadPlaylist:
		return "load_playlist"
	case SelectFirst:
		return "select_first"
	case SelectLast:
		return "select_last"
	case SelectNext:
		return "select_next"
	case SelectPrev:
		return "select_prev"
	case Select5Next:
		return "select_5_next"
	case Select5Prev:
		return "select_5_prev"
	case PlaySelected:
		return "play_selected"
	case VideoEnded:
		return "video_ended"
	default:
		return "unknown"
	}
}

// PlayerBus carries player-directed commands.
type PlayerBus = Bus[PlayerCommand]

// PlaylistBus carries playlist-directed commands.
type PlaylistBus = Bus[PlaylistCommand]

// NewPlayerBus returns a player bus primed with PlayerNothingToDo.
func NewPlayerBus() *PlayerBus {
	return New(PlayerNothingToDo)
}

// NewPlaylistBus returns a playlist bus primed with PlaylistNothingToDo.
func NewPlaylistBus() *PlaylistBus {
	return New(PlaylistNothingToDo)
}
