package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_SubscribeReplaysInitial(t *testing.T) {
	b := NewPlaylistBus()

	var got []PlaylistCommand
	b.Subscribe(func(c PlaylistCommand) { got = append(got, c) })

	assert.Equal(t, []PlaylistCommand{PlaylistNothingToDo}, got)
}

func TestBus_SubscribeReplaysLatestOnly(t *testing.T) {
	b := NewPlayerBus()
	b.Send(TogglePlayPause)
	b.Send(Rewind5s)

	var got []PlayerCommand
	b.Subscribe(func(c PlayerCommand) { got = append(got, c) })

	assert.Equal(t, []PlayerCommand{Rewind5s}, got)
	assert.Equal(t, Rewind5s, b.Latest())
}

func TestBus_DeliversInSendOrder(t *testing.T) {
	b := NewPlaylistBus()

	var first, second []PlaylistCommand
	b.Subscribe(func(c PlaylistCommand) { first = append(first, c) })
	b.Subscribe(func(c PlaylistCommand) { second = append(second, c) })

	b.Send(LoadPlaylist)
	b.Send(SelectNext)
	b.Send(PlaySelected)

	want := []PlaylistCommand{PlaylistNothingToDo, LoadPlaylist, SelectNext, PlaySelected}
	assert.Equal(t, want, first)
	assert.Equal(t, want, second)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewPlayerBus()

	var got []PlayerCommand
	sub := b.Subscribe(func(c PlayerCommand) { got = append(got, c) })
	b.Send(GoToBegin)
	sub.Unsubscribe()
	sub.Unsubscribe()
	b.Send(FastForward5s)

	assert.Equal(t, []PlayerCommand{PlayerNothingToDo, GoToBegin}, got)
}

func TestBus_UnsubscribeFromHandler(t *testing.T) {
	b := NewPlaylistBus()

	calls := 0
	var sub *Subscription[PlaylistCommand]
	sub = b.Subscribe(func(c PlaylistCommand) {
		calls++
		if c == VideoEnded {
			sub.Unsubscribe()
		}
	})
	b.Send(VideoEnded)
	b.Send(SelectFirst)

	assert.Equal(t, 2, calls)
}

func TestBus_IndependentInstances(t *testing.T) {
	players := NewPlayerBus()
	playlists := NewPlaylistBus()

	var fromPlayers []PlayerCommand
	var fromPlaylists []PlaylistCommand
	players.Subscribe(func(c PlayerCommand) { fromPlayers = append(fromPlayers, c) })
	playlists.Subscribe(func(c PlaylistCommand) {
		fromPlaylists = append(fromPlaylists, c)
		if c == PlaySelected {
			players.Send(VideoIDChanged)
		}
	})

	playlists.Send(PlaySelected)

	assert.Equal(t, []PlayerCommand{PlayerNothingToDo, VideoIDChanged}, fromPlayers)
	assert.Equal(t, []PlaylistCommand{PlaylistNothingToDo, PlaySelected}, fromPlaylists)
}

func TestCommandStrings(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"player nothing", PlayerNothingToDo.String(), "nothing_to_do"},
		{"video id changed", VideoIDChanged.String(), "video_id_changed"},
		{"rewind", Rewind5s.String(), "rew_5s"},
		{"unknown player", PlayerCommand(99).String(), "unknown"},
		{"load playlist", LoadPlaylist.String(), "load_playlist"},
		{"select 5 prev", Select5Prev.String(), "select_5_prev"},
		{"video ended", VideoEnded.String(), "video_ended"},
		{"unknown playlist", PlaylistCommand(-1).String(), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}
