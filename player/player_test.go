package player

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"iplay/bus"
	"iplay/daemon"
	"iplay/location"
	"iplay/loop"
)

type MockEmbedded struct {
	mock.Mock
}

func (m *MockEmbedded) LoadOrCueVideo(id string) error {
	return m.Called(id).Error(0)
}

func (m *MockEmbedded) Play() error {
	return m.Called().Error(0)
}

func (m *MockEmbedded) Pause() error {
	return m.Called().Error(0)
}

func (m *MockEmbedded) SeekTo(seconds float64, allowSeekAhead bool) error {
	return m.Called(seconds, allowSeekAhead).Error(0)
}

func (m *MockEmbedded) CurrentTime() (float64, error) {
	args := m.Called()
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockEmbedded) Duration() (float64, error) {
	args := m.Called()
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockEmbedded) State() (daemon.State, error) {
	args := m.Called()
	return args.Get(0).(daemon.State), args.Error(1)
}

type harness struct {
	ctrl      *Controller
	embedded  *MockEmbedded
	history   *location.History
	players   *bus.PlayerBus
	playlists *bus.PlaylistBus
	ended     int
}

func newHarness(t *testing.T, url string, l loop.Loop, interval time.Duration) *harness {
	t.Helper()
	history, err := location.NewHistory(url, zerolog.Nop())
	require.NoError(t, err)

	h := &harness{
		embedded:  new(MockEmbedded),
		history:   history,
		players:   bus.NewPlayerBus(),
		playlists: bus.NewPlaylistBus(),
	}
	sub := h.playlists.Subscribe(func(cmd bus.PlaylistCommand) {
		if cmd == bus.VideoEnded {
			h.ended++
		}
	})
	t.Cleanup(sub.Unsubscribe)

	h.ctrl = New(zerolog.Nop(), l, history, h.embedded, h.players, h.playlists)
	h.ctrl.Interval = interval
	return h
}

func (h *harness) start(t *testing.T) {
	h.ctrl.Start(context.Background())
	t.Cleanup(h.ctrl.Close)
}

func (h *harness) times(cur, duration float64) {
	h.embedded.On("CurrentTime").Return(cur, nil).Maybe()
	h.embedded.On("Duration").Return(duration, nil).Maybe()
}

func TestStart_CuesVideoFromLocation(t *testing.T) {
	h := newHarness(t, "/ui/playlists/jazz?video-id=abc", loop.Inline{}, time.Hour)
	h.embedded.On("LoadOrCueVideo", "abc").Return(nil).Once()

	h.start(t)

	h.embedded.AssertExpectations(t)
	assert.Equal(t, "abc", h.ctrl.Status().VideoID)
}

func TestStart_NothingToCue(t *testing.T) {
	h := newHarness(t, "/ui/playlists/jazz", loop.Inline{}, time.Hour)
	h.start(t)

	h.embedded.AssertNotCalled(t, "LoadOrCueVideo", mock.Anything)
}

func TestVideoIDChanged_RecuesFromLocation(t *testing.T) {
	h := newHarness(t, "/", loop.Inline{}, time.Hour)
	h.start(t)

	require.NoError(t, h.history.SetVideoID(context.Background(), "xyz"))
	h.embedded.On("LoadOrCueVideo", "xyz").Return(nil).Twice()
	h.players.Send(bus.VideoIDChanged)
	h.players.Send(bus.VideoIDChanged)

	h.embedded.AssertExpectations(t)
}

func TestTogglePlayPause(t *testing.T) {
	tests := []struct {
		state    daemon.State
		wantCall string
	}{
		{daemon.Unstarted, "Play"},
		{daemon.Paused, "Play"},
		{daemon.Cued, "Play"},
		{daemon.Playing, "Pause"},
		{daemon.Buffering, ""},
		{daemon.Ended, ""},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			h := newHarness(t, "/", loop.Inline{}, time.Hour)
			h.start(t)
			h.embedded.On("State").Return(tt.state, nil)
			h.embedded.On("Play").Return(nil).Maybe()
			h.embedded.On("Pause").Return(nil).Maybe()

			h.players.Send(bus.TogglePlayPause)

			for _, name := range []string{"Play", "Pause"} {
				if name == tt.wantCall {
					h.embedded.AssertNumberOfCalls(t, name, 1)
				} else {
					h.embedded.AssertNotCalled(t, name)
				}
			}
		})
	}
}

func TestSeekCommands(t *testing.T) {
	tests := []struct {
		name     string
		cmd      bus.PlayerCommand
		cur      float64
		duration float64
		wantTo   float64
	}{
		{"rewind", bus.Rewind5s, 20, 200, 15},
		{"rewind clamps at zero", bus.Rewind5s, 3, 200, 0},
		{"fast forward", bus.FastForward5s, 10, 200, 15},
		{"fast forward clamps at duration", bus.FastForward5s, 198, 200, 200},
		{"fast forward with unknown duration", bus.FastForward5s, 10, 0, 15},
		{"go to begin", bus.GoToBegin, 120, 200, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "/", loop.Inline{}, time.Hour)
			h.start(t)
			h.times(tt.cur, tt.duration)
			h.embedded.On("SeekTo", tt.wantTo, true).Return(nil).Once()

			h.players.Send(tt.cmd)

			h.embedded.AssertExpectations(t)
		})
	}
}

func TestSeek_CurrentTimeFailure(t *testing.T) {
	h := newHarness(t, "/", loop.Inline{}, time.Hour)
	h.start(t)
	h.embedded.On("CurrentTime").Return(0.0, daemon.ErrNotConnected)

	h.players.Send(bus.Rewind5s)

	h.embedded.AssertNotCalled(t, "SeekTo", mock.Anything, mock.Anything)
}

func TestPoll_PlaysCuedVideo(t *testing.T) {
	h := newHarness(t, "/", loop.Inline{}, time.Hour)
	h.start(t)
	h.times(0, 200)
	h.embedded.On("State").Return(daemon.Cued, nil)
	h.embedded.On("Play").Return(nil).Once()

	h.ctrl.Poll()

	h.embedded.AssertExpectations(t)
	assert.Equal(t, daemon.Cued, h.ctrl.Status().State)
	assert.Equal(t, 200.0, h.ctrl.Status().Duration)
	assert.Zero(t, h.ended)
}

func TestPoll_EndedNotifiesOncePerVideo(t *testing.T) {
	h := newHarness(t, "/?video-id=a", loop.Inline{}, time.Hour)
	h.embedded.On("LoadOrCueVideo", mock.Anything).Return(nil)
	h.start(t)
	h.times(200, 200)
	h.embedded.On("State").Return(daemon.Ended, nil)

	h.ctrl.Poll()
	h.ctrl.Poll()
	assert.Equal(t, 1, h.ended)

	require.NoError(t, h.history.SetVideoID(context.Background(), "b"))
	h.players.Send(bus.VideoIDChanged)
	h.ctrl.Poll()
	assert.Equal(t, 2, h.ended)
}

func TestPoll_IgnoresOtherStates(t *testing.T) {
	for _, state := range []daemon.State{daemon.Unstarted, daemon.Playing, daemon.Paused, daemon.Buffering} {
		t.Run(state.String(), func(t *testing.T) {
			h := newHarness(t, "/", loop.Inline{}, time.Hour)
			h.start(t)
			h.times(1, 200)
			h.embedded.On("State").Return(state, nil)

			h.ctrl.Poll()

			h.embedded.AssertNotCalled(t, "Play")
			h.embedded.AssertNotCalled(t, "Pause")
			assert.Zero(t, h.ended)
		})
	}
}

func TestPoll_StateError(t *testing.T) {
	h := newHarness(t, "/", loop.Inline{}, time.Hour)
	h.start(t)
	h.embedded.On("State").Return(daemon.Unstarted, errors.New("socket closed"))

	h.ctrl.Poll()

	assert.Error(t, h.ctrl.Status().Err)
	h.embedded.AssertNotCalled(t, "CurrentTime")
}

func TestPoll_TimeErrorsKeepLastKnownValues(t *testing.T) {
	h := newHarness(t, "/", loop.Inline{}, time.Hour)
	var logs bytes.Buffer
	h.ctrl.log = zerolog.New(&logs).Level(zerolog.DebugLevel)
	h.start(t)
	h.embedded.On("State").Return(daemon.Playing, nil)
	h.embedded.On("CurrentTime").Return(30.0, nil).Once()
	h.embedded.On("Duration").Return(200.0, nil).Once()
	h.embedded.On("CurrentTime").Return(0.0, daemon.ErrNotConnected)
	h.embedded.On("Duration").Return(0.0, daemon.ErrNotConnected)

	h.ctrl.Poll()
	h.ctrl.Poll()

	status := h.ctrl.Status()
	assert.NoError(t, status.Err)
	assert.Equal(t, daemon.Playing, status.State)
	assert.Equal(t, 30.0, status.Position)
	assert.Equal(t, 200.0, status.Duration)
	assert.Contains(t, logs.String(), "player position unavailable")
	assert.Contains(t, logs.String(), "player duration unavailable")
}

// chanLoop hands posted functions to the test instead of running them.
type chanLoop chan func()

func (l chanLoop) Post(fn func()) { l <- fn }

func (l chanLoop) Go(work func() func()) {
	go func() {
		if next := work(); next != nil {
			l <- next
		}
	}()
}

func TestStart_PollsUntilClosed(t *testing.T) {
	posted := make(chanLoop, 16)
	h := newHarness(t, "/", posted, 5*time.Millisecond)
	h.times(0, 0)
	h.embedded.On("State").Return(daemon.Playing, nil)
	h.ctrl.Start(context.Background())

	select {
	case fn := <-posted:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("no poll was posted")
	}
	assert.Equal(t, daemon.Playing, h.ctrl.Status().State)

	h.ctrl.Close()
	for len(posted) > 0 {
		<-posted
	}
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, posted, "no poll after Close")
}
