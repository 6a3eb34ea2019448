package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"iplay/bus"
	"iplay/catalog"
	"iplay/location"
	"iplay/loop"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchSummary(ctx context.Context) (catalog.Summary, error) {
	args := m.Called(ctx)
	return args.Get(0).(catalog.Summary), args.Error(1)
}

var summary = catalog.Summary{
	Favorite: "chill",
	Playlists: []catalog.Entry{
		{Name: "Rock", ID: "rock"},
		{Name: "Chill", ID: "chill"},
		{Name: "Jazz", ID: "jazz"},
	},
}

type harness struct {
	ctrl    *Controller
	fetcher *MockFetcher
	history *location.History
	loads   int
}

func newHarness(t *testing.T, url string) *harness {
	t.Helper()
	history, err := location.NewHistory(url, zerolog.Nop())
	require.NoError(t, err)

	h := &harness{fetcher: new(MockFetcher), history: history}
	playlists := bus.NewPlaylistBus()
	sub := playlists.Subscribe(func(cmd bus.PlaylistCommand) {
		if cmd == bus.LoadPlaylist {
			h.loads++
		}
	})
	t.Cleanup(sub.Unsubscribe)

	h.ctrl = New(zerolog.Nop(), loop.Inline{}, history, h.fetcher, playlists)
	return h
}

func (h *harness) playlistID() string {
	id, _ := h.history.PlaylistID(context.Background())
	return id
}

func TestActivate(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantID     string
		wantActive int
	}{
		{"favorite when location is empty", "/", "chill", 1},
		{"location wins over favorite", "/ui/playlists/jazz?video-id=x", "jazz", 2},
		{"unknown location is still opened", "/ui/playlists/gone", "gone", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.url)
			h.fetcher.On("FetchSummary", mock.Anything).Return(summary, nil).Once()

			h.ctrl.Activate(context.Background())

			h.fetcher.AssertExpectations(t)
			assert.Equal(t, tt.wantID, h.playlistID())
			assert.Equal(t, tt.wantActive, h.ctrl.Active())
			assert.Equal(t, 1, h.loads)
			assert.False(t, h.ctrl.Loading())
		})
	}
}

func TestActivate_KeepsVideoID(t *testing.T) {
	h := newHarness(t, "/?video-id=x")
	h.fetcher.On("FetchSummary", mock.Anything).Return(summary, nil)

	h.ctrl.Activate(context.Background())

	assert.Equal(t, "/ui/playlists/chill?video-id=x", h.history.URL())
}

func TestActivate_NoFavorite(t *testing.T) {
	h := newHarness(t, "/")
	h.fetcher.On("FetchSummary", mock.Anything).Return(catalog.Summary{}, nil)

	h.ctrl.Activate(context.Background())

	assert.Empty(t, h.playlistID())
	assert.Zero(t, h.loads)
	assert.Equal(t, -1, h.ctrl.Active())
}

func TestActivate_Failure(t *testing.T) {
	h := newHarness(t, "/")
	h.fetcher.On("FetchSummary", mock.Anything).Return(catalog.Summary{}, catalog.ErrUnavailable)

	h.ctrl.Activate(context.Background())

	assert.True(t, errors.Is(h.ctrl.Err(), catalog.ErrUnavailable))
	assert.Zero(t, h.loads)
}

func TestSelect(t *testing.T) {
	h := newHarness(t, "/")
	h.fetcher.On("FetchSummary", mock.Anything).Return(summary, nil)
	h.ctrl.Activate(context.Background())

	h.ctrl.Select(0)
	assert.Equal(t, "rock", h.playlistID())
	assert.Equal(t, 0, h.ctrl.Active())
	assert.Equal(t, 2, h.loads)

	h.ctrl.Select(7)
	assert.Equal(t, "rock", h.playlistID())
	assert.Equal(t, 2, h.loads)
}

func TestSync_FollowsHistory(t *testing.T) {
	h := newHarness(t, "/")
	h.fetcher.On("FetchSummary", mock.Anything).Return(summary, nil)
	h.ctrl.Activate(context.Background())
	h.ctrl.Select(2)

	require.True(t, h.history.Back())
	h.ctrl.Sync()

	assert.Equal(t, "chill", h.playlistID())
	assert.Equal(t, 1, h.ctrl.Active())
	assert.Equal(t, 3, h.loads)
}

func TestActivate_UnusableFavorite(t *testing.T) {
	h := newHarness(t, "/")
	h.fetcher.On("FetchSummary", mock.Anything).Return(catalog.Summary{
		Favorite:  "rock-&-roll",
		Playlists: []catalog.Entry{{Name: "Jazz", ID: "jazz"}, {Name: "Rock & Roll", ID: "rock-&-roll"}},
	}, nil)

	h.ctrl.Activate(context.Background())

	assert.ErrorIs(t, h.ctrl.Err(), location.ErrInvalidURL)
	assert.Equal(t, "/", h.history.URL())
	assert.Zero(t, h.loads)
	assert.Equal(t, -1, h.ctrl.Active())

	h.ctrl.Select(0)
	assert.NoError(t, h.ctrl.Err(), "opening a usable playlist clears the error")
	assert.Equal(t, "jazz", h.playlistID())
	assert.Equal(t, 1, h.loads)
}

func TestSync_NoPlaylistInLocation(t *testing.T) {
	h := newHarness(t, "/")
	h.fetcher.On("FetchSummary", mock.Anything).Return(summary, nil)
	h.ctrl.Activate(context.Background())
	require.Equal(t, 1, h.ctrl.Active())

	require.True(t, h.history.Back())
	h.ctrl.Sync()

	assert.Equal(t, -1, h.ctrl.Active())
	assert.Equal(t, 2, h.loads, "the playlist reloads to drop its tracks")
}
