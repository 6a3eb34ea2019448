// Package playlist holds the track list of the active playlist along with
// the selected and playing rows, and reacts to playlist bus commands.
package playlist

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"iplay/bus"
	"iplay/catalog"
	"iplay/location"
	"iplay/loop"
)

const fetchTimeout = 30 * time.Second

// Fetcher returns the tracks of a playlist.
type Fetcher interface {
	FetchPlaylist(ctx context.Context, id string) ([]catalog.Track, error)
}

// Controller is the playlist state machine. All methods run on the event
// loop.
type Controller struct {
	log       zerolog.Logger
	loop      loop.Loop
	store     location.Store
	fetcher   Fetcher
	view      Viewport
	players   *bus.PlayerBus
	playlists *bus.PlaylistBus

	ctx    context.Context
	cancel context.CancelFunc
	sub    *bus.Subscription[bus.PlaylistCommand]

	playlistID string
	tracks     []catalog.Track
	selected   int
	playing    int
	loading    bool
	err        error
}

func New(
	log zerolog.Logger,
	l loop.Loop,
	store location.Store,
	fetcher Fetcher,
	view Viewport,
	players *bus.PlayerBus,
	playlists *bus.PlaylistBus,
) *Controller {
	return &Controller{
		log:       log,
		loop:      l,
		store:     store,
		fetcher:   fetcher,
		view:      view,
		players:   players,
		playlists: playlists,
		selected:  -1,
		playing:   -1,
	}
}

// Start subscribes to the playlist bus. The latest command is replayed
// right away.
func (c *Controller) Start(ctx context.Context) {
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.sub = c.playlists.Subscribe(c.handle)
}

// Close stops command delivery. A fetch still in flight is dropped.
func (c *Controller) Close() {
	c.sub.Unsubscribe()
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Controller) PlaylistID() string      { return c.playlistID }
func (c *Controller) Tracks() []catalog.Track { return c.tracks }
func (c *Controller) Selected() int           { return c.selected }
func (c *Controller) Playing() int            { return c.playing }
func (c *Controller) Loading() bool           { return c.loading }

// Err is the error of the last load, nil when it succeeded.
func (c *Controller) Err() error { return c.err }

func (c *Controller) handle(cmd bus.PlaylistCommand) {
	switch cmd {
	case bus.LoadPlaylist:
		c.load()
	case bus.SelectFirst:
		c.selectRow(0)
	case bus.SelectLast:
		c.selectRow(len(c.tracks) - 1)
	case bus.SelectNext:
		c.selectNext(1)
	case bus.SelectPrev:
		c.selectPrev(1)
	case bus.Select5Next:
		c.selectNext(5)
	case bus.Select5Prev:
		c.selectPrev(5)
	case bus.PlaySelected:
		c.playSelected()
	case bus.VideoEnded:
		c.videoEnded()
	}
}

// Select highlights row i. Out of range values are clamped.
func (c *Controller) Select(i int) {
	c.selectRow(i)
}

func (c *Controller) load() {
	id, ok := c.store.PlaylistID(c.ctx)
	if !ok {
		c.log.Debug().Msg("no playlist loading because playlist id is absent")
		c.reset()
		c.playlistID = ""
		c.tracks = nil
		c.err = nil
		return
	}
	c.log.Debug().Str("playlist_id", id).Msg("loading playlist")
	c.loading = true

	ctx := c.ctx
	c.loop.Go(func() func() {
		fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		tracks, err := c.fetcher.FetchPlaylist(fctx, id)
		if ctx.Err() != nil {
			return nil
		}
		return func() { c.install(id, tracks, err) }
	})
}

func (c *Controller) install(id string, tracks []catalog.Track, err error) {
	c.loading = false
	c.reset()
	c.playlistID = id
	if err != nil {
		c.log.Warn().Err(err).Str("playlist_id", id).Msg("playlist unavailable")
		c.tracks = nil
		c.err = err
		return
	}
	c.err = nil
	c.tracks = tracks
	if len(tracks) > 0 {
		c.selectRow(0)
	}

	if videoID, ok := c.store.VideoID(c.ctx); ok {
		for i, t := range tracks {
			if t.VideoID == videoID {
				c.playing = i
				break
			}
		}
	}
	c.log.Debug().Str("playlist_id", id).Int("tracks", len(tracks)).Int("playing", c.playing).Msg("playlist loaded")
}

func (c *Controller) reset() {
	c.selected = -1
	c.playing = -1
}

func (c *Controller) selectRow(i int) {
	if len(c.tracks) == 0 {
		return
	}
	c.selected = clamp(i, 0, len(c.tracks)-1)
	ScrollIntoView(c.view, c.selected)
}

func (c *Controller) selectNext(delta int) {
	c.selectRow(c.selected + delta)
}

func (c *Controller) selectPrev(delta int) {
	c.selectRow(c.selected - delta)
}

func (c *Controller) playSelected() {
	if c.selected < 0 || c.selected >= len(c.tracks) {
		return
	}
	c.playing = c.selected
	c.play()
}

func (c *Controller) videoEnded() {
	if len(c.tracks) == 0 {
		return
	}
	switch {
	case c.playing < 0:
		c.playing = 0
	case c.playing < len(c.tracks)-1:
		c.playing++
	default:
		c.log.Debug().Int("playing", c.playing).Msg("last track ended")
		return
	}
	ScrollIntoView(c.view, c.playing)
	c.play()
}

func (c *Controller) play() {
	id := c.tracks[c.playing].VideoID
	if err := c.store.SetVideoID(c.ctx, id); err != nil {
		c.log.Error().Err(err).Str("video_id", id).Msg("failed to set video id")
		return
	}
	c.players.Send(bus.VideoIDChanged)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
