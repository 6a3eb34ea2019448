// Package directory lists the available playlists and decides which one is
// active.
package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"iplay/bus"
	"iplay/catalog"
	"iplay/location"
	"iplay/loop"
)

const fetchTimeout = 30 * time.Second

// Fetcher returns the playlist summary.
type Fetcher interface {
	FetchSummary(ctx context.Context) (catalog.Summary, error)
}

// Controller runs on the event loop.
type Controller struct {
	log       zerolog.Logger
	loop      loop.Loop
	store     location.Store
	fetcher   Fetcher
	playlists *bus.PlaylistBus

	ctx     context.Context
	summary catalog.Summary
	active  int
	loading bool
	err     error
}

func New(log zerolog.Logger, l loop.Loop, store location.Store, fetcher Fetcher, playlists *bus.PlaylistBus) *Controller {
	return &Controller{
		log:       log,
		loop:      l,
		store:     store,
		fetcher:   fetcher,
		playlists: playlists,
		ctx:       context.Background(),
		active:    -1,
	}
}

func (c *Controller) Summary() catalog.Summary { return c.summary }

// Active is the index of the highlighted playlist, -1 when none is.
func (c *Controller) Active() int   { return c.active }
func (c *Controller) Loading() bool { return c.loading }
func (c *Controller) Err() error    { return c.err }

// Activate fetches the summary and opens the playlist of the location, or
// the favorite one when the location names none.
func (c *Controller) Activate(ctx context.Context) {
	c.ctx = ctx
	c.loading = true
	c.loop.Go(func() func() {
		fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		summary, err := c.fetcher.FetchSummary(fctx)
		if ctx.Err() != nil {
			return nil
		}
		return func() { c.install(summary, err) }
	})
}

func (c *Controller) install(summary catalog.Summary, err error) {
	c.loading = false
	if err != nil {
		c.log.Warn().Err(err).Msg("playlist summary unavailable")
		c.err = err
		return
	}
	c.err = nil
	c.summary = summary

	id, ok := c.store.PlaylistID(c.ctx)
	if !ok {
		id = summary.Favorite
	}
	if id == "" {
		c.log.Debug().Msg("no playlist to open, location and favorite are empty")
		return
	}
	c.open(id)
}

// Select opens the i-th playlist of the summary.
func (c *Controller) Select(i int) {
	if i < 0 || i >= len(c.summary.Playlists) {
		return
	}
	c.open(c.summary.Playlists[i].ID)
}

// Sync follows a location changed from outside, such as a history move.
// The playlist reloads even when the location names none, so it empties.
func (c *Controller) Sync() {
	c.active = -1
	if id, ok := c.store.PlaylistID(c.ctx); ok {
		c.active = c.summary.IndexOf(id)
	}
	c.playlists.Send(bus.LoadPlaylist)
}

// open makes id the location's playlist. An id the location refuses is kept
// in Err.
func (c *Controller) open(id string) {
	if err := c.store.SetPlaylistID(c.ctx, id); err != nil {
		c.log.Warn().Err(err).Str("playlist_id", id).Msg("playlist unavailable")
		c.err = fmt.Errorf("open playlist %q: %w", id, err)
		return
	}
	c.err = nil
	c.active = c.summary.IndexOf(id)
	c.log.Debug().Str("playlist_id", id).Int("active", c.active).Msg("playlist opened")
	c.playlists.Send(bus.LoadPlaylist)
}
