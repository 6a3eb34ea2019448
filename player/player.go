// Package player drives the embedded video player from player bus commands
// and polls it for the states that need a reaction.
package player

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"iplay/bus"
	"iplay/daemon"
	"iplay/location"
	"iplay/loop"
)

const (
	PollInterval = time.Second
	seekStep     = 5.0
)

// Embedded is the playback surface of the video player.
type Embedded interface {
	LoadOrCueVideo(id string) error
	Play() error
	Pause() error
	SeekTo(seconds float64, allowSeekAhead bool) error
	CurrentTime() (float64, error)
	Duration() (float64, error)
	State() (daemon.State, error)
}

// Status is what the last poll saw.
type Status struct {
	VideoID  string
	State    daemon.State
	Position float64
	Duration float64
	Err      error
}

// Controller owns the embedded player. Command handling and polls run on
// the event loop.
type Controller struct {
	log       zerolog.Logger
	loop      loop.Loop
	store     location.Store
	embedded  Embedded
	players   *bus.PlayerBus
	playlists *bus.PlaylistBus

	// Interval between polls, PollInterval unless set before Start.
	Interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	sub    *bus.Subscription[bus.PlayerCommand]

	status      Status
	endNotified bool
}

func New(
	log zerolog.Logger,
	l loop.Loop,
	store location.Store,
	embedded Embedded,
	players *bus.PlayerBus,
	playlists *bus.PlaylistBus,
) *Controller {
	return &Controller{
		log:       log,
		loop:      l,
		store:     store,
		embedded:  embedded,
		players:   players,
		playlists: playlists,
		Interval:  PollInterval,
		status:    Status{State: daemon.Unstarted},
	}
}

// Start cues the video named by the location, subscribes to the player bus
// and starts polling. Close must be called to stop the poll.
func (c *Controller) Start(ctx context.Context) {
	c.ctx, c.cancel = context.WithCancel(ctx)

	replaysChange := c.players.Latest() == bus.VideoIDChanged
	c.sub = c.players.Subscribe(c.handle)
	if !replaysChange {
		c.cue()
	}

	c.wg.Add(1)
	go c.run()
}

// Close stops the poll and command delivery. No poll is posted after Close
// returns.
func (c *Controller) Close() {
	c.sub.Unsubscribe()
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

func (c *Controller) Status() Status {
	return c.status
}

func (c *Controller) run() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.loop.Post(c.Poll)
		}
	}
}

// Poll reads the player state. A cued video is started, an ended one is
// reported to the playlist once.
func (c *Controller) Poll() {
	if c.ctx != nil && c.ctx.Err() != nil {
		return
	}
	state, err := c.embedded.State()
	if err != nil {
		if c.status.Err == nil {
			c.log.Error().Err(err).Msg("player state unavailable")
		}
		c.status.Err = err
		return
	}
	c.status.Err = nil
	c.status.State = state
	if pos, err := c.embedded.CurrentTime(); err != nil {
		c.log.Debug().Err(err).Msg("player position unavailable")
	} else {
		c.status.Position = pos
	}
	if dur, err := c.embedded.Duration(); err != nil {
		c.log.Debug().Err(err).Msg("player duration unavailable")
	} else {
		c.status.Duration = dur
	}

	switch state {
	case daemon.Cued:
		if err := c.embedded.Play(); err != nil {
			c.log.Error().Err(err).Str("video_id", c.status.VideoID).Msg("failed to start cued video")
		}
	case daemon.Ended:
		if c.endNotified {
			return
		}
		c.endNotified = true
		c.log.Debug().Str("video_id", c.status.VideoID).Msg("video ended")
		c.playlists.Send(bus.VideoEnded)
	}
}

func (c *Controller) handle(cmd bus.PlayerCommand) {
	switch cmd {
	case bus.VideoIDChanged:
		c.cue()
	case bus.TogglePlayPause:
		c.togglePlayPause()
	case bus.Rewind5s:
		c.rewind(seekStep)
	case bus.FastForward5s:
		c.fastForward(seekStep)
	case bus.GoToBegin:
		c.seek(0)
	}
}

func (c *Controller) cue() {
	id, ok := c.store.VideoID(c.ctx)
	if !ok {
		c.log.Debug().Msg("nothing to cue because video id is absent")
		return
	}
	if err := c.embedded.LoadOrCueVideo(id); err != nil {
		c.log.Error().Err(err).Str("video_id", id).Msg("failed to cue video")
		c.status.Err = err
		return
	}
	c.log.Info().Str("video_id", id).Msg("video cued")
	c.status.VideoID = id
	c.endNotified = false
}

func (c *Controller) togglePlayPause() {
	state, err := c.embedded.State()
	if err != nil {
		c.log.Error().Err(err).Msg("player state unavailable")
		return
	}
	switch state {
	case daemon.Playing:
		err = c.embedded.Pause()
	case daemon.Unstarted, daemon.Paused, daemon.Cued:
		err = c.embedded.Play()
	default:
		return
	}
	if err != nil {
		c.log.Error().Err(err).Stringer("state", state).Msg("toggle play/pause failed")
	}
}

func (c *Controller) rewind(dt float64) {
	cur, err := c.embedded.CurrentTime()
	if err != nil {
		c.log.Error().Err(err).Msg("current time unavailable")
		return
	}
	c.seek(max(cur-dt, 0))
}

func (c *Controller) fastForward(dt float64) {
	cur, err := c.embedded.CurrentTime()
	if err != nil {
		c.log.Error().Err(err).Msg("current time unavailable")
		return
	}
	duration, err := c.embedded.Duration()
	if err != nil {
		c.log.Error().Err(err).Msg("duration unavailable")
		return
	}
	to := cur + dt
	if duration > 0 {
		to = min(to, duration)
	}
	c.seek(to)
}

func (c *Controller) seek(to float64) {
	if err := c.embedded.SeekTo(to, true); err != nil {
		c.log.Error().Err(err).Float64("to", to).Msg("seek failed")
		return
	}
	c.status.Position = to
}
