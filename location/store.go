// Package location keeps "which playlist, which video" in a URL so the
// state can be bookmarked, resumed and walked back and forth.
package location

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sync"

	"github.com/rs/zerolog"
)

const (
	// PlaylistPathPrefix is the path under which a playlist id is encoded.
	PlaylistPathPrefix = "/ui/playlists/"
	// VideoIDParam is the query parameter holding the video id.
	VideoIDParam = "video-id"
)

var (
	ErrInvalidURL = errors.New("invalid location")

	// Anything after the id is ignored.
	playlistPattern = regexp.MustCompile(`^/ui/playlists/([\w\-]+)`)
	idPattern       = regexp.MustCompile(`^[\w\-]+$`)
)

// Store reads and writes the navigation state.
type Store interface {
	PlaylistID(ctx context.Context) (string, bool)
	SetPlaylistID(ctx context.Context, id string) error
	VideoID(ctx context.Context) (string, bool)
	SetVideoID(ctx context.Context, id string) error
}

// History is a Store backed by a stack of visited URLs. Every write pushes
// a new entry and drops the forward entries, as a browser does.
type History struct {
	log zerolog.Logger

	mu      sync.Mutex
	entries []*url.URL
	pos     int
}

// NewHistory starts a history at raw. An empty raw starts at "/".
func NewHistory(raw string, log zerolog.Logger) (*History, error) {
	if raw == "" {
		raw = "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	// only the path and query are navigation state
	u = &url.URL{Path: u.Path, RawQuery: u.RawQuery}
	return &History{log: log, entries: []*url.URL{u}}, nil
}

// URL returns the current location, path and query.
func (h *History) URL() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current().String()
}

func (h *History) PlaylistID(ctx context.Context) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	h.mu.Lock()
	path := h.current().Path
	h.mu.Unlock()

	id, ok := ParsePlaylistID(path)
	if !ok {
		h.log.Debug().Str("path", path).Msg("retrieved playlist id but got nothing")
		return "", false
	}
	h.log.Debug().Str("playlist_id", id).Msg("retrieved playlist id")
	return id, true
}

// SetPlaylistID navigates to the playlist path and keeps the query.
func (h *History) SetPlaylistID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: playlist id %q", ErrInvalidURL, id)
	}
	h.log.Debug().Str("playlist_id", id).Msg("set playlist id")

	h.mu.Lock()
	defer h.mu.Unlock()
	next := *h.current()
	next.Path = PlaylistPathPrefix + id
	h.push(&next)
	return nil
}

func (h *History) VideoID(ctx context.Context) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	h.mu.Lock()
	id := h.current().Query().Get(VideoIDParam)
	h.mu.Unlock()

	if id == "" {
		h.log.Debug().Msg("retrieved video id but got nothing")
		return "", false
	}
	h.log.Debug().Str("video_id", id).Msg("retrieved video id")
	return id, true
}

// SetVideoID updates the video query parameter and leaves the path and the
// other parameters alone.
func (h *History) SetVideoID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.log.Debug().Str("video_id", id).Msg("set video id")

	h.mu.Lock()
	defer h.mu.Unlock()
	next := *h.current()
	q := next.Query()
	q.Set(VideoIDParam, id)
	next.RawQuery = q.Encode()
	h.push(&next)
	return nil
}

// Back moves one entry back. It reports false at the oldest entry.
func (h *History) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pos == 0 {
		return false
	}
	h.pos--
	return true
}

// Forward moves one entry forward. It reports false at the newest entry.
func (h *History) Forward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pos >= len(h.entries)-1 {
		return false
	}
	h.pos++
	return true
}

func (h *History) current() *url.URL {
	return h.entries[h.pos]
}

func (h *History) push(u *url.URL) {
	if u.String() == h.current().String() {
		return
	}
	h.entries = append(h.entries[:h.pos+1], u)
	h.pos = len(h.entries) - 1
}

// ParsePlaylistID extracts the playlist id from a path.
func ParsePlaylistID(path string) (string, bool) {
	m := playlistPattern.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	return m[1], true
}
