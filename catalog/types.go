// Package catalog serves and fetches playlists: the summary of available
// playlists and the ordered tracks of each one.
package catalog

import (
	"errors"
	"regexp"
)

var (
	ErrNotFound    = errors.New("playlist not found")
	ErrUnavailable = errors.New("playlist unavailable")

	idPattern = regexp.MustCompile(`^[\w\-]+$`)
)

// Track is one playable video of a playlist.
type Track struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Duration string `json:"duration"`
	VideoID  string `json:"video_id"`
}

// Entry is one playlist in the summary.
type Entry struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Summary lists the playlists and names the favorite one.
type Summary struct {
	Favorite  string  `json:"favorite"`
	Playlists []Entry `json:"playlists"`
}

// IndexOf returns the position of the playlist with the given id, or -1.
func (s Summary) IndexOf(id string) int {
	for i, e := range s.Playlists {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// ValidID reports whether id is safe to use as a path element.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}
