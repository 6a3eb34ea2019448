package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"iplay/catalog"
	"iplay/playlist"
)

const (
	trackHeaderHeight = 2
	trackRowHeight    = 1

	durationWidth = 8
	videoIDWidth  = 11
	markerWidth   = 2
)

// tracksView is the scroll state of the track list, shared by the pane
// that draws it and the playlist controller that scrolls it.
type tracksView struct {
	offset int
	height int
	rows   func() int
}

func (v *tracksView) ScrollOffset() int { return v.offset }
func (v *tracksView) Height() int       { return v.height }
func (v *tracksView) HeaderHeight() int { return trackHeaderHeight }

func (v *tracksView) RowHeight(i int) (int, bool) {
	if v.rows == nil || i < 0 || i >= v.rows() {
		return 0, false
	}
	return trackRowHeight, true
}

func (v *tracksView) ScrollTo(offset int) {
	v.offset = max(offset, 0)
}

func (v *tracksView) visibleRows() int {
	return max(v.height-trackHeaderHeight, 0) / trackRowHeight
}

func (v *tracksView) firstRow() int {
	return v.offset / trackRowHeight
}

// fit pulls the offset back when the viewport grew past the last row.
func (v *tracksView) fit() {
	if v.rows == nil {
		return
	}
	last := max(v.rows()-v.visibleRows(), 0) * trackRowHeight
	if v.offset > last {
		v.offset = last
	}
}

type tracksModel struct {
	width, height int
	focused       bool
	view          *tracksView
	playlist      *playlist.Controller
}

func (m tracksModel) Init() tea.Cmd { return nil }

func (m tracksModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		_, inner := innerSize(m.width, m.height)
		m.view.height = inner
	}
	return m, nil
}

func (m tracksModel) View() string {
	if m.width < 5 || m.height < 3 {
		return ""
	}
	width, height := innerSize(m.width, m.height)
	lines := m.lines(width)
	if len(lines) > height {
		lines = lines[:height]
	}
	return frame(m.focused, m.width, m.height, strings.Join(lines, "\n"))
}

func (m tracksModel) lines(width int) []string {
	title := "Tracks"
	if id := m.playlist.PlaylistID(); id != "" {
		title = "Tracks: " + id
	}
	title = titleStyle.Render(runewidth.Truncate(title, width, "..."))

	switch {
	case m.playlist.Loading():
		return []string{title, "", "Loading..."}
	case m.playlist.Err() != nil:
		return []string{
			title,
			"",
			errorStyle.Render("Playlist unavailable"),
			mutedStyle.Render(runewidth.Truncate(m.playlist.Err().Error(), width, "...")),
		}
	case m.playlist.PlaylistID() == "":
		return []string{title, "", mutedStyle.Render("No playlist selected")}
	case len(m.playlist.Tracks()) == 0:
		return []string{title, "", mutedStyle.Render("This playlist is empty")}
	}

	cols := columnWidths(width)
	lines := []string{
		headerStyle.Render(row(cols, "", "TITLE", "AUTHOR", "DURATION", "VIDEO")),
		mutedStyle.Render(strings.Repeat("─", width)),
	}

	tracks := m.playlist.Tracks()
	first := m.view.firstRow()
	last := min(first+m.view.visibleRows(), len(tracks))
	for i := first; i < last; i++ {
		lines = append(lines, m.renderTrack(cols, i, tracks[i]))
	}
	return lines
}

func (m tracksModel) renderTrack(cols [5]int, i int, t catalog.Track) string {
	marker := ""
	if i == m.playlist.Playing() {
		marker = "*"
	}
	if i == m.playlist.Selected() {
		marker = ">"
	}
	line := row(cols, marker, t.Title, t.Author, t.Duration, t.VideoID)

	switch {
	case i == m.playlist.Selected() && m.focused:
		return selectedItemStyle.Render(line)
	case i == m.playlist.Playing():
		return activeItemStyle.Render(line)
	case i == m.playlist.Selected():
		return unfocusedSelectedItemStyle.Render(line)
	}
	return line
}

// columnWidths splits width into marker, title, author, duration and
// video id columns separated by one space.
func columnWidths(width int) [5]int {
	rest := max(width-markerWidth-durationWidth-videoIDWidth-3, 2)
	title := rest * 3 / 5
	return [5]int{markerWidth, title, rest - title, durationWidth, videoIDWidth}
}

func row(cols [5]int, cells ...string) string {
	var b strings.Builder
	for i, c := range cells {
		if i > 1 {
			b.WriteByte(' ')
		}
		b.WriteString(runewidth.FillRight(runewidth.Truncate(c, cols[i], "…"), cols[i]))
	}
	return b.String()
}

// formatSeconds renders a position as mm:ss, or h:mm:ss past an hour.
func formatSeconds(s float64) string {
	total := int(s)
	if total < 0 {
		total = 0
	}
	h, m, sec := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}
