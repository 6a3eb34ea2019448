package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"iplay/catalog"
	"iplay/directory"
)

const searchHeight = 3

// Component models for bubbleboxer
type searchModel struct {
	width, height int
	textInput     textinput.Model
	searching     bool
}

func newSearchModel() searchModel {
	ti := textinput.New()
	ti.Placeholder = "Filter playlists..."
	ti.CharLimit = 64
	ti.Width = 20
	return searchModel{textInput: ti}
}

func (m searchModel) Init() tea.Cmd { return nil }

func (m searchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = max(msg.Width-4, 1)
	}
	return m, nil
}

func (m searchModel) View() string {
	if m.height <= 0 || m.width <= 0 {
		return ""
	}

	lines := []string{titleStyle.Render("Search")}
	switch {
	case m.searching:
		lines = append(lines, m.textInput.View())
	case m.textInput.Value() != "":
		lines = append(lines, runewidth.Truncate("filter: "+m.textInput.Value(), m.width, "..."))
	default:
		lines = append(lines, mutedStyle.Render("/ to filter"))
	}
	if len(lines) > m.height {
		lines = lines[:m.height]
	}
	return strings.Join(lines, "\n")
}

// sidebarEntry is a summary entry that passed the filter, with its index
// in the summary.
type sidebarEntry struct {
	index int
	catalog.Entry
}

func filterEntries(entries []catalog.Entry, query string) []sidebarEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []sidebarEntry
	for i, e := range entries {
		if query == "" || strings.Contains(strings.ToLower(e.Name), query) {
			out = append(out, sidebarEntry{index: i, Entry: e})
		}
	}
	return out
}

type playlistsModel struct {
	width, height int
	selectedItem  int
	focused       bool
	scrollOffset  int
	query         string
	directory     *directory.Controller
}

func (m playlistsModel) Init() tea.Cmd { return nil }

func (m playlistsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m playlistsModel) items() []sidebarEntry {
	return filterEntries(m.directory.Summary().Playlists, m.query)
}

// visibleItems is how many entries fit below the title, keeping a line for
// the scroll indicator when they do not all fit.
func (m playlistsModel) visibleItems(total int) int {
	_, height := innerSize(m.width, m.height)
	visible := height - 2
	if total > visible {
		visible--
	}
	return max(visible, 0)
}

func (m playlistsModel) View() string {
	if m.width < 5 || m.height < 3 {
		return ""
	}
	width, height := innerSize(m.width, m.height)
	title := titleStyle.Render("Playlists")

	var lines []string
	switch {
	case m.directory.Loading():
		lines = []string{title, "", "Loading..."}
	case m.directory.Err() != nil && len(m.directory.Summary().Playlists) == 0:
		lines = []string{
			title,
			"",
			errorStyle.Render("Playlists unavailable"),
			mutedStyle.Render(runewidth.Truncate(m.directory.Err().Error(), width, "...")),
		}
	default:
		lines = m.listLines(title, width)
		if err := m.directory.Err(); err != nil {
			lines = append(lines,
				"",
				errorStyle.Render("Playlist unavailable"),
				mutedStyle.Render(runewidth.Truncate(err.Error(), width, "...")),
			)
		}
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return frame(m.focused, m.width, m.height, strings.Join(lines, "\n"))
}

func (m playlistsModel) listLines(title string, width int) []string {
	items := m.items()
	if len(items) == 0 {
		return []string{title, "", mutedStyle.Render("No playlists")}
	}

	lines := []string{title, ""}
	visible := m.visibleItems(len(items))
	start := m.scrollOffset
	end := min(start+visible, len(items))
	active := m.directory.Active()

	for i := start; i < end; i++ {
		item := items[i]
		line := runewidth.Truncate("  "+item.Name, width, "...")
		switch {
		case m.focused && i == m.selectedItem:
			line = selectedItemStyle.Render(runewidth.Truncate("> "+item.Name, width, "..."))
		case item.index == active:
			line = activeItemStyle.Render(runewidth.Truncate("* "+item.Name, width, "..."))
		case i == m.selectedItem:
			line = unfocusedSelectedItemStyle.Render(runewidth.Truncate("> "+item.Name, width, "..."))
		}
		lines = append(lines, line)
	}

	if len(items) > visible {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("[%d/%d]", m.selectedItem+1, len(items))))
	}
	return lines
}
