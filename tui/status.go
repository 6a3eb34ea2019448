package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"iplay/daemon"
	"iplay/keyboard"
	"iplay/location"
	"iplay/player"
	"iplay/playlist"
)

const playerHeight = 6

type playerModel struct {
	width, height int
	player        *player.Controller
	playlist      *playlist.Controller
	history       *location.History
}

func (m playerModel) Init() tea.Cmd { return nil }

func (m playerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m playerModel) View() string {
	if m.width < 5 || m.height < 3 {
		return ""
	}
	width, height := innerSize(m.width, m.height)
	status := m.player.Status()

	progress := fmt.Sprintf("%s  %s / %s", stateLabel(status.State), formatSeconds(status.Position), formatSeconds(status.Duration))
	lines := []string{
		titleStyle.Render("Player") + "  " + progress,
		m.nowPlaying(width),
	}
	if status.Err != nil {
		lines = append(lines, errorStyle.Render(runewidth.Truncate("player: "+status.Err.Error(), width, "...")))
	}
	lines = append(lines, linkStyle.Render(runewidth.Truncate(m.history.URL(), width, "...")))

	if len(lines) > height {
		lines = lines[:height]
	}
	return frame(false, m.width, m.height, strings.Join(lines, "\n"))
}

func (m playerModel) nowPlaying(width int) string {
	tracks := m.playlist.Tracks()
	i := m.playlist.Playing()
	if i < 0 || i >= len(tracks) {
		if id := m.player.Status().VideoID; id != "" {
			return runewidth.Truncate("video "+id, width, "...")
		}
		return mutedStyle.Render("Nothing playing")
	}
	t := tracks[i]
	return activeItemStyle.Render(runewidth.Truncate(fmt.Sprintf("%s by %s", t.Title, t.Author), width, "..."))
}

func stateLabel(s daemon.State) string {
	switch s {
	case daemon.Playing:
		return "|> playing"
	case daemon.Paused:
		return "|| paused"
	case daemon.Buffering:
		return ".. buffering"
	case daemon.Cued:
		return "-- cued"
	case daemon.Ended:
		return "[] ended"
	default:
		return "-- idle"
	}
}

type instructionsModel struct {
	width        int
	height       int
	currentFocus focusArea
	help         help.Model
	keys         keyboard.KeyMap
}

func (m instructionsModel) Init() tea.Cmd { return nil }

func (m instructionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m instructionsModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	focus := mutedStyle.Render(fmt.Sprintf("Focus: %s | ", m.currentFocus))
	var content string
	if m.help.ShowAll {
		content = focus + "\n" + m.help.FullHelpView(m.keys.FullHelp())
	} else {
		content = focus + m.help.ShortHelpView(m.keys.ShortHelp())
	}
	return lipgloss.NewStyle().MaxWidth(m.width).MaxHeight(m.height).Render(content)
}

// instructionsHeight is the number of lines the help needs.
func instructionsHeight(showAll bool, keys keyboard.KeyMap) int {
	if !showAll {
		return 1
	}
	rows := 0
	for _, column := range keys.FullHelp() {
		rows = max(rows, len(column))
	}
	return rows + 1
}
