// Package tui is the terminal front end: a playlist sidebar, the track list
// and the player status, driven by the keyboard.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/treilik/bubbleboxer"

	"iplay/bus"
	"iplay/directory"
	"iplay/keyboard"
	"iplay/location"
	"iplay/loop"
	"iplay/player"
	"iplay/playlist"
)

// Focus areas
type focusArea int

const (
	focusSearch focusArea = iota
	focusPlaylists
	focusMain
)

func (f focusArea) String() string {
	switch f {
	case focusSearch:
		return "Search"
	case focusPlaylists:
		return "Playlists"
	default:
		return "Tracks"
	}
}

// Catalog serves the playlist summary and the tracks of each playlist.
type Catalog interface {
	directory.Fetcher
	playlist.Fetcher
}

// Options are the collaborators of the UI.
type Options struct {
	Log      zerolog.Logger
	History  *location.History
	Catalog  Catalog
	Player   player.Embedded
	Interval time.Duration
}

// Model represents the application state using bubbleboxer
type Model struct {
	boxer                bubbleboxer.Boxer
	ctx                  context.Context
	log                  zerolog.Logger
	keys                 keyboard.KeyMap
	router               *keyboard.Router
	history              *location.History
	players              *bus.PlayerBus
	directory            *directory.Controller
	playlist             *playlist.Controller
	player               *player.Controller
	tracks               *tracksView
	layout               *layoutState
	currentFocus         focusArea
	selectedPlaylistItem int
	sidebarSynced        bool
	ctrlWPressed         bool
}

// layoutState is read by the layout size functions.
type layoutState struct {
	width, height int
	instructions  int
}

// NewModel wires the controllers together. Nothing runs until Init.
func NewModel(ctx context.Context, opts Options, l loop.Loop) Model {
	players := bus.NewPlayerBus()
	playlists := bus.NewPlaylistBus()
	keys := keyboard.DefaultKeyMap()

	view := &tracksView{}
	list := playlist.New(opts.Log.With().Str("component", "playlist").Logger(), l, opts.History, opts.Catalog, view, players, playlists)
	view.rows = func() int { return len(list.Tracks()) }

	ply := player.New(opts.Log.With().Str("component", "player").Logger(), l, opts.History, opts.Player, players, playlists)
	if opts.Interval > 0 {
		ply.Interval = opts.Interval
	}
	dir := directory.New(opts.Log.With().Str("component", "directory").Logger(), l, opts.History, opts.Catalog, playlists)

	layout := &layoutState{instructions: instructionsHeight(false, keys)}
	boxer := bubbleboxer.Boxer{
		ModelMap: make(map[string]tea.Model),
	}

	// Create leaf nodes
	searchLeaf, _ := boxer.CreateLeaf("search", newSearchModel())
	playlistsLeaf, _ := boxer.CreateLeaf("playlists", playlistsModel{directory: dir})
	tracksLeaf, _ := boxer.CreateLeaf("tracks", tracksModel{view: view, playlist: list, focused: true})
	playerLeaf, _ := boxer.CreateLeaf("player", playerModel{player: ply, playlist: list, history: opts.History})
	instructionsLeaf, _ := boxer.CreateLeaf("instructions", instructionsModel{help: help.New(), keys: keys, currentFocus: focusMain})

	sidebar := bubbleboxer.Node{
		Children:        []bubbleboxer.Node{searchLeaf, playlistsLeaf},
		VerticalStacked: true,
		SizeFunc: func(node bubbleboxer.Node, widthOrHeight int) []int {
			return []int{searchHeight, max(widthOrHeight-searchHeight, 0)}
		},
	}

	mainContent := bubbleboxer.Node{
		Children:        []bubbleboxer.Node{tracksLeaf, playerLeaf},
		VerticalStacked: true,
		SizeFunc: func(node bubbleboxer.Node, widthOrHeight int) []int {
			return []int{max(widthOrHeight-playerHeight, 0), min(playerHeight, widthOrHeight)}
		},
	}

	body := bubbleboxer.Node{
		Children:        []bubbleboxer.Node{sidebar, mainContent},
		VerticalStacked: false,
		SizeFunc: func(node bubbleboxer.Node, widthOrHeight int) []int {
			// Sidebar gets 1/4, clamped
			sidebarWidth := min(max(widthOrHeight/4, 24), 40, widthOrHeight)
			return []int{sidebarWidth, widthOrHeight - sidebarWidth}
		},
	}

	boxer.LayoutTree = bubbleboxer.Node{
		Children:        []bubbleboxer.Node{body, instructionsLeaf},
		VerticalStacked: true,
		SizeFunc: func(node bubbleboxer.Node, widthOrHeight int) []int {
			instructions := min(layout.instructions, widthOrHeight)
			return []int{widthOrHeight - instructions, instructions}
		},
	}

	return Model{
		boxer:        boxer,
		ctx:          ctx,
		log:          opts.Log,
		keys:         keys,
		router:       keyboard.NewRouter(keys, players, playlists),
		history:      opts.History,
		players:      players,
		directory:    dir,
		playlist:     list,
		player:       ply,
		tracks:       view,
		layout:       layout,
		currentFocus: focusMain,
	}
}

// Init starts the controllers. The playlist subscribes first so it sees the
// load the directory sends.
func (m Model) Init() tea.Cmd {
	m.playlist.Start(m.ctx)
	m.player.Start(m.ctx)
	m.directory.Activate(m.ctx)
	return nil
}

// Close stops the controllers.
func (m Model) Close() {
	m.player.Close()
	m.playlist.Close()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Update the boxer first
	var cmd tea.Cmd
	updatedBoxer, boxerCmd := m.boxer.Update(msg)
	m.boxer = updatedBoxer.(bubbleboxer.Boxer)
	if boxerCmd != nil {
		cmd = boxerCmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.width = msg.Width
		m.layout.height = msg.Height
		m.tracks.fit()
		playlist.ScrollIntoView(m.tracks, m.playlist.Selected())
		m.updatePlaylistSelection()

	case continueMsg:
		msg()

	case tea.KeyMsg:
		m, cmd = m.handleKey(msg, cmd)
	}

	m.syncSidebar()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg, cmd tea.Cmd) (Model, tea.Cmd) {
	// Handle Ctrl+W combinations
	if m.ctrlWPressed {
		m.ctrlWPressed = false
		switch msg.String() {
		case "h":
			if m.currentFocus == focusMain {
				m.currentFocus = focusPlaylists
			}
		case "l":
			if m.currentFocus == focusPlaylists {
				m.currentFocus = focusMain
			}
		case "k":
			if m.currentFocus == focusPlaylists {
				m.currentFocus = focusSearch
			}
		case "j":
			if m.currentFocus == focusSearch {
				m.currentFocus = focusPlaylists
			}
		}
		m.updateFocus()
		return m, nil
	}

	if m.currentFocus == focusSearch {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Search):
		m.currentFocus = focusSearch
		m.updateFocus()
		return m, nil

	case msg.String() == "ctrl+w":
		m.ctrlWPressed = true
		return m, nil

	case key.Matches(msg, m.keys.TabFocus):
		if m.currentFocus == focusPlaylists {
			m.currentFocus = focusMain
		} else {
			m.currentFocus = focusPlaylists
		}
		m.updateFocus()
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.navigate(m.history.Back)
		return m, nil

	case key.Matches(msg, m.keys.Forward):
		m.navigate(m.history.Forward)
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.toggleHelp()
		return m, nil
	}

	if m.currentFocus == focusMain {
		if m.router.Route(msg) {
			return m, nil
		}
		return m, cmd
	}

	if m.router.Playback(msg) {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selectedPlaylistItem > 0 {
			m.selectedPlaylistItem--
			m.updatePlaylistSelection()
		}
	case key.Matches(msg, m.keys.Down):
		if m.selectedPlaylistItem < len(m.sidebarItems())-1 {
			m.selectedPlaylistItem++
			m.updatePlaylistSelection()
		}
	case key.Matches(msg, m.keys.Play):
		items := m.sidebarItems()
		if m.selectedPlaylistItem >= 0 && m.selectedPlaylistItem < len(items) {
			m.directory.Select(items[m.selectedPlaylistItem].index)
			m.currentFocus = focusMain
			m.updateFocus()
		}
	}
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.currentFocus = focusPlaylists
		m.updateFocus()
		return m, nil
	case "esc":
		// Clear search and return to playlists
		m.boxer.EditLeaf("search", func(model tea.Model) (tea.Model, error) {
			sh := model.(searchModel)
			sh.textInput.SetValue("")
			return sh, nil
		})
		m.setQuery("")
		m.currentFocus = focusPlaylists
		m.updateFocus()
		return m, nil
	}

	// Forward all other key events to the search input
	var cmd tea.Cmd
	var query string
	m.boxer.EditLeaf("search", func(model tea.Model) (tea.Model, error) {
		sh := model.(searchModel)
		sh.textInput, cmd = sh.textInput.Update(msg)
		query = sh.textInput.Value()
		return sh, nil
	})
	m.setQuery(query)
	return m, cmd
}

// navigate moves through the location history and brings the controllers
// in line with the new location. The player is re-cued only when the video
// changed.
func (m *Model) navigate(move func() bool) {
	before, _ := m.history.VideoID(m.ctx)
	if !move() {
		return
	}
	m.log.Debug().Str("url", m.history.URL()).Msg("history moved")
	m.directory.Sync()
	m.followActivePlaylist()

	if after, _ := m.history.VideoID(m.ctx); after != before {
		m.players.Send(bus.VideoIDChanged)
	}
}

// syncSidebar puts the sidebar cursor on the playlist opened at start.
func (m *Model) syncSidebar() {
	if m.sidebarSynced || m.directory.Loading() || m.directory.Active() < 0 {
		return
	}
	m.sidebarSynced = true
	m.followActivePlaylist()
}

func (m *Model) setQuery(query string) {
	m.boxer.EditLeaf("playlists", func(model tea.Model) (tea.Model, error) {
		pl := model.(playlistsModel)
		pl.query = query
		pl.scrollOffset = 0
		return pl, nil
	})
	m.selectedPlaylistItem = 0
	m.updatePlaylistSelection()
}

// followActivePlaylist moves the sidebar cursor onto the active playlist
// when the filter shows it.
func (m *Model) followActivePlaylist() {
	active := m.directory.Active()
	for i, item := range m.sidebarItems() {
		if item.index == active {
			m.selectedPlaylistItem = i
			m.updatePlaylistSelection()
			return
		}
	}
}

func (m *Model) sidebarItems() []sidebarEntry {
	var items []sidebarEntry
	m.boxer.EditLeaf("playlists", func(model tea.Model) (tea.Model, error) {
		pl := model.(playlistsModel)
		items = pl.items()
		return pl, nil
	})
	return items
}

func (m *Model) toggleHelp() {
	var showAll bool
	m.boxer.EditLeaf("instructions", func(model tea.Model) (tea.Model, error) {
		instr := model.(instructionsModel)
		instr.help.ShowAll = !instr.help.ShowAll
		showAll = instr.help.ShowAll
		return instr, nil
	})
	m.layout.instructions = instructionsHeight(showAll, m.keys)

	// Relayout with the new help height
	if m.layout.width > 0 && m.layout.height > 0 {
		updatedBoxer, _ := m.boxer.Update(tea.WindowSizeMsg{Width: m.layout.width, Height: m.layout.height})
		m.boxer = updatedBoxer.(bubbleboxer.Boxer)
		m.tracks.fit()
		playlist.ScrollIntoView(m.tracks, m.playlist.Selected())
	}
}

// Helper methods to update focus and selections
func (m *Model) updateFocus() {
	m.boxer.EditLeaf("search", func(model tea.Model) (tea.Model, error) {
		sh := model.(searchModel)
		sh.searching = m.currentFocus == focusSearch
		if sh.searching {
			sh.textInput.Focus()
		} else {
			sh.textInput.Blur()
		}
		return sh, nil
	})

	m.boxer.EditLeaf("playlists", func(model tea.Model) (tea.Model, error) {
		pl := model.(playlistsModel)
		pl.focused = m.currentFocus == focusPlaylists
		pl.selectedItem = m.selectedPlaylistItem
		return pl, nil
	})

	m.boxer.EditLeaf("tracks", func(model tea.Model) (tea.Model, error) {
		tr := model.(tracksModel)
		tr.focused = m.currentFocus == focusMain
		return tr, nil
	})

	m.boxer.EditLeaf("instructions", func(model tea.Model) (tea.Model, error) {
		instr := model.(instructionsModel)
		instr.currentFocus = m.currentFocus
		return instr, nil
	})
}

func (m *Model) updatePlaylistSelection() {
	m.boxer.EditLeaf("playlists", func(model tea.Model) (tea.Model, error) {
		pl := model.(playlistsModel)
		pl.selectedItem = m.selectedPlaylistItem

		visible := pl.visibleItems(len(pl.items()))

		// If selected item is above visible area, scroll up
		if m.selectedPlaylistItem < pl.scrollOffset {
			pl.scrollOffset = m.selectedPlaylistItem
		}
		// If selected item is below visible area, scroll down
		if visible > 0 && m.selectedPlaylistItem >= pl.scrollOffset+visible {
			pl.scrollOffset = m.selectedPlaylistItem - visible + 1
		}

		return pl, nil
	})
}

func (m Model) View() string {
	return m.boxer.View()
}

// Run starts the TUI application and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	l := &programLoop{}
	m := NewModel(ctx, opts, l)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	l.program = p

	_, err := p.Run()
	m.Close()
	return err
}
