package tui

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	// Colors
	primaryColor  = lipgloss.Color("#1DB954")
	textColor     = lipgloss.Color("#FFFFFF")
	mutedColor    = lipgloss.Color("#B3B3B3")
	accentColor   = lipgloss.Color("#1ED760")
	errorColor    = lipgloss.Color("#FF5F5F")
	focusedBorder = lipgloss.Color("#1DB954")
	darkText      = lipgloss.Color("#191414")

	// For the active playlist and the playing track
	activeItemStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	// For the cursor of a pane without focus
	unfocusedSelectedItemStyle = lipgloss.NewStyle().Foreground(accentColor)

	// For the cursor of the focused pane
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(darkText).
				Background(accentColor)

	focusedStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(focusedBorder)

	unfocusedStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().Foreground(errorColor)

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4A9EFF")).
			Underline(true)
)

// frame draws content inside a bordered box of exactly width x height.
func frame(focused bool, width, height int, content string) string {
	style := unfocusedStyle
	if focused {
		style = focusedStyle
	}
	return style.
		Width(width - 2).
		Height(height - 2).
		MaxWidth(width).
		MaxHeight(height).
		Render(content)
}

// innerSize is the room left for content inside frame.
func innerSize(width, height int) (int, int) {
	return max(width-4, 0), max(height-2, 0)
}
