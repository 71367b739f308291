package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the pre-computed lipgloss styles for the chat view.
type Styles struct {
	Header         lipgloss.Style
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemText     lipgloss.Style
	ErrorText      lipgloss.Style
	InputArea      lipgloss.Style
	Footer         lipgloss.Style
	Badge          lipgloss.Style
}

// NewStyles builds the default style set.
func NewStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Padding(0, 1),
		UserLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		AssistantLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")),
		SystemText: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true),
		ErrorText: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		InputArea: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1),
		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1),
	}
}
