package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/wifiprov/internal/ui"
	"github.com/muurk/wifiprov/internal/version"
)

// Application branding constants
const (
	AppName   = "WIFIPROV"
	GitHubURL = "github.com/muurk/wifiprov"
)

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 60 // Minimum supported terminal width
	MaxContentWidth  = 120
	chromeHeight     = 12 // Header, status, form and footer rows around the list
)

// Common styles
var (
	// Title style for section headings
	TitleStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor).
			Bold(true)

	// Subtle style for secondary information
	SubtleStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor)

	// Selected list row marker
	SelectedMarkerStyle = lipgloss.NewStyle().
				Foreground(ui.SuccessColor).
				Bold(true)

	// Spinner style
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor)

	// Focused input label
	FocusedInputStyle = lipgloss.NewStyle().
				Foreground(ui.PrimaryColor).
				Bold(true)

	// Blurred input label
	BlurredInputStyle = lipgloss.NewStyle().
				Foreground(ui.MutedColor)

	// Form box around the credential inputs
	FormBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.PrimaryColor).
			Padding(0, 1)

	// Success box for the final screen
	SuccessBoxStyle = lipgloss.NewStyle().
			Foreground(ui.SuccessColor).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.SuccessColor).
			Padding(1, 2)
)

// BuildHeaderContent creates header content with app name and GitHub URL
func BuildHeaderContent() string {
	left := lipgloss.NewStyle().
		Foreground(ui.TextColor).
		Bold(true).
		Render(AppName + " v" + version.Version)

	right := SubtleStyle.Render(GitHubURL)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// RenderApplicationContainer wraps screen content with the application
// header, a context-sensitive footer and an outer border filling the terminal.
func RenderApplicationContainer(content, footerText string, width, height int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(ui.PrimaryColor).
		Width(width-4).
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(ui.PrimaryColor).
		Width(width-4).
		Padding(0, 1)

	contentStyle := lipgloss.NewStyle().
		Width(width-4).
		Padding(0, 1)

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(BuildHeaderContent()),
		contentStyle.Render(content),
		footerStyle.Render(SubtleStyle.Render(footerText)),
	)

	border := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(ui.PrimaryColor).
		Width(width - 2)
	if height > 2 {
		border = border.Height(height - 2).AlignVertical(lipgloss.Top)
	}

	if height <= 0 {
		return border.Render(inner)
	}
	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, border.Render(inner))
}
