package console

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
)

// renderOutput styles a command result, wrapping it to width when positive.
func renderOutput(text string, failed bool, width int) string {
	s := lipgloss.NewStyle()
	if failed {
		s = errorStyle
	}
	if width > 0 {
		s = s.Width(width)
	}
	return s.Render(text)
}
