// Package cliui styles the interactive-game subcommand's terminal output,
// grounded on the teacher's internal/tui static-style palette.
package cliui

import "github.com/charmbracelet/lipgloss"

var (
	BoardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	PromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	WinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	DrawStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)
)

// Board wraps a formatted board string in BoardStyle for terminal output.
func Board(formatted string) string {
	return BoardStyle.Render(formatted)
}

// Prompt renders an input prompt.
func Prompt(text string) string {
	return PromptStyle.Render(text)
}

// Outcome renders the winner line for a finished game: winner == -1 is a
// draw, otherwise it names the winning player index.
func Outcome(winner int) string {
	if winner == -1 {
		return DrawStyle.Render("draw")
	}
	return WinnerStyle.Render(playerLabel(winner) + " wins")
}

func playerLabel(player int) string {
	switch player {
	case 0:
		return "player 0"
	case 1:
		return "player 1"
	default:
		return "player"
	}
}
