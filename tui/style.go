package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleHint = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSuccess = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78")).
			Bold(true)

	styleAchievement = lipgloss.NewStyle().
				Foreground(lipgloss.Color("220")).
				Bold(true)

	styleLesson = lipgloss.NewStyle().
			Foreground(lipgloss.Color("223")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("180")).
			PaddingLeft(1)

	styleSource = lipgloss.NewStyle().
			Foreground(lipgloss.Color("180")).
			Italic(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindHint
	kindDialogue
	kindSuccess
	kindAchievement
	kindLesson
	kindSource
	kindSystem
	kindError
	kindTrace
)

// errorPrefixes start lines that report a refused action.
var errorPrefixes = []string{
	"⚠️",
	"Walk closer",
	"Walk to Shimon",
	"You need a",
	"Not enough coins",
	"There is no",
	"You don't",
	"You are already",
	"Buy an animal",
	"Shimon only sells",
}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "🏆"):
		return kindAchievement
	case strings.HasPrefix(line, "📖"):
		return kindSource
	case strings.HasPrefix(line, "→"):
		return kindHint
	case strings.HasPrefix(line, "Completed"),
		strings.HasPrefix(line, "✨"),
		strings.HasSuffix(line, ": done!"):
		return kindSuccess
	case hasErrorPrefix(line):
		return kindError
	case strings.Contains(line, `: "`):
		return kindDialogue
	default:
		return kindNarrative
	}
}

func hasErrorPrefix(line string) bool {
	for _, p := range errorPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// styledPlayerInput renders the echoed player input in green with "> " prefix.
func styledPlayerInput(input string) string {
	return stylePlayerInput.Render("> " + input)
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
