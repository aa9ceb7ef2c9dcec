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

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleBanner = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141")).
			Bold(true)

	styleRound = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleSkill = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleMiss = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	styleDeath = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	styleVictory = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

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
	kindNarration lineKind = iota
	kindBanner
	kindRound
	kindSkill
	kindMiss
	kindDeath
	kindVictory
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "==="):
		return kindBanner
	case strings.HasPrefix(line, "-- Round"):
		return kindRound
	case strings.HasPrefix(line, "Victory!"):
		return kindVictory
	case strings.HasPrefix(line, "You can't"),
		strings.HasPrefix(line, "You don't"),
		strings.HasPrefix(line, "Too tired"),
		strings.HasPrefix(line, "I don't know"),
		strings.Contains(line, " cannot evolve"):
		return kindError
	case strings.Contains(line, " uses "):
		return kindSkill
	case strings.Contains(line, " misses "):
		return kindMiss
	case strings.HasSuffix(line, " falls."):
		return kindDeath
	default:
		return kindNarration
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindBanner:
		return styleBanner.Render(line)
	case kindRound:
		return styleRound.Render(line)
	case kindSkill:
		return styleSkill.Render(line)
	case kindMiss:
		return styleMiss.Render(line)
	case kindDeath:
		return styleDeath.Render(line)
	case kindVictory:
		return styleVictory.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
