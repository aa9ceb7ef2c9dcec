package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing
// the player's purse, energy, battle record, and RNG position.
func (m Model) renderStatusBar() string {
	s := m.engine.State
	p := s.Profile

	left := fmt.Sprintf(" %s | Gold: %d | Energy: %d/%d", p.Name, p.Gold, p.Energy, p.MaxEnergy)
	right := fmt.Sprintf("RNG:%d ", s.RNGPosition)

	candidate := fmt.Sprintf("Battles: %d (%d won) | RNG:%d ", s.Battles, s.Wins, s.RNGPosition)
	if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
		right = candidate
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
