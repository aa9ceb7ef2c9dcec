// Package tui provides a Bubble Tea terminal UI for spiritmaster.
package tui

import "strings"

// History remembers recent game commands for Up/Down recall. Meta commands
// and the "again"/"g" shortcuts are not kept: recalling them would replay a
// save or load, or repeat whatever ran last rather than what was typed.
type History struct {
	entries []string
	max     int
	cursor  int // -1 while the player is typing fresh input
}

// NewHistory creates a history that keeps at most max commands.
func NewHistory(max int) *History {
	return &History{
		entries: make([]string, 0, max),
		max:     max,
		cursor:  -1,
	}
}

// recallable reports whether a submitted line belongs in history.
func recallable(cmd string) bool {
	if cmd == "" || strings.HasPrefix(cmd, "/") {
		return false
	}
	switch strings.ToLower(cmd) {
	case "again", "g":
		return false
	}
	return true
}

// Push records a command. Runs of spaces are collapsed, and a command equal
// to the newest entry (ignoring case) is not stored twice.
func (h *History) Push(cmd string) {
	cmd = strings.Join(strings.Fields(cmd), " ")
	if !recallable(cmd) {
		return
	}
	if n := len(h.entries); n > 0 && strings.EqualFold(h.entries[n-1], cmd) {
		return
	}
	h.entries = append(h.entries, cmd)
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
}

// Prev steps back to an older command, stopping at the oldest.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next steps forward to a newer command. Past the newest it returns false
// and the input goes back to blank.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= len(h.entries) {
		h.cursor = -1
		return "", false
	}
	return h.entries[h.cursor], true
}

// ResetCursor leaves recall mode.
func (h *History) ResetCursor() {
	h.cursor = -1
}
