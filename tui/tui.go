package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/spiritmaster/engine"
	"github.com/nathoo/spiritmaster/engine/save"
	"github.com/nathoo/spiritmaster/engine/state"
	"github.com/nathoo/spiritmaster/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the spiritmaster TUI.
type Model struct {
	engine *engine.Engine
	defs   *state.Defs

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated narrative lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
	saveDir  string
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs) Model {
	return NewWithSaveDir(eng, defs, "")
}

// NewWithSaveDir is New with an explicit save directory; empty means the
// default under the user's home.
func NewWithSaveDir(eng *engine.Engine, defs *state.Defs, saveDir string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	if saveDir == "" {
		home, _ := os.UserHomeDir()
		saveDir = filepath.Join(home, ".spiritmaster", "saves")
	}
	return Model{
		engine:  eng,
		defs:    defs,
		input:   ti,
		history: NewHistory(100),
		saveDir: saveDir,
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, defs *state.Defs, saveDir string) error {
	m := NewWithSaveDir(eng, defs, saveDir)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces intro text and the player's status.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		var lines []string

		arena := m.defs.Arena
		header := arena.Title
		if arena.Version != "" {
			header += " v" + arena.Version
		}
		if arena.Author != "" {
			header += " by " + arena.Author
		}
		lines = append(lines, header, "")

		if arena.Intro != "" {
			lines = append(lines, arena.Intro, "")
		}

		result := m.engine.Step("status")
		lines = append(lines, result.Output...)

		return gameOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Game command.
	result := m.engine.Step(input)
	output := result.Output
	if m.trace {
		output = append(output, m.formatTrace(result)...)
	}
	m = m.appendOutput(gameOutputMsg{input: input, lines: output})
	return m, nil
}

// appendOutput adds lines to the narrative and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. Preserves existing newlines within the text.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/export":
		return m.cmdExport(arg), false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(m.engine.State, m.defs)
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	if err := m.writeFile(name+".json", data); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	return []string{fmt.Sprintf("Game saved to %s.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(m.saveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	sd, err := save.Load(data)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	save.ApplySave(m.engine.State, sd)
	m.engine.RestoreRNG(sd.RNGSeed, sd.RNGPosition)

	output := []string{fmt.Sprintf("Game loaded from %s (%d battles).", name, sd.Battles)}
	result := m.engine.Step("status")
	output = append(output, result.Output...)
	return output
}

func (m *Model) cmdExport(name string) []string {
	rec := m.engine.LastBattle
	if rec == nil {
		return []string{"No battle to export yet."}
	}
	if name == "" {
		name = "last_battle"
	}

	data, err := save.ExportBattle(*rec)
	if err != nil {
		return []string{fmt.Sprintf("Export failed: %v", err)}
	}
	if err := m.writeFile(name+".battle.json", data); err != nil {
		return []string{fmt.Sprintf("Export failed: %v", err)}
	}
	return []string{fmt.Sprintf("Battle exported to %s (%d entries).", name, len(rec.Result.Log))}
}

func (m *Model) writeFile(name string, data []byte) error {
	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(m.saveDir, name), data, 0o644)
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /save [name]    — Save session (default: quicksave)",
		"  /load [name]    — Load session (default: quicksave)",
		"  /export [name]  — Write the last battle as JSON",
		"  /quit           — Exit",
		"  /help           — Show this help",
		"  /state          — Debug: dump current state",
		"  /trace          — Toggle raw battle log output",
		"",
		"Battle commands:",
		"  fight <team> (f)          — Spar with a team, no stakes",
		"  raid <team>               — Fight for 20% of their gold (20 energy)",
		"  odds <team> [runs] (o)    — Simulate many battles",
		"  teams / abilities / species",
		"",
		"Roster commands:",
		"  roster                    — Your spirits and their stats",
		"  status (s)                — Gold, energy and record",
		"  train <spirit> <stat>     — +1..3 to a stat (10 energy)",
		"  hatch                     — Hatch a new spirit (1000 gold)",
		"  evolve <spirit>           — Evolve at level 10",
		"  craft <item>              — Buy gear or a business",
		"  equip <item> on <spirit>  — Wear gear from your inventory",
		"  unequip <slot> from <spirit> — Return worn gear to your inventory",
		"  history                   — Recent recorded battles",
		"  again (g)                 — Repeat your last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdState() []string {
	s := m.engine.State
	output := []string{
		fmt.Sprintf("Profile: %+v", s.Profile),
		fmt.Sprintf("Roster: %d spirits", len(s.Roster)),
		fmt.Sprintf("Inventory: %v", s.Inventory),
		fmt.Sprintf("Battles: %d (%d won)", s.Battles, s.Wins),
		fmt.Sprintf("RNG: seed %d, position %d", s.RNGSeed, s.RNGPosition),
	}
	if len(s.TeamGold) > 0 {
		output = append(output, fmt.Sprintf("Team gold: %v", s.TeamGold))
	}
	return output
}

func (m *Model) formatTrace(result types.Result) []string {
	if result.Battle == nil {
		return nil
	}
	lines := []string{fmt.Sprintf("[trace] Log entries: %d", len(result.Battle.Log))}
	for _, e := range result.Battle.Log {
		lines = append(lines, "[trace]   "+engine.TraceLine(e))
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
