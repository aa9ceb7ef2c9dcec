// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the spiritmaster battle engine.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/spiritmaster/engine"
	"github.com/nathoo/spiritmaster/engine/save"
	"github.com/nathoo/spiritmaster/engine/state"
	"github.com/nathoo/spiritmaster/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	Defs      *state.Defs
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs) *CLI {
	home, _ := os.UserHomeDir()
	saveDir := filepath.Join(home, ".spiritmaster", "saves")
	return &CLI{
		Engine:  eng,
		Defs:    defs,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: saveDir,
	}
}

// Run starts the session loop. It shows the intro and the player's status,
// then loops: prompt → input → dispatch → output.
func (c *CLI) Run() {
	if c.Defs.Arena.Intro != "" {
		c.printLine(c.Defs.Arena.Intro)
		c.printLine("")
	}
	c.printResult(c.Engine.Step("status"))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.Step(input)
		c.printResult(result)

		if c.Trace {
			c.printTrace(result)
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the session should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/export":
		c.cmdExport(arg)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(c.Engine.State, c.Defs)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if err := c.writeFile(name+".json", data); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(c.SaveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	sd, err := save.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	save.ApplySave(c.Engine.State, sd)
	c.Engine.RestoreRNG(sd.RNGSeed, sd.RNGPosition)
	c.printSystem(fmt.Sprintf("Game loaded from %s (%d battles).", name, sd.Battles))

	c.printResult(c.Engine.Step("status"))
}

func (c *CLI) cmdExport(name string) {
	rec := c.Engine.LastBattle
	if rec == nil {
		c.printSystem("No battle to export yet.")
		return
	}
	if name == "" {
		name = "last_battle"
	}

	data, err := save.ExportBattle(*rec)
	if err != nil {
		c.printSystem(fmt.Sprintf("Export failed: %v", err))
		return
	}
	if err := c.writeFile(name+".battle.json", data); err != nil {
		c.printSystem(fmt.Sprintf("Export failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Battle exported to %s (%d entries).", name, len(rec.Result.Log)))
}

func (c *CLI) writeFile(name string, data []byte) error {
	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.SaveDir, name), data, 0o644)
}

func (c *CLI) cmdHelp() {
	help := []string{
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
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	s := c.Engine.State
	c.printSystem(fmt.Sprintf("Profile: %+v", s.Profile))
	c.printSystem(fmt.Sprintf("Roster: %d spirits", len(s.Roster)))
	c.printSystem(fmt.Sprintf("Inventory: %v", s.Inventory))
	c.printSystem(fmt.Sprintf("Battles: %d (%d won)", s.Battles, s.Wins))
	c.printSystem(fmt.Sprintf("RNG: seed %d, position %d", s.RNGSeed, s.RNGPosition))
	if len(s.TeamGold) > 0 {
		c.printSystem(fmt.Sprintf("Team gold: %v", s.TeamGold))
	}
}

func (c *CLI) printTrace(result types.Result) {
	if result.Battle == nil {
		return
	}
	c.printLine(fmt.Sprintf("[trace] Log entries: %d", len(result.Battle.Log)))
	for _, e := range result.Battle.Log {
		c.printLine("[trace]   " + engine.TraceLine(e))
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
