// Spiritmaster is a deterministic creature battle resolver with a small
// raiding game on top.
// Usage: spiritmaster [--version] [--plain] [--script <file>] [--trace] [--config <dir>] [--seed <n>] [arena_directory]
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/nathoo/spiritmaster/cli"
	"github.com/nathoo/spiritmaster/config"
	"github.com/nathoo/spiritmaster/engine"
	"github.com/nathoo/spiritmaster/loader"
	"github.com/nathoo/spiritmaster/logging"
	"github.com/nathoo/spiritmaster/store"
	"github.com/nathoo/spiritmaster/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: spiritmaster [--version] [--plain] [--script <file>] [--trace] [--config <dir>] [--seed <n>] [arena_directory]\n"

func main() {
	plain := false
	trace := false
	configDir := "."
	var arenaDir, scriptFile string
	var seed int64

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("spiritmaster %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script", "--config", "--seed":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a value\n", args[i])
				os.Exit(1)
			}
			i++
			switch args[i-1] {
			case "--script":
				scriptFile = args[i]
			case "--config":
				configDir = args[i]
			case "--seed":
				n, err := strconv.ParseInt(args[i], 10, 64)
				if err != nil {
					fmt.Fprintf(os.Stderr, "--seed: %v\n", err)
					os.Exit(1)
				}
				seed = n
			}
		case "-h", "--help":
			fmt.Fprint(os.Stderr, usage)
			return
		default:
			if arenaDir == "" {
				arenaDir = args[i]
			}
		}
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if arenaDir == "" {
		arenaDir = cfg.ArenaDir
	}
	if seed == 0 {
		seed = cfg.Seed
	}

	log, logFile, err := logging.Open(cfg.LogsDir, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; logging to stderr\n", err)
		log = logging.New(os.Stderr, cfg.LogLevel)
	} else {
		defer logFile.Close()
	}

	if err := run(cfg, log, arenaDir, scriptFile, seed, plain, trace); err != nil {
		log.Error().Err(err).Msg("Exiting")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log zerolog.Logger, arenaDir, scriptFile string, seed int64, plain, trace bool) error {
	// Load and compile Lua arena content.
	defs, warnings, err := loader.Load(arenaDir)
	if err != nil {
		return fmt.Errorf("loading arena: %w", err)
	}
	for _, w := range warnings {
		log.Warn().Str("arena", arenaDir).Msg(w)
	}

	if seed != 0 {
		defs.Arena.Seed = seed
	}
	if defs.Arena.Seed == 0 {
		if defs.Arena.Seed, err = engine.NewSeed(); err != nil {
			return fmt.Errorf("seeding rng: %w", err)
		}
	}
	if cfg.MaxRounds > 0 {
		defs.Arena.MaxRounds = cfg.MaxRounds
	}
	log.Info().
		Str("arena", defs.Arena.Title).
		Int64("seed", defs.Arena.Seed).
		Int("teams", len(defs.Teams)).
		Msg("Arena loaded")

	eng := engine.New(defs)
	eng.Log = log
	eng.OddsRuns = cfg.Odds.Runs
	eng.OddsWorkers = cfg.Odds.Workers
	eng.OddsTimeout = cfg.Odds.Timeout

	if cfg.DB.Driver != "none" {
		st, err := store.Open(cfg.DB, log)
		if err != nil {
			return fmt.Errorf("opening battle store: %w", err)
		}
		defer st.Close()
		eng.Sink = st
	}

	header := fmt.Sprintf("%s v%s by %s\n\n", defs.Arena.Title, defs.Arena.Version, defs.Arena.Author)

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		fmt.Print(header)
		c := cli.New(eng, defs)
		c.In = f
		c.SaveDir = cfg.SaveDir
		c.EchoInput = true
		c.Trace = trace
		c.Run()
		return nil
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		fmt.Print(header)
		c := cli.New(eng, defs)
		c.SaveDir = cfg.SaveDir
		c.Trace = trace
		c.Run()
		return nil
	}

	return tui.Run(eng, defs, cfg.SaveDir)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
