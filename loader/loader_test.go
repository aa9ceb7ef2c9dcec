package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/spiritmaster/types"
)

// writeArena writes Lua files into a temporary arena directory.
func writeArena(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const minimalArena = `
Arena { title = "Minimal Arena", seed = 5 }
Species "imp" { name = "Imp", base = { max_health = 10, attack = 3 } }
Creature "nim" { species = "imp" }
Creature "foe" { species = "imp" }
Team "bot_1" { members = { "foe" } }
Player { roster = { "nim" } }
`

func TestLoad_MinimalArena(t *testing.T) {
	dir := writeArena(t, map[string]string{"arena.lua": minimalArena})

	defs, warnings, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if defs.Arena.Title != "Minimal Arena" {
		t.Errorf("Title = %q, want %q", defs.Arena.Title, "Minimal Arena")
	}
	if defs.Arena.Seed != 5 {
		t.Errorf("Seed = %d, want 5", defs.Arena.Seed)
	}
	if defs.Teams["bot_1"].Name != "bot_1" {
		t.Errorf("team name should default to its ID, got %q", defs.Teams["bot_1"].Name)
	}
}

func TestLoad_SplitAcrossFiles(t *testing.T) {
	// Creatures reference items defined in a later file.
	dir := writeArena(t, map[string]string{
		"arena.lua":     `Arena { title = "Split" }`,
		"creatures.lua": `Creature "nim" { species = "imp", equipment = { "amulet" } }`,
		"items.lua":     `Item "amulet" { name = "Amulet", slot = "head", bonus = { luck = 2 } }`,
		"species.lua":   `Species "imp" { base = { max_health = 10 } }`,
		"player.lua":    `Player { roster = { "nim" } }`,
	})

	defs, _, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if defs.Creatures["nim"].Equipment["head"] != "amulet" {
		t.Errorf("Equipment = %v", defs.Creatures["nim"].Equipment)
	}
}

func TestLoad_ShippedArena(t *testing.T) {
	defs, warnings, err := Load(filepath.Join("..", "arena"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if defs.Arena.Title != "Syndicate Raids" {
		t.Errorf("Title = %q", defs.Arena.Title)
	}
	for _, id := range []string{"shadow_slash", "ember_burst", "minor_heal"} {
		if _, ok := defs.Abilities[id]; !ok {
			t.Errorf("ability %q missing", id)
		}
	}
	if got := defs.Species["shadow_imp"].Base; got.MaxHealth != 40 || got.Attack != 12 {
		t.Errorf("shadow_imp base = %+v", got)
	}
	if len(defs.Teams) != 3 {
		t.Errorf("expected 3 teams, got %d", len(defs.Teams))
	}
	if got := defs.Teams["bot_2"].DefenseLayer; got != 10 {
		t.Errorf("bot_2 defense layer = %d, want 10", got)
	}
	nim := defs.Creatures["nim"]
	if nim.Abilities != [types.MaxAbilitySlots]string{"shadow_slash", "", ""} {
		t.Errorf("nim slots = %v", nim.Abilities)
	}
	if defs.Player.Profile.Gold != 2000 || len(defs.Player.Roster) != 2 {
		t.Errorf("player = %+v", defs.Player)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	dir := writeArena(t, map[string]string{"arena.lua": `
		Arena { title = "" }
		Species "imp" { base = { max_health = 10 } }
		Creature "nim" { species = "imp", abilities = { "fireball" } }
		Team "bot_1" { members = { "ghost" } }
		Player { roster = { "nim" } }
	`})

	_, warnings, err := Load(dir)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	assertContains(t, ve.Errors, "Arena.title is required")
	assertContains(t, ve.Errors, `unknown creature "ghost"`)
	assertContains(t, warnings, `unknown ability "fireball"`)
}

func TestLoad_LuaError(t *testing.T) {
	dir := writeArena(t, map[string]string{"arena.lua": `Arena { title = `})

	_, _, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "executing arena.lua") {
		t.Errorf("expected syntax error, got %v", err)
	}
}

func TestLoad_NoLuaFiles(t *testing.T) {
	dir := writeArena(t, map[string]string{"README.txt": "nothing"})

	_, _, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "no .lua files") {
		t.Errorf("expected no files error, got %v", err)
	}
}

func TestLoad_MissingDir(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestLoad_HelpersAvailable(t *testing.T) {
	// string, table and math libraries stay usable for generating content.
	dir := writeArena(t, map[string]string{"arena.lua": minimalArena + `
		for i = 2, 3 do
			Creature(string.format("foe_%d", i)) { species = "imp", level = math.max(1, i) }
		end
	`})

	defs, _, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if defs.Creatures["foe_3"].Level != 3 {
		t.Errorf("foe_3 = %+v", defs.Creatures["foe_3"])
	}
}
