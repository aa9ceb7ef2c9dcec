package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/spiritmaster/types"
	lua "github.com/yuin/gopher-lua"
)

// newTestVM creates a sandboxed Lua VM with the API registered and a fresh collector.
func newTestVM() (*lua.LState, *collector) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	coll := &collector{}
	registerAPI(L, coll)
	return L, coll
}

// run executes Lua source in a fresh VM and returns the collector.
func run(t *testing.T, src string) *collector {
	t.Helper()
	L, coll := newTestVM()
	defer L.Close()
	if err := L.DoString(src); err != nil {
		t.Fatal(err)
	}
	return coll
}

func TestCompileArena(t *testing.T) {
	coll := run(t, `
		Arena {
			title = "Test Arena",
			author = "Author",
			version = "1.0",
			intro = "Welcome!",
			max_rounds = 30,
			seed = 99,
			hatch_pool = { "imp", "wisp" },
		}
	`)

	arena := compileArena(coll.arena)
	if arena.Title != "Test Arena" {
		t.Errorf("Title = %q, want %q", arena.Title, "Test Arena")
	}
	if arena.Author != "Author" || arena.Version != "1.0" || arena.Intro != "Welcome!" {
		t.Errorf("metadata = %+v", arena)
	}
	if arena.MaxRounds != 30 {
		t.Errorf("MaxRounds = %d, want 30", arena.MaxRounds)
	}
	if arena.Seed != 99 {
		t.Errorf("Seed = %d, want 99", arena.Seed)
	}
	if len(arena.HatchPool) != 2 || arena.HatchPool[1] != "wisp" {
		t.Errorf("HatchPool = %v", arena.HatchPool)
	}
}

func TestCompileAbility_Defaults(t *testing.T) {
	coll := run(t, `Ability "poke" { power = 2, chance = 0.5 }`)

	if len(coll.abilities) != 1 {
		t.Fatalf("expected 1 ability, got %d", len(coll.abilities))
	}
	a := compileAbility(coll.abilities[0])
	if a.ID != "poke" || a.Name != "poke" {
		t.Errorf("ID/Name = %q/%q", a.ID, a.Name)
	}
	if a.Kind != types.KindDamage || a.Target != types.TargetEnemy {
		t.Errorf("Kind/Target = %q/%q", a.Kind, a.Target)
	}
	if a.Power != 2 || a.Chance != 0.5 {
		t.Errorf("Power/Chance = %d/%v", a.Power, a.Chance)
	}
}

func TestCompileSpecies_Stats(t *testing.T) {
	coll := run(t, `
		Species "imp" {
			name = "Shadow Imp",
			base = { max_health = 40, attack = 12, speed = 14 },
			passive = Stats { speed = 5 },
			evolves_to = "lord",
			evolve_bonus = { attack = 5 },
		}
	`)

	sp, err := compileSpecies(coll.species[0])
	if err != nil {
		t.Fatalf("compileSpecies: %v", err)
	}
	want := types.Stats{MaxHealth: 40, Attack: 12, Speed: 14}
	if sp.Base != want {
		t.Errorf("Base = %+v, want %+v", sp.Base, want)
	}
	if sp.Passive.Speed != 5 || sp.EvolveBonus.Attack != 5 {
		t.Errorf("Passive/EvolveBonus = %+v/%+v", sp.Passive, sp.EvolveBonus)
	}
	if sp.EvolvesTo != "lord" {
		t.Errorf("EvolvesTo = %q", sp.EvolvesTo)
	}
}

func TestCompileSpecies_UnknownStat(t *testing.T) {
	coll := run(t, `Species "imp" { base = { charisma = 3 } }`)

	_, err := compileSpecies(coll.species[0])
	if err == nil || !strings.Contains(err.Error(), "charisma") {
		t.Errorf("expected unknown stat error, got %v", err)
	}
}

func TestCompileSpecies_NonNumericStat(t *testing.T) {
	coll := run(t, `Species "imp" { base = { attack = "lots" } }`)

	_, err := compileSpecies(coll.species[0])
	if err == nil || !strings.Contains(err.Error(), `"attack" is not a number`) {
		t.Errorf("expected type error, got %v", err)
	}
}

func TestCompileCreature_SlotsWithGaps(t *testing.T) {
	coll := run(t, `
		Creature "nim" {
			species = "imp",
			abilities = { "slash", false, "burst" },
		}
	`)

	c, err := compileCreature(coll.creatures[0], nil)
	if err != nil {
		t.Fatalf("compileCreature: %v", err)
	}
	want := [types.MaxAbilitySlots]string{"slash", "", "burst"}
	if c.Abilities != want {
		t.Errorf("Abilities = %v, want %v", c.Abilities, want)
	}
	if c.Level != 1 {
		t.Errorf("Level = %d, want default 1", c.Level)
	}
	if c.Name != "" {
		t.Errorf("Name = %q, want empty (species name is used at build time)", c.Name)
	}
}

func TestCompileCreature_TooManySlots(t *testing.T) {
	coll := run(t, `Creature "nim" { species = "imp", abilities = { "a", "b", "c", "d" } }`)

	_, err := compileCreature(coll.creatures[0], nil)
	if err == nil || !strings.Contains(err.Error(), "4 ability slots") {
		t.Errorf("expected slot count error, got %v", err)
	}
}

func TestCompileCreature_Equipment(t *testing.T) {
	items := map[string]types.ItemDef{
		"amulet": {ID: "amulet", Slot: "head"},
		"hat":    {ID: "hat", Slot: "head"},
		"vest":   {ID: "vest", Slot: "armor"},
		"stall":  {ID: "stall"},
	}
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"ok", `Creature "c" { equipment = { "amulet", "vest" } }`, ""},
		{"unknown item", `Creature "c" { equipment = { "crown" } }`, `unknown item "crown"`},
		{"business", `Creature "c" { equipment = { "stall" } }`, "cannot be equipped"},
		{"slot clash", `Creature "c" { equipment = { "amulet", "hat" } }`, `both use slot "head"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll := run(t, tt.src)
			c, err := compileCreature(coll.creatures[0], items)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if c.Equipment["head"] != "amulet" || c.Equipment["armor"] != "vest" {
					t.Errorf("Equipment = %v", c.Equipment)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestCompilePlayer_Defaults(t *testing.T) {
	coll := run(t, `Player { gold = 10, roster = { "nim" } }`)

	p := compilePlayer(coll.player)
	if p.Profile.Name != "You" {
		t.Errorf("Name = %q, want You", p.Profile.Name)
	}
	if p.Profile.MaxEnergy != 100 || p.Profile.Energy != 100 {
		t.Errorf("energy = %d/%d, want 100/100", p.Profile.Energy, p.Profile.MaxEnergy)
	}
	if p.Profile.Gold != 10 || len(p.Roster) != 1 {
		t.Errorf("player = %+v", p)
	}
}

func TestCompilePlayer_ExplicitZeroEnergy(t *testing.T) {
	coll := run(t, `Player { energy = 0, max_energy = 50, roster = { "nim" } }`)

	p := compilePlayer(coll.player)
	if p.Profile.Energy != 0 || p.Profile.MaxEnergy != 50 {
		t.Errorf("energy = %d/%d, want 0/50", p.Profile.Energy, p.Profile.MaxEnergy)
	}
}

func TestCompile_DuplicateIDs(t *testing.T) {
	coll := run(t, `
		Arena { title = "T" }
		Player { roster = {} }
		Ability "slash" { power = 1 }
		Ability "slash" { power = 2 }
	`)

	ve := &ValidationError{}
	defs, err := compile(coll, ve)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	assertContains(t, ve.Errors, `duplicate ability ID "slash"`)
	if defs.Abilities["slash"].Power != 1 {
		t.Errorf("first definition should win, got power %d", defs.Abilities["slash"].Power)
	}
}

func TestCompile_MissingArena(t *testing.T) {
	coll := run(t, `Player { roster = { "nim" } }`)

	if _, err := compile(coll, &ValidationError{}); err == nil {
		t.Error("expected error for missing Arena")
	}
}

func TestSandbox_RemovesDangerousGlobals(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "require", "os", "io"} {
		if L.GetGlobal(name) != lua.LNil {
			t.Errorf("global %q should be nil", name)
		}
	}
	if err := L.DoString(`math.randomseed(1)`); err == nil {
		t.Error("math.randomseed should be unavailable")
	}
}

func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"teams.lua", "arena.lua", "abilities.lua"})
	want := []string{"arena.lua", "abilities.lua", "teams.lua"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sortedLuaFiles = %v, want %v", got, want)
		}
	}
}
