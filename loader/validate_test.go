package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/spiritmaster/engine/state"
	"github.com/nathoo/spiritmaster/types"
)

// validDefs returns a minimal valid Defs for testing.
func validDefs() *state.Defs {
	return &state.Defs{
		Arena: types.ArenaDef{Title: "Test", HatchPool: []string{"imp"}},
		Abilities: map[string]types.Ability{
			"slash": {ID: "slash", Kind: types.KindDamage, Target: types.TargetEnemy, Power: 8, Chance: 0.25},
		},
		Species: map[string]types.SpeciesDef{
			"imp": {ID: "imp", Base: types.Stats{MaxHealth: 40, Attack: 12}},
		},
		Items: map[string]types.ItemDef{
			"amulet": {ID: "amulet", Slot: "head"},
		},
		Creatures: map[string]types.CreatureDef{
			"nim": {ID: "nim", Species: "imp", Level: 1, Abilities: [types.MaxAbilitySlots]string{"slash"}},
			"foe": {ID: "foe", Species: "imp", Level: 2},
		},
		Teams: map[string]types.TeamDef{
			"bot_1": {ID: "bot_1", Gold: 100, Members: []string{"foe"}},
		},
		Player: types.PlayerDef{
			Profile:   types.Profile{MaxEnergy: 100},
			Roster:    []string{"nim"},
			Inventory: []string{"amulet"},
		},
	}
}

func runValidate(defs *state.Defs) *ValidationError {
	ve := &ValidationError{}
	validate(defs, ve)
	return ve
}

func TestValidate_ValidDefs(t *testing.T) {
	ve := runValidate(validDefs())
	if len(ve.Errors) > 0 {
		t.Fatalf("expected no errors, got: %v", ve.Errors)
	}
	if len(ve.Warnings) > 0 {
		t.Errorf("expected no warnings, got: %v", ve.Warnings)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *state.Defs)
		want   string
	}{
		{"empty title", func(d *state.Defs) { d.Arena.Title = "" }, "Arena.title is required"},
		{"negative rounds", func(d *state.Defs) { d.Arena.MaxRounds = -1 }, "max_rounds"},
		{"hatch pool", func(d *state.Defs) { d.Arena.HatchPool = []string{"dragon"} }, `hatch_pool: unknown species "dragon"`},
		{"ability kind", func(d *state.Defs) {
			a := d.Abilities["slash"]
			a.Kind = "explode"
			d.Abilities["slash"] = a
		}, `unknown kind "explode"`},
		{"ability target", func(d *state.Defs) {
			a := d.Abilities["slash"]
			a.Target = "everyone"
			d.Abilities["slash"] = a
		}, `unknown target "everyone"`},
		{"ability chance", func(d *state.Defs) {
			a := d.Abilities["slash"]
			a.Chance = 1.5
			d.Abilities["slash"] = a
		}, "outside [0, 1]"},
		{"ability power", func(d *state.Defs) {
			a := d.Abilities["slash"]
			a.Power = -3
			d.Abilities["slash"] = a
		}, "power must not be negative"},
		{"species health", func(d *state.Defs) {
			d.Species["imp"] = types.SpeciesDef{ID: "imp"}
		}, "max_health must be positive"},
		{"evolution target", func(d *state.Defs) {
			sp := d.Species["imp"]
			sp.EvolvesTo = "lord"
			d.Species["imp"] = sp
		}, `evolves into unknown species "lord"`},
		{"creature species", func(d *state.Defs) {
			c := d.Creatures["foe"]
			c.Species = "dragon"
			d.Creatures["foe"] = c
		}, `creature "foe": unknown species "dragon"`},
		{"creature level", func(d *state.Defs) {
			c := d.Creatures["foe"]
			c.Level = 0
			d.Creatures["foe"] = c
		}, "level must be at least 1"},
		{"empty team", func(d *state.Defs) {
			d.Teams["bot_1"] = types.TeamDef{ID: "bot_1"}
		}, `team "bot_1" has no members`},
		{"team member", func(d *state.Defs) {
			d.Teams["bot_1"] = types.TeamDef{ID: "bot_1", Members: []string{"ghost"}}
		}, `unknown creature "ghost"`},
		{"team repeat", func(d *state.Defs) {
			d.Teams["bot_1"] = types.TeamDef{ID: "bot_1", Members: []string{"foe", "foe"}}
		}, `creature "foe" listed twice`},
		{"team ward", func(d *state.Defs) {
			d.Teams["bot_1"] = types.TeamDef{ID: "bot_1", Members: []string{"foe"}, DefenseLayer: -5}
		}, "defense_layer must not be negative"},
		{"empty roster", func(d *state.Defs) { d.Player.Roster = nil }, "Player.roster must list"},
		{"roster member", func(d *state.Defs) { d.Player.Roster = []string{"ghost"} }, `Player.roster: unknown creature "ghost"`},
		{"inventory", func(d *state.Defs) { d.Player.Inventory = []string{"crown"} }, `unknown item "crown"`},
		{"max energy", func(d *state.Defs) { d.Player.Profile.MaxEnergy = 0 }, "max_energy must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := validDefs()
			tt.mutate(defs)
			ve := runValidate(defs)
			assertContains(t, ve.Errors, tt.want)
		})
	}
}

func TestValidate_UnknownAbilityIsWarning(t *testing.T) {
	defs := validDefs()
	c := defs.Creatures["nim"]
	c.Abilities[2] = "fireball"
	defs.Creatures["nim"] = c

	ve := runValidate(defs)
	if len(ve.Errors) > 0 {
		t.Errorf("expected no errors, got %v", ve.Errors)
	}
	assertContains(t, ve.Warnings, `slot 3: unknown ability "fireball"`)
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{Errors: []string{"first", "second"}}
	msg := ve.Error()
	if !strings.Contains(msg, "2 error(s)") || !strings.Contains(msg, "\n  second") {
		t.Errorf("Error() = %q", msg)
	}
}

func assertContains(t *testing.T, strs []string, substr string) {
	t.Helper()
	for _, s := range strs {
		if strings.Contains(s, substr) {
			return
		}
	}
	t.Errorf("expected one of %v to contain %q", strs, substr)
}
