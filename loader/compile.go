// Package loader loads Lua arena content into Go structs at startup.
// The Lua VM is discarded after loading; there is no Lua at battle time.
package loader

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/spiritmaster/engine/state"
	"github.com/nathoo/spiritmaster/engine/stats"
	"github.com/nathoo/spiritmaster/types"
	lua "github.com/yuin/gopher-lua"
)

// rawDef holds a curried definition table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getIntOr returns an int field, or def when the key is absent.
func getIntOr(tbl *lua.LTable, key string, def int) int {
	if tbl.RawGetString(key) == lua.LNil {
		return def
	}
	return getInt(tbl, key)
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// tableToStrings converts an array-like Lua table of strings to a slice.
func tableToStrings(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// tableToStats converts a { attack = 5, ... } table to Stats.
func tableToStats(tbl *lua.LTable) (types.Stats, error) {
	if tbl == nil {
		return types.Stats{}, nil
	}
	m := map[string]int{}
	var bad []string
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		n, ok := v.(lua.LNumber)
		if !ok {
			bad = append(bad, string(ks))
			return
		}
		m[string(ks)] = int(n)
	})
	if len(bad) > 0 {
		sort.Strings(bad)
		return types.Stats{}, fmt.Errorf("stat %q is not a number", bad[0])
	}
	return stats.FromMap(m)
}

// compile converts all collected Lua data into a Defs struct. Per-definition
// problems are reported into ve so one load shows every mistake.
func compile(coll *collector, ve *ValidationError) (*state.Defs, error) {
	defs := &state.Defs{
		Abilities: map[string]types.Ability{},
		Species:   map[string]types.SpeciesDef{},
		Items:     map[string]types.ItemDef{},
		Creatures: map[string]types.CreatureDef{},
		Teams:     map[string]types.TeamDef{},
	}

	if coll.arena == nil {
		return nil, errors.New("no Arena{} definition found")
	}
	if coll.player == nil {
		return nil, errors.New("no Player{} definition found")
	}
	defs.Arena = compileArena(coll.arena)

	for _, raw := range coll.abilities {
		if dup(ve, "ability", raw.id, defs.Abilities) {
			continue
		}
		defs.Abilities[raw.id] = compileAbility(raw)
	}

	for _, raw := range coll.species {
		if dup(ve, "species", raw.id, defs.Species) {
			continue
		}
		sp, err := compileSpecies(raw)
		if err != nil {
			ve.add("species %q: %v", raw.id, err)
			continue
		}
		defs.Species[raw.id] = sp
	}

	for _, raw := range coll.items {
		if dup(ve, "item", raw.id, defs.Items) {
			continue
		}
		item, err := compileItem(raw)
		if err != nil {
			ve.add("item %q: %v", raw.id, err)
			continue
		}
		defs.Items[raw.id] = item
	}

	// Creatures after items: equipment lists resolve to slots.
	for _, raw := range coll.creatures {
		if dup(ve, "creature", raw.id, defs.Creatures) {
			continue
		}
		c, err := compileCreature(raw, defs.Items)
		if err != nil {
			ve.add("creature %q: %v", raw.id, err)
			continue
		}
		defs.Creatures[raw.id] = c
	}

	for _, raw := range coll.teams {
		if dup(ve, "team", raw.id, defs.Teams) {
			continue
		}
		defs.Teams[raw.id] = compileTeam(raw)
	}

	defs.Player = compilePlayer(coll.player)
	return defs, nil
}

// dup records a duplicate-ID error when id is already defined.
func dup[V any](ve *ValidationError, kind, id string, defined map[string]V) bool {
	if _, ok := defined[id]; ok {
		ve.add("duplicate %s ID %q", kind, id)
		return true
	}
	return false
}

func compileArena(tbl *lua.LTable) types.ArenaDef {
	return types.ArenaDef{
		Title:     getString(tbl, "title"),
		Author:    getString(tbl, "author"),
		Version:   getString(tbl, "version"),
		Intro:     getString(tbl, "intro"),
		MaxRounds: getInt(tbl, "max_rounds"),
		Seed:      int64(getNumber(tbl, "seed")),
		HatchPool: tableToStrings(getTable(tbl, "hatch_pool")),
	}
}

func compileAbility(raw rawDef) types.Ability {
	tbl := raw.table
	a := types.Ability{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Kind:        types.AbilityKind(getString(tbl, "kind")),
		Power:       getInt(tbl, "power"),
		Chance:      getNumber(tbl, "chance"),
		Target:      types.TargetClass(getString(tbl, "target")),
		Description: getString(tbl, "description"),
	}
	if a.Name == "" {
		a.Name = raw.id
	}
	if a.Kind == "" {
		a.Kind = types.KindDamage
	}
	if a.Target == "" {
		a.Target = types.TargetEnemy
	}
	return a
}

func compileSpecies(raw rawDef) (types.SpeciesDef, error) {
	tbl := raw.table
	sp := types.SpeciesDef{
		ID:        raw.id,
		Name:      getString(tbl, "name"),
		EvolvesTo: getString(tbl, "evolves_to"),
	}
	if sp.Name == "" {
		sp.Name = raw.id
	}
	var err error
	if sp.Base, err = tableToStats(getTable(tbl, "base")); err != nil {
		return sp, fmt.Errorf("base: %w", err)
	}
	if sp.Passive, err = tableToStats(getTable(tbl, "passive")); err != nil {
		return sp, fmt.Errorf("passive: %w", err)
	}
	if sp.EvolveBonus, err = tableToStats(getTable(tbl, "evolve_bonus")); err != nil {
		return sp, fmt.Errorf("evolve_bonus: %w", err)
	}
	return sp, nil
}

func compileItem(raw rawDef) (types.ItemDef, error) {
	tbl := raw.table
	item := types.ItemDef{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Slot:        getString(tbl, "slot"),
		Cost:        getInt(tbl, "cost"),
		IncomeBonus: getInt(tbl, "income_bonus"),
	}
	if item.Name == "" {
		item.Name = raw.id
	}
	bonus, err := tableToStats(getTable(tbl, "bonus"))
	if err != nil {
		return item, fmt.Errorf("bonus: %w", err)
	}
	item.Bonus = bonus
	return item, nil
}

func compileCreature(raw rawDef, items map[string]types.ItemDef) (types.CreatureDef, error) {
	tbl := raw.table
	c := types.CreatureDef{
		ID:        raw.id,
		Name:      getString(tbl, "name"),
		Species:   getString(tbl, "species"),
		Level:     getIntOr(tbl, "level", 1),
		Equipment: map[string]string{},
	}

	trained, err := tableToStats(getTable(tbl, "trained"))
	if err != nil {
		return c, fmt.Errorf("trained: %w", err)
	}
	c.Trained = trained

	// Slots are positional; false leaves a gap.
	if slots := getTable(tbl, "abilities"); slots != nil {
		if n := slots.MaxN(); n > types.MaxAbilitySlots {
			return c, fmt.Errorf("%d ability slots, at most %d allowed", n, types.MaxAbilitySlots)
		}
		for i := 0; i < types.MaxAbilitySlots; i++ {
			if s, ok := slots.RawGetInt(i + 1).(lua.LString); ok {
				c.Abilities[i] = string(s)
			}
		}
	}

	for _, itemID := range tableToStrings(getTable(tbl, "equipment")) {
		item, ok := items[itemID]
		if !ok {
			return c, fmt.Errorf("equipment: unknown item %q", itemID)
		}
		if item.Slot == "" {
			return c, fmt.Errorf("equipment: item %q cannot be equipped", itemID)
		}
		if prev, taken := c.Equipment[item.Slot]; taken {
			return c, fmt.Errorf("equipment: %q and %q both use slot %q", prev, itemID, item.Slot)
		}
		c.Equipment[item.Slot] = itemID
	}
	return c, nil
}

func compileTeam(raw rawDef) types.TeamDef {
	t := types.TeamDef{
		ID:      raw.id,
		Name:    getString(raw.table, "name"),
		Gold:    getInt(raw.table, "gold"),
		Members: tableToStrings(getTable(raw.table, "members")),

		DefenseLayer: getInt(raw.table, "defense_layer"),
	}
	if t.Name == "" {
		t.Name = raw.id
	}
	return t
}

func compilePlayer(tbl *lua.LTable) types.PlayerDef {
	maxEnergy := getIntOr(tbl, "max_energy", 100)
	name := getString(tbl, "name")
	if name == "" {
		name = "You"
	}
	return types.PlayerDef{
		Profile: types.Profile{
			Name:         name,
			Gold:         getInt(tbl, "gold"),
			IncomePerSec: getInt(tbl, "income_per_sec"),
			Energy:       getIntOr(tbl, "energy", maxEnergy),
			MaxEnergy:    maxEnergy,
		},
		Roster:    tableToStrings(getTable(tbl, "roster")),
		Inventory: tableToStrings(getTable(tbl, "inventory")),
	}
}

// sortedLuaFiles returns .lua files with arena.lua first and the rest sorted
// alphabetically.
func sortedLuaFiles(files []string) []string {
	var arenaFile string
	var others []string
	for _, f := range files {
		if f == "arena.lua" {
			arenaFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if arenaFile != "" {
		return append([]string{arenaFile}, others...)
	}
	return others
}
