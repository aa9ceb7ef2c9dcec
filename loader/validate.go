package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/spiritmaster/engine/state"
	"github.com/nathoo/spiritmaster/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) add(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warn(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

var validKinds = map[types.AbilityKind]bool{
	types.KindDamage: true,
	types.KindBuff:   true,
	types.KindDebuff: true,
	types.KindHeal:   true,
	types.KindStatus: true,
}

var validTargets = map[types.TargetClass]bool{
	types.TargetEnemy: true,
	types.TargetAlly:  true,
	types.TargetSelf:  true,
}

// validate checks the compiled defs for referential integrity and
// consistency, adding to the problems compile already found.
func validate(defs *state.Defs, ve *ValidationError) {
	if defs.Arena.Title == "" {
		ve.add("Arena.title is required")
	}
	if defs.Arena.MaxRounds < 0 {
		ve.add("Arena.max_rounds must not be negative, got %d", defs.Arena.MaxRounds)
	}
	for _, id := range defs.Arena.HatchPool {
		if _, ok := defs.Species[id]; !ok {
			ve.add("Arena.hatch_pool: unknown species %q", id)
		}
	}

	for _, id := range state.SortedKeys(defs.Abilities) {
		a := defs.Abilities[id]
		if !validKinds[a.Kind] {
			ve.add("ability %q: unknown kind %q", id, a.Kind)
		}
		if !validTargets[a.Target] {
			ve.add("ability %q: unknown target %q", id, a.Target)
		}
		if a.Chance < 0 || a.Chance > 1 {
			ve.add("ability %q: chance %v outside [0, 1]", id, a.Chance)
		}
		if a.Power < 0 {
			ve.add("ability %q: power must not be negative, got %d", id, a.Power)
		}
	}

	for _, id := range state.SortedKeys(defs.Species) {
		sp := defs.Species[id]
		if sp.Base.MaxHealth <= 0 {
			ve.add("species %q: base max_health must be positive", id)
		}
		if sp.EvolvesTo != "" {
			if _, ok := defs.Species[sp.EvolvesTo]; !ok {
				ve.add("species %q evolves into unknown species %q", id, sp.EvolvesTo)
			}
		}
	}

	for _, id := range state.SortedKeys(defs.Creatures) {
		c := defs.Creatures[id]
		if _, ok := defs.Species[c.Species]; !ok {
			ve.add("creature %q: unknown species %q", id, c.Species)
		}
		if c.Level < 1 {
			ve.add("creature %q: level must be at least 1, got %d", id, c.Level)
		}
		for i, abilityID := range c.Abilities {
			if abilityID == "" {
				continue
			}
			if _, ok := defs.Abilities[abilityID]; !ok {
				ve.warn("creature %q slot %d: unknown ability %q is never used", id, i+1, abilityID)
			}
		}
	}

	for _, id := range state.SortedKeys(defs.Teams) {
		t := defs.Teams[id]
		if len(t.Members) == 0 {
			ve.add("team %q has no members", id)
		}
		checkCreatureRefs(defs, ve, fmt.Sprintf("team %q", id), t.Members)
		if t.Gold < 0 {
			ve.add("team %q: gold must not be negative", id)
		}
		if t.DefenseLayer < 0 {
			ve.add("team %q: defense_layer must not be negative", id)
		}
	}

	p := defs.Player
	if len(p.Roster) == 0 {
		ve.add("Player.roster must list at least one creature")
	}
	checkCreatureRefs(defs, ve, "Player.roster", p.Roster)
	for _, itemID := range p.Inventory {
		if _, ok := defs.Items[itemID]; !ok {
			ve.add("Player.inventory: unknown item %q", itemID)
		}
	}
	if p.Profile.MaxEnergy <= 0 {
		ve.add("Player.max_energy must be positive")
	}
}

// checkCreatureRefs reports unknown or repeated creature IDs in a roster.
func checkCreatureRefs(defs *state.Defs, ve *ValidationError, owner string, ids []string) {
	seen := map[string]bool{}
	for _, id := range ids {
		if _, ok := defs.Creatures[id]; !ok {
			ve.add("%s: unknown creature %q", owner, id)
		}
		if seen[id] {
			ve.add("%s: creature %q listed twice", owner, id)
		}
		seen[id] = true
	}
}
