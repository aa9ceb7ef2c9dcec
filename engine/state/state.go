// Package state holds the immutable arena definitions and the helpers that
// build and query the mutable session state.
package state

import (
	"fmt"
	"sort"
	"time"

	"github.com/nathoo/spiritmaster/engine/stats"
	"github.com/nathoo/spiritmaster/types"
)

// Defs holds the immutable arena definitions loaded from Lua.
type Defs struct {
	Arena     types.ArenaDef
	Abilities map[string]types.Ability
	Species   map[string]types.SpeciesDef
	Items     map[string]types.ItemDef
	Creatures map[string]types.CreatureDef
	Teams     map[string]types.TeamDef
	Player    types.PlayerDef
}

// NewState creates a fresh session from definitions. Economy clocks start at now.
func NewState(defs *Defs, now time.Time) *types.State {
	profile := defs.Player.Profile
	profile.LastIncomeClaim = now
	profile.LastEnergyUpdate = now

	roster := make([]types.CreatureDef, 0, len(defs.Player.Roster))
	for _, id := range defs.Player.Roster {
		if def, ok := defs.Creatures[id]; ok {
			roster = append(roster, CopyCreature(def))
		}
	}

	teamGold := make(map[string]int, len(defs.Teams))
	for id, t := range defs.Teams {
		teamGold[id] = t.Gold
	}

	return &types.State{
		Profile:    profile,
		Roster:     roster,
		Inventory:  append([]string{}, defs.Player.Inventory...),
		TeamGold:   teamGold,
		RNGSeed:    defs.Arena.Seed,
		CommandLog: []string{},
	}
}

// CopyCreature returns a creature record that shares no maps with def.
func CopyCreature(def types.CreatureDef) types.CreatureDef {
	eq := make(map[string]string, len(def.Equipment))
	for slot, item := range def.Equipment {
		eq[slot] = item
	}
	def.Equipment = eq
	return def
}

// RosterIndex returns the index of a player creature by ID.
func RosterIndex(s *types.State, id string) (int, bool) {
	for i, c := range s.Roster {
		if c.ID == id {
			return i, true
		}
	}
	return -1, false
}

// HasItem returns true if the item is in the player's unequipped inventory.
func HasItem(s *types.State, itemID string) bool {
	for _, id := range s.Inventory {
		if id == itemID {
			return true
		}
	}
	return false
}

// RemoveItem takes one copy of an item out of the inventory.
func RemoveItem(s *types.State, itemID string) bool {
	for i, id := range s.Inventory {
		if id == itemID {
			s.Inventory = append(s.Inventory[:i], s.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// PlayerTeam builds battle snapshots of the player's roster.
func PlayerTeam(s *types.State, defs *Defs) ([]types.Creature, error) {
	return stats.BuildTeam(s.Roster, defs.Species, defs.Items)
}

// OpponentTeam builds battle snapshots of a named opponent team.
func OpponentTeam(defs *Defs, teamID string) ([]types.Creature, error) {
	team, ok := defs.Teams[teamID]
	if !ok {
		return nil, fmt.Errorf("unknown team %q", teamID)
	}
	members := make([]types.CreatureDef, 0, len(team.Members))
	for _, id := range team.Members {
		def, ok := defs.Creatures[id]
		if !ok {
			return nil, fmt.Errorf("team %s: unknown creature %q", teamID, id)
		}
		members = append(members, def)
	}
	return stats.BuildTeam(members, defs.Species, defs.Items)
}

// SortedKeys returns the keys of a definition map in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
