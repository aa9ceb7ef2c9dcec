// Package save implements JSON serialization and deserialization of session
// state, and the JSON export of a single battle.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/spiritmaster/engine/state"
	"github.com/nathoo/spiritmaster/types"
)

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version     string              `json:"version"`
	Arena       string              `json:"arena"`
	Profile     types.Profile       `json:"profile"`
	Roster      []types.CreatureDef `json:"roster"`
	Inventory   []string            `json:"inventory"`
	TeamGold    map[string]int      `json:"team_gold"`
	Battles     int                 `json:"battles"`
	Wins        int                 `json:"wins"`
	RNGSeed     int64               `json:"rng_seed"`
	RNGPosition int64               `json:"rng_position"`
	CommandLog  []string            `json:"command_log"`
}

// Save serializes session state to JSON bytes.
func Save(s *types.State, defs *state.Defs) ([]byte, error) {
	data := SaveData{
		Version:     defs.Arena.Version,
		Arena:       defs.Arena.Title,
		Profile:     s.Profile,
		Roster:      s.Roster,
		Inventory:   s.Inventory,
		TeamGold:    s.TeamGold,
		Battles:     s.Battles,
		Wins:        s.Wins,
		RNGSeed:     s.RNGSeed,
		RNGPosition: s.RNGPosition,
		CommandLog:  s.CommandLog,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	// Ensure maps and slices are never nil after load.
	if sd.Roster == nil {
		sd.Roster = []types.CreatureDef{}
	}
	for i := range sd.Roster {
		if sd.Roster[i].Equipment == nil {
			sd.Roster[i].Equipment = map[string]string{}
		}
	}
	if sd.Inventory == nil {
		sd.Inventory = []string{}
	}
	if sd.TeamGold == nil {
		sd.TeamGold = map[string]int{}
	}
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	return &sd, nil
}

// ApplySave applies loaded save data onto a state. Teams missing from the
// save keep the gold they started with.
func ApplySave(s *types.State, sd *SaveData) {
	s.Profile = sd.Profile
	s.Roster = sd.Roster
	s.Inventory = sd.Inventory
	if s.TeamGold == nil {
		s.TeamGold = map[string]int{}
	}
	for id, gold := range sd.TeamGold {
		s.TeamGold[id] = gold
	}
	s.Battles = sd.Battles
	s.Wins = sd.Wins
	s.RNGSeed = sd.RNGSeed
	s.RNGPosition = sd.RNGPosition
	s.CommandLog = sd.CommandLog
}

// BattleExport is the JSON shape of an exported battle.
type BattleExport struct {
	Attacker    string           `json:"attacker"`
	Defender    string           `json:"defender"`
	Outcome     types.Outcome    `json:"outcome"`
	Seed        int64            `json:"seed"`
	RNGPosition int64            `json:"rng_position"`
	GoldStolen  int              `json:"gold_stolen,omitempty"`
	Log         []types.LogEntry `json:"log"`
	FinalA      []types.Creature `json:"final_a"`
	FinalB      []types.Creature `json:"final_b"`
}

// ExportBattle renders a battle record as indented JSON.
func ExportBattle(rec types.BattleRecord) ([]byte, error) {
	out := BattleExport{
		Attacker:    rec.Attacker,
		Defender:    rec.Defender,
		Outcome:     rec.Outcome,
		Seed:        rec.Seed,
		RNGPosition: rec.RNGPosition,
		GoldStolen:  rec.GoldStolen,
		Log:         rec.Result.Log,
		FinalA:      rec.Result.FinalA,
		FinalB:      rec.Result.FinalB,
	}
	if out.Log == nil {
		out.Log = []types.LogEntry{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export battle: %w", err)
	}
	return data, nil
}
