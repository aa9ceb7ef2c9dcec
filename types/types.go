// Package types defines the shared data structures for the Spirit Master engine.
// This package contains only type definitions: no logic, no methods.
package types

import "time"

// MaxAbilitySlots is the fixed number of ability slots on a creature.
const MaxAbilitySlots = 3

// Stats holds the flattened numeric attributes of a creature.
type Stats struct {
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	Speed     int `json:"speed"`
	Intellect int `json:"intellect"`
	Luck      int `json:"luck"`
	MaxHealth int `json:"max_health"`
}

// Creature is a battle-ready snapshot with final stats.
type Creature struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name,omitempty"`
	Species       string                  `json:"species,omitempty"`
	Level         int                     `json:"level,omitempty"`
	Stats         Stats                   `json:"stats"`
	CurrentHealth int                     `json:"current_health"`
	AbilitySlots  [MaxAbilitySlots]string `json:"ability_slots"` // "" is an empty slot
}

// AbilityKind classifies what an ability is meant to do.
type AbilityKind string

const (
	KindDamage AbilityKind = "damage"
	KindBuff   AbilityKind = "buff"
	KindDebuff AbilityKind = "debuff"
	KindHeal   AbilityKind = "heal"
	KindStatus AbilityKind = "status"
)

// TargetClass is who an ability is aimed at.
type TargetClass string

const (
	TargetEnemy TargetClass = "enemy"
	TargetAlly  TargetClass = "ally"
	TargetSelf  TargetClass = "self"
)

// Ability is immutable lookup data for an equipped skill.
type Ability struct {
	ID          string
	Name        string
	Kind        AbilityKind
	Power       int
	Chance      float64 // activation probability in [0,1]
	Target      TargetClass
	Description string
}

// ActionKind is the kind of a battle log entry.
type ActionKind string

const (
	ActionAttack ActionKind = "attack"
	ActionSkill  ActionKind = "skill"
	ActionEvade  ActionKind = "evade"
	ActionDeath  ActionKind = "death"
	ActionStart  ActionKind = "start"
	ActionEnd    ActionKind = "end"
)

// Synthetic round numbers for the framing entries.
const (
	RoundStart = 0
	RoundEnd   = -1
)

// SystemActor is the actor ID on start and end entries.
const SystemActor = "system"

// LogEntry is one atomic battle event. Optional numbers are nil when absent.
type LogEntry struct {
	Round        int        `json:"turn"`
	Timestamp    time.Time  `json:"timestamp"`
	ActorID      string     `json:"actor_id"`
	Action       ActionKind `json:"action"`
	TargetID     string     `json:"target_id,omitempty"`
	Detail       string     `json:"detail,omitempty"`
	Value        *int       `json:"value,omitempty"`
	HealthBefore *int       `json:"hp_before,omitempty"`
	HealthAfter  *int       `json:"hp_after,omitempty"`
}

// Outcome is the decided result of a battle.
type Outcome string

const (
	OutcomeAWins Outcome = "A wins"
	OutcomeBWins Outcome = "B wins"
	OutcomeDraw  Outcome = "draw"
)

// BattleResult is the full output of one resolver invocation.
type BattleResult struct {
	Log    []LogEntry `json:"log"`
	FinalA []Creature `json:"final_a"`
	FinalB []Creature `json:"final_b"`
}

// BattleRecord is what a caller hands to a log sink.
type BattleRecord struct {
	Attacker    string
	Defender    string
	Outcome     Outcome
	Seed        int64
	RNGPosition int64
	GoldStolen  int
	Result      BattleResult
}

// BattleSummary is a persisted battle without its log.
type BattleSummary struct {
	ID         string
	Attacker   string
	Defender   string
	Outcome    Outcome
	Rounds     int
	GoldStolen int
	CreatedAt  time.Time
}

// Intent is the parsed representation of a player command.
type Intent struct {
	Verb   string
	Object string // optional
	Target string // optional
	Count  int    // trailing number, 0 when absent
}

// Result is the output of a single engine step.
type Result struct {
	Output []string
	Battle *BattleResult // set when the step resolved a battle
}

// ArenaDef holds content metadata from Lua.
type ArenaDef struct {
	Title     string
	Author    string
	Version   string
	Intro     string
	MaxRounds int
	Seed      int64
	HatchPool []string // species IDs an egg can hatch into
}

// SpeciesDef is a creature template.
type SpeciesDef struct {
	ID          string
	Name        string
	Base        Stats
	Passive     Stats // type bonus applied after scaling
	EvolvesTo   string
	EvolveBonus Stats
}

// ItemDef is an equippable or business item.
type ItemDef struct {
	ID          string
	Name        string
	Slot        string // "" for business items that cannot be equipped
	Bonus       Stats
	Cost        int
	IncomeBonus int
}

// CreatureDef is a persistent creature record before stat flattening.
type CreatureDef struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Species   string                  `json:"species"`
	Level     int                     `json:"level"`
	Trained   Stats                   `json:"trained"`
	Abilities [MaxAbilitySlots]string `json:"abilities"`
	Equipment map[string]string       `json:"equipment"` // slot -> item ID
}

// TeamDef is an opponent roster.
type TeamDef struct {
	ID      string
	Name    string
	Gold    int
	Members []string // creature IDs in roster order

	// DefenseLayer wards the team's spirits while they are being raided.
	DefenseLayer int
}

// Profile is the player's economy state.
type Profile struct {
	Name             string    `json:"name"`
	Gold             int       `json:"gold"`
	IncomePerSec     int       `json:"income_per_sec"`
	Energy           int       `json:"energy"`
	MaxEnergy        int       `json:"max_energy"`
	LastIncomeClaim  time.Time `json:"last_income_claim"`
	LastEnergyUpdate time.Time `json:"last_energy_update"`
}

// PlayerDef is the starting player from Lua.
type PlayerDef struct {
	Profile   Profile
	Roster    []string
	Inventory []string
}

// State is the complete mutable session state.
type State struct {
	Profile     Profile
	Roster      []CreatureDef
	Inventory   []string       // unequipped item IDs
	TeamGold    map[string]int // opponent gold after raids
	Battles     int
	Wins        int
	RNGSeed     int64
	RNGPosition int64
	CommandLog  []string
}
