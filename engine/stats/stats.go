// Package stats turns persistent creature records into battle-ready
// snapshots: level scaling, training, equipment and species bonuses.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/nathoo/spiritmaster/types"
)

// EvolveLevel is the minimum level at which a creature may evolve.
const EvolveLevel = 10

// levelGrowth is the per-level fraction of a base stat gained.
const levelGrowth = 0.12

var (
	ErrUnknownStat    = errors.New("unknown stat")
	ErrUnknownSpecies = errors.New("unknown species")
	ErrUnknownItem    = errors.New("unknown item")
	ErrLevelTooLow    = errors.New("level too low to evolve")
	ErrNoEvolution    = errors.New("species cannot evolve further")
)

// Stat names as used by content files and commands.
const (
	Attack    = "attack"
	Defense   = "defense"
	Speed     = "speed"
	Intellect = "intellect"
	Luck      = "luck"
	MaxHealth = "max_health"
)

// Names returns every stat name in display order.
func Names() []string {
	return []string{MaxHealth, Attack, Defense, Speed, Intellect, Luck}
}

// field returns a pointer to the named stat.
func field(s *types.Stats, name string) (*int, error) {
	switch name {
	case Attack:
		return &s.Attack, nil
	case Defense:
		return &s.Defense, nil
	case Speed:
		return &s.Speed, nil
	case Intellect:
		return &s.Intellect, nil
	case Luck:
		return &s.Luck, nil
	case MaxHealth:
		return &s.MaxHealth, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStat, name)
}

// Get returns the value of a named stat.
func Get(s types.Stats, name string) (int, error) {
	p, err := field(&s, name)
	if err != nil {
		return 0, err
	}
	return *p, nil
}

// Bump returns s with delta added to the named stat.
func Bump(s types.Stats, name string, delta int) (types.Stats, error) {
	p, err := field(&s, name)
	if err != nil {
		return s, err
	}
	*p += delta
	return s, nil
}

// FromMap builds Stats from a name->value map. Unknown names are an error.
func FromMap(m map[string]int) (types.Stats, error) {
	var s types.Stats
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var err error
		if s, err = Bump(s, k, m[k]); err != nil {
			return types.Stats{}, err
		}
	}
	return s, nil
}

// Add sums two stat blocks field by field.
func Add(a, b types.Stats) types.Stats {
	return types.Stats{
		Attack:    a.Attack + b.Attack,
		Defense:   a.Defense + b.Defense,
		Speed:     a.Speed + b.Speed,
		Intellect: a.Intellect + b.Intellect,
		Luck:      a.Luck + b.Luck,
		MaxHealth: a.MaxHealth + b.MaxHealth,
	}
}

// Ward returns s with a defense layer's bonus added: the layer, grown by
// 2% per point of existing defense.
func Ward(s types.Stats, layer int) types.Stats {
	if layer <= 0 {
		return s
	}
	s.Defense += layer * (50 + s.Defense) / 50
	return s
}

// scaleOne applies level growth to one stat, never dropping below 1.
func scaleOne(v, level int) int {
	scaled := int(math.Floor(float64(v) + float64(level-1)*float64(v)*levelGrowth))
	return max(1, scaled)
}

// Scale grows base stats by 12% of base per level above 1.
func Scale(base types.Stats, level int) types.Stats {
	if level < 1 {
		level = 1
	}
	return types.Stats{
		Attack:    scaleOne(base.Attack, level),
		Defense:   scaleOne(base.Defense, level),
		Speed:     scaleOne(base.Speed, level),
		Intellect: scaleOne(base.Intellect, level),
		Luck:      scaleOne(base.Luck, level),
		MaxHealth: scaleOne(base.MaxHealth, level),
	}
}

// Flatten computes final stats: scaled species base, plus training, plus
// every equipped item's bonus, plus the species passive.
func Flatten(def types.CreatureDef, species types.SpeciesDef, items map[string]types.ItemDef) (types.Stats, error) {
	total := Add(Scale(species.Base, def.Level), def.Trained)
	for slot, itemID := range def.Equipment {
		if itemID == "" {
			continue
		}
		item, ok := items[itemID]
		if !ok {
			return types.Stats{}, fmt.Errorf("%s slot %s: %w: %q", def.ID, slot, ErrUnknownItem, itemID)
		}
		total = Add(total, item.Bonus)
	}
	return Add(total, species.Passive), nil
}

// Build produces a full-health battle snapshot of a creature.
func Build(def types.CreatureDef, species map[string]types.SpeciesDef, items map[string]types.ItemDef) (types.Creature, error) {
	sp, ok := species[def.Species]
	if !ok {
		return types.Creature{}, fmt.Errorf("%s: %w: %q", def.ID, ErrUnknownSpecies, def.Species)
	}
	st, err := Flatten(def, sp, items)
	if err != nil {
		return types.Creature{}, err
	}
	name := def.Name
	if name == "" {
		name = sp.Name
	}
	return types.Creature{
		ID:            def.ID,
		Name:          name,
		Species:       def.Species,
		Level:         def.Level,
		Stats:         st,
		CurrentHealth: st.MaxHealth,
		AbilitySlots:  def.Abilities,
	}, nil
}

// BuildTeam builds every creature of a roster in order.
func BuildTeam(defs []types.CreatureDef, species map[string]types.SpeciesDef, items map[string]types.ItemDef) ([]types.Creature, error) {
	team := make([]types.Creature, 0, len(defs))
	for _, d := range defs {
		c, err := Build(d, species, items)
		if err != nil {
			return nil, err
		}
		team = append(team, c)
	}
	return team, nil
}

// Evolve moves a creature to its species' next form and adds the evolution
// bonus to its trained stats.
func Evolve(def types.CreatureDef, species map[string]types.SpeciesDef) (types.CreatureDef, error) {
	if def.Level < EvolveLevel {
		return def, fmt.Errorf("%w: %d < %d", ErrLevelTooLow, def.Level, EvolveLevel)
	}
	sp, ok := species[def.Species]
	if !ok {
		return def, fmt.Errorf("%w: %q", ErrUnknownSpecies, def.Species)
	}
	if sp.EvolvesTo == "" {
		return def, ErrNoEvolution
	}
	if _, ok := species[sp.EvolvesTo]; !ok {
		return def, fmt.Errorf("%w: %q", ErrUnknownSpecies, sp.EvolvesTo)
	}
	def.Species = sp.EvolvesTo
	def.Trained = Add(def.Trained, sp.EvolveBonus)
	return def, nil
}
