package stats

import (
	"errors"
	"testing"

	"github.com/nathoo/spiritmaster/types"
)

var imp = types.SpeciesDef{
	ID:          "shadow_imp",
	Name:        "Shadow Imp",
	Base:        types.Stats{MaxHealth: 40, Attack: 12, Defense: 6, Speed: 14, Intellect: 8, Luck: 6},
	Passive:     types.Stats{Speed: 5},
	EvolvesTo:   "shadow_lord",
	EvolveBonus: types.Stats{Attack: 5, Speed: 15},
}

var lord = types.SpeciesDef{
	ID:   "shadow_lord",
	Name: "Shadow Lord",
	Base: types.Stats{MaxHealth: 60, Attack: 18, Defense: 8, Speed: 18, Intellect: 10, Luck: 8},
}

func testSpecies() map[string]types.SpeciesDef {
	return map[string]types.SpeciesDef{imp.ID: imp, lord.ID: lord}
}

func testItems() map[string]types.ItemDef {
	return map[string]types.ItemDef{
		"amulet": {ID: "amulet", Name: "Sacred Amulet", Slot: "head", Bonus: types.Stats{Intellect: 5, Speed: 2}},
		"robe":   {ID: "robe", Name: "Burial Robe", Slot: "armor", Bonus: types.Stats{Defense: 4, MaxHealth: 10}},
	}
}

func TestScale(t *testing.T) {
	tests := []struct {
		level int
		want  types.Stats
	}{
		{1, imp.Base},
		{0, imp.Base},
		{3, types.Stats{MaxHealth: 49, Attack: 14, Defense: 7, Speed: 17, Intellect: 9, Luck: 7}},
	}

	for _, tt := range tests {
		if got := Scale(imp.Base, tt.level); got != tt.want {
			t.Errorf("Scale(level %d) = %+v, want %+v", tt.level, got, tt.want)
		}
	}
}

func TestScale_ZeroStatBecomesOne(t *testing.T) {
	got := Scale(types.Stats{MaxHealth: 10}, 1)
	if got.Luck != 1 || got.Attack != 1 {
		t.Errorf("zero stats should floor at 1, got %+v", got)
	}
}

func TestFlatten(t *testing.T) {
	def := types.CreatureDef{
		ID:        "nim",
		Species:   "shadow_imp",
		Level:     1,
		Trained:   types.Stats{Attack: 3},
		Equipment: map[string]string{"head": "amulet", "armor": "robe"},
	}

	got, err := Flatten(def, imp, testItems())
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	want := types.Stats{MaxHealth: 50, Attack: 15, Defense: 10, Speed: 21, Intellect: 13, Luck: 6}
	if got != want {
		t.Errorf("Flatten = %+v, want %+v", got, want)
	}
}

func TestFlatten_UnknownItem(t *testing.T) {
	def := types.CreatureDef{ID: "nim", Species: "shadow_imp", Level: 1, Equipment: map[string]string{"head": "crown"}}
	_, err := Flatten(def, imp, testItems())
	if !errors.Is(err, ErrUnknownItem) {
		t.Errorf("err = %v, want ErrUnknownItem", err)
	}
}

func TestBuild(t *testing.T) {
	def := types.CreatureDef{ID: "nim", Species: "shadow_imp", Level: 1,
		Abilities: [3]string{"shadow_slash", "", "ember_burst"}}

	c, err := Build(def, testSpecies(), testItems())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.Name != "Shadow Imp" {
		t.Errorf("Name = %q, want species name", c.Name)
	}
	if c.CurrentHealth != c.Stats.MaxHealth || c.CurrentHealth != 40 {
		t.Errorf("CurrentHealth = %d, MaxHealth = %d, want 40", c.CurrentHealth, c.Stats.MaxHealth)
	}
	if c.AbilitySlots != def.Abilities {
		t.Errorf("AbilitySlots = %v, want %v", c.AbilitySlots, def.Abilities)
	}
}

func TestBuild_UnknownSpecies(t *testing.T) {
	_, err := Build(types.CreatureDef{ID: "x", Species: "nope", Level: 1}, testSpecies(), nil)
	if !errors.Is(err, ErrUnknownSpecies) {
		t.Errorf("err = %v, want ErrUnknownSpecies", err)
	}
}

func TestBuildTeam_KeepsOrder(t *testing.T) {
	defs := []types.CreatureDef{
		{ID: "one", Species: "shadow_imp", Level: 1},
		{ID: "two", Species: "shadow_lord", Level: 1},
	}
	team, err := BuildTeam(defs, testSpecies(), nil)
	if err != nil {
		t.Fatalf("BuildTeam: %v", err)
	}
	if len(team) != 2 || team[0].ID != "one" || team[1].ID != "two" {
		t.Errorf("team = %+v", team)
	}
}

func TestEvolve(t *testing.T) {
	def := types.CreatureDef{ID: "nim", Species: "shadow_imp", Level: 10, Trained: types.Stats{Attack: 1}}

	got, err := Evolve(def, testSpecies())
	if err != nil {
		t.Fatalf("Evolve: %v", err)
	}
	if got.Species != "shadow_lord" {
		t.Errorf("Species = %q, want shadow_lord", got.Species)
	}
	if got.Trained.Attack != 6 || got.Trained.Speed != 15 {
		t.Errorf("Trained = %+v, want attack 6 speed 15", got.Trained)
	}
}

func TestEvolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		def  types.CreatureDef
		want error
	}{
		{"too young", types.CreatureDef{Species: "shadow_imp", Level: 9}, ErrLevelTooLow},
		{"final form", types.CreatureDef{Species: "shadow_lord", Level: 20}, ErrNoEvolution},
		{"unknown species", types.CreatureDef{Species: "nope", Level: 20}, ErrUnknownSpecies},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evolve(tt.def, testSpecies())
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBumpAndGet(t *testing.T) {
	s, err := Bump(types.Stats{}, Luck, 3)
	if err != nil {
		t.Fatalf("Bump: %v", err)
	}
	if v, _ := Get(s, Luck); v != 3 {
		t.Errorf("luck = %d, want 3", v)
	}
	if _, err := Bump(s, "charisma", 1); !errors.Is(err, ErrUnknownStat) {
		t.Errorf("err = %v, want ErrUnknownStat", err)
	}
}

func TestFromMap(t *testing.T) {
	s, err := FromMap(map[string]int{"attack": 4, "max_health": 30})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if s.Attack != 4 || s.MaxHealth != 30 {
		t.Errorf("FromMap = %+v", s)
	}
	if _, err := FromMap(map[string]int{"str": 1}); !errors.Is(err, ErrUnknownStat) {
		t.Errorf("err = %v, want ErrUnknownStat", err)
	}
}

func TestWard(t *testing.T) {
	base := types.Stats{Attack: 12, Defense: 25}
	tests := []struct {
		layer int
		want  int
	}{
		{0, 25},
		{-5, 25},
		{5, 32},  // 5 * 75 / 50 = 7
		{10, 40}, // 10 * 75 / 50 = 15
		{15, 47}, // 15 * 75 / 50 = 22
	}
	for _, tt := range tests {
		got := Ward(base, tt.layer)
		if got.Defense != tt.want {
			t.Errorf("Ward(layer %d).Defense = %d, want %d", tt.layer, got.Defense, tt.want)
		}
		if got.Attack != base.Attack {
			t.Errorf("Ward(layer %d) changed attack to %d", tt.layer, got.Attack)
		}
	}
}
