package state

import (
	"reflect"
	"testing"
	"time"

	"github.com/nathoo/spiritmaster/types"
)

func testDefs() *Defs {
	return &Defs{
		Arena: types.ArenaDef{Title: "Test Arena", Seed: 42},
		Species: map[string]types.SpeciesDef{
			"imp": {ID: "imp", Name: "Imp", Base: types.Stats{MaxHealth: 30, Attack: 10, Defense: 4, Speed: 12, Intellect: 5, Luck: 5}},
		},
		Items: map[string]types.ItemDef{
			"amulet": {ID: "amulet", Name: "Amulet", Slot: "head", Bonus: types.Stats{Luck: 4}},
		},
		Creatures: map[string]types.CreatureDef{
			"nim":  {ID: "nim", Name: "Nim", Species: "imp", Level: 1, Equipment: map[string]string{"head": "amulet"}},
			"grub": {ID: "grub", Species: "imp", Level: 2},
		},
		Teams: map[string]types.TeamDef{
			"bots": {ID: "bots", Name: "Bots", Gold: 500, Members: []string{"grub"}},
			"bad":  {ID: "bad", Members: []string{"ghost"}},
		},
		Player: types.PlayerDef{
			Profile:   types.Profile{Name: "You", Gold: 100, Energy: 40, MaxEnergy: 100},
			Roster:    []string{"nim"},
			Inventory: []string{"amulet"},
		},
	}
}

func TestNewState(t *testing.T) {
	defs := testDefs()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewState(defs, now)

	if s.Profile.Gold != 100 || s.Profile.Energy != 40 {
		t.Errorf("profile = %+v", s.Profile)
	}
	if !s.Profile.LastIncomeClaim.Equal(now) || !s.Profile.LastEnergyUpdate.Equal(now) {
		t.Error("economy clocks should start at now")
	}
	if len(s.Roster) != 1 || s.Roster[0].ID != "nim" {
		t.Fatalf("roster = %+v", s.Roster)
	}
	if s.RNGSeed != 42 {
		t.Errorf("RNGSeed = %d, want 42", s.RNGSeed)
	}

	// Mutating the session must not leak into definitions.
	s.Roster[0].Equipment["head"] = ""
	s.Inventory[0] = "changed"
	if defs.Creatures["nim"].Equipment["head"] != "amulet" {
		t.Error("roster shares equipment map with definitions")
	}
	if defs.Player.Inventory[0] != "amulet" {
		t.Error("inventory shares backing array with definitions")
	}
}

func TestInventoryHelpers(t *testing.T) {
	s := NewState(testDefs(), time.Now())

	if !HasItem(s, "amulet") {
		t.Fatal("expected amulet in inventory")
	}
	if !RemoveItem(s, "amulet") {
		t.Fatal("RemoveItem returned false")
	}
	if HasItem(s, "amulet") || RemoveItem(s, "amulet") {
		t.Error("amulet should be gone")
	}
}

func TestRosterIndex(t *testing.T) {
	s := NewState(testDefs(), time.Now())

	if i, ok := RosterIndex(s, "nim"); !ok || i != 0 {
		t.Errorf("RosterIndex(nim) = %d, %v", i, ok)
	}
	if _, ok := RosterIndex(s, "grub"); ok {
		t.Error("grub is not in the player roster")
	}
}

func TestPlayerTeam(t *testing.T) {
	defs := testDefs()
	team, err := PlayerTeam(NewState(defs, time.Now()), defs)
	if err != nil {
		t.Fatalf("PlayerTeam: %v", err)
	}
	if len(team) != 1 || team[0].Stats.Luck != 9 {
		t.Errorf("team = %+v, want nim with luck 9", team)
	}
}

func TestOpponentTeam(t *testing.T) {
	defs := testDefs()

	team, err := OpponentTeam(defs, "bots")
	if err != nil {
		t.Fatalf("OpponentTeam: %v", err)
	}
	if len(team) != 1 || team[0].ID != "grub" || team[0].Name != "Imp" {
		t.Errorf("team = %+v", team)
	}

	if _, err := OpponentTeam(defs, "nobody"); err == nil {
		t.Error("expected error for unknown team")
	}
	if _, err := OpponentTeam(defs, "bad"); err == nil {
		t.Error("expected error for unknown member")
	}
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(testDefs().Teams)
	if !reflect.DeepEqual(got, []string{"bad", "bots"}) {
		t.Errorf("SortedKeys = %v", got)
	}
}
