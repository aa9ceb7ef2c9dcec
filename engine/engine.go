// Package engine resolves battles between creature rosters and provides the
// Step() orchestrator that wires parsing, resolution, the economy and the
// battle-log sink into a single command.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nathoo/spiritmaster/engine/economy"
	"github.com/nathoo/spiritmaster/engine/parser"
	"github.com/nathoo/spiritmaster/engine/resolve"
	"github.com/nathoo/spiritmaster/engine/state"
	"github.com/nathoo/spiritmaster/engine/stats"
	"github.com/nathoo/spiritmaster/types"
)

// DefaultOddsRuns is the number of simulated battles behind "odds".
const DefaultOddsRuns = 200

// DefaultOddsTimeout bounds one "odds" simulation batch.
const DefaultOddsTimeout = 30 * time.Second

// sinkTimeout bounds a single call into the battle sink.
const sinkTimeout = 5 * time.Second

// BattleSink persists resolved battles.
type BattleSink interface {
	SaveBattle(ctx context.Context, rec types.BattleRecord) (string, error)
	RecentBattles(ctx context.Context, limit int) ([]types.BattleSummary, error)
}

// Engine holds the arena definitions and mutable session state.
type Engine struct {
	Defs  *state.Defs
	State *types.State
	RNG   *RNG

	Sink        BattleSink // optional
	Log         zerolog.Logger
	Now         func() time.Time
	MaxRounds   int
	OddsRuns    int
	OddsWorkers int
	OddsTimeout time.Duration

	// LastBattle is the most recent battle resolved this session.
	LastBattle *types.BattleRecord
}

// New creates a new engine from definitions.
func New(defs *state.Defs) *Engine {
	maxRounds := defs.Arena.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	s := state.NewState(defs, time.Now())
	return &Engine{
		Defs:        defs,
		State:       s,
		RNG:         NewRNG(s.RNGSeed),
		Log:         zerolog.Nop(),
		Now:         time.Now,
		MaxRounds:   maxRounds,
		OddsRuns:    DefaultOddsRuns,
		OddsTimeout: DefaultOddsTimeout,
	}
}

// RestoreRNG re-creates the RNG from seed and advances to the saved position.
func (e *Engine) RestoreRNG(seed int64, position int64) {
	e.RNG = RestoreRNG(seed, position)
	e.State.RNGSeed = seed
	e.State.RNGPosition = position
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	// 1. Parse input.
	intent := parser.Parse(input)

	// 2. Log the command.
	e.State.CommandLog = append(e.State.CommandLog, input)

	// 3. Empty input.
	if intent.Verb == "" {
		result.Output = append(result.Output, "What do you want to do?")
		return result
	}

	// 4. Accrue idle income and energy before anything spends them.
	e.State.Profile = economy.Sync(e.State.Profile, e.Now())

	// 5. Dispatch.
	switch intent.Verb {
	case "fight":
		result = e.cmdFight(intent)
	case "raid":
		result = e.cmdRaid(intent)
	case "odds":
		result = e.cmdOdds(intent)
	case "teams":
		result.Output = e.listTeams()
	case "abilities":
		result.Output = e.listAbilities()
	case "species":
		result.Output = e.listSpecies()
	case "roster":
		result.Output = e.listRoster()
	case "status":
		result.Output = e.statusLines()
	case "train":
		result.Output = e.cmdTrain(intent)
	case "hatch":
		result.Output = e.cmdHatch()
	case "evolve":
		result.Output = e.cmdEvolve(intent)
	case "craft":
		result.Output = e.cmdCraft(intent)
	case "equip":
		result.Output = e.cmdEquip(intent)
	case "unequip":
		result.Output = e.cmdUnequip(intent)
	case "history":
		result.Output = e.cmdHistory()
	case "help":
		result.Output = helpLines()
	default:
		result.Output = append(result.Output,
			fmt.Sprintf("I don't know how to %q. Type help for a list of commands.", intent.Verb))
	}

	// 6. Track RNG position for save/load.
	e.State.RNGPosition = e.RNG.Position()

	return result
}

// battleSetup builds both rosters for a fight against the named team.
func (e *Engine) battleSetup(name string) (teamID string, player, opponent []types.Creature, err error) {
	if teamID, err = resolve.Team(e.Defs, name); err != nil {
		return "", nil, nil, err
	}
	if player, err = state.PlayerTeam(e.State, e.Defs); err != nil {
		return "", nil, nil, err
	}
	if len(player) == 0 {
		return "", nil, nil, errors.New("you have no spirits to fight with")
	}
	if opponent, err = state.OpponentTeam(e.Defs, teamID); err != nil {
		return "", nil, nil, err
	}
	return teamID, player, opponent, nil
}

// runBattle resolves one battle on the session RNG and narrates it.
func (e *Engine) runBattle(teamID string, player, opponent []types.Creature) (types.BattleRecord, []string, error) {
	seed, pos := e.RNG.Seed(), e.RNG.Position()
	r := &Resolver{RNG: e.RNG, MaxRounds: e.MaxRounds, Now: e.Now}
	res, err := r.Resolve(player, opponent, e.Defs.Abilities)
	if err != nil {
		return types.BattleRecord{}, nil, err
	}

	rec := types.BattleRecord{
		Attacker:    e.State.Profile.Name,
		Defender:    teamID,
		Outcome:     BattleOutcome(res),
		Seed:        seed,
		RNGPosition: pos,
		Result:      res,
	}

	e.State.Battles++
	if rec.Outcome == types.OutcomeAWins {
		e.State.Wins++
	}

	lines := NarrateBattle(res, Names(res.FinalA, res.FinalB))
	lines = append(lines, e.outcomeLine(rec.Outcome, teamID))
	return rec, lines, nil
}

func (e *Engine) teamName(teamID string) string {
	if name := e.Defs.Teams[teamID].Name; name != "" {
		return name
	}
	return teamID
}

func (e *Engine) outcomeLine(o types.Outcome, teamID string) string {
	name := e.teamName(teamID)
	switch o {
	case types.OutcomeAWins:
		return fmt.Sprintf("Victory! Your spirits defeat %s.", name)
	case types.OutcomeBWins:
		return fmt.Sprintf("Defeat. %s drives your spirits back.", name)
	default:
		return "The battle ends in a draw."
	}
}

// record keeps the battle for export and hands it to the sink, if any.
func (e *Engine) record(rec types.BattleRecord) {
	e.LastBattle = &rec
	if e.Sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	id, err := e.Sink.SaveBattle(ctx, rec)
	if err != nil {
		e.Log.Error().Err(err).Str("defender", rec.Defender).Msg("Failed to save battle")
		return
	}
	e.Log.Info().
		Str("battle", id).
		Str("defender", rec.Defender).
		Str("outcome", string(rec.Outcome)).
		Int("entries", len(rec.Result.Log)).
		Msg("Battle saved")
}

func (e *Engine) cmdFight(intent types.Intent) types.Result {
	var result types.Result
	teamID, player, opponent, err := e.battleSetup(intent.Object)
	if err != nil {
		result.Output = append(result.Output, err.Error())
		return result
	}

	rec, lines, err := e.runBattle(teamID, player, opponent)
	if err != nil {
		result.Output = append(result.Output, err.Error())
		return result
	}
	e.record(rec)

	result.Output = lines
	result.Battle = &rec.Result
	return result
}

func (e *Engine) cmdRaid(intent types.Intent) types.Result {
	var result types.Result
	teamID, player, opponent, err := e.battleSetup(intent.Object)
	if err != nil {
		result.Output = append(result.Output, err.Error())
		return result
	}
	if err := economy.CanRaid(e.State.Profile); err != nil {
		result.Output = append(result.Output,
			fmt.Sprintf("You can't raid yet: %v.", err))
		return result
	}
	layer := e.Defs.Teams[teamID].DefenseLayer
	for i := range opponent {
		opponent[i].Stats = stats.Ward(opponent[i].Stats, layer)
	}

	rec, lines, err := e.runBattle(teamID, player, opponent)
	if err != nil {
		result.Output = append(result.Output, err.Error())
		return result
	}

	settled, err := economy.Raid(e.State.Profile, e.State.TeamGold[teamID], rec.Outcome == types.OutcomeAWins)
	if err != nil {
		result.Output = append(result.Output, err.Error())
		return result
	}
	e.State.Profile = settled.Attacker
	e.State.TeamGold[teamID] = settled.DefenderGold
	rec.GoldStolen = settled.Stolen
	e.record(rec)

	if layer > 0 {
		lines = append([]string{fmt.Sprintf("%s's wards hold at layer %d.", e.teamName(teamID), layer)}, lines...)
	}
	lines = append(lines, fmt.Sprintf("Raid cost %d energy.", economy.RaidEnergyCost))
	if settled.Stolen > 0 {
		lines = append(lines, fmt.Sprintf("You plunder %d gold.", settled.Stolen))
	}
	result.Output = lines
	result.Battle = &rec.Result
	return result
}

func (e *Engine) cmdOdds(intent types.Intent) types.Result {
	var result types.Result
	teamID, player, opponent, err := e.battleSetup(intent.Object)
	if err != nil {
		result.Output = append(result.Output, err.Error())
		return result
	}

	runs := intent.Count
	if runs == 0 {
		runs = e.OddsRuns
	}
	cfg := SimConfig{
		Runs:      runs,
		Seed:      e.RNG.Int63(),
		MaxRounds: e.MaxRounds,
		Workers:   e.OddsWorkers,
	}
	timeout := e.OddsTimeout
	if timeout <= 0 {
		timeout = DefaultOddsTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	odds, err := Simulate(ctx, player, opponent, e.Defs.Abilities, cfg)
	if errors.Is(err, context.DeadlineExceeded) {
		e.Log.Warn().Str("team", teamID).Int("runs", runs).Dur("timeout", timeout).Msg("Odds simulation timed out")
		result.Output = append(result.Output,
			fmt.Sprintf("%d battles took longer than %s to simulate. Try fewer runs.", runs, timeout))
		return result
	}
	if err != nil {
		result.Output = append(result.Output, err.Error())
		return result
	}
	e.Log.Debug().Str("team", teamID).Int("runs", runs).Float64("win_rate", odds.WinRate()).Msg("Odds simulated")

	pct := func(n int) float64 { return 100 * float64(n) / float64(odds.Runs) }
	result.Output = append(result.Output, fmt.Sprintf(
		"Over %d simulated battles against %s: win %.0f%%, loss %.0f%%, draw %.0f%% (avg %.1f rounds)",
		odds.Runs, teamID, pct(odds.AWins), pct(odds.BWins), pct(odds.Draws), odds.AvgRounds))
	return result
}

func (e *Engine) listTeams() []string {
	out := []string{"Opponents:"}
	for _, id := range state.SortedKeys(e.Defs.Teams) {
		t := e.Defs.Teams[id]
		line := fmt.Sprintf("  %-12s %s (%d spirits, %d gold)",
			id, t.Name, len(t.Members), e.State.TeamGold[id])
		if t.DefenseLayer > 0 {
			line += fmt.Sprintf("  ward %d", t.DefenseLayer)
		}
		out = append(out, line)
	}
	return out
}

func (e *Engine) listAbilities() []string {
	out := []string{"Abilities:"}
	for _, id := range state.SortedKeys(e.Defs.Abilities) {
		a := e.Defs.Abilities[id]
		out = append(out, fmt.Sprintf("  %-14s %s  %s/%s  power %d  chance %.0f%%",
			id, a.Name, a.Kind, a.Target, a.Power, a.Chance*100))
	}
	return out
}

func (e *Engine) listSpecies() []string {
	out := []string{"Species:"}
	for _, id := range state.SortedKeys(e.Defs.Species) {
		sp := e.Defs.Species[id]
		line := fmt.Sprintf("  %-14s %s", id, sp.Name)
		if sp.EvolvesTo != "" {
			line += fmt.Sprintf("  (evolves into %s at level %d)", sp.EvolvesTo, stats.EvolveLevel)
		}
		out = append(out, line)
	}
	return out
}

func (e *Engine) listRoster() []string {
	if len(e.State.Roster) == 0 {
		return []string{"You have no spirits. Try hatch."}
	}
	out := []string{"Your spirits:"}
	for _, def := range e.State.Roster {
		c, err := stats.Build(def, e.Defs.Species, e.Defs.Items)
		if err != nil {
			out = append(out, fmt.Sprintf("  %s: %v", def.ID, err))
			continue
		}
		out = append(out, fmt.Sprintf("  %-10s %s (%s, Lv %d)  HP %d ATK %d DEF %d SPD %d INT %d LUK %d  [%s]",
			c.ID, c.Name, e.Defs.Species[c.Species].Name, c.Level,
			c.Stats.MaxHealth, c.Stats.Attack, c.Stats.Defense, c.Stats.Speed, c.Stats.Intellect, c.Stats.Luck,
			e.slotNames(c.AbilitySlots)))
		for _, slot := range state.SortedKeys(def.Equipment) {
			if item := def.Equipment[slot]; item != "" {
				out = append(out, fmt.Sprintf("      %s: %s", slot, e.Defs.Items[item].Name))
			}
		}
	}
	return out
}

func (e *Engine) slotNames(slots [types.MaxAbilitySlots]string) string {
	names := make([]string, len(slots))
	for i, id := range slots {
		switch a, ok := e.Defs.Abilities[id]; {
		case id == "":
			names[i] = "-"
		case ok:
			names[i] = a.Name
		default:
			names[i] = id + "?"
		}
	}
	return strings.Join(names, ", ")
}

func (e *Engine) statusLines() []string {
	p := e.State.Profile
	out := []string{
		fmt.Sprintf("%s  Gold: %d (+%d/s)  Energy: %d/%d", p.Name, p.Gold, p.IncomePerSec, p.Energy, p.MaxEnergy),
		fmt.Sprintf("Battles: %d (%d won)", e.State.Battles, e.State.Wins),
	}
	if len(e.State.Inventory) > 0 {
		names := make([]string, len(e.State.Inventory))
		for i, id := range e.State.Inventory {
			names[i] = e.Defs.Items[id].Name
		}
		out = append(out, "Inventory: "+strings.Join(names, ", "))
	}
	return out
}

func (e *Engine) cmdTrain(intent types.Intent) []string {
	words := strings.Fields(intent.Object)
	if len(words) < 2 {
		return []string{"Train whom, in what? (train <spirit> <stat>)"}
	}
	stat := words[len(words)-1]
	if _, err := stats.Get(types.Stats{}, stat); err != nil {
		return []string{fmt.Sprintf("%q is not a stat. Choose from: %s.", stat, strings.Join(stats.Names(), ", "))}
	}
	id, err := resolve.Creature(e.State, strings.Join(words[:len(words)-1], " "))
	if err != nil {
		return []string{err.Error()}
	}

	p, err := economy.SpendEnergy(e.State.Profile, economy.TrainEnergyCost)
	if err != nil {
		return []string{fmt.Sprintf("Too tired to train: %v.", err)}
	}
	e.State.Profile = p

	i, _ := state.RosterIndex(e.State, id)
	gain := e.RNG.Roll(3)
	def := &e.State.Roster[i]
	def.Trained, _ = stats.Bump(def.Trained, stat, gain)
	return []string{fmt.Sprintf("%s trains hard: %s +%d.", displayName(*def), stat, gain)}
}

func (e *Engine) cmdHatch() []string {
	pool := e.Defs.Arena.HatchPool
	if len(pool) == 0 {
		pool = state.SortedKeys(e.Defs.Species)
	}
	if len(pool) == 0 {
		return []string{"There are no eggs to hatch."}
	}

	p, err := economy.SpendGold(e.State.Profile, economy.HatchGoldCost)
	if err != nil {
		return []string{fmt.Sprintf("You can't afford an egg: %v.", err)}
	}
	e.State.Profile = p

	speciesID := pool[e.RNG.Pick(len(pool))]
	sp := e.Defs.Species[speciesID]
	id := e.freshID(speciesID)
	e.State.Roster = append(e.State.Roster, types.CreatureDef{
		ID:        id,
		Name:      sp.Name,
		Species:   speciesID,
		Level:     1,
		Equipment: map[string]string{},
	})
	return []string{fmt.Sprintf("The egg cracks open: %s (%s) joins your roster.", sp.Name, id)}
}

// freshID returns an unused roster ID derived from a species ID.
func (e *Engine) freshID(speciesID string) string {
	for n := len(e.State.Roster) + 1; ; n++ {
		id := fmt.Sprintf("%s_%d", speciesID, n)
		if _, taken := state.RosterIndex(e.State, id); !taken {
			return id
		}
	}
}

func (e *Engine) cmdEvolve(intent types.Intent) []string {
	id, err := resolve.Creature(e.State, intent.Object)
	if err != nil {
		return []string{err.Error()}
	}
	i, _ := state.RosterIndex(e.State, id)
	before := e.State.Roster[i]

	evolved, err := stats.Evolve(before, e.Defs.Species)
	if err != nil {
		return []string{fmt.Sprintf("%s cannot evolve: %v.", displayName(before), err)}
	}
	e.State.Roster[i] = evolved
	return []string{fmt.Sprintf("%s evolves into %s!", displayName(before), e.Defs.Species[evolved.Species].Name)}
}

func (e *Engine) cmdCraft(intent types.Intent) []string {
	id, err := resolve.Item(e.Defs, intent.Object)
	if err != nil {
		return []string{err.Error()}
	}
	item := e.Defs.Items[id]

	p, err := economy.Craft(e.State.Profile, item)
	if err != nil {
		return []string{fmt.Sprintf("You can't afford %s: %v.", item.Name, err)}
	}
	e.State.Profile = p

	out := []string{fmt.Sprintf("Crafted %s for %d gold.", item.Name, item.Cost)}
	if item.IncomeBonus > 0 {
		out = append(out, fmt.Sprintf("Income is now %d gold/s.", p.IncomePerSec))
	}
	if item.Slot != "" {
		e.State.Inventory = append(e.State.Inventory, id)
	}
	return out
}

func (e *Engine) cmdEquip(intent types.Intent) []string {
	if intent.Target == "" {
		return []string{"Equip it on whom? (equip <item> on <spirit>)"}
	}
	itemID, err := resolve.Item(e.Defs, intent.Object)
	if err != nil {
		return []string{err.Error()}
	}
	item := e.Defs.Items[itemID]
	if item.Slot == "" {
		return []string{fmt.Sprintf("%s can't be worn.", item.Name)}
	}
	if !state.HasItem(e.State, itemID) {
		return []string{fmt.Sprintf("You don't have a spare %s.", item.Name)}
	}
	id, err := resolve.Creature(e.State, intent.Target)
	if err != nil {
		return []string{err.Error()}
	}

	i, _ := state.RosterIndex(e.State, id)
	def := &e.State.Roster[i]
	if def.Equipment == nil {
		def.Equipment = map[string]string{}
	}
	state.RemoveItem(e.State, itemID)
	out := []string{fmt.Sprintf("%s now wears %s (%s).", displayName(*def), item.Name, item.Slot)}
	if prev := def.Equipment[item.Slot]; prev != "" {
		e.State.Inventory = append(e.State.Inventory, prev)
		out = append(out, fmt.Sprintf("%s returns to your inventory.", e.Defs.Items[prev].Name))
	}
	def.Equipment[item.Slot] = itemID
	return out
}

// cmdUnequip takes gear off a spirit. The object names either the slot
// ("neck") or the worn item.
func (e *Engine) cmdUnequip(intent types.Intent) []string {
	if intent.Object == "" || intent.Target == "" {
		return []string{"Take what off whom? (unequip <slot|item> from <spirit>)"}
	}
	id, err := resolve.Creature(e.State, intent.Target)
	if err != nil {
		return []string{err.Error()}
	}
	i, _ := state.RosterIndex(e.State, id)
	def := &e.State.Roster[i]

	slot := strings.ReplaceAll(intent.Object, " ", "_")
	if _, worn := def.Equipment[slot]; !worn {
		itemID, err := resolve.Item(e.Defs, intent.Object)
		if err != nil {
			return []string{err.Error()}
		}
		slot = ""
		for _, s := range state.SortedKeys(def.Equipment) {
			if def.Equipment[s] == itemID {
				slot = s
				break
			}
		}
		if slot == "" {
			return []string{fmt.Sprintf("%s isn't wearing %s.", displayName(*def), e.Defs.Items[itemID].Name)}
		}
	}

	itemID := def.Equipment[slot]
	delete(def.Equipment, slot)
	if itemID == "" {
		return []string{fmt.Sprintf("%s has nothing on its %s.", displayName(*def), slot)}
	}
	e.State.Inventory = append(e.State.Inventory, itemID)
	name := e.Defs.Items[itemID].Name
	return []string{
		fmt.Sprintf("%s takes off %s.", displayName(*def), name),
		fmt.Sprintf("%s returns to your inventory.", name),
	}
}

func (e *Engine) cmdHistory() []string {
	if e.Sink == nil {
		return []string{"Battle history is not being recorded."}
	}
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	battles, err := e.Sink.RecentBattles(ctx, 10)
	if err != nil {
		e.Log.Error().Err(err).Msg("Failed to read battle history")
		return []string{"Battle history is unavailable right now."}
	}
	if len(battles) == 0 {
		return []string{"No battles recorded yet."}
	}
	out := []string{"Recent battles:"}
	for _, b := range battles {
		line := fmt.Sprintf("  %s  vs %-10s %-7s %d rounds",
			b.CreatedAt.Local().Format("2006-01-02 15:04"), b.Defender, b.Outcome, b.Rounds)
		if b.GoldStolen > 0 {
			line += fmt.Sprintf("  +%d gold", b.GoldStolen)
		}
		out = append(out, line)
	}
	return out
}

func helpLines() []string {
	return []string{
		"Commands:",
		"  fight <team>            spar against a team (free)",
		"  raid <team>             fight for gold (20 energy)",
		"  odds <team> [runs]      simulate many battles",
		"  teams | abilities | species",
		"  roster | status | history",
		"  train <spirit> <stat>   10 energy, +1..3 to a stat",
		"  hatch                   1000 gold for a new spirit",
		"  evolve <spirit>         needs level 10",
		"  craft <item>            buy gear or a business",
		"  equip <item> on <spirit>",
		"  unequip <slot|item> from <spirit>",
	}
}

func displayName(def types.CreatureDef) string {
	if def.Name != "" {
		return def.Name
	}
	return def.ID
}
