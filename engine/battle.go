package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nathoo/spiritmaster/types"
)

// DefaultMaxRounds bounds a battle in which neither side can finish the other.
const DefaultMaxRounds = 60

var (
	ErrEmptyTeam        = errors.New("team has no creatures")
	ErrInvalidMaxRounds = errors.New("max rounds must not be negative")
	ErrNoRandom         = errors.New("no random source")
)

// Resolver runs battles between two rosters. It holds no state between
// invocations beyond its configuration; the random source is consumed.
type Resolver struct {
	RNG       Random
	MaxRounds int
	Now       func() time.Time // log timestamps; time.Now when nil
}

// NewResolver creates a resolver with the default round limit.
func NewResolver(rng Random) *Resolver {
	return &Resolver{
		RNG:       rng,
		MaxRounds: DefaultMaxRounds,
		Now:       time.Now,
	}
}

// ResolveBattle resolves a battle with the default round limit.
func ResolveBattle(teamA, teamB []types.Creature, abilities map[string]types.Ability, rng Random) (types.BattleResult, error) {
	return NewResolver(rng).Resolve(teamA, teamB, abilities)
}

type side int

const (
	sideA side = iota
	sideB
)

// combatant points into the resolver's private copy of a roster.
type combatant struct {
	side side
	c    *types.Creature
}

// Resolve plays out a battle between teamA and teamB and returns the log
// together with copies of both rosters at their final health. The caller's
// slices are never modified. Abilities referenced by a creature but missing
// from the lookup are treated as empty slots.
func (r *Resolver) Resolve(teamA, teamB []types.Creature, abilities map[string]types.Ability) (types.BattleResult, error) {
	if len(teamA) == 0 {
		return types.BattleResult{}, fmt.Errorf("team A: %w", ErrEmptyTeam)
	}
	if len(teamB) == 0 {
		return types.BattleResult{}, fmt.Errorf("team B: %w", ErrEmptyTeam)
	}
	if r.MaxRounds < 0 {
		return types.BattleResult{}, fmt.Errorf("%w: %d", ErrInvalidMaxRounds, r.MaxRounds)
	}
	if r.RNG == nil {
		return types.BattleResult{}, ErrNoRandom
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}

	a := CloneRoster(teamA)
	b := CloneRoster(teamB)

	log := []types.LogEntry{{
		Round:     types.RoundStart,
		Timestamp: now(),
		ActorID:   types.SystemActor,
		Action:    types.ActionStart,
		Detail:    fmt.Sprintf("Battle start: A(%d) vs B(%d)", len(a), len(b)),
	}}

	for round := 1; round <= r.MaxRounds; round++ {
		if decided(a, b) {
			break
		}

		for _, actor := range turnOrder(a, b) {
			// Killed earlier this round.
			if actor.c.CurrentHealth <= 0 {
				continue
			}
			enemies := b
			if actor.side == sideB {
				enemies = a
			}
			target := firstAlive(enemies)
			if target == nil {
				continue
			}

			log = append(log, r.act(round, now(), actor.c, target, abilities)...)

			if decided(a, b) {
				break
			}
		}

		if decided(a, b) {
			break
		}
	}

	log = append(log, types.LogEntry{
		Round:     types.RoundEnd,
		Timestamp: now(),
		ActorID:   types.SystemActor,
		Action:    types.ActionEnd,
		Detail:    string(Outcome(a, b)),
	})

	return types.BattleResult{Log: log, FinalA: a, FinalB: b}, nil
}

// turnOrder returns the living creatures of both sides sorted by speed,
// fastest first. Equal speeds keep team A ahead of team B and roster order
// within a team.
func turnOrder(a, b []types.Creature) []combatant {
	order := make([]combatant, 0, len(a)+len(b))
	for i := range a {
		if a[i].CurrentHealth > 0 {
			order = append(order, combatant{side: sideA, c: &a[i]})
		}
	}
	for i := range b {
		if b[i].CurrentHealth > 0 {
			order = append(order, combatant{side: sideB, c: &b[i]})
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].c.Stats.Speed > order[j].c.Stats.Speed
	})
	return order
}

// firstAlive returns the first living creature in roster order, or nil.
func firstAlive(team []types.Creature) *types.Creature {
	for i := range team {
		if team[i].CurrentHealth > 0 {
			return &team[i]
		}
	}
	return nil
}

func anyAlive(team []types.Creature) bool {
	return firstAlive(team) != nil
}

func decided(a, b []types.Creature) bool {
	return !anyAlive(a) || !anyAlive(b)
}

// Outcome classifies two final rosters: one side standing wins, anything
// else is a draw.
func Outcome(a, b []types.Creature) types.Outcome {
	aAlive, bAlive := anyAlive(a), anyAlive(b)
	switch {
	case aAlive && !bAlive:
		return types.OutcomeAWins
	case bAlive && !aAlive:
		return types.OutcomeBWins
	default:
		return types.OutcomeDraw
	}
}

// BattleOutcome returns the outcome of a resolved battle.
func BattleOutcome(res types.BattleResult) types.Outcome {
	return Outcome(res.FinalA, res.FinalB)
}

// Rounds returns the last round in which an action was logged.
func Rounds(res types.BattleResult) int {
	n := 0
	for _, e := range res.Log {
		if e.Round > n {
			n = e.Round
		}
	}
	return n
}

// Clone returns an independent copy of a creature snapshot.
func Clone(c types.Creature) types.Creature {
	cp := c
	if cp.CurrentHealth < 0 {
		cp.CurrentHealth = 0
	}
	return cp
}

// CloneRoster copies every creature in a roster.
func CloneRoster(team []types.Creature) []types.Creature {
	out := make([]types.Creature, len(team))
	for i, c := range team {
		out[i] = Clone(c)
	}
	return out
}
