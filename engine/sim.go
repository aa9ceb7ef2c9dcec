package engine

import (
	"context"
	"errors"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nathoo/spiritmaster/types"
)

// ErrNoRuns is returned when a simulation is asked for zero runs.
var ErrNoRuns = errors.New("simulation needs at least one run")

// SimConfig controls a batch of independent simulated battles.
type SimConfig struct {
	Runs      int
	Seed      int64 // run i uses seed Seed+i
	MaxRounds int   // 0 means DefaultMaxRounds
	Workers   int   // 0 means GOMAXPROCS
}

// Odds aggregates the outcomes of a simulation batch.
type Odds struct {
	Runs      int
	AWins     int
	BWins     int
	Draws     int
	AvgRounds float64
}

// WinRate returns the share of runs won by team A.
func (o Odds) WinRate() float64 {
	if o.Runs == 0 {
		return 0
	}
	return float64(o.AWins) / float64(o.Runs)
}

// Simulate resolves cfg.Runs battles between the same rosters in parallel.
// Every run gets its own seeded RNG, so the result depends only on cfg.
func Simulate(ctx context.Context, teamA, teamB []types.Creature, abilities map[string]types.Ability, cfg SimConfig) (Odds, error) {
	if cfg.Runs <= 0 {
		return Odds{}, ErrNoRuns
	}
	maxRounds := cfg.MaxRounds
	if maxRounds == 0 {
		maxRounds = DefaultMaxRounds
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]types.Outcome, cfg.Runs)
	rounds := make([]int, cfg.Runs)
	epoch := time.Unix(0, 0).UTC()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < cfg.Runs; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := &Resolver{
				RNG:       NewRNG(cfg.Seed + int64(i)),
				MaxRounds: maxRounds,
				Now:       func() time.Time { return epoch },
			}
			res, err := r.Resolve(teamA, teamB, abilities)
			if err != nil {
				return err
			}
			outcomes[i] = BattleOutcome(res)
			rounds[i] = Rounds(res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Odds{}, err
	}

	odds := Odds{Runs: cfg.Runs}
	total := 0
	for i, o := range outcomes {
		switch o {
		case types.OutcomeAWins:
			odds.AWins++
		case types.OutcomeBWins:
			odds.BWins++
		default:
			odds.Draws++
		}
		total += rounds[i]
	}
	odds.AvgRounds = float64(total) / float64(cfg.Runs)
	return odds, nil
}
