// Package economy implements the idle-income and energy rules around
// battles: passive accrual, and the costs and rewards of player actions.
package economy

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nathoo/spiritmaster/types"
)

// Costs and rates.
const (
	EnergyInterval  = 5 * time.Second // one energy point per interval
	RaidEnergyCost  = 20
	TrainEnergyCost = 10
	HatchGoldCost   = 1000
	RaidStealShare  = 0.2
)

var (
	ErrNotEnoughEnergy = errors.New("not enough energy")
	ErrNotEnoughGold   = errors.New("not enough gold")
)

// Sync accrues idle gold and recovered energy up to now.
// Income is claimed in full; energy only advances its clock by the whole
// intervals it consumed so partial progress is kept.
func Sync(p types.Profile, now time.Time) types.Profile {
	if elapsed := now.Sub(p.LastIncomeClaim); elapsed > 0 {
		p.Gold += int(math.Floor(elapsed.Seconds() * float64(p.IncomePerSec)))
	}
	p.LastIncomeClaim = now

	if elapsed := now.Sub(p.LastEnergyUpdate); elapsed > 0 {
		recovered := int(elapsed / EnergyInterval)
		if recovered > 0 {
			p.Energy = min(p.MaxEnergy, p.Energy+recovered)
			p.LastEnergyUpdate = p.LastEnergyUpdate.Add(time.Duration(recovered) * EnergyInterval)
		}
	}
	return p
}

// SpendEnergy deducts energy or fails without changing the profile.
func SpendEnergy(p types.Profile, cost int) (types.Profile, error) {
	if p.Energy < cost {
		return p, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughEnergy, p.Energy, cost)
	}
	p.Energy -= cost
	return p, nil
}

// SpendGold deducts gold or fails without changing the profile.
func SpendGold(p types.Profile, cost int) (types.Profile, error) {
	if p.Gold < cost {
		return p, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughGold, p.Gold, cost)
	}
	p.Gold -= cost
	return p, nil
}

// RaidResult is the economic settlement of one raid.
type RaidResult struct {
	Attacker     types.Profile
	DefenderGold int
	Stolen       int
}

// Raid settles a raid: the attacker always pays the energy cost, and on a
// win takes a fifth of the defender's gold.
func Raid(attacker types.Profile, defenderGold int, won bool) (RaidResult, error) {
	p, err := SpendEnergy(attacker, RaidEnergyCost)
	if err != nil {
		return RaidResult{Attacker: attacker, DefenderGold: defenderGold}, err
	}
	stolen := 0
	if won {
		stolen = int(math.Floor(float64(defenderGold) * RaidStealShare))
	}
	p.Gold += stolen
	return RaidResult{Attacker: p, DefenderGold: defenderGold - stolen, Stolen: stolen}, nil
}

// CanRaid reports whether the attacker can afford a raid.
func CanRaid(p types.Profile) error {
	_, err := SpendEnergy(p, RaidEnergyCost)
	return err
}

// Craft buys an item, raising income by its business bonus.
func Craft(p types.Profile, item types.ItemDef) (types.Profile, error) {
	p, err := SpendGold(p, item.Cost)
	if err != nil {
		return p, err
	}
	p.IncomePerSec += item.IncomeBonus
	return p, nil
}
