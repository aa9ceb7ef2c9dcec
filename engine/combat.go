package engine

import (
	"math"
	"time"

	"github.com/nathoo/spiritmaster/types"
)

// Hit chance bounds.
const (
	baseHitChance = 0.8
	minHitChance  = 0.1
	maxHitChance  = 0.99
)

// HitChance computes the probability that actor lands a blow on target:
// 0.8 + 1% per point of speed advantage + 0.2% per point of luck advantage,
// clamped to [0.1, 0.99].
func HitChance(actor, target types.Stats) float64 {
	p := baseHitChance +
		0.01*float64(actor.Speed-target.Speed) +
		0.002*float64(actor.Luck-target.Luck)
	return math.Max(minHitChance, math.Min(maxHitChance, p))
}

// Variance maps a uniform draw in [0,1) onto the damage multiplier [0.9, 1.1).
func Variance(draw float64) float64 {
	return 0.9 + draw*0.2
}

// DamageCalc computes damage: floor(max(1, attack+power - floor(defense/2)) * variance).
// A landed hit never deals less than 1.
func DamageCalc(attack, power, defense int, variance float64) int {
	raw := attack + power - int(math.Floor(float64(defense)*0.5))
	if raw < 1 {
		raw = 1
	}
	damage := int(math.Floor(float64(raw) * variance))
	if damage < 1 {
		damage = 1
	}
	return damage
}

// selectAbility walks the slots in order and returns the first ability whose
// activation draw succeeds. Empty slots and unknown IDs consume no draw.
func selectAbility(slots [types.MaxAbilitySlots]string, abilities map[string]types.Ability, rng Random) (types.Ability, bool) {
	for _, id := range slots {
		if id == "" {
			continue
		}
		ab, ok := abilities[id]
		if !ok {
			continue
		}
		if rng.Float64() < ab.Chance {
			return ab, true
		}
	}
	return types.Ability{}, false
}

// act resolves one actor-vs-target action and mutates the target's health.
// Draw order: hit, then ability activations, then damage variance.
func (r *Resolver) act(round int, ts time.Time, actor, target *types.Creature, abilities map[string]types.Ability) []types.LogEntry {
	if r.RNG.Float64() > HitChance(actor.Stats, target.Stats) {
		return []types.LogEntry{{
			Round:     round,
			Timestamp: ts,
			ActorID:   actor.ID,
			Action:    types.ActionEvade,
			TargetID:  target.ID,
			Detail:    "missed",
		}}
	}

	ability, used := selectAbility(actor.AbilitySlots, abilities, r.RNG)
	damage := DamageCalc(actor.Stats.Attack, ability.Power, target.Stats.Defense, Variance(r.RNG.Float64()))

	before := target.CurrentHealth
	target.CurrentHealth = max(0, before-damage)

	entry := types.LogEntry{
		Round:        round,
		Timestamp:    ts,
		ActorID:      actor.ID,
		Action:       types.ActionAttack,
		TargetID:     target.ID,
		Value:        intPtr(damage),
		HealthBefore: intPtr(before),
		HealthAfter:  intPtr(target.CurrentHealth),
	}
	if used {
		entry.Action = types.ActionSkill
		entry.Detail = ability.Name
	}
	out := []types.LogEntry{entry}

	if target.CurrentHealth == 0 {
		out = append(out, types.LogEntry{
			Round:        round,
			Timestamp:    ts,
			ActorID:      target.ID,
			Action:       types.ActionDeath,
			HealthBefore: intPtr(0),
			HealthAfter:  intPtr(0),
		})
	}
	return out
}

func intPtr(v int) *int {
	return &v
}
