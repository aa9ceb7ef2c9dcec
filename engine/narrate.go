package engine

import (
	"fmt"
	"strings"

	"github.com/nathoo/spiritmaster/types"
)

// Narrate renders one log entry as a line of battle text.
// names maps creature IDs to display names; unknown IDs print as-is.
func Narrate(e types.LogEntry, names map[string]string) string {
	name := func(id string) string {
		if n, ok := names[id]; ok && n != "" {
			return n
		}
		return id
	}

	switch e.Action {
	case types.ActionStart, types.ActionEnd:
		return fmt.Sprintf("=== %s ===", e.Detail)
	case types.ActionEvade:
		return fmt.Sprintf("%s misses %s.", name(e.ActorID), name(e.TargetID))
	case types.ActionDeath:
		return fmt.Sprintf("%s falls.", name(e.ActorID))
	case types.ActionSkill:
		return fmt.Sprintf("%s uses %s on %s for %d! (%s)",
			name(e.ActorID), e.Detail, name(e.TargetID), deref(e.Value), healthChange(e))
	case types.ActionAttack:
		return fmt.Sprintf("%s hits %s for %d. (%s)",
			name(e.ActorID), name(e.TargetID), deref(e.Value), healthChange(e))
	default:
		return fmt.Sprintf("%s: %s", e.Action, e.Detail)
	}
}

// NarrateBattle renders a whole log, inserting a header whenever a new round begins.
func NarrateBattle(res types.BattleResult, names map[string]string) []string {
	var lines []string
	round := 0
	for _, e := range res.Log {
		if e.Round > 0 && e.Round != round {
			round = e.Round
			lines = append(lines, fmt.Sprintf("-- Round %d --", round))
		}
		lines = append(lines, Narrate(e, names))
	}
	return lines
}

// Names builds an ID-to-name map from both rosters of a battle.
func Names(teams ...[]types.Creature) map[string]string {
	names := map[string]string{}
	for _, team := range teams {
		for _, c := range team {
			names[c.ID] = c.Name
		}
	}
	return names
}

// TraceLine renders a raw log entry for debug output.
func TraceLine(e types.LogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "turn=%d %s %s", e.Round, e.ActorID, e.Action)
	if e.TargetID != "" {
		fmt.Fprintf(&b, " -> %s", e.TargetID)
	}
	if e.Value != nil {
		fmt.Fprintf(&b, " value=%d", *e.Value)
	}
	if e.HealthBefore != nil && e.HealthAfter != nil {
		fmt.Fprintf(&b, " hp=%d->%d", *e.HealthBefore, *e.HealthAfter)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, " %q", e.Detail)
	}
	return b.String()
}

func healthChange(e types.LogEntry) string {
	return fmt.Sprintf("%d -> %d", deref(e.HealthBefore), deref(e.HealthAfter))
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
