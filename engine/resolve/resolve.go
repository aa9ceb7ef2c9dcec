// Package resolve maps names typed by the player to definition IDs.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/spiritmaster/engine/state"
	"github.com/nathoo/spiritmaster/types"
)

// AmbiguityError indicates multiple entries matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates nothing matched a name.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("which %s?", e.Kind)
	}
	return fmt.Sprintf("no %s called %q", e.Kind, e.Name)
}

// candidate is one addressable definition.
type candidate struct {
	id   string
	name string
}

// Team resolves an opponent team by ID or name.
func Team(defs *state.Defs, name string) (string, error) {
	cands := make([]candidate, 0, len(defs.Teams))
	for id, t := range defs.Teams {
		cands = append(cands, candidate{id: id, name: t.Name})
	}
	return match("team", name, cands)
}

// Creature resolves one of the player's creatures by ID or name.
func Creature(s *types.State, name string) (string, error) {
	cands := make([]candidate, 0, len(s.Roster))
	for _, c := range s.Roster {
		cands = append(cands, candidate{id: c.ID, name: c.Name})
	}
	return match("creature", name, cands)
}

// Item resolves an item definition by ID or name.
func Item(defs *state.Defs, name string) (string, error) {
	cands := make([]candidate, 0, len(defs.Items))
	for id, it := range defs.Items {
		cands = append(cands, candidate{id: id, name: it.Name})
	}
	return match("item", name, cands)
}

// match picks the single candidate whose ID or name matches.
func match(kind, name string, cands []candidate) (string, error) {
	if name == "" {
		return "", &NotFoundError{Kind: kind}
	}
	nameLower := strings.ToLower(name)

	// 1. Exact ID match wins outright.
	for _, c := range cands {
		if strings.ToLower(c.id) == nameLower {
			return c.id, nil
		}
	}

	// 2. Name and partial matches.
	var matches []string
	for _, c := range cands {
		if matchesName(c, nameLower) {
			matches = append(matches, c.id)
		}
	}
	sort.Strings(matches)

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Kind: kind, Name: name}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}

// matchesName checks a candidate's display name and ID (case-insensitive).
// Supports exact match, word-based partial match, and underscore normalization.
func matchesName(c candidate, nameLower string) bool {
	if c.name != "" {
		display := strings.ToLower(c.name)
		if display == nameLower {
			return true
		}
		// "imp" matches "Shadow Imp".
		for _, word := range strings.Fields(display) {
			if word == nameLower {
				return true
			}
		}
	}
	// "bot 1" matches "bot_1".
	return strings.ReplaceAll(nameLower, " ", "_") == strings.ToLower(c.id)
}
