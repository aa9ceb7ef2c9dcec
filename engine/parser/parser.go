// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strconv"
	"strings"

	"github.com/nathoo/spiritmaster/types"
)

var verbAliases = map[string]string{
	// Battle
	"f":       "fight",
	"battle":  "fight",
	"duel":    "fight",
	"spar":    "fight",
	"attack":  "raid",
	"plunder": "raid",
	"r":       "raid",
	"o":       "odds",
	"predict": "odds",
	"sim":     "odds",

	// Catalog
	"t":         "teams",
	"targets":   "teams",
	"opponents": "teams",
	"skills":    "abilities",
	"a":         "abilities",

	// Player
	"ghosts":  "roster",
	"spirits": "roster",
	"team":    "roster",
	"s":       "status",
	"profile": "status",
	"gold":    "status",
	"energy":  "status",
	"log":     "history",
	"logs":    "history",
	"h":       "history",
	"egg":     "hatch",
	"buy":     "craft",
	"build":   "craft",
	"wear":    "equip",
	"remove":  "unequip",
	"unwear":  "unequip",
	"strip":   "unequip",
	"?":       "help",
}

var prepositions = map[string]bool{
	"on": true, "to": true, "with": true,
	"against": true, "vs": true, "for": true,
	"from": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	// A trailing number is a count ("odds bot_1 200").
	count := 0
	if n := len(rest); n > 0 {
		if v, err := strconv.Atoi(rest[n-1]); err == nil && v > 0 {
			count = v
			rest = rest[:n-1]
		}
	}

	object, target := splitOnPreposition(rest)

	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
		Count:  count,
	}
}

// expandMultiWordVerbs handles "show teams", "put on", "take off", etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "show", "list":
		return words[1:]
	case "put":
		if words[1] == "on" {
			return append([]string{"equip"}, words[2:]...)
		}
	case "take":
		if words[1] == "off" {
			return append([]string{"unequip"}, words[2:]...)
		}
	case "fight", "battle":
		// "fight against bot_1"
		if words[1] == "against" || words[1] == "vs" {
			return append([]string{words[0]}, words[2:]...)
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}
