// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strconv"
	"strings"

	"github.com/nathoo/mikdash/types"
)

var directionExpansions = map[string]string{
	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",
}

// Full direction names that are standalone shortcuts for "go <dir>".
var directionNames = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
	"northeast": true, "northwest": true, "southeast": true, "southwest": true,
}

var verbAliases = map[string]string{
	// Look / Examine
	"l":        "look",
	"x":        "examine",
	"inspect":  "examine",
	"describe": "examine",
	"about":    "examine",
	"info":     "examine",

	// Movement
	"walk":   "go",
	"run":    "go",
	"move":   "go",
	"head":   "go",
	"travel": "go",
	"goto":   "go",

	// Economy
	"purchase": "buy",
	"acquire":  "buy",
	"trade":    "sell",

	// Avodah
	"bring":     "offer",
	"sacrifice": "offer",
	"begin":     "offer",
	"start":     "offer",
	"interact":  "do",
	"use":       "do",
	"perform":   "do",
	"act":       "do",
	"next":      "do",
	"cancel":    "abandon",
	"stop":      "abandon",

	// Learning
	"hear":     "listen",
	"play":     "listen",
	"lesson":   "read",
	"reread":   "read",
	"psalm":    "shir",
	"song":     "shir",
	"tehillim": "shir",

	// Status displays
	"inv":         "inventory",
	"i":           "inventory",
	"stats":       "status",
	"score":       "status",
	"coins":       "status",
	"progress":    "steps",
	"waypoint":    "where",
	"guide":       "where",
	"hint":        "where",
	"ach":         "achievements",
	"awards":      "achievements",
	"store":       "shop",
	"market":      "shop",
	"prices":      "shop",
	"korbanot":    "offerings",
	"sacrifices":  "offerings",
	"?":           "help",
	"commands":    "help",
	"achievement": "achievements",
	"offering":    "offerings",
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true,
	"with": true, "in": true, "from": true,
	"toward": true, "towards": true,
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

	// Direction shortcut: bare "n", "south 3", etc. → go <direction> [n]
	if dir, ok := direction(words[0]); ok {
		if len(words) == 1 {
			return types.Intent{Verb: "go", Object: dir}
		}
		if n, err := strconv.Atoi(words[1]); err == nil && len(words) == 2 && n > 0 {
			return types.Intent{Verb: "go", Object: dir, Amount: n}
		}
	}

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)
	if len(words) == 0 {
		return types.Intent{}
	}

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := words[1:]

	// Strip articles ("the", "a", "an").
	rest = stripArticles(rest)

	// Pull out a count ("go north 3", "buy 2 keves").
	amount, rest := extractAmount(rest)

	// "go n" expands the direction.
	if verb == "go" && len(rest) == 1 {
		if dir, ok := direction(rest[0]); ok {
			rest = []string{dir}
		}
	}

	// Use the first preposition as a delimiter between object and target.
	object, target := splitOnPreposition(rest)

	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
		Amount: amount,
	}
}

func direction(w string) (string, bool) {
	if dir, ok := directionExpansions[w]; ok {
		return dir, true
	}
	if directionNames[w] {
		return w, true
	}
	return "", false
}

// expandMultiWordVerbs handles "look at", "listen to", "go to" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "look":
		if words[1] == "at" || words[1] == "in" {
			return append([]string{"examine"}, words[2:]...)
		}
		if words[1] == "around" {
			return []string{"look"}
		}
	case "listen", "hear":
		if words[1] == "to" {
			return append([]string{"listen"}, words[2:]...)
		}
	case "read":
		if words[1] == "again" {
			return []string{"read"}
		}
	case "walk", "go", "head", "run", "move":
		if words[1] == "to" || words[1] == "toward" || words[1] == "towards" {
			return append([]string{"go", "to"}, words[2:]...)
		}
	case "give", "make":
		if len(words) >= 3 && (words[1] == "an" || words[1] == "a") && words[2] == "offering" {
			return append([]string{"offer"}, words[3:]...)
		}
	case "next", "do":
		if words[1] == "step" || words[1] == "avodah" || words[1] == "it" {
			return append([]string{"do"}, words[2:]...)
		}
	case "todays", "today's":
		if words[1] == "shir" || words[1] == "song" || words[1] == "psalm" {
			return []string{"shir"}
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

// extractAmount removes the first positive integer token and returns it.
func extractAmount(words []string) (int, []string) {
	for i, w := range words {
		n, err := strconv.Atoi(w)
		if err != nil || n <= 0 {
			continue
		}
		out := make([]string, 0, len(words)-1)
		out = append(out, words[:i]...)
		out = append(out, words[i+1:]...)
		return n, out
	}
	return 0, words
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
