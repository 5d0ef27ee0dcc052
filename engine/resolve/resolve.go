// Package resolve maps names from parsed intents to catalog IDs.
package resolve

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/nathoo/mikdash/engine/state"
)

// Kind names a catalog section.
type Kind string

const (
	KindItem       Kind = "item"
	KindOffering   Kind = "offering"
	KindInstrument Kind = "instrument"
	KindLandmark   Kind = "landmark"
)

// Match is a resolved catalog entry.
type Match struct {
	Kind Kind
	ID   string
}

// AmbiguityError indicates multiple entries matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no entry matched a name.
type NotFoundError struct {
	Name string
	Kind Kind
}

func (e *NotFoundError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("there is no %q here", e.Name)
	}
	return fmt.Sprintf("there is no %s called %q", e.Kind, e.Name)
}

// candidate is the searchable surface of one catalog entry.
type candidate struct {
	id    string
	names []string // display names, Hebrew names
	tags  []string // broader words that select a group (animal, type)
	exact bool     // only exact ID or name matches
}

// Item resolves a shop item by ID or name.
func Item(defs *state.Defs, name string) (string, error) {
	cands := make([]candidate, 0, len(defs.Items))
	for _, it := range state.SortedItems(defs) {
		cands = append(cands, candidate{id: it.ID, names: []string{it.Name}, tags: []string{it.Category}})
	}
	return resolveName(cands, name, KindItem)
}

// Offering resolves an offering by ID, name, type or animal. Group matches
// (by type or animal) only consider offerings at or below level; a level
// of zero disables the filter. Exact ID and name matches ignore level.
func Offering(defs *state.Defs, name string, level int) (string, error) {
	var cands []candidate
	for _, o := range state.SortedOfferings(defs) {
		cands = append(cands, candidate{
			id:    o.ID,
			names: []string{o.Name, o.NameHe},
			tags:  []string{o.Type, o.Animal},
			exact: level != 0 && o.LevelRequired > level,
		})
	}
	return resolveName(cands, name, KindOffering)
}

// Instrument resolves a Levite instrument.
func Instrument(defs *state.Defs, name string) (string, error) {
	var cands []candidate
	for _, in := range state.SortedInstruments(defs) {
		cands = append(cands, candidate{id: in.ID, names: []string{in.Name, in.NameHe}})
	}
	return resolveName(cands, name, KindInstrument)
}

// Landmark resolves a landmark by ID or name.
func Landmark(defs *state.Defs, name string) (string, error) {
	ids := make([]string, 0, len(defs.Landmarks))
	for id := range defs.Landmarks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	cands := make([]candidate, 0, len(ids))
	for _, id := range ids {
		lm := defs.Landmarks[id]
		cands = append(cands, candidate{id: id, names: []string{lm.Name}})
	}
	return resolveName(cands, name, KindLandmark)
}

// Any resolves a name across every catalog section, in the order items,
// offerings, instruments, landmarks. The first section with a unique match
// wins; an ambiguity in a section stops the search.
func Any(defs *state.Defs, name string) (Match, error) {
	lookups := []struct {
		kind Kind
		fn   func() (string, error)
	}{
		{KindItem, func() (string, error) { return Item(defs, name) }},
		{KindOffering, func() (string, error) { return Offering(defs, name, 0) }},
		{KindInstrument, func() (string, error) { return Instrument(defs, name) }},
		{KindLandmark, func() (string, error) { return Landmark(defs, name) }},
	}
	for _, l := range lookups {
		id, err := l.fn()
		if err == nil {
			return Match{Kind: l.kind, ID: id}, nil
		}
		if _, ok := err.(*NotFoundError); !ok {
			return Match{}, err
		}
	}
	return Match{}, &NotFoundError{Name: name}
}

// resolveName finds the single candidate matching name. Exact ID or full
// name matches win over word and tag matches.
func resolveName(cands []candidate, name string, kind Kind) (string, error) {
	nameLower := strings.ToLower(strings.TrimSpace(name))
	if nameLower == "" {
		return "", &NotFoundError{Name: name, Kind: kind}
	}

	for _, c := range cands {
		if exactMatch(c, nameLower) {
			return c.id, nil
		}
	}

	var matches []string
	for _, c := range cands {
		if !c.exact && partialMatch(c, nameLower) {
			matches = append(matches, c.id)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Name: name, Kind: kind}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}

func exactMatch(c candidate, nameLower string) bool {
	idLower := strings.ToLower(c.id)
	if idLower == nameLower {
		return true
	}
	// Underscore normalization: "olah keves" matches "olah_keves".
	if strings.ReplaceAll(nameLower, " ", "_") == idLower {
		return true
	}
	for _, n := range c.names {
		if n != "" && strings.ToLower(n) == nameLower {
			return true
		}
	}
	return false
}

// partialMatch reports whether the query equals any word of a name or a
// tag.
func partialMatch(c candidate, nameLower string) bool {
	for _, n := range c.names {
		for _, word := range words(n) {
			if word == nameLower {
				return true
			}
		}
	}
	for _, tag := range c.tags {
		if tag != "" && strings.ToLower(tag) == nameLower {
			return true
		}
	}
	return false
}

// words splits a display name on anything that is not a letter or digit,
// so "Keves (Lamb)" yields "keves" and "lamb".
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
