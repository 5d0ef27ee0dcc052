package loader

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/nathoo/mikdash/engine/state"
	"github.com/nathoo/mikdash/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known condition types.
var validConditionTypes = map[string]bool{
	"counter_at_least":    true,
	"counter_gt":          true,
	"counter_lt":          true,
	"has_all":             true,
	"has_all_instruments": true,
	"has_achievement":     true,
	"not":                 true,
}

var validCounters = map[string]bool{
	"coins":               true,
	"level":               true,
	"total_earned":        true,
	"total_spent":         true,
	"offerings_completed": true,
	"offerings_perfect":   true,
	"daily_offerings":     true,
	"sources_read":        true,
	"blood_methods":       true,
	"instruments_heard":   true,
	"achievements":        true,
}

var validSets = map[string]bool{
	"blood_methods":     true,
	"instruments_heard": true,
	"achievements":      true,
}

var validOfferingTypes = map[string]bool{
	types.OfferingBurnt: true,
	types.OfferingSin:   true,
	types.OfferingPeace: true,
}

var validSlaughter = map[string]bool{
	types.SlaughterNorth:    true,
	types.SlaughterAnywhere: true,
	types.SlaughterOnAltar:  true,
}

var validBlood = map[string]bool{
	types.BloodTwoThatAreFour: true,
	types.BloodFourCorners:    true,
	types.BloodSqueezeOnWall:  true,
}

var validInteractions = map[string]bool{
	"":       true,
	"shop":   true,
	"lesson": true,
	"altar":  true,
}

// canonicalSteps is the order every step template must follow.
var canonicalSteps = []string{
	types.StepShechita, types.StepKabbalah, types.StepHolacha, types.StepZerika, types.StepHaktarah,
}

// validate checks the compiled defs for referential integrity and consistency.
func validate(defs *state.Defs) error {
	ve := &ValidationError{}

	if defs.Game.Title == "" {
		ve.Errors = append(ve.Errors, "Game.title is required")
	}
	if defs.Game.StartingCoins < 0 {
		ve.Errors = append(ve.Errors, "Game.starting_coins must not be negative")
	}

	for _, id := range sortedKeys(defs.Items) {
		item := defs.Items[id]
		if item.Price <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("item %q price must be positive", id))
		}
		if item.Category != types.CategoryAnimal && item.Category != types.CategoryMincha {
			ve.Errors = append(ve.Errors, fmt.Sprintf("item %q has unknown category %q", id, item.Category))
		}
	}

	for _, t := range sortedKeys(defs.Steps) {
		validateSteps(t, defs.Steps[t], ve)
	}
	if _, ok := defs.Steps[types.OfferingBurnt]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf("steps for %q are required as the fallback template", types.OfferingBurnt))
	}

	for _, id := range sortedKeys(defs.Offerings) {
		validateOffering(defs.Offerings[id], defs, ve)
	}

	for _, a := range defs.Achievements {
		if len(a.Requires) == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("achievement %q has no requirements and can never unlock", a.ID))
		}
		validateConditions(a.ID, a.Requires, defs, ve)
	}

	for _, id := range sortedKeys(defs.Landmarks) {
		lm := defs.Landmarks[id]
		if !validInteractions[lm.Interact] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("landmark %q has unknown interaction %q", id, lm.Interact))
		}
		if lm.Solid && (lm.W <= 0 || lm.D <= 0) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("solid landmark %q needs a positive footprint", id))
		}
		if _, ok := defs.Instruments[id]; ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf("landmark %q shares its ID with an instrument", id))
		}
	}
	if lm, ok := defs.Landmarks["altar"]; !ok || lm.Interact != "altar" {
		ve.Errors = append(ve.Errors, `landmark "altar" with interact = "altar" is required`)
	}

	days := map[int]bool{}
	for _, s := range defs.Shir {
		if s.Weekday < 0 || s.Weekday > 6 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("shir for %q has weekday %d outside 0-6", s.Day, s.Weekday))
			continue
		}
		if days[s.Weekday] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate shir for weekday %d", s.Weekday))
		}
		days[s.Weekday] = true
	}

	for _, w := range ve.Warnings {
		slog.Warn("catalog warning", "detail", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateOffering(o types.OfferingDef, defs *state.Defs, ve *ValidationError) {
	if o.Name == "" {
		ve.Errors = append(ve.Errors, fmt.Sprintf("offering %q name is required", o.ID))
	}
	item, ok := defs.Items[o.Animal]
	switch {
	case !ok:
		ve.Errors = append(ve.Errors, fmt.Sprintf("offering %q uses undefined animal %q", o.ID, o.Animal))
	case item.Category != types.CategoryAnimal:
		ve.Errors = append(ve.Errors, fmt.Sprintf("offering %q animal %q is not an animal item", o.ID, o.Animal))
	}
	if !validOfferingTypes[o.Type] {
		ve.Errors = append(ve.Errors, fmt.Sprintf("offering %q has unknown type %q", o.ID, o.Type))
	} else if _, ok := defs.Steps[o.Type]; !ok {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf("offering %q type %q has no steps; the %s template is used", o.ID, o.Type, types.OfferingBurnt))
	}
	if !validSlaughter[o.SlaughterLocation] {
		ve.Errors = append(ve.Errors, fmt.Sprintf("offering %q has unknown slaughter location %q", o.ID, o.SlaughterLocation))
	}
	if !validBlood[o.BloodService] {
		ve.Errors = append(ve.Errors, fmt.Sprintf("offering %q has unknown blood service %q", o.ID, o.BloodService))
	}
	if o.CoinReward < 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("offering %q reward must not be negative", o.ID))
	}
}

// validateSteps checks a template is non-empty, has no repeats, and
// follows the canonical order (a subset is allowed).
func validateSteps(offeringType string, steps []types.StepDef, ve *ValidationError) {
	if len(steps) == 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("steps %q is empty", offeringType))
		return
	}
	pos := map[string]int{}
	for i, id := range canonicalSteps {
		pos[id] = i
	}
	last := -1
	seen := map[string]bool{}
	for _, st := range steps {
		p, ok := pos[st.ID]
		if !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf("steps %q has unknown step %q", offeringType, st.ID))
			continue
		}
		if seen[st.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("steps %q repeats %q", offeringType, st.ID))
			continue
		}
		seen[st.ID] = true
		if p < last {
			ve.Errors = append(ve.Errors, fmt.Sprintf("steps %q has %q out of order", offeringType, st.ID))
		}
		last = p
	}
}

func validateConditions(owner string, conds []types.Condition, defs *state.Defs, ve *ValidationError) {
	for _, c := range conds {
		validateCondition(owner, c, defs, ve)
	}
}

func validateCondition(owner string, c types.Condition, defs *state.Defs, ve *ValidationError) {
	if !validConditionTypes[c.Type] {
		ve.Errors = append(ve.Errors, fmt.Sprintf("achievement %q: unknown condition type %q", owner, c.Type))
		return
	}
	switch c.Type {
	case "counter_at_least", "counter_gt", "counter_lt":
		name, _ := c.Params["counter"].(string)
		if !validCounters[name] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("achievement %q: unknown counter %q", owner, name))
		}
	case "has_all":
		set, _ := c.Params["set"].(string)
		if !validSets[set] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("achievement %q: unknown set %q", owner, set))
		}
		if vals, _ := c.Params["values"].([]any); len(vals) == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("achievement %q: has_all needs at least one value", owner))
		}
	case "has_all_instruments":
		if len(defs.Instruments) == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("achievement %q needs instruments but none are defined", owner))
		}
	case "has_achievement":
		id, _ := c.Params["id"].(string)
		found := false
		for _, a := range defs.Achievements {
			if a.ID == id {
				found = true
				break
			}
		}
		if !found {
			ve.Errors = append(ve.Errors, fmt.Sprintf("achievement %q references undefined achievement %q", owner, id))
		}
	case "not":
		if c.Inner != nil {
			validateCondition(owner, *c.Inner, defs, ve)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
