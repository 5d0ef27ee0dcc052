// Package rules evaluates catalog conditions against the player ledger.
package rules

import (
	"github.com/nathoo/mikdash/engine/state"
	"github.com/nathoo/mikdash/types"
)

// EvalCondition evaluates a single condition against the ledger.
func EvalCondition(c types.Condition, l *types.Ledger, defs *state.Defs) bool {
	switch c.Type {
	case "counter_at_least":
		counter, _ := c.Params["counter"].(string)
		return state.Counter(l, counter) >= toInt(c.Params["value"])

	case "counter_gt":
		counter, _ := c.Params["counter"].(string)
		return state.Counter(l, counter) > toInt(c.Params["value"])

	case "counter_lt":
		counter, _ := c.Params["counter"].(string)
		return state.Counter(l, counter) < toInt(c.Params["value"])

	case "has_all":
		set, _ := c.Params["set"].(string)
		for _, v := range toStrings(c.Params["values"]) {
			if !state.SetHas(l, set, v) {
				return false
			}
		}
		return true

	case "has_all_instruments":
		if len(defs.Instruments) == 0 {
			return false
		}
		for id := range defs.Instruments {
			if !state.SetHas(l, "instruments_heard", id) {
				return false
			}
		}
		return true

	case "has_achievement":
		id, _ := c.Params["id"].(string)
		return state.HasAchievement(l, id)

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, l, defs)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, l *types.Ledger, defs *state.Defs) bool {
	for _, c := range conditions {
		if !EvalCondition(c, l, defs) {
			return false
		}
	}
	return true
}

// toInt converts an any value to int, handling float64 from JSON/Lua.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}

// toStrings converts a Lua array (as []any) or []string to []string.
func toStrings(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, x := range vals {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
