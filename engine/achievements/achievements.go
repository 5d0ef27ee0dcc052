// Package achievements maps ledger counters to unlocked achievements.
package achievements

import (
	"github.com/nathoo/mikdash/engine/rules"
	"github.com/nathoo/mikdash/engine/state"
	"github.com/nathoo/mikdash/types"
)

// Evaluate returns the IDs of achievements whose conditions hold and that
// are not yet unlocked, in catalog order. It does not mutate the ledger.
func Evaluate(defs *state.Defs, l *types.Ledger) []string {
	var unlocked []string
	for _, a := range defs.Achievements {
		if state.HasAchievement(l, a.ID) {
			continue
		}
		if len(a.Requires) == 0 {
			continue
		}
		if rules.EvalAllConditions(a.Requires, l, defs) {
			unlocked = append(unlocked, a.ID)
		}
	}
	return unlocked
}

// Apply evaluates and records newly unlocked achievements. Achievements
// are only ever appended.
func Apply(defs *state.Defs, l *types.Ledger) []string {
	ids := Evaluate(defs, l)
	l.Achievements = append(l.Achievements, ids...)
	return ids
}

// Lookup returns the definition for an achievement ID.
func Lookup(defs *state.Defs, id string) (types.AchievementDef, bool) {
	for _, a := range defs.Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return types.AchievementDef{}, false
}
