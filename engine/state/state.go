// Package state holds the immutable catalog definitions and read helpers
// over the mutable player ledger.
package state

import (
	"sort"

	"github.com/nathoo/mikdash/types"
)

// Defs holds the immutable catalog loaded from Lua.
type Defs struct {
	Game         types.GameDef
	Items        map[string]types.ItemDef
	Offerings    map[string]types.OfferingDef
	Steps        map[string][]types.StepDef // offering type → ordered steps
	Achievements []types.AchievementDef     // catalog order
	Instruments  map[string]types.InstrumentDef
	Landmarks    map[string]types.LandmarkDef
	Shir         []types.ShirDef
}

// DefaultStartingCoins is used when the catalog does not set one.
const DefaultStartingCoins = 50

// NewLedger creates a fresh ledger for a new profile.
func NewLedger(defs *Defs, level int) *types.Ledger {
	coins := defs.Game.StartingCoins
	if coins <= 0 {
		coins = DefaultStartingCoins
	}
	if level < 1 {
		level = 1
	}
	return &types.Ledger{
		Coins:            coins,
		Level:            level,
		Inventory:        map[string]int{},
		Achievements:     []string{},
		BloodMethods:     []string{},
		InstrumentsHeard: []string{},
	}
}

// Count returns how many units of an item the player holds.
func Count(l *types.Ledger, itemID string) int {
	return l.Inventory[itemID]
}

// HasAchievement reports whether an achievement is already unlocked.
func HasAchievement(l *types.Ledger, id string) bool {
	return contains(l.Achievements, id)
}

// Counter returns a named numeric counter. Set-valued counters report
// their size. Unknown counters return 0.
func Counter(l *types.Ledger, name string) int {
	switch name {
	case "coins":
		return l.Coins
	case "level":
		return l.Level
	case "total_earned":
		return l.TotalEarned
	case "total_spent":
		return l.TotalSpent
	case "offerings_completed":
		return l.OfferingsCompleted
	case "offerings_perfect":
		return l.OfferingsPerfect
	case "daily_offerings":
		return l.DailyCount
	case "sources_read":
		return l.SourcesRead
	case "blood_methods":
		return len(l.BloodMethods)
	case "instruments_heard":
		return len(l.InstrumentsHeard)
	case "achievements":
		return len(l.Achievements)
	default:
		return 0
	}
}

// Set returns a named set-valued counter. Unknown sets return nil.
func Set(l *types.Ledger, name string) []string {
	switch name {
	case "blood_methods":
		return l.BloodMethods
	case "instruments_heard":
		return l.InstrumentsHeard
	case "achievements":
		return l.Achievements
	default:
		return nil
	}
}

// SetHas reports whether a named set contains value.
func SetHas(l *types.Ledger, name, value string) bool {
	return contains(Set(l, name), value)
}

// Animals returns the IDs of animal items the player holds, sorted.
func Animals(l *types.Ledger, defs *Defs) []string {
	var ids []string
	for id, n := range l.Inventory {
		if n <= 0 {
			continue
		}
		if item, ok := defs.Items[id]; ok && item.Category == types.CategoryAnimal {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// OfferingsFor returns the offerings that use the given animal and are
// open at the given level, in catalog order.
func OfferingsFor(defs *Defs, animalID string, level int) []types.OfferingDef {
	var result []types.OfferingDef
	for _, o := range defs.Offerings {
		if o.Animal == animalID && o.LevelRequired <= level {
			result = append(result, o)
		}
	}
	sortOfferings(result)
	return result
}

// SortedOfferings returns every offering in catalog order.
func SortedOfferings(defs *Defs) []types.OfferingDef {
	result := make([]types.OfferingDef, 0, len(defs.Offerings))
	for _, o := range defs.Offerings {
		result = append(result, o)
	}
	sortOfferings(result)
	return result
}

// SortedItems returns shop items ordered by category, then price, then ID.
func SortedItems(defs *Defs) []types.ItemDef {
	result := make([]types.ItemDef, 0, len(defs.Items))
	for _, it := range defs.Items {
		result = append(result, it)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		return a.ID < b.ID
	})
	return result
}

// SortedInstruments returns instruments ordered by ID.
func SortedInstruments(defs *Defs) []types.InstrumentDef {
	result := make([]types.InstrumentDef, 0, len(defs.Instruments))
	for _, in := range defs.Instruments {
		result = append(result, in)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func sortOfferings(os []types.OfferingDef) {
	sort.Slice(os, func(i, j int) bool {
		if os[i].SourceOrder != os[j].SourceOrder {
			return os[i].SourceOrder < os[j].SourceOrder
		}
		return os[i].ID < os[j].ID
	})
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
