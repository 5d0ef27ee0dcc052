// Package loader loads the Lua catalog into Go structs at startup.
// The Lua VM is discarded after loading; nothing runs Lua at play time.
package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/mikdash/engine/state"
	"github.com/nathoo/mikdash/types"
)

// rawDef holds a curried definition table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
	order int
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Items:       map[string]types.ItemDef{},
		Offerings:   map[string]types.OfferingDef{},
		Steps:       map[string][]types.StepDef{},
		Instruments: map[string]types.InstrumentDef{},
		Landmarks:   map[string]types.LandmarkDef{},
	}

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Game = compileGame(coll.game)

	seen := map[string]map[string]bool{}
	dup := func(kind, id string) error {
		if seen[kind] == nil {
			seen[kind] = map[string]bool{}
		}
		if seen[kind][id] {
			return fmt.Errorf("duplicate %s %q", kind, id)
		}
		seen[kind][id] = true
		return nil
	}

	for _, raw := range coll.items {
		if err := dup("item", raw.id); err != nil {
			return nil, err
		}
		defs.Items[raw.id] = compileItem(raw)
	}

	for _, raw := range coll.offerings {
		if err := dup("offering", raw.id); err != nil {
			return nil, err
		}
		defs.Offerings[raw.id] = compileOffering(raw)
	}

	for _, raw := range coll.steps {
		if err := dup("steps", raw.id); err != nil {
			return nil, err
		}
		steps, err := compileSteps(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling steps %s: %w", raw.id, err)
		}
		defs.Steps[raw.id] = steps
	}

	for _, raw := range coll.achievements {
		if err := dup("achievement", raw.id); err != nil {
			return nil, err
		}
		a, err := compileAchievement(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling achievement %s: %w", raw.id, err)
		}
		defs.Achievements = append(defs.Achievements, a)
	}
	sort.SliceStable(defs.Achievements, func(i, j int) bool {
		return defs.Achievements[i].SourceOrder < defs.Achievements[j].SourceOrder
	})

	for _, raw := range coll.instruments {
		if err := dup("instrument", raw.id); err != nil {
			return nil, err
		}
		defs.Instruments[raw.id] = compileInstrument(raw)
	}

	for _, raw := range coll.landmarks {
		if err := dup("landmark", raw.id); err != nil {
			return nil, err
		}
		defs.Landmarks[raw.id] = compileLandmark(raw)
	}

	for _, tbl := range coll.shir {
		defs.Shir = append(defs.Shir, types.ShirDef{
			Weekday:  getInt(tbl, "weekday"),
			Day:      getString(tbl, "day"),
			Tehillim: getInt(tbl, "tehillim"),
			Text:     getString(tbl, "text"),
		})
	}
	sort.SliceStable(defs.Shir, func(i, j int) bool { return defs.Shir[i].Weekday < defs.Shir[j].Weekday })

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:         getString(tbl, "title"),
		Author:        getString(tbl, "author"),
		Version:       getString(tbl, "version"),
		Intro:         getString(tbl, "intro"),
		StartingCoins: getInt(tbl, "starting_coins"),
	}
}

func compileItem(raw rawDef) types.ItemDef {
	t := raw.table
	level := getInt(t, "level")
	if level < 1 {
		level = 1
	}
	return types.ItemDef{
		ID:            raw.id,
		Name:          getString(t, "name"),
		Emoji:         getString(t, "emoji"),
		Price:         getInt(t, "price"),
		Category:      getString(t, "category"),
		LevelRequired: level,
		Desc:          getString(t, "desc"),
	}
}

func compileOffering(raw rawDef) types.OfferingDef {
	t := raw.table
	level := getInt(t, "level")
	if level < 1 {
		level = 1
	}
	return types.OfferingDef{
		ID:                raw.id,
		Name:              getString(t, "name"),
		NameHe:            getString(t, "name_he"),
		Emoji:             getString(t, "emoji"),
		Animal:            getString(t, "animal"),
		Type:              getString(t, "type"),
		Category:          getString(t, "category"),
		SlaughterLocation: getString(t, "slaughter"),
		BloodService:      getString(t, "blood"),
		EatenBy:           getString(t, "eaten_by"),
		EatingLocation:    getString(t, "eating_location"),
		EatingTimeLimit:   getString(t, "eating_time_limit"),
		Description:       getString(t, "description"),
		Source:            getString(t, "source"),
		Mishnah:           getString(t, "mishnah"),
		LevelRequired:     level,
		CoinReward:        getInt(t, "reward"),
		Daily:             getBool(t, "daily", false),
		SourceOrder:       raw.order,
	}
}

func compileSteps(raw rawDef) ([]types.StepDef, error) {
	var steps []types.StepDef
	n := raw.table.MaxN()
	for i := 1; i <= n; i++ {
		st, ok := raw.table.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("step %d is not a table", i)
		}
		steps = append(steps, types.StepDef{
			ID:     getString(st, "id"),
			Name:   getString(st, "name"),
			NameHe: getString(st, "name_he"),
			Emoji:  getString(st, "emoji"),
			Desc:   getString(st, "desc"),
		})
	}
	return steps, nil
}

func compileAchievement(raw rawDef) (types.AchievementDef, error) {
	t := raw.table
	a := types.AchievementDef{
		ID:          raw.id,
		Name:        getString(t, "name"),
		Emoji:       getString(t, "emoji"),
		Desc:        getString(t, "desc"),
		SourceOrder: raw.order,
	}
	req := getTable(t, "requires")
	if req == nil {
		return a, nil
	}
	n := req.MaxN()
	for i := 1; i <= n; i++ {
		ct, ok := req.RawGetInt(i).(*lua.LTable)
		if !ok {
			return a, fmt.Errorf("requires[%d] is not a condition", i)
		}
		c, err := compileCondition(ct)
		if err != nil {
			return a, err
		}
		a.Requires = append(a.Requires, c)
	}
	return a, nil
}

// compileCondition converts a helper-built condition table.
func compileCondition(tbl *lua.LTable) (types.Condition, error) {
	typ := getString(tbl, "type")
	if typ == "" {
		return types.Condition{}, fmt.Errorf("condition missing type")
	}
	if typ == "not" {
		innerTbl := getTable(tbl, "inner")
		if innerTbl == nil {
			return types.Condition{}, fmt.Errorf("Not() requires a condition")
		}
		inner, err := compileCondition(innerTbl)
		if err != nil {
			return types.Condition{}, err
		}
		return types.Condition{Type: "not", Negate: true, Inner: &inner}, nil
	}
	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
			params[string(ks)] = toGoValue(v)
		}
	})
	return types.Condition{Type: typ, Params: params}, nil
}

func compileInstrument(raw rawDef) types.InstrumentDef {
	t := raw.table
	return types.InstrumentDef{
		ID:     raw.id,
		Name:   getString(t, "name"),
		NameHe: getString(t, "name_he"),
		Emoji:  getString(t, "emoji"),
		Desc:   getString(t, "desc"),
		Source: getString(t, "source"),
		X:      getNumber(t, "x"),
		Z:      getNumber(t, "z"),
	}
}

func compileLandmark(raw rawDef) types.LandmarkDef {
	t := raw.table
	return types.LandmarkDef{
		ID:       raw.id,
		Name:     getString(t, "name"),
		X:        getNumber(t, "x"),
		Z:        getNumber(t, "z"),
		Solid:    getBool(t, "solid", false),
		W:        getNumber(t, "w"),
		D:        getNumber(t, "d"),
		Interact: getString(t, "interact"),
		Text:     getString(t, "text"),
		Source:   getString(t, "source"),
	}
}
