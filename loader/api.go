package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
}

// curried returns a Lua function implementing the `Kind "id" { ... }`
// form: the first call takes the ID, the second the body table.
func curried(L *lua.LState, dst *[]rawDef, coll *collector) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			*dst = append(*dst, rawDef{id: id, table: tbl, order: coll.nextSourceOrder()})
			return 0
		}))
		return 1
	})
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Item "keves" { name = "...", price = 50, category = "animal" }
	L.SetGlobal("Item", curried(L, &coll.items, coll))

	// Offering "tamid" { animal = "keves", type = "olah", ... }
	L.SetGlobal("Offering", curried(L, &coll.offerings, coll))

	// Steps "olah" { { id = "shechita", ... }, ... }
	L.SetGlobal("Steps", curried(L, &coll.steps, coll))

	// Achievement "first_avodah" { requires = { ... } }
	L.SetGlobal("Achievement", curried(L, &coll.achievements, coll))

	// Instrument "kinor" { x = 7, z = -4, ... }
	L.SetGlobal("Instrument", curried(L, &coll.instruments, coll))

	// Landmark "altar" { x = 0, z = 0, solid = true, ... }
	L.SetGlobal("Landmark", curried(L, &coll.landmarks, coll))

	// Shir { weekday = 0, day = "Sunday", tehillim = 24, text = "..." }
	L.SetGlobal("Shir", L.NewFunction(func(L *lua.LState) int {
		coll.shir = append(coll.shir, L.CheckTable(1))
		return 0
	}))
}

func registerConditionHelpers(L *lua.LState) {
	counter := func(kind string) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			name := L.CheckString(1)
			value := L.CheckNumber(2)
			tbl := L.NewTable()
			tbl.RawSetString("type", lua.LString(kind))
			tbl.RawSetString("counter", lua.LString(name))
			tbl.RawSetString("value", value)
			L.Push(tbl)
			return 1
		})
	}

	// CounterAtLeast("offerings_completed", 1)
	L.SetGlobal("CounterAtLeast", counter("counter_at_least"))
	// CounterGt("coins", 100)
	L.SetGlobal("CounterGt", counter("counter_gt"))
	// CounterLt("coins", 10)
	L.SetGlobal("CounterLt", counter("counter_lt"))

	// HasAll("blood_methods", { "two_that_are_four", "four_corners" })
	L.SetGlobal("HasAll", L.NewFunction(func(L *lua.LState) int {
		set := L.CheckString(1)
		values := L.CheckTable(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("has_all"))
		tbl.RawSetString("set", lua.LString(set))
		tbl.RawSetString("values", values)
		L.Push(tbl)
		return 1
	}))

	// HasAllInstruments()
	L.SetGlobal("HasAllInstruments", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("has_all_instruments"))
		L.Push(tbl)
		return 1
	}))

	// HasAchievement("first_avodah")
	L.SetGlobal("HasAchievement", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("has_achievement"))
		tbl.RawSetString("id", lua.LString(id))
		L.Push(tbl)
		return 1
	}))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", inner)
		L.Push(tbl)
		return 1
	}))
}
