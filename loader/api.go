package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors as globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Arena { title = "...", ... }
	L.SetGlobal("Arena", L.NewFunction(func(L *lua.LState) int {
		coll.arena = L.CheckTable(1)
		return 0
	}))

	// Player { name = "...", roster = { ... } }
	L.SetGlobal("Player", L.NewFunction(func(L *lua.LState) int {
		coll.player = L.CheckTable(1)
		return 0
	}))

	// Curried constructors: Ability "id" { ... }
	L.SetGlobal("Ability", curried(L, &coll.abilities))
	L.SetGlobal("Species", curried(L, &coll.species))
	L.SetGlobal("Item", curried(L, &coll.items))
	L.SetGlobal("Creature", curried(L, &coll.creatures))
	L.SetGlobal("Team", curried(L, &coll.teams))

	// Stats { attack = 5 } is a pass-through so bonuses read naturally.
	L.SetGlobal("Stats", L.NewFunction(func(L *lua.LState) int {
		L.Push(L.CheckTable(1))
		return 1
	}))
}

// curried returns a constructor that takes an ID and yields a function taking
// the definition table, appending both to dst.
func curried(L *lua.LState, dst *[]rawDef) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			*dst = append(*dst, rawDef{id: id, table: tbl})
			return 0
		}))
		return 1
	})
}
