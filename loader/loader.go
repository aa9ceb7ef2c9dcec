package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/spiritmaster/engine/state"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	arena     *lua.LTable
	player    *lua.LTable
	abilities []rawDef
	species   []rawDef
	items     []rawDef
	creatures []rawDef
	teams     []rawDef
}

// Load reads all .lua files from dir, compiles them into arena definitions,
// validates references, and returns the immutable Defs together with any
// validation warnings. The Lua VM is discarded after loading.
func Load(dir string) (*state.Defs, []string, error) {
	// Discover .lua files.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading arena directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	// Sort: arena.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	// Execute each file.
	for _, f := range luaFiles {
		path := filepath.Join(dir, f)
		if err := L.DoFile(path); err != nil {
			return nil, nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	ve := &ValidationError{}
	defs, err := compile(coll, ve)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling arena data: %w", err)
	}
	validate(defs, ve)
	if len(ve.Errors) > 0 {
		return nil, ve.Warnings, ve
	}
	return defs, ve.Warnings, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "require", "module",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Arena files must not reseed; battles own the only RNG.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}
