// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

// Package lua loads template-engine extensions written in Lua.
//
// An extension script returns a function (or a table whose default field is
// a function). The function receives an engine table and registers template
// filters on it:
//
//	return function(engine)
//	  engine:filter("shout", function(s) return string.upper(s) end)
//	end
package lua

import (
	"context"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
)

// library is a Lua standard library opened in extension states.
type library struct {
	name string
	fn   lua.LGFunction
}

// sandboxLibraries are the libraries extension scripts may use.
// os, io, debug and package are never opened.
func sandboxLibraries() []library {
	return []library{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
}

// blockedBaseFunctions reach the filesystem or compile arbitrary chunks.
var blockedBaseFunctions = []string{"dofile", "loadfile", "loadstring", "load", "require"}

// StateFactory creates sandboxed Lua states.
type StateFactory struct {
	libraries []library
}

// NewStateFactory creates a state factory with the sandbox libraries.
func NewStateFactory() *StateFactory {
	return &StateFactory{
		libraries: sandboxLibraries(),
	}
}

// NewState creates a fresh sandboxed state. It fails if ctx is already done.
func (f *StateFactory) NewState(ctx context.Context) (*lua.LState, error) {
	if err := ctx.Err(); err != nil {
		return nil, oops.In("lua").Wrap(err)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range f.libraries {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, oops.In("lua").With("library", lib.name).Hint("failed to open library").Wrap(err)
		}
	}

	for _, fn := range blockedBaseFunctions {
		L.SetGlobal(fn, lua.LNil)
	}

	return L, nil
}
