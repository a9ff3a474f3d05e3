// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package lua

import (
	"log/slog"

	"github.com/oklog/ulid/v2"
	lua "github.com/yuin/gopher-lua"
)

// hostModule is the global table of host functions available to scripts.
const hostModule = "patternlab"

// registerHostFunctions adds the patternlab table to L:
//
//	patternlab.log(level, message)
//	patternlab.new_id() -> ULID string
func registerHostFunctions(L *lua.LState, logger *slog.Logger, file string) {
	mod := L.NewTable()
	L.SetField(mod, "log", L.NewFunction(logFn(logger.With("extension", file))))
	L.SetField(mod, "new_id", L.NewFunction(newIDFn))
	L.SetGlobal(hostModule, mod)
}

func logFn(logger *slog.Logger) lua.LGFunction {
	return func(L *lua.LState) int {
		level := L.CheckString(1)
		message := L.CheckString(2)

		switch level {
		case "debug":
			logger.Debug(message)
		case "warn":
			logger.Warn(message)
		case "error":
			logger.Error(message)
		default:
			logger.Info(message)
		}
		return 0
	}
}

func newIDFn(L *lua.LState) int {
	L.Push(lua.LString(ulid.Make().String()))
	return 1
}
