// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package lua

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/samber/oops"
	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"
	luar "layeh.com/gopher-luar"

	"github.com/patternlab/engine-extender/internal/plugin"
	"github.com/patternlab/engine-extender/pkg/engine"
)

// Compile-time interface check.
var _ plugin.Loader = (*Loader)(nil)

// Loader compiles Lua extension scripts. Each loaded script keeps its own
// Lua state alive until Close, since its filters are called at render time.
type Loader struct {
	factory *StateFactory
	fs      afero.Fs
	logger  *slog.Logger

	mu      sync.Mutex
	scripts []*script
	closed  bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithFs sets the filesystem scripts are read from.
func WithFs(fs afero.Fs) Option {
	return func(l *Loader) {
		l.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader reading from the OS filesystem.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		factory: NewStateFactory(),
		fs:      afero.NewOsFs(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load runs the script at path and returns the extension it exports.
//
// The chunk's return value is the module. A table with a default field is
// unwrapped once. The module must then be a function.
func (l *Loader) Load(ctx context.Context, path string) (plugin.Extension, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, oops.In("lua").With("file", path).New("loader is closed")
	}

	code, err := afero.ReadFile(l.fs, filepath.Clean(path))
	if err != nil {
		return nil, oops.In("lua").With("file", path).Hint("failed to read extension").Wrap(err)
	}

	L, err := l.factory.NewState(ctx)
	if err != nil {
		return nil, oops.In("lua").With("file", path).Hint("failed to create state").Wrap(err)
	}
	registerHostFunctions(L, l.logger, path)

	chunk, err := L.Load(bytes.NewReader(code), filepath.Base(path))
	if err != nil {
		L.Close()
		return nil, oops.In("lua").Code(plugin.CodeExtensionInvalid).With("file", path).Hint("syntax error").Wrap(err)
	}

	L.Push(chunk)
	if err := L.PCall(0, 1, nil); err != nil {
		L.Close()
		return nil, oops.In("lua").Code(plugin.CodeExtensionInvalid).With("file", path).Hint("extension raised an error while loading").Wrap(err)
	}
	module := L.Get(-1)
	L.Pop(1)

	fn, err := exportedFunction(module)
	if err != nil {
		L.Close()
		return nil, oops.In("lua").With("file", path).Wrap(err)
	}

	s := &script{path: path, state: L, fn: fn}
	l.scripts = append(l.scripts, s)
	l.logger.DebugContext(ctx, "loaded lua extension", "file", path)

	return s.extend, nil
}

// Close releases every Lua state. Extensions loaded earlier must not be
// used afterwards.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, s := range l.scripts {
		s.mu.Lock()
		s.state.Close()
		s.closed = true
		s.mu.Unlock()
	}
	l.scripts = nil
	l.closed = true
	return nil
}

func exportedFunction(module lua.LValue) (*lua.LFunction, error) {
	if !lua.LVAsBool(module) {
		return nil, oops.Code(plugin.CodeExtensionEmpty).New("extension failed to load")
	}
	if t, ok := module.(*lua.LTable); ok {
		if def := t.RawGetString("default"); lua.LVAsBool(def) {
			module = def
		}
	}

	fn, ok := module.(*lua.LFunction)
	if !ok {
		return nil, oops.Code(plugin.CodeExtensionNotCallable).
			With("type", module.Type().String()).
			New("extension does not export a function")
	}
	return fn, nil
}

// script is one loaded extension. LState is not safe for concurrent use,
// so every call into it holds mu.
type script struct {
	path  string
	fn    *lua.LFunction
	mu    sync.Mutex
	state *lua.LState

	closed bool
}

// extend calls the script's function with an engine table. Filters the
// script registers with engine:filter, or returns as a table of functions,
// become template functions on the wrapped engine.
func (s *script) extend(base engine.Engine) (engine.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, oops.In("lua").With("file", s.path).New("extension state is closed")
	}

	L := s.state
	filters := template.FuncMap{}

	tbl := L.NewTable()
	tbl.RawSetString("name", lua.LString(base.Name()))
	tbl.RawSetString("filter", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(2)
		fn := L.CheckFunction(3)
		filters[name] = s.filter(name, fn)
		return 0
	}))

	if err := L.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true}, tbl); err != nil {
		return nil, oops.In("lua").With("file", s.path).Hint("extension function failed").Wrap(err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	if returned, ok := ret.(*lua.LTable); ok && returned != tbl {
		returned.ForEach(func(k, v lua.LValue) {
			name, isName := k.(lua.LString)
			fn, isFn := v.(*lua.LFunction)
			if isName && isFn {
				filters[string(name)] = s.filter(string(name), fn)
			}
		})
	}

	return engine.Extend(base, filters), nil
}

// filter adapts a Lua function to a template function.
func (s *script) filter(name string, fn *lua.LFunction) func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.closed {
			return nil, oops.In("lua").With("file", s.path).With("filter", name).New("extension state is closed")
		}

		L := s.state
		largs := make([]lua.LValue, len(args))
		for i, a := range args {
			largs[i] = luar.New(L, a)
		}

		if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, largs...); err != nil {
			return nil, oops.In("lua").With("file", s.path).With("filter", name).Wrap(err)
		}
		ret := L.Get(-1)
		L.Pop(1)
		return toGo(ret), nil
	}
}

// toGo converts a filter result to a template value.
func toGo(v lua.LValue) any {
	switch v := v.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LNilType:
		return nil
	case *lua.LUserData:
		return v.Value
	default:
		return v.String()
	}
}
