// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

// Package engine defines the template-engine contract that patterns render
// through, and the wrapper used by extensions to layer behavior on top of an
// existing engine.
package engine

import (
	"html/template"
	"maps"
	"strings"

	"github.com/samber/oops"
)

// Engine renders pattern templates.
type Engine interface {
	// Name identifies the engine (e.g. "html").
	Name() string

	// Funcs returns the template functions available to templates.
	// Callers must not mutate the returned map.
	Funcs() template.FuncMap

	// Render executes src against data.
	Render(src string, data any) (string, error)
}

// HTML is an Engine backed by html/template.
type HTML struct {
	name  string
	funcs template.FuncMap
}

// NewHTML creates an html/template engine with no extra functions.
func NewHTML(name string) *HTML {
	return &HTML{
		name:  name,
		funcs: template.FuncMap{},
	}
}

// Name returns the engine name.
func (e *HTML) Name() string { return e.name }

// Funcs returns the engine's template functions.
func (e *HTML) Funcs() template.FuncMap { return e.funcs }

// Render parses and executes src.
func (e *HTML) Render(src string, data any) (string, error) {
	return execute(e.name, e.funcs, src, data)
}

// Extended wraps an Engine with additional template functions.
type Extended struct {
	base  Engine
	extra template.FuncMap
	funcs template.FuncMap
}

// Extend wraps base with funcs. Functions in funcs shadow same-named functions
// of base. Extending an Extended nests another layer.
func Extend(base Engine, funcs template.FuncMap) *Extended {
	merged := make(template.FuncMap, len(base.Funcs())+len(funcs))
	maps.Copy(merged, base.Funcs())
	maps.Copy(merged, funcs)

	extra := make(template.FuncMap, len(funcs))
	maps.Copy(extra, funcs)

	return &Extended{base: base, extra: extra, funcs: merged}
}

// Name returns the wrapped engine's name.
func (e *Extended) Name() string { return e.base.Name() }

// Funcs returns the merged template functions.
func (e *Extended) Funcs() template.FuncMap { return e.funcs }

// Base returns the wrapped engine.
func (e *Extended) Base() Engine { return e.base }

// Render parses and executes src with the merged functions.
func (e *Extended) Render(src string, data any) (string, error) {
	return execute(e.base.Name(), e.funcs, src, data)
}

// Depth reports how many Extend layers wrap the innermost engine.
func Depth(e Engine) int {
	depth := 0
	for {
		ext, ok := e.(*Extended)
		if !ok {
			return depth
		}
		depth++
		e = ext.base
	}
}

func execute(name string, funcs template.FuncMap, src string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(funcs).Parse(src)
	if err != nil {
		return "", oops.In("engine").With("engine", name).Hint("failed to parse template").Wrap(err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", oops.In("engine").With("engine", name).Hint("failed to execute template").Wrap(err)
	}
	return b.String(), nil
}
