// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package engine_test

import (
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternlab/engine-extender/pkg/engine"
)

func TestHTML_Render(t *testing.T) {
	e := engine.NewHTML("html")

	out, err := e.Render(`<p>{{.Title}}</p>`, map[string]any{"Title": "a & b"})
	require.NoError(t, err)
	assert.Equal(t, "<p>a &amp; b</p>", out)
	assert.Equal(t, "html", e.Name())
	assert.Empty(t, e.Funcs())
}

func TestHTML_Render_ParseError(t *testing.T) {
	e := engine.NewHTML("html")

	_, err := e.Render(`{{.Title`, nil)
	require.Error(t, err)
}

func TestHTML_Render_UnknownFunc(t *testing.T) {
	e := engine.NewHTML("html")

	_, err := e.Render(`{{shout .}}`, "x")
	require.Error(t, err, "functions are only available after Extend")
}

func TestExtend_AddsFuncs(t *testing.T) {
	base := engine.NewHTML("html")
	ext := engine.Extend(base, template.FuncMap{
		"shout": strings.ToUpper,
	})

	out, err := ext.Render(`{{shout .}}`, "hello")
	require.NoError(t, err)
	assert.Equal(t, "HELLO", out)
	assert.Equal(t, "html", ext.Name())
	assert.Same(t, base, ext.Base())
	assert.Empty(t, base.Funcs(), "base engine must not be mutated")
}

func TestExtend_ShadowsBaseFuncs(t *testing.T) {
	inner := engine.Extend(engine.NewHTML("html"), template.FuncMap{
		"greet": func() string { return "hi" },
	})
	outer := engine.Extend(inner, template.FuncMap{
		"greet": func() string { return "hello" },
	})

	out, err := outer.Render(`{{greet}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	out, err = inner.Render(`{{greet}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestDepth(t *testing.T) {
	var e engine.Engine = engine.NewHTML("html")
	assert.Equal(t, 0, engine.Depth(e))

	e = engine.Extend(e, nil)
	assert.Equal(t, 1, engine.Depth(e))

	e = engine.Extend(e, template.FuncMap{"x": func() string { return "" }})
	assert.Equal(t, 2, engine.Depth(e))
}
