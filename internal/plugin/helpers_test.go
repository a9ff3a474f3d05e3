// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package plugin_test

import (
	"bytes"
	"html/template"
	"io/fs"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/patternlab/engine-extender/internal/observability"
	"github.com/patternlab/engine-extender/internal/plugin"
	"github.com/patternlab/engine-extender/pkg/engine"
	"github.com/patternlab/engine-extender/pkg/patternlab"
)

const (
	testPublicRoot = "/site/public"
	testExtPath    = "ext/double.js"
)

// failingFS fails to open one file and serves the rest from files.
type failingFS struct {
	files fstest.MapFS
	fail  string
}

func (f failingFS) Open(name string) (fs.File, error) {
	if name == f.fail {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return f.files.Open(name)
}

func testBundle() fstest.MapFS {
	return fstest.MapFS{
		"dist/js/plugin-node-engine-extender.js": {Data: []byte("console.log('x');")},
		"dist/css/extender.css":                  {Data: []byte("body{}")},
		"dist/.DS_Store":                         {Data: []byte("junk")},
	}
}

// doubled adds a "doubled" template function that reports true.
func doubled(e engine.Engine) (engine.Engine, error) {
	return engine.Extend(e, template.FuncMap{
		"doubled": func() bool { return true },
	}), nil
}

type fixture struct {
	installer *plugin.Installer
	registry  *plugin.Registry
	out       afero.Fs
	metrics   *observability.Metrics
	logs      *bytes.Buffer
}

func newFixture(t *testing.T, opts ...plugin.Option) *fixture {
	t.Helper()

	f := &fixture{
		registry: plugin.NewRegistry(),
		out:      afero.NewMemMapFs(),
		metrics:  observability.NewMetrics(),
		logs:     new(bytes.Buffer),
	}
	require.NoError(t, f.registry.Register(testExtPath, doubled))

	base := []plugin.Option{
		plugin.WithBundle(testBundle()),
		plugin.WithOutputFs(f.out),
		plugin.WithMetrics(f.metrics),
		plugin.WithLogger(slog.New(slog.NewJSONHandler(f.logs, nil))),
	}
	inst, err := plugin.New(f.registry, append(base, opts...)...)
	require.NoError(t, err)
	f.installer = inst
	return f
}

func newRuntime(enabled bool) *patternlab.Runtime {
	return patternlab.NewRuntime(&patternlab.Config{
		ExtensionPath: testExtPath,
		Paths: patternlab.Paths{
			Public: patternlab.PublicPaths{Root: testPublicRoot},
		},
		Plugins: map[string]*patternlab.PluginConfig{
			plugin.ID: {Enabled: enabled},
		},
	})
}

func newPattern(name string) *patternlab.Pattern {
	return &patternlab.Pattern{
		Name:     name,
		Template: `{{if doubled}}doubled{{else}}plain{{end}}`,
		Engine:   &patternlab.EngineHolder{Engine: engine.NewHTML("html")},
	}
}
