// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/spf13/afero"

	"github.com/patternlab/engine-extender/internal/observability"
	"github.com/patternlab/engine-extender/internal/plugin"
	pluginlua "github.com/patternlab/engine-extender/internal/plugin/lua"
	"github.com/patternlab/engine-extender/pkg/engine"
	"github.com/patternlab/engine-extender/pkg/patternlab"
)

const doubleExtension = `
return function(engine)
  return { doubled = function() return true end }
end
`

// testEnv is a project directory with one Lua extension.
type testEnv struct {
	ctx       context.Context
	root      string
	public    string
	loader    *pluginlua.Loader
	registry  *plugin.Registry
	installer *plugin.Installer
	metrics   *observability.Metrics
}

func setupTestEnv() (*testEnv, error) {
	root, err := os.MkdirTemp("", "engine-extender-test-*")
	if err != nil {
		return nil, err
	}

	env := &testEnv{
		ctx:      context.Background(),
		root:     root,
		public:   filepath.Join(root, "public"),
		loader:   pluginlua.NewLoader(),
		registry: plugin.NewRegistry(),
		metrics:  observability.NewMetrics(),
	}

	if err := os.MkdirAll(filepath.Join(root, "ext"), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(root, "ext", "double.lua"), []byte(doubleExtension), 0o600); err != nil {
		return nil, err
	}

	if err := env.registry.LoadFrom(env.ctx, env.loader, root, "ext/double.lua"); err != nil {
		return nil, err
	}

	env.installer, err = plugin.New(env.registry,
		plugin.WithOutputFs(afero.NewOsFs()),
		plugin.WithMetrics(env.metrics),
	)
	if err != nil {
		return nil, err
	}
	return env, nil
}

func (e *testEnv) cleanup() {
	_ = e.loader.Close()
	_ = os.RemoveAll(e.root)
}

func (e *testEnv) runtime(enabled bool) *patternlab.Runtime {
	return patternlab.NewRuntime(&patternlab.Config{
		ExtensionPath: "ext/double.lua",
		Paths:         patternlab.Paths{Public: patternlab.PublicPaths{Root: e.public}},
		Plugins: map[string]*patternlab.PluginConfig{
			plugin.ID: {Enabled: enabled},
		},
	})
}

func pattern(name string) *patternlab.Pattern {
	return &patternlab.Pattern{
		Name:     name,
		Template: `{{if doubled}}doubled{{else}}plain{{end}}`,
		Engine:   &patternlab.EngineHolder{Engine: engine.NewHTML("html")},
	}
}

var _ = Describe("Engine extender plugin", func() {
	var env *testEnv

	BeforeEach(func() {
		var err error
		env, err = setupTestEnv()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		env.cleanup()
	})

	Describe("installation", func() {
		It("publishes the descriptor and the bundled script", func() {
			rt := env.runtime(true)

			res, err := env.installer.Init(env.ctx, rt, &plugin.State{})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Outcome).To(Equal(plugin.OutcomeRegistered))

			data, err := os.ReadFile(plugin.DescriptorPath(env.public))
			Expect(err).NotTo(HaveOccurred())
			Expect(plugin.ValidateDescriptor(data)).To(Succeed())

			var d plugin.Descriptor
			Expect(json.Unmarshal(data, &d)).To(Succeed())
			Expect(d.Javascripts).To(ConsistOf(plugin.JavascriptPath()))

			Expect(filepath.Join(env.public, filepath.FromSlash(plugin.JavascriptPath()))).To(BeARegularFile())
			Expect(rt.Plugins).To(HaveLen(1))
		})

		It("registers the event callback once across repeated calls", func() {
			rt := env.runtime(true)
			st := &plugin.State{}

			for range 3 {
				_, err := env.installer.Init(env.ctx, rt, st)
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(st.Initialized).To(BeTrue())
			Expect(rt.Events.Listeners(patternlab.EventPatternIterationEnd)).To(Equal(1))
		})

		It("publishes but does not register when disabled", func() {
			rt := env.runtime(false)
			st := &plugin.State{}

			res, err := env.installer.Init(env.ctx, rt, st)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Outcome).To(Equal(plugin.OutcomeSkipped))
			Expect(plugin.DescriptorPath(env.public)).To(BeARegularFile())
			Expect(st.Initialized).To(BeFalse())
		})
	})

	Describe("pattern iteration", func() {
		It("wraps every pattern engine with the Lua extension", func() {
			rt := env.runtime(true)
			rt.Patterns = []*patternlab.Pattern{pattern("atoms-a"), pattern("atoms-b")}

			_, err := env.installer.Init(env.ctx, rt, &plugin.State{})
			Expect(err).NotTo(HaveOccurred())
			Expect(rt.Events.Emit(env.ctx, patternlab.EventPatternIterationEnd, rt)).To(Succeed())

			for _, p := range rt.Patterns {
				Expect(p.Engine.Engine.Funcs()).To(HaveKey("doubled"))
				Expect(p.Render()).To(Equal("doubled"))
			}
		})

		It("wraps again on every event", func() {
			rt := env.runtime(true)
			rt.Patterns = []*patternlab.Pattern{pattern("atoms-a")}

			_, err := env.installer.Init(env.ctx, rt, &plugin.State{})
			Expect(err).NotTo(HaveOccurred())

			Expect(rt.Events.Emit(env.ctx, patternlab.EventPatternIterationEnd, rt)).To(Succeed())
			Expect(rt.Events.Emit(env.ctx, patternlab.EventPatternIterationEnd, rt)).To(Succeed())

			Expect(engine.Depth(rt.Patterns[0].Engine.Engine)).To(Equal(2))
		})
	})
})
