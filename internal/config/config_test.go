// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternlab/engine-extender/internal/config"
	"github.com/patternlab/engine-extender/internal/plugin"
	"github.com/patternlab/engine-extender/pkg/errutil"
	"github.com/patternlab/engine-extender/pkg/patternlab"
)

const sampleConfig = `
extensionPath: ext/double.lua
paths:
  public:
    root: dist/public
  source:
    patterns: src/patterns
plugins:
  plugin-node-engine-extender:
    enabled: true
    initialized: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patternlab-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_File(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, sampleConfig), newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "ext/double.lua", cfg.ExtensionPath)
	assert.Equal(t, "dist/public", cfg.Paths.Public.Root)
	assert.Equal(t, "src/patterns", cfg.Paths.Source.Patterns)
	require.Contains(t, cfg.Plugins, plugin.ID)
	assert.True(t, cfg.Plugins[plugin.ID].Enabled)
	assert.False(t, cfg.Plugins[plugin.ID].Initialized)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	fs := newFlags(t, "--extension-path=ext/other.lua", "--public-root=out")

	cfg, err := config.Load(writeConfig(t, sampleConfig), fs)
	require.NoError(t, err)

	assert.Equal(t, "ext/other.lua", cfg.ExtensionPath)
	assert.Equal(t, "out", cfg.Paths.Public.Root)
	assert.Equal(t, "src/patterns", cfg.Paths.Source.Patterns, "unchanged flags keep file values")
	assert.True(t, cfg.Plugins[plugin.ID].Enabled)
}

func TestLoad_FlagsOnly(t *testing.T) {
	cfg, err := config.Load("", newFlags(t, "--extension-path=ext/a.lua", "--enable"))
	require.NoError(t, err)

	assert.Equal(t, "ext/a.lua", cfg.ExtensionPath)
	assert.Equal(t, config.DefaultPublicRoot, cfg.Paths.Public.Root)
	assert.Equal(t, config.DefaultPatterns, cfg.Paths.Source.Patterns)
	require.Contains(t, cfg.Plugins, plugin.ID)
	assert.True(t, cfg.Plugins[plugin.ID].Enabled)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Empty(t, cfg.ExtensionPath)
	assert.Equal(t, config.DefaultPublicRoot, cfg.Paths.Public.Root)
	assert.Equal(t, config.DefaultPatterns, cfg.Paths.Source.Patterns)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, config.CodeLoadFailed)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := config.Load(writeConfig(t, "extensionPath: [unclosed"), nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, config.CodeLoadFailed)
}

func TestMarshal_RoundTripsThroughLoad(t *testing.T) {
	in := &patternlab.Config{
		ExtensionPath: "ext/double.lua",
		Paths: patternlab.Paths{
			Public: patternlab.PublicPaths{Root: "pub"},
			Source: patternlab.SourcePaths{Patterns: "pat"},
		},
		Plugins: map[string]*patternlab.PluginConfig{plugin.ID: {Enabled: true}},
	}

	data, err := config.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), "extensionPath: ext/double.lua")

	out, err := config.Load(writeConfig(t, string(data)), nil)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
