// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

// Package patternlab models the host build tool's runtime object: the
// configuration, the pattern list, the registered plugin descriptors and the
// lifecycle event bus that plugins subscribe to.
//
// The host owns a Runtime; plugins receive it on initialization and on every
// lifecycle event and may mutate it in place.
package patternlab

import "github.com/patternlab/engine-extender/pkg/engine"

// Config is the host configuration visible to plugins.
type Config struct {
	ExtensionPath string                   `koanf:"extensionPath" yaml:"extensionPath"`
	Paths         Paths                    `koanf:"paths" yaml:"paths"`
	Plugins       map[string]*PluginConfig `koanf:"plugins" yaml:"plugins"`
}

// Paths groups the host's filesystem locations.
type Paths struct {
	Public PublicPaths `koanf:"public" yaml:"public"`
	Source SourcePaths `koanf:"source" yaml:"source"`
}

// PublicPaths are output locations.
type PublicPaths struct {
	Root string `koanf:"root" yaml:"root"`
}

// SourcePaths are input locations.
type SourcePaths struct {
	Patterns string `koanf:"patterns" yaml:"patterns"`
}

// PluginConfig is the per-plugin section of the host configuration.
type PluginConfig struct {
	Enabled     bool `koanf:"enabled" yaml:"enabled"`
	Initialized bool `koanf:"initialized" yaml:"initialized"`
}

// Pattern is one templated UI unit tracked by the host.
type Pattern struct {
	Name     string
	Template string
	Data     map[string]any
	Engine   *EngineHolder
}

// EngineHolder holds the swappable engine instance of a pattern.
type EngineHolder struct {
	Engine engine.Engine
}

// Render renders the pattern through its current engine.
func (p *Pattern) Render() (string, error) {
	return p.Engine.Engine.Render(p.Template, p.Data)
}

// Runtime is the host runtime object handed to plugins.
type Runtime struct {
	Config   *Config
	Patterns []*Pattern
	// Plugins lists the descriptors registered by plugins, in registration order.
	Plugins []any
	Events  *Events
}

// NewRuntime creates a runtime with an empty event bus.
func NewRuntime(cfg *Config) *Runtime {
	return &Runtime{
		Config: cfg,
		Events: NewEvents(),
	}
}
