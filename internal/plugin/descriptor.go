// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package plugin

import "path"

// Identity of this plugin inside Pattern Lab.
const (
	// ID is the plugin id used for config lookup and output paths.
	ID = "plugin-node-engine-extender"
	// Namespace prefixes the descriptor name.
	Namespace = "pattern-lab"
	// ConfigKey is the host config key naming the extension.
	ConfigKey = "extensionPath"
)

// Output layout under the host's public root.
const (
	componentsDir = "patternlab-components"
	packagesDir   = "packages"
	assetsDir     = "pattern-lab"
)

// Descriptor describes the plugin to the host's frontend. It is written to
// patternlab-components/packages/<id>.json and appended to the host's plugin list.
type Descriptor struct {
	Name        string   `json:"name" jsonschema:"description=Namespaced plugin name"`
	Templates   []string `json:"templates" jsonschema:"description=Frontend templates contributed by the plugin"`
	Stylesheets []string `json:"stylesheets" jsonschema:"description=Stylesheets loaded by the styleguide"`
	Javascripts []string `json:"javascripts" jsonschema:"description=Scripts loaded by the styleguide,minItems=1"`
	Onready     string   `json:"onready" jsonschema:"description=Script evaluated when the styleguide is ready"`
	Callback    string   `json:"callback" jsonschema:"description=Script evaluated after the plugin loads"`
}

// FrontendDescriptor returns the descriptor for this plugin. Every call
// returns a fresh value.
func FrontendDescriptor() *Descriptor {
	return &Descriptor{
		Name:        Namespace + "/" + ID,
		Templates:   []string{},
		Stylesheets: []string{},
		Javascripts: []string{JavascriptPath()},
		Onready:     "",
		Callback:    "",
	}
}

// JavascriptPath is the frontend script path relative to the public root.
func JavascriptPath() string {
	return path.Join(componentsDir, assetsDir, ID, "js", ID+".js")
}
