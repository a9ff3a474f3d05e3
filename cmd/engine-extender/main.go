// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

// Command engine-extender installs the engine extender plugin into a Pattern
// Lab project and renders its patterns through the extended engines.
package main

import (
	"fmt"
	"os"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
