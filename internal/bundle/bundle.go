// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

// Package bundle embeds the plugin's prebuilt frontend assets.
package bundle

import (
	"embed"
	"io/fs"
)

//go:embed all:dist
var files embed.FS

// FS returns the bundled asset tree. Paths are rooted at "dist".
func FS() fs.FS {
	return files
}
