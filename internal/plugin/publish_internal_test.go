// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripBundleDir(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dist/js/a.js", "js/a.js"},
		{"dist/a.js", "a.js"},
		{"js/dist/a.js", "js/a.js"},
		{"dist/dist/a.js", "dist/a.js"},
		{"distro/a.js", "distro/a.js"},
		{"js/a.js", "js/a.js"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, stripBundleDir(tt.in))
		})
	}
}
