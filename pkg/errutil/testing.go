// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package errutil

import (
	"slices"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustOops(t *testing.T, err error) oops.OopsError {
	t.Helper()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T: %v", err, err)
	return oopsErr
}

// AssertErrorCode asserts that the deepest code in err's oops chain equals
// code. Codes are compared as oops stores them, so untyped string constants
// and typed codes both work.
func AssertErrorCode(t *testing.T, err error, code any) {
	t.Helper()
	assert.Equal(t, code, mustOops(t, err).Code(), "error: %v", err)
}

// AssertErrorContext asserts that err's merged oops context carries key with
// value. A missing key fails with the keys that are present.
func AssertErrorContext(t *testing.T, err error, key string, value any) {
	t.Helper()
	ctx := mustOops(t, err).Context()
	got, ok := ctx[key]
	if !ok {
		keys := make([]string, 0, len(ctx))
		for k := range ctx {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		assert.Failf(t, "missing error context", "key %q not in %v", key, keys)
		return
	}
	assert.Equal(t, value, got, "context key %q", key)
}

// AssertErrorHint asserts the hint attached to err's oops chain.
func AssertErrorHint(t *testing.T, err error, hint string) {
	t.Helper()
	assert.Equal(t, hint, mustOops(t, err).Hint())
}
