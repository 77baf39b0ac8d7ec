// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package errutil

import (
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestingT is the subset of *testing.T the assertions need.
type TestingT interface {
	require.TestingT
	Helper()
}

// AssertErrorCode fails the test unless err carries the given oops code.
// oops reports the innermost code of a wrapped chain.
func AssertErrorCode(t TestingT, err error, code string) {
	t.Helper()
	require.Error(t, err)
	got := Code(err)
	require.NotEmpty(t, got, "error has no oops code: %v", err)
	assert.Equal(t, code, got, "unexpected code for error: %v", err)
}

// AssertErrorContext fails the test unless the merged oops context of err
// holds value under key.
func AssertErrorContext(t TestingT, err error, key string, value any) {
	t.Helper()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	got, ok := oopsErr.Context()[key]
	if assert.True(t, ok, "context key %q missing from %v", key, oopsErr.Context()) {
		assert.Equal(t, value, got, "context key %q", key)
	}
}
