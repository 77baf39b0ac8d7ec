// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package errutil_test

import (
	"errors"
	"fmt"
	"runtime"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/dumindu-Test/GradeMe/pkg/errutil"
)

// recorder captures assertion failures instead of failing the real test.
type recorder struct {
	failed bool
}

func (r *recorder) Helper() {}

func (r *recorder) Errorf(string, ...any) { r.failed = true }

func (r *recorder) FailNow() {
	r.failed = true
	runtime.Goexit()
}

func TestAssertErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     string
		wantFail bool
	}{
		{name: "matching", err: oops.Code("AUTH_EMAIL_TAKEN").Errorf("taken"), code: "AUTH_EMAIL_TAKEN"},
		{name: "innermost code wins", err: oops.Code("OUTER").Wrap(oops.Code("INNER").Errorf("x")), code: "INNER"},
		{name: "other code", err: oops.Code("A").Errorf("x"), code: "B", wantFail: true},
		{name: "no code", err: errors.New("plain"), code: "A", wantFail: true},
		{name: "nil", err: nil, code: "A", wantFail: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			runUntilStopped(r, func() { errutil.AssertErrorCode(r, tt.err, tt.code) })
			assert.Equal(t, tt.wantFail, r.failed)
		})
	}
}

func TestAssertErrorContext(t *testing.T) {
	err := oops.With("email", "a@example.com").Wrap(oops.With("user_id", "123").Errorf("x"))

	tests := []struct {
		name     string
		err      error
		key      string
		value    any
		wantFail bool
	}{
		{name: "outer key", err: err, key: "email", value: "a@example.com"},
		{name: "inner key", err: err, key: "user_id", value: "123"},
		{name: "wrong value", err: err, key: "user_id", value: "456", wantFail: true},
		{name: "missing key", err: err, key: "role", value: "admin", wantFail: true},
		{name: "not oops", err: fmt.Errorf("plain"), key: "email", value: "x", wantFail: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			runUntilStopped(r, func() { errutil.AssertErrorContext(r, tt.err, tt.key, tt.value) })
			assert.Equal(t, tt.wantFail, r.failed)
		})
	}
}

// runUntilStopped runs fn on its own goroutine so FailNow can Goexit.
func runUntilStopped(r *recorder, fn func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	<-done
}
