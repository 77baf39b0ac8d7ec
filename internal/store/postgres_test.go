// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumindu-Test/GradeMe/pkg/errutil"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(_ context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWaitForPing(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		attempts  uint64
		wantErr   bool
		wantCalls int
	}{
		{"ready on first ping", 0, 3, false, 1},
		{"ready after retries", 2, 3, false, 3},
		{"never ready", 5, 3, true, 3},
		{"single attempt", 1, 1, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &flakyPinger{failures: tt.failures}
			err := waitForPing(context.Background(), p, ConnectOptions{
				Attempts:  tt.attempts,
				BaseDelay: time.Millisecond,
			})
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "DB_CONNECT_FAILED")
				assert.Contains(t, err.Error(), "connection refused")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, p.calls)
		})
	}
}

func TestWaitForPing_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &flakyPinger{failures: 100}
	err := waitForPing(ctx, p, ConnectOptions{Attempts: 10, BaseDelay: time.Second})
	require.Error(t, err)
	assert.LessOrEqual(t, p.calls, 1)
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "://not a url", ConnectOptions{Attempts: 1})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "DB_CONFIG_INVALID")
}
