package client

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errTestPermanent = errors.New("permanent")

// TestRetry_StopsOnSuccess retries unavailable errors until an attempt succeeds.
func TestRetry_StopsOnSuccess(t *testing.T) {
	t.Parallel()

	attempts := 0

	err := retry(context.Background(), true, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return status.Error(codes.Unavailable, "down")
		}

		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

// TestRetry_NoWait returns the first error when waiting is disabled.
func TestRetry_NoWait(t *testing.T) {
	t.Parallel()

	attempts := 0

	err := retry(context.Background(), false, time.Millisecond, func() error {
		attempts++

		return status.Error(codes.Unavailable, "down")
	})

	require.Equal(t, codes.Unavailable, status.Code(err))
	require.Equal(t, 1, attempts)
}

// TestRetry_PermanentError does not retry errors other than unavailable.
func TestRetry_PermanentError(t *testing.T) {
	t.Parallel()

	attempts := 0

	err := retry(context.Background(), true, time.Millisecond, func() error {
		attempts++

		return errTestPermanent
	})

	require.ErrorIs(t, err, errTestPermanent)
	require.Equal(t, 1, attempts)
}

// TestRetry_Canceled gives up when the context ends.
func TestRetry_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry(ctx, true, time.Hour, func() error {
		return status.Error(codes.Unavailable, "down")
	})

	require.ErrorIs(t, err, context.Canceled)
}

// TestPrintStatus renders fields in key order.
func TestPrintStatus(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	require.NoError(t, PrintStatus(&out, map[string]any{
		"lux":         nil,
		"guard_state": "armed",
		"alarm_hour":  float64(7),
		"fan_on":      true,
		"fan_timeout": 312.5,
	}))

	require.Equal(t,
		"alarm_hour: 7\nfan_on: true\nfan_timeout: 312.50\nguard_state: armed\nlux: -\n",
		out.String())
}
