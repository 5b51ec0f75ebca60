package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failingCB(t *testing.T, cfg CircuitBreakerConfig, failures int) *CircuitBreaker {
	t.Helper()
	cb := NewCircuitBreaker(cfg)
	for i := 0; i < failures; i++ {
		_ = cb.Execute(func() error { return errBoom })
	}
	return cb
}

func TestCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	cfg := CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, OpenTimeout: time.Minute}
	cb := failingCB(t, cfg, 2)
	assert.Equal(t, CBClosed, cb.State(), "below threshold stays closed")

	_ = cb.Execute(func() error { return errBoom })
	assert.Equal(t, CBOpen, cb.State())

	// Open breaker fast-fails without invoking fn.
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cfg := CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, OpenTimeout: time.Minute}
	cb := failingCB(t, cfg, 2)
	require.NoError(t, cb.Execute(func() error { return nil }))

	// The earlier failures no longer count toward the threshold.
	_ = cb.Execute(func() error { return errBoom })
	_ = cb.Execute(func() error { return errBoom })
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cfg := CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: 10 * time.Millisecond}
	cb := failingCB(t, cfg, 1)
	require.Equal(t, CBOpen, cb.State())

	time.Sleep(15 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())

	// One success is not enough to close with SuccessThreshold=2.
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cfg := CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, OpenTimeout: 10 * time.Millisecond}
	cb := failingCB(t, cfg, 1)

	time.Sleep(15 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	_ = cb.Execute(func() error { return errBoom })
	assert.Equal(t, CBOpen, cb.State())
}
