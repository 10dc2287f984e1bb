package api

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("backend down")

func testBreaker(openTimeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker(BreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      openTimeout,
	})
}

func fail() error { return errDown }
func ok() error   { return nil }

func TestBreakerStartsClosed(t *testing.T) {
	cb := testBreaker(time.Minute)
	assert.Equal(t, BreakerClosed, cb.State())
	assert.NoError(t, cb.Execute(ok))
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	cb := testBreaker(time.Minute)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(fail), errDown)
	}
	assert.Equal(t, BreakerOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(ok), ErrCircuitOpen)
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := testBreaker(time.Minute)

	require.ErrorIs(t, cb.Execute(fail), errDown)
	require.ErrorIs(t, cb.Execute(fail), errDown)
	require.NoError(t, cb.Execute(ok))
	require.ErrorIs(t, cb.Execute(fail), errDown)
	require.ErrorIs(t, cb.Execute(fail), errDown)

	assert.Equal(t, BreakerClosed, cb.State())
}

func TestBreakerProbesAfterOpenTimeout(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, cb.Execute(fail), errDown)
	}
	require.Equal(t, BreakerOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, BreakerHalfOpen, cb.State())
}

func TestBreakerClosesAfterSuccessfulProbes(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, cb.Execute(fail), errDown)
	}
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, BreakerHalfOpen, cb.State())
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, cb.Execute(fail), errDown)
	}
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, BreakerHalfOpen, cb.State())

	require.ErrorIs(t, cb.Execute(fail), errDown)
	assert.Equal(t, BreakerOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(ok), ErrCircuitOpen)
}

func TestBreakerStateString(t *testing.T) {
	assert.Equal(t, "closed", BreakerClosed.String())
	assert.Equal(t, "open", BreakerOpen.String())
	assert.Equal(t, "half-open", BreakerHalfOpen.String())
}
