package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream down")

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestBreaker(t *testing.T, cfg *Config) (*circuitBreaker, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return newCircuitBreaker(cfg, c.now), c
}

func fail() error    { return errUpstream }
func succeed() error { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(t, &Config{FailureThreshold: 3, RecoveryTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Call(fail), errUpstream)
	}
	assert.Equal(t, Open, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb, _ := newTestBreaker(t, &Config{FailureThreshold: 2})

	_ = cb.Call(fail)
	require.NoError(t, cb.Call(succeed))
	_ = cb.Call(fail)

	assert.Equal(t, Closed, cb.State())
	assert.Equal(t, 1, cb.Snapshot().Failures)
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb, c := newTestBreaker(t, &Config{FailureThreshold: 1, RecoveryTimeout: 30 * time.Second, SuccessThreshold: 2})

	_ = cb.Call(fail)
	require.Equal(t, Open, cb.State())

	c.t = c.t.Add(30 * time.Second)
	require.NoError(t, cb.Call(succeed))
	assert.Equal(t, HalfOpen, cb.State())

	require.NoError(t, cb.Call(succeed))
	assert.Equal(t, Closed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, c := newTestBreaker(t, &Config{FailureThreshold: 1, RecoveryTimeout: 10 * time.Second})

	_ = cb.Call(fail)
	c.t = c.t.Add(10 * time.Second)
	_ = cb.Call(fail)

	snap := cb.Snapshot()
	assert.Equal(t, Open, snap.State)
	assert.Equal(t, c.t.Add(10*time.Second), snap.NextAttempt)
}

func TestCircuitBreaker_CancellationDoesNotCount(t *testing.T) {
	cb, _ := newTestBreaker(t, &Config{FailureThreshold: 1})

	err := cb.Call(func() error { return fmt.Errorf("lookup: %w", context.Canceled) })

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Closed, cb.State())
}

func TestCircuitBreaker_ReportsTransitions(t *testing.T) {
	var seen []string
	cb, c := newTestBreaker(t, &Config{
		Name:             "ip-lookup",
		FailureThreshold: 1,
		RecoveryTimeout:  time.Second,
		OnStateChange: func(name string, from, to State) {
			seen = append(seen, name+":"+from.String()+"->"+to.String())
		},
	})

	_ = cb.Call(fail)
	c.t = c.t.Add(time.Second)
	_ = cb.Call(succeed)
	cb.Reset()

	assert.Equal(t, []string{
		"ip-lookup:closed->open",
		"ip-lookup:open->half_open",
		"ip-lookup:half_open->closed",
	}, seen)
}
