package demo

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, max int, ttl time.Duration) (*Registry, *time.Time) {
	t.Helper()

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	r := NewRegistry(RegistryConfig{
		MaxSessions: max,
		SessionTTL:  ttl,
		Timings:     DefaultTimings(),
		Delayer:     &instantDelayer{},
	}, prometheus.NewRegistry())
	r.now = func() time.Time { return now }
	t.Cleanup(r.Shutdown)

	return r, &now
}

func TestRegistry_CreateAndGet(t *testing.T) {
	r, _ := newTestRegistry(t, 10, time.Minute)

	session, err := r.Create()
	require.NoError(t, err)
	assert.Len(t, session.ID, 36)

	got, err := r.Get(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.active))
}

func TestRegistry_EnforcesLimit(t *testing.T) {
	r, _ := newTestRegistry(t, 2, time.Minute)

	_, err := r.Create()
	require.NoError(t, err)
	_, err = r.Create()
	require.NoError(t, err)

	_, err = r.Create()
	assert.ErrorIs(t, err, ErrTooManySessions)
}

func TestRegistry_ExpiresIdleSessions(t *testing.T) {
	r, now := newTestRegistry(t, 1, time.Minute)

	session, err := r.Create()
	require.NoError(t, err)

	*now = now.Add(30 * time.Second)
	_, err = r.Get(session.ID)
	require.NoError(t, err, "access within the TTL keeps the session alive")

	*now = now.Add(61 * time.Second)
	_, err = r.Create()
	require.NoError(t, err, "the idle session is swept to make room")

	_, err = r.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, session.Context().Err(), context.Canceled)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Shutdown(t *testing.T) {
	r, _ := newTestRegistry(t, 5, time.Minute)

	session, err := r.Create()
	require.NoError(t, err)

	r.Shutdown()

	assert.Zero(t, r.Len())
	assert.Error(t, session.Context().Err())
	assert.ErrorIs(t, session.Sequencer.Start(context.Background()), ErrClosed)

	_, err = r.Create()
	assert.ErrorIs(t, err, ErrRegistryShutdown)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.active))
}
