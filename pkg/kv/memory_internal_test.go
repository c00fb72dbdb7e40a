package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemorySweepsUnreadKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	m := NewMemory(WithClock(func() time.Time { return now }))

	// One counter per address, none of them read again.
	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, err := m.IncrWithExpiry(ctx, "ratelimit:logs:admin:"+ip, time.Second*30)
		require.NoError(t, err)
	}
	require.NoError(t, m.Set(ctx, "login:lock:10.0.0.9", "1", 5*time.Minute))
	require.Len(t, m.data, 4)

	// Expired but the interval has not passed: nothing is scanned yet.
	now = now.Add(40 * time.Second)
	require.NoError(t, m.Set(ctx, "other", "x", 0))
	require.Len(t, m.data, 5)

	now = now.Add(DefaultSweepInterval)
	require.NoError(t, m.Set(ctx, "other", "y", 0))
	require.Len(t, m.data, 2)
	require.Contains(t, m.data, "login:lock:10.0.0.9")
	require.Contains(t, m.data, "other")
}

func TestMemorySweepInterval(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	m := NewMemory(WithClock(func() time.Time { return now }), WithSweepInterval(time.Second))

	_, err := m.IncrWithExpiry(ctx, "login:attempts:10.0.0.1", time.Second)
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = m.IncrWithExpiry(ctx, "login:attempts:10.0.0.2", time.Minute)
	require.NoError(t, err)
	require.Len(t, m.data, 1)
}
