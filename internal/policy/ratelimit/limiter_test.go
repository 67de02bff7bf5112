package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWait_UnlimitedNeverBlocks(t *testing.T) {
	t.Parallel()

	l := New(Config{PerHostRPS: 0})
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background(), "https://example.com"))
	}
	require.Less(t, time.Since(start), time.Second)
}

func TestWait_ThrottlesPerHost(t *testing.T) {
	t.Parallel()

	l := New(Config{PerHostRPS: 10, Burst: 1})

	start := time.Now()
	require.NoError(t, l.Wait(context.Background(), "https://a.test/page"))
	require.NoError(t, l.Wait(context.Background(), "https://a.test/other"))
	elapsed := time.Since(start)

	// The second token for the same host waits roughly 1/rps.
	require.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
}

func TestWait_HostsAreIndependent(t *testing.T) {
	t.Parallel()

	l := New(Config{PerHostRPS: 1, Burst: 1})

	start := time.Now()
	require.NoError(t, l.Wait(context.Background(), "https://a.test"))
	require.NoError(t, l.Wait(context.Background(), "https://b.test"))
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWait_CanceledContext(t *testing.T) {
	t.Parallel()

	l := New(Config{PerHostRPS: 0.001, Burst: 1})
	require.NoError(t, l.Wait(context.Background(), "https://a.test"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, l.Wait(ctx, "https://a.test"))
}

func TestWait_UnparseableURLUsesFallbackBucket(t *testing.T) {
	t.Parallel()

	l := New(Config{PerHostRPS: 100, Burst: 1})
	require.NoError(t, l.Wait(context.Background(), "://not-a-url"))
}
