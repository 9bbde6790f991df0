package google

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_BackoffBlocksUntilExpiry(t *testing.T) {
	r := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 10})
	r.RecordRateLimitError(50 * time.Millisecond)

	start := time.Now()
	require.NoError(t, r.Wait(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	r := NewRateLimiter(APIReports)
	r.RecordRateLimitError(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
}

func TestRateLimiter_DefaultBackoff(t *testing.T) {
	r := NewRateLimiter(APIDirectory)
	r.RecordRateLimitError(0)

	assert.WithinDuration(t, time.Now().Add(DefaultBackoff), r.BackoffUntil(), time.Second)
}
