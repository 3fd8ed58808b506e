// AngelaMos | 2026
// ratelimit_internal_test.go

package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBucketsFollowNamedLimit(t *testing.T) {
	b := newLocalBuckets(PerWindow(6, 2, time.Minute), time.Minute)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	first := b.allow("login:ip:10.0.0.1", now)
	assert.Equal(t, 1, first.Allowed)
	assert.Equal(t, 1, first.Remaining)
	assert.Equal(t, PerWindow(6, 2, time.Minute), first.Limit)

	assert.Equal(t, 1, b.allow("login:ip:10.0.0.1", now).Allowed)

	denied := b.allow("login:ip:10.0.0.1", now)
	require.Equal(t, 0, denied.Allowed)
	assert.Equal(t, 0, denied.Remaining)
	assert.Equal(t, 10*time.Second, denied.RetryAfter)
	assert.Equal(t, 20*time.Second, denied.ResetAfter)

	assert.Equal(t, 1, b.allow("login:ip:10.0.0.2", now).Allowed)
	assert.Equal(t, 1, b.allow("login:ip:10.0.0.1", now.Add(10*time.Second)).Allowed)
}

func TestLocalBucketsSweepIdleKeys(t *testing.T) {
	b := newLocalBuckets(PerMinute(60, 10), time.Minute)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	b.allow("a", now)
	b.allow("b", now.Add(30*time.Second))
	assert.Equal(t, 2, b.size())

	b.allow("c", now.Add(61*time.Second))
	assert.Equal(t, 2, b.size(), "a idled past the ttl")

	b.allow("d", now.Add(90*time.Second))
	assert.Equal(t, 3, b.size(), "sweeps run at most once per ttl")

	b.allow("c", now.Add(2*time.Minute+2*time.Second))
	assert.Equal(t, 2, b.size())
}

func TestNewRateLimiterDefaultsLocalIdleTTL(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Limit: PerMinute(1, 1)})
	assert.Equal(t, defaultLocalIdleTTL, rl.local.idleTTL)
	assert.Equal(t, "global", rl.config.Name)

	rl = NewRateLimiter(nil, RateLimitConfig{Limit: PerMinute(1, 1), LocalIdleTTL: time.Second})
	assert.Equal(t, time.Second, rl.local.idleTTL)
}
