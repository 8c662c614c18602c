package kernel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 5, BurstSize: 0})
	now := time.Now()
	for i := 0; i < 5; i++ {
		assert.True(t, r.Allow("client-1", now))
	}
}

func TestRateLimiterThrottlesOverBudget(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 2, BurstSize: 0})
	now := time.Now()
	assert.True(t, r.Allow("client-1", now))
	assert.True(t, r.Allow("client-1", now))
	assert.False(t, r.Allow("client-1", now))
}

func TestRateLimiterBurstAllowance(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 1, BurstSize: 2})
	now := time.Now()
	assert.True(t, r.Allow("client-1", now))
	assert.True(t, r.Allow("client-1", now))
	assert.True(t, r.Allow("client-1", now))
	assert.False(t, r.Allow("client-1", now))
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 1, BurstSize: 0})
	now := time.Now()
	assert.True(t, r.Allow("client-1", now))
	assert.True(t, r.Allow("client-2", now))
	assert.False(t, r.Allow("client-1", now))
}

func TestRateLimiterPerClientOverride(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 1, BurstSize: 0})
	r.SetClientLimit("client-1", RateLimitConfig{RequestsPerMinute: 10, BurstSize: 0})
	now := time.Now()
	for i := 0; i < 5; i++ {
		assert.True(t, r.Allow("client-1", now))
	}
}

func TestRateLimiterForgetResetsWindow(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 1, BurstSize: 0})
	now := time.Now()
	assert.True(t, r.Allow("client-1", now))
	assert.False(t, r.Allow("client-1", now))
	r.Forget("client-1")
	assert.True(t, r.Allow("client-1", now))
}
