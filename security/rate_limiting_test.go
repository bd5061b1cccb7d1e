package security

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow_UnderLimit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db, 3, time.Minute)

	mock.ExpectIncr("ratelimit:checkout:1.2.3.4").SetVal(1)
	mock.ExpectExpire("ratelimit:checkout:1.2.3.4", time.Minute).SetVal(true)

	assert.True(t, limiter.Allow(context.Background(), "ratelimit:checkout:1.2.3.4"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_Allow_OverLimit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db, 3, time.Minute)

	mock.ExpectIncr("ratelimit:checkout:1.2.3.4").SetVal(4)

	assert.False(t, limiter.Allow(context.Background(), "ratelimit:checkout:1.2.3.4"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_Allow_FailsOpenOnRedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db, 3, time.Minute)

	mock.ExpectIncr("ratelimit:checkout:1.2.3.4").SetErr(assert.AnError)

	assert.True(t, limiter.Allow(context.Background(), "ratelimit:checkout:1.2.3.4"))
}

func TestIsSuspiciousUserAgent(t *testing.T) {
	assert.True(t, IsSuspiciousUserAgent("Googlebot/2.1"))
	assert.True(t, IsSuspiciousUserAgent("my-Crawler"))
	assert.False(t, IsSuspiciousUserAgent("Mozilla/5.0"))
	assert.False(t, IsSuspiciousUserAgent(""))
}
