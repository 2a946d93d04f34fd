package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/agrimarket/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNilBookingLimiterAllows(t *testing.T) {
	limiter := NewBookingLimiter(nil, config.Config{BookingRatePerMinute: 1, BookingBurst: 1}, zap.NewNop(), nil)
	assert.Nil(t, limiter)
	assert.NoError(t, limiter.Allow(context.Background(), "p-1"))
}

func TestLimitErrorUnwrapsToSentinel(t *testing.T) {
	var err error = &LimitError{RetryAfter: 1500 * time.Millisecond}
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Contains(t, err.Error(), "2s")
}

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, time.Second, bucketTTL(0, 5))
	assert.Equal(t, 10*time.Second, bucketTTL(1, 5))
	assert.Equal(t, time.Second, bucketTTL(100, 1))
}

func TestScriptReplyConversion(t *testing.T) {
	assert.EqualValues(t, 1, toInt(int64(1)))
	assert.EqualValues(t, 3, toInt("3"))
	assert.InDelta(t, 0.25, toFloat("0.25"), 1e-9)
	assert.InDelta(t, 2, toFloat(int64(2)), 1e-9)
	assert.Zero(t, toFloat(nil))
}

func TestNilJobLeasesRefuse(t *testing.T) {
	assert.Nil(t, NewJobLeases(nil))

	var leases *JobLeases
	release, ok, err := leases.Acquire(context.Background(), "reconcile", time.Second)
	assert.Nil(t, release)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrLeaseStoreMissing)
}

func TestJobLeaseKey(t *testing.T) {
	key, err := leaseKey(" Reconcile_Bulk_Purchases ")
	assert.NoError(t, err)
	assert.Equal(t, "agrimarket:job-lease:reconcile_bulk_purchases", key)

	_, err = leaseKey("  ")
	assert.Error(t, err)
}

func TestJobLeasesRejectBadInputBeforeRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })
	leases := NewJobLeases(client)

	_, _, err := leases.Acquire(context.Background(), "", time.Second)
	assert.ErrorContains(t, err, "empty job name")

	_, _, err = leases.Acquire(context.Background(), "reconcile", 0)
	assert.ErrorContains(t, err, "ttl must be positive")

	_, ok, err := leases.Acquire(context.Background(), "reconcile", time.Second)
	assert.False(t, ok)
	assert.ErrorContains(t, err, "job lease reconcile")
}
