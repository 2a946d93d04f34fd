package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/agrimarket/internal/config"
	"github.com/smallbiznis/agrimarket/internal/observability/metrics"
	"go.uber.org/zap"
)

const keyBookingCreate = "agrimarket:booking:create:%s"

var ErrRateLimited = errors.New("rate_limited")

// LimitError carries the wait before the next attempt may succeed.
type LimitError struct {
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter.Round(time.Second))
}

func (e *LimitError) Unwrap() error {
	return ErrRateLimited
}

// BookingLimiter throttles booking creation per farmer profile.
type BookingLimiter struct {
	bucket  *TokenBucket
	rate    float64
	burst   int
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewBookingLimiter returns nil when no redis client is configured. A nil
// limiter allows every request.
func NewBookingLimiter(client *redis.Client, cfg config.Config, log *zap.Logger, m *metrics.Metrics) *BookingLimiter {
	if client == nil || cfg.BookingRatePerMinute <= 0 || cfg.BookingBurst <= 0 {
		return nil
	}
	return &BookingLimiter{
		bucket:  NewTokenBucket(client),
		rate:    cfg.BookingRatePerMinute / 60,
		burst:   cfg.BookingBurst,
		log:     log.Named("ratelimit.booking"),
		metrics: m,
	}
}

// Allow fails open on redis errors so booking stays available when redis is down.
func (l *BookingLimiter) Allow(ctx context.Context, profileID string) error {
	if l == nil {
		return nil
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyBookingCreate, strings.TrimSpace(profileID)), l.rate, l.burst)
	if err != nil {
		l.log.Warn("booking rate limit check failed", zap.Error(err))
		return nil
	}
	if !res.Allowed {
		l.metrics.RecordRateLimitDenied(ctx, "bookings.create", "exhausted")
		return &LimitError{RetryAfter: res.RetryAfter}
	}
	l.metrics.RecordRateLimitAllowed(ctx, "bookings.create")
	return nil
}
