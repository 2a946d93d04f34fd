package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const jobLeasePrefix = "agrimarket:job-lease:"

// Deletes the lease only while the caller still owns it. A lease that expired
// and was taken over by another replica stays in place.
var dropOwnedLease = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

var ErrLeaseStoreMissing = errors.New("job lease store not configured")

// JobLeases hands out expiring per-job leases so a scheduled job runs on one
// replica at a time.
type JobLeases struct {
	client *redis.Client
}

func NewJobLeases(client *redis.Client) *JobLeases {
	if client == nil {
		return nil
	}
	return &JobLeases{client: client}
}

// Acquire claims the lease for job. A nil release and false mean another
// replica currently holds it.
func (l *JobLeases) Acquire(ctx context.Context, job string, ttl time.Duration) (func(context.Context) error, bool, error) {
	if l == nil || l.client == nil {
		return nil, false, ErrLeaseStoreMissing
	}
	key, err := leaseKey(job)
	if err != nil {
		return nil, false, err
	}
	if ttl <= 0 {
		return nil, false, fmt.Errorf("job lease %s: ttl must be positive", job)
	}

	owner := uuid.NewString()
	claimed, err := l.client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("job lease %s: %w", job, err)
	}
	if !claimed {
		return nil, false, nil
	}
	release := func(ctx context.Context) error {
		return dropOwnedLease.Run(ctx, l.client, []string{key}, owner).Err()
	}
	return release, true, nil
}

func leaseKey(job string) (string, error) {
	job = strings.ToLower(strings.TrimSpace(job))
	if job == "" {
		return "", errors.New("job lease: empty job name")
	}
	return jobLeasePrefix + job, nil
}
