package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MontelAle/participium-sub002/domain"
)

// RedisIssueThrottle implements domain.IssueThrottle with a per-key Redis
// TTL. While the key lives, no new code may be issued for that subject.
type RedisIssueThrottle struct {
	client *redis.Client
	prefix string
	window time.Duration
}

// NewIssueThrottle creates a Redis-backed issue throttle.
func NewIssueThrottle(client *redis.Client, window time.Duration) domain.IssueThrottle {
	return &RedisIssueThrottle{
		client: client,
		prefix: "issue:res:",
		window: window,
	}
}

// CanIssue implements domain.IssueThrottle.
func (t *RedisIssueThrottle) CanIssue(ctx context.Context, key string) (bool, int64, error) {
	ttl, err := t.client.TTL(ctx, t.prefix+key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check throttle TTL: %w", err)
	}
	if ttl <= 0 {
		return true, 0, nil
	}
	return false, int64(ttl.Seconds()), nil
}

// MarkIssued implements domain.IssueThrottle.
func (t *RedisIssueThrottle) MarkIssued(ctx context.Context, key string) error {
	return t.client.Set(ctx, t.prefix+key, 1, t.window).Err()
}
