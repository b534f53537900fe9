package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SubmissionGuard claims idempotency keys in Redis so a repeated form
// submission is recognised.
// Key format: dedup:<key>
type SubmissionGuard struct {
	client *redis.Client
}

func NewSubmissionGuard(client *redis.Client) *SubmissionGuard {
	return &SubmissionGuard{client: client}
}

// Claim returns true the first time key is seen within ttl.
func (g *SubmissionGuard) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, dedupKey(key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return ok, nil
}

func dedupKey(key string) string { return "dedup:" + key }
