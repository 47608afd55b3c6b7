package security

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Redis key patterns
const (
	contactLedgerPrefix = "rl:contact:"
)

// RedisLedger is a Ledger shared by every instance pointing at the same Redis.
// SET NX PX makes check-and-record a single atomic step and lets Redis expire
// entries, so no purge pass is required.
type RedisLedger struct {
	client *goredis.Client
	window time.Duration
}

// NewRedisLedger creates a Redis-backed ledger
func NewRedisLedger(client *goredis.Client, window time.Duration) *RedisLedger {
	if window <= 0 {
		window = DefaultLedgerWindow
	}
	return &RedisLedger{client: client, window: window}
}

// Allow implements Ledger
func (l *RedisLedger) Allow(ctx context.Context, identity string) (bool, error) {
	ok, err := l.client.SetNX(ctx, contactLedgerPrefix+HashValue(identity), time.Now().UnixMilli(), l.window).Result()
	if err != nil {
		return false, fmt.Errorf("redis ledger setnx failed: %w", err)
	}
	return ok, nil
}

// Ping reports whether Redis is reachable
func (l *RedisLedger) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
