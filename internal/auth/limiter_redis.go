package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	failKeyPrefix = "login:fail:"
	lockKeyPrefix = "login:lock:"
)

// RedisLimiter は失敗回数とロックを Redis に保存します。複数プロセスで共有できます。
type RedisLimiter struct {
	rdb    *redis.Client
	policy Policy
}

// NewRedisLimiter は RedisLimiter を作成します。
func NewRedisLimiter(rdb *redis.Client, policy Policy) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		policy: policy,
	}
}

func (l *RedisLimiter) Check(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := l.rdb.PTTL(ctx, lockKey(key)).Result()
	if err != nil {
		return 0, err
	}
	// キーなし(-2)・期限なし(-1) はロックしていない扱い
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

func (l *RedisLimiter) RecordFailure(ctx context.Context, key string) (int, error) {
	count, err := l.rdb.Incr(ctx, failKey(key)).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, failKey(key), l.policy.Window).Err(); err != nil {
			return 0, err
		}
	}

	if count >= int64(l.policy.MaxAttempts) {
		if err := l.rdb.Set(ctx, lockKey(key), count, l.policy.LockDuration).Err(); err != nil {
			return 0, err
		}
		return 0, nil
	}
	return l.policy.MaxAttempts - int(count), nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	tx := l.rdb.TxPipeline()
	tx.Del(ctx, failKey(key))
	tx.Del(ctx, lockKey(key))
	_, err := tx.Exec(ctx)
	return err
}

func failKey(key string) string {
	return failKeyPrefix + key
}

func lockKey(key string) string {
	return lockKeyPrefix + key
}

var _ AttemptLimiter = (*RedisLimiter)(nil)
