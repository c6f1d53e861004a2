package main

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/250words/internal/auth"
	"github.com/yourusername/250words/internal/config"
)

// setupLimiter は LOGIN_REDIS_URL があれば Redis、なければメモリでログイン試行回数を管理します。
// LOGIN_MAX_ATTEMPTS が 0 のときは試行制限を行いません。
func setupLimiter(cfg *config.Config) (auth.AttemptLimiter, error) {
	if cfg.LoginMaxAttempts <= 0 {
		return auth.NoopLimiter{}, nil
	}

	policy := auth.DefaultPolicy()
	policy.MaxAttempts = cfg.LoginMaxAttempts

	if cfg.LoginRedisURL == "" {
		return auth.NewMemoryLimiter(policy), nil
	}

	opt, err := redis.ParseURL(cfg.LoginRedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	redisClient := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return auth.NewRedisLimiter(redisClient, policy), nil
}
