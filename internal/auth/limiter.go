package auth

import (
	"context"
	"sync"
	"time"
)

// AttemptLimiter はクライアントごとのログイン失敗回数を管理します。
type AttemptLimiter interface {
	// Check はロック中なら残り時間を返します。ロックされていなければ 0 です。
	Check(ctx context.Context, key string) (time.Duration, error)
	// RecordFailure は失敗を1回記録し、ロックまでの残り回数を返します。
	RecordFailure(ctx context.Context, key string) (int, error)
	// Reset は失敗記録とロックを消します。
	Reset(ctx context.Context, key string) error
}

// Policy はロックの条件です。
type Policy struct {
	MaxAttempts  int
	Window       time.Duration
	LockDuration time.Duration
}

// DefaultPolicy は 15 分以内に 5 回失敗で 10 分ロックするポリシーです。
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  5,
		Window:       15 * time.Minute,
		LockDuration: 10 * time.Minute,
	}
}

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// MemoryLimiter はプロセス内のマップで失敗回数を保持します。
type MemoryLimiter struct {
	policy   Policy
	now      func() time.Time
	lock     sync.Mutex
	attempts map[string]*attemptState
}

// NewMemoryLimiter は MemoryLimiter を作成します。
func NewMemoryLimiter(policy Policy) *MemoryLimiter {
	return &MemoryLimiter{
		policy:   policy,
		now:      time.Now,
		attempts: make(map[string]*attemptState),
	}
}

func (l *MemoryLimiter) Check(_ context.Context, key string) (time.Duration, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	state, ok := l.attempts[key]
	if !ok {
		return 0, nil
	}
	now := l.now()
	if !now.Before(state.lockedUntil) {
		return 0, nil
	}
	return state.lockedUntil.Sub(now), nil
}

func (l *MemoryLimiter) RecordFailure(_ context.Context, key string) (int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	now := l.now()
	state, ok := l.attempts[key]
	if !ok || now.Sub(state.firstAttempt) > l.policy.Window {
		state = &attemptState{firstAttempt: now}
		l.attempts[key] = state
	}

	state.count++
	if state.count >= l.policy.MaxAttempts {
		state.lockedUntil = now.Add(l.policy.LockDuration)
		state.count = l.policy.MaxAttempts
	}

	remaining := l.policy.MaxAttempts - state.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	delete(l.attempts, key)
	return nil
}

// NoopLimiter は試行回数を数えません。ログイン試行制限を無効にするときに使います。
type NoopLimiter struct{}

func (NoopLimiter) Check(context.Context, string) (time.Duration, error) { return 0, nil }

func (NoopLimiter) RecordFailure(context.Context, string) (int, error) { return 0, nil }

func (NoopLimiter) Reset(context.Context, string) error { return nil }

var (
	_ AttemptLimiter = (*MemoryLimiter)(nil)
	_ AttemptLimiter = NoopLimiter{}
)
