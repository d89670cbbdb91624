package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter paces the pipeline's requests. Wait blocks for a randomized delay
// within the configured range; Pause blocks for a fixed duration. Both honor
// context cancellation.
type Limiter interface {
	Wait(ctx context.Context) error
	Pause(ctx context.Context, d time.Duration) error
}

// JitterLimiter sleeps a random duration in [min, max] on every Wait. The
// jitter prevents lock-step request patterns that trigger anti-bot
// throttling.
type JitterLimiter struct {
	minDelay time.Duration
	maxDelay time.Duration
	mu       sync.Mutex
	rng      *rand.Rand
}

func NewJitterLimiter(minDelay, maxDelay time.Duration) *JitterLimiter {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &JitterLimiter{
		minDelay: minDelay,
		maxDelay: maxDelay,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (l *JitterLimiter) Wait(ctx context.Context) error {
	return l.Pause(ctx, l.delay())
}

func (l *JitterLimiter) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (l *JitterLimiter) delay() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.maxDelay == l.minDelay {
		return l.minDelay
	}

	return l.minDelay + time.Duration(l.rng.Int63n(int64(l.maxDelay-l.minDelay)))
}

// Nop is a zero-delay limiter so the harvest and enrichment state machines
// can be exercised in tests without sleeping.
type Nop struct{}

func (Nop) Wait(ctx context.Context) error { return ctx.Err() }

func (Nop) Pause(ctx context.Context, _ time.Duration) error { return ctx.Err() }
