package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucketEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Bucket is a per-key token-bucket limiter used for the global
// per-client-address limit. Idle keys are evicted by a janitor goroutine so
// the map does not grow without bound under address churn.
type Bucket struct {
	mu      sync.Mutex
	entries map[string]*bucketEntry

	rps   rate.Limit
	burst int

	idleTTL      time.Duration
	cleanupEvery time.Duration
}

func NewBucket(rps float64, burst int) *Bucket {
	return &Bucket{
		entries:      make(map[string]*bucketEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
}

func (b *Bucket) limiter(key string) *rate.Limiter {
	now := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	if ent, ok := b.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}
	lim := rate.NewLimiter(b.rps, b.burst)
	b.entries[key] = &bucketEntry{lim: lim, lastSeen: now}
	return lim
}

// Allow implements Limiter. Remaining is the approximate token count; the
// retry hint is the refill interval for one token.
func (b *Bucket) Allow(_ context.Context, key string) (bool, Info) {
	lim := b.limiter(key)
	allowed := lim.Allow()

	tokens := int(lim.Tokens())
	if tokens < 0 {
		tokens = 0
	}
	info := Info{
		Limit:     b.burst,
		Remaining: tokens,
		ResetAt:   time.Now().Add(time.Duration(float64(b.burst-tokens) / float64(b.rps) * float64(time.Second))),
	}
	if !allowed {
		info.RetryAfter = time.Duration(float64(time.Second) / float64(b.rps))
	}
	return allowed, info
}

// Cleanup drops keys idle longer than the TTL.
func (b *Bucket) Cleanup() {
	cutoff := time.Now().Add(-b.idleTTL)

	b.mu.Lock()
	defer b.mu.Unlock()

	for k, ent := range b.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(b.entries, k)
		}
	}
}

// StartJanitor evicts idle keys periodically until ctx is cancelled.
func (b *Bucket) StartJanitor(ctx context.Context) {
	t := time.NewTicker(b.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				b.Cleanup()
			}
		}
	}()
}
