package ratelimit

import (
	"context"
	"testing"
	"time"
)

func newTestWindow(limit int, window time.Duration) (*Window, *time.Time) {
	w := NewWindow(limit, window)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }
	return w, &now
}

func TestWindowAllowsUpToLimit(t *testing.T) {
	w, _ := newTestWindow(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, info := w.Allow(ctx, "k1")
		if !allowed {
			t.Fatalf("request %d denied", i+1)
		}
		if info.Limit != 3 {
			t.Fatalf("info.Limit = %d, want 3", info.Limit)
		}
		if info.Remaining != 3-(i+1) {
			t.Fatalf("request %d: Remaining = %d, want %d", i+1, info.Remaining, 3-(i+1))
		}
	}

	allowed, info := w.Allow(ctx, "k1")
	if allowed {
		t.Fatal("request over the limit allowed")
	}
	if info.Remaining != 0 {
		t.Fatalf("denied Remaining = %d, want 0", info.Remaining)
	}
	if info.RetryAfter <= 0 {
		t.Fatal("denied request should carry a retry hint")
	}
}

func TestWindowResetsAfterWindow(t *testing.T) {
	w, now := newTestWindow(2, time.Minute)
	ctx := context.Background()

	w.Allow(ctx, "k1")
	w.Allow(ctx, "k1")
	if allowed, _ := w.Allow(ctx, "k1"); allowed {
		t.Fatal("third request in window allowed")
	}

	*now = now.Add(time.Minute)
	allowed, info := w.Allow(ctx, "k1")
	if !allowed {
		t.Fatal("new window should reset the count")
	}
	if info.Remaining != 1 {
		t.Fatalf("Remaining = %d, want 1", info.Remaining)
	}
}

func TestWindowKeysAreIndependent(t *testing.T) {
	w, _ := newTestWindow(1, time.Minute)
	ctx := context.Background()

	w.Allow(ctx, "k1")
	if allowed, _ := w.Allow(ctx, "k1"); allowed {
		t.Fatal("k1 should be exhausted")
	}
	if allowed, _ := w.Allow(ctx, "k2"); !allowed {
		t.Fatal("k2 must have its own budget")
	}
}

func TestWindowResetAtMatchesWindowStart(t *testing.T) {
	w, now := newTestWindow(1, time.Minute)
	ctx := context.Background()

	start := *now
	_, info := w.Allow(ctx, "k1")
	if !info.ResetAt.Equal(start.Add(time.Minute)) {
		t.Fatalf("ResetAt = %v, want %v", info.ResetAt, start.Add(time.Minute))
	}
}

func TestBucketAllowsBurstThenDenies(t *testing.T) {
	// negligible refill rate so the test is deterministic
	b := NewBucket(0.0001, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if allowed, _ := b.Allow(ctx, "1.2.3.4"); !allowed {
			t.Fatalf("burst request %d denied", i+1)
		}
	}
	allowed, info := b.Allow(ctx, "1.2.3.4")
	if allowed {
		t.Fatal("request over burst allowed")
	}
	if info.Limit != 2 {
		t.Fatalf("info.Limit = %d, want 2", info.Limit)
	}
	if info.RetryAfter <= 0 {
		t.Fatal("denied request should carry a retry hint")
	}

	// other keys keep their own bucket
	if allowed, _ := b.Allow(ctx, "5.6.7.8"); !allowed {
		t.Fatal("other key denied")
	}
}

func TestBucketCleanupEvictsIdleKeys(t *testing.T) {
	b := NewBucket(1, 1)
	b.idleTTL = 0
	ctx := context.Background()

	b.Allow(ctx, "k1")
	time.Sleep(time.Millisecond)
	b.Cleanup()

	b.mu.Lock()
	n := len(b.entries)
	b.mu.Unlock()
	if n != 0 {
		t.Fatalf("entries after cleanup = %d, want 0", n)
	}
}
