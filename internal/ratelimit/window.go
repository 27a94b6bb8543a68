package ratelimit

import (
	"context"
	"sync"
	"time"
)

type windowEntry struct {
	count int
	start time.Time
}

// Window is an in-process fixed-window counter limiter, the single-process
// backend for the authenticated-write limit. For multi-process deployments
// use RedisWindow, which shares counters and keeps the same outcome
// contract.
type Window struct {
	mu      sync.Mutex
	entries map[string]*windowEntry

	limit  int
	window time.Duration

	now func() time.Time
}

func NewWindow(limit int, window time.Duration) *Window {
	return &Window{
		entries: make(map[string]*windowEntry),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow implements Limiter.
func (w *Window) Allow(_ context.Context, key string) (bool, Info) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	ent, ok := w.entries[key]
	if !ok || now.Sub(ent.start) >= w.window {
		ent = &windowEntry{start: now}
		w.entries[key] = ent
	}
	ent.count++

	resetAt := ent.start.Add(w.window)
	remaining := w.limit - ent.count
	if remaining < 0 {
		remaining = 0
	}
	info := Info{
		Limit:     w.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if ent.count > w.limit {
		info.RetryAfter = resetAt.Sub(now)
		return false, info
	}
	return true, info
}
