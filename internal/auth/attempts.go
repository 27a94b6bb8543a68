package auth

import (
	"sync"
	"time"
)

type attemptState struct {
	count int
	last  time.Time
}

// Tracker counts failed authentication attempts per client address inside a
// sliding window and blocks an address once the threshold is reached.
// Blocks expire lazily on the next check. All state is process-local.
//
// Per address the lifecycle is: clean -> warming (count < threshold) ->
// blocked. A successful authentication returns the address to clean from any
// state.
type Tracker struct {
	mu       sync.Mutex
	attempts map[string]attemptState
	blocks   map[string]time.Time

	threshold int
	window    time.Duration
	blockFor  time.Duration

	now func() time.Time
}

// NewTracker builds a tracker. threshold is the failure count that triggers
// a block, window is how long failures count toward it, blockFor is the
// block duration.
func NewTracker(threshold int, window, blockFor time.Duration) *Tracker {
	return &Tracker{
		attempts:  make(map[string]attemptState),
		blocks:    make(map[string]time.Time),
		threshold: threshold,
		window:    window,
		blockFor:  blockFor,
		now:       time.Now,
	}
}

// IsBlocked reports whether addr is currently blocked. An expired block is
// removed together with the address's failure count, so the request at or
// after blockedUntil is evaluated normally.
func (t *Tracker) IsBlocked(addr string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	until, ok := t.blocks[addr]
	if !ok {
		return false
	}
	if t.now().Before(until) {
		return true
	}
	delete(t.blocks, addr)
	delete(t.attempts, addr)
	return false
}

// RecordFailure registers a failed attempt for addr and returns true when
// this failure pushed the address over the threshold. Failures older than
// the window reset the count to 1.
func (t *Tracker) RecordFailure(addr string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	st, ok := t.attempts[addr]
	if ok && now.Sub(st.last) < t.window {
		st.count++
	} else {
		st.count = 1
	}
	st.last = now
	t.attempts[addr] = st

	if st.count >= t.threshold {
		t.blocks[addr] = now.Add(t.blockFor)
		return true
	}
	return false
}

// Reset clears all failure state for addr. Called on successful
// authentication.
func (t *Tracker) Reset(addr string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.attempts, addr)
	delete(t.blocks, addr)
}
