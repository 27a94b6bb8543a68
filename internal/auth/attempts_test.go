package auth

import (
	"testing"
	"time"
)

const (
	testWindow   = 5 * time.Minute
	testBlockFor = 15 * time.Minute
)

// fakeClock lets tests march time forward deterministically.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker() (*Tracker, *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	tr := NewTracker(5, testWindow, testBlockFor)
	tr.now = clk.now
	return tr, clk
}

func TestTrackerBlocksAtThreshold(t *testing.T) {
	tr, _ := newTestTracker()

	for i := 0; i < 4; i++ {
		if blocked := tr.RecordFailure("1.2.3.4"); blocked {
			t.Fatalf("blocked after %d failures", i+1)
		}
		if tr.IsBlocked("1.2.3.4") {
			t.Fatalf("IsBlocked true after %d failures", i+1)
		}
	}
	if !tr.RecordFailure("1.2.3.4") {
		t.Fatal("5th failure should trigger the block")
	}
	if !tr.IsBlocked("1.2.3.4") {
		t.Fatal("address should be blocked")
	}
}

func TestTrackerAddressesAreIndependent(t *testing.T) {
	tr, _ := newTestTracker()

	for i := 0; i < 5; i++ {
		tr.RecordFailure("1.2.3.4")
	}
	if tr.IsBlocked("5.6.7.8") {
		t.Fatal("other addresses must not be affected")
	}
}

func TestTrackerWindowExpiryResetsCount(t *testing.T) {
	tr, clk := newTestTracker()

	for i := 0; i < 4; i++ {
		tr.RecordFailure("1.2.3.4")
	}
	clk.advance(testWindow + time.Second)

	// outside the window: this failure counts as the first again
	if tr.RecordFailure("1.2.3.4") {
		t.Fatal("stale failures must not count toward the threshold")
	}
	if tr.IsBlocked("1.2.3.4") {
		t.Fatal("address should not be blocked")
	}
}

func TestTrackerResetClearsAllState(t *testing.T) {
	tr, _ := newTestTracker()

	for i := 0; i < 4; i++ {
		tr.RecordFailure("1.2.3.4")
	}
	tr.Reset("1.2.3.4")

	for i := 0; i < 4; i++ {
		if tr.RecordFailure("1.2.3.4") {
			t.Fatal("reset should start the count over")
		}
	}
}

func TestTrackerBlockExpiresLazily(t *testing.T) {
	tr, clk := newTestTracker()

	for i := 0; i < 5; i++ {
		tr.RecordFailure("1.2.3.4")
	}
	if !tr.IsBlocked("1.2.3.4") {
		t.Fatal("address should be blocked")
	}

	clk.advance(testBlockFor - time.Second)
	if !tr.IsBlocked("1.2.3.4") {
		t.Fatal("block should still hold just before expiry")
	}

	// exactly at blockedUntil the request is evaluated normally
	clk.advance(time.Second)
	if tr.IsBlocked("1.2.3.4") {
		t.Fatal("block should expire at blockedUntil")
	}

	// failure count was cleared along with the block
	for i := 0; i < 4; i++ {
		if tr.RecordFailure("1.2.3.4") {
			t.Fatal("expired block should also clear the failure count")
		}
	}
}

func TestTrackerConcurrentFailures(t *testing.T) {
	tr, _ := newTestTracker()

	done := make(chan struct{})
	for g := 0; g < 10; g++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				tr.RecordFailure("9.9.9.9")
			}
		}()
	}
	for g := 0; g < 10; g++ {
		<-done
	}
	if !tr.IsBlocked("9.9.9.9") {
		t.Fatal("1000 concurrent failures must block the address")
	}
}
