// Package ratelimit provides the request limiters applied in front of the
// business logic: a global per-client-address token bucket and a stricter
// fixed-window limiter for authenticated write endpoints. Backends are
// swappable (in-process or Redis) behind the same Limiter contract.
package ratelimit

import (
	"context"
	"time"
)

// Info is rate-limit state for populating the 429 body and response
// headers.
type Info struct {
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration // meaningful only when denied
}

// Limiter decides whether a request identified by key may proceed now.
// Implementations must be safe for concurrent use and must fail open on
// backend errors: a broken counter store degrades throughput protection,
// never availability.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, Info)
}
