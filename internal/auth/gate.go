package auth

import (
	"context"

	"ordergw/internal/audit"
	"ordergw/internal/metrics"
)

// Failure reasons recorded in audit events and returned to clients.
const (
	ReasonIPBlocked     = "ip_blocked"
	ReasonMissingHeader = "missing_header"
	ReasonInvalidKey    = "invalid_key"
)

// Identity describes an authenticated caller for downstream authorization.
type Identity struct {
	Key         string
	Fingerprint string
	Admin       bool
}

// Result is the outcome of one authentication attempt.
type Result struct {
	Allowed  bool
	Reason   string // empty on success
	Identity Identity
}

// Gate decides allow/deny for every inbound request and emits exactly one
// audit event per attempt.
type Gate struct {
	registry *Registry
	tracker  *Tracker
	fp       *Fingerprinter
	sink     audit.Sink
}

func NewGate(registry *Registry, tracker *Tracker, fp *Fingerprinter, sink audit.Sink) *Gate {
	return &Gate{registry: registry, tracker: tracker, fp: fp, sink: sink}
}

// Registry exposes the key registry for binding decisions after
// authentication.
func (g *Gate) Registry() *Registry { return g.registry }

// Authenticate evaluates one attempt from clientAddr presenting key (may be
// empty). The block check runs first and short-circuits without consulting
// the registry, so a blocked caller learns nothing about key validity.
func (g *Gate) Authenticate(ctx context.Context, clientAddr, key string) Result {
	if g.tracker.IsBlocked(clientAddr) {
		g.record(ctx, clientAddr, audit.ResultFailure, ReasonIPBlocked, "")
		return Result{Reason: ReasonIPBlocked}
	}

	if key == "" {
		g.tracker.RecordFailure(clientAddr)
		g.record(ctx, clientAddr, audit.ResultFailure, ReasonMissingHeader, "")
		return Result{Reason: ReasonMissingHeader}
	}

	fp := g.fp.Fingerprint(key)

	if !g.registry.IsValid(key) {
		g.tracker.RecordFailure(clientAddr)
		g.record(ctx, clientAddr, audit.ResultFailure, ReasonInvalidKey, fp)
		return Result{Reason: ReasonInvalidKey}
	}

	g.tracker.Reset(clientAddr)
	g.record(ctx, clientAddr, audit.ResultSuccess, "", fp)

	return Result{
		Allowed: true,
		Identity: Identity{
			Key:         key,
			Fingerprint: fp,
			Admin:       g.registry.IsAdmin(key),
		},
	}
}

func (g *Gate) record(ctx context.Context, addr, result, reason, fp string) {
	metrics.AuthAttemptsTotal.WithLabelValues(result, reason).Inc()
	g.sink.Record(ctx, audit.Event{
		ClientAddr:     addr,
		Result:         result,
		Reason:         reason,
		KeyFingerprint: fp,
	})
}
