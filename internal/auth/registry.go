package auth

import (
	"crypto/subtle"
	"fmt"
	"sync"

	"ordergw/internal/apperr"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStandard Role = "standard"
)

// KeyRecord is one configured API key. Standard keys may be bound to exactly
// one customer for their lifetime; admin keys never bind.
type KeyRecord struct {
	Key  string
	Role Role
}

type keyState struct {
	role        Role
	boundCustID string
	reserved    bool
}

// Registry holds the valid key set loaded once at startup. Bindings are the
// only mutable part: a single compare-and-bind write per standard key.
type Registry struct {
	mu   sync.RWMutex
	keys map[string]*keyState
}

// NewRegistry builds a registry from the configured key set. The set must be
// non-empty and free of duplicates.
func NewRegistry(records []KeyRecord) (*Registry, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("registry: key set is empty")
	}
	keys := make(map[string]*keyState, len(records))
	for _, r := range records {
		if r.Key == "" {
			return nil, fmt.Errorf("registry: empty key")
		}
		if _, dup := keys[r.Key]; dup {
			return nil, fmt.Errorf("registry: duplicate key")
		}
		if r.Role != RoleAdmin && r.Role != RoleStandard {
			return nil, fmt.Errorf("registry: unknown role %q", r.Role)
		}
		keys[r.Key] = &keyState{role: r.Role}
	}
	return &Registry{keys: keys}, nil
}

// IsValid reports whether presented matches a configured key. The comparison
// runs constant-time over the whole key set so response timing does not leak
// prefix matches.
func (r *Registry) IsValid(presented string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	match := 0
	for k := range r.keys {
		match |= subtle.ConstantTimeCompare([]byte(k), []byte(presented))
	}
	return match == 1
}

// IsAdmin reports whether key is a configured admin key. Unknown keys are
// not admin.
func (r *Registry) IsAdmin(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.keys[key]
	return ok && st.role == RoleAdmin
}

// CustomerIDFor returns the customer bound to key, or "" when the key is
// unknown, admin, or not yet bound.
func (r *Registry) CustomerIDFor(key string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if st, ok := r.keys[key]; ok {
		return st.boundCustID
	}
	return ""
}

// IsBound reports whether key already owns a customer.
func (r *Registry) IsBound(key string) bool {
	return r.CustomerIDFor(key) != ""
}

// Acquire atomically claims key for a pending first binding, so two
// concurrent creates with one key cannot both proceed. No-op for admin keys.
// The claim must be settled with Bind or returned with Release.
func (r *Registry) Acquire(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.keys[key]
	if !ok {
		return fmt.Errorf("registry: acquire on unknown key")
	}
	if st.role == RoleAdmin {
		return nil
	}
	if st.boundCustID != "" || st.reserved {
		return apperr.Forbidden(apperr.CodeAlreadyBound,
			"api key is already bound to a customer")
	}
	st.reserved = true
	return nil
}

// Release returns an acquired claim after a failed create.
func (r *Registry) Release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if st, ok := r.keys[key]; ok && st.boundCustID == "" {
		st.reserved = false
	}
}

// Bind records custID as the owner of key. No-op for admin keys. Binding
// twice with the same customer is idempotent; a different customer fails
// with KEY_ALREADY_BOUND.
func (r *Registry) Bind(key, custID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.keys[key]
	if !ok {
		return fmt.Errorf("registry: bind on unknown key")
	}
	if st.role == RoleAdmin {
		return nil
	}
	if st.boundCustID != "" && st.boundCustID != custID {
		return apperr.Forbidden(apperr.CodeAlreadyBound,
			"api key is already bound to a customer")
	}
	st.boundCustID = custID
	st.reserved = false
	return nil
}
