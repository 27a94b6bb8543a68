package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Fingerprinter derives stable, non-reversible identifiers for API keys.
// The secret comes from configuration so the same key fingerprints
// identically across restarts. Only fingerprints ever reach the audit log,
// never raw keys.
//
// HMAC-SHA256 here is an identifier scheme, not password storage.
type Fingerprinter struct {
	secret []byte
}

func NewFingerprinter(secret string) *Fingerprinter {
	return &Fingerprinter{secret: []byte(secret)}
}

// Fingerprint returns a fixed-length identifier for key.
func (f *Fingerprinter) Fingerprint(key string) string {
	mac := hmac.New(sha256.New, f.secret)
	mac.Write([]byte(key))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))[:16]
}
