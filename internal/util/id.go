package util

import (
	"strings"

	"github.com/google/uuid"
)

// EntityID returns a candidate entity ID of the form <prefix>_xxxxxxxx where
// the suffix is the first 8 hex characters of a random UUID. Callers must
// check the result for collisions; see service.generateID.
func EntityID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + hex[:8]
}
