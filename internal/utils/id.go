package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID mints a prefixed identifier such as "patient-9f2c41aa63b07d18".
// The suffix is 16 hex characters from a cryptographically secure source.
// Users are tagged with their role ("doctor-…"), other entities with their
// table tag ("radiographic-…", "history-…", "diagnose-…").
func NewID(prefix string) (string, error) {
	buf := make([]byte, 8) // 8 bytes -> 16 hex chars
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return prefix + "-" + hex.EncodeToString(buf), nil
}
