package app

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
)

// newSessionToken creates the opaque per-device token that scopes a
// session to its room. 24 bytes of entropy, URL-safe, no padding.
func newSessionToken() string {
	b := make([]byte, 24)
	rand.Read(b)
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "=")
}

// newPlayerID creates a short public player ID
func newPlayerID() string {
	return uuid.New().String()[:8]
}
