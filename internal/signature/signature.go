// Package signature authenticates inbound CAP payloads with a shared
// HMAC secret. Verification is fail-closed: no configured secret and no
// presented signature both mean the request is rejected, never skipped.
package signature

import (
	"crypto/hmac"
	"encoding/hex"
	"strings"

	"github.com/falconforge/athena-bridge/internal/digest"
)

// Sign returns the hex-encoded HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	return digest.Keyed(secret, body)
}

// Verify checks a caller-supplied signature against the raw request
// bytes. The comparison is constant-time in the signature value.
// Verification must run on the exact bytes received; a re-serialized
// payload can differ byte-for-byte and break the MAC.
func Verify(secret string, body []byte, providedHex string) bool {
	providedHex = strings.TrimSpace(providedHex)
	if secret == "" || providedHex == "" {
		return false
	}
	// Tolerate a "sha256=" prefix from producers using webhook-style headers.
	if strings.HasPrefix(strings.ToLower(providedHex), "sha256=") {
		providedHex = providedHex[len("sha256="):]
	}
	got, err := hex.DecodeString(providedHex)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(digest.Keyed(secret, body))
	if err != nil {
		return false
	}
	return hmac.Equal(got, want)
}
