// Package digest computes content digests for integrity checks.
// Artifact digests use the "SHA256:<hex>" notation that the manifest
// pins; keyed digests authenticate inbound request bodies.
package digest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prefix is the digest notation used by the integrity manifest.
const Prefix = "SHA256:"

// Sum reads r to EOF and returns its digest as "SHA256:<hex>".
// The reader is consumed in fixed-size chunks; the content is never
// held in memory as a whole.
func Sum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return Prefix + hex.EncodeToString(h.Sum(nil)), nil
}

// SumFile returns the digest of the file at path.
func SumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	d, err := Sum(f)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return d, nil
}

// SumBytes returns the digest of b as "SHA256:<hex>".
func SumBytes(b []byte) string {
	h := sha256.Sum256(b)
	return Prefix + hex.EncodeToString(h[:])
}

// Keyed returns the hex-encoded HMAC-SHA256 of body under secret.
func Keyed(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Equal compares two digests ignoring hex case and an optional
// "SHA256:" prefix on either side.
func Equal(a, b string) bool {
	return strings.EqualFold(stripPrefix(a), stripPrefix(b))
}

// Hex returns the bare hex portion of a "SHA256:<hex>" digest.
func Hex(d string) string {
	return stripPrefix(d)
}

func stripPrefix(d string) string {
	if len(d) > len(Prefix) && strings.EqualFold(d[:len(Prefix)], Prefix) {
		return d[len(Prefix):]
	}
	return d
}
