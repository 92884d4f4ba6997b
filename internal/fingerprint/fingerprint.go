// Package fingerprint derives the displayable hash of a repository signing key.
//
// A public key is stored as the hex encoding of the signing certificate.
// The fingerprint is the SHA-256 digest of the decoded bytes, rendered as 64
// upper-case hex characters. Clients compare it against a fingerprint
// received out of band to detect a swapped trust anchor.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Compute returns the fingerprint of publicKey, or "" for an empty key.
// Keys that are not valid hex are hashed as raw bytes so the result stays
// deterministic.
func Compute(publicKey string) string {
	if publicKey == "" {
		return ""
	}

	key, err := hex.DecodeString(publicKey)
	if err != nil {
		key = []byte(publicKey)
	}

	sum := sha256.Sum256(key)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Format groups a fingerprint into space-separated byte pairs for display.
// Input that is not an even-length hex string is returned unchanged.
func Format(fp string) string {
	if fp == "" || len(fp)%2 != 0 {
		return fp
	}
	if _, err := hex.DecodeString(fp); err != nil {
		return fp
	}

	fp = strings.ToUpper(fp)
	var b strings.Builder
	b.Grow(len(fp) + len(fp)/2)
	for i := 0; i < len(fp); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(fp[i : i+2])
	}
	return b.String()
}

// Equal compares two fingerprints ignoring case and display spacing.
func Equal(a, b string) bool {
	norm := func(s string) string {
		return strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	}
	return norm(a) == norm(b)
}
