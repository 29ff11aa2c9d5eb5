// Package emailaddr holds the small amount of email handling the verification
// flow needs: normalization, the institutional suffix check and a log-safe
// fingerprint.
package emailaddr

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Normalize trims surrounding space and lower-cases the address. Stored
// records and lookups always use the normalized form.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasSuffix reports whether a normalized address ends in suffix and has
// something before it. This is a suffix test only, not syntax validation.
func HasSuffix(email, suffix string) bool {
	suffix = strings.ToLower(suffix)
	return email != "" && len(email) > len(suffix) && strings.HasSuffix(email, suffix)
}

// Fingerprint returns a short stable digest of the address for log lines
// that must not carry the address itself.
func Fingerprint(email string) string {
	sum := blake2b.Sum256([]byte(Normalize(email)))
	return hex.EncodeToString(sum[:8])
}
