// Package tm implements the translation memory: normalized-source keying,
// FTS-indexed fuzzy retrieval re-ranked by token-set similarity, and
// learn-on-approval / usage-accounting orchestration on top of the storage
// layer.
package tm

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// NormalizeSource collapses internal whitespace to single spaces, trims,
// and lower-cases text.
func NormalizeSource(text string) string {
	collapsed := whitespacePattern.ReplaceAllString(strings.TrimSpace(text), " ")
	return strings.ToLower(collapsed)
}

// NormalizedHash returns the SHA-256 hex digest of the normalized text.
func NormalizedHash(text string) string {
	sum := sha256.Sum256([]byte(NormalizeSource(text)))
	return hex.EncodeToString(sum[:])
}
