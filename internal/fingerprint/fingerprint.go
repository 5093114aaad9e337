// Package fingerprint computes the content digest used for change detection.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Body returns the hex sha256 of body with surrounding whitespace removed.
func Body(body string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(body)))
	return hex.EncodeToString(sum[:])
}
