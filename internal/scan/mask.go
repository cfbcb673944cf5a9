package scan

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// MaskValue hides the middle of a secret, keeping the first and last
// four characters. Values of eight characters or fewer mask entirely
// so short secrets never leak through a report.
func MaskValue(value string) string {
	const show = 4
	if len(value) <= show*2 {
		return strings.Repeat("*", len(value))
	}
	return value[:show] + "..." + value[len(value)-show:]
}

// HashValue fingerprints a secret as "sha256:" plus the first 16 hex
// digits of its digest, enough to correlate findings across scans
// without storing the value itself.
func HashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return "sha256:" + hex.EncodeToString(sum[:])[:16]
}
