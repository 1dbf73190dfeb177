package lodestone

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	redactTag      = "red-"
	redactTokenLen = 12
)

// Redact maps an identifier to a masked token that is safe to include
// in a shared report. The mapping is one way and unsalted, so the same
// identifier always yields the same token within and across runs and
// reports can be correlated without revealing the original name. It
// is not a security boundary against brute forcing a small namespace.
func Redact(identifier string) string {
	sum := sha256.Sum256([]byte(identifier))
	return redactTag + hex.EncodeToString(sum[:])[:redactTokenLen]
}
