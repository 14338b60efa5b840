package contentstore

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestCID derives the content id for a blob stored locally: the sha256
// digest of the bytes, prefixed with the algorithm name so ids remain
// self-describing if the algorithm ever changes.
func DigestCID(blob []byte) string {
	sum := sha256.Sum256(blob)
	return "sha256-" + hex.EncodeToString(sum[:])
}
