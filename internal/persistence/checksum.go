package persistence

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Checksum returns the hex encoded BLAKE2b-256 digest of data.
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// VerifyChecksum reports ErrCorrupt when data does not hash to want.
func VerifyChecksum(data []byte, want string) error {
	got := Checksum(data)
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return fmt.Errorf("%w: checksum mismatch (want %s, got %s)", ErrCorrupt, want, got)
	}
	return nil
}
