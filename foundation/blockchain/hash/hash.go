// Package hash provides the Keccak-256 digest and hex codec used
// throughout the node for addresses, roots, and block/transaction
// hashes.
package hash

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Size is the length in bytes of a Keccak-256 digest.
const Size = 32

// Keccak256 returns the original Keccak digest (padding byte 0x01,
// NOT the NIST SHA-3 0x06 padding) of the concatenation of data.
func Keccak256(data ...[]byte) [Size]byte {
	var out [Size]byte
	copy(out[:], crypto.Keccak256(data...))
	return out
}

// ToHex renders b as lowercase hex with a 0x prefix.
func ToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// FromHex decodes a hex string, tolerating an optional 0x/0X prefix.
// It rejects odd-length input.
func FromHex(s string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(trimmed)%2 != 0 {
		return nil, fmt.Errorf("hash: odd-length hex string %q", s)
	}
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("hash: decoding hex: %w", err)
	}
	return b, nil
}
