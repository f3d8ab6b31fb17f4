// Package address implements the 20-byte account identifier used
// throughout the node, along with its checksummed hex rendering.
package address

import (
	"fmt"
	"strings"

	"github.com/ardanlabs/gambit/foundation/blockchain/hash"
)

// Length is the number of raw bytes in an Address.
const Length = 20

// Address is a 20-byte account identifier, derived from a public key
// via Keccak-256.
type Address [Length]byte

// Zero is the all-zero address.
var Zero Address

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a == Zero
}

// FromPublicKey derives an Address from an uncompressed secp256k1
// public key. pub may be 64 bytes (x||y) or 65 bytes with a leading
// 0x04 prefix; the prefix, if present, is stripped before hashing.
func FromPublicKey(pub []byte) (Address, error) {
	switch len(pub) {
	case 64:
	case 65:
		if pub[0] != 0x04 {
			return Address{}, fmt.Errorf("address: unexpected public key prefix 0x%02x", pub[0])
		}
		pub = pub[1:]
	default:
		return Address{}, fmt.Errorf("address: public key must be 64 or 65 bytes, got %d", len(pub))
	}

	digest := hash.Keccak256(pub)

	var a Address
	copy(a[:], digest[len(digest)-Length:])
	return a, nil
}

// FromHex parses a 20-byte address from a hex string, tolerant of an
// optional 0x/0X prefix and of either case.
func FromHex(s string) (Address, error) {
	b, err := hash.FromHex(s)
	if err != nil {
		return Address{}, fmt.Errorf("address: %w", err)
	}
	if len(b) != Length {
		return Address{}, fmt.Errorf("address: want %d bytes, got %d", Length, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// Hex renders a as lowercase hex with a 0x prefix.
func (a Address) Hex() string {
	return hash.ToHex(a[:])
}

// Checksum renders a with EIP-55-style mixed case: each hex nibble of
// the lowercase address is uppercased iff the matching nibble of
// keccak256 of the lowercase hex string (without the 0x prefix) is >= 8.
func (a Address) Checksum() string {
	lower := strings.TrimPrefix(a.Hex(), "0x")
	digest := hash.Keccak256([]byte(lower))

	out := make([]byte, len(lower))
	for i, c := range []byte(lower) {
		if c < 'a' || c > 'f' {
			out[i] = c
			continue
		}

		// digest nibble i: high nibble of digest[i/2] when i is even.
		var nibble byte
		if i%2 == 0 {
			nibble = digest[i/2] >> 4
		} else {
			nibble = digest[i/2] & 0x0F
		}

		if nibble >= 8 {
			out[i] = c - ('a' - 'A')
		} else {
			out[i] = c
		}
	}

	return "0x" + string(out)
}

// String implements fmt.Stringer using the checksummed rendering.
func (a Address) String() string {
	return a.Checksum()
}
