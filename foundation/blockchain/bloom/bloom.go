// Package bloom implements the 2048-bit, triple-11-bit-index log
// bloom filter carried in every block header.
package bloom

import (
	"github.com/ardanlabs/gambit/foundation/blockchain/hash"
)

// Size is the number of bytes in a Bloom filter (2048 bits).
const Size = 256

// Bloom is a fixed-size probabilistic index over block log data.
type Bloom [Size]byte

// Add folds data into the filter by setting three 11-bit positions
// derived from the first six bytes of keccak256(data).
func (b *Bloom) Add(data []byte) {
	digest := hash.Keccak256(data)
	for i := 0; i < 3; i++ {
		v := (uint16(digest[2*i]) << 8) | uint16(digest[2*i+1])
		v &= 2047
		byteIndex := v >> 3
		bit := byte(1) << (v & 7)
		b[byteIndex] |= bit
	}
}

// Hex renders the filter as 0x-prefixed hex.
func (b Bloom) Hex() string {
	return hash.ToHex(b[:])
}
