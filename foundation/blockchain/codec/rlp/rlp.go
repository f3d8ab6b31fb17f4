// Package rlp implements the canonical recursive-length-prefix
// encoding used for transactions, blocks, receipts, and trie nodes.
// The heavy lifting is delegated to go-ethereum's rlp engine, which
// implements the identical length-prefix scheme this node's wire
// format requires.
package rlp

import (
	"bytes"
	"fmt"

	gethrlp "github.com/ethereum/go-ethereum/rlp"
)

// EncodeBytes returns the canonical RLP encoding of a byte string.
// A single byte below 0x80 encodes as itself; otherwise a length
// prefix precedes the raw bytes.
func EncodeBytes(b []byte) []byte {
	out, err := gethrlp.EncodeToBytes(b)
	if err != nil {
		// EncodeToBytes cannot fail for a plain byte slice.
		panic(fmt.Sprintf("rlp: encoding bytes: %v", err))
	}
	return out
}

// EncodeUint returns the canonical RLP encoding of an unsigned
// integer: zero encodes as the empty string, nonzero as its minimal
// big-endian byte representation.
func EncodeUint(v uint64) []byte {
	out, err := gethrlp.EncodeToBytes(v)
	if err != nil {
		panic(fmt.Sprintf("rlp: encoding uint: %v", err))
	}
	return out
}

// EncodeList concatenates pre-encoded items under a list length
// prefix. Each element of items must already be a valid RLP encoding
// (use EncodeBytes/EncodeUint/EncodeList for nested items).
func EncodeList(items [][]byte) []byte {
	raws := make([]gethrlp.RawValue, len(items))
	for i, it := range items {
		raws[i] = gethrlp.RawValue(it)
	}
	out, err := gethrlp.EncodeToBytes(raws)
	if err != nil {
		panic(fmt.Sprintf("rlp: encoding list: %v", err))
	}
	return out
}

// Decoded is the result of decoding one RLP item: either a byte
// string (IsList false, Bytes set) or a list of further Decoded items
// (IsList true, Items set).
type Decoded struct {
	IsList bool
	Bytes  []byte
	Items  []Decoded
}

// Decode parses a single RLP item from in, returning a codec error if
// the length fields or buffer bounds are inconsistent.
func Decode(in []byte) (Decoded, error) {
	s := gethrlp.NewStream(bytes.NewReader(in), uint64(len(in)))
	d, err := decodeStream(s)
	if err != nil {
		return Decoded{}, fmt.Errorf("rlp: decoding: %w", err)
	}
	return d, nil
}

func decodeStream(s *gethrlp.Stream) (Decoded, error) {
	kind, _, err := s.Kind()
	if err != nil {
		return Decoded{}, err
	}

	switch kind {
	case gethrlp.List:
		if _, err := s.List(); err != nil {
			return Decoded{}, err
		}
		var items []Decoded
		for {
			item, err := decodeStream(s)
			if err == gethrlp.EOL {
				break
			}
			if err != nil {
				return Decoded{}, err
			}
			items = append(items, item)
		}
		if err := s.ListEnd(); err != nil {
			return Decoded{}, err
		}
		return Decoded{IsList: true, Items: items}, nil

	default:
		b, err := s.Bytes()
		if err != nil {
			return Decoded{}, err
		}
		return Decoded{Bytes: b}, nil
	}
}

// DecodeBytes decodes a single RLP-encoded byte string.
func DecodeBytes(in []byte) ([]byte, error) {
	d, err := Decode(in)
	if err != nil {
		return nil, err
	}
	if d.IsList {
		return nil, fmt.Errorf("rlp: expected byte string, got list")
	}
	return d.Bytes, nil
}

// DecodeUint decodes a single RLP-encoded unsigned integer.
func DecodeUint(in []byte) (uint64, error) {
	var v uint64
	if err := gethrlp.DecodeBytes(in, &v); err != nil {
		return 0, fmt.Errorf("rlp: decoding uint: %w", err)
	}
	return v, nil
}
