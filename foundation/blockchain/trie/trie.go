// Package trie implements the simplified radix-16 Merkle-Patricia
// trie used to commit the world state and the per-block receipt set.
// It is deliberately not bit-compatible with the standard Ethereum
// MPT (no hash-cutoff, full child RLP is always embedded); the core
// only requires that the root digest be a deterministic function of
// the inserted key/value pairs.
package trie

import (
	"github.com/ardanlabs/gambit/foundation/blockchain/codec/rlp"
	"github.com/ardanlabs/gambit/foundation/blockchain/hash"
)

type node struct {
	children [16]*node
	value    []byte
	hasValue bool
}

// Trie is an in-memory radix-16 Merkle-Patricia trie.
type Trie struct {
	root *node
}

// New constructs an empty trie.
func New() *Trie {
	return &Trie{root: &node{}}
}

func toNibbles(key []byte) []byte {
	out := make([]byte, 0, len(key)*2)
	for _, b := range key {
		out = append(out, b>>4, b&0x0F)
	}
	return out
}

// Put inserts or overwrites the value stored at key.
func (t *Trie) Put(key, value []byte) {
	n := t.root
	for _, nib := range toNibbles(key) {
		if n.children[nib] == nil {
			n.children[nib] = &node{}
		}
		n = n.children[nib]
	}
	n.value = value
	n.hasValue = true
}

// Get returns the value stored at key, if any.
func (t *Trie) Get(key []byte) ([]byte, bool) {
	n := t.root
	for _, nib := range toNibbles(key) {
		if n.children[nib] == nil {
			return nil, false
		}
		n = n.children[nib]
	}
	if !n.hasValue {
		return nil, false
	}
	return n.value, true
}

func encodeNodeValue(n *node) []byte {
	if !n.hasValue {
		return rlp.EncodeBytes(nil)
	}
	return rlp.EncodeBytes(n.value)
}

func encodeNode(n *node) []byte {
	fields := make([][]byte, 0, 17)
	for _, child := range n.children {
		if child == nil {
			fields = append(fields, rlp.EncodeBytes(nil))
			continue
		}
		fields = append(fields, rlp.EncodeBytes(encodeNode(child)))
	}
	fields = append(fields, encodeNodeValue(n))
	return rlp.EncodeList(fields)
}

// Root returns the keccak256 digest of the RLP encoding of the root
// node. The empty trie has a defined root: the digest of the empty
// 17-entry list.
func (t *Trie) Root() [32]byte {
	enc := encodeNode(t.root)
	return hash.Keccak256(enc)
}

// RootHex renders Root as 0x-prefixed hex.
func (t *Trie) RootHex() string {
	root := t.Root()
	return hash.ToHex(root[:])
}
