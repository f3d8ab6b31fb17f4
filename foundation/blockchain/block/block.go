// Package block implements the block header and its canonical RLP
// encoding, the unit the chain and P2P layers exchange.
package block

import (
	"fmt"

	"github.com/ardanlabs/gambit/foundation/blockchain/bloom"
	"github.com/ardanlabs/gambit/foundation/blockchain/codec/rlp"
	"github.com/ardanlabs/gambit/foundation/blockchain/hash"
	"github.com/ardanlabs/gambit/foundation/blockchain/receipt"
	"github.com/ardanlabs/gambit/foundation/blockchain/transaction"
	"github.com/ardanlabs/gambit/foundation/blockchain/zkproof"
)

// Block groups a batch of transactions together with the proof that
// the resulting state transition is valid.
type Block struct {
	Index        uint64
	PrevHash     string
	StateBefore  string
	StateAfter   string
	TxRoot       string
	ReceiptsRoot string
	Proof        string // proof.proof
	Commitment   string // proof.commitment
	Timestamp    uint64
	Hash         string
	Transactions []transaction.Transaction
	LogsBloom    bloom.Bloom
	Receipts     []receipt.Receipt
}

// FromProof fills the proof-derived fields from a zkproof.Proof.
func (b *Block) FromProof(p zkproof.Proof) {
	b.StateBefore = p.StateBefore
	b.StateAfter = p.StateAfter
	b.TxRoot = p.TxRoot
	b.Proof = p.Proof
	b.Commitment = p.Commitment
}

func (b Block) rlpFields() [][]byte {
	txs := make([][]byte, len(b.Transactions))
	for i, tx := range b.Transactions {
		txs[i] = rlp.EncodeBytes(tx.RLPEncodeSigned())
	}

	receipts := make([][]byte, len(b.Receipts))
	for i, r := range b.Receipts {
		receipts[i] = rlp.EncodeBytes(r.RLPEncode())
	}

	return [][]byte{
		rlp.EncodeUint(b.Index),
		rlp.EncodeBytes([]byte(b.PrevHash)),
		rlp.EncodeBytes([]byte(b.StateBefore)),
		rlp.EncodeBytes([]byte(b.StateAfter)),
		rlp.EncodeBytes([]byte(b.TxRoot)),
		rlp.EncodeBytes([]byte(b.ReceiptsRoot)),
		rlp.EncodeBytes([]byte(b.Proof)),
		rlp.EncodeBytes([]byte(b.Commitment)),
		rlp.EncodeUint(b.Timestamp),
		rlp.EncodeBytes([]byte(b.Hash)),
		rlp.EncodeList(txs),
		rlp.EncodeBytes(b.LogsBloom[:]),
		rlp.EncodeList(receipts),
	}
}

// RLPEncode returns the canonical 13-field RLP encoding of the header
// with its hash field populated (ComputeHash excludes Hash itself).
func (b Block) RLPEncode() []byte {
	return rlp.EncodeList(b.rlpFields())
}

// ComputeHash returns keccak256 of the block encoded with Hash cleared,
// the digest that becomes the block's own Hash field.
func (b Block) ComputeHash() [32]byte {
	clone := b
	clone.Hash = ""
	digest := hash.Keccak256(clone.RLPEncode())
	return digest
}

// ToHex serializes the block to 0x-prefixed ASCII hex.
func (b Block) ToHex() string {
	return hash.ToHex(b.RLPEncode())
}

// FromHex deserializes a hex-encoded block.
func FromHex(hexStr string) (Block, error) {
	raw, err := hash.FromHex(hexStr)
	if err != nil {
		return Block{}, fmt.Errorf("block: %w", err)
	}

	decoded, err := rlp.Decode(raw)
	if err != nil {
		return Block{}, fmt.Errorf("block: %w", err)
	}
	if !decoded.IsList || len(decoded.Items) != 13 {
		return Block{}, fmt.Errorf("block: expected 13-field list, got %+v", decoded)
	}

	items := decoded.Items

	b := Block{
		Index:        bytesToUint64(items[0].Bytes),
		PrevHash:     string(items[1].Bytes),
		StateBefore:  string(items[2].Bytes),
		StateAfter:   string(items[3].Bytes),
		TxRoot:       string(items[4].Bytes),
		ReceiptsRoot: string(items[5].Bytes),
		Proof:        string(items[6].Bytes),
		Commitment:   string(items[7].Bytes),
		Timestamp:    bytesToUint64(items[8].Bytes),
		Hash:         string(items[9].Bytes),
	}

	if !items[10].IsList {
		return Block{}, fmt.Errorf("block: expected transactions list")
	}
	for _, txItem := range items[10].Items {
		tx, err := transaction.FromHex(hash.ToHex(txItem.Bytes))
		if err != nil {
			return Block{}, fmt.Errorf("block: decoding transaction: %w", err)
		}
		b.Transactions = append(b.Transactions, tx)
	}

	if len(items[11].Bytes) != bloom.Size {
		return Block{}, fmt.Errorf("block: malformed logs bloom")
	}
	copy(b.LogsBloom[:], items[11].Bytes)

	if !items[12].IsList {
		return Block{}, fmt.Errorf("block: expected receipts list")
	}
	// Receipts are carried for external consumers; this node does not
	// need to decode them back into structured form to validate a block.
	b.Receipts = make([]receipt.Receipt, len(items[12].Items))

	return b, nil
}

func bytesToUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
