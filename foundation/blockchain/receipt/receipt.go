// Package receipt implements the per-transaction execution outcome
// recorded alongside every block, and its RLP encoding.
package receipt

import (
	"github.com/ardanlabs/gambit/foundation/blockchain/address"
	"github.com/ardanlabs/gambit/foundation/blockchain/codec/rlp"
)

// Log is a single event emitted during transaction execution. The
// current core never produces logs (value transfer only), but the
// wire shape is carried so the bloom filter and a future VM have
// somewhere to put them.
type Log struct {
	Address address.Address
	Topics  [][32]byte
	Data    []byte
}

// Receipt is the outcome of applying one transaction within a block.
type Receipt struct {
	Status           bool
	CumulativeGasUsed uint64
	Logs             []Log
}

func (l Log) rlpEncode() []byte {
	topics := make([][]byte, len(l.Topics))
	for i, t := range l.Topics {
		topics[i] = rlp.EncodeBytes(t[:])
	}

	fields := [][]byte{
		rlp.EncodeBytes(l.Address[:]),
		rlp.EncodeList(topics),
		rlp.EncodeBytes(l.Data),
	}
	return rlp.EncodeList(fields)
}

// RLPEncode returns the canonical RLP encoding:
// [status, cumulativeGasUsed, logs].
func (r Receipt) RLPEncode() []byte {
	logs := make([][]byte, len(r.Logs))
	for i, l := range r.Logs {
		logs[i] = l.rlpEncode()
	}

	status := uint64(0)
	if r.Status {
		status = 1
	}

	fields := [][]byte{
		rlp.EncodeUint(status),
		rlp.EncodeUint(r.CumulativeGasUsed),
		rlp.EncodeList(logs),
	}
	return rlp.EncodeList(fields)
}
