// Package mining builds candidate blocks. It never mutates chain
// state: it clones the world state, applies transactions to the
// clone, and returns a block the caller decides whether to append.
package mining

import (
	"github.com/ardanlabs/gambit/foundation/blockchain/block"
	"github.com/ardanlabs/gambit/foundation/blockchain/bloom"
	"github.com/ardanlabs/gambit/foundation/blockchain/hash"
	"github.com/ardanlabs/gambit/foundation/blockchain/receipt"
	"github.com/ardanlabs/gambit/foundation/blockchain/state"
	"github.com/ardanlabs/gambit/foundation/blockchain/transaction"
	"github.com/ardanlabs/gambit/foundation/blockchain/trie"
	"github.com/ardanlabs/gambit/foundation/blockchain/zkproof"
)

// Build assembles a candidate block atop prev, applying candidates
// against a clone of current in the order given. Candidates that fail
// to apply are skipped, not returned as an error: the caller already
// validated them on the way into the mempool, and reorg or balance
// changes since then are expected occasionally.
func Build(index uint64, prevHash string, current *state.State, candidates []transaction.Transaction, now uint64) (block.Block, *state.State) {
	stateBefore := current.Root()

	working := current.Clone()

	var applied []transaction.Transaction
	var receipts []receipt.Receipt
	var logsBloom bloom.Bloom
	var cumulativeGas uint64

	for _, tx := range candidates {
		if err := working.ApplyTransaction(tx); err != nil {
			continue
		}

		cumulativeGas += tx.GasLimit
		applied = append(applied, tx)
		r := receipt.Receipt{
			Status:            true,
			CumulativeGasUsed: cumulativeGas,
		}
		receipts = append(receipts, r)
		for _, l := range r.Logs {
			logsBloom.Add(l.Address[:])
			for _, topic := range l.Topics {
				logsBloom.Add(topic[:])
			}
		}
	}

	stateAfter := working.Root()
	txRoot := computeTxRoot(applied)
	receiptsRoot := computeReceiptsRoot(receipts)

	proof := zkproof.Generate(
		hash.ToHex(stateBefore[:]),
		hash.ToHex(stateAfter[:]),
		txRoot,
	)

	b := block.Block{
		Index:        index,
		PrevHash:     prevHash,
		Timestamp:    now,
		Transactions: applied,
		LogsBloom:    logsBloom,
		Receipts:     receipts,
		ReceiptsRoot: receiptsRoot,
	}
	b.FromProof(proof)
	digest := b.ComputeHash()
	b.Hash = hash.ToHex(digest[:])

	return b, working
}

// computeTxRoot is keccak256 of every applied transaction's broadcast
// hex concatenated with a "|" separator, or "0x00" for an empty block.
func computeTxRoot(txs []transaction.Transaction) string {
	if len(txs) == 0 {
		return "0x00"
	}

	var buf []byte
	for _, tx := range txs {
		buf = append(buf, []byte(tx.ToHex())...)
		buf = append(buf, '|')
	}
	digest := hash.Keccak256(buf)
	return hash.ToHex(digest[:])
}

// computeReceiptsRoot commits the block's receipts to a trie keyed by
// their index within the block, values RLP-encoded, mirroring the
// world-state trie state.Root builds.
func computeReceiptsRoot(receipts []receipt.Receipt) string {
	t := trie.New()
	for i, r := range receipts {
		t.Put([]byte{byte(i)}, r.RLPEncode())
	}
	return t.RootHex()
}
