// Package chain orchestrates the blockchain: transaction validation,
// the mempool, block assembly, and the append-only block list.
package chain

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/gambit/foundation/blockchain/address"
	"github.com/ardanlabs/gambit/foundation/blockchain/block"
	"github.com/ardanlabs/gambit/foundation/blockchain/mempool"
	"github.com/ardanlabs/gambit/foundation/blockchain/mining"
	"github.com/ardanlabs/gambit/foundation/blockchain/state"
	"github.com/ardanlabs/gambit/foundation/blockchain/transaction"
	"github.com/ardanlabs/gambit/foundation/blockchain/zkproof"
)

// Blockchain is the mutex-guarded orchestrator combining chain state,
// world state, and the pending-transaction pool.
type Blockchain struct {
	mu      sync.RWMutex
	chainID uint64

	blocks []block.Block
	state  *state.State
	pool   *mempool.Mempool
}

// New constructs a Blockchain seeded with a genesis allocation. The
// genesis block is index 0 with an all-zero prev hash and no
// transactions.
func New(chainID uint64, genesisBalances map[address.Address]uint64) *Blockchain {
	bc := Blockchain{
		chainID: chainID,
		state:   state.New(genesisBalances),
		pool:    mempool.New(),
	}

	root := bc.state.Root()
	genesis := block.Block{
		Index:        0,
		PrevHash:     "0x0000000000000000000000000000000000000000000000000000000000000000",
		StateAfter:   fmt.Sprintf("0x%x", root),
		TxRoot:       "0x00",
		ReceiptsRoot: "0x00",
	}
	digest := genesis.ComputeHash()
	genesis.Hash = fmt.Sprintf("0x%x", digest)

	bc.blocks = append(bc.blocks, genesis)
	return &bc
}

// ChainID returns the chain identifier every transaction must match.
func (bc *Blockchain) ChainID() uint64 {
	return bc.chainID
}

// Height returns the index of the most recently appended block.
func (bc *Blockchain) Height() uint64 {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	return bc.blocks[len(bc.blocks)-1].Index
}

// Block returns the block at the given index, if present.
func (bc *Blockchain) Block(index uint64) (block.Block, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	for _, b := range bc.blocks {
		if b.Index == index {
			return b, true
		}
	}
	return block.Block{}, false
}

// normalizeHash strips a leading "0x"/"0X" so hashes that differ only
// by prefix still compare equal.
func normalizeHash(h string) string {
	if len(h) >= 2 && (h[0:2] == "0x" || h[0:2] == "0X") {
		return h[2:]
	}
	return h
}

// BlockByHash returns the block with the given hash, if present. The
// lookup tolerates a mismatched 0x prefix between h and the stored
// hash.
func (bc *Blockchain) BlockByHash(h string) (block.Block, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	h = normalizeHash(h)
	for _, b := range bc.blocks {
		if normalizeHash(b.Hash) == h {
			return b, true
		}
	}
	return block.Block{}, false
}

// TransactionByHash checks the mempool first, then searches every
// block, for a transaction with the given hash.
func (bc *Blockchain) TransactionByHash(h string) (transaction.Transaction, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	h = normalizeHash(h)

	for _, tx := range bc.pool.PickAll() {
		if normalizeHash(tx.Hash) == h {
			return tx, true
		}
	}

	for _, b := range bc.blocks {
		for _, tx := range b.Transactions {
			if normalizeHash(tx.Hash) == h {
				return tx, true
			}
		}
	}
	return transaction.Transaction{}, false
}

// Account returns a copy of the current account info.
func (bc *Blockchain) Account(addr address.Address) state.Account {
	return bc.state.Account(addr)
}

// MempoolLen reports the number of pending transactions.
func (bc *Blockchain) MempoolLen() int {
	return bc.pool.Len()
}

// ValidateTransaction runs the five checks every transaction must
// pass before entering the mempool: chain id, signature, nonce, gas
// cost overflow, and total cost overflow / balance.
func (bc *Blockchain) ValidateTransaction(tx transaction.Transaction) error {
	bc.mu.RLock()
	acct := bc.state.Account(tx.From)
	bc.mu.RUnlock()

	return checkTransaction(bc.chainID, acct, tx)
}

func checkTransaction(chainID uint64, acct state.Account, tx transaction.Transaction) error {
	if tx.ChainID != chainID {
		return fmt.Errorf("Invalid chainId")
	}

	if err := tx.VerifySignature(); err != nil {
		return fmt.Errorf("Invalid signature")
	}

	if tx.Nonce != acct.Nonce {
		return fmt.Errorf("Invalid nonce")
	}

	gasCost := tx.GasPrice * tx.GasLimit
	if tx.GasLimit != 0 && gasCost/tx.GasLimit != tx.GasPrice {
		return fmt.Errorf("Gas cost overflow")
	}

	total := tx.Value + gasCost
	if total < tx.Value {
		return fmt.Errorf("Total cost overflow")
	}

	if total > acct.Balance {
		return fmt.Errorf("Insufficient funds")
	}

	return nil
}

// AddTransaction validates tx and, if valid, upserts it into the
// mempool.
func (bc *Blockchain) AddTransaction(tx transaction.Transaction) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	acct := bc.state.Account(tx.From)
	if err := checkTransaction(bc.chainID, acct, tx); err != nil {
		return err
	}

	bc.pool.Upsert(tx)
	return nil
}

// BuildCandidate assembles a fresh, unappended candidate block from
// the current mempool and state without mutating either: the
// template external miners (or the RPC eth_getWork surface) build on.
func (bc *Blockchain) BuildCandidate(now uint64) block.Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	prev := bc.blocks[len(bc.blocks)-1]
	candidates := bc.pool.PickAll()

	b, _ := mining.Build(prev.Index+1, prev.Hash, bc.state, candidates, now)
	return b
}

// MineBlock assembles and appends a candidate block built from the
// current mempool contents, then clears the applied transactions from
// the pool.
func (bc *Blockchain) MineBlock(now uint64) (block.Block, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	prev := bc.blocks[len(bc.blocks)-1]
	candidates := bc.pool.PickAll()

	b, next := mining.Build(prev.Index+1, prev.Hash, bc.state, candidates, now)

	bc.blocks = append(bc.blocks, b)
	bc.state = next

	for _, tx := range b.Transactions {
		bc.pool.Remove(tx.From, tx.Nonce)
	}

	return b, nil
}

// AddBlock appends a block received from a peer. It checks index
// continuity, prev-hash linkage, and proof self-consistency, but does
// not re-execute the block's transactions against local state: this
// core trusts the proof rather than replaying work already proven.
func (bc *Blockchain) AddBlock(b block.Block) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	prev := bc.blocks[len(bc.blocks)-1]

	if b.Index != prev.Index+1 {
		return fmt.Errorf("chain: block index mismatch, got %d, exp %d", b.Index, prev.Index+1)
	}
	if b.PrevHash != prev.Hash {
		return fmt.Errorf("chain: block does not link to the current head")
	}

	proof := zkproof.Proof{
		Proof:       b.Proof,
		StateBefore: b.StateBefore,
		StateAfter:  b.StateAfter,
		TxRoot:      b.TxRoot,
		Commitment:  b.Commitment,
	}
	if !zkproof.Verify(proof) {
		return fmt.Errorf("chain: block proof does not verify")
	}

	bc.blocks = append(bc.blocks, b)

	for _, tx := range b.Transactions {
		bc.pool.Remove(tx.From, tx.Nonce)
	}

	return nil
}
