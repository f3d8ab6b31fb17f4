// Package state maintains account balances and nonces, and derives
// the world-state root committed to by every block.
package state

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/gambit/foundation/blockchain/address"
	"github.com/ardanlabs/gambit/foundation/blockchain/codec/rlp"
	"github.com/ardanlabs/gambit/foundation/blockchain/transaction"
	"github.com/ardanlabs/gambit/foundation/blockchain/trie"
)

// Account holds the balance and nonce for a single address.
type Account struct {
	Balance uint64
	Nonce   uint64
}

// State manages the world state: every account's balance and nonce.
type State struct {
	mu       sync.RWMutex
	accounts map[address.Address]Account
}

// New constructs a State pre-populated from a genesis allocation.
func New(genesisBalances map[address.Address]uint64) *State {
	s := State{
		accounts: make(map[address.Address]Account),
	}
	for addr, balance := range genesisBalances {
		s.accounts[addr] = Account{Balance: balance}
	}
	return &s
}

// Account returns a copy of the named account's current info.
func (s *State) Account(addr address.Address) Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.accounts[addr]
}

// Clone returns an independent copy of the state, used by the mining
// package to build candidate blocks without mutating chain state.
func (s *State) Clone() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone := State{accounts: make(map[address.Address]Account, len(s.accounts))}
	for addr, acct := range s.accounts {
		clone.accounts[addr] = acct
	}
	return &clone
}

// ApplyTransaction validates and applies a single value transfer. Gas
// fields are checked for overflow but never deducted from the sender:
// this ledger has no fee market.
func (s *State) ApplyTransaction(tx transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.accounts[tx.From]

	if tx.Nonce != from.Nonce {
		return fmt.Errorf("state: invalid nonce, got %d, exp %d", tx.Nonce, from.Nonce)
	}

	gasCost := tx.GasPrice * tx.GasLimit
	if tx.GasLimit != 0 && gasCost/tx.GasLimit != tx.GasPrice {
		return fmt.Errorf("state: gas cost overflow")
	}

	total := tx.Value + gasCost
	if total < tx.Value {
		return fmt.Errorf("state: total cost overflow")
	}

	if tx.Value > from.Balance {
		return fmt.Errorf("state: %s has an insufficient balance", tx.From)
	}

	from.Balance -= tx.Value
	from.Nonce++
	s.accounts[tx.From] = from

	// Read the recipient after the sender is written back so a
	// self-send credits the debited account instead of overwriting it.
	to := s.accounts[tx.To]
	to.Balance += tx.Value
	s.accounts[tx.To] = to

	return nil
}

// Root derives the world-state trie root: a fresh trie keyed by raw
// 20-byte address with values RLP([balance, nonce]).
func (s *State) Root() [32]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := trie.New()
	for addr, acct := range s.accounts {
		value := rlp.EncodeList([][]byte{
			rlp.EncodeUint(acct.Balance),
			rlp.EncodeUint(acct.Nonce),
		})
		t.Put(addr[:], value)
	}
	return t.Root()
}
