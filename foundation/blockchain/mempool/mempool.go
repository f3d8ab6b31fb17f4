// Package mempool holds pending transactions awaiting inclusion in a
// block.
package mempool

import (
	"sync"

	"github.com/ardanlabs/gambit/foundation/blockchain/address"
	"github.com/ardanlabs/gambit/foundation/blockchain/transaction"
)

type key struct {
	from  address.Address
	nonce uint64
}

// Mempool is a set of pending transactions, deduplicated by
// (sender, nonce): a resubmission with the same nonce replaces the
// previously pooled transaction rather than queuing alongside it. The
// pool is otherwise FIFO: PickAll returns transactions in the order
// they were first inserted, matching the original's vector-backed
// mempool.
type Mempool struct {
	mu    sync.RWMutex
	txs   map[key]transaction.Transaction
	order []key
}

// New constructs an empty Mempool.
func New() *Mempool {
	return &Mempool{txs: make(map[key]transaction.Transaction)}
}

// Upsert inserts tx, replacing any previously pooled transaction from
// the same sender with the same nonce. A replacement keeps its
// original position in insertion order.
func (m *Mempool) Upsert(tx transaction.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{tx.From, tx.Nonce}
	if _, exists := m.txs[k]; !exists {
		m.order = append(m.order, k)
	}
	m.txs[k] = tx
}

// Remove drops the pooled transaction for sender/nonce, if any.
func (m *Mempool) Remove(from address.Address, nonce uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{from, nonce}
	if _, exists := m.txs[k]; !exists {
		return
	}
	delete(m.txs, k)

	for i, o := range m.order {
		if o == k {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of pending transactions.
func (m *Mempool) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.txs)
}

// PickAll returns every pending transaction in insertion order, the
// order the mining builder applies them in.
func (m *Mempool) PickAll() []transaction.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txs := make([]transaction.Transaction, 0, len(m.order))
	for _, k := range m.order {
		txs = append(txs, m.txs[k])
	}

	return txs
}
