// Package miner drives periodic block production against a chain: a
// ticker-based loop, plus GetWork/SubmitWork hooks for external miners
// (or the RPC surface) to drive mining out of band.
package miner

import (
	"sync"
	"time"

	"github.com/ardanlabs/gambit/foundation/blockchain/block"
	"github.com/ardanlabs/gambit/foundation/blockchain/chain"
)

// EventHandler receives formatted progress/diagnostic strings.
type EventHandler func(v string, args ...any)

// Now returns the current time as a unix timestamp; swappable in
// tests.
type Now func() uint64

// Broadcaster announces a newly mined block to the network.
type Broadcaster interface {
	BroadcastBlock(b block.Block)
}

// Miner periodically mines a block from the chain's mempool.
type Miner struct {
	chain       *chain.Blockchain
	broadcaster Broadcaster
	evHandler   EventHandler
	now         Now

	mu       sync.Mutex
	interval time.Duration
	running  bool
	shut     chan struct{}
	wg       sync.WaitGroup
}

// New constructs a Miner with the given mining interval. A nil
// broadcaster or evHandler is replaced with a no-op.
func New(bc *chain.Blockchain, broadcaster Broadcaster, interval time.Duration, evHandler EventHandler, now Now) *Miner {
	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}
	if now == nil {
		now = func() uint64 { return uint64(time.Now().UTC().Unix()) }
	}
	return &Miner{
		chain:       bc,
		broadcaster: broadcaster,
		evHandler:   evHandler,
		now:         now,
		interval:    interval,
	}
}

// Start begins the periodic mining loop. Safe to call when already
// running: it is a no-op.
func (m *Miner) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true
	m.shut = make(chan struct{})

	m.wg.Add(1)
	go m.loop(m.shut)
}

// Stop halts the mining loop and waits for it to exit.
func (m *Miner) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	shut := m.shut
	m.mu.Unlock()

	close(shut)
	m.wg.Wait()
}

// SetInterval changes the mining interval taking effect on the next
// tick.
func (m *Miner) SetInterval(ms uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.interval = time.Duration(ms) * time.Millisecond
}

func (m *Miner) loop(shut chan struct{}) {
	defer m.wg.Done()

	m.evHandler("miner: loop: started")
	defer m.evHandler("miner: loop: completed")

	for {
		m.mu.Lock()
		interval := m.interval
		m.mu.Unlock()

		ticker := time.NewTicker(interval)

		select {
		case <-shut:
			ticker.Stop()
			return
		case <-ticker.C:
			ticker.Stop()
			if m.chain.MempoolLen() == 0 {
				continue
			}
			b, err := m.chain.MineBlock(m.now())
			if err != nil {
				m.evHandler("miner: loop: MineBlock: ERROR: %s", err)
				continue
			}
			m.evHandler("miner: loop: mined block %d", b.Index)
			if m.broadcaster != nil {
				m.broadcaster.BroadcastBlock(b)
			}
		}
	}
}

// GetWork returns a fresh, unappended candidate block built from the
// chain's current mempool and state, without mutating either.
func (m *Miner) GetWork() block.Block {
	return m.chain.BuildCandidate(m.now())
}

// SubmitWork appends an externally mined block to the chain.
func (m *Miner) SubmitWork(b block.Block) bool {
	return m.chain.AddBlock(b) == nil
}
