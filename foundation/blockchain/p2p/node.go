// Package p2p implements the gossip transport: framed TCP messages
// exchanged between nodes to propagate transactions and blocks.
package p2p

import (
	"net"
	"sync"

	"github.com/ardanlabs/gambit/foundation/blockchain/block"
	"github.com/ardanlabs/gambit/foundation/blockchain/transaction"
)

// EventHandler receives formatted progress/diagnostic strings, the
// same shape the teacher's worker package feeds into
// foundation/events. Nil is a valid no-op handler.
type EventHandler func(v string, args ...any)

// Chain is the subset of chain.Blockchain the P2P layer drives.
type Chain interface {
	ValidateTransaction(tx transaction.Transaction) error
	AddTransaction(tx transaction.Transaction) error
	AddBlock(b block.Block) error
}

// Node listens for inbound peer connections, dials outbound peers,
// and gossips transactions and blocks between them.
type Node struct {
	chain    Chain
	evHandler EventHandler
	listener net.Listener

	mu    sync.Mutex
	peers map[*Peer]struct{}

	seenMu sync.Mutex
	seen   map[string]struct{}
}

// New constructs a Node bound to chain but not yet listening. A nil
// evHandler is replaced with a no-op.
func New(chain Chain, evHandler EventHandler) *Node {
	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}
	return &Node{
		chain:     chain,
		evHandler: evHandler,
		peers:     make(map[*Peer]struct{}),
		seen:      make(map[string]struct{}),
	}
}

// Listen starts accepting inbound connections on addr.
func (n *Node) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	n.listener = ln

	go n.acceptLoop()
	return nil
}

// Addr returns the listener's bound address. Only valid after Listen.
func (n *Node) Addr() string {
	return n.listener.Addr().String()
}

// Stop closes the listener and every connected peer.
func (n *Node) Stop() {
	if n.listener != nil {
		n.listener.Close()
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for p := range n.peers {
		p.stop()
	}
}

// PeerCount reports the number of registered peers. A peer whose
// connection has closed stays registered until a broadcast to it fails.
func (n *Node) PeerCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.peers)
}

func (n *Node) acceptLoop() {
	for {
		conn, err := n.listener.Accept()
		if err != nil {
			return
		}
		n.adopt(conn)
	}
}

// ConnectTo dials addr and, on success, adopts the connection as a
// peer. Errors are returned rather than swallowed, unlike the
// original's best-effort dial, so the caller decides what to do with a
// failed dial.
func (n *Node) ConnectTo(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	n.adopt(conn)
	return nil
}

func (n *Node) adopt(conn net.Conn) {
	p := newPeer(conn)

	n.mu.Lock()
	n.peers[p] = struct{}{}
	n.mu.Unlock()

	p.start(func(msg Message) { n.dispatch(msg, p) })
}

func (n *Node) drop(p *Peer) {
	n.mu.Lock()
	delete(n.peers, p)
	n.mu.Unlock()
}

// BroadcastTx gossips tx to every connected peer and marks it seen so
// an echoed copy is not re-broadcast.
func (n *Node) BroadcastTx(tx transaction.Transaction) {
	n.markSeen(tx.Hash)
	n.broadcast(Message{Type: MessageNewTx, Payload: []byte(tx.ToHex())})
}

// BroadcastBlock gossips b to every connected peer and marks it seen
// so an echoed copy is not re-broadcast.
func (n *Node) BroadcastBlock(b block.Block) {
	n.markSeen(b.Hash)
	n.broadcast(Message{Type: MessageNewBlock, Payload: []byte(b.ToHex())})
}

func (n *Node) broadcast(msg Message) {
	n.mu.Lock()
	peers := make([]*Peer, 0, len(n.peers))
	for p := range n.peers {
		peers = append(peers, p)
	}
	n.mu.Unlock()

	for _, p := range peers {
		if err := p.send(msg); err != nil {
			n.drop(p)
		}
	}
}

func (n *Node) markSeen(hash string) bool {
	n.seenMu.Lock()
	defer n.seenMu.Unlock()

	if _, ok := n.seen[hash]; ok {
		return false
	}
	n.seen[hash] = struct{}{}
	return true
}

func (n *Node) dispatch(msg Message, from *Peer) {
	switch msg.Type {
	case MessageNewTx:
		n.handleNewTx(msg)
	case MessageNewBlock:
		n.handleNewBlock(msg, from)
	case MessagePing:
		_ = from.send(Message{Type: MessagePong})
	default:
		// GET_BLOCKS/BLOCKS_RESPONSE/HELLO have no core-critical handler
		// yet; unrecognized or unimplemented types are dropped, matching
		// the original's exception-swallowing dispatch.
	}
}

// handleNewTx re-broadcasts a transaction to every connected peer,
// the sending peer included, the first time it is seen, mirroring
// handleNewBlock's flood control; a
// duplicate arriving via a different path is dropped silently instead
// of being validated and rebroadcast again, which would otherwise
// loop forever between two peers that both hold a live connection to
// each other.
func (n *Node) handleNewTx(msg Message) {
	tx, err := transaction.FromHex(string(msg.Payload))
	if err != nil {
		return
	}

	if !n.markSeen(tx.Hash) {
		return
	}

	if err := n.chain.ValidateTransaction(tx); err != nil {
		return
	}
	if err := n.chain.AddTransaction(tx); err != nil {
		return
	}

	n.broadcast(Message{Type: MessageNewTx, Payload: msg.Payload})
}

// handleNewBlock re-broadcasts a block to every connected peer, the
// sending peer included, the first time it is seen, giving the network
// a multi-hop flood; a duplicate arriving via any path, the echo back
// to the sender included, is dropped silently.
func (n *Node) handleNewBlock(msg Message, from *Peer) {
	b, err := block.FromHex(string(msg.Payload))
	if err != nil {
		return
	}

	if !n.markSeen(b.Hash) {
		return
	}

	if err := n.chain.AddBlock(b); err != nil {
		n.evHandler("p2p: handleNewBlock: rejecting block from %s: %s", from.RemoteAddr(), err)
		return
	}

	n.broadcast(Message{Type: MessageNewBlock, Payload: msg.Payload})
}
