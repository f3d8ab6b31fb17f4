package p2p

import (
	"net"
	"sync"
)

type peerState int

const (
	peerNew peerState = iota
	peerRunning
	peerStopped
)

// Peer wraps one TCP connection to another node: a receive loop
// dispatching to a handler, and a mutex-guarded send path.
type Peer struct {
	conn       net.Conn
	remoteAddr string

	mu    sync.Mutex
	state peerState

	sendMu sync.Mutex
}

func newPeer(conn net.Conn) *Peer {
	return &Peer{
		conn:       conn,
		remoteAddr: conn.RemoteAddr().String(),
		state:      peerNew,
	}
}

// RemoteAddr returns the peer's remote network address.
func (p *Peer) RemoteAddr() string {
	return p.remoteAddr
}

// start begins the receive loop, invoking handler for every message
// decoded off the connection until it closes or errors.
func (p *Peer) start(handler func(Message)) {
	p.mu.Lock()
	if p.state != peerNew {
		p.mu.Unlock()
		return
	}
	p.state = peerRunning
	p.mu.Unlock()

	go func() {
		for {
			msg, err := ReadMessage(p.conn)
			if err != nil {
				p.stop()
				return
			}
			handler(msg)
		}
	}()
}

// send writes msg to the peer. Concurrent sends are serialized.
func (p *Peer) send(msg Message) error {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	_, err := msg.WriteTo(p.conn)
	return err
}

// stop closes the connection. Idempotent.
func (p *Peer) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == peerStopped {
		return
	}
	p.state = peerStopped
	p.conn.Close()
}
