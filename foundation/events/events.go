// Package events fans out string messages to the explorer's WebSocket
// subscribers. In gambitd it carries the miner's and the P2P node's
// diagnostic log lines.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Events maintains a mapping of subscriber id to channel so
// goroutines can register and receive events.
type Events struct {
	m  map[string]chan string
	mu sync.RWMutex
}

// New constructs an Events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]chan string),
	}
}

// Shutdown closes and removes every channel handed out by Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Acquire takes a unique subscriber id and returns a channel that can
// be used to receive events.
func (evt *Events) Acquire(id string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if exists {
		return ch
	}

	// Since a message is dropped if the websocket writer isn't ready
	// to receive, this buffer gives a slow writer some slack before a
	// block/tx event is lost.
	const messageBuffer = 100

	evt.m[id] = make(chan string, messageBuffer)
	return evt.m[id]
}

// Release closes and removes the channel handed out for id.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)
	return nil
}

// Send signals a message to every registered subscriber without
// blocking on a slow or absent receiver.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- s:
		default:
		}
	}
}

// SendEvent marshals kind/data as a JSON envelope and broadcasts it,
// the shape the explorer's WebSocket feed pushes to clients.
func (evt *Events) SendEvent(kind string, data any) {
	payload, err := json.Marshal(struct {
		Kind string `json:"kind"`
		Data any    `json:"data"`
	}{Kind: kind, Data: data})
	if err != nil {
		return
	}
	evt.Send(string(payload))
}
