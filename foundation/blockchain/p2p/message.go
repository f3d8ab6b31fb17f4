package p2p

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MessageType identifies the kind of payload carried by a Message.
type MessageType uint8

const (
	MessageHello MessageType = iota
	MessageNewTx
	MessageNewBlock
	MessageGetBlocks
	MessageBlocksResponse
	MessagePing
	MessagePong
)

// maxPayload bounds a single message so a misbehaving peer cannot make
// us allocate an unbounded buffer from a forged length prefix.
const maxPayload = 16 << 20

// Message is one framed unit on the wire: a 1-byte type, a 4-byte
// big-endian length, and the payload.
type Message struct {
	Type    MessageType
	Payload []byte
}

// WriteTo encodes m onto w.
func (m Message) WriteTo(w io.Writer) (int64, error) {
	header := make([]byte, 5)
	header[0] = byte(m.Type)
	binary.BigEndian.PutUint32(header[1:], uint32(len(m.Payload)))

	n, err := w.Write(header)
	if err != nil {
		return int64(n), err
	}
	n2, err := w.Write(m.Payload)
	return int64(n + n2), err
}

// ReadMessage decodes one framed message from r, blocking until a full
// frame arrives or the connection errors.
func ReadMessage(r io.Reader) (Message, error) {
	header := make([]byte, 5)
	if _, err := io.ReadFull(r, header); err != nil {
		return Message{}, err
	}

	length := binary.BigEndian.Uint32(header[1:])
	if length > maxPayload {
		return Message{}, fmt.Errorf("p2p: message length %d exceeds maximum", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Message{}, err
	}

	return Message{Type: MessageType(header[0]), Payload: payload}, nil
}
