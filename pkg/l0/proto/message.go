package proto

import (
	"io"
)

const (
	// Sync1 is the first start-of-frame marker.
	Sync1 byte = 0x7A
	// Sync2 is the second start-of-frame marker.
	Sync2 byte = 0x1D
	// MaxPayloadSize is the largest accepted payload.
	MaxPayloadSize = 230
	// HeaderSize is the number of bytes preceding the payload.
	HeaderSize = 5
)

// MessageID defines the type of message id.
type MessageID byte

// Next calculates the next message id. 0 is never used, so the first frame
// after start-up is never taken as a duplicate.
func (id MessageID) Next() MessageID {
	n := byte(id) + 1
	if n == 0 {
		n = 1
	}
	return MessageID(n)
}

// Message contains the information of a parsed frame.
type Message struct {
	Command byte
	ID      MessageID
	Payload []byte
}

// Bytes returns encoded bytes for sending.
func (m *Message) Bytes() []byte {
	b := make([]byte, HeaderSize+len(m.Payload))
	copy(b, m.header())
	copy(b[HeaderSize:], m.Payload)
	return b
}

// WriteTo writes the encoded frame with a single Write.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	if len(m.Payload) > MaxPayloadSize {
		return 0, ErrPayloadTooLarge
	}
	n, err := w.Write(m.Bytes())
	return int64(n), err
}

func (m *Message) header() []byte {
	return []byte{Sync1, Sync2, m.Command, byte(m.ID), byte(len(m.Payload))}
}
