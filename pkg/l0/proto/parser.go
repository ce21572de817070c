package proto

import (
	"sync/atomic"
)

// SyncState indicates the state of communication.
type SyncState int

const (
	// SyncStateIdle means the parser is waiting for a start marker.
	SyncStateIdle SyncState = 0
	// SyncStateReceiving means a frame is partially received.
	SyncStateReceiving SyncState = 0x02
)

// IsReceiving indicates if it's in the middle of a frame.
func (s SyncState) IsReceiving() bool {
	return s&SyncStateReceiving != 0
}

type parseState int

const (
	stateSync1   parseState = iota // waiting for Sync1
	stateSync2                     // waiting for Sync2
	stateCmd                       // waiting for command code
	stateID                        // waiting for message id
	stateSize                      // waiting for payload size
	statePayload                   // waiting for payload data
)

// Parser parses bytes received.
// The returned message and its payload are reused by the next frame.
type Parser struct {
	state    parseState
	prevID   MessageID
	errors   atomic.Uint32
	msg      Message
	buf      [MaxPayloadSize]byte
	size     int
	received int
}

// State gets the current sync state.
func (p *Parser) State() SyncState {
	if p.state == stateSync1 {
		return SyncStateIdle
	}
	return SyncStateReceiving
}

// Errors returns the number of protocol errors, saturated at 255.
func (p *Parser) Errors() uint8 {
	return uint8(p.errors.Load())
}

// Inc increments the error counter. It never wraps.
func (p *Parser) Inc() {
	for {
		n := p.errors.Load()
		if n >= 0xff || p.errors.CompareAndSwap(n, n+1) {
			return
		}
	}
}

// Silence notifies the parser that the line has been quiet for too long.
func (p *Parser) Silence() {
	if p.state != stateSync1 {
		p.state = stateSync1
		p.Inc()
	}
}

// Parse consumes one byte. It returns a message when a frame is completed
// and the frame is not a repetition of the previous one.
func (p *Parser) Parse(b byte) *Message {
	switch p.state {
	case stateSync1:
		if b == Sync1 {
			p.state = stateSync2
		} else {
			p.Inc()
		}
	case stateSync2:
		if b == Sync2 {
			p.state = stateCmd
		} else {
			p.state = stateSync1
			p.Inc()
		}
	case stateCmd:
		p.msg.Command = b
		p.state = stateID
	case stateID:
		p.msg.ID = MessageID(b)
		p.state = stateSize
	case stateSize:
		p.size, p.received = int(b), 0
		if p.size > MaxPayloadSize {
			p.size = MaxPayloadSize
			p.Inc()
		}
		if p.size == 0 {
			return p.messageReady()
		}
		p.state = statePayload
	case statePayload:
		p.buf[p.received] = b
		p.received++
		if p.received >= p.size {
			return p.messageReady()
		}
	}
	return nil
}

func (p *Parser) messageReady() *Message {
	p.state = stateSync1
	if p.msg.ID == p.prevID {
		return nil
	}
	p.prevID = p.msg.ID
	p.msg.Payload = p.buf[:p.size]
	return &p.msg
}
