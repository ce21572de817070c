package proto

import (
	"context"
	"io"
	"os"
	"sync"
	"time"
)

// MessageHandler is called when a message is received.
// The message is only valid during the call.
type MessageHandler interface {
	HandleMessage(context.Context, *Message)
}

// HandleMessageFunc is func type of MessageHandler.
type HandleMessageFunc func(context.Context, *Message)

// HandleMessage implements MessageHandler.
func (f HandleMessageFunc) HandleMessage(ctx context.Context, msg *Message) {
	f(ctx, msg)
}

// Sender sends frames to the peer.
type Sender interface {
	Send(cmd byte, payload []byte, retries int) error
}

// Transmitter writes frames. Each frame takes a new message id and is
// written retries times back to back.
type Transmitter struct {
	Writer io.Writer

	id   MessageID
	lock sync.Mutex
}

// Send implements Sender. A retries below 1 writes the frame once.
func (t *Transmitter) Send(cmd byte, payload []byte, retries int) error {
	if len(payload) > MaxPayloadSize {
		return ErrPayloadTooLarge
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	t.id = t.id.Next()
	msg := Message{Command: cmd, ID: t.id, Payload: payload}
	for i := 0; i < retries || i == 0; i++ {
		if _, err := msg.WriteTo(t.Writer); err != nil {
			return err
		}
	}
	return nil
}

// Link receives and sends frames over a stream.
type Link struct {
	ReadWriter  io.ReadWriter
	Handler     MessageHandler
	Timeout     time.Duration
	ReadTimeout bool // set to true if ReadWriter already supports timeout with Read

	parser Parser
	tx     Transmitter
}

// NewLink creates a Link.
func NewLink(rw io.ReadWriter) *Link {
	return &Link{
		ReadWriter: rw,
		Timeout:    5 * time.Millisecond,
		tx:         Transmitter{Writer: rw},
	}
}

// Errors returns the receiving error counter.
func (l *Link) Errors() uint8 {
	return l.parser.Errors()
}

// Inc increments the receiving error counter.
func (l *Link) Inc() {
	l.parser.Inc()
}

// Send implements Sender.
func (l *Link) Send(cmd byte, payload []byte, retries int) error {
	return l.tx.Send(cmd, payload, retries)
}

// Run processes the Link in the foreground until ctx is done or the stream
// fails.
func (l *Link) Run(ctx context.Context) error {
	if l.ReadTimeout {
		buf := make([]byte, 1)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				n, err := l.ReadWriter.Read(buf)
				if err != nil {
					if !os.IsTimeout(err) {
						return err
					}
					l.parser.Silence()
				} else if n == 0 {
					l.parser.Silence()
				} else {
					l.consume(ctx, buf[0])
				}
			}
		}
	}

	byteCh, errCh := make(chan byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go l.readLoop(subCtx, byteCh, errCh)
	var silenceTimer <-chan time.Time
	for {
		select {
		case b := <-byteCh:
			l.consume(ctx, b)
			if l.parser.State().IsReceiving() {
				silenceTimer = time.After(l.Timeout)
			} else {
				silenceTimer = nil
			}
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		case <-silenceTimer:
			l.parser.Silence()
			silenceTimer = nil
		}
	}
}

func (l *Link) readLoop(ctx context.Context, byteCh chan byte, errCh chan error) {
	buf := make([]byte, 1)
	for {
		n, err := l.ReadWriter.Read(buf)
		if err != nil {
			errCh <- err
			return
		}
		if n == 0 {
			continue
		}
		select {
		case byteCh <- buf[0]:
		case <-ctx.Done():
			return
		}
	}
}

func (l *Link) consume(ctx context.Context, b byte) {
	if msg := l.parser.Parse(b); msg != nil {
		if h := l.Handler; h != nil {
			h.HandleMessage(ctx, msg)
		}
	}
}
