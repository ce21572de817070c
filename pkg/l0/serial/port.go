// Package serial runs the frame link over a UART.
package serial

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"

	"github.com/robotalks/keylight/pkg/l0/proto"
)

// Defaults of the host UART.
const (
	DefaultBaud    = 115200
	DefaultTimeout = 5 * time.Millisecond
)

// Config describes the UART.
type Config struct {
	Name string
	Baud int
	// Timeout is the silence after which a partial frame is dropped.
	Timeout time.Duration
}

// Port is an opened UART. A read timing out returns 0 bytes and no error.
type Port struct {
	port io.ReadWriteCloser
}

// Open opens the UART.
func Open(conf Config) (*Port, error) {
	if conf.Baud <= 0 {
		conf.Baud = DefaultBaud
	}
	if conf.Timeout <= 0 {
		conf.Timeout = DefaultTimeout
	}
	p, err := serial.OpenPort(&serial.Config{
		Name:        conf.Name,
		Baud:        conf.Baud,
		ReadTimeout: conf.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %v", conf.Name, err)
	}
	return &Port{port: p}, nil
}

// Read implements io.Reader.
func (p *Port) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if n == 0 && err == io.EOF {
		err = nil
	}
	return n, err
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close implements io.Closer.
func (p *Port) Close() error {
	return p.port.Close()
}

// NewLink creates a frame link reading with the port timeout.
func (p *Port) NewLink(h proto.MessageHandler) *proto.Link {
	l := proto.NewLink(p)
	l.ReadTimeout = true
	l.Handler = h
	return l
}
