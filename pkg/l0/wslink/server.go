// Package wslink carries the frame link over websocket binary messages.
// It stands in for the UART when the controller runs in simulation.
package wslink

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/keylight/pkg/framework"
	"github.com/robotalks/keylight/pkg/l0/proto"
)

// Server accepts one host link at a time. A new connection replaces the
// current one. Server implements proto.Sender and command.Counter on
// behalf of the connected link.
type Server struct {
	Addr    string
	Handler proto.MessageHandler
	Timeout time.Duration

	lock sync.Mutex
	conn *websocket.Conn
	link *proto.Link
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(s.serve).ServeHTTP(w, r)
}

// Run implements framework.Runnable.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.Addr, Handler: s}
	glog.Infof("websocket link on %s", s.Addr)
	return fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
}

// Connected reports whether a host is connected.
func (s *Server) Connected() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.link != nil
}

// Send implements proto.Sender. Frames are discarded without a host.
func (s *Server) Send(cmd byte, payload []byte, retries int) error {
	if link := s.current(); link != nil {
		return link.Send(cmd, payload, retries)
	}
	if len(payload) > proto.MaxPayloadSize {
		return proto.ErrPayloadTooLarge
	}
	return nil
}

// Errors returns the receiving error counter of the connected link.
func (s *Server) Errors() uint8 {
	if link := s.current(); link != nil {
		return link.Errors()
	}
	return 0
}

// Inc increments the receiving error counter of the connected link.
func (s *Server) Inc() {
	if link := s.current(); link != nil {
		link.Inc()
	}
}

func (s *Server) current() *proto.Link {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.link
}

func (s *Server) serve(conn *websocket.Conn) {
	conn.PayloadType = websocket.BinaryFrame
	link := proto.NewLink(conn)
	link.Handler = s.Handler
	if s.Timeout > 0 {
		link.Timeout = s.Timeout
	}

	s.lock.Lock()
	prev := s.conn
	s.conn, s.link = conn, link
	s.lock.Unlock()
	if prev != nil {
		prev.Close()
	}

	glog.Infof("host connected from %s", conn.Request().RemoteAddr)
	err := link.Run(conn.Request().Context())
	glog.V(2).Infof("host link closed: %v", err)

	s.lock.Lock()
	if s.conn == conn {
		s.conn, s.link = nil, nil
	}
	s.lock.Unlock()
	conn.Close()
}
