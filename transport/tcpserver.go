package transport

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// TCPServer is the listening half of §4.2's "TCP server" variant: bind
// 0.0.0.0:port with SO_REUSEADDR and a deadline-based Accept timeout. The
// listen backlog is the Go runtime's default; it is not set to 1.
// Only Accept and Close are exposed; it is not itself a Transport.
type TCPServer struct {
	ln *net.TCPListener
}

// ListenTCP binds 0.0.0.0:port with SO_REUSEADDR. The backlog is the Go
// runtime's default, so more than one pending connection can queue; callers
// Accept a single adapter connection per run (§4.2).
func ListenTCP(port int) (*TCPServer, error) {
	lc := net.ListenConfig{
		Control: controlReuseAddr,
	}
	ln, err := lc.Listen(nil, "tcp", addrForPort(port))
	if err != nil {
		return nil, errmap(err)
	}
	tln, ok := ln.(*net.TCPListener)
	if !ok {
		ln.Close()
		return nil, ErrIO
	}
	return &TCPServer{ln: tln}, nil
}

func addrForPort(port int) string {
	return fmt.Sprintf("0.0.0.0:%d", port)
}

// Accept waits up to timeout for a single incoming connection, applies the
// same socket hardening as DialTCP, and returns it as a Transport. A zero
// timeout blocks indefinitely.
func (s *TCPServer) Accept(timeout time.Duration) (Transport, error) {
	if timeout > 0 {
		if err := s.ln.SetDeadline(time.Now().Add(timeout)); err != nil {
			return nil, errmap(err)
		}
	} else {
		if err := s.ln.SetDeadline(time.Time{}); err != nil {
			return nil, errmap(err)
		}
	}
	conn, err := s.ln.AcceptTCP()
	if err != nil {
		return nil, errmap(err)
	}
	if err := conn.SetNoDelay(true); err != nil {
		conn.Close()
		return nil, errmap(err)
	}
	if err := conn.SetKeepAlive(true); err != nil {
		conn.Close()
		return nil, errmap(err)
	}
	if err := hardenTCPConn(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return Wrap(conn), nil
}

// Addr reports the bound listen address, useful when port 0 was requested.
func (s *TCPServer) Addr() net.Addr {
	return s.ln.Addr()
}

// Close releases the listening socket. Idempotent.
func (s *TCPServer) Close() error {
	err := s.ln.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
