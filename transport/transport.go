// Package transport implements the byte-oriented, per-call-timeout,
// monotonic-clock-sourced channel of §4.2: a spawned-child socket pair, a
// TCP client, and a TCP server (listen+accept). The two TCP variants harden
// their sockets with platform-appropriate socket options before handing
// back the host/adapter wire channel; the socket pair gets no extra options.
package transport

import (
	"errors"
	"time"
)

var (
	// ErrTimeout is returned by Recv when no data arrived within the given
	// timeout.
	ErrTimeout = errors.New("transport: timeout")
	// ErrConnectionReset is returned when the peer closed or reset the
	// connection.
	ErrConnectionReset = errors.New("transport: connection reset")
	// ErrIO wraps any other I/O failure.
	ErrIO = errors.New("transport: io error")
	// ErrTCPInfoUnsupported is returned by NetConn.TCPInfo when the
	// underlying connection isn't a *net.TCPConn or this platform has no
	// TCP_INFO accessor wired (see tcpinfo_linux.go / tcpinfo_other.go).
	ErrTCPInfoUnsupported = errors.New("transport: tcp_info unsupported")
)

// Transport is the byte-oriented bidirectional channel capability set of
// §4.2, shared by all three variants.
type Transport interface {
	// Recv reads up to len(buf) bytes, blocking at most timeout. A
	// zero timeout means block indefinitely.
	Recv(buf []byte, timeout time.Duration) (int, error)
	// Send writes all of buf or returns an error.
	Send(buf []byte) (int, error)
	// Close releases the OS handle. Idempotent.
	Close() error
	// MonotonicNS returns the current reading of this transport's
	// monotonic clock source, in nanoseconds.
	MonotonicNS() uint64
}

// Listener is the capability set of a listening (not-yet-accepted) TCP
// server transport: only Accept and Close, per §4.2 ("the listening
// transport has no recv/send").
type Listener interface {
	Accept(timeout time.Duration) (Transport, error)
	Close() error
}

// nowMonotonicNS reads the monotonic clock via time.Now's internal
// monotonic reading, by taking a duration since an arbitrary process-start
// epoch. Every Transport variant uses this same helper so device-clock and
// host-clock timestamps compose consistently within one process (§5:
// "never from wall clock").
func nowMonotonicNS() uint64 {
	return uint64(time.Since(processEpoch).Nanoseconds())
}

var processEpoch = time.Now()
