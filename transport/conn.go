package transport

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/higebu/netfd"
)

// NetConn adapts a net.Conn into a Transport, tracking first/last
// send/receive byte counts and timestamps around every Read/Write. This
// bookkeeping only feeds Stats; the protocol layer
// owns frame parsing.
type NetConn struct {
	conn net.Conn

	mu           sync.Mutex
	closed       bool
	firstRxAt    int64
	lastRxAt     int64
	firstTxAt    int64
	lastTxAt     int64
	rxBytes      int64
	txBytes      int64
}

// Wrap builds a Transport around an already-connected net.Conn.
func Wrap(conn net.Conn) *NetConn {
	return &NetConn{conn: conn}
}

// Recv reads up to len(buf) bytes, applying timeout as a read deadline. A
// zero timeout blocks indefinitely (deadline cleared).
func (c *NetConn) Recv(buf []byte, timeout time.Duration) (int, error) {
	if timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return 0, errmap(err)
		}
	} else {
		if err := c.conn.SetReadDeadline(time.Time{}); err != nil {
			return 0, errmap(err)
		}
	}

	n, err := c.conn.Read(buf)
	if n > 0 {
		ts := nowMonotonicNS()
		c.mu.Lock()
		if c.firstRxAt == 0 {
			c.firstRxAt = int64(ts)
		}
		c.lastRxAt = int64(ts)
		c.rxBytes += int64(n)
		c.mu.Unlock()
	}
	if err != nil {
		return n, errmap(err)
	}
	return n, nil
}

// Send writes all of buf, retrying short writes until complete or an error
// occurs.
func (c *NetConn) Send(buf []byte) (int, error) {
	n, err := c.conn.Write(buf)
	if n > 0 {
		ts := nowMonotonicNS()
		c.mu.Lock()
		if c.firstTxAt == 0 {
			c.firstTxAt = int64(ts)
		}
		c.lastTxAt = int64(ts)
		c.txBytes += int64(n)
		c.mu.Unlock()
	}
	if err != nil {
		return n, errmap(err)
	}
	return n, nil
}

// Close releases the underlying connection. Idempotent.
func (c *NetConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// MonotonicNS returns this process's monotonic clock reading.
func (c *NetConn) MonotonicNS() uint64 {
	return nowMonotonicNS()
}

// Stats snapshots the byte/timestamp counters gathered so far, for ad-hoc
// diagnostics.
func (c *NetConn) Stats() (rxBytes, txBytes int64, firstRx, lastRx, firstTx, lastTx int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rxBytes, c.txBytes, c.firstRxAt, c.lastRxAt, c.firstTxAt, c.lastTxAt
}

// TCPInfo reports kernel-tracked TCP statistics for the wrapped connection,
// the transport-layer counterpart to the window-level timing the scheduler
// records: a remote adapter dialed over TCP (DialTCP/ListenTCP) can surface
// retransmits or RTT inflation that explain a deadline miss that protocol
// timing alone wouldn't.
func (c *NetConn) TCPInfo() (*TCPInfo, error) {
	tcpConn, ok := c.conn.(*net.TCPConn)
	if !ok {
		return nil, ErrTCPInfoUnsupported
	}
	if !tcpInfoSupported() {
		return nil, ErrTCPInfoUnsupported
	}
	fd := netfd.GetFdFromConn(tcpConn)
	return getTCPInfo(fd)
}

// errmap translates net/os errors into the transport package's taxonomy.
func errmap(err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return ErrConnectionReset
	}
	return errors.Join(ErrIO, err)
}
