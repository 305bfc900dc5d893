package transport

import (
	"fmt"
	"net"
	"time"
)

// DialTCP connects to addr, applies TCP_NODELAY/SO_KEEPALIVE and platform
// SIGPIPE hardening, and returns a ready Transport (§4.2 "TCP client").
func DialTCP(addr string, dialTimeout time.Duration) (Transport, error) {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, ErrConnectionReset)
	}
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("transport: dial %s: not a TCP connection", addr)
	}
	if err := tc.SetNoDelay(true); err != nil {
		tc.Close()
		return nil, errmap(err)
	}
	if err := tc.SetKeepAlive(true); err != nil {
		tc.Close()
		return nil, errmap(err)
	}
	if err := hardenTCPConn(tc); err != nil {
		tc.Close()
		return nil, err
	}
	return Wrap(tc), nil
}
