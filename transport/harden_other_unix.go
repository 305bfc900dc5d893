//go:build openbsd || netbsd

package transport

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

func controlReuseAddr(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// hardenTCPConn: neither OpenBSD nor NetBSD expose SO_NOSIGPIPE; Go's
// runtime already avoids process-fatal SIGPIPE on socket writes.
func hardenTCPConn(conn *net.TCPConn) error {
	return nil
}
