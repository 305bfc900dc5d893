//go:build darwin

package transport

import (
	"net"
	"syscall"

	"github.com/higebu/netfd"
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

// hardenTCPConn sets SO_NOSIGPIPE, BSD-derived systems' way of suppressing
// SIGPIPE on a broken-pipe send (§4.2: "SO_NOSIGPIPE on BSD-derived
// systems").
func hardenTCPConn(conn *net.TCPConn) error {
	fd := netfd.GetFdFromConn(conn)
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_NOSIGPIPE, 1)
}
