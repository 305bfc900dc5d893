//go:build freebsd || dragonfly

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

// hardenTCPConn sets SO_NOSIGPIPE, available on FreeBSD/DragonFly like
// Darwin (§4.2).
func hardenTCPConn(conn *net.TCPConn) error {
	fd := netfd.GetFdFromConn(conn)
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_NOSIGPIPE, 1)
}
