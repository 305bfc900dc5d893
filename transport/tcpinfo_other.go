//go:build !linux

package transport

func getTCPInfo(fd int) (*TCPInfo, error) {
	return nil, ErrTCPInfoUnsupported
}

func tcpInfoSupported() bool { return false }
