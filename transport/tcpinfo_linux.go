//go:build linux

package transport

import (
	"syscall"
	"time"
	"unsafe"
)

// rawTCPInfo mirrors the memory layout of the Linux kernel's struct
// tcp_info (current as of kernel 5.17), field for field. Only the prefix
// needed through tcpi_total_retrans is declared: getsockopt(TCP_INFO) happily
// truncates into a shorter buffer on older kernels, and everything this
// package surfaces in TCPInfo lives in that prefix.
type rawTCPInfo struct {
	state       uint8
	caState     uint8
	retransmits uint8
	probes      uint8
	backoff     uint8
	options     uint8
	bitfield0   uint8
	bitfield1   uint8
	rto         uint32
	ato         uint32
	sndMSS      uint32
	rcvMSS      uint32
	unacked     uint32
	sacked      uint32
	lost        uint32
	retrans     uint32
	fackets     uint32
	_           uint32 // last_data_sent
	_           uint32 // last_ack_sent
	_           uint32 // last_data_recv
	_           uint32 // last_ack_recv
	pmtu        uint32
	rcvSsthresh uint32
	rtt         uint32
	rttvar      uint32
	sndSsthresh uint32
	sndCwnd     uint32
	_           uint32 // advmss
	_           uint32 // reordering
	_           uint32 // rcv_rtt
	_           uint32 // rcv_space
	totalRetrans uint32
}

var tcpStateNames = map[uint8]string{
	1:  "ESTABLISHED",
	2:  "SYN_SENT",
	3:  "SYN_RECV",
	4:  "FIN_WAIT1",
	5:  "FIN_WAIT2",
	6:  "TIME_WAIT",
	7:  "CLOSE",
	8:  "CLOSE_WAIT",
	9:  "LAST_ACK",
	10: "LISTEN",
	11: "CLOSING",
}

// getRawTCPInfo calls getsockopt(2) with TCP_INFO on fd directly, rather
// than going through golang.org/x/sys/unix, since that package has no
// binding for this particular sockopt.
func getRawTCPInfo(fd int) (*rawTCPInfo, error) {
	var value rawTCPInfo
	length := uint32(unsafe.Sizeof(value))

	_, _, errno := syscall.Syscall6(
		syscall.SYS_GETSOCKOPT,
		uintptr(fd),
		uintptr(syscall.SOL_TCP),
		uintptr(syscall.TCP_INFO),
		uintptr(unsafe.Pointer(&value)),
		uintptr(unsafe.Pointer(&length)),
		0,
	)
	if errno != 0 {
		return nil, errno
	}
	return &value, nil
}

func (r *rawTCPInfo) toTCPInfo() *TCPInfo {
	return &TCPInfo{
		State:        tcpStateNames[r.state],
		RTT:          time.Duration(r.rtt) * time.Microsecond,
		RTTVar:       time.Duration(r.rttvar) * time.Microsecond,
		RTO:          time.Duration(r.rto) * time.Microsecond,
		Retransmits:  uint32(r.retransmits),
		TotalRetrans: r.totalRetrans,
		CWnd:         r.sndCwnd,
		SSThreshold:  r.sndSsthresh,
		SndMSS:       r.sndMSS,
		RcvMSS:       r.rcvMSS,
	}
}

func getTCPInfo(fd int) (*TCPInfo, error) {
	raw, err := getRawTCPInfo(fd)
	if err != nil {
		return nil, err
	}
	return raw.toTCPInfo(), nil
}

func tcpInfoSupported() bool { return true }
