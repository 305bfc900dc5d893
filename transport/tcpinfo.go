package transport

import "time"

// TCPInfo is a platform-independent view of a TCP socket's kernel-tracked
// statistics. It is populated by (*NetConn).TCPInfo when the wrapped
// connection is a *net.TCPConn on a platform this package supports; callers
// on other transports (the AF_UNIX pairs SpawnLocal uses) or other
// platforms get ErrTCPInfoUnsupported.
type TCPInfo struct {
	State        string        `json:"state"`
	RTT          time.Duration `json:"rtt"`
	RTTVar       time.Duration `json:"rttVar"`
	RTO          time.Duration `json:"rto"`
	Retransmits  uint32        `json:"retransmits"`
	TotalRetrans uint32        `json:"totalRetrans"`
	CWnd         uint32        `json:"cwnd"`
	SSThreshold  uint32        `json:"ssThreshold"`
	SndMSS       uint32        `json:"sndMSS"`
	RcvMSS       uint32        `json:"rcvMSS"`
}

// Warnings reports conditions worth flagging; currently only
// "retransTotal", when TotalRetrans is non-zero.
func (i *TCPInfo) Warnings() []string {
	if i == nil {
		return nil
	}
	var warns []string
	if i.TotalRetrans > 0 {
		warns = append(warns, "retransTotal")
	}
	return warns
}
