// Package protocol implements the host/adapter wire protocol state machine
// of §4.3: handshake, per-window request/response, ping, teardown, bounded
// retries, fast-fail on protocol violation.
package protocol

import (
	"fmt"

	"github.com/westonvoglesonger/cortex/cortexerr"
	"github.com/westonvoglesonger/cortex/wire"
)

// ABIVersion is the single kernel ABI version this protocol speaks (§3.5).
const ABIVersion uint8 = 3

const (
	nameFieldLen   = 32
	specURIFieldLen = 32
	configURIFieldLen = 64
)

// Hello is the adapter's (or spawned child's) handshake announcement.
type Hello struct {
	BootID           uint32
	AdapterName      string
	ABIVersion       uint8
	MaxWindowSamples uint32
	MaxChannels      uint32
	SpecURIs         []string
}

func padded(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

func unpadded(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// Encode serializes a Hello payload.
func (h Hello) Encode() []byte {
	numKernels := len(h.SpecURIs)
	buf := make([]byte, 4+nameFieldLen+1+1+2+4+4+numKernels*specURIFieldLen)
	off := 0
	wire.PutU32(buf[off:], h.BootID)
	off += 4
	copy(buf[off:off+nameFieldLen], padded(h.AdapterName, nameFieldLen))
	off += nameFieldLen
	buf[off] = h.ABIVersion
	off++
	buf[off] = byte(numKernels)
	off++
	wire.PutU16(buf[off:], 0) // reserved
	off += 2
	wire.PutU32(buf[off:], h.MaxWindowSamples)
	off += 4
	wire.PutU32(buf[off:], h.MaxChannels)
	off += 4
	for _, uri := range h.SpecURIs {
		copy(buf[off:off+specURIFieldLen], padded(uri, specURIFieldLen))
		off += specURIFieldLen
	}
	return buf
}

// DecodeHello parses a Hello payload.
func DecodeHello(buf []byte) (Hello, error) {
	const fixedLen = 4 + nameFieldLen + 1 + 1 + 2 + 4 + 4
	if len(buf) < fixedLen {
		return Hello{}, fmt.Errorf("protocol: hello payload too short")
	}
	h := Hello{}
	off := 0
	h.BootID = wire.U32(buf[off:])
	off += 4
	h.AdapterName = unpadded(buf[off : off+nameFieldLen])
	off += nameFieldLen
	h.ABIVersion = buf[off]
	off++
	numKernels := int(buf[off])
	off++
	off += 2 // reserved
	h.MaxWindowSamples = wire.U32(buf[off:])
	off += 4
	h.MaxChannels = wire.U32(buf[off:])
	off += 4
	want := fixedLen + numKernels*specURIFieldLen
	if len(buf) != want {
		return Hello{}, fmt.Errorf("protocol: hello payload length %d, want %d", len(buf), want)
	}
	h.SpecURIs = make([]string, numKernels)
	for i := 0; i < numKernels; i++ {
		h.SpecURIs[i] = unpadded(buf[off : off+specURIFieldLen])
		off += specURIFieldLen
	}
	return h, nil
}

// ConfigMsg is the host's response to a validated Hello (§4.3.1).
type ConfigMsg struct {
	SpecURI            string
	SampleRateHz       uint32
	WindowSamples      uint32
	HopSamples         uint32
	Channels           uint32
	DType              uint8
	PluginParams       []byte
	CalibrationState   []byte
}

// Encode serializes a ConfigMsg payload.
func (c ConfigMsg) Encode() []byte {
	buf := make([]byte, configURIFieldLen+4+4+4+4+1+3+4+len(c.PluginParams)+4+len(c.CalibrationState))
	off := 0
	copy(buf[off:off+configURIFieldLen], padded(c.SpecURI, configURIFieldLen))
	off += configURIFieldLen
	wire.PutU32(buf[off:], c.SampleRateHz)
	off += 4
	wire.PutU32(buf[off:], c.WindowSamples)
	off += 4
	wire.PutU32(buf[off:], c.HopSamples)
	off += 4
	wire.PutU32(buf[off:], c.Channels)
	off += 4
	buf[off] = c.DType
	off++
	off += 3 // reserved
	wire.PutU32(buf[off:], uint32(len(c.PluginParams)))
	off += 4
	copy(buf[off:], c.PluginParams)
	off += len(c.PluginParams)
	wire.PutU32(buf[off:], uint32(len(c.CalibrationState)))
	off += 4
	copy(buf[off:], c.CalibrationState)
	return buf
}

// DecodeConfigMsg parses a ConfigMsg payload.
func DecodeConfigMsg(buf []byte) (ConfigMsg, error) {
	const fixedLen = configURIFieldLen + 4 + 4 + 4 + 4 + 1 + 3 + 4
	if len(buf) < fixedLen {
		return ConfigMsg{}, fmt.Errorf("protocol: config payload too short")
	}
	c := ConfigMsg{}
	off := 0
	c.SpecURI = unpadded(buf[off : off+configURIFieldLen])
	off += configURIFieldLen
	c.SampleRateHz = wire.U32(buf[off:])
	off += 4
	c.WindowSamples = wire.U32(buf[off:])
	off += 4
	c.HopSamples = wire.U32(buf[off:])
	off += 4
	c.Channels = wire.U32(buf[off:])
	off += 4
	c.DType = buf[off]
	off++
	off += 3
	if len(buf) < off+4 {
		return ConfigMsg{}, fmt.Errorf("protocol: config payload truncated before plugin_params_len")
	}
	paramsLen := int(wire.U32(buf[off:]))
	off += 4
	if len(buf) < off+paramsLen+4 {
		return ConfigMsg{}, fmt.Errorf("protocol: config payload truncated in plugin_params")
	}
	c.PluginParams = append([]byte(nil), buf[off:off+paramsLen]...)
	off += paramsLen
	calibLen := int(wire.U32(buf[off:]))
	off += 4
	if len(buf) != off+calibLen {
		return ConfigMsg{}, fmt.Errorf("protocol: config payload length mismatch in calibration_state")
	}
	c.CalibrationState = append([]byte(nil), buf[off:off+calibLen]...)
	return c, nil
}

// ConfigAck is the adapter's reply after calling init (§4.3.1).
type ConfigAck struct {
	OutputWindowSamples uint32
	OutputChannels      uint32
	Status              uint8
}

func (a ConfigAck) Encode() []byte {
	buf := make([]byte, 9)
	wire.PutU32(buf[0:], a.OutputWindowSamples)
	wire.PutU32(buf[4:], a.OutputChannels)
	buf[8] = a.Status
	return buf
}

func DecodeConfigAck(buf []byte) (ConfigAck, error) {
	if len(buf) != 9 {
		return ConfigAck{}, fmt.Errorf("protocol: config_ack payload length %d, want 9", len(buf))
	}
	return ConfigAck{
		OutputWindowSamples: wire.U32(buf[0:]),
		OutputChannels:      wire.U32(buf[4:]),
		Status:              buf[8],
	}, nil
}

// WindowReq carries one window's input samples (§4.3.2).
type WindowReq struct {
	TinNs uint64
	Input []byte
}

func (r WindowReq) Encode() []byte {
	buf := make([]byte, 8+len(r.Input))
	wire.PutU64(buf[0:], r.TinNs)
	copy(buf[8:], r.Input)
	return buf
}

func DecodeWindowReq(buf []byte) (WindowReq, error) {
	if len(buf) < 8 {
		return WindowReq{}, fmt.Errorf("protocol: window_req payload too short")
	}
	return WindowReq{
		TinNs: wire.U64(buf[0:]),
		Input: append([]byte(nil), buf[8:]...),
	}, nil
}

// Result carries one window's output and adapter-side timing (§4.3.2).
type Result struct {
	Tin      uint64
	Tstart   uint64
	Tend     uint64
	TfirstTx uint64
	TlastTx  uint64
	Status   uint8
	Output   []byte
}

func (r Result) Encode() []byte {
	buf := make([]byte, 8*5+1+3+len(r.Output))
	off := 0
	wire.PutU64(buf[off:], r.Tin)
	off += 8
	wire.PutU64(buf[off:], r.Tstart)
	off += 8
	wire.PutU64(buf[off:], r.Tend)
	off += 8
	wire.PutU64(buf[off:], r.TfirstTx)
	off += 8
	wire.PutU64(buf[off:], r.TlastTx)
	off += 8
	buf[off] = r.Status
	off += 1 + 3
	copy(buf[off:], r.Output)
	return buf
}

func DecodeResult(buf []byte) (Result, error) {
	const fixedLen = 8*5 + 1 + 3
	if len(buf) < fixedLen {
		return Result{}, fmt.Errorf("protocol: result payload too short")
	}
	r := Result{}
	off := 0
	r.Tin = wire.U64(buf[off:])
	off += 8
	r.Tstart = wire.U64(buf[off:])
	off += 8
	r.Tend = wire.U64(buf[off:])
	off += 8
	r.TfirstTx = wire.U64(buf[off:])
	off += 8
	r.TlastTx = wire.U64(buf[off:])
	off += 8
	r.Status = buf[off]
	off += 1 + 3
	r.Output = append([]byte(nil), buf[off:]...)
	return r, nil
}

// Ping/Pong carry drift-tracking timestamps (§4.3.3).
type Ping struct {
	HostTxNs uint64
}

func (p Ping) Encode() []byte {
	buf := make([]byte, 8)
	wire.PutU64(buf, p.HostTxNs)
	return buf
}

func DecodePing(buf []byte) (Ping, error) {
	if len(buf) != 8 {
		return Ping{}, fmt.Errorf("protocol: ping payload length %d, want 8", len(buf))
	}
	return Ping{HostTxNs: wire.U64(buf)}, nil
}

type Pong struct {
	HostTxNs    uint64
	AdapterRxNs uint64
	AdapterTxNs uint64
	HostRxNs    uint64
}

func (p Pong) Encode() []byte {
	buf := make([]byte, 32)
	wire.PutU64(buf[0:], p.HostTxNs)
	wire.PutU64(buf[8:], p.AdapterRxNs)
	wire.PutU64(buf[16:], p.AdapterTxNs)
	wire.PutU64(buf[24:], p.HostRxNs)
	return buf
}

func DecodePong(buf []byte) (Pong, error) {
	if len(buf) != 32 {
		return Pong{}, fmt.Errorf("protocol: pong payload length %d, want 32", len(buf))
	}
	return Pong{
		HostTxNs:    wire.U64(buf[0:]),
		AdapterRxNs: wire.U64(buf[8:]),
		AdapterTxNs: wire.U64(buf[16:]),
		HostRxNs:    wire.U64(buf[24:]),
	}, nil
}

// ErrorMsg carries a fatal error description, sendable by either side.
type ErrorMsg struct {
	Kind    cortexerr.Kind
	Message string
}

func (e ErrorMsg) Encode() []byte {
	msg := []byte(e.Message)
	buf := make([]byte, 1+2+len(msg))
	buf[0] = uint8(e.Kind)
	wire.PutU16(buf[1:], uint16(len(msg)))
	copy(buf[3:], msg)
	return buf
}

func DecodeErrorMsg(buf []byte) (ErrorMsg, error) {
	if len(buf) < 3 {
		return ErrorMsg{}, fmt.Errorf("protocol: error payload too short")
	}
	n := int(wire.U16(buf[1:3]))
	if len(buf) != 3+n {
		return ErrorMsg{}, fmt.Errorf("protocol: error payload length mismatch")
	}
	return ErrorMsg{
		Kind:    cortexerr.Kind(buf[0]),
		Message: string(buf[3 : 3+n]),
	}, nil
}
