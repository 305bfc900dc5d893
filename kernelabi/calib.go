package kernelabi

import (
	"fmt"

	"github.com/westonvoglesonger/cortex/wire"
)

// CalibrationMagic is the calibration envelope's magic number, shared with
// the wire frame envelope's 'CRTX' constant.
const CalibrationMagic uint32 = 0x43525458

// MaxCalibrationPayload caps a single calibration payload at 256 MiB (§3.3).
const MaxCalibrationPayload = 256 * 1024 * 1024

// calibHeaderLen is magic(4) + envelope_version(1) + abi_version(1) +
// reserved(2) + payload_size(4).
const calibHeaderLen = 12

// CalibrationEnvelope wraps an opaque calibration payload with the
// versioning the loader uses to reject calibration state from an
// incompatible ABI or envelope format.
type CalibrationEnvelope struct {
	EnvelopeVersion uint8
	ABIVersion      uint8
	Payload         []byte
}

// Encode serializes the envelope, little-endian throughout (§3.3).
func (e CalibrationEnvelope) Encode() ([]byte, error) {
	if len(e.Payload) > MaxCalibrationPayload {
		return nil, fmt.Errorf("kernelabi: calibration payload %d exceeds %d byte cap", len(e.Payload), MaxCalibrationPayload)
	}
	buf := make([]byte, calibHeaderLen+len(e.Payload))
	wire.PutU32(buf[0:4], CalibrationMagic)
	buf[4] = e.EnvelopeVersion
	buf[5] = e.ABIVersion
	wire.PutU32(buf[8:12], uint32(len(e.Payload)))
	copy(buf[calibHeaderLen:], e.Payload)
	return buf, nil
}

// DecodeCalibrationEnvelope parses and validates an envelope, rejecting a
// bad magic, an oversized payload, or a length mismatch.
func DecodeCalibrationEnvelope(buf []byte) (CalibrationEnvelope, error) {
	if len(buf) < calibHeaderLen {
		return CalibrationEnvelope{}, fmt.Errorf("kernelabi: calibration envelope too short")
	}
	if wire.U32(buf[0:4]) != CalibrationMagic {
		return CalibrationEnvelope{}, fmt.Errorf("kernelabi: invalid calibration magic")
	}
	payloadSize := wire.U32(buf[8:12])
	if payloadSize > MaxCalibrationPayload {
		return CalibrationEnvelope{}, fmt.Errorf("kernelabi: calibration payload %d exceeds %d byte cap", payloadSize, MaxCalibrationPayload)
	}
	if len(buf) != calibHeaderLen+int(payloadSize) {
		return CalibrationEnvelope{}, fmt.Errorf("kernelabi: calibration envelope length mismatch")
	}
	e := CalibrationEnvelope{
		EnvelopeVersion: buf[4],
		ABIVersion:      buf[5],
	}
	if payloadSize > 0 {
		e.Payload = append([]byte(nil), buf[calibHeaderLen:]...)
	}
	return e, nil
}
