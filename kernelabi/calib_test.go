package kernelabi

import (
	"bytes"
	"testing"
)

func TestCalibrationEnvelopeRoundTrip(t *testing.T) {
	e := CalibrationEnvelope{EnvelopeVersion: 1, ABIVersion: Version, Payload: []byte{1, 2, 3, 4, 5}}
	buf, err := e.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeCalibrationEnvelope(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.EnvelopeVersion != e.EnvelopeVersion || got.ABIVersion != e.ABIVersion {
		t.Fatalf("version mismatch: got %+v", got)
	}
	if !bytes.Equal(got.Payload, e.Payload) {
		t.Fatalf("payload mismatch: got %v, want %v", got.Payload, e.Payload)
	}
}

func TestCalibrationEnvelopeBadMagic(t *testing.T) {
	buf := make([]byte, calibHeaderLen)
	_, err := DecodeCalibrationEnvelope(buf)
	if err == nil {
		t.Fatal("expected error for zeroed (bad-magic) buffer")
	}
}

func TestCalibrationEnvelopeOversizedRejected(t *testing.T) {
	e := CalibrationEnvelope{Payload: make([]byte, MaxCalibrationPayload+1)}
	if _, err := e.Encode(); err == nil {
		t.Fatal("expected oversized payload to be rejected")
	}
}

func TestCalibrationEnvelopeTruncated(t *testing.T) {
	e := CalibrationEnvelope{EnvelopeVersion: 1, ABIVersion: Version, Payload: []byte{9, 9, 9}}
	buf, err := e.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := DecodeCalibrationEnvelope(buf[:len(buf)-1]); err == nil {
		t.Fatal("expected error decoding truncated envelope")
	}
}
