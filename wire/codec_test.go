package wire

import "testing"

func TestU16RoundTrip(t *testing.T) {
	buf := make([]byte, 2)
	PutU16(buf, 0xBEEF)
	if got := U16(buf); got != 0xBEEF {
		t.Fatalf("got %x, want 0xBEEF", got)
	}
}

func TestU32RoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	PutU32(buf, 0xDEADBEEF)
	if got := U32(buf); got != 0xDEADBEEF {
		t.Fatalf("got %x, want 0xDEADBEEF", got)
	}
}

func TestU64RoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	PutU64(buf, 0x0102030405060708)
	if got := U64(buf); got != 0x0102030405060708 {
		t.Fatalf("got %x, want 0x0102030405060708", got)
	}
}

func TestI64RoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	PutI64(buf, -12345)
	if got := I64(buf); got != -12345 {
		t.Fatalf("got %d, want -12345", got)
	}
}

func TestF32RoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	PutF32(buf, 3.14159)
	if got := F32(buf); got != float32(3.14159) {
		t.Fatalf("got %v, want 3.14159", got)
	}
}

func TestCRC32KnownVector(t *testing.T) {
	// "123456789" is the standard CRC-32/IEEE test vector: 0xCBF43926.
	if got := CRC32([]byte("123456789")); got != 0xCBF43926 {
		t.Fatalf("got %x, want 0xcbf43926", got)
	}
}
