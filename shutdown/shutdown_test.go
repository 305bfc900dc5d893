package shutdown

import "testing"

func TestRequestedFalseInitially(t *testing.T) {
	c := New()
	defer c.Stop()
	if c.Requested() {
		t.Fatal("Requested() should be false on a fresh Coordinator")
	}
}

func TestRequestSetsFlag(t *testing.T) {
	c := New()
	defer c.Stop()
	c.Request()
	if !c.Requested() {
		t.Fatal("Requested() should be true after Request()")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	c := New()
	c.Stop()
	c.Stop()
}
