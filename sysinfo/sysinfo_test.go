package sysinfo

import "testing"

func TestGatherPopulatesBasics(t *testing.T) {
	info := Gather()
	if info.OS == "" {
		t.Fatal("OS should never be empty")
	}
	if info.CPUCount <= 0 {
		t.Fatalf("CPUCount = %d, want > 0", info.CPUCount)
	}
}
