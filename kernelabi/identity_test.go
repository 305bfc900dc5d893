package kernelabi

import (
	"bytes"
	"testing"

	"github.com/westonvoglesonger/cortex/streamcfg"
)

func TestIdentityKernelProcess(t *testing.T) {
	k := NewIdentityKernel()
	cfg := Config{SampleRateHz: 256, WindowSamples: 4, Channels: 2, DType: streamcfg.Float32}
	res, err := k.Init(cfg)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if res.OutputWindowSamples != 4 || res.OutputChannels != 2 {
		t.Fatalf("unexpected InitResult: %+v", res)
	}

	in := make([]byte, 4*2*4)
	for i := range in {
		in[i] = byte(i)
	}
	out := make([]byte, len(in))
	if err := k.Process(in, out); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Fatalf("identity kernel did not copy input to output")
	}
	k.Teardown()
}

func TestIdentityKernelRejectsBadDType(t *testing.T) {
	k := NewIdentityKernel()
	_, err := k.Init(Config{SampleRateHz: 1, WindowSamples: 1, Channels: 1, DType: streamcfg.DType(255)})
	if err == nil {
		t.Fatal("expected error for unrecognized dtype")
	}
}

func TestIdentityKernelRejectsMismatchedBufferLen(t *testing.T) {
	k := NewIdentityKernel()
	if _, err := k.Init(Config{SampleRateHz: 1, WindowSamples: 4, Channels: 1, DType: streamcfg.Float32}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := k.Process(make([]byte, 4), make([]byte, 16)); err == nil {
		t.Fatal("expected error for mismatched buffer length")
	}
}
