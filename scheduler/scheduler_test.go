package scheduler

import (
	"os"
	"testing"
	"time"

	"github.com/westonvoglesonger/cortex/kernelabi"
	"github.com/westonvoglesonger/cortex/streamcfg"
	"github.com/westonvoglesonger/cortex/telemetry"
)

type fakeClock struct{ t uint64 }

func (c *fakeClock) NowNS() uint64 {
	c.t += 1000
	return c.t
}

func newTestConfig() streamcfg.Config {
	return streamcfg.Config{
		SampleRateHz:        100,
		WindowLengthSamples: 4,
		HopSamples:          2,
		Channels:            1,
		DType:               streamcfg.Float32,
		WarmupSeconds:       0,
	}
}

func TestSchedulerEmitsNoWindowBeforeFull(t *testing.T) {
	cfg := newTestConfig()
	k := kernelabi.NewIdentityKernel()
	if _, err := k.Init(kernelabi.Config{SampleRateHz: cfg.SampleRateHz, WindowSamples: cfg.WindowLengthSamples, HopSamples: cfg.HopSamples, Channels: cfg.Channels, DType: cfg.DType}); err != nil {
		t.Fatalf("kernel init: %v", err)
	}
	runner := NewInProcessRunner(k, int(cfg.WindowLengthSamples*cfg.Channels*4))
	sched := New(cfg, 1, "identity", runner, nil, &fakeClock{}, nil)

	if !sched.Feed([]float32{1, 2}, 2) {
		t.Fatal("Feed should not fail")
	}
	if sched.WindowIndex() != 0 {
		t.Fatalf("WindowIndex = %d, want 0 before ring is full", sched.WindowIndex())
	}
}

func TestSchedulerEmitsWindowOnceFull(t *testing.T) {
	cfg := newTestConfig()
	k := kernelabi.NewIdentityKernel()
	if _, err := k.Init(kernelabi.Config{SampleRateHz: cfg.SampleRateHz, WindowSamples: cfg.WindowLengthSamples, HopSamples: cfg.HopSamples, Channels: cfg.Channels, DType: cfg.DType}); err != nil {
		t.Fatalf("kernel init: %v", err)
	}
	runner := NewInProcessRunner(k, int(cfg.WindowLengthSamples*cfg.Channels*4))

	tmp, err := os.CreateTemp("", "cortex-telemetry-*.ndjson")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	defer os.Remove(tmp.Name())
	tmp.Close()

	sink, err := telemetry.Create(tmp.Name(), telemetry.SystemInfo{Host: "test"}, nil)
	if err != nil {
		t.Fatalf("telemetry.Create: %v", err)
	}
	defer sink.Close()

	sched := New(cfg, 1, "identity", runner, sink, &fakeClock{}, nil)

	sched.Feed([]float32{1, 2}, 2)
	if !sched.Feed([]float32{3, 4}, 2) {
		t.Fatal("Feed should not fail")
	}
	if sched.WindowIndex() != 1 {
		t.Fatalf("WindowIndex = %d, want 1 once ring is full", sched.WindowIndex())
	}

	sink.Close()
	f, err := os.Open(tmp.Name())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	records, err := telemetry.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (system_info + 1 window)", len(records))
	}
}

func TestSchedulerAbortsOnKernelError(t *testing.T) {
	cfg := newTestConfig()
	k := kernelabi.NewIdentityKernel()
	if _, err := k.Init(kernelabi.Config{SampleRateHz: cfg.SampleRateHz, WindowSamples: cfg.WindowLengthSamples, HopSamples: cfg.HopSamples, Channels: cfg.Channels, DType: cfg.DType}); err != nil {
		t.Fatalf("kernel init: %v", err)
	}
	// Undersized output buffer forces Process to error on every call.
	runner := NewInProcessRunner(k, 1)
	sched := New(cfg, 1, "identity", runner, nil, &fakeClock{}, nil)

	sched.Feed([]float32{1, 2}, 2)
	ok := sched.Feed([]float32{3, 4}, 2)
	if ok {
		t.Fatal("Feed should report failure once the kernel errors")
	}
	if sched.FatalErr == nil {
		t.Fatal("expected FatalErr to be set")
	}
	if sched.Feed([]float32{5, 6}, 2) {
		t.Fatal("Feed should keep failing once FatalErr is set")
	}
}

func TestWarmupMarking(t *testing.T) {
	cfg := newTestConfig()
	cfg.WarmupSeconds = 1 // at Fs=100, H=2 -> 50 hops/sec -> warmupHops=50
	k := kernelabi.NewIdentityKernel()
	if _, err := k.Init(kernelabi.Config{SampleRateHz: cfg.SampleRateHz, WindowSamples: cfg.WindowLengthSamples, HopSamples: cfg.HopSamples, Channels: cfg.Channels, DType: cfg.DType}); err != nil {
		t.Fatalf("kernel init: %v", err)
	}
	runner := NewInProcessRunner(k, int(cfg.WindowLengthSamples*cfg.Channels*4))
	sched := New(cfg, 1, "identity", runner, nil, &fakeClock{}, nil)

	if sched.warmupHops != 50 {
		t.Fatalf("warmupHops = %d, want 50", sched.warmupHops)
	}
}

func TestEncodeDecodeWindowFloat32RoundTrip(t *testing.T) {
	in := []float32{1.5, -2.25, 3.0, 0.0}
	buf, err := EncodeWindowFloat32(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeWindowFloat32(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("round trip mismatch at %d: got %v, want %v", i, out[i], in[i])
		}
	}
}

func TestSystemClockMonotonic(t *testing.T) {
	c := NewSystemClock()
	a := c.NowNS()
	time.Sleep(time.Millisecond)
	b := c.NowNS()
	if b <= a {
		t.Fatalf("expected strictly increasing monotonic reading, got a=%d b=%d", a, b)
	}
}
