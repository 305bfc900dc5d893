package kernelabi

import "fmt"

// IdentityKernel is a pure-Go reference Kernel that copies its input window
// straight to output, used as the in-process test fixture for the
// scheduler and protocol property tests (no cgo, no adapter process).
type IdentityKernel struct {
	windowBytes int
}

// NewIdentityKernel constructs an uninitialized identity kernel.
func NewIdentityKernel() *IdentityKernel {
	return &IdentityKernel{}
}

// Init validates that the configured dtype is known and records the
// expected per-window byte length.
func (k *IdentityKernel) Init(cfg Config) (InitResult, error) {
	if cfg.DType.Size() == 0 {
		return InitResult{}, fmt.Errorf("kernelabi: identity kernel: unrecognized dtype %v", cfg.DType)
	}
	k.windowBytes = int(cfg.WindowSamples) * int(cfg.Channels) * cfg.DType.Size()
	return InitResult{
		OutputWindowSamples: cfg.WindowSamples,
		OutputChannels:      cfg.Channels,
	}, nil
}

// Process copies in to out verbatim. Both slices must be exactly the
// window's byte length, matching what Init reported.
func (k *IdentityKernel) Process(in, out []byte) error {
	if len(in) != k.windowBytes || len(out) != k.windowBytes {
		return fmt.Errorf("kernelabi: identity kernel: buffer length mismatch (in=%d out=%d want=%d)", len(in), len(out), k.windowBytes)
	}
	copy(out, in)
	return nil
}

// Teardown is a no-op for the identity kernel.
func (k *IdentityKernel) Teardown() {}
