package scheduler

import (
	"github.com/westonvoglesonger/cortex/kernelabi"
)

// InProcessRunner dispatches each window directly to a kernelabi.Kernel in
// the harness's own process, with no device-side timing (§4.4 "in-process
// execution path").
type InProcessRunner struct {
	kernel      kernelabi.Kernel
	windowBytes int
}

// NewInProcessRunner wraps an already-Init'd kernel. windowBytes is the
// expected input/output buffer length, as reported by the kernel's
// InitResult.
func NewInProcessRunner(kernel kernelabi.Kernel, windowBytes int) *InProcessRunner {
	return &InProcessRunner{kernel: kernel, windowBytes: windowBytes}
}

// RunWindow encodes the window to bytes, calls the kernel's Process, and
// returns its output with all device-timing fields zero.
func (r *InProcessRunner) RunWindow(input []float32) (output []byte, tin, tstart, tend, tfirstTx, tlastTx uint64, err error) {
	in, err := EncodeWindowFloat32(input)
	if err != nil {
		return nil, 0, 0, 0, 0, 0, err
	}
	out := make([]byte, r.windowBytes)
	if err := r.kernel.Process(in, out); err != nil {
		return nil, 0, 0, 0, 0, 0, err
	}
	return out, 0, 0, 0, 0, 0, nil
}
