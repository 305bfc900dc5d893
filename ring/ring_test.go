package ring

import "testing"

// TestRingIntegrityRamp feeds a single-channel ramp x[n]=n and checks that
// after each hop the ring contains the most recent W values, and every
// emitted window is a contiguous subsequence of x (§8.1 property 9).
func TestRingIntegrityRamp(t *testing.T) {
	const W = 10
	const H = 3
	r := New(W, 1)

	n := 0
	nextHop := func() []float32 {
		hop := make([]float32, H)
		for i := range hop {
			hop[i] = float32(n)
			n++
		}
		return hop
	}

	window := make([]float32, W)
	for hopIdx := 0; hopIdx < 20; hopIdx++ {
		r.Append(nextHop())
		if !r.Full() {
			continue
		}
		r.Snapshot(window)
		// The window must equal x[n-W .. n).
		for i, v := range window {
			want := float32(n - W + i)
			if v != want {
				t.Fatalf("hop %d: window[%d] = %v, want %v", hopIdx, i, v, want)
			}
		}
	}
}

// TestWindowOverlap checks that samples [H..W) of window k equal samples
// [0..W-H) of window k+1 (§8.1 property 2).
func TestWindowOverlap(t *testing.T) {
	const W = 8
	const H = 3
	r := New(W, 2) // 2 channels

	n := 0
	nextHop := func() []float32 {
		hop := make([]float32, H*2)
		for i := 0; i < H; i++ {
			hop[i*2+0] = float32(n)
			hop[i*2+1] = float32(n) + 0.5
			n++
		}
		return hop
	}

	var prev, cur []float32
	for hopIdx := 0; hopIdx < 10; hopIdx++ {
		r.Append(nextHop())
		if !r.Full() {
			continue
		}
		cur = make([]float32, W*2)
		r.Snapshot(cur)
		if prev != nil {
			// samples [H..W) of prev == samples [0..W-H) of cur
			got := prev[H*2:]
			want := cur[:(W-H)*2]
			if len(got) != len(want) {
				t.Fatalf("length mismatch: %d vs %d", len(got), len(want))
			}
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("hop %d: overlap mismatch at %d: %v != %v", hopIdx, i, got[i], want[i])
				}
			}
		}
		prev = cur
	}
}

func TestFullBeforeWindowSamplesReceived(t *testing.T) {
	r := New(5, 1)
	for i := 0; i < 4; i++ {
		r.Append([]float32{float32(i)})
		if r.Full() {
			t.Fatalf("ring reported full after %d samples, want not full until 5", i+1)
		}
	}
	r.Append([]float32{4})
	if !r.Full() {
		t.Fatal("ring should be full after 5 samples")
	}
}
