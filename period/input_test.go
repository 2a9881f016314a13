package period

import (
	"testing"

	"github.com/orenben/portconv/hostapi"
	"github.com/orenben/portconv/port"
)

type fakePort struct {
	dir hostapi.Direction
	buf []float32
}

func newFakePort(dir hostapi.Direction, frames int) *fakePort {
	return &fakePort{dir: dir, buf: make([]float32, frames)}
}

func (p *fakePort) Direction() hostapi.Direction { return p.dir }

func (p *fakePort) Buffer(frames uint32) []float32 {
	if int(frames) > len(p.buf) {
		return nil
	}
	return p.buf
}

// TestInputAdapterAccumulatesAcrossServerPeriods exercises the steady-state
// cycle: after the initial silence-prefilled period has been delivered,
// later periods must naturally accumulate one server period at a time
// before Ready fires again.
func TestInputAdapterAccumulatesAcrossServerPeriods(t *testing.T) {
	t.Parallel()

	sp := newFakePort(hostapi.DirectionInput, 64)
	conv := port.NewShadowFloat(sp, hostapi.NopErrorSink{})
	adapter := NewInputAdapter(conv, 256, 64) // client period is 4x server period

	if got := adapter.Advance(64); got != Ready {
		t.Fatalf("priming tick: Advance = %v, want Ready (192-frame prefill + one server period)", got)
	}
	if _, err := adapter.Get(256); err != nil {
		t.Fatalf("Get after priming tick: %v", err)
	}
	// Like the aggregator, keep advancing within the tick until the adapter
	// stops reporting Ready: this call finds the server period used up.
	if got := adapter.Advance(64); got != NotReady {
		t.Fatalf("priming tick, second Advance = %v, want NotReady (server period used up)", got)
	}

	for i := range 3 {
		sp.buf[0] = float32(i)
		if got := adapter.Advance(64); got != NotReady {
			t.Fatalf("tick %d: Advance = %v, want NotReady", i, got)
		}
	}

	sp.buf[0] = 99
	if got := adapter.Advance(64); got != Ready {
		t.Fatalf("final tick: Advance = %v, want Ready", got)
	}

	buf, err := adapter.Get(256)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(buf.Float32) != 256 {
		t.Fatalf("Get returned %d samples, want 256", len(buf.Float32))
	}
}

// TestInputAdapterGetRejectsWrongFrameCount checks that Get only accepts
// the adapter's own dst_frames: asking a 256-frame adapter for 64 frames
// is a caller error.
func TestInputAdapterGetRejectsWrongFrameCount(t *testing.T) {
	t.Parallel()

	sp := newFakePort(hostapi.DirectionInput, 64)
	conv := port.NewShadowFloat(sp, hostapi.NopErrorSink{})
	adapter := NewInputAdapter(conv, 256, 64)

	if _, err := adapter.Get(64); err != ErrNotReady {
		t.Fatalf("Get(64) on a 256-frame adapter: err = %v, want ErrNotReady", err)
	}
}

// TestInputAdapterCapsCopyAtDstFrames is the direct regression test for the
// invariant that shadowFrames never exceeds dstFrames: a server period
// twice the size of the client period must not be copied in whole.
func TestInputAdapterCapsCopyAtDstFrames(t *testing.T) {
	t.Parallel()

	sp := newFakePort(hostapi.DirectionInput, 128)
	for i := range sp.buf {
		sp.buf[i] = float32(i)
	}
	conv := port.NewShadowFloat(sp, hostapi.NopErrorSink{})
	adapter := NewInputAdapter(conv, 64, 128) // server period is 2x client period: no prefill

	if got := adapter.Advance(128); got != Ready {
		t.Fatalf("Advance = %v, want Ready (128 available >= 64 dst_frames)", got)
	}
	if adapter.Filled() != 0 {
		t.Fatalf("Filled after Ready = %d, want 0 (reset immediately)", adapter.Filled())
	}

	buf, err := adapter.Get(64)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if buf.Float32[0] != 0 {
		t.Fatalf("buf[0] = %v, want 0", buf.Float32[0])
	}

	// The remaining 64 frames of the same server buffer are still there,
	// unconsumed, for a second Advance call within the same tick.
	if got := adapter.Advance(128); got != Ready {
		t.Fatalf("second Advance in the same tick = %v, want Ready", got)
	}
	buf, err = adapter.Get(64)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if buf.Float32[0] != 64 {
		t.Fatalf("buf[0] = %v, want 64 (second half of the server period)", buf.Float32[0])
	}

	// A third Advance call in the same tick has nothing left to offer.
	if got := adapter.Advance(128); got != NotReady {
		t.Fatalf("third Advance in the same tick = %v, want NotReady", got)
	}
}

// TestInputAdapterAdvanceReportsErrorOnBrokenInvariant is the direct
// regression for spec.md §4.3's first bullet: shadow_frames growing past
// dst_frames is an invariant violation reported as Error before any server
// buffer is touched, the input-side analogue of
// TestOutputAdapterAdvanceReportsErrorOnUnboundedBacklog.
func TestInputAdapterAdvanceReportsErrorOnBrokenInvariant(t *testing.T) {
	t.Parallel()

	sp := newFakePort(hostapi.DirectionInput, 64)
	conv := port.NewShadowFloat(sp, hostapi.NopErrorSink{})
	adapter := NewInputAdapter(conv, 64, 64)
	adapter.shadowFrames = 65 // simulate a caller that broke the invariant

	if got := adapter.Advance(64); got != Error {
		t.Fatalf("Advance with shadow_frames > dst_frames = %v, want Error", got)
	}
}

func TestInputAdapterAdvanceReportsErrorOnUnavailableBuffer(t *testing.T) {
	t.Parallel()

	sp := newFakePort(hostapi.DirectionInput, 32)
	conv := port.NewShadowFloat(sp, hostapi.NopErrorSink{})
	adapter := NewInputAdapter(conv, 64, 64)

	if got := adapter.Advance(64); got != Error {
		t.Fatalf("Advance with undersized server buffer = %v, want Error", got)
	}
}
