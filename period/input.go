package period

import "github.com/orenben/portconv/port"

// InputAdapter accumulates server-period chunks from an input port into its
// converter's shadow buffer until a full dst_frames period is available. It
// never buffers more than one such period at a time: each Advance copies at
// most dst_frames-shadow_frames samples from the server buffer, leaving any
// leftover in the server buffer itself (tracked by serverOffset) for a
// following Advance call within the same tick to pick up. This is what lets
// the aggregator drive the client callback more than once per server period
// when the client's period is smaller than the server's.
type InputAdapter struct {
	conv         *port.Converter
	dstFrames    uint32
	shadowFrames uint32
	serverOffset uint32
}

// NewInputAdapter builds an adapter that reports Ready once dstFrames
// samples have accumulated in conv's shadow. serverPeriod is the host's
// fixed period size, used to compute the initial silence prefill so the
// client side can always eventually fire before the server outpaces it.
func NewInputAdapter(conv *port.Converter, dstFrames, serverPeriod uint32) *InputAdapter {
	a := &InputAdapter{conv: conv, dstFrames: dstFrames}
	if prefill := SilencePrefillFrames(serverPeriod, dstFrames); prefill > 0 {
		conv.SilenceShadowAt(0, prefill)
		a.shadowFrames = prefill
	}
	return a
}

// Advance consumes as much of the serverFrames-sized server buffer as fits
// in the remaining room before dst_frames, starting at whatever offset a
// previous call within this same tick left off at. It never lets
// shadowFrames exceed dstFrames: once a full period is copied, shadowFrames
// resets to zero immediately, since the client is expected to Get and
// consume it synchronously before any later call in the tick. Error is
// reported first, before touching the server buffer at all, if shadowFrames
// has somehow already grown past dstFrames.
func (a *InputAdapter) Advance(serverFrames uint32) AdvanceResult {
	if a.shadowFrames > a.dstFrames {
		a.conv.Errs().Errorf("period: input adapter invariant violated: shadow_frames %d exceeds dst_frames %d", a.shadowFrames, a.dstFrames)
		return Error
	}

	available := serverFrames - a.serverOffset

	if a.shadowFrames+available >= a.dstFrames {
		need := a.dstFrames - a.shadowFrames
		if _, ok := a.conv.CopyFromServer(a.shadowFrames, a.serverOffset, need); !ok {
			return Error
		}
		a.serverOffset += need
		a.shadowFrames = 0
		return Ready
	}

	if available > 0 {
		if _, ok := a.conv.CopyFromServer(a.shadowFrames, a.serverOffset, available); !ok {
			return Error
		}
		a.shadowFrames += available
	}
	a.serverOffset = 0
	return NotReady
}

// Get returns the just-completed dst_frames period from the front of the
// shadow. Callers are expected to call Get only immediately after an
// Advance that returned Ready, within the same tick; frames must equal the
// adapter's own dstFrames.
func (a *InputAdapter) Get(frames uint32) (port.Buffer, error) {
	if frames != a.dstFrames {
		return port.Buffer{}, ErrNotReady
	}
	return trimBuffer(a.conv.ShadowAt(0), frames), nil
}

// Filled reports how many samples are currently buffered toward the next
// dst_frames period.
func (a *InputAdapter) Filled() uint32 { return a.shadowFrames }
