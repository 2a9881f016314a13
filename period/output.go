package period

import "github.com/orenben/portconv/port"

// OutputAdapter lets a client write one or more dst_frames periods into its
// converter's shadow buffer ahead of time, then drains one server period's
// worth out to the server on every Advance. Whatever the client wrote but
// the server hasn't consumed yet survives across ticks, compacted down to
// the front of the shadow.
//
// Unlike InputAdapter, an OutputAdapter never gates the aggregator's loop:
// its Advance always succeeds unless the invariant on shadowFrames is
// broken, so a lagging output never stalls an otherwise-ready set of
// inputs.
type OutputAdapter struct {
	conv         *port.Converter
	dstFrames    uint32
	shadowFrames uint32 // committed, not-yet-sent samples at shadow offset 0
	clientFrames uint32 // written since the last Advance, not yet committed
	lastGet      port.Buffer
}

// NewOutputAdapter builds an adapter over conv whose client writes
// dstFrames samples at a time.
func NewOutputAdapter(conv *port.Converter, dstFrames uint32) *OutputAdapter {
	return &OutputAdapter{conv: conv, dstFrames: dstFrames}
}

// Get returns the shadow region the client should write its next period
// into, positioned right after whatever is already queued or already
// written earlier in this same tick.
func (a *OutputAdapter) Get(frames uint32) (port.Buffer, error) {
	buf := trimBuffer(a.conv.ShadowAt(a.shadowFrames+a.clientFrames), frames)
	a.lastGet = buf
	return buf, nil
}

// Set writes buf into the position Get last handed back. Writing exactly
// that buffer back is a no-op, mirroring port.Converter's own Forward-case
// elision. Set never updates shadowFrames or clientFrames itself: only
// NoteClientWrote, called by the aggregator once per successful client
// callback, commits the write.
func (a *OutputAdapter) Set(buf port.Buffer, frames uint32) error {
	if port.SamePointer(buf, a.lastGet) {
		return nil
	}
	dst := a.conv.ShadowAt(a.shadowFrames + a.clientFrames)
	port.CopyBuffer(dst, buf, frames)
	return nil
}

// NoteClientWrote records that the client callback just ran once more,
// producing another dstFrames of output. The aggregator calls this exactly
// once per output port after every successful client callback invocation,
// whether or not that particular port was actually written to this time.
func (a *OutputAdapter) NoteClientWrote() {
	a.clientFrames += a.dstFrames
}

// Advance folds any samples written since the last Advance into the
// committed queue, then, only if a full server period's worth is actually
// queued, drains serverFrames of it out to the server and compacts whatever
// remains back to the front of the shadow. On an outright underrun it makes
// no copy_to_server call at all: the server keeps seeing whatever it had
// last, exactly as the original leaves it — pre-silencing an output buffer
// is the host's job, not this adapter's, beyond the input-side silence
// prefill. It only ever reports Ready or Error: an underrun is silently
// accepted, never treated as a reason to stall the aggregator's loop. Error
// is reported only if shadowFrames, once this tick's writes are folded in,
// exceeds the larger of serverFrames and dstFrames, which would mean a
// caller kept writing without ever letting Advance drain.
func (a *OutputAdapter) Advance(serverFrames uint32) AdvanceResult {
	a.shadowFrames += a.clientFrames
	a.clientFrames = 0
	a.lastGet = port.Buffer{}

	limit := serverFrames
	if a.dstFrames > limit {
		limit = a.dstFrames
	}
	if a.shadowFrames > limit {
		return Error
	}

	if a.shadowFrames < serverFrames {
		return Ready
	}

	a.conv.CopyToServer(a.conv.ShadowAt(0), 0, 0, serverFrames)

	remaining := a.shadowFrames - serverFrames
	if remaining > 0 {
		a.conv.Compact(serverFrames, remaining)
	}
	a.shadowFrames = remaining

	return Ready
}

// Filled reports how many samples are currently queued, unsent.
func (a *OutputAdapter) Filled() uint32 { return a.shadowFrames }
