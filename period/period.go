// Package period reconciles a client's fixed processing period against the
// server's own fixed period when the two differ. An InputAdapter
// accumulates one or more server periods of data before the client has
// enough to run; an OutputAdapter lets the client write a full period's
// worth of samples ahead of the server and drains them out server period
// by server period, carrying over whatever the client hasn't consumed yet.
//
// Both adapters wrap a *port.Converter rather than embedding one: the
// underlying shadow buffer, format conversion, and server I/O are entirely
// the converter's job, and every arithmetic surface here works in sample
// counts, never in bytes.
package period

import (
	"errors"

	"github.com/orenben/portconv/port"
)

// AdvanceResult is the three-way outcome of ticking an adapter by one
// server period, chosen so that reducing several ports' results down to
// "is the whole client period ready" is a plain integer minimum: any
// Error dominates, then any NotReady, then Ready.
type AdvanceResult int

const (
	// Error indicates the tick failed: the underlying server buffer was
	// unavailable, or an adapter's shadow-frame invariant was broken.
	Error AdvanceResult = -1
	// NotReady indicates the tick succeeded but the client period is not
	// yet complete.
	NotReady AdvanceResult = 0
	// Ready indicates the client period is complete: the aggregator may
	// invoke the client callback (for input) or has drained a period to the
	// server (for output).
	Ready AdvanceResult = 1
)

// Min folds a sequence of per-port AdvanceResults down to the aggregate
// result for a whole period tick.
func Min(results ...AdvanceResult) AdvanceResult {
	min := Ready
	for _, r := range results {
		if r < min {
			min = r
		}
	}
	return min
}

// ErrNotReady is returned by InputAdapter.Get when the requested frame
// count is not the adapter's dst_frames.
var ErrNotReady = errors.New("period: requested frames not yet available")

// trimBuffer narrows buf down to its first frames samples, whichever
// field is populated.
func trimBuffer(buf port.Buffer, frames uint32) port.Buffer {
	switch {
	case buf.Float32 != nil:
		return port.Buffer{Float32: buf.Float32[:frames]}
	case buf.Int16 != nil:
		return port.Buffer{Int16: buf.Int16[:frames]}
	case buf.Int32 != nil:
		return port.Buffer{Int32: buf.Int32[:frames]}
	default:
		return port.Buffer{}
	}
}
