// Package bufferconv is the top-level orchestrator: it owns the single
// process callback a Host drives, drives the registered input ports
// through one or more client-callback invocations per server period, and
// drains every registered output port once the loop settles, the way the
// original jack_process callback tracked port readiness and fired the
// client's own callback from inside it.
package bufferconv

import (
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pion/logging"

	"github.com/orenben/portconv/hostapi"
	"github.com/orenben/portconv/internal/telemetry"
	"github.com/orenben/portconv/period"
	"github.com/orenben/portconv/port"
)

// Handle identifies a port registered with an Aggregator.
type Handle uuid.UUID

// Callback is the client's realtime processing function. The Aggregator
// invokes it zero or more times per server period, exactly once for every
// dst_frames-sized period every registered input port has ready; nframes
// is always the Aggregator's own dstFrames. arg is whatever the caller
// passed to NewAggregator, handed back verbatim. A non-zero return aborts
// the tick and is returned to the host as the tick's result; a negative
// one tells the host to terminate the client.
type Callback func(nframes uint32, arg any) int

// ErrUnknownHandle is returned by Get/Set for a Handle the Aggregator did
// not register.
var ErrUnknownHandle = errors.New("bufferconv: unknown port handle")

// ErrSetOnInputPort is returned by Set for a port opened over an input
// (server-to-client) direction: an input port's samples flow from the
// server outward, so writing to it makes no sense.
var ErrSetOnInputPort = errors.New("bufferconv: cannot Set an input port")

// ErrNilCallback is returned by NewAggregator when callback is nil: an
// Aggregator with nothing to drive can never make an input port's data
// reach a client.
var ErrNilCallback = errors.New("bufferconv: callback must not be nil")

// ErrInvalidDstFrames is returned by NewAggregator when dstFrames is zero.
var ErrInvalidDstFrames = errors.New("bufferconv: dstFrames must be greater than zero")

// errNoInputPorts is the tick-time error when no input port is registered
// to drive the callback loop; it never reaches a caller directly, only
// through tick's int return and the log line it produces.
var errNoInputPorts = errors.New("bufferconv: no input ports registered")

type entry struct {
	sp     hostapi.ServerPort
	input  *period.InputAdapter
	output *period.OutputAdapter
}

func (e *entry) get(frames uint32) (port.Buffer, error) {
	if e.input != nil {
		return e.input.Get(frames)
	}
	return e.output.Get(frames)
}

func (e *entry) set(buf port.Buffer, frames uint32) error {
	if e.input != nil {
		return ErrSetOnInputPort
	}
	return e.output.Set(buf, frames)
}

// table is an immutable, precomputed snapshot of the registered-port set.
// NewPort/RemovePort build a fresh one on the non-realtime path; tick only
// ever loads the current pointer, so the process-callback path never
// allocates or walks the handle map. results is scratch space owned by the
// realtime thread alone, sized once when the input set changes, reused
// across every tick against this table.
type table struct {
	byHandle map[Handle]*entry
	inputs   []*period.InputAdapter
	outputs  []*period.OutputAdapter
	results  []period.AdvanceResult
}

func buildTable(byHandle map[Handle]*entry) *table {
	t := &table{byHandle: byHandle}
	for _, e := range byHandle {
		switch {
		case e.input != nil:
			t.inputs = append(t.inputs, e.input)
		case e.output != nil:
			t.outputs = append(t.outputs, e.output)
		}
	}
	t.results = make([]period.AdvanceResult, len(t.inputs))
	return t
}

// Aggregator is a single client's worth of registered ports, driven by one
// Host process callback per server period. The registered-port table is
// swapped atomically rather than guarded by a mutex: NewPort/RemovePort
// build a fresh copy-on-write map on the non-realtime construction path,
// while tick, Get, and Set only ever load a snapshot, so nothing on the
// process-callback path can block on a lock a client thread might be
// holding.
type Aggregator struct {
	id        uuid.UUID
	host      hostapi.Host
	log       logging.LeveledLogger
	errs      hostapi.ErrorSink
	callback  Callback
	arg       any
	dstFrames uint32

	entries atomic.Pointer[table]
	last    atomic.Int32
}

// NewAggregator registers a process callback with host and returns the
// Aggregator driving it. Every dstFrames samples every registered input
// port accumulates, callback is invoked once with arg passed through
// verbatim; every registered output port is then drained once per server
// period regardless of how many times callback ran. log may be nil, in
// which case a default pion/logging logger scoped to "bufferconv" is used.
func NewAggregator(host hostapi.Host, callback Callback, arg any, dstFrames uint32, log logging.LeveledLogger) (*Aggregator, error) {
	if callback == nil {
		return nil, ErrNilCallback
	}
	if dstFrames == 0 {
		return nil, ErrInvalidDstFrames
	}
	if log == nil {
		log = telemetry.NewFactory(nil).NewLogger("bufferconv")
	}

	a := &Aggregator{
		id:        uuid.New(),
		host:      host,
		log:       log,
		callback:  callback,
		arg:       arg,
		dstFrames: dstFrames,
	}
	a.errs = telemetry.NewErrorSink(log)
	a.entries.Store(buildTable(map[Handle]*entry{}))

	if err := host.SetProcessCallback(a.tick); err != nil {
		return nil, err
	}
	return a, nil
}

// ID returns the Aggregator's stable identity, useful for correlating log
// lines across a run with more than one Aggregator active.
func (a *Aggregator) ID() uuid.UUID { return a.id }

// tick is the Host process callback. It implements the aggregator loop:
// advance every input port, and as long as every one of them reports Ready
// for the same dst_frames period, invoke the client callback and notify
// every output port that a period was written, then advance the inputs
// again for the next dst_frames slice of this same server period. Once an
// input falls short, the loop ends and every output port is drained
// exactly once for the server period that just elapsed. A negative return
// tells the host to terminate the client, matching hostapi.Host's
// contract.
func (a *Aggregator) tick(serverFrames uint32) int {
	t := a.entries.Load()

	if len(t.inputs) == 0 {
		a.last.Store(int32(period.Error))
		a.log.Errorf("aggregator %s: %v", a.id, errNoInputPorts)
		return -1
	}

	for {
		for i, in := range t.inputs {
			t.results[i] = in.Advance(serverFrames)
		}
		result := period.Min(t.results...)
		a.last.Store(int32(result))

		if result == period.Error {
			a.log.Errorf("aggregator %s: an input port failed to advance this period", a.id)
			return -1
		}
		if result != period.Ready {
			break
		}

		if rc := a.callback(a.dstFrames, a.arg); rc != 0 {
			a.log.Errorf("aggregator %s: client callback returned %d", a.id, rc)
			return rc
		}
		for _, out := range t.outputs {
			out.NoteClientWrote()
		}
	}

	for _, out := range t.outputs {
		if out.Advance(serverFrames) == period.Error {
			a.log.Errorf("aggregator %s: an output port failed to advance this period", a.id)
			return -1
		}
	}
	return 0
}

// Ready reports the aggregate input-port AdvanceResult from the most
// recent tick: whether the last dst_frames period this tick attempted to
// assemble actually completed.
func (a *Aggregator) Ready() period.AdvanceResult {
	return period.AdvanceResult(a.last.Load())
}

// NewPort registers sp with the Aggregator, converting to/from format and
// buffering across period boundaries against the Aggregator's own
// dstFrames. NewPort is not realtime-safe and must not be called
// concurrently with tick for the same Aggregator; per spec, the port set
// is fixed once the client has been activated.
func (a *Aggregator) NewPort(sp hostapi.ServerPort, format hostapi.SampleFormat) (Handle, error) {
	conv, err := newConverter(sp, format, a.errs)
	if err != nil {
		return Handle{}, err
	}

	e := &entry{sp: sp}
	if sp.Direction() == hostapi.DirectionInput {
		e.input = period.NewInputAdapter(conv, a.dstFrames, a.host.PeriodSize())
	} else {
		e.output = period.NewOutputAdapter(conv, a.dstFrames)
	}

	h := Handle(uuid.New())
	a.replaceTable(func(next map[Handle]*entry) { next[h] = e })

	a.log.Debugf("aggregator %s: registered port %s (%s, format=%d)",
		a.id, uuid.UUID(h), sp.Direction(), format)
	return h, nil
}

// RemovePort unregisters h. It is a no-op if h is unknown.
func (a *Aggregator) RemovePort(h Handle) {
	a.replaceTable(func(next map[Handle]*entry) { delete(next, h) })
}

// replaceTable builds a fresh copy of the current handle map, applies
// mutate to it, rebuilds the precomputed input/output slices, and
// publishes the result. Callers on the tick/Get/Set path never see a
// partially-mutated table.
func (a *Aggregator) replaceTable(mutate func(map[Handle]*entry)) {
	current := a.entries.Load().byHandle
	next := make(map[Handle]*entry, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	mutate(next)
	a.entries.Store(buildTable(next))
}

// Get returns h's next frames samples in its configured client format.
func (a *Aggregator) Get(h Handle, frames uint32) (port.Buffer, error) {
	e, ok := a.entries.Load().byHandle[h]
	if !ok {
		return port.Buffer{}, ErrUnknownHandle
	}
	return e.get(frames)
}

// Set writes buf back to h's server-facing port.
func (a *Aggregator) Set(h Handle, buf port.Buffer, frames uint32) error {
	e, ok := a.entries.Load().byHandle[h]
	if !ok {
		return ErrUnknownHandle
	}
	return e.set(buf, frames)
}

// newConverter picks the converter that matches format. Every port
// registered with an Aggregator owns a shadow buffer: the standalone
// zero-copy Forward converter (spec's DEFAULT-with-no-aggregator case) is
// reached directly through port.NewForward instead, never through this
// path.
func newConverter(sp hostapi.ServerPort, format hostapi.SampleFormat, errs hostapi.ErrorSink) (*port.Converter, error) {
	switch format {
	case hostapi.FormatDefault:
		return port.NewShadowFloat(sp, errs), nil
	case hostapi.FormatInt16, hostapi.FormatInt32:
		return port.NewInteger(sp, format, errs)
	default:
		return nil, hostapi.ErrUnsupportedFormat
	}
}
