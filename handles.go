package portconv

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/logging"

	"github.com/orenben/portconv/bufferconv"
	"github.com/orenben/portconv/hostapi"
	"github.com/orenben/portconv/internal/telemetry"
	"github.com/orenben/portconv/port"
)

// ErrClosed is returned by any operation on an Aggregator or PortConverter
// after Close has already been called on it.
var ErrClosed = errors.New("portconv: use of closed handle")

// Callback is the client's realtime processing function, invoked once for
// every dstFrames-sized period every registered input port has ready.
// nframes is always exactly dstFrames; arg is whatever was passed to
// NewAggregator, handed back verbatim. A non-zero return aborts the tick.
type Callback = bufferconv.Callback

// Aggregator is the opaque handle for a client's registration with a
// realtime host. Every PortConverter opened through it shares its process
// callback and its callback/arg/dstFrames triple.
type Aggregator struct {
	mu     sync.Mutex
	agg    *bufferconv.Aggregator
	closed bool
}

// NewAggregator registers a new client with host: callback is invoked with
// arg every time every registered input port has accumulated dstFrames
// samples, and every registered output port is drained once per server
// period regardless of how many times callback ran. log may be nil to use
// a default pion/logging logger.
func NewAggregator(host hostapi.Host, callback Callback, arg any, dstFrames uint32, log logging.LeveledLogger) (*Aggregator, error) {
	inner, err := bufferconv.NewAggregator(host, callback, arg, dstFrames, log)
	if err != nil {
		return nil, err
	}
	return &Aggregator{agg: inner}, nil
}

// ID returns the Aggregator's stable identity.
func (a *Aggregator) ID() uuid.UUID { return a.agg.ID() }

// Close marks a closed, rejecting any further NewPortConverter calls.
// Ports already opened are unaffected and must be closed individually.
// It is idempotent.
func (a *Aggregator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

// NewPortConverter opens sp for format conversion, buffering across period
// boundaries against the Aggregator's own dstFrames.
func (a *Aggregator) NewPortConverter(sp hostapi.ServerPort, format hostapi.SampleFormat) (*PortConverter, error) {
	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	h, err := a.agg.NewPort(sp, format)
	if err != nil {
		return nil, err
	}
	return &PortConverter{parent: a, handle: h}, nil
}

// NewPortConverter opens sp as a standalone Forward converter: no
// Aggregator, no format change, no buffering across periods. This is
// spec.md §6's "Create port converter" with a null aggregator handle and
// DEFAULT format — a straight pass-through view of the server buffer for a
// caller that doesn't need period conversion at all. log may be nil to use
// a default pion/logging logger. Ports bound to an Aggregator instead go
// through (*Aggregator).NewPortConverter.
func NewPortConverter(sp hostapi.ServerPort, log logging.LeveledLogger) (*PortConverter, error) {
	if log == nil {
		log = telemetry.NewFactory(nil).NewLogger("portconv")
	}
	return &PortConverter{forward: port.NewForward(sp, telemetry.NewErrorSink(log))}, nil
}

// PortConverter is the opaque handle for a single registered port. Get and
// Set are meant to be called from inside the Aggregator's callback for
// ports bound to one; a standalone Forward converter (see
// NewPortConverter) may be called from wherever the caller likes, since it
// has no period state to protect. The core drives readiness internally, so
// there is no caller-facing poll loop left to run either way.
type PortConverter struct {
	mu      sync.Mutex
	parent  *Aggregator
	handle  bufferconv.Handle
	forward *port.Converter // set only for the standalone Forward case
	closed  bool
}

// Get returns the port's next dstFrames samples in its configured client
// format, or, for a standalone Forward converter, the raw server buffer.
func (p *PortConverter) Get(frames uint32) (port.Buffer, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return port.Buffer{}, ErrClosed
	}
	if p.forward != nil {
		return p.forward.Get(frames), nil
	}
	return p.parent.agg.Get(p.handle, frames)
}

// Set writes buf back out through the port.
func (p *PortConverter) Set(buf port.Buffer, frames uint32) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if p.forward != nil {
		p.forward.Set(buf, frames)
		return nil
	}
	return p.parent.agg.Set(p.handle, buf, frames)
}

// Close unregisters the port from its Aggregator, or, for a standalone
// Forward converter, simply marks the handle closed (there is no registry
// to remove it from). It is idempotent.
func (p *PortConverter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.forward == nil {
		p.parent.agg.RemovePort(p.handle)
	}
	return nil
}
