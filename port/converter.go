// Package port implements the three PortConverter variants that translate
// between the server's normalized float32 sample format and a client
// visible format, optionally holding a per-port shadow buffer.
//
// Forward, ShadowFloat, and Integer converters share the same shape
// (Get/Set for the host-facing side; CopyFromServer/CopyToServer/
// SilenceShadow/ShadowAt for the shadow-owning variants used by package
// period). This is implemented as a single tagged struct rather than three
// separate types implementing a common interface: the conversion function
// pair for Integer converters is chosen once by a switch on Kind, not
// through a virtual call, so there is no per-sample dynamic dispatch on
// the hot path.
package port

import (
	"errors"

	"github.com/orenben/portconv/hostapi"
	"github.com/orenben/portconv/sample"
	"github.com/orenben/portconv/shadow"
)

// Kind distinguishes the three PortConverter variants.
type Kind int

const (
	// KindForward passes through to the server buffer with no shadow
	// storage.
	KindForward Kind = iota
	// KindShadowFloat owns a shadow buffer with no format change.
	KindShadowFloat
	// KindInteger16 owns an int16 shadow buffer.
	KindInteger16
	// KindInteger32 owns an int32 shadow buffer.
	KindInteger32
)

// ErrUnsupportedFormat is returned by NewInteger for anything but
// hostapi.FormatInt16/FormatInt32.
var ErrUnsupportedFormat = errors.New("port: unsupported integer sample format")

// Buffer is a tagged union of the three possible typed views a converter
// can hand back: exactly one field is populated, matching the format the
// converter was constructed with. Returning this small value type (three
// slice headers) rather than an interface{} keeps Get/Set allocation-free
// on the process-callback path.
type Buffer struct {
	Float32 []float32
	Int16   []int16
	Int32   []int32
}

// Converter is a single audio port's format converter.
type Converter struct {
	kind   Kind
	port   hostapi.ServerPort
	shadow *shadow.AlignedBuffer // nil for KindForward
	errs   hostapi.ErrorSink

	lastForwardGet []float32 // Forward only: pointer-identity cache for Set elision
}

// NewForward builds a pass-through converter with no shadow storage.
func NewForward(p hostapi.ServerPort, errs hostapi.ErrorSink) *Converter {
	return &Converter{kind: KindForward, port: p, errs: errs}
}

// NewShadowFloat builds a converter that copies to/from an aligned shadow
// buffer with no format change.
func NewShadowFloat(p hostapi.ServerPort, errs hostapi.ErrorSink) *Converter {
	return &Converter{kind: KindShadowFloat, port: p, shadow: shadow.NewAlignedBuffer(4), errs: errs}
}

// NewInteger builds a converter that copies to/from an aligned shadow
// buffer of the requested integer format, converting samples on every
// copy.
func NewInteger(p hostapi.ServerPort, format hostapi.SampleFormat, errs hostapi.ErrorSink) (*Converter, error) {
	switch format {
	case hostapi.FormatInt16:
		return &Converter{kind: KindInteger16, port: p, shadow: shadow.NewAlignedBuffer(2), errs: errs}, nil
	case hostapi.FormatInt32:
		return &Converter{kind: KindInteger32, port: p, shadow: shadow.NewAlignedBuffer(4), errs: errs}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// Kind reports which variant this converter is.
func (c *Converter) Kind() Kind { return c.kind }

// Port returns the wrapped server port.
func (c *Converter) Port() hostapi.ServerPort { return c.port }

// Errs returns the error sink this converter reports through, so callers
// layered on top (period.InputAdapter's own invariant checks, for example)
// can log through the same sink rather than each owning a separate one.
func (c *Converter) Errs() hostapi.ErrorSink { return c.errs }

// SampleSize returns the number of bytes per sample this converter's
// client-visible buffer uses.
func (c *Converter) SampleSize() int {
	switch c.kind {
	case KindInteger16:
		return 2
	default:
		return 4
	}
}

// Get returns the converter's view of frames samples: the raw server
// buffer for Forward, or the shadow buffer freshly populated from the
// server for Shadow/Integer. Returns a zero Buffer if the server buffer is
// currently unavailable.
func (c *Converter) Get(frames uint32) Buffer {
	if c.kind == KindForward {
		buf := c.port.Buffer(frames)
		if buf == nil {
			c.errs.Errorf("port: server buffer unavailable for forward port")
			return Buffer{}
		}
		c.lastForwardGet = buf
		return Buffer{Float32: buf}
	}

	b, ok := c.CopyFromServer(0, 0, frames)
	if !ok {
		c.errs.Errorf("port: server buffer unavailable")
		return Buffer{}
	}
	return b
}

// Set overwrites the server buffer with buf. For Forward, a buf that is
// pointer-identical to the value last returned by Get is a no-op. For
// Shadow/Integer, buf is converted (if needed) straight through to the
// server buffer; the converter's own shadow storage is not touched, since
// Set is meant to be usable with an arbitrary caller-supplied buffer, not
// only the shadow the converter itself owns.
func (c *Converter) Set(buf Buffer, frames uint32) {
	if c.kind == KindForward {
		if samePointer(buf, Buffer{Float32: c.lastForwardGet}) {
			return
		}
		target := c.port.Buffer(frames)
		if target == nil {
			return
		}
		copy(target[:frames], buf.Float32[:frames])
		return
	}

	c.CopyToServer(buf, 0, 0, frames)
}

// CopyFromServer fetches frames+serverOff frames from the server buffer,
// converts (Integer variants) or copies (ShadowFloat) frames samples
// starting at serverOff into the shadow buffer at shadowOff, and returns
// the written region. ok is false if the server buffer is unavailable.
func (c *Converter) CopyFromServer(shadowOff, serverOff, frames uint32) (buf Buffer, ok bool) {
	serverBuf := c.port.Buffer(frames + serverOff)
	if serverBuf == nil {
		return Buffer{}, false
	}

	switch c.kind {
	case KindShadowFloat:
		dst := c.shadow.Float32()
		copy(dst[shadowOff:shadowOff+frames], serverBuf[serverOff:serverOff+frames])
		return Buffer{Float32: dst[shadowOff : shadowOff+frames]}, true
	case KindInteger16:
		dst := c.shadow.Int16()
		sample.Int16FromFloat(dst[shadowOff:], serverBuf[serverOff:], int(frames), 1, 1)
		return Buffer{Int16: dst[shadowOff : shadowOff+frames]}, true
	case KindInteger32:
		dst := c.shadow.Int32()
		sample.Int32FromFloat(dst[shadowOff:], serverBuf[serverOff:], int(frames), 1, 1)
		return Buffer{Int32: dst[shadowOff : shadowOff+frames]}, true
	default:
		return Buffer{}, false
	}
}

// CopyToServer fetches frames+serverOff frames from the server buffer and
// overwrites frames samples starting at serverOff with src[srcOff:],
// converting as required. A nil server buffer is silently ignored: the
// host has already logged the underlying cause.
func (c *Converter) CopyToServer(src Buffer, srcOff, serverOff, frames uint32) {
	serverBuf := c.port.Buffer(frames + serverOff)
	if serverBuf == nil {
		return
	}

	switch c.kind {
	case KindShadowFloat:
		copy(serverBuf[serverOff:serverOff+frames], src.Float32[srcOff:srcOff+frames])
	case KindInteger16:
		sample.FloatFromInt16(serverBuf[serverOff:], src.Int16[srcOff:], int(frames), 1, 1)
	case KindInteger32:
		sample.FloatFromInt32(serverBuf[serverOff:], src.Int32[srcOff:], int(frames), 1, 1)
	}
}

// SilenceShadow zeroes the first frames samples of the shadow buffer. It
// is a no-op for Forward converters, which have no shadow.
func (c *Converter) SilenceShadow(frames uint32) {
	if c.shadow != nil {
		c.shadow.Silence(frames)
	}
}

// SilenceShadowAt zeroes frames samples of the shadow buffer starting at
// sample offset offset. It is a no-op for Forward converters.
func (c *Converter) SilenceShadowAt(offset, frames uint32) {
	if c.shadow != nil {
		c.shadow.SilenceAt(offset, frames)
	}
}

// ShadowAt returns the shadow buffer view starting at sample offset
// offset. It is only meaningful for Shadow/Integer converters.
func (c *Converter) ShadowAt(offset uint32) Buffer {
	switch c.kind {
	case KindShadowFloat:
		return Buffer{Float32: c.shadow.Float32()[offset:]}
	case KindInteger16:
		return Buffer{Int16: c.shadow.Int16()[offset:]}
	case KindInteger32:
		return Buffer{Int32: c.shadow.Int32()[offset:]}
	default:
		return Buffer{}
	}
}

// Compact moves the frames samples starting at shadow offset from down to
// offset 0. It is the "unavoidable intra-buffer compaction" the output
// PeriodAdapter needs whenever its read offset has drifted forward but the
// buffer is not yet empty.
func (c *Converter) Compact(from, frames uint32) {
	switch c.kind {
	case KindShadowFloat:
		buf := c.shadow.Float32()
		copy(buf[0:frames], buf[from:from+frames])
	case KindInteger16:
		buf := c.shadow.Int16()
		copy(buf[0:frames], buf[from:from+frames])
	case KindInteger32:
		buf := c.shadow.Int32()
		copy(buf[0:frames], buf[from:from+frames])
	}
}

// CopyBuffer copies frames samples from src into dst, dispatching on
// whichever field of dst is populated.
func CopyBuffer(dst, src Buffer, frames uint32) {
	switch {
	case dst.Float32 != nil:
		copy(dst.Float32[:frames], src.Float32[:frames])
	case dst.Int16 != nil:
		copy(dst.Int16[:frames], src.Int16[:frames])
	case dst.Int32 != nil:
		copy(dst.Int32[:frames], src.Int32[:frames])
	}
}

// SamePointer reports whether a and b reference the same first sample,
// used to elide a redundant Set() memcpy when the caller writes back into
// the same buffer Get() handed it.
func samePointer(a, b Buffer) bool {
	switch {
	case a.Float32 != nil && b.Float32 != nil:
		return len(a.Float32) > 0 && len(b.Float32) > 0 && &a.Float32[0] == &b.Float32[0]
	case a.Int16 != nil && b.Int16 != nil:
		return len(a.Int16) > 0 && len(b.Int16) > 0 && &a.Int16[0] == &b.Int16[0]
	case a.Int32 != nil && b.Int32 != nil:
		return len(a.Int32) > 0 && len(b.Int32) > 0 && &a.Int32[0] == &b.Int32[0]
	}
	return false
}

// SamePointer is the exported form of samePointer, used by package period
// to implement the output adapter's idempotent Set().
func SamePointer(a, b Buffer) bool { return samePointer(a, b) }
