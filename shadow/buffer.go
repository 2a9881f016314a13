// Package shadow implements the aligned scratch storage a Shadow or
// Integer port converter uses to decouple the client's view of a port's
// samples from the server-owned buffer.
package shadow

import (
	"unsafe"

	"github.com/orenben/portconv/hostapi"
)

// AlignedBuffer is a fixed-capacity byte buffer whose logical base is
// aligned to hostapi.Alignment bytes. The backing storage is over-allocated
// by one alignment period; the aligned interior pointer is computed once
// at construction, matching the original implementation's
// over-allocate-and-mask approach (portable, no platform-specific aligned
// allocator required).
type AlignedBuffer struct {
	storage    []byte
	base       int // byte offset of the aligned interior pointer into storage
	sampleSize int // bytes per sample this buffer is sized for
}

// NewAlignedBuffer allocates storage for at least hostapi.BufferSizeMax
// samples of sampleSize bytes each, plus alignment slack.
func NewAlignedBuffer(sampleSize int) *AlignedBuffer {
	capacity := hostapi.BufferSizeMax*sampleSize + hostapi.Alignment
	storage := make([]byte, capacity)

	addr := uintptr(unsafe.Pointer(&storage[0]))
	aligned := (addr + hostapi.Alignment) &^ (hostapi.Alignment - 1)
	base := int(aligned - addr)

	return &AlignedBuffer{
		storage:    storage,
		base:       base,
		sampleSize: sampleSize,
	}
}

// Bytes returns the aligned interior region as a byte slice starting at
// sample offset off.
func (b *AlignedBuffer) Bytes(off int) []byte {
	start := b.base + off*b.sampleSize
	return b.storage[start:]
}

// Float32 returns the aligned interior region reinterpreted as a float32
// slice sized for hostapi.BufferSizeMax samples. The returned slice shares
// storage with Bytes/Int16/Int32; it is only meaningful when the buffer was
// constructed with sampleSize == 4 and is being used in float32 mode.
func (b *AlignedBuffer) Float32() []float32 {
	ptr := (*float32)(unsafe.Pointer(&b.storage[b.base]))
	return unsafe.Slice(ptr, hostapi.BufferSizeMax)
}

// Int16 returns the aligned interior region reinterpreted as an int16
// slice sized for hostapi.BufferSizeMax samples.
func (b *AlignedBuffer) Int16() []int16 {
	ptr := (*int16)(unsafe.Pointer(&b.storage[b.base]))
	return unsafe.Slice(ptr, hostapi.BufferSizeMax)
}

// Int32 returns the aligned interior region reinterpreted as an int32
// slice sized for hostapi.BufferSizeMax samples.
func (b *AlignedBuffer) Int32() []int32 {
	ptr := (*int32)(unsafe.Pointer(&b.storage[b.base]))
	return unsafe.Slice(ptr, hostapi.BufferSizeMax)
}

// Silence zeroes the first frames samples (sampleSize bytes each) of the
// aligned region.
func (b *AlignedBuffer) Silence(frames uint32) {
	b.SilenceAt(0, frames)
}

// SilenceAt zeroes frames samples starting at sample offset off.
func (b *AlignedBuffer) SilenceAt(off, frames uint32) {
	start := b.base + int(off)*b.sampleSize
	n := int(frames) * b.sampleSize
	region := b.storage[start : start+n]
	clear(region)
}

// BasePointer returns the address of the aligned interior region, for
// alignment assertions in tests.
func (b *AlignedBuffer) BasePointer() uintptr {
	return uintptr(unsafe.Pointer(&b.storage[b.base]))
}
