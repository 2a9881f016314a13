// Package sample provides the pure per-sample conversion primitives that
// translate between the server's normalized float32 sample format and the
// client-visible int16/int32 formats.
//
// All four functions operate one sample at a time in a tight loop over
// nsamples and accept a stride so that interleaved-to-planar copies are
// possible; the port converters in package port always call them with
// stride == 1 (contiguous mono buffers).
package sample

import "math"

const (
	// Int32Scaling is the full-scale magnitude for the 32-bit signed
	// integer format.
	Int32Scaling = 0x7FFFFFFF
	// Int16Scaling is the full-scale magnitude for the 16-bit signed
	// integer format.
	Int16Scaling = 0x7FFF

	// NormalizedFloatMin is the nominal lower bound of a normalized
	// float32 sample.
	NormalizedFloatMin = -1.0
	// NormalizedFloatMax is the nominal upper bound of a normalized
	// float32 sample.
	NormalizedFloatMax = 1.0
)

// FloatFromInt32 converts nsamples 32-bit signed integers into normalized
// float32 samples. srcStride/dstStride count elements, not bytes, and let
// callers walk interleaved buffers; the port converters in this module
// always pass a stride of 1.
func FloatFromInt32(dst []float32, src []int32, nsamples, dstStride, srcStride int) {
	const scaling = float32(1.0) / float32(Int32Scaling)

	si, di := 0, 0
	for range nsamples {
		dst[di] = float32(src[si]) * scaling
		di += dstStride
		si += srcStride
	}
}

// FloatFromInt16 converts nsamples 16-bit signed integers into normalized
// float32 samples.
func FloatFromInt16(dst []float32, src []int16, nsamples, dstStride, srcStride int) {
	const scaling = float32(1.0) / float32(Int16Scaling)

	si, di := 0, 0
	for range nsamples {
		dst[di] = float32(src[si]) * scaling
		di += dstStride
		si += srcStride
	}
}

// Int32FromFloat converts nsamples normalized float32 samples into 32-bit
// signed integers. Samples are clamped to [-1.0, +1.0] before scaling; a
// clamped-to-minimum input maps to -Int32Scaling, not math.MinInt32, so
// that the positive and negative peaks are symmetric. Rounding is
// round-to-nearest, matching a C "long integer round" of src*scale.
func Int32FromFloat(dst []int32, src []float32, nsamples, dstStride, srcStride int) {
	si, di := 0, 0
	for range nsamples {
		dst[di] = int32(roundSaturating(src[si], Int32Scaling))
		di += dstStride
		si += srcStride
	}
}

// Int16FromFloat converts nsamples normalized float32 samples into 16-bit
// signed integers, with the same clamp-then-round contract as
// Int32FromFloat.
func Int16FromFloat(dst []int16, src []float32, nsamples, dstStride, srcStride int) {
	si, di := 0, 0
	for range nsamples {
		dst[di] = int16(roundSaturating(src[si], Int16Scaling))
		di += dstStride
		si += srcStride
	}
}

// roundSaturating clamps x to [-1.0, +1.0] and rounds x*scale to the
// nearest integer, with the two saturation checks performed before scaling
// so that values at or beyond the nominal range map to exactly ±scale.
func roundSaturating(x float32, scale float64) float64 {
	if x <= NormalizedFloatMin {
		return -scale
	}
	if x >= NormalizedFloatMax {
		return scale
	}
	return math.Round(float64(x) * scale)
}
