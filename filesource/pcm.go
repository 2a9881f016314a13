package filesource

import (
	"encoding/binary"

	"github.com/orenben/portconv/sample"
)

// decodePCM16LE unpacks the first even-length prefix of raw as little-
// endian 16-bit signed samples into dst, converting through int16 with the
// same 1/0x7FFF scaling every other int16 conversion path in this module
// uses (package sample), rather than each file format hand-rolling its own
// /32768.0 division. scratch is reused across calls to avoid a fresh
// allocation per read; the returned slice is scratch, resized as needed.
func decodePCM16LE(dst []float32, raw []byte, scratch []int16) []int16 {
	n := len(raw) / 2
	if cap(scratch) < n {
		scratch = make([]int16, n)
	}
	scratch = scratch[:n]

	for i := range n {
		scratch[i] = int16(binary.LittleEndian.Uint16(raw[2*i : 2*i+2]))
	}
	sample.FloatFromInt16(dst[:n], scratch, n, 1, 1)
	return scratch
}
