// Package filesource decodes on-disk audio files into the normalized
// float32 sample stream a port.Converter's shadow buffer expects, and
// encodes 16-bit samples back out to WAV. Nothing else in this module
// imports it; it is a standalone helper for feeding real audio through the
// port/period pipeline without a live realtime audio server.
package filesource

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// Source is a decoded audio stream. ReadSamples fills dst with up to
// len(dst) interleaved float32 samples (Channels() per frame) and returns
// how many were written; it returns io.EOF once the stream is exhausted,
// possibly along with a final partial read.
type Source interface {
	SampleRate() int
	Channels() int
	ReadSamples(dst []float32) (int, error)
	Close() error
}

// Decoder builds a Source from an open file's contents.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// ErrUnknownExtension is returned by Open when no Decoder is registered
// for the file's extension.
var ErrUnknownExtension = errors.New("filesource: no decoder registered for this file extension")

// Registry maps a lowercase file extension (including the leading dot) to
// the Decoder that handles it.
type Registry map[string]Decoder

// DefaultRegistry recognizes every format this package implements.
func DefaultRegistry() Registry {
	return Registry{
		".wav":  wavDecoder{},
		".aif":  aiffDecoder{},
		".aiff": aiffDecoder{},
		".mp3":  mp3Decoder{},
		".ogg":  oggDecoder{},
	}
}

// Open reads name's extension, looks up the matching Decoder in r, and
// decodes r's contents.
func (r Registry) Open(name string, contents io.Reader) (Source, error) {
	ext := strings.ToLower(filepath.Ext(name))
	dec, ok := r[ext]
	if !ok {
		return nil, ErrUnknownExtension
	}
	return dec.Decode(contents)
}
