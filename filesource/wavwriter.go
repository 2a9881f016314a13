package filesource

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes a mono 16-bit PCM WAV file at sampleRate from samples,
// using go-audio/wav's Encoder rather than hand-rolling the RIFF header:
// unlike the raw sample stream this package reads, the file this module
// produces is meant to be handed to other tools, so it goes through the
// same encoder the rest of the go-audio ecosystem writes with.
func WriteWAV(w io.WriteSeeker, sampleRate int, samples []int16) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)

	ints := make([]int, len(samples))
	for i, s := range samples {
		ints[i] = int(s)
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   ints,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("filesource: encoding wav: %w", err)
	}
	return enc.Close()
}
