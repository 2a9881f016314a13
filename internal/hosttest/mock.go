// Package hosttest provides mock hostapi.Host and hostapi.ServerPort
// implementations for exercising the port/period/bufferconv packages
// without a live realtime audio server.
package hosttest

import (
	"fmt"
	"math"

	"github.com/orenben/portconv/hostapi"
)

// Port is a hostapi.ServerPort backed by a plain slice the test owns
// directly, so it can seed input data or inspect output data around calls
// into the code under test.
type Port struct {
	dir hostapi.Direction
	buf []float32
	// Unavailable makes Buffer return nil, simulating the server
	// reporting an XRUN or a disconnected port for this cycle.
	Unavailable bool
}

// NewPort allocates a port with room for at least capacity samples.
func NewPort(dir hostapi.Direction, capacity int) *Port {
	return &Port{dir: dir, buf: make([]float32, capacity)}
}

func (p *Port) Direction() hostapi.Direction { return p.dir }

func (p *Port) Buffer(frames uint32) []float32 {
	if p.Unavailable || int(frames) > len(p.buf) {
		return nil
	}
	return p.buf[:frames]
}

// Fill overwrites the port's buffer with samples starting at index 0.
func (p *Port) Fill(samples []float32) {
	copy(p.buf, samples)
}

// FillRamp writes an ascending sequence of n float32 values starting at
// start, stepping by step. Useful for asserting exact sample identity
// after a copy.
func (p *Port) FillRamp(n int, start, step float32) {
	for i := range n {
		p.buf[i] = start + float32(i)*step
	}
}

// FillSine writes n samples of a sine wave at freqHz sampled at
// sampleRate, amplitude amp.
func (p *Port) FillSine(n int, freqHz, sampleRate, amp float64) {
	for i := range n {
		t := float64(i) / sampleRate
		p.buf[i] = float32(amp * math.Sin(2*math.Pi*freqHz*t))
	}
}

// Host is a hostapi.Host with a fixed period size and a captured process
// callback the test can invoke directly.
type Host struct {
	period  uint32
	process func(uint32) int
}

// NewHost builds a Host reporting the given fixed period size.
func NewHost(period uint32) *Host {
	return &Host{period: period}
}

func (h *Host) PeriodSize() uint32 { return h.period }

func (h *Host) SetProcessCallback(fn func(serverFrames uint32) int) error {
	h.process = fn
	return nil
}

// Tick invokes the registered process callback as the server would once
// per period, and reports whether one was registered.
func (h *Host) Tick() (result int, ok bool) {
	if h.process == nil {
		return 0, false
	}
	return h.process(h.period), true
}

// RecordingErrorSink collects every Errorf call for test assertions.
type RecordingErrorSink struct {
	Messages []string
}

func (s *RecordingErrorSink) Errorf(format string, args ...any) {
	s.Messages = append(s.Messages, fmt.Sprintf(format, args...))
}
