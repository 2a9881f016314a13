// Package portconv adapts audio ports between a realtime server's fixed
// period and sample format and a client's own period and sample format.
//
// An Aggregator owns the single process callback a hostapi.Host drives
// once per server period, plus a client-supplied Callback it invokes
// directly: every input PortConverter registered with it is advanced on
// that process callback, and once every one of them has a full dstFrames
// period ready, the Aggregator calls the client's Callback itself, zero or
// more times per server period. Get and Set are meant to be called from
// inside that Callback, not polled from an independent thread of control.
//
// The three lower packages do the real work: package sample holds the
// pure per-sample float/integer conversion routines, package port wraps a
// single hostapi.ServerPort with an optional aligned shadow buffer and
// picks the right conversion routine for its format, and package period
// reconciles a client period that doesn't match the server's by buffering
// across ticks. This package is the thin, allocation-light glue between
// those and a caller who only wants to open a port, exchange samples, and
// close it again.
//
// A caller that wants no period conversion at all, only a format-neutral
// view of a server buffer, can skip the Aggregator entirely and open a
// standalone port with the package-level NewPortConverter, which wraps a
// Forward port.Converter directly.
package portconv
