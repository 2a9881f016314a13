// Package telemetry wraps pion/logging into the scoped logger this module
// hands to its own internals, keeping every package's log lines tagged
// with which package emitted them without each package taking a direct
// dependency on the logging library's factory.
package telemetry

import (
	"github.com/pion/logging"

	"github.com/orenben/portconv/hostapi"
)

// Factory produces scope-tagged loggers, the same shape pion/mediadevices
// wraps its own logging.LoggerFactory in.
type Factory struct {
	inner logging.LoggerFactory
}

// NewFactory wraps f, or a default logging.NewDefaultLoggerFactory() if f
// is nil.
func NewFactory(f logging.LoggerFactory) *Factory {
	if f == nil {
		f = logging.NewDefaultLoggerFactory()
	}
	return &Factory{inner: f}
}

// NewLogger returns a logger scoped to name, e.g. "bufferconv" or
// "period".
func (f *Factory) NewLogger(scope string) logging.LeveledLogger {
	return f.inner.NewLogger(scope)
}

// errorSink adapts a logging.LeveledLogger to hostapi.ErrorSink so the
// port/period/bufferconv packages can report through pion/logging without
// importing it directly.
type errorSink struct {
	log logging.LeveledLogger
}

// NewErrorSink wraps log as an ErrorSink-shaped collaborator (see
// hostapi.ErrorSink) via Errorf.
func NewErrorSink(log logging.LeveledLogger) hostapi.ErrorSink {
	return &errorSink{log: log}
}

// Errorf implements hostapi.ErrorSink.
func (s *errorSink) Errorf(format string, args ...any) {
	s.log.Errorf(format, args...)
}
