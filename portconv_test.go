package portconv

import (
	"testing"

	"github.com/orenben/portconv/hostapi"
	"github.com/orenben/portconv/internal/hosttest"
	"github.com/orenben/portconv/port"
)

func noopCallback(uint32, any) int { return 0 }

func TestLifecycleOpenGetSetClose(t *testing.T) {
	t.Parallel()

	host := hosttest.NewHost(64)
	agg, err := NewAggregator(host, noopCallback, nil, 64, nil)
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}
	defer agg.Close()

	sp := hosttest.NewPort(hostapi.DirectionOutput, 64)
	pc, err := agg.NewPortConverter(sp, hostapi.FormatInt16)
	if err != nil {
		t.Fatalf("NewPortConverter: %v", err)
	}

	got, err := pc.Get(64)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	for i := range got.Int16 {
		got.Int16[i] = 1000
	}
	if err := pc.Set(got, 64); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if err := pc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := pc.Get(64); err != ErrClosed {
		t.Fatalf("Get after Close: err = %v, want ErrClosed", err)
	}
}

// TestStandaloneForwardPortConverterNeedsNoAggregator exercises spec.md
// §6's null-aggregator-handle, DEFAULT-format case: a port opened without
// ever creating an Aggregator, doing a straight pass-through of the server
// buffer.
func TestStandaloneForwardPortConverterNeedsNoAggregator(t *testing.T) {
	t.Parallel()

	sp := hosttest.NewPort(hostapi.DirectionOutput, 64)
	pc, err := NewPortConverter(sp, nil)
	if err != nil {
		t.Fatalf("NewPortConverter: %v", err)
	}

	got, err := pc.Get(64)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	for i := range got.Float32 {
		got.Float32[i] = 2.0
	}
	if err := pc.Set(got, 64); err != nil {
		t.Fatalf("Set: %v", err)
	}

	buf := sp.Buffer(64)
	for i, v := range buf {
		if v != 2.0 {
			t.Fatalf("sp.Buffer()[%d] = %v, want 2.0", i, v)
		}
	}

	if err := pc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := pc.Get(64); err != ErrClosed {
		t.Fatalf("Get after Close: err = %v, want ErrClosed", err)
	}
}

func TestAggregatorCloseRejectsFurtherPorts(t *testing.T) {
	t.Parallel()

	host := hosttest.NewHost(64)
	agg, _ := NewAggregator(host, noopCallback, nil, 64, nil)
	if err := agg.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	sp := hosttest.NewPort(hostapi.DirectionInput, 64)
	if _, err := agg.NewPortConverter(sp, hostapi.FormatDefault); err != ErrClosed {
		t.Fatalf("NewPortConverter after Close: err = %v, want ErrClosed", err)
	}
}

func TestPortConverterCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	host := hosttest.NewHost(32)
	agg, _ := NewAggregator(host, noopCallback, nil, 32, nil)
	sp := hosttest.NewPort(hostapi.DirectionInput, 32)
	pc, _ := agg.NewPortConverter(sp, hostapi.FormatDefault)

	if err := pc.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := pc.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestSetPropagatesForeignBufferThroughIntegerConversion(t *testing.T) {
	t.Parallel()

	// An aggregator-bound output's Set writes into its shadow; the server
	// buffer sees it when the tick drains the output after the callback.
	host := hosttest.NewHost(4)
	foreign := port.Buffer{Int32: []int32{0, 0x7FFFFFFF, -0x7FFFFFFF, 0}}
	var pc *PortConverter
	var setErr error
	agg, _ := NewAggregator(host, func(nframes uint32, arg any) int {
		setErr = pc.Set(foreign, nframes)
		return 0
	}, nil, 4, nil)
	if _, err := agg.NewPortConverter(hosttest.NewPort(hostapi.DirectionInput, 4), hostapi.FormatDefault); err != nil {
		t.Fatalf("NewPortConverter input: %v", err)
	}
	sp := hosttest.NewPort(hostapi.DirectionOutput, 4)
	pc, err := agg.NewPortConverter(sp, hostapi.FormatInt32)
	if err != nil {
		t.Fatalf("NewPortConverter: %v", err)
	}

	if result, ok := host.Tick(); !ok || result != 0 {
		t.Fatalf("Tick = (%d, %v), want (0, true)", result, ok)
	}
	if setErr != nil {
		t.Fatalf("Set: %v", setErr)
	}

	buf := sp.Buffer(4)
	if buf[1] != 1.0 {
		t.Errorf("buf[1] = %v, want 1.0", buf[1])
	}
	if buf[2] != -1.0 {
		t.Errorf("buf[2] = %v, want -1.0", buf[2])
	}
}
