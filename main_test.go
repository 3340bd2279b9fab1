package main

import (
	"errors"
	"math"
	"testing"

	"github.com/ericogr/staticfire/pkg/analysis"
	"github.com/ericogr/staticfire/pkg/calib"
	"github.com/ericogr/staticfire/pkg/config"
	"github.com/ericogr/staticfire/pkg/firing"
)

func TestInitOutputsDefaultsInterval(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Outputs = []config.OutputConfig{{Type: "console"}}
	entries, err := initOutputs(&cfg, false)
	if err != nil {
		t.Fatalf("initOutputs: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries len: %d", len(entries))
	}
	if entries[0].IntervalMs != defaultPublishIntervalMs {
		t.Fatalf("entry interval not defaulted, got %d", entries[0].IntervalMs)
	}
	if cfg.Outputs[0].IntervalMs != defaultPublishIntervalMs {
		t.Fatalf("cfg output interval not set, got %d", cfg.Outputs[0].IntervalMs)
	}
}

func TestInitOutputsUnknownType(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Outputs = []config.OutputConfig{{Type: "udp"}}
	if _, err := initOutputs(&cfg, false); err == nil {
		t.Fatal("expected error for unknown output type")
	}
}

// flakyDevice fails the first n reads, then succeeds.
type flakyDevice struct {
	failures int
	reads    int
}

func (f *flakyDevice) ReadChannels() (calib.Volts, error) {
	f.reads++
	if f.reads <= f.failures {
		return calib.Volts{}, errors.New("i2c timeout")
	}
	return calib.Volts{Thrust: 1.0}, nil
}

func (f *flakyDevice) Close() error { return nil }

func TestReadWithRetry(t *testing.T) {
	// default posture: no retries, first failure is fatal
	dev := &flakyDevice{failures: 1}
	if _, err := readWithRetry(dev, 0); err == nil {
		t.Fatal("expected failure with retries=0")
	}

	// bounded retry absorbs transient failures
	dev = &flakyDevice{failures: 2}
	v, err := readWithRetry(dev, 2)
	if err != nil {
		t.Fatalf("retry did not recover: %v", err)
	}
	if v.Thrust != 1.0 {
		t.Fatalf("volts: %+v", v)
	}
	if dev.reads != 3 {
		t.Fatalf("reads: got %d want 3", dev.reads)
	}

	// retries exhausted
	dev = &flakyDevice{failures: 5}
	if _, err := readWithRetry(dev, 2); err == nil {
		t.Fatal("expected failure after retries exhausted")
	}
}

// TestFirePipeline runs the detector and analyzer over the acceptance
// scenario: constant 100 N for 2.0 s at 200 Hz, followed by silence that
// exercises the debounce trim.
func TestFirePipeline(t *testing.T) {
	thr := firing.Thresholds{
		IgnitionTrigger: 20,
		BurnoutTrigger:  10,
		SampleRateHz:    200,
		DebounceSeconds: 0.5,
	}
	det, err := firing.NewDetector(thr)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}

	const dt = 1.0 / 200
	now := 0.0
	feed := func(thrust float64) firing.State {
		t.Helper()
		now += dt
		st, terr := det.Tick(firing.Reading{T: now, Thrust: thrust, Pressure: 500, Temp: 25})
		if terr != nil {
			t.Fatalf("tick at %g: %v", now, terr)
		}
		return st
	}

	// quiet pad
	for i := 0; i < 50; i++ {
		if st := feed(0); st != firing.Waiting {
			t.Fatalf("ignited on the pad at tick %d", i)
		}
	}
	// burn: 401 samples spanning exactly 2.0 s
	for i := 0; i <= 400; i++ {
		if st := feed(100); st != firing.Burning {
			t.Fatalf("burn tick %d: state %v", i, st)
		}
	}
	// burnout: silence until the debounce window expires
	st := firing.Burning
	ticks := 0
	for st == firing.Burning {
		st = feed(0)
		ticks++
		if ticks > 200 {
			t.Fatal("burnout never detected")
		}
	}
	if ticks != thr.DebounceSamples()+1 {
		t.Fatalf("burnout after %d low ticks, want %d", ticks, thr.DebounceSamples()+1)
	}

	samples := det.Buffer().Snapshot()
	if len(samples) != 401 {
		t.Fatalf("frozen series len: got %d want 401", len(samples))
	}
	if last := samples[len(samples)-1]; last.Thrust != 100 {
		t.Fatalf("noise tail not trimmed, last thrust %g", last.Thrust)
	}

	rep, err := analysis.Analyze(samples, thr.BurnoutTrigger)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if math.Abs(rep.TotalImpulseNs-200) > 1e-6 {
		t.Errorf("impulse: got %g want 200", rep.TotalImpulseNs)
	}
	if math.Abs(rep.BurnTimeS-2.0) > 1e-6 {
		t.Errorf("burn time: got %g want 2", rep.BurnTimeS)
	}
	if math.Abs(rep.AvgThrust-100) > 1e-6 {
		t.Errorf("avg thrust: got %g want 100", rep.AvgThrust)
	}
	if rep.MotorClass != "H 25%" {
		t.Errorf("motor class: got %q want \"H 25%%\"", rep.MotorClass)
	}
}

// TestNeverIgnitesThenCancel covers the abort-before-ignition path: the run
// ends with an empty frozen buffer and analysis reports no data.
func TestNeverIgnitesThenCancel(t *testing.T) {
	thr := firing.Thresholds{IgnitionTrigger: 20, BurnoutTrigger: 10, SampleRateHz: 200, DebounceSeconds: 0.5}
	det, err := firing.NewDetector(thr)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	for i := 0; i < 100; i++ {
		if _, err := det.Tick(firing.Reading{T: float64(i) / 200, Thrust: 3}); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	det.Cancel()
	if det.State() != firing.Finished {
		t.Fatalf("state: %v", det.State())
	}
	_, err = analysis.Analyze(det.Buffer().Snapshot(), thr.BurnoutTrigger)
	if !errors.Is(err, analysis.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}
