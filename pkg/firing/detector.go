package firing

import (
	"errors"
	"fmt"
	"math"
)

// State of the ignition/burnout state machine.
type State int

const (
	// Waiting for thrust to cross the ignition trigger. Nothing is recorded.
	Waiting State = iota
	// Burning records every sample and watches for sustained low thrust.
	Burning
	// Finished is terminal; the buffer is frozen.
	Finished
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Burning:
		return "burning"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrAlreadyFinished is returned by Tick once the detector is terminal.
var ErrAlreadyFinished = errors.New("detector already finished")

// Thresholds are the trigger settings for one test run.
type Thresholds struct {
	IgnitionTrigger float64 // force units; start recording above this
	BurnoutTrigger  float64 // force units; thrust below this counts toward burnout
	SampleRateHz    float64
	DebounceSeconds float64 // sustained-low duration confirming burnout
}

// Validate checks the invariants the detector relies on.
func (t Thresholds) Validate() error {
	if t.SampleRateHz <= 0 {
		return fmt.Errorf("sample_rate_hz must be > 0, got %g", t.SampleRateHz)
	}
	if t.BurnoutTrigger < 0 {
		return fmt.Errorf("burnout_trigger must be >= 0, got %g", t.BurnoutTrigger)
	}
	if t.IgnitionTrigger <= t.BurnoutTrigger {
		return fmt.Errorf("ignition_trigger (%g) must be > burnout_trigger (%g)",
			t.IgnitionTrigger, t.BurnoutTrigger)
	}
	if t.DebounceSeconds < 0 {
		return fmt.Errorf("debounce_seconds must be >= 0, got %g", t.DebounceSeconds)
	}
	return nil
}

// DebounceSamples is the number of consecutive low-thrust samples that must be
// exceeded before burnout is declared.
func (t Thresholds) DebounceSamples() int {
	return int(math.Round(t.SampleRateHz * t.DebounceSeconds))
}

// Detector drives a single test run: Waiting -> Burning -> Finished. It is
// ticked once per acquisition period by the sampling loop and is the sole
// writer of its Buffer. Not safe for concurrent use; Cancel is meant to be
// called from the same loop after an operator signal is observed.
//
// The sample that crosses the ignition trigger is itself stored, at t=0.
type Detector struct {
	thr      Thresholds
	buf      *Buffer
	state    State
	origin   float64 // loop time of ignition
	lowCount int
}

func NewDetector(thr Thresholds) (*Detector, error) {
	if err := thr.Validate(); err != nil {
		return nil, err
	}
	return &Detector{thr: thr, buf: NewBuffer()}, nil
}

// State returns the current detector state.
func (d *Detector) State() State {
	return d.state
}

// Buffer returns the run's sample buffer. Read it only after Finished.
func (d *Detector) Buffer() *Buffer {
	return d.buf
}

// LowCount returns the current consecutive-low-thrust counter.
func (d *Detector) LowCount() int {
	return d.lowCount
}

// Tick feeds one converted reading to the state machine and returns the state
// after the transition, if any. Once Finished it returns ErrAlreadyFinished
// and mutates nothing.
func (d *Detector) Tick(r Reading) (State, error) {
	switch d.state {
	case Finished:
		return Finished, ErrAlreadyFinished

	case Waiting:
		if r.Thrust > d.thr.IgnitionTrigger {
			d.state = Burning
			d.origin = r.T
			if err := d.append(r); err != nil {
				return d.state, err
			}
		}
		return d.state, nil

	case Burning:
		if err := d.append(r); err != nil {
			return d.state, err
		}
		if r.Thrust < d.thr.BurnoutTrigger {
			d.lowCount++
		} else {
			d.lowCount = 0
		}
		if d.lowCount > d.thr.DebounceSamples() {
			// The trailing low-thrust samples recorded during the debounce
			// window are noise after the actual burnout; drop them so the
			// series ends at the last sample still above threshold.
			if err := d.buf.TrimTail(d.lowCount); err != nil {
				return d.state, err
			}
			d.finish()
		}
		return d.state, nil
	}
	return d.state, fmt.Errorf("invalid detector state %v", d.state)
}

// Cancel is the operator abort: immediate transition to Finished keeping
// everything collected so far, with no tail trim. Valid in any state;
// idempotent once Finished.
func (d *Detector) Cancel() {
	if d.state == Finished {
		return
	}
	d.finish()
}

func (d *Detector) finish() {
	d.state = Finished
	d.buf.Freeze()
}

func (d *Detector) append(r Reading) error {
	return d.buf.Append(Sample{
		T:        r.T - d.origin,
		Thrust:   r.Thrust,
		Pressure: r.Pressure,
		Temp:     r.Temp,
	})
}
