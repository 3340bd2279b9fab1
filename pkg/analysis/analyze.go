package analysis

import (
	"errors"

	"github.com/ericogr/staticfire/pkg/firing"
)

// ErrNoData is returned when analysis is asked for a report on an empty
// series (never-ignited run, or cancel while still waiting).
var ErrNoData = errors.New("no data collected")

// Report is the post-run summary of one static fire. It is derived read-only
// from the frozen sample series and never mutated afterwards.
type Report struct {
	TotalImpulseNs float64 `json:"total_impulse_ns"`
	BurnTimeS      float64 `json:"burn_time_s"`
	AvgThrust      float64 `json:"avg_thrust_n"`
	MaxThrust      float64 `json:"max_thrust_n"`
	MaxPressure    float64 `json:"max_pressure_psi"`
	MaxTemp        float64 `json:"max_temp_c"`
	MotorClass     string  `json:"motor_class"`
}

// Analyze reduces a frozen, time-ascending series to a Report. burnoutTrigger
// bounds the active window used for burn time and average thrust.
//
// Fewer than 3 samples above the trigger, or a zero-length active window,
// means there is no window to trust: burn time and average thrust are reported
// as 0 rather than failing.
func Analyze(samples []firing.Sample, burnoutTrigger float64) (Report, error) {
	if len(samples) == 0 {
		return Report{}, ErrNoData
	}

	rep := Report{
		MaxThrust:   samples[0].Thrust,
		MaxPressure: samples[0].Pressure,
		MaxTemp:     samples[0].Temp,
	}

	firstActive, lastActive, nActive := -1, -1, 0
	for i, s := range samples {
		if s.Thrust > rep.MaxThrust {
			rep.MaxThrust = s.Thrust
		}
		if s.Pressure > rep.MaxPressure {
			rep.MaxPressure = s.Pressure
		}
		if s.Temp > rep.MaxTemp {
			rep.MaxTemp = s.Temp
		}
		if s.Thrust > burnoutTrigger {
			if firstActive < 0 {
				firstActive = i
			}
			lastActive = i
			nActive++
		}
		if i > 0 {
			prev := samples[i-1]
			rep.TotalImpulseNs += (s.T - prev.T) * (s.Thrust + prev.Thrust) / 2
		}
	}

	if nActive >= 3 {
		rep.BurnTimeS = samples[lastActive].T - samples[firstActive].T
		if rep.BurnTimeS > 0 {
			rep.AvgThrust = rep.TotalImpulseNs / rep.BurnTimeS
		}
	}

	rep.MotorClass = Classify(rep.TotalImpulseNs)
	return rep, nil
}
