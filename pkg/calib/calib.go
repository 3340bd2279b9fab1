package calib

import "github.com/ericogr/staticfire/pkg/firing"

// Params is a two-point linear calibration for one analog channel:
// value = (volts - zero_offset_volts) * slope. For channels referenced to
// ground (temperature probes), the offset is simply 0.
type Params struct {
	ZeroOffsetVolts float64 `json:"zero_offset_volts"`
	Slope           float64 `json:"slope"`
}

// Convert maps a raw voltage to physical units. Pure; any finite input is
// valid.
func Convert(volts float64, p Params) float64 {
	return (volts - p.ZeroOffsetVolts) * p.Slope
}

// Converter turns a voltage tuple into a converted reading using per-channel
// calibration. ZeroClamp selects the display policy: when true, negative
// thrust and pressure are floored to 0 to hide electrical noise below the
// physical floor (logging mode); when false values pass through unchanged so
// drift and offset errors stay visible (calibration monitoring mode).
type Converter struct {
	Thrust    Params
	Pressure  Params
	Temp      Params
	ZeroClamp bool
}

// Volts is one raw multi-channel read from the acquisition device.
type Volts struct {
	Thrust   float64
	Pressure float64
	Temp     float64
}

// Convert applies the per-channel calibration and the clamp policy. t is the
// acquisition-loop timestamp carried through to the reading.
func (c Converter) Convert(t float64, v Volts) firing.Reading {
	r := firing.Reading{
		T:        t,
		Thrust:   Convert(v.Thrust, c.Thrust),
		Pressure: Convert(v.Pressure, c.Pressure),
		Temp:     Convert(v.Temp, c.Temp),
	}
	if c.ZeroClamp {
		if r.Thrust < 0 {
			r.Thrust = 0
		}
		if r.Pressure < 0 {
			r.Pressure = 0
		}
	}
	return r
}
