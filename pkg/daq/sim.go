package daq

import (
	"math/rand"
	"time"

	"github.com/ericogr/staticfire/pkg/calib"
	"github.com/ericogr/staticfire/pkg/config"
)

// Sim is a no-hardware Device producing a synthetic firing: quiet pad, sharp
// ramp to peak, sustain, then decay back to zero. Voltages are generated at
// the ADC level so the calibration path and the detector see the same shapes
// a real run would.
type Sim struct {
	cfg   config.SimConfig
	start time.Time
	now   func() time.Time
}

func NewSim(sc *config.SimConfig) *Sim {
	cfg := config.DefaultSimConfig()
	if sc != nil {
		cfg = *sc
	}
	return &Sim{cfg: cfg, start: time.Now(), now: time.Now}
}

func (s *Sim) Close() error { return nil }

func (s *Sim) ReadChannels() (calib.Volts, error) {
	elapsed := s.now().Sub(s.start).Seconds()
	level := s.profile(elapsed)
	return calib.Volts{
		Thrust:   s.cfg.ThrustRestVolts + (s.cfg.ThrustPeakVolts-s.cfg.ThrustRestVolts)*level + s.noise(),
		Pressure: s.cfg.PressureRestVolts + (s.cfg.PressurePeakVolts-s.cfg.PressureRestVolts)*level + s.noise(),
		Temp:     s.cfg.TempVolts + s.noise(),
	}, nil
}

// profile returns the burn intensity in [0,1] at a given elapsed time. The
// ramp and decay are 50 ms each, fast enough to look like a motor and slow
// enough that a 200 Hz loop catches a few transition samples.
func (s *Sim) profile(elapsed float64) float64 {
	const edge = 0.05
	t := elapsed - s.cfg.StartDelayS
	switch {
	case t < 0:
		return 0
	case t < edge:
		return t / edge
	case t < s.cfg.BurnS-edge:
		return 1
	case t < s.cfg.BurnS:
		return (s.cfg.BurnS - t) / edge
	}
	return 0
}

func (s *Sim) noise() float64 {
	if s.cfg.NoiseVolts == 0 {
		return 0
	}
	return (rand.Float64()*2 - 1) * s.cfg.NoiseVolts
}
