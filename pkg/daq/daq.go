package daq

import (
	"fmt"

	"github.com/ericogr/staticfire/pkg/calib"
	"github.com/ericogr/staticfire/pkg/config"
)

// Device is the data-acquisition collaborator: one multi-channel voltage read
// per acquisition tick. Construction opens and configures the hardware;
// a construction error is fatal before any acquisition begins.
type Device interface {
	ReadChannels() (calib.Volts, error)
	Close() error
}

// New opens the device selected by the configuration.
func New(cfg config.Config) (Device, error) {
	switch cfg.Device.Type {
	case config.DeviceADS1115:
		return NewADS1115(cfg.Device, cfg.SampleRateHz)
	case config.DeviceSim:
		return NewSim(cfg.Device.Sim), nil
	}
	return nil, fmt.Errorf("unknown device type %q", cfg.Device.Type)
}
